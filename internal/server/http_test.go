package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/sanonone/grafdb/pkg/engine"
	"github.com/sanonone/grafdb/pkg/types"
)

func TestHealthzAndAuth(t *testing.T) {
	testDir := t.TempDir()
	opts := engine.DefaultOptions(testDir)
	eng, err := engine.Open(opts)
	if err != nil {
		t.Fatal(err)
	}
	defer eng.Close()

	s, err := NewServer(eng, ":9192", "test-secret-token")
	if err != nil {
		t.Fatal(err)
	}

	errCh := make(chan error)
	go func() {
		errCh <- s.Run()
	}()

	time.Sleep(500 * time.Millisecond)

	resp, err := http.Get("http://localhost:9192/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("healthz expected 200, got %d", resp.StatusCode)
	}

	resp, err = http.Get("http://localhost:9192/graph/indexes")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 401 {
		t.Errorf("protected expected 401, got %d", resp.StatusCode)
	}

	req, err := http.NewRequest("GET", "http://localhost:9192/graph/indexes", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Add("Authorization", "Bearer test-secret-token")

	client := &http.Client{}
	resp, err = client.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Errorf("protected with token expected 200, got %d", resp.StatusCode)
	}

	// Clean shutdown
	s.Shutdown()
	<-errCh
}

func TestGraphRoundTripHTTP(t *testing.T) {
	testDir := t.TempDir()
	eng, err := engine.Open(engine.DefaultOptions(testDir))
	if err != nil {
		t.Fatal(err)
	}
	defer eng.Close()

	s, err := NewServer(eng, ":9193", "")
	if err != nil {
		t.Fatal(err)
	}

	errCh := make(chan error)
	go func() {
		errCh <- s.Run()
	}()
	defer func() {
		s.Shutdown()
		<-errCh
	}()

	time.Sleep(500 * time.Millisecond)

	base := "http://localhost:9193"

	postJSON := func(path string, body any) (*http.Response, error) {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		return http.Post(base+path, "application/json", bytes.NewReader(data))
	}

	// Create two vertices and an edge between them.
	var ids [2]VertexCreateResponse
	for i := range ids {
		resp, err := postJSON("/graph/vertices", VertexCreateRequest{Type: "person"})
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != 201 {
			t.Fatalf("create vertex expected 201, got %d", resp.StatusCode)
		}
		if err := json.NewDecoder(resp.Body).Decode(&ids[i]); err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
	}

	resp, err := postJSON("/graph/edges", EdgeCreateRequest{
		OutboundID: ids[0].ID,
		Type:       "knows",
		InboundID:  ids[1].ID,
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 201 {
		t.Fatalf("create edge expected 201, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Count all vertices through the query endpoint.
	queryData, err := types.MarshalQuery(types.CountQuery{Inner: types.AllVertexQuery{}})
	if err != nil {
		t.Fatal(err)
	}
	resp, err = postJSON("/graph/query", QueryRequest{Query: queryData})
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("query expected 200, got %d", resp.StatusCode)
	}

	var qr QueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&qr); err != nil {
		t.Fatal(err)
	}
	if len(qr.Outputs) != 1 {
		t.Fatalf("expected 1 output stage, got %d", len(qr.Outputs))
	}
	out, err := types.UnmarshalOutput(qr.Outputs[0])
	if err != nil {
		t.Fatal(err)
	}
	count, ok := out.(types.CountResult)
	if !ok {
		t.Fatalf("expected a count output, got %T", out)
	}
	if count != 2 {
		t.Errorf("expected 2 vertices, got %d", count)
	}
}
