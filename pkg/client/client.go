// Package client provides a Go client for the GrafDB HTTP API.
//
// It offers a type-safe way to perform all major operations:
//   - Vertex and edge creation.
//   - Query evaluation, deletion and property updates by query.
//   - Bulk ingest.
//   - Property index management.
//   - System administration (sync, AOF rewrite).
//
// The client handles HTTP communication, JSON serialization/deserialization,
// and standardized error handling.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/sanonone/grafdb/pkg/types"
)

// APIError represents an error returned by the GrafDB API (status >= 400).
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
}

// Client is the Go client for interacting with GrafDB.
type Client struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
}

// New creates a new GrafDB client. An empty token sends no Authorization
// header.
func New(host string, port int, authToken string) *Client {
	return &Client{
		baseURL:    fmt.Sprintf("http://%s:%d", host, port),
		authToken:  authToken,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// jsonRequest is a helper method to execute all requests to the API.
// It handles JSON serialization, HTTP calls, and error management.
func (c *Client) jsonRequest(method, endpoint string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal JSON payload: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("connection error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		if json.Unmarshal(respBody, &errResp) == nil {
			return nil, &APIError{StatusCode: resp.StatusCode, Message: errResp["error"]}
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	return respBody, nil
}

// --- Wire structs mirroring the server API ---

type vertexCreateRequest struct {
	ID   *uuid.UUID       `json:"id,omitempty"`
	Type types.Identifier `json:"type"`
}

type vertexCreateResponse struct {
	ID      uuid.UUID `json:"id"`
	Created bool      `json:"created"`
}

type edgeCreateRequest struct {
	OutboundID uuid.UUID        `json:"outbound_id"`
	Type       types.Identifier `json:"type"`
	InboundID  uuid.UUID        `json:"inbound_id"`
}

type edgeCreateResponse struct {
	Created bool `json:"created"`
}

type queryRequest struct {
	Query json.RawMessage `json:"query"`
}

type queryResponse struct {
	Outputs []json.RawMessage `json:"outputs"`
}

type setPropertiesRequest struct {
	Query json.RawMessage  `json:"query"`
	Name  types.Identifier `json:"name"`
	Value types.Value      `json:"value"`
}

type indexRequest struct {
	Domain types.Domain     `json:"domain"`
	Name   types.Identifier `json:"name"`
}

// IndexList lists fully indexed property names per domain.
type IndexList struct {
	VertexProperties []types.Identifier `json:"vertex_properties"`
	EdgeProperties   []types.Identifier `json:"edge_properties"`
}

// --- Graph methods ---

// CreateVertex inserts a vertex of the given type with a server-allocated
// identity and returns the identity.
func (c *Client) CreateVertex(t types.Identifier) (uuid.UUID, error) {
	respBody, err := c.jsonRequest(http.MethodPost, "/graph/vertices", vertexCreateRequest{Type: t})
	if err != nil {
		return uuid.Nil, err
	}
	var resp vertexCreateResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return uuid.Nil, fmt.Errorf("failed to parse create vertex response: %w", err)
	}
	return resp.ID, nil
}

// CreateVertexWithID inserts a vertex with an explicit identity and reports
// whether it was newly created.
func (c *Client) CreateVertexWithID(id uuid.UUID, t types.Identifier) (bool, error) {
	respBody, err := c.jsonRequest(http.MethodPost, "/graph/vertices", vertexCreateRequest{ID: &id, Type: t})
	if err != nil {
		return false, err
	}
	var resp vertexCreateResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return false, fmt.Errorf("failed to parse create vertex response: %w", err)
	}
	return resp.Created, nil
}

// CreateEdge inserts the edge triple and reports whether it was newly
// created. Both endpoints must exist.
func (c *Client) CreateEdge(e types.Edge) (bool, error) {
	respBody, err := c.jsonRequest(http.MethodPost, "/graph/edges", edgeCreateRequest{
		OutboundID: e.Outbound,
		Type:       e.T,
		InboundID:  e.Inbound,
	})
	if err != nil {
		return false, err
	}
	var resp edgeCreateResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return false, fmt.Errorf("failed to parse create edge response: %w", err)
	}
	return resp.Created, nil
}

// Query evaluates a query tree and returns its output stages.
func (c *Client) Query(q types.Query) ([]types.QueryOutputValue, error) {
	queryData, err := types.MarshalQuery(q)
	if err != nil {
		return nil, err
	}
	respBody, err := c.jsonRequest(http.MethodPost, "/graph/query", queryRequest{Query: queryData})
	if err != nil {
		return nil, err
	}

	var resp queryResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse query response: %w", err)
	}
	outputs := make([]types.QueryOutputValue, 0, len(resp.Outputs))
	for _, data := range resp.Outputs {
		out, err := types.UnmarshalOutput(data)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, out)
	}
	return outputs, nil
}

// Delete removes everything the query matches.
func (c *Client) Delete(q types.Query) error {
	queryData, err := types.MarshalQuery(q)
	if err != nil {
		return err
	}
	_, err = c.jsonRequest(http.MethodPost, "/graph/delete", queryRequest{Query: queryData})
	return err
}

// SetProperties sets name=value on everything the query matches.
func (c *Client) SetProperties(q types.Query, name types.Identifier, value types.Value) error {
	queryData, err := types.MarshalQuery(q)
	if err != nil {
		return err
	}
	_, err = c.jsonRequest(http.MethodPost, "/graph/properties", setPropertiesRequest{
		Query: queryData,
		Name:  name,
		Value: value,
	})
	return err
}

// BulkInsert streams a batch of mixed items to the server.
func (c *Client) BulkInsert(items []types.BulkInsertItem) error {
	encoded := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		data, err := types.MarshalBulkInsertItem(item)
		if err != nil {
			return err
		}
		encoded = append(encoded, data)
	}
	_, err := c.jsonRequest(http.MethodPost, "/graph/bulk", encoded)
	return err
}

// IndexProperty declares a property name indexed within a domain.
func (c *Client) IndexProperty(domain types.Domain, name types.Identifier) error {
	_, err := c.jsonRequest(http.MethodPost, "/graph/indexes", indexRequest{Domain: domain, Name: name})
	return err
}

// ListIndexes lists indexed property names per domain.
func (c *Client) ListIndexes() (IndexList, error) {
	respBody, err := c.jsonRequest(http.MethodGet, "/graph/indexes", nil)
	if err != nil {
		return IndexList{}, err
	}
	var list IndexList
	if err := json.Unmarshal(respBody, &list); err != nil {
		return IndexList{}, fmt.Errorf("failed to parse index list: %w", err)
	}
	return list, nil
}

// --- System methods ---

// Sync forces an fsync of the server's append-only log.
func (c *Client) Sync() error {
	_, err := c.jsonRequest(http.MethodPost, "/system/sync", nil)
	return err
}

// RewriteAOF triggers a log compaction on the server.
func (c *Client) RewriteAOF() error {
	_, err := c.jsonRequest(http.MethodPost, "/system/aof-rewrite", nil)
	return err
}

// Ping checks server liveness via the unauthenticated health endpoint.
func (c *Client) Ping() error {
	resp, err := c.httpClient.Get(c.baseURL + "/healthz")
	if err != nil {
		return fmt.Errorf("connection error: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Message: "health check failed"}
	}
	return nil
}
