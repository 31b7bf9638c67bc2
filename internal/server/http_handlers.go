package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/pprof"
	"strings"

	"github.com/sanonone/grafdb/pkg/types"
)

// registerHTTPHandlers sets up the routes for the REST API.
func (s *Server) registerHTTPHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/", s.router)
}

// router is the main manual router. It inspects the URL and delegates to the
// correct handler.
func (s *Server) router(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	// --- Debug endpoints (pprof) ---
	if strings.HasPrefix(path, "/debug/pprof") {
		switch {
		case path == "/debug/pprof/":
			pprof.Index(w, r)
		case path == "/debug/pprof/cmdline":
			pprof.Cmdline(w, r)
		case path == "/debug/pprof/profile":
			pprof.Profile(w, r)
		case path == "/debug/pprof/symbol":
			pprof.Symbol(w, r)
		case path == "/debug/pprof/trace":
			pprof.Trace(w, r)
		default:
			s.writeHTTPError(w, http.StatusNotFound, "pprof endpoint not found")
		}
		return
	}

	// --- System endpoints ---
	switch path {
	case "/system/aof-rewrite":
		s.handleAOFRewrite(w, r)
		return
	case "/system/sync":
		s.handleSync(w, r)
		return
	}

	// --- Graph endpoints ---
	switch path {
	case "/graph/vertices":
		s.handleCreateVertex(w, r)
		return
	case "/graph/edges":
		s.handleCreateEdge(w, r)
		return
	case "/graph/query":
		s.handleQuery(w, r)
		return
	case "/graph/delete":
		s.handleDelete(w, r)
		return
	case "/graph/properties":
		s.handleSetProperties(w, r)
		return
	case "/graph/bulk":
		s.handleBulkInsert(w, r)
		return
	case "/graph/indexes":
		s.handleIndexes(w, r)
		return
	}

	// --- Plugin endpoints ---
	if path == "/plugins" {
		s.handleListPlugins(w, r)
		return
	}
	if name, ok := strings.CutPrefix(path, "/plugins/"); ok && name != "" {
		s.handleExecutePlugin(w, r, name)
		return
	}

	s.writeHTTPError(w, http.StatusNotFound, "endpoint not found")
}

func (s *Server) handleCreateVertex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeHTTPError(w, http.StatusMethodNotAllowed, "use POST to create vertices")
		return
	}

	var req VertexCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if _, err := types.NewIdentifier(string(req.Type)); err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.ID == nil {
		id, err := s.Engine.CreateVertexFromType(req.Type)
		if err != nil {
			s.writeEngineError(w, err)
			return
		}
		s.writeHTTPResponse(w, http.StatusCreated, VertexCreateResponse{ID: id, Created: true})
		return
	}

	created, err := s.Engine.CreateVertex(types.Vertex{ID: *req.ID, T: req.Type})
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}
	s.writeHTTPResponse(w, status, VertexCreateResponse{ID: *req.ID, Created: created})
}

func (s *Server) handleCreateEdge(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeHTTPError(w, http.StatusMethodNotAllowed, "use POST to create edges")
		return
	}

	var req EdgeCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if _, err := types.NewIdentifier(string(req.Type)); err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.Engine.CreateEdge(types.Edge{Outbound: req.OutboundID, T: req.Type, Inbound: req.InboundID})
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}
	s.writeHTTPResponse(w, status, EdgeCreateResponse{Created: created})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeHTTPError(w, http.StatusMethodNotAllowed, "use POST to run queries")
		return
	}

	q, ok := s.decodeQuery(w, r)
	if !ok {
		return
	}

	outputs, err := s.Engine.Get(r.Context(), q)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	encoded := make([]json.RawMessage, 0, len(outputs))
	for _, out := range outputs {
		data, err := types.MarshalOutput(out)
		if err != nil {
			s.writeHTTPError(w, http.StatusInternalServerError, err.Error())
			return
		}
		encoded = append(encoded, data)
	}
	s.writeHTTPResponse(w, http.StatusOK, QueryResponse{Outputs: encoded})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodDelete {
		s.writeHTTPError(w, http.StatusMethodNotAllowed, "use POST or DELETE")
		return
	}

	q, ok := s.decodeQuery(w, r)
	if !ok {
		return
	}

	if err := s.Engine.Delete(r.Context(), q); err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeHTTPResponse(w, http.StatusOK, map[string]string{"status": "OK"})
}

func (s *Server) handleSetProperties(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodPut {
		s.writeHTTPError(w, http.StatusMethodNotAllowed, "use POST or PUT to set properties")
		return
	}

	var req SetPropertiesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if _, err := types.NewIdentifier(string(req.Name)); err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, err.Error())
		return
	}
	q, err := types.UnmarshalQuery(req.Query)
	if err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.Engine.SetProperties(r.Context(), q, req.Name, req.Value); err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeHTTPResponse(w, http.StatusOK, map[string]string{"status": "OK"})
}

func (s *Server) handleBulkInsert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeHTTPError(w, http.StatusMethodNotAllowed, "use POST for bulk insert")
		return
	}

	var raw []json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, "invalid JSON: expected an array of bulk items")
		return
	}

	items := make([]types.BulkInsertItem, 0, len(raw))
	for _, data := range raw {
		item, err := types.UnmarshalBulkInsertItem(data)
		if err != nil {
			s.writeHTTPError(w, http.StatusBadRequest, err.Error())
			return
		}
		items = append(items, item)
	}

	if err := s.Engine.BulkInsert(items); err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeHTTPResponse(w, http.StatusOK, map[string]string{"status": "OK"})
}

// handleIndexes lists indexed property names (GET) or declares a new indexed
// name (POST).
func (s *Server) handleIndexes(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.writeHTTPResponse(w, http.StatusOK, IndexListResponse{
			VertexProperties: s.Engine.IndexedVertexProperties(),
			EdgeProperties:   s.Engine.IndexedEdgeProperties(),
		})
	case http.MethodPost:
		var req IndexRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeHTTPError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
			return
		}
		if _, err := types.NewIdentifier(string(req.Name)); err != nil {
			s.writeHTTPError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := s.Engine.IndexProperty(req.Domain, req.Name); err != nil {
			s.writeEngineError(w, err)
			return
		}
		s.writeHTTPResponse(w, http.StatusOK, map[string]string{"status": "OK"})
	default:
		s.writeHTTPError(w, http.StatusMethodNotAllowed, "only GET and POST allowed on /graph/indexes")
	}
}

func (s *Server) handleListPlugins(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeHTTPError(w, http.StatusMethodNotAllowed, "use GET to list plugins")
		return
	}

	plugins := s.Engine.Plugins()
	infos := make([]PluginInfo, 0, len(plugins))
	for _, p := range plugins {
		infos = append(infos, PluginInfo{Name: p.Name, Description: p.Description})
	}
	s.writeHTTPResponse(w, http.StatusOK, infos)
}

func (s *Server) handleExecutePlugin(w http.ResponseWriter, r *http.Request, name string) {
	if r.Method != http.MethodPost {
		s.writeHTTPError(w, http.StatusMethodNotAllowed, "use POST to execute a plugin")
		return
	}

	var req PluginExecuteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	result, err := s.Engine.ExecutePlugin(r.Context(), name, req.Arg)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeHTTPResponse(w, http.StatusOK, PluginExecuteResponse{Result: result})
}

func (s *Server) handleAOFRewrite(w http.ResponseWriter, r *http.Request) {
	// Only POST for actions that modify server state.
	if r.Method != http.MethodPost {
		s.writeHTTPError(w, http.StatusMethodNotAllowed, "use POST to start an AOF rewrite")
		return
	}

	if err := s.Engine.RewriteAOF(); err != nil {
		s.writeHTTPError(w, http.StatusInternalServerError, "AOF rewrite failed: "+err.Error())
		return
	}
	s.writeHTTPResponse(w, http.StatusOK, map[string]string{"status": "OK", "message": "AOF rewrite completed"})
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeHTTPError(w, http.StatusMethodNotAllowed, "use POST to sync")
		return
	}

	if err := s.Engine.Sync(); err != nil {
		s.writeHTTPError(w, http.StatusInternalServerError, "sync failed: "+err.Error())
		return
	}
	s.writeHTTPResponse(w, http.StatusOK, map[string]string{"status": "OK"})
}

func (s *Server) decodeQuery(w http.ResponseWriter, r *http.Request) (types.Query, bool) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, "invalid JSON: expected an object with a 'query' key")
		return nil, false
	}
	q, err := types.UnmarshalQuery(req.Query)
	if err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return q, true
}

// writeEngineError maps engine errors onto HTTP status codes: caller mistakes
// become 4xx, everything else 500.
func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, types.ErrInvalidQuery),
		errors.Is(err, types.ErrInvalidIdentifier),
		errors.Is(err, types.ErrMalformedValue),
		errors.Is(err, types.ErrIndexRequired):
		s.writeHTTPError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, types.ErrPluginNotFound):
		s.writeHTTPError(w, http.StatusNotFound, err.Error())
	default:
		s.writeHTTPError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) writeHTTPResponse(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeHTTPError(w http.ResponseWriter, statusCode int, message string) {
	s.writeHTTPResponse(w, statusCode, map[string]string{"error": message})
}
