package server

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/sanonone/grafdb/pkg/types"
)

// VertexCreateRequest defines the body for vertex creation. With ID set, the
// server inserts exactly that identity; otherwise it allocates a fresh one.
type VertexCreateRequest struct {
	ID   *uuid.UUID       `json:"id,omitempty"`
	Type types.Identifier `json:"type"`
}

// VertexCreateResponse reports the identity and whether it was newly created.
type VertexCreateResponse struct {
	ID      uuid.UUID `json:"id"`
	Created bool      `json:"created"`
}

// EdgeCreateRequest defines the body for edge creation.
type EdgeCreateRequest struct {
	OutboundID uuid.UUID        `json:"outbound_id"`
	Type       types.Identifier `json:"type"`
	InboundID  uuid.UUID        `json:"inbound_id"`
}

// EdgeCreateResponse reports whether the triple was newly created.
type EdgeCreateResponse struct {
	Created bool `json:"created"`
}

// QueryRequest carries one encoded query tree.
type QueryRequest struct {
	Query json.RawMessage `json:"query"`
}

// QueryResponse carries the encoded output stages, innermost include first.
type QueryResponse struct {
	Outputs []json.RawMessage `json:"outputs"`
}

// SetPropertiesRequest sets name=value on everything the query matches.
type SetPropertiesRequest struct {
	Query json.RawMessage  `json:"query"`
	Name  types.Identifier `json:"name"`
	Value types.Value      `json:"value"`
}

// IndexRequest declares a property name indexed within a domain.
type IndexRequest struct {
	Domain types.Domain     `json:"domain"`
	Name   types.Identifier `json:"name"`
}

// IndexListResponse lists fully indexed property names per domain.
type IndexListResponse struct {
	VertexProperties []types.Identifier `json:"vertex_properties"`
	EdgeProperties   []types.Identifier `json:"edge_properties"`
}

// PluginInfo describes one registered plugin for discovery.
type PluginInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// PluginExecuteRequest carries the raw JSON argument for a plugin call.
type PluginExecuteRequest struct {
	Arg types.Value `json:"arg,omitempty"`
}

// PluginExecuteResponse carries the raw JSON result of a plugin call.
type PluginExecuteResponse struct {
	Result types.Value `json:"result"`
}
