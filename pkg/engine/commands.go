package engine

import (
	"github.com/google/uuid"

	"github.com/sanonone/grafdb/pkg/persistence"
	"github.com/sanonone/grafdb/pkg/types"
)

// Log command names. UUIDs are logged in text form to keep the log
// inspectable; values are raw JSON.
const (
	cmdCreateVertex      = "CVERT"
	cmdCreateEdge        = "CEDGE"
	cmdDeleteVertex      = "DVERT"
	cmdDeleteEdge        = "DEDGE"
	cmdSetVertexProperty = "VPSET"
	cmdDelVertexProperty = "VPDEL"
	cmdSetEdgeProperty   = "EPSET"
	cmdDelEdgeProperty   = "EPDEL"
	cmdIndexVertexProp   = "IDXV"
	cmdIndexEdgeProp     = "IDXE"
)

func encodeCreateVertex(v types.Vertex) []byte {
	return persistence.EncodeCommand(cmdCreateVertex, []byte(v.ID.String()), []byte(v.T))
}

func encodeCreateEdge(e types.Edge) []byte {
	return persistence.EncodeCommand(cmdCreateEdge, []byte(e.Outbound.String()), []byte(e.T), []byte(e.Inbound.String()))
}

func encodeDeleteVertex(id uuid.UUID) []byte {
	return persistence.EncodeCommand(cmdDeleteVertex, []byte(id.String()))
}

func encodeDeleteEdge(e types.Edge) []byte {
	return persistence.EncodeCommand(cmdDeleteEdge, []byte(e.Outbound.String()), []byte(e.T), []byte(e.Inbound.String()))
}

func encodeSetVertexProperty(id uuid.UUID, name types.Identifier, value types.Value) []byte {
	return persistence.EncodeCommand(cmdSetVertexProperty, []byte(id.String()), []byte(name), value)
}

func encodeDelVertexProperty(id uuid.UUID, name types.Identifier) []byte {
	return persistence.EncodeCommand(cmdDelVertexProperty, []byte(id.String()), []byte(name))
}

func encodeSetEdgeProperty(e types.Edge, name types.Identifier, value types.Value) []byte {
	return persistence.EncodeCommand(cmdSetEdgeProperty, []byte(e.Outbound.String()), []byte(e.T), []byte(e.Inbound.String()), []byte(name), value)
}

func encodeDelEdgeProperty(e types.Edge, name types.Identifier) []byte {
	return persistence.EncodeCommand(cmdDelEdgeProperty, []byte(e.Outbound.String()), []byte(e.T), []byte(e.Inbound.String()), []byte(name))
}

func encodeIndexProperty(domain types.Domain, name types.Identifier) []byte {
	if domain == types.DomainEdge {
		return persistence.EncodeCommand(cmdIndexEdgeProp, []byte(name))
	}
	return persistence.EncodeCommand(cmdIndexVertexProp, []byte(name))
}
