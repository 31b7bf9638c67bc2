package types

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// BulkInsertItem is one element of a bulk ingest stream. The closed set of
// implementations is BulkVertex, BulkEdge, BulkVertexProperty and
// BulkEdgeProperty.
type BulkInsertItem interface {
	bulkInsertItem()
}

// BulkVertex inserts a vertex.
type BulkVertex struct {
	Vertex Vertex `json:"vertex"`
}

// BulkEdge inserts an edge. Referential integrity is not checked on the bulk
// path; the edge may name vertices that do not (yet) exist.
type BulkEdge struct {
	Edge Edge `json:"edge"`
}

// BulkVertexProperty sets a property on a vertex.
type BulkVertexProperty struct {
	ID    uuid.UUID  `json:"id"`
	Name  Identifier `json:"name"`
	Value Value      `json:"value"`
}

// BulkEdgeProperty sets a property on an edge.
type BulkEdgeProperty struct {
	Edge  Edge       `json:"edge"`
	Name  Identifier `json:"name"`
	Value Value      `json:"value"`
}

func (BulkVertex) bulkInsertItem()         {}
func (BulkEdge) bulkInsertItem()           {}
func (BulkVertexProperty) bulkInsertItem() {}
func (BulkEdgeProperty) bulkInsertItem()   {}

// Wire tags for bulk items.
const (
	bulkTagVertex         = "vertex"
	bulkTagEdge           = "edge"
	bulkTagVertexProperty = "vertex_property"
	bulkTagEdgeProperty   = "edge_property"
)

type bulkEnvelope struct {
	Type string          `json:"type"`
	Item json.RawMessage `json:"item"`
}

// MarshalBulkInsertItem encodes an item as {"type": ..., "item": ...}.
func MarshalBulkInsertItem(item BulkInsertItem) ([]byte, error) {
	var tag string
	switch item.(type) {
	case BulkVertex:
		tag = bulkTagVertex
	case BulkEdge:
		tag = bulkTagEdge
	case BulkVertexProperty:
		tag = bulkTagVertexProperty
	case BulkEdgeProperty:
		tag = bulkTagEdgeProperty
	default:
		return nil, fmt.Errorf("unknown bulk insert item %T", item)
	}
	body, err := json.Marshal(item)
	if err != nil {
		return nil, err
	}
	return json.Marshal(bulkEnvelope{Type: tag, Item: body})
}

// UnmarshalBulkInsertItem decodes an item produced by MarshalBulkInsertItem.
func UnmarshalBulkInsertItem(data []byte) (BulkInsertItem, error) {
	var env bulkEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	switch env.Type {
	case bulkTagVertex:
		var item BulkVertex
		if err := json.Unmarshal(env.Item, &item); err != nil {
			return nil, err
		}
		return item, nil
	case bulkTagEdge:
		var item BulkEdge
		if err := json.Unmarshal(env.Item, &item); err != nil {
			return nil, err
		}
		return item, nil
	case bulkTagVertexProperty:
		var item BulkVertexProperty
		if err := json.Unmarshal(env.Item, &item); err != nil {
			return nil, err
		}
		return item, nil
	case bulkTagEdgeProperty:
		var item BulkEdgeProperty
		if err := json.Unmarshal(env.Item, &item); err != nil {
			return nil, err
		}
		return item, nil
	default:
		return nil, fmt.Errorf("unknown bulk insert item type %q", env.Type)
	}
}
