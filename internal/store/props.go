package store

import (
	"github.com/google/uuid"
	"github.com/tidwall/btree"

	"github.com/sanonone/grafdb/pkg/types"
)

// propertyTables owns the vertex and edge property tables, keyed
// (owner, name) so that listing an entity's properties is a prefix ascend.
// A property does not exist until set; absence is distinct from JSON null.
type propertyTables struct {
	vertexProps *btree.BTreeG[vertexPropItem]
	edgeProps   *btree.BTreeG[edgePropItem]
}

func newPropertyTables() *propertyTables {
	return &propertyTables{
		vertexProps: btree.NewBTreeG(vertexPropLess),
		edgeProps:   btree.NewBTreeG(edgePropLess),
	}
}

func (p *propertyTables) getVertexProperty(id uuid.UUID, name types.Identifier) (types.Value, bool) {
	item, ok := p.vertexProps.Get(vertexPropItem{id: id, name: name})
	if !ok {
		return nil, false
	}
	return item.value, true
}

// setVertexProperty stores the value and returns the previous one, if any.
func (p *propertyTables) setVertexProperty(id uuid.UUID, name types.Identifier, value types.Value) (types.Value, bool) {
	prev, existed := p.vertexProps.Set(vertexPropItem{id: id, name: name, value: value})
	if !existed {
		return nil, false
	}
	return prev.value, true
}

func (p *propertyTables) deleteVertexProperty(id uuid.UUID, name types.Identifier) (types.Value, bool) {
	prev, existed := p.vertexProps.Delete(vertexPropItem{id: id, name: name})
	if !existed {
		return nil, false
	}
	return prev.value, true
}

// allVertexProperties lists an entity's properties in name order. A vertex
// with no properties yields an empty (nil) list, not an error.
func (p *propertyTables) allVertexProperties(id uuid.UUID) []types.NamedProperty {
	var out []types.NamedProperty
	p.vertexProps.Ascend(vertexPropItem{id: id}, func(item vertexPropItem) bool {
		if item.id != id {
			return false
		}
		out = append(out, types.NamedProperty{Name: item.name, Value: item.value})
		return true
	})
	return out
}

// vertexPropertyNames lists the names set on a vertex; used by cascades.
func (p *propertyTables) vertexPropertyNames(id uuid.UUID) []types.Identifier {
	var out []types.Identifier
	p.vertexProps.Ascend(vertexPropItem{id: id}, func(item vertexPropItem) bool {
		if item.id != id {
			return false
		}
		out = append(out, item.name)
		return true
	})
	return out
}

// scanVertexProperties walks the whole vertex property table. Used by index
// seeding and log compaction.
func (p *propertyTables) scanVertexProperties(yield func(id uuid.UUID, name types.Identifier, value types.Value) bool) {
	p.vertexProps.Scan(func(item vertexPropItem) bool {
		return yield(item.id, item.name, item.value)
	})
}

func (p *propertyTables) getEdgeProperty(e types.Edge, name types.Identifier) (types.Value, bool) {
	item, ok := p.edgeProps.Get(edgePropItem{edge: e, name: name})
	if !ok {
		return nil, false
	}
	return item.value, true
}

func (p *propertyTables) setEdgeProperty(e types.Edge, name types.Identifier, value types.Value) (types.Value, bool) {
	prev, existed := p.edgeProps.Set(edgePropItem{edge: e, name: name, value: value})
	if !existed {
		return nil, false
	}
	return prev.value, true
}

func (p *propertyTables) deleteEdgeProperty(e types.Edge, name types.Identifier) (types.Value, bool) {
	prev, existed := p.edgeProps.Delete(edgePropItem{edge: e, name: name})
	if !existed {
		return nil, false
	}
	return prev.value, true
}

func (p *propertyTables) allEdgeProperties(e types.Edge) []types.NamedProperty {
	var out []types.NamedProperty
	p.edgeProps.Ascend(edgePropItem{edge: e}, func(item edgePropItem) bool {
		if item.edge != e {
			return false
		}
		out = append(out, types.NamedProperty{Name: item.name, Value: item.value})
		return true
	})
	return out
}

func (p *propertyTables) edgePropertyNames(e types.Edge) []types.Identifier {
	var out []types.Identifier
	p.edgeProps.Ascend(edgePropItem{edge: e}, func(item edgePropItem) bool {
		if item.edge != e {
			return false
		}
		out = append(out, item.name)
		return true
	})
	return out
}

func (p *propertyTables) scanEdgeProperties(yield func(e types.Edge, name types.Identifier, value types.Value) bool) {
	p.edgeProps.Scan(func(item edgePropItem) bool {
		return yield(item.edge, item.name, item.value)
	})
}
