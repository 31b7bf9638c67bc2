package store

import (
	"github.com/tidwall/btree"

	"github.com/sanonone/grafdb/pkg/types"
)

// Property indexes answer presence and value-equality predicates. Each
// (domain, name) pair walks the state machine unindexed → indexing → indexed:
// an absent map entry is unindexed; during indexing the seed scan fills the
// index while concurrent writers dual-write into it; the flip to indexed
// happens under the store write lock, so no reader ever consults a partially
// seeded index (lookups refuse anything but the indexed state). Indexing is
// never revoked.
type indexState int

const (
	stateIndexing indexState = iota + 1
	stateIndexed
)

// propertyIndex is one index over a single property name. M is the member
// key: vertex identities for the vertex domain, edge triples for the edge
// domain. Members are kept in ordered sets so query results come out in a
// deterministic identity order.
type propertyIndex[M any] struct {
	state    indexState
	presence *btree.BTreeG[M]
	byValue  map[string]*btree.BTreeG[M]
	less     func(M, M) bool
}

func newPropertyIndex[M any](less func(M, M) bool) *propertyIndex[M] {
	return &propertyIndex[M]{
		state:    stateIndexing,
		presence: btree.NewBTreeG(less),
		byValue:  make(map[string]*btree.BTreeG[M]),
		less:     less,
	}
}

func (idx *propertyIndex[M]) insert(member M, canonical string) {
	idx.presence.Set(member)
	bucket, ok := idx.byValue[canonical]
	if !ok {
		bucket = btree.NewBTreeG(idx.less)
		idx.byValue[canonical] = bucket
	}
	bucket.Set(member)
}

func (idx *propertyIndex[M]) remove(member M, canonical string) {
	idx.presence.Delete(member)
	if bucket, ok := idx.byValue[canonical]; ok {
		bucket.Delete(member)
		if bucket.Len() == 0 {
			delete(idx.byValue, canonical)
		}
	}
}

// indexSet is the per-domain collection of property indexes.
type indexSet[M any] struct {
	indexes map[types.Identifier]*propertyIndex[M]
	less    func(M, M) bool
}

func newIndexSet[M any](less func(M, M) bool) *indexSet[M] {
	return &indexSet[M]{
		indexes: make(map[types.Identifier]*propertyIndex[M]),
		less:    less,
	}
}

// begin moves name to the indexing state and returns the index to seed.
// If the name is already indexing or indexed, it is returned as-is and the
// second result is false.
func (s *indexSet[M]) begin(name types.Identifier) (*propertyIndex[M], bool) {
	if idx, ok := s.indexes[name]; ok {
		return idx, false
	}
	idx := newPropertyIndex(s.less)
	s.indexes[name] = idx
	return idx, true
}

// finish flips name to the indexed state. Must run under the store write lock.
func (s *indexSet[M]) finish(name types.Identifier) {
	if idx, ok := s.indexes[name]; ok {
		idx.state = stateIndexed
	}
}

func (s *indexSet[M]) isIndexed(name types.Identifier) bool {
	idx, ok := s.indexes[name]
	return ok && idx.state == stateIndexed
}

// names lists every name in the indexed state, for log compaction.
func (s *indexSet[M]) names() []types.Identifier {
	var out []types.Identifier
	for name, idx := range s.indexes {
		if idx.state == stateIndexed {
			out = append(out, name)
		}
	}
	return out
}

// update maintains the index for one property write. oldCanonical is the
// canonical form of the value being replaced (nil if the property was not
// set); newCanonical is the incoming value (nil for a delete). A name with no
// index is a no-op. Writers call this for names in the indexing state too:
// that is the dual-write that keeps the seed scan honest.
func (s *indexSet[M]) update(name types.Identifier, member M, oldCanonical, newCanonical *string) {
	idx, ok := s.indexes[name]
	if !ok {
		return
	}
	if oldCanonical != nil {
		idx.remove(member, *oldCanonical)
	}
	if newCanonical != nil {
		idx.insert(member, *newCanonical)
	}
}

// members returns every member with the property set, in member order.
// Fails with ErrIndexRequired unless the name is fully indexed.
func (s *indexSet[M]) members(name types.Identifier) ([]M, error) {
	idx, ok := s.indexes[name]
	if !ok || idx.state != stateIndexed {
		return nil, types.IndexRequiredError(name)
	}
	out := make([]M, 0, idx.presence.Len())
	idx.presence.Scan(func(m M) bool {
		out = append(out, m)
		return true
	})
	return out, nil
}

// membersByValue returns members whose property equals the canonical value.
func (s *indexSet[M]) membersByValue(name types.Identifier, canonical string) ([]M, error) {
	idx, ok := s.indexes[name]
	if !ok || idx.state != stateIndexed {
		return nil, types.IndexRequiredError(name)
	}
	bucket, ok := idx.byValue[canonical]
	if !ok {
		return nil, nil
	}
	out := make([]M, 0, bucket.Len())
	bucket.Scan(func(m M) bool {
		out = append(out, m)
		return true
	})
	return out, nil
}
