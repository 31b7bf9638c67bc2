package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sanonone/grafdb/pkg/persistence"
	"github.com/sanonone/grafdb/pkg/types"
)

// RewriteAOF compacts the log: the current state is dumped as a minimal
// command sequence to a temporary file, which then atomically replaces the
// live log. Deletes and overwritten property values disappear from the
// rewritten log, so its size tracks the live data set instead of the write
// history. Writes arriving during the dump stay in the lazy buffer until the
// swap completes, then land in the new file.
func (e *Engine) RewriteAOF() error {
	e.adminMu.Lock()
	defer e.adminMu.Unlock()

	start := time.Now()
	tmpPath := e.aofPath + ".rewrite"

	tmp, err := persistence.NewAOFWriter(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to open rewrite file: %w", err)
	}

	if err := e.dumpState(tmp); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to dump state: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync rewrite file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close rewrite file: %w", err)
	}

	// Flush anything buffered against the old file before the swap so no
	// acknowledged write is lost; it is redundant with the dump at worst.
	if err := e.AOF.Flush(); err != nil {
		return fmt.Errorf("failed to flush before swap: %w", err)
	}
	if err := e.AOF.Underlying().ReplaceWith(tmpPath); err != nil {
		return err
	}

	slog.Info("AOF rewrite complete", "path", e.aofPath, "duration", time.Since(start))
	return nil
}

// dumpState writes the whole store as create/set commands: vertices, edges,
// properties, and finally the index declarations so a replay indexes after
// the data it covers is loaded.
func (e *Engine) dumpState(w *persistence.AOFWriter) error {
	var dumpErr error

	e.store.ScanVertices(nil, nil, 0, func(v types.Vertex) bool {
		dumpErr = w.Write(encodeCreateVertex(v))
		return dumpErr == nil
	})
	if dumpErr != nil {
		return dumpErr
	}

	e.store.ScanEdges(func(edge types.Edge) bool {
		dumpErr = w.Write(encodeCreateEdge(edge))
		return dumpErr == nil
	})
	if dumpErr != nil {
		return dumpErr
	}

	e.store.IterateVertexProperties(func(id uuid.UUID, name types.Identifier, value types.Value) bool {
		dumpErr = w.Write(encodeSetVertexProperty(id, name, value))
		return dumpErr == nil
	})
	if dumpErr != nil {
		return dumpErr
	}

	e.store.IterateEdgeProperties(func(edge types.Edge, name types.Identifier, value types.Value) bool {
		dumpErr = w.Write(encodeSetEdgeProperty(edge, name, value))
		return dumpErr == nil
	})
	if dumpErr != nil {
		return dumpErr
	}

	for _, name := range e.store.IndexedVertexPropertyNames() {
		if err := w.Write(encodeIndexProperty(types.DomainVertex, name)); err != nil {
			return err
		}
	}
	for _, name := range e.store.IndexedEdgePropertyNames() {
		if err := w.Write(encodeIndexProperty(types.DomainEdge, name)); err != nil {
			return err
		}
	}
	return nil
}
