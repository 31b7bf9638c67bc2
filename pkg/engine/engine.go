// Package engine provides the embedded interface to a GrafDB instance: a
// typed property graph with a recursive query algebra, manually indexed
// property predicates, and an append-only log for durability.
//
// Basic usage:
//
//	opts := engine.DefaultOptions("./data")
//	db, err := engine.Open(opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sanonone/grafdb/internal/store"
	"github.com/sanonone/grafdb/pkg/metrics"
	"github.com/sanonone/grafdb/pkg/persistence"
)

// Options configures an Engine: where the log lives and how aggressively it
// is batched.
type Options struct {
	// DataDir is the directory holding the .aof file. Created if missing.
	DataDir string

	// AofFilename is the log file name (default "grafdb.aof").
	AofFilename string

	// FlushInterval is how often buffered log writes are pushed to the OS.
	FlushInterval time.Duration

	// ForceSyncInterval is how often an fsync is forced; this bounds the
	// crash-loss window.
	ForceSyncInterval time.Duration

	// MaxBufferSize is the number of buffered log entries that triggers an
	// immediate flush.
	MaxBufferSize int
}

// DefaultOptions returns a configuration suitable for most use cases.
func DefaultOptions(dataDir string) Options {
	return Options{
		DataDir:           dataDir,
		AofFilename:       "grafdb.aof",
		FlushInterval:     persistence.DefaultLazyFlushInterval,
		ForceSyncInterval: persistence.DefaultForceSyncInterval,
		MaxBufferSize:     persistence.DefaultMaxBufferSize,
	}
}

// Engine is one GrafDB instance: the in-memory store plus its log. Engines
// are independent values with an explicit Open/Close lifecycle; any number
// can coexist in one process.
type Engine struct {
	store *store.Store

	// AOF is the batched append-only log. Every mutation is encoded as a
	// command and appended before the call returns.
	AOF *persistence.LazyAOFWriter

	opts    Options
	aofPath string

	// adminMu serializes whole-log operations (compaction) against each
	// other; data operations use the store's own lock.
	adminMu sync.Mutex

	pluginMu sync.RWMutex
	plugins  map[string]registeredPlugin

	closeOnce sync.Once
}

// Open loads (or creates) the instance under opts.DataDir: it opens the log,
// replays it into memory, and starts the background flush loop. It blocks
// until the store is fully loaded.
func Open(opts Options) (*Engine, error) {
	if opts.AofFilename == "" {
		opts.AofFilename = "grafdb.aof"
	}
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = persistence.DefaultLazyFlushInterval
	}
	if opts.ForceSyncInterval <= 0 {
		opts.ForceSyncInterval = persistence.DefaultForceSyncInterval
	}
	if opts.MaxBufferSize <= 0 {
		opts.MaxBufferSize = persistence.DefaultMaxBufferSize
	}

	if err := os.MkdirAll(opts.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	e := &Engine{
		store:   store.NewStore(),
		opts:    opts,
		aofPath: filepath.Join(opts.DataDir, opts.AofFilename),
		plugins: make(map[string]registeredPlugin),
	}

	// Replay before the writer opens the file in append mode, so the replay
	// reader sees a quiet file.
	if err := e.replayAOF(); err != nil {
		return nil, fmt.Errorf("failed to replay AOF: %w", err)
	}

	writer, err := persistence.NewAOFWriter(e.aofPath)
	if err != nil {
		return nil, err
	}
	e.AOF = persistence.NewLazyAOFWriterWithConfig(writer, opts.FlushInterval, opts.ForceSyncInterval, opts.MaxBufferSize)

	metrics.VerticesTotal.Set(float64(e.store.CountVertices()))
	metrics.EdgesTotal.Set(float64(e.store.CountEdges()))

	return e, nil
}

// Close stops the log's background loop and closes the file after a final
// flush and fsync. All data written before Close is durable on return.
func (e *Engine) Close() error {
	var err error
	e.closeOnce.Do(func() {
		if e.AOF != nil {
			err = e.AOF.Close()
		}
	})
	return err
}
