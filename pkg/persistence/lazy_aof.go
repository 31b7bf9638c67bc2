package persistence

import (
	"log/slog"
	"os"
	"sync"
	"time"
)

// LazyAOFWriter batches frames in memory and flushes them periodically (or
// when the buffer fills), trading a bounded durability window for much higher
// write throughput than flushing per operation. A forced fsync runs on its
// own interval so the crash-loss window stays at roughly ForceSyncInterval.
// Callers that need a hard durability point (the sync operation, bulk ingest
// completion) call Sync directly.
type LazyAOFWriter struct {
	underlying *AOFWriter

	mu      sync.Mutex
	buffer  [][]byte
	stopped bool

	stopCh chan struct{}
	wg     sync.WaitGroup

	flushInterval     time.Duration
	forceSyncInterval time.Duration
	maxBufferSize     int
}

// Defaults balancing throughput against the crash-loss window.
const (
	DefaultLazyFlushInterval = 100 * time.Millisecond
	DefaultForceSyncInterval = 1 * time.Second
	DefaultMaxBufferSize     = 1000
)

// NewLazyAOFWriter wraps an AOFWriter with default batching parameters. The
// underlying writer should not be used directly afterwards.
func NewLazyAOFWriter(underlying *AOFWriter) *LazyAOFWriter {
	return NewLazyAOFWriterWithConfig(underlying, DefaultLazyFlushInterval, DefaultForceSyncInterval, DefaultMaxBufferSize)
}

// NewLazyAOFWriterWithConfig wraps an AOFWriter with explicit batching
// parameters and starts the background flush/sync loop.
func NewLazyAOFWriterWithConfig(underlying *AOFWriter, flushInterval, forceSyncInterval time.Duration, maxBufferSize int) *LazyAOFWriter {
	w := &LazyAOFWriter{
		underlying:        underlying,
		stopCh:            make(chan struct{}),
		flushInterval:     flushInterval,
		forceSyncInterval: forceSyncInterval,
		maxBufferSize:     maxBufferSize,
	}
	w.wg.Add(1)
	go w.backgroundLoop()
	return w
}

// Write queues one command payload. The payload is not copied; callers must
// not reuse the slice.
func (w *LazyAOFWriter) Write(payload []byte) error {
	w.mu.Lock()
	w.buffer = append(w.buffer, payload)
	shouldFlush := len(w.buffer) >= w.maxBufferSize
	w.mu.Unlock()

	if shouldFlush {
		return w.Flush()
	}
	return nil
}

// Flush drains the buffer into the underlying writer and pushes it to the OS.
// The lock is held across the whole drain-and-write: concurrent flushes must
// not interleave batches, or frames would land in the file out of write order
// and replay would apply operations in the wrong order.
func (w *LazyAOFWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flushLocked()
}

// flushLocked writes the buffered payloads through. Caller must hold w.mu.
func (w *LazyAOFWriter) flushLocked() error {
	if len(w.buffer) == 0 {
		return nil
	}
	for _, payload := range w.buffer {
		if err := w.underlying.Write(payload); err != nil {
			return err
		}
	}
	if err := w.underlying.Flush(); err != nil {
		return err
	}
	w.buffer = w.buffer[:0]
	return nil
}

// Sync drains the buffer and fsyncs: a hard durability point.
func (w *LazyAOFWriter) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.flushLocked(); err != nil {
		return err
	}
	return w.underlying.Sync()
}

// File exposes the underlying file for Stat-style inspection.
func (w *LazyAOFWriter) File() *os.File {
	return w.underlying.File()
}

// Underlying returns the wrapped writer, for compaction which needs
// ReplaceWith.
func (w *LazyAOFWriter) Underlying() *AOFWriter {
	return w.underlying
}

// Close stops the background loop, drains the buffer, fsyncs and closes the
// file.
func (w *LazyAOFWriter) Close() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	w.mu.Unlock()

	close(w.stopCh)
	w.wg.Wait()

	if err := w.Sync(); err != nil {
		_ = w.underlying.Close()
		return err
	}
	return w.underlying.Close()
}

func (w *LazyAOFWriter) backgroundLoop() {
	defer w.wg.Done()

	flushTicker := time.NewTicker(w.flushInterval)
	defer flushTicker.Stop()
	syncTicker := time.NewTicker(w.forceSyncInterval)
	defer syncTicker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-flushTicker.C:
			if err := w.Flush(); err != nil {
				slog.Error("background AOF flush failed", "error", err)
			}
		case <-syncTicker.C:
			if err := w.Sync(); err != nil {
				slog.Error("background AOF sync failed", "error", err)
			}
		}
	}
}
