// Package persistence implements the append-only log that backs a GrafDB
// instance: framed, checksummed command records, a synchronous writer, and a
// lazy batching wrapper for high write throughput.
package persistence

import (
	"bufio"
	"fmt"
	"os"
	"sync"
)

// AOFWriter appends framed command payloads to the log file.
type AOFWriter struct {
	mu   sync.Mutex
	file *os.File
	buf  *bufio.Writer
	path string
}

// NewAOFWriter opens or creates the log at path.
func NewAOFWriter(path string) (*AOFWriter, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0666)
	if err != nil {
		return nil, fmt.Errorf("failed to open AOF file: %w", err)
	}
	return &AOFWriter{
		file: file,
		buf:  bufio.NewWriter(file),
		path: path,
	}, nil
}

// Write appends one command payload as a frame. The frame goes through the
// internal buffer; call Flush (or Sync) to push it to the OS.
func (a *AOFWriter) Write(payload []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return WriteFrame(a.buf, payload)
}

// Flush pushes buffered frames to the OS file descriptor.
func (a *AOFWriter) Flush() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.buf.Flush()
}

// Sync flushes and then fsyncs, making everything written so far durable.
func (a *AOFWriter) Sync() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.buf.Flush(); err != nil {
		return err
	}
	return a.file.Sync()
}

// Close flushes and closes the underlying file.
func (a *AOFWriter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.buf.Flush(); err != nil {
		_ = a.file.Close()
		return err
	}
	return a.file.Close()
}

// Path returns the log file path.
func (a *AOFWriter) Path() string {
	return a.path
}

// File exposes the underlying file for Stat-style inspection.
func (a *AOFWriter) File() *os.File {
	return a.file
}

// ReplaceWith atomically swaps the log for a freshly written file (rename)
// and reopens it for appending. Used at the end of log compaction.
func (a *AOFWriter) ReplaceWith(newFilePath string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	_ = a.buf.Flush()
	_ = a.file.Close()

	if err := os.Rename(newFilePath, a.path); err != nil {
		return fmt.Errorf("failed to replace AOF file: %w", err)
	}

	file, err := os.OpenFile(a.path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0666)
	if err != nil {
		return fmt.Errorf("failed to reopen AOF file after replace: %w", err)
	}
	a.file = file
	a.buf.Reset(file)
	return nil
}
