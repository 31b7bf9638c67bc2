package persistence

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"
)

// A writer goroutine appends numbered frames while another goroutine flushes
// concurrently. Whatever the interleaving, frames must land in the file in
// write order, because replay applies them in file order.
func TestLazyAOFWriterConcurrentFlushKeepsOrder(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/order.aof"

	underlying, err := NewAOFWriter(path)
	if err != nil {
		t.Fatal(err)
	}
	// Long tickers keep the background loop quiet; the ordering pressure
	// comes from the foreground flusher below racing the size-triggered
	// flushes in Write.
	w := NewLazyAOFWriterWithConfig(underlying, time.Hour, time.Hour, 8)

	stop := make(chan struct{})
	var flusher sync.WaitGroup
	flusher.Add(1)
	go func() {
		defer flusher.Done()
		for {
			select {
			case <-stop:
				return
			default:
				if err := w.Flush(); err != nil {
					t.Errorf("concurrent flush failed: %v", err)
					return
				}
			}
		}
	}()

	const frames = 20000
	for i := 0; i < frames; i++ {
		if err := w.Write([]byte(fmt.Sprintf("%08d", i))); err != nil {
			t.Fatal(err)
		}
	}
	close(stop)
	flusher.Wait()
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	next := 0
	for {
		payload, err := ReadFrame(r)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		seq, err := strconv.Atoi(string(payload))
		if err != nil {
			t.Fatalf("frame %d: bad payload %q", next, payload)
		}
		if seq != next {
			t.Fatalf("log order violated at frame %d: got seq %d", next, seq)
		}
		next++
	}
	if next != frames {
		t.Fatalf("replayed %d frames, want %d", next, frames)
	}
}
