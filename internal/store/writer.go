package store

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

const defaultWriteTimeout = 5 * time.Second

// Writer applies saves to a BlobStore on a single background goroutine.
//
// Save never blocks. Saves of the same key that are still queued collapse into
// the latest one, so the last write for a key always carries the newest state.
type Writer struct {
	dst     BlobStore
	logger  *log.Logger
	timeout time.Duration

	mu      sync.Mutex
	pending map[string][]byte
	order   []string
	closed  bool

	wake     chan struct{}
	flushReq chan chan struct{}
	quit     chan struct{}
	done     chan struct{}
	stop     sync.Once

	written  atomic.Int64
	failures atomic.Int64
}

// NewWriter starts a writer for dst. A nil logger uses log.Default().
func NewWriter(dst BlobStore, logger *log.Logger) *Writer {
	if logger == nil {
		logger = log.Default()
	}
	w := &Writer{
		dst:      dst,
		logger:   logger,
		timeout:  defaultWriteTimeout,
		pending:  make(map[string][]byte),
		wake:     make(chan struct{}, 1),
		flushReq: make(chan chan struct{}),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go w.run()
	return w
}

// Save queues blob to be written under key.
func (w *Writer) Save(key string, blob []byte) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		w.logger.Printf("writer closed, dropping save of %s", key)
		return
	}
	if _, queued := w.pending[key]; !queued {
		w.order = append(w.order, key)
	}
	w.pending[key] = blob
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Load reads straight from the underlying store, so a Writer can also serve
// as the source of the initial load.
func (w *Writer) Load(ctx context.Context, key string) ([]byte, bool, error) {
	return w.dst.Load(ctx, key)
}

// Flush waits until every save queued before the call has been written.
func (w *Writer) Flush(ctx context.Context) error {
	ack := make(chan struct{})
	select {
	case w.flushReq <- ack:
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-ack:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close writes whatever is still queued and stops the writer. Later saves are
// dropped.
func (w *Writer) Close(ctx context.Context) error {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	w.stop.Do(func() { close(w.quit) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Written returns the number of successful writes.
func (w *Writer) Written() int64 {
	return w.written.Load()
}

// Failures returns the number of writes that returned an error.
func (w *Writer) Failures() int64 {
	return w.failures.Load()
}

func (w *Writer) run() {
	defer close(w.done)
	for {
		select {
		case <-w.wake:
			w.drain()
		case ack := <-w.flushReq:
			w.drain()
			close(ack)
		case <-w.quit:
			w.drain()
			return
		}
	}
}

func (w *Writer) drain() {
	for {
		w.mu.Lock()
		if len(w.order) == 0 {
			w.mu.Unlock()
			return
		}
		key := w.order[0]
		w.order = w.order[1:]
		blob := w.pending[key]
		delete(w.pending, key)
		w.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		err := w.dst.Save(ctx, key, blob)
		cancel()
		if err != nil {
			w.failures.Add(1)
			w.logger.Printf("save %s: %v", key, err)
			continue
		}
		w.written.Add(1)
	}
}
