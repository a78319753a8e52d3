package terminal

import (
	"sync"
	"testing"
	"time"

	"github.com/GriffinCanCode/termhost/internal/domain/shell"
)

// fakeBackend feeds scripted output and records input.
type fakeBackend struct {
	out       chan []byte
	closed    chan struct{}
	closeOnce sync.Once

	mu       sync.Mutex
	written  []byte
	writeErr error
	readErr  error // returned once out is drained and closed
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		out:    make(chan []byte, 64),
		closed: make(chan struct{}),
	}
}

func (f *fakeBackend) Kind() Kind { return KindLocalPty }

func (f *fakeBackend) Write(p []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.written = append(f.written, p...)
	return nil
}

func (f *fakeBackend) ReadChunk() ([]byte, error) {
	select {
	case b, ok := <-f.out:
		if !ok {
			f.mu.Lock()
			defer f.mu.Unlock()
			if f.readErr != nil {
				return nil, f.readErr
			}
			return nil, ErrClosed
		}
		return b, nil
	case <-f.closed:
		return nil, ErrClosed
	}
}

func (f *fakeBackend) Close() error {
	f.closeOnce.Do(func() { close(f.closed) })
	return nil
}

func (f *fakeBackend) Written() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return string(f.written)
}

func (f *fakeBackend) isClosed() bool {
	select {
	case <-f.closed:
		return true
	default:
		return false
	}
}

// fakeSpawner hands out fake backends and remembers them in order.
type fakeSpawner struct {
	mu       sync.Mutex
	backends []*fakeBackend
	err      error
}

func (s *fakeSpawner) spawn(desc shell.Descriptor, geom Geometry) (Backend, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	b := newFakeBackend()
	s.backends = append(s.backends, b)
	return b, nil
}

func (s *fakeSpawner) last() *fakeBackend {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backends[len(s.backends)-1]
}

func nextEvent(t *testing.T, sub *ChanSubscriber) Event {
	t.Helper()
	select {
	case ev := <-sub.Events():
		return ev
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for session event")
		return Event{}
	}
}

// collect reads events until End and returns the concatenated output.
func collect(t *testing.T, sub *ChanSubscriber) (string, End) {
	t.Helper()
	var out []byte
	for {
		ev := nextEvent(t, sub)
		if ev.End != nil {
			return string(out), *ev.End
		}
		out = append(out, ev.Chunk.Data...)
	}
}

var testDesc = shell.Descriptor{Name: "fake", Command: "fake"}
