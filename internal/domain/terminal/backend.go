package terminal

import "github.com/GriffinCanCode/termhost/internal/domain/shell"

// Backend is the capability set every session variant implements.
//
// Write and ReadChunk may be called concurrently with each other; each is
// called by at most one goroutine at a time per direction in practice, but
// implementations must serialize their own handles.
type Backend interface {
	Kind() Kind
	// Write forwards raw bytes to the input side.
	Write(p []byte) error
	// ReadChunk blocks until output is available and returns it. It returns
	// ErrClosed once the output side is exhausted.
	ReadChunk() ([]byte, error)
	// Close releases the backend. It must unblock a pending ReadChunk.
	Close() error
}

// SpawnFunc creates the backend for a descriptor.
type SpawnFunc func(desc shell.Descriptor, geom Geometry) (Backend, error)

// LocalSpawner returns a SpawnFunc producing LocalPty backends.
func LocalSpawner(readBufferSize int) SpawnFunc {
	return func(desc shell.Descriptor, geom Geometry) (Backend, error) {
		return OpenLocalPty(desc, geom, readBufferSize)
	}
}

type pidder interface {
	Pid() int
}
