package terminal

import (
	"errors"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/GriffinCanCode/termhost/internal/domain/shell"
	"github.com/creack/pty"
)

// DefaultReadBufferSize is the per-read chunk size for PTY output.
const DefaultReadBufferSize = 4096

// killGrace is how long a hung-up process group gets before SIGKILL.
const killGrace = 500 * time.Millisecond

// LocalPty runs a child process attached to a pseudo-terminal.
type LocalPty struct {
	cmd  *exec.Cmd
	ptmx *os.File

	// Input and output are locked separately so a blocked read never
	// stalls a write.
	inMu  sync.Mutex
	outMu sync.Mutex
	buf   []byte

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error

	exited  chan struct{}
	exitErr error
}

// OpenLocalPty starts desc behind a new PTY sized to geom. The child
// inherits the current environment plus the descriptor's entries.
func OpenLocalPty(desc shell.Descriptor, geom Geometry, readBufferSize int) (*LocalPty, error) {
	if err := desc.Validate(); err != nil {
		return nil, &SpawnError{Command: desc.Command, Err: err}
	}
	if readBufferSize <= 0 {
		readBufferSize = DefaultReadBufferSize
	}
	geom = geom.OrDefault(DefaultGeometry)

	cmd := exec.Command(desc.Command, desc.Args...)
	cmd.Dir = desc.Cwd
	cmd.Env = append(os.Environ(), desc.Environ()...)

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{
		Rows: geom.Rows,
		Cols: geom.Cols,
	})
	if err != nil {
		return nil, &SpawnError{Command: desc.Command, Err: err}
	}
	if ptmx, err = pollable(ptmx); err != nil {
		_ = killGroup(cmd.Process)
		_ = cmd.Wait()
		return nil, &SpawnError{Command: desc.Command, Err: err}
	}

	l := &LocalPty{
		cmd:    cmd,
		ptmx:   ptmx,
		buf:    make([]byte, readBufferSize),
		exited: make(chan struct{}),
	}
	go l.wait()
	return l, nil
}

// wait reaps the child. The PTY stays open so output still buffered in
// the kernel can be drained; the reader sees EIO once it is empty.
func (l *LocalPty) wait() {
	l.exitErr = l.cmd.Wait()
	close(l.exited)
}

// Kind implements Backend.
func (l *LocalPty) Kind() Kind { return KindLocalPty }

// Pid returns the child's process ID.
func (l *LocalPty) Pid() int {
	if l.cmd.Process == nil {
		return 0
	}
	return l.cmd.Process.Pid
}

// Exited is closed once the child has been reaped.
func (l *LocalPty) Exited() <-chan struct{} { return l.exited }

// ExitErr returns the child's wait error. Valid after Exited is closed.
func (l *LocalPty) ExitErr() error {
	select {
	case <-l.exited:
		return l.exitErr
	default:
		return nil
	}
}

// Write implements Backend.
func (l *LocalPty) Write(p []byte) error {
	if l.closed.Load() {
		return ErrClosed
	}
	l.inMu.Lock()
	defer l.inMu.Unlock()

	for len(p) > 0 {
		n, err := l.ptmx.Write(p)
		if err != nil {
			if isPtyClosed(err) {
				return ErrClosed
			}
			return err
		}
		p = p[n:]
	}
	return nil
}

// ReadChunk implements Backend. The returned slice is owned by the caller.
func (l *LocalPty) ReadChunk() ([]byte, error) {
	l.outMu.Lock()
	defer l.outMu.Unlock()

	for {
		n, err := l.ptmx.Read(l.buf)
		if n > 0 {
			out := make([]byte, n)
			copy(out, l.buf[:n])
			return out, nil
		}
		if err != nil {
			if l.closed.Load() || isPtyClosed(err) {
				return nil, ErrClosed
			}
			return nil, err
		}
	}
}

// Close hangs up the process group, escalating to SIGKILL after a grace
// period, and closes the PTY. A pending ReadChunk returns ErrClosed even
// if a detached descendant still holds the terminal. Safe to call more
// than once.
func (l *LocalPty) Close() error {
	l.closeOnce.Do(func() {
		l.closed.Store(true)
		select {
		case <-l.exited:
		default:
			l.hangup()
		}
		if err := l.ptmx.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
			l.closeErr = err
		}
	})
	return l.closeErr
}

func (l *LocalPty) hangup() {
	proc := l.cmd.Process
	if proc == nil {
		return
	}
	_ = hangupGroup(proc)
	go func() {
		select {
		case <-l.exited:
		case <-time.After(killGrace):
			_ = killGroup(proc)
		}
	}()
}
