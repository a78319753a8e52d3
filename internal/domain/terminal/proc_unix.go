//go:build !windows

package terminal

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// The PTY makes the child a session leader, so its PID is also its
// process group ID.

func hangupGroup(proc *os.Process) error {
	if err := unix.Kill(-proc.Pid, unix.SIGHUP); err != nil {
		return proc.Signal(unix.SIGHUP)
	}
	return nil
}

func killGroup(proc *os.Process) error {
	if err := unix.Kill(-proc.Pid, unix.SIGKILL); err != nil {
		return proc.Kill()
	}
	return nil
}

// pollable moves the PTY master onto the runtime poller so Close can
// interrupt a blocked Read. The original descriptor is closed.
func pollable(f *os.File) (*os.File, error) {
	fd, err := unix.Dup(int(f.Fd()))
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("dup pty master: %w", err)
	}
	name := f.Name()
	_ = f.Close()
	if err := unix.SetNonblock(fd, true); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("set pty master nonblocking: %w", err)
	}
	unix.CloseOnExec(fd)
	return os.NewFile(uintptr(fd), name), nil
}

// isPtyClosed reports errors meaning the other side of the PTY is gone.
// Linux returns EIO from the master once the slave has no open handles.
func isPtyClosed(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, os.ErrClosed) ||
		errors.Is(err, unix.EIO)
}
