//go:build windows

package terminal

import (
	"errors"
	"io"
	"os"
)

func hangupGroup(proc *os.Process) error {
	return proc.Kill()
}

func killGroup(proc *os.Process) error {
	return proc.Kill()
}

func isPtyClosed(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed)
}

func pollable(f *os.File) (*os.File, error) {
	return f, nil
}
