package bridge

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSpawnFailed matches any *SpawnError.
	ErrSpawnFailed = errors.New("backend spawn failed")
	// ErrNonZeroExit matches any *ExitError.
	ErrNonZeroExit = errors.New("backend exited with non-zero status")
	// ErrIO matches any *IOError.
	ErrIO = errors.New("file i/o failed")
)

// SpawnError is returned when the backend process could not be started.
type SpawnError struct {
	Path string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start backend %s: %v", e.Path, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

func (e *SpawnError) Is(target error) bool { return target == ErrSpawnFailed }

// ExitError is returned when the backend ran but exited with a non-zero code.
type ExitError struct {
	Path   string
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("backend %s exited with code %d", e.Path, e.Code)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

func (e *ExitError) Is(target error) bool { return target == ErrNonZeroExit }

// IOError is returned when writing a file fails.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func (e *IOError) Is(target error) bool { return target == ErrIO }
