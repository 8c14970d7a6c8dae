package bridge

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

// Output is what a backend run produced.
type Output struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Duration time.Duration
}

// Invoker runs the backend with a payload and captures what it printed.
//
// Implementations return a *SpawnError when the backend could not be started.
// A backend that ran and exited non-zero is not an error at this level; the
// exit code is reported in Output.
type Invoker interface {
	Invoke(ctx context.Context, backendPath, payload string) (*Output, error)
}

// ServerArgs are the arguments placed before the payload on the backend's
// command line.
var ServerArgs = []string{"server", "--server-text-arg"}

// ProcessInvoker starts the backend as a child process.
type ProcessInvoker struct {
	// Args replaces ServerArgs when non-empty.
	Args []string
	// Dir is the working directory of the child. Empty means the caller's.
	Dir string
}

// NewProcessInvoker returns an invoker using the default server arguments.
func NewProcessInvoker() *ProcessInvoker {
	return &ProcessInvoker{}
}

// Invoke runs backendPath with the server arguments followed by payload and
// blocks until the process exits and its output streams are closed.
func (p *ProcessInvoker) Invoke(ctx context.Context, backendPath, payload string) (*Output, error) {
	args := ServerArgs
	if len(p.Args) > 0 {
		args = p.Args
	}
	argv := make([]string, 0, len(args)+1)
	argv = append(argv, args...)
	argv = append(argv, payload)

	cmd := exec.CommandContext(ctx, backendPath, argv...)
	cmd.Dir = p.Dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Path: backendPath, Err: err}
	}
	err := cmd.Wait()
	out := &Output{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: time.Since(start),
	}
	return out, waitResult(ctx, backendPath, err, out)
}

// waitResult turns the error from cmd.Wait into the invoker's result. A
// backend that exited on its own is never reported as cancelled, even if ctx
// was cancelled after it finished.
func waitResult(ctx context.Context, backendPath string, waitErr error, out *Output) error {
	if waitErr == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	var exitErr *exec.ExitError
	if !errors.As(waitErr, &exitErr) {
		return &SpawnError{Path: backendPath, Err: waitErr}
	}
	out.ExitCode = exitErr.ExitCode()
	return nil
}
