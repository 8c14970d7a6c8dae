// Package bridge connects a front-end to the external password-book backend.
//
// A call serializes the front-end's actions into a payload, runs the backend
// executable with that payload on its command line, and hands back whatever
// the backend printed on stdout.
//
// Example usage:
//
//	b := bridge.New(bridge.WithLogger(logger))
//	out, err := b.TextIO(ctx, []string{"get_data"}, userDir)
package bridge

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Call describes one finished bridge call. It is handed to the Recorder.
type Call struct {
	Request     Request
	BackendPath string
	Payload     string
	Output      *Output
	Err         error
	StartedAt   time.Time
}

// Recorder receives every call made through a Bridge.
type Recorder interface {
	Record(call Call) error
}

// Bridge sends requests to the backend executable.
type Bridge struct {
	invoker        Invoker
	clock          Clock
	logger         *log.Logger
	recorder       Recorder
	backendSubdir  string
	ignoreExitCode bool
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(logger *log.Logger) Option {
	return func(b *Bridge) {
		if logger == nil {
			logger = log.New(io.Discard, "", 0)
		}
		b.logger = logger
	}
}

// WithInvoker replaces the process invoker, e.g. with a fake in tests.
func WithInvoker(invoker Invoker) Option {
	return func(b *Bridge) { b.invoker = invoker }
}

// WithClock replaces the timestamp source.
func WithClock(clock Clock) Option {
	return func(b *Bridge) { b.clock = clock }
}

// WithBackendSubdir sets the backend directory relative to the base directory.
func WithBackendSubdir(subdir string) Option {
	return func(b *Bridge) { b.backendSubdir = subdir }
}

// WithIgnoreExitCode makes TextIO treat a non-zero backend exit as success.
// The exit is still logged.
func WithIgnoreExitCode(ignore bool) Option {
	return func(b *Bridge) { b.ignoreExitCode = ignore }
}

// WithRecorder sets a recorder that is told about every call.
func WithRecorder(recorder Recorder) Option {
	return func(b *Bridge) { b.recorder = recorder }
}

// New creates a Bridge. Without options it spawns real processes, uses the
// system clock and does not log.
func New(opts ...Option) *Bridge {
	b := &Bridge{
		invoker:       NewProcessInvoker(),
		clock:         NewSystemClock(),
		logger:        log.New(io.Discard, "", 0),
		backendSubdir: DefaultBackendSubdir,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BackendPath returns the backend executable path used for baseDir.
func (b *Bridge) BackendPath(baseDir string) string {
	return BackendPath(baseDir, b.backendSubdir)
}

// TextIO sends actions to the backend found under baseDir and returns its
// stdout as text.
//
// A *SpawnError is returned when the backend cannot be started. When the
// backend exits non-zero the captured stdout is returned together with an
// *ExitError, unless the bridge ignores exit codes.
func (b *Bridge) TextIO(ctx context.Context, actions []string, baseDir string) (string, error) {
	req := NewRequest(actions, b.clock.Now())
	payload := req.Payload()
	backendPath := b.BackendPath(baseDir)
	b.checkBackendPath(backendPath)

	b.logger.Printf("calling backend %s with %d action(s)", backendPath, len(req.Actions))
	startedAt := time.Now()
	out, err := b.invoker.Invoke(ctx, backendPath, payload)
	if err == nil && out != nil && out.ExitCode != 0 {
		exitErr := &ExitError{Path: backendPath, Code: out.ExitCode, Stderr: string(out.Stderr)}
		if b.ignoreExitCode {
			b.logger.Printf("ignoring non-zero exit: %v", exitErr)
		} else {
			err = exitErr
		}
	}

	b.record(Call{
		Request:     req,
		BackendPath: backendPath,
		Payload:     payload,
		Output:      out,
		Err:         err,
		StartedAt:   startedAt,
	})

	if err != nil {
		b.logger.Printf("backend call failed: %v", err)
		var spawnErr *SpawnError
		if errors.As(err, &spawnErr) || out == nil {
			return "", err
		}
		return decodeText(out.Stdout), err
	}
	if out == nil {
		return "", nil
	}
	b.logger.Printf("backend returned %d byte(s) in %s", len(out.Stdout), out.Duration)
	return decodeText(out.Stdout), nil
}

// checkBackendPath logs problems with the backend path. It never blocks the call.
func (b *Bridge) checkBackendPath(path string) {
	if !filepath.IsAbs(path) {
		b.logger.Printf("warning: backend path is not absolute: %s", path)
	}
	if _, err := os.Stat(path); err != nil {
		b.logger.Printf("warning: backend not found at %s: %v", path, err)
	}
}

func (b *Bridge) record(call Call) {
	if b.recorder == nil {
		return
	}
	if err := b.recorder.Record(call); err != nil {
		b.logger.Printf("warning: failed to record call: %v", err)
	}
}

// decodeText converts backend output to a string, replacing invalid UTF-8.
func decodeText(p []byte) string {
	return strings.ToValidUTF8(string(p), "�")
}
