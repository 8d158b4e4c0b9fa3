package ffmpeg

import (
	"context"
	"os/exec"
)

// runFn is the function type for running a command and capturing output.
type runFn func(ctx context.Context, path string, args []string) ([]byte, error)

// Executor runs ffmpeg/ffprobe commands with injectable execution.
type Executor struct {
	run runFn
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithRun sets a custom run function (for testing).
func WithRun(fn runFn) ExecutorOption {
	return func(e *Executor) { e.run = fn }
}

// NewExecutor creates an Executor with the given options.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{run: defaultRun}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CombinedOutput executes the tool and returns its combined stdout/stderr.
// ffmpeg writes diagnostics to stderr and ffprobe writes JSON to stdout,
// so callers get the useful data either way.
func (e *Executor) CombinedOutput(ctx context.Context, path string, args []string) ([]byte, error) {
	return e.run(ctx, path, args)
}

// RunOutput executes the tool and returns its combined output as a string.
// The output is returned even when the command fails: ffmpeg often exits
// non-zero for operations whose output is still valid.
func (e *Executor) RunOutput(ctx context.Context, path string, args []string) (string, error) {
	out, err := e.run(ctx, path, args)
	return string(out), err
}

// defaultRun is the production implementation.
func defaultRun(ctx context.Context, path string, args []string) ([]byte, error) {
	// #nosec G204 -- path and args are built internally, not from user input
	cmd := exec.CommandContext(ctx, path, args...)
	return cmd.CombinedOutput()
}
