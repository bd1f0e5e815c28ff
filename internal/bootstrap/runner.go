package bootstrap

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"go.uber.org/zap"
)

// Command describes one external step of the pipeline.
type Command struct {
	Binary  string
	Args    []string
	Dir     string
	Env     []string // appended to the parent environment
	Timeout time.Duration
}

// Result captures the outcome of a finished step.
type Result struct {
	ExitCode  int
	Stdout    string
	Stderr    string
	Duration  time.Duration
	Killed    bool
	Truncated bool
}

// StepRunner executes pipeline steps directly on the host with output
// capture and a per-step timeout.
type StepRunner struct {
	logger         *zap.Logger
	maxOutputBytes int64
}

func NewStepRunner(logger *zap.Logger, maxOutputBytes int64) *StepRunner {
	if maxOutputBytes <= 0 {
		maxOutputBytes = 1 << 20
	}
	return &StepRunner{logger: logger, maxOutputBytes: maxOutputBytes}
}

// Run executes cmd and waits for it. A non-zero exit code is reported in
// the Result, not as an error; the error return is reserved for failures
// to start or observe the process.
func (r *StepRunner) Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.Binary == "" {
		return nil, fmt.Errorf("binary is required")
	}

	execCtx := ctx
	var cancel context.CancelFunc
	if cmd.Timeout > 0 {
		execCtx, cancel = context.WithTimeout(ctx, cmd.Timeout)
		defer cancel()
	}

	execCmd := exec.CommandContext(execCtx, cmd.Binary, cmd.Args...)
	execCmd.Dir = cmd.Dir
	execCmd.Env = append(os.Environ(), cmd.Env...)

	var stdoutBuf, stderrBuf bytes.Buffer
	stdoutLimited := &limitedWriter{w: &stdoutBuf, max: r.maxOutputBytes}
	stderrLimited := &limitedWriter{w: &stderrBuf, max: r.maxOutputBytes}
	execCmd.Stdout = stdoutLimited
	execCmd.Stderr = stderrLimited

	r.logger.Debug("running step",
		zap.String("binary", cmd.Binary),
		zap.Strings("args", cmd.Args),
		zap.String("dir", cmd.Dir))

	start := time.Now()
	err := execCmd.Run()

	result := &Result{
		ExitCode:  0,
		Stdout:    stdoutBuf.String(),
		Stderr:    stderrBuf.String(),
		Duration:  time.Since(start),
		Truncated: stdoutLimited.truncated || stderrLimited.truncated,
	}

	if err != nil {
		switch {
		case execCtx.Err() == context.DeadlineExceeded:
			result.Killed = true
			result.ExitCode = -1
			r.logger.Warn("step killed on timeout",
				zap.String("binary", cmd.Binary),
				zap.Duration("timeout", cmd.Timeout))
		case execCtx.Err() == context.Canceled:
			result.Killed = true
			result.ExitCode = -1
		default:
			exitErr, ok := err.(*exec.ExitError)
			if !ok {
				return nil, fmt.Errorf("start %s: %w", cmd.Binary, err)
			}
			result.ExitCode = exitErr.ExitCode()
		}
	}

	r.logger.Debug("step finished",
		zap.String("binary", cmd.Binary),
		zap.Int("exit", result.ExitCode),
		zap.Duration("duration", result.Duration))
	return result, nil
}

// limitedWriter caps total bytes written, silently discarding the rest so
// a chatty step cannot balloon memory.
type limitedWriter struct {
	w         io.Writer
	max       int64
	written   int64
	truncated bool
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	n := len(p)
	if lw.written >= lw.max {
		lw.truncated = true
		return n, nil
	}
	if remaining := lw.max - lw.written; int64(n) > remaining {
		lw.truncated = true
		written, err := lw.w.Write(p[:remaining])
		lw.written += int64(written)
		// Report the full length so the producer never sees a short write.
		return n, err
	}
	written, err := lw.w.Write(p)
	lw.written += int64(written)
	return written, err
}
