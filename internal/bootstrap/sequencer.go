package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"stackpad/internal/config"
)

// Runner abstracts step execution so the sequence logic is testable
// without spawning processes.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// StepError reports a step that ran but exited non-zero. The sequence
// stops at the first one.
type StepError struct {
	Step   string
	Result *Result
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s failed with exit code %d", e.Step, e.Result.ExitCode)
}

// Sequencer drives the pipeline through its stages in order.
type Sequencer struct {
	cfg    *config.Config
	logger *zap.Logger
	runner Runner
	stage  Stage
}

// NewSequencer builds a sequencer positioned at start. Subcommands that
// enter the pipeline midway declare the stage they assume instead of
// guessing from the environment.
func NewSequencer(cfg *config.Config, logger *zap.Logger, runner Runner, start Stage) *Sequencer {
	return &Sequencer{cfg: cfg, logger: logger, runner: runner, stage: start}
}

// Stage reports the current pipeline position.
func (s *Sequencer) Stage() Stage { return s.stage }

// Clean removes the on-disk state: database files and build output. It
// may run from any stage and resets the machine to uninitialized.
func (s *Sequencer) Clean(ctx context.Context) error {
	var targets []string
	if db := s.cfg.Store.DatabasePath; db != "" && db != ":memory:" {
		targets = append(targets, db, db+"-wal", db+"-shm")
	}
	targets = append(targets, filepath.Join(s.cfg.Bootstrap.WorkingDirectory, "bin"))

	for _, path := range targets {
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("clean %s: %w", path, err)
		}
		s.logger.Debug("removed", zap.String("path", path))
	}
	s.logger.Info("clean complete", zap.Int("targets", len(targets)))
	s.stage = StageUninitialized
	return nil
}

// Install downloads module dependencies and advances to installed.
func (s *Sequencer) Install(ctx context.Context) error {
	if err := require(s.stage, StageUninitialized); err != nil {
		return err
	}
	if err := s.runStep(ctx, "install", "go", "mod", "download"); err != nil {
		return err
	}
	s.stage = StageInstalled
	return nil
}

// Typecheck vets the tree and advances to typechecked.
func (s *Sequencer) Typecheck(ctx context.Context) error {
	if err := require(s.stage, StageInstalled); err != nil {
		return err
	}
	if err := s.runStep(ctx, "typecheck", "go", "vet", "./..."); err != nil {
		return err
	}
	s.stage = StageTypechecked
	return nil
}

func (s *Sequencer) runStep(ctx context.Context, name, binary string, args ...string) error {
	s.logger.Info("step starting", zap.String("step", name))
	result, err := s.runner.Run(ctx, Command{
		Binary:  binary,
		Args:    args,
		Dir:     s.cfg.Bootstrap.WorkingDirectory,
		Timeout: s.cfg.GetStepTimeout(),
	})
	if err != nil {
		return fmt.Errorf("step %s: %w", name, err)
	}
	if result.ExitCode != 0 {
		s.logger.Error("step failed",
			zap.String("step", name),
			zap.Int("exit", result.ExitCode),
			zap.Bool("killed", result.Killed),
			zap.String("stderr", strings.TrimSpace(result.Stderr)))
		return &StepError{Step: name, Result: result}
	}
	s.logger.Info("step complete",
		zap.String("step", name),
		zap.Duration("duration", result.Duration))
	return nil
}

// ServeChild re-executes the current binary as `serve --stage typechecked`
// in its own process group. SIGINT and SIGTERM received by the parent are
// forwarded to the group, and ServeChild returns once the child exits.
// extraArgs are appended verbatim, letting the caller forward its own
// flags to the child.
func (s *Sequencer) ServeChild(ctx context.Context, extraArgs ...string) error {
	if err := require(s.stage, StageTypechecked); err != nil {
		return err
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	args := append([]string{"serve", "--stage", StageTypechecked.String()}, extraArgs...)
	cmd := exec.CommandContext(ctx, exe, args...)
	cmd.Dir = s.cfg.Bootstrap.WorkingDirectory
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	setProcessGroup(cmd)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start server child: %w", err)
	}
	s.stage = StageRunning
	s.logger.Info("server child started", zap.Int("pid", cmd.Process.Pid))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	for {
		select {
		case sig := <-sigCh:
			s.logger.Info("forwarding signal to server child", zap.Stringer("signal", sig))
			if err := terminateProcessGroup(cmd); err != nil {
				s.logger.Warn("terminate child failed", zap.Error(err))
			}
		case <-ctx.Done():
			if err := terminateProcessGroup(cmd); err != nil {
				s.logger.Warn("terminate child failed", zap.Error(err))
			}
			<-done
			return ctx.Err()
		case err := <-done:
			s.stage = StageTypechecked
			if exitErr, ok := err.(*exec.ExitError); ok {
				return &StepError{Step: "serve", Result: &Result{ExitCode: exitErr.ExitCode()}}
			}
			return err
		}
	}
}

// Full walks the whole pipeline: clean, install, typecheck, an optional
// verification hook (the browser click-through), then serve. It stops at
// the first failure. serveArgs are forwarded to the serve child.
func (s *Sequencer) Full(ctx context.Context, verify func(context.Context) error, serveArgs ...string) error {
	if err := s.Clean(ctx); err != nil {
		return err
	}
	if err := s.Install(ctx); err != nil {
		return err
	}
	if err := s.Typecheck(ctx); err != nil {
		return err
	}
	if verify != nil {
		s.logger.Info("step starting", zap.String("step", "browserrun"))
		if err := verify(ctx); err != nil {
			return fmt.Errorf("step browserrun: %w", err)
		}
		s.logger.Info("step complete", zap.String("step", "browserrun"))
	}
	return s.ServeChild(ctx, serveArgs...)
}
