package bootstrap

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	req "github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stackpad/internal/config"
)

func TestStageStringRoundTrip(t *testing.T) {
	for _, stage := range []Stage{StageUninitialized, StageInstalled, StageTypechecked, StageRunning} {
		parsed, err := ParseStage(stage.String())
		req.NoError(t, err)
		assert.Equal(t, stage, parsed)
	}
}

func TestParseStageRejectsUnknown(t *testing.T) {
	for _, bad := range []string{"", "initialized", "TYPECHECKED", "stage(1)"} {
		_, err := ParseStage(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

// fakeRunner records steps and returns scripted results keyed by binary
// plus first argument.
type fakeRunner struct {
	ran     []string
	results map[string]*Result
}

func (f *fakeRunner) Run(ctx context.Context, cmd Command) (*Result, error) {
	key := cmd.Binary + " " + strings.Join(cmd.Args, " ")
	f.ran = append(f.ran, key)
	if r, ok := f.results[key]; ok {
		return r, nil
	}
	return &Result{ExitCode: 0}, nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	dir := t.TempDir()
	cfg.Bootstrap.WorkingDirectory = dir
	cfg.Store.DatabasePath = filepath.Join(dir, "data", "app.db")
	return cfg
}

func TestSequenceRunsStepsInOrder(t *testing.T) {
	runner := &fakeRunner{}
	seq := NewSequencer(testConfig(t), zap.NewNop(), runner, StageUninitialized)

	ctx := context.Background()
	req.NoError(t, seq.Install(ctx))
	req.NoError(t, seq.Typecheck(ctx))

	assert.Equal(t, []string{"go mod download", "go vet ./..."}, runner.ran)
	assert.Equal(t, StageTypechecked, seq.Stage())
}

func TestOutOfOrderStageRejected(t *testing.T) {
	runner := &fakeRunner{}
	seq := NewSequencer(testConfig(t), zap.NewNop(), runner, StageUninitialized)

	// Typecheck before install must not run anything.
	err := seq.Typecheck(context.Background())
	req.Error(t, err)
	assert.Contains(t, err.Error(), "stage installed required")
	assert.Empty(t, runner.ran)
	assert.Equal(t, StageUninitialized, seq.Stage())
}

func TestFailingStepAbortsWithExitCode(t *testing.T) {
	runner := &fakeRunner{results: map[string]*Result{
		"go vet ./...": {ExitCode: 2, Stderr: "vet: something is off"},
	}}
	seq := NewSequencer(testConfig(t), zap.NewNop(), runner, StageUninitialized)

	ctx := context.Background()
	req.NoError(t, seq.Install(ctx))
	err := seq.Typecheck(ctx)

	var stepErr *StepError
	req.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "typecheck", stepErr.Step)
	assert.Equal(t, 2, stepErr.Result.ExitCode)
	// The machine does not advance past the failure.
	assert.Equal(t, StageInstalled, seq.Stage())
}

func TestCleanRemovesStateAndResets(t *testing.T) {
	cfg := testConfig(t)
	req.NoError(t, os.MkdirAll(filepath.Dir(cfg.Store.DatabasePath), 0o755))
	req.NoError(t, os.WriteFile(cfg.Store.DatabasePath, []byte("x"), 0o644))
	binDir := filepath.Join(cfg.Bootstrap.WorkingDirectory, "bin")
	req.NoError(t, os.MkdirAll(binDir, 0o755))

	seq := NewSequencer(cfg, zap.NewNop(), &fakeRunner{}, StageTypechecked)
	req.NoError(t, seq.Clean(context.Background()))

	assert.NoFileExists(t, cfg.Store.DatabasePath)
	assert.NoDirExists(t, binDir)
	assert.Equal(t, StageUninitialized, seq.Stage())
}

func TestFullStopsAtFailedVerify(t *testing.T) {
	runner := &fakeRunner{}
	seq := NewSequencer(testConfig(t), zap.NewNop(), runner, StageUninitialized)

	err := seq.Full(context.Background(), func(context.Context) error {
		return errors.New("click-through failed")
	})
	req.Error(t, err)
	assert.Contains(t, err.Error(), "browserrun")
	// clean + install + typecheck ran, serve never started.
	assert.Equal(t, []string{"go mod download", "go vet ./..."}, runner.ran)
}

func TestStepRunnerCapturesOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	r := NewStepRunner(zap.NewNop(), 1<<20)

	result, err := r.Run(context.Background(), Command{
		Binary: "sh",
		Args:   []string{"-c", "echo out; echo err >&2; exit 3"},
	})
	req.NoError(t, err)
	assert.Equal(t, 3, result.ExitCode)
	assert.Equal(t, "out\n", result.Stdout)
	assert.Equal(t, "err\n", result.Stderr)
	assert.False(t, result.Killed)
}

func TestStepRunnerKillsOnTimeout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	r := NewStepRunner(zap.NewNop(), 1<<20)

	result, err := r.Run(context.Background(), Command{
		Binary:  "sh",
		Args:    []string{"-c", "sleep 10"},
		Timeout: 100 * time.Millisecond,
	})
	req.NoError(t, err)
	assert.True(t, result.Killed)
	assert.Less(t, result.Duration, 5*time.Second)
}

func TestStepRunnerTruncatesOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	r := NewStepRunner(zap.NewNop(), 16)

	result, err := r.Run(context.Background(), Command{
		Binary: "sh",
		Args:   []string{"-c", "printf '%0.s-' $(seq 1 100)"},
	})
	req.NoError(t, err)
	assert.True(t, result.Truncated)
	assert.Len(t, result.Stdout, 16)
}

func TestStepRunnerRequiresBinary(t *testing.T) {
	r := NewStepRunner(zap.NewNop(), 0)
	_, err := r.Run(context.Background(), Command{})
	assert.Error(t, err)
}
