// Package bootstrap implements the self-hosting pipeline: clean, install
// dependencies, typecheck, then serve by re-executing the binary with an
// explicit stage marker. Stages are strictly ordered; any step failure is
// fatal to the whole sequence.
package bootstrap

import "fmt"

// Stage is the bootstrap state machine position. It is carried between
// processes as an explicit --stage flag, never inferred from the ambient
// environment.
type Stage int

const (
	StageUninitialized Stage = iota
	StageInstalled
	StageTypechecked
	StageRunning
)

// wire names for the --stage flag.
const (
	stageUninitialized = "uninitialized"
	stageInstalled     = "installed"
	stageTypechecked   = "typechecked"
	stageRunning       = "running"
)

// String returns the flag value for the stage.
func (s Stage) String() string {
	switch s {
	case StageUninitialized:
		return stageUninitialized
	case StageInstalled:
		return stageInstalled
	case StageTypechecked:
		return stageTypechecked
	case StageRunning:
		return stageRunning
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// ParseStage resolves a flag value back to its stage.
func ParseStage(s string) (Stage, error) {
	switch s {
	case stageUninitialized:
		return StageUninitialized, nil
	case stageInstalled:
		return StageInstalled, nil
	case stageTypechecked:
		return StageTypechecked, nil
	case stageRunning:
		return StageRunning, nil
	default:
		return 0, fmt.Errorf("unknown stage: %q", s)
	}
}

// require checks that the machine sits exactly at want before a step runs.
// There is no skipping and no rollback.
func require(current, want Stage) error {
	if current != want {
		return fmt.Errorf("stage %s required, currently %s", want, current)
	}
	return nil
}
