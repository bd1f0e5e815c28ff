package main

import (
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"stackpad/internal/config"
)

func TestRootRegistersAllSubcommands(t *testing.T) {
	want := []string{"serve", "clean", "install", "typecheck", "browserrun", "full", "version"}
	for _, name := range want {
		found := false
		for _, cmd := range rootCmd.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestTypecheckAliasTsc(t *testing.T) {
	if !typecheckCmd.HasAlias("tsc") {
		t.Fatal("typecheck should carry the tsc alias")
	}
}

func TestServeRejectsWrongStage(t *testing.T) {
	cfg = config.DefaultConfig()
	logger = zap.NewNop()

	for _, bad := range []string{"uninitialized", "installed", "running", "bogus"} {
		serveStage = bad
		err := runServe(&cobra.Command{}, nil)
		if err == nil {
			t.Fatalf("stage %q should be rejected", bad)
		}
		if bad != "bogus" && !strings.Contains(err.Error(), "serve requires stage typechecked") {
			t.Errorf("stage %q: unexpected error %v", bad, err)
		}
	}
	serveStage = "typechecked"
}
