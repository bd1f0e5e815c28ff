//go:build windows

package bootstrap

import "os/exec"

// Windows has no process groups in the Unix sense; signals degrade to
// killing the direct child.
func setProcessGroup(cmd *exec.Cmd) {}

func terminateProcessGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}
