//go:build unix

package gateway

import (
	"os/exec"
	"syscall"
)

// inProcessGroup starts cmd as the leader of a new process group and makes
// cancellation kill the whole group, so processes the tool spawned die with it.
func inProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
