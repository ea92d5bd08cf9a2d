//go:build !windows

package process

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
)

// isolate puts the command in its own process group and makes cancellation
// kill the whole group, so helpers git spawned (ssh, git-remote-https) die
// with it and release the output pipes.
func isolate(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
	cmd.Cancel = func() error {
		err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		if errors.Is(err, syscall.ESRCH) {
			return os.ErrProcessDone
		}
		return err
	}
}

// detach starts a GUI client in a process group of its own so it survives
// gitsync exiting or being interrupted.
func detach(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
}
