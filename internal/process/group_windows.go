//go:build windows

package process

import (
	"os/exec"
	"syscall"
)

// isolate starts the command in a new process group. Windows has no group
// kill without job objects, so cancellation kills the direct child and the
// pipe grace period bounds the wait for any helpers.
func isolate(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.CreationFlags |= syscall.CREATE_NEW_PROCESS_GROUP
}

// detach keeps a GUI client out of the console's Ctrl+C group.
func detach(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.CreationFlags |= syscall.CREATE_NEW_PROCESS_GROUP
}
