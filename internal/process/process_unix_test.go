//go:build !windows

package process

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"
)

func TestExecRun_Timeout(t *testing.T) {
	requireUnix(t)
	if _, err := exec.LookPath("sleep"); err != nil {
		t.Skip("sleep not available")
	}

	start := time.Now()
	res, err := Exec{}.Run(context.Background(), Command{
		Name:    "sleep",
		Args:    []string{"10"},
		Timeout: 100 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Run() took %s, timeout was not enforced", elapsed)
	}
	if !res.TimedOut {
		t.Fatal("TimedOut = false, want true")
	}
	if res.Stdout != "" || res.Stderr != "" {
		t.Errorf("output should be empty on timeout, got stdout=%q stderr=%q", res.Stdout, res.Stderr)
	}
	if !strings.Contains(res.Err, "timed out") {
		t.Errorf("Err = %q, want a timeout message", res.Err)
	}
	if res.OK() {
		t.Error("OK() = true for a timed out command")
	}

	// The process has been reaped: signalling it must fail.
	if res.Pid <= 0 {
		t.Fatalf("Pid = %d, want a real pid", res.Pid)
	}
	if err := syscall.Kill(res.Pid, 0); err == nil {
		t.Errorf("process %d still exists after timeout", res.Pid)
	}
}

func TestExecRun_TimeoutKillsChildren(t *testing.T) {
	requireUnix(t)
	if _, err := exec.LookPath("sleep"); err != nil {
		t.Skip("sleep not available")
	}
	pidFile := filepath.Join(t.TempDir(), "child.pid")

	start := time.Now()
	res, err := Exec{}.Run(context.Background(), Command{
		Name:    "sh",
		Args:    []string{"-c", "sleep 30 & echo $! > " + pidFile + "; wait"},
		Timeout: 200 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !res.TimedOut {
		t.Fatal("TimedOut = false, want true")
	}
	if elapsed := time.Since(start); elapsed >= killGrace {
		t.Errorf("Run() took %s: the child kept the pipes open until the grace period", elapsed)
	}

	data, err := os.ReadFile(pidFile)
	if err != nil {
		t.Fatalf("read child pid: %v", err)
	}
	child, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		t.Fatalf("parse child pid %q: %v", data, err)
	}

	// The orphaned child is reaped by init shortly after the group kill.
	deadline := time.Now().Add(2 * time.Second)
	for alive(child) {
		if time.Now().After(deadline) {
			_ = syscall.Kill(child, syscall.SIGKILL)
			t.Fatalf("child %d of the timed out command is still alive", child)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestDetach_NewProcessGroup(t *testing.T) {
	cmd := exec.Command("true")
	detach(cmd)
	if cmd.SysProcAttr == nil || !cmd.SysProcAttr.Setpgid {
		t.Error("detached command should start in its own process group")
	}
}

// alive reports whether pid exists and is not a zombie waiting for its
// new parent to reap it.
func alive(pid int) bool {
	if syscall.Kill(pid, 0) != nil {
		return false
	}
	stat, err := os.ReadFile(filepath.Join("/proc", strconv.Itoa(pid), "stat"))
	if err != nil {
		return true
	}
	fields := strings.Fields(string(stat[strings.LastIndexByte(string(stat), ')')+1:]))
	return len(fields) == 0 || fields[0] != "Z"
}
