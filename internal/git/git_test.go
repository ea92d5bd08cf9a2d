package git

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/zaixsen/unityGitTool/internal/output"
	"github.com/zaixsen/unityGitTool/internal/process"
	"github.com/zaixsen/unityGitTool/internal/process/processtest"
)

func TestClient_RunPassesDirAndTimeout(t *testing.T) {
	fake := processtest.New()
	client := New(fake, "/repo", WithBinary("git2"), WithTimeout(5*time.Second))

	if _, err := client.Stash(context.Background(), "marker", 20*time.Second); err != nil {
		t.Fatalf("Stash() error = %v", err)
	}
	if _, err := client.StashPop(context.Background()); err != nil {
		t.Fatalf("StashPop() error = %v", err)
	}

	cmds := fake.Commands()
	if len(cmds) != 2 {
		t.Fatalf("got %d commands, want 2", len(cmds))
	}
	stash := cmds[0]
	if stash.Name != "git2" || stash.Dir != "/repo" {
		t.Errorf("stash command = %+v, want binary git2 in /repo", stash)
	}
	if !slices.Equal(stash.Args, []string{"stash", "-u", "-m", "marker"}) {
		t.Errorf("stash args = %v", stash.Args)
	}
	if stash.Timeout != 20*time.Second {
		t.Errorf("stash timeout = %s, want 20s", stash.Timeout)
	}
	if cmds[1].Timeout != 5*time.Second {
		t.Errorf("pop timeout = %s, want client default 5s", cmds[1].Timeout)
	}
}

func TestClient_ZeroStashTimeoutDisablesTimeout(t *testing.T) {
	fake := processtest.New()
	client := New(fake, "/repo", WithTimeout(5*time.Second))

	if _, err := client.Stash(context.Background(), "marker", 0); err != nil {
		t.Fatalf("Stash() error = %v", err)
	}

	if got := fake.Commands()[0].Timeout; got != 0 {
		t.Errorf("stash timeout = %s, want none instead of the command timeout", got)
	}
}

func TestClient_RunStartFailure(t *testing.T) {
	startErr := &process.StartError{Command: "git stash pop", Err: exec.ErrNotFound}
	fake := processtest.New().OnError("stash pop", startErr)
	client := New(fake, "/repo")

	_, err := client.StashPop(context.Background())
	if err == nil {
		t.Fatal("StashPop() expected error")
	}
	var exitErr *output.ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != output.ExitSystemError {
		t.Errorf("error should be a system ExitError, got %v", err)
	}
	var gotStart *process.StartError
	if !errors.As(err, &gotStart) {
		t.Error("StartError should remain reachable through errors.As")
	}
}

func TestClient_OutputNonZero(t *testing.T) {
	fake := processtest.New().On("remote", processtest.Fail(128, "fatal: not a git repository"))
	client := New(fake, "/repo")

	_, err := client.Output(context.Background(), "remote")
	if err == nil {
		t.Fatal("Output() expected error")
	}
	if got := err.Error(); got != "git command failed: fatal: not a git repository" {
		t.Errorf("error = %q", got)
	}
}

func TestFindRoot(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	repo := t.TempDir()
	if out, err := exec.CommandContext(context.Background(), "git", "init", repo).CombinedOutput(); err != nil {
		t.Fatalf("git init: %v\n%s", err, out)
	}
	nested := filepath.Join(repo, "Assets", "Scenes")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	root, err := FindRoot(nested)
	if err != nil {
		t.Fatalf("FindRoot() error = %v", err)
	}
	wantRoot, _ := filepath.EvalSymlinks(repo)
	gotRoot, _ := filepath.EvalSymlinks(root)
	if gotRoot != wantRoot {
		t.Errorf("FindRoot() = %q, want %q", root, repo)
	}
}

func TestFindRoot_NotARepo(t *testing.T) {
	_, err := FindRoot(t.TempDir())
	if err == nil {
		t.Fatal("FindRoot() expected error outside a repository")
	}
	var exitErr *output.ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != output.ExitUserError {
		t.Errorf("error should be a user ExitError, got %v", err)
	}
}
