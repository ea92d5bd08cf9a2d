package sync

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zaixsen/unityGitTool/internal/config"
	"github.com/zaixsen/unityGitTool/internal/process"
)

// gitEnv isolates git from the user's configuration.
func gitEnv(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", home)
	t.Setenv("GIT_CONFIG_NOSYSTEM", "1")
	t.Setenv("GIT_AUTHOR_NAME", "gitsync test")
	t.Setenv("GIT_AUTHOR_EMAIL", "test@example.com")
	t.Setenv("GIT_COMMITTER_NAME", "gitsync test")
	t.Setenv("GIT_COMMITTER_EMAIL", "test@example.com")
}

func gitRun(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return string(out)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

// setupRemote creates a bare remote with one commit on main, a local clone
// tracking it, and a second clone that has pushed one more commit.
func setupRemote(t *testing.T, settings string) (local, other string) {
	t.Helper()
	gitEnv(t)

	root := t.TempDir()
	remote := filepath.Join(root, "remote.git")
	local = filepath.Join(root, "local")
	other = filepath.Join(root, "other")

	gitRun(t, root, "init", "--bare", remote)
	gitRun(t, remote, "symbolic-ref", "HEAD", "refs/heads/main")

	gitRun(t, root, "init", local)
	gitRun(t, local, "symbolic-ref", "HEAD", "refs/heads/main")
	writeFile(t, filepath.Join(local, "settings.txt"), settings)
	gitRun(t, local, "add", ".")
	gitRun(t, local, "commit", "-m", "initial")
	gitRun(t, local, "remote", "add", "origin", remote)
	gitRun(t, local, "push", "-u", "origin", "main")

	gitRun(t, root, "clone", remote, other)
	return local, other
}

func realWorkflow() *Workflow {
	cfg := config.Default()
	return &Workflow{
		Runner:   process.Exec{},
		Config:   cfg,
		Launcher: &fakeLauncher{},
	}
}

func TestIntegration_SyncKeepsLocalChanges(t *testing.T) {
	local, other := setupRemote(t, "version: 1\n")

	writeFile(t, filepath.Join(other, "remote.txt"), "from teammate\n")
	gitRun(t, other, "add", ".")
	gitRun(t, other, "commit", "-m", "teammate change")
	gitRun(t, other, "push", "origin", "main")

	writeFile(t, filepath.Join(local, "settings.txt"), "version: 1\nlocal: edit\n")
	writeFile(t, filepath.Join(local, "untracked.txt"), "scratch\n")

	out := realWorkflow().Run(context.Background(), local)

	if !out.Success {
		t.Fatalf("Run() failed: %s\n%s", out.Message, out.Summary)
	}
	if !out.Upstream.Tracking {
		t.Errorf("Upstream = %+v, want tracking origin/main", out.Upstream)
	}
	if got := readFile(t, filepath.Join(local, "remote.txt")); got != "from teammate\n" {
		t.Errorf("remote commit not pulled: %q", got)
	}
	if got := readFile(t, filepath.Join(local, "settings.txt")); !strings.Contains(got, "local: edit") {
		t.Errorf("local edit lost: %q", got)
	}
	if got := readFile(t, filepath.Join(local, "untracked.txt")); got != "scratch\n" {
		t.Errorf("untracked file lost: %q", got)
	}
	if list := gitRun(t, local, "stash", "list"); strings.TrimSpace(list) != "" {
		t.Errorf("stash should be empty after a clean pop, got:\n%s", list)
	}
}

func TestIntegration_CleanTreeSkipsPop(t *testing.T) {
	local, _ := setupRemote(t, "version: 1\n")

	// An older, unrelated stash entry must survive the run.
	writeFile(t, filepath.Join(local, "settings.txt"), "version: 1\nparked\n")
	gitRun(t, local, "stash", "push", "-m", "parked work")

	out := realWorkflow().Run(context.Background(), local)

	if !out.Success {
		t.Fatalf("Run() failed: %s\n%s", out.Message, out.Summary)
	}
	if out.Stashed {
		t.Error("Stashed = true on a clean tree")
	}
	if list := gitRun(t, local, "stash", "list"); !strings.Contains(list, "parked work") {
		t.Errorf("unrelated stash entry was popped:\n%s", list)
	}
}

func TestIntegration_PopConflict(t *testing.T) {
	local, other := setupRemote(t, "version: 1\n")

	writeFile(t, filepath.Join(other, "settings.txt"), "version: 2\n")
	gitRun(t, other, "commit", "-am", "bump version")
	gitRun(t, other, "push", "origin", "main")

	writeFile(t, filepath.Join(local, "settings.txt"), "version: local\n")

	w := realWorkflow()
	launcher := w.Launcher.(*fakeLauncher)
	out := w.Run(context.Background(), local)

	if out.Success {
		t.Fatalf("Run() succeeded, want pop conflict\n%s", out.Summary)
	}
	if out.Kind != KindConflict {
		t.Errorf("Kind = %q, want conflict\n%s", out.Kind, out.Message)
	}
	if out.Command != "git stash pop" {
		t.Errorf("Command = %q, want git stash pop", out.Command)
	}
	if launcher.opens != 1 {
		t.Errorf("client opened %d times, want 1", launcher.opens)
	}
	if list := gitRun(t, local, "stash", "list"); !strings.Contains(list, config.DefaultMarker) {
		t.Errorf("stash entry should be kept after a conflicting pop:\n%s", list)
	}
}
