// Package lock serializes sync runs per repository with an advisory file lock.
package lock

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/zaixsen/unityGitTool/internal/output"
)

// Lock is a held per-repository lock.
type Lock struct {
	repo  string
	flock *flock.Flock
}

// Path returns the lock file used for repo. Lock files live outside the
// work tree so they never show up as untracked changes.
func Path(dir, repo string) string {
	if dir == "" {
		dir = os.TempDir()
	}
	sum := sha256.Sum256([]byte(filepath.Clean(repo)))
	return filepath.Join(dir, "gitsync-"+hex.EncodeToString(sum[:8])+".lock")
}

// Acquire takes the lock for repo without blocking. A lock held by another
// run is reported as a conflict error.
func Acquire(dir, repo string) (*Lock, error) {
	path := Path(dir, repo)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, output.NewSystemErrorWithCause("creating lock directory", err)
	}

	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, output.NewSystemErrorWithCause(fmt.Sprintf("acquiring lock %s", path), err)
	}
	if !locked {
		return nil, output.NewConflictError("another sync is already running for " + repo)
	}
	return &Lock{repo: repo, flock: fl}, nil
}

// Repo returns the repository the lock guards.
func (l *Lock) Repo() string {
	return l.repo
}

// Release drops the lock. Safe to call on nil and more than once.
func (l *Lock) Release() error {
	if l == nil || l.flock == nil {
		return nil
	}
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("releasing lock: %w", err)
	}
	return nil
}
