package git

import (
	"errors"
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"

	"github.com/zaixsen/unityGitTool/internal/output"
)

// FindRoot returns the work-tree root of the repository containing path,
// walking up through parent directories to the nearest .git.
func FindRoot(path string) (string, error) {
	if path == "" {
		path = "."
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", output.NewUserError("invalid repository path: " + path)
	}

	repo, err := gogit.PlainOpenWithOptions(abs, &gogit.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return "", output.NewUserError("not in a git repository: " + abs)
		}
		return "", output.NewSystemErrorWithCause("opening repository at "+abs, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		if errors.Is(err, gogit.ErrIsBareRepository) {
			return "", output.NewUserError("repository has no work tree: " + abs)
		}
		return "", output.NewSystemErrorWithCause("reading work tree at "+abs, err)
	}
	return worktree.Filesystem.Root(), nil
}
