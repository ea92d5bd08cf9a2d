// Package client finds and launches a local graphical git client so a
// human can resolve conflicts the sync workflow could not.
package client

import (
	"context"
	"os"
	"path/filepath"

	"github.com/zaixsen/unityGitTool/internal/process"
)

// Tool identifies a supported GUI client.
type Tool string

const (
	TortoiseGit Tool = "tortoisegit"
	SourceTree  Tool = "sourcetree"
	GitGUI      Tool = "git-gui"
)

// Client is a located GUI client executable.
type Client struct {
	Tool Tool   `json:"tool"`
	Path string `json:"path"`
}

// Command returns the invocation that opens repo in the client.
func (c Client) Command(repo string) process.Command {
	switch c.Tool {
	case TortoiseGit:
		// os/exec quotes the argument when repo contains spaces.
		return process.Command{
			Name: c.Path,
			Args: []string{"/path:" + repo, "/command:resolve"},
			Dir:  repo,
		}
	case SourceTree:
		return process.Command{
			Name: c.Path,
			Args: []string{"-f", repo},
			Dir:  repo,
		}
	default:
		return process.Command{Name: c.Path, Args: []string{"gui"}, Dir: repo}
	}
}

// Candidate is one checked install location.
type Candidate struct {
	Tool   Tool   `json:"tool"`
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
}

// Locator searches a fixed, ordered list of install paths.
type Locator struct {
	// Getenv resolves the Windows folder variables; defaults to os.Getenv.
	Getenv func(string) string
	// Exists reports whether a path is an existing file; defaults to a stat check.
	Exists func(string) bool
	// Extra holds additional paths per tool, checked after the built-in ones.
	Extra map[Tool][]string
}

// Candidates returns every checked location in search order.
func (l *Locator) Candidates() []Candidate {
	getenv := l.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	exists := l.Exists
	if exists == nil {
		exists = fileExists
	}

	pf := getenv("ProgramFiles")
	pf86 := getenv("ProgramFiles(x86)")
	local := getenv("LocalAppData")

	paths := []Candidate{
		{Tool: TortoiseGit, Path: join(pf, "TortoiseGit", "bin", "TortoiseGitProc.exe")},
		{Tool: TortoiseGit, Path: join(pf86, "TortoiseGit", "bin", "TortoiseGitProc.exe")},
	}
	for _, p := range l.Extra[TortoiseGit] {
		paths = append(paths, Candidate{Tool: TortoiseGit, Path: p})
	}
	paths = append(paths,
		Candidate{Tool: SourceTree, Path: join(pf, "SourceTree", "SourceTree.exe")},
		Candidate{Tool: SourceTree, Path: join(pf86, "SourceTree", "SourceTree.exe")},
		Candidate{Tool: SourceTree, Path: join(local, "SourceTree", "SourceTree.exe")},
	)
	for _, p := range l.Extra[SourceTree] {
		paths = append(paths, Candidate{Tool: SourceTree, Path: p})
	}

	out := paths[:0]
	for _, c := range paths {
		if c.Path == "" {
			continue
		}
		c.Exists = exists(c.Path)
		out = append(out, c)
	}
	return out
}

// Find returns the first installed client, or false when none is found.
// It never launches anything.
func (l *Locator) Find() (Client, bool) {
	for _, c := range l.Candidates() {
		if c.Exists {
			return Client{Tool: c.Tool, Path: c.Path}, true
		}
	}
	return Client{}, false
}

// Launcher opens a GUI client for a repository.
type Launcher struct {
	Locator *Locator
	Runner  process.Runner
	// GitBinary is used for the git gui fallback.
	GitBinary string
}

// Open launches the first located client, or git gui when none is found,
// and returns what it launched. It does not wait for the client to exit.
func (l *Launcher) Open(_ context.Context, repo string) (Client, error) {
	locator := l.Locator
	if locator == nil {
		locator = &Locator{}
	}
	runner := l.Runner
	if runner == nil {
		runner = process.Exec{}
	}

	found, ok := locator.Find()
	if !ok {
		gitBin := l.GitBinary
		if gitBin == "" {
			gitBin = "git"
		}
		found = Client{Tool: GitGUI, Path: gitBin}
	}
	if err := runner.Start(found.Command(repo)); err != nil {
		return found, err
	}
	return found, nil
}

// join builds a path under base, or "" when the folder variable is unset.
func join(base string, elem ...string) string {
	if base == "" {
		return ""
	}
	return filepath.Join(append([]string{base}, elem...)...)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
