package git

import (
	"context"
	"slices"
	"strings"
)

// DefaultRemote is preferred when a repository has several remotes, and
// assumed when it has none.
const DefaultRemote = "origin"

// Upstream describes where pull --rebase takes its changes from.
type Upstream struct {
	Remote   string `json:"remote,omitempty"`
	Branch   string `json:"branch"`
	Tracking bool   `json:"tracking"`
}

// PullArgs returns the git arguments for rebasing onto this upstream.
// A tracking upstream needs no explicit remote or branch.
func (u Upstream) PullArgs() []string {
	if u.Tracking {
		return []string{"pull", "--rebase"}
	}
	args := []string{"pull", "--rebase", u.Remote}
	if u.Branch != "" {
		args = append(args, u.Branch)
	}
	return args
}

// String renders the upstream as remote/branch.
func (u Upstream) String() string {
	if u.Remote == "" {
		return u.Branch
	}
	return u.Remote + "/" + u.Branch
}

// TrackingUpstream returns the configured upstream of the current branch.
func (c *Client) TrackingUpstream(ctx context.Context) (Upstream, bool) {
	out, err := c.Output(ctx, "rev-parse", "--abbrev-ref", "--symbolic-full-name", "@{u}")
	if err != nil {
		return Upstream{}, false
	}
	remote, branch, ok := strings.Cut(out, "/")
	if !ok || remote == "" || branch == "" {
		return Upstream{}, false
	}
	return Upstream{Remote: remote, Branch: branch, Tracking: true}, true
}

// Remotes lists the configured remote names. Errors yield an empty list.
func (c *Client) Remotes(ctx context.Context) []string {
	res, err := c.Run(ctx, "remote")
	if err != nil || !res.OK() {
		return nil
	}
	return parseLines(res.Stdout)
}

// CurrentBranch returns the checked-out branch, or "" when HEAD is detached
// or cannot be resolved.
func (c *Client) CurrentBranch(ctx context.Context) string {
	res, err := c.Run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil || !res.OK() {
		return ""
	}
	branch := strings.TrimSpace(res.Stdout)
	if branch == "HEAD" {
		return ""
	}
	return branch
}

// RemoteHeadBranch returns the default branch a remote advertises, or "".
func (c *Client) RemoteHeadBranch(ctx context.Context, remote string) string {
	res, err := c.Run(ctx, "remote", "show", remote)
	if err != nil || !res.OK() {
		return ""
	}
	return parseHeadBranch(res.Stdout)
}

// RemoteHasBranch reports whether ls-remote lists branch on remote.
func (c *Client) RemoteHasBranch(ctx context.Context, remote, branch string) bool {
	res, err := c.Run(ctx, "ls-remote", "--heads", remote, branch)
	if err != nil {
		return false
	}
	return strings.TrimSpace(res.Stdout) != ""
}

// ResolveUpstream decides what pull --rebase should target.
//
// A configured tracking upstream wins. Otherwise the remote is "origin" if
// present, else the first listed remote; the branch is the current branch,
// or the remote's HEAD branch when detached, or fallbackBranch. A branch the
// remote does not have is replaced by the remote's HEAD branch.
func (c *Client) ResolveUpstream(ctx context.Context, fallbackBranch string) Upstream {
	if up, ok := c.TrackingUpstream(ctx); ok {
		return up
	}

	remote := pickRemote(c.Remotes(ctx))

	branch := c.CurrentBranch(ctx)
	if branch == "" && remote != "" {
		branch = c.RemoteHeadBranch(ctx, remote)
	}
	if branch == "" {
		branch = fallbackBranch
	}

	if remote != "" && branch != "" && !c.RemoteHasBranch(ctx, remote, branch) {
		if head := c.RemoteHeadBranch(ctx, remote); head != "" {
			branch = head
		}
	}

	if remote == "" {
		remote = DefaultRemote
	}
	return Upstream{Remote: remote, Branch: branch}
}

// pickRemote prefers DefaultRemote, then the first remote listed.
func pickRemote(remotes []string) string {
	if slices.Contains(remotes, DefaultRemote) {
		return DefaultRemote
	}
	if len(remotes) > 0 {
		return remotes[0]
	}
	return ""
}

// parseHeadBranch extracts the name from the "HEAD branch: <name>" line of
// git remote show.
func parseHeadBranch(out string) string {
	for _, line := range strings.Split(out, "\n") {
		_, name, ok := strings.Cut(line, "HEAD branch:")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" || name == "(unknown)" {
			return ""
		}
		return name
	}
	return ""
}

// parseLines splits output into trimmed, non-empty lines.
func parseLines(out string) []string {
	var lines []string
	for _, line := range strings.FieldsFunc(out, func(r rune) bool { return r == '\n' || r == '\r' }) {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
