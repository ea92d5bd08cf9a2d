// Package conflict recognizes conflict-like git failures and produces
// remediation guidance for them.
package conflict

import "strings"

// DefaultKeywords are the substrings treated as conflict markers.
// Matching is case-insensitive and deliberately loose: extra guidance is
// preferred over missed guidance. The localized entries cover git running
// under a Chinese locale.
var DefaultKeywords = []string{
	"conflict",
	"merge conflict",
	"could not apply",
	"rebase",
	"overwritten",
	"failed to merge",
	"冲突",
	"合并冲突",
	"无法应用",
	"拒绝",
}

// Kind is the category of git command that failed.
type Kind string

const (
	KindRebasePull Kind = "rebase-pull"
	KindStashPop   Kind = "stash-pop"
	KindOther      Kind = "other"
)

const rebaseGuidance = `1) Open your local git client, or use the command line:
   - Inspect state:          git status
   - After fixing a file:    git add <conflicted file>
   - Continue the rebase:    git rebase --continue
   - Or give up the rebase:  git rebase --abort

Note: during a rebase "mine" is your local work and "theirs" is the
updated remote version.`

const stashPopGuidance = `1) After a conflicting pop the stash entry is kept; it still shows in git stash list.
2) Resolve the conflicts by editing the files, then run: git add <conflicted file>
3) Once the working tree looks right, drop the entry: git stash drop stash@{N}
4) Conflicts on untracked files must be backed up or renamed by hand before continuing.`

// Classifier matches command output against a keyword list.
// The zero value uses DefaultKeywords.
type Classifier struct {
	keywords []string
}

// New returns a Classifier for the given keywords.
// An empty list falls back to DefaultKeywords.
func New(keywords []string) *Classifier {
	cleaned := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			cleaned = append(cleaned, kw)
		}
	}
	return &Classifier{keywords: cleaned}
}

// Keywords returns the active keyword list.
func (c *Classifier) Keywords() []string {
	if c == nil || len(c.keywords) == 0 {
		return DefaultKeywords
	}
	return c.keywords
}

// Match reports the first keyword found in output.
func (c *Classifier) Match(output string) (string, bool) {
	text := strings.ToLower(output)
	for _, kw := range c.Keywords() {
		if strings.Contains(text, strings.ToLower(kw)) {
			return kw, true
		}
	}
	return "", false
}

// Classify returns remediation guidance for a failed command, or "" when
// the command is not a rebase-pull or stash-pop, or no marker matches.
func (c *Classifier) Classify(command, output string) string {
	kind := KindOf(command)
	if kind == KindOther {
		return ""
	}
	if _, ok := c.Match(output); !ok {
		return ""
	}
	return Guidance(kind)
}

// KindOf categorizes a git command line (without the leading "git").
func KindOf(command string) Kind {
	command = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(command), "git "))
	switch {
	case strings.HasPrefix(command, "pull") && strings.Contains(command, "--rebase"):
		return KindRebasePull
	case strings.Contains(command, "stash pop"):
		return KindStashPop
	default:
		return KindOther
	}
}

// Guidance returns the remediation text for a command kind.
func Guidance(kind Kind) string {
	switch kind {
	case KindRebasePull:
		return rebaseGuidance
	case KindStashPop:
		return stashPopGuidance
	default:
		return ""
	}
}
