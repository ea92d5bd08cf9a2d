package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zaixsen/unityGitTool/internal/conflict"
	"github.com/zaixsen/unityGitTool/internal/output"
)

// RepoFile is the per-repository config file name, read from the work-tree root.
const RepoFile = ".gitsync.yaml"

// Defaults.
const (
	DefaultMarker         = "UnityToolbarAuto"
	DefaultFallbackBranch = "develop"
	DefaultStashTimeout   = 20 * time.Second
)

// DefaultNoChangesMarkers are stash outputs meaning nothing was stashed.
var DefaultNoChangesMarkers = []string{
	"No local changes to save",
	"没有要保存的本地修改",
}

// Duration is a time.Duration written as a Go duration string ("20s") in YAML.
type Duration time.Duration

// UnmarshalYAML parses "20s"-style strings; a bare integer is seconds.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var secs int
	if err := node.Decode(&secs); err == nil {
		*d = Duration(time.Duration(secs) * time.Second)
		return nil
	}
	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("line %d: duration must be a string like \"20s\": %w", node.Line, err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML writes the duration as a string.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// MarshalJSON writes the duration as a string, matching the YAML form.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Clients lists extra install paths for the GUI conflict tools.
type Clients struct {
	TortoiseGit []string `yaml:"tortoisegit,omitempty" json:"tortoisegit,omitempty"`
	SourceTree  []string `yaml:"sourcetree,omitempty" json:"sourcetree,omitempty"`
}

// Config holds the tunable parts of the sync workflow.
type Config struct {
	// Marker is the stash message used for the automatic stash.
	Marker string `yaml:"marker,omitempty" json:"marker,omitempty"`
	// FallbackBranch is pulled when no branch can be resolved any other way.
	FallbackBranch string `yaml:"fallback_branch,omitempty" json:"fallback_branch,omitempty"`
	// GitBinary overrides the git executable.
	GitBinary string `yaml:"git_binary,omitempty" json:"git_binary,omitempty"`
	// StashTimeout bounds the initial stash; zero disables it.
	StashTimeout *Duration `yaml:"stash_timeout,omitempty" json:"stash_timeout,omitempty"`
	// CommandTimeout bounds every other git command; zero disables it.
	CommandTimeout *Duration `yaml:"command_timeout,omitempty" json:"command_timeout,omitempty"`
	// OpenClient launches a GUI client when a conflict is detected.
	OpenClient *bool `yaml:"open_client,omitempty" json:"open_client,omitempty"`
	// ConflictKeywords replaces the built-in conflict markers.
	ConflictKeywords []string `yaml:"conflict_keywords,omitempty" json:"conflict_keywords,omitempty"`
	// NoChangesMarkers replaces the built-in "nothing stashed" markers.
	NoChangesMarkers []string `yaml:"no_changes_markers,omitempty" json:"no_changes_markers,omitempty"`
	Clients          Clients  `yaml:"clients,omitempty" json:"clients,omitempty"`
}

// Default returns the built-in configuration.
func Default() Config {
	stash := Duration(DefaultStashTimeout)
	command := Duration(0)
	openClient := true
	return Config{
		Marker:           DefaultMarker,
		FallbackBranch:   DefaultFallbackBranch,
		GitBinary:        "git",
		StashTimeout:     &stash,
		CommandTimeout:   &command,
		OpenClient:       &openClient,
		ConflictKeywords: append([]string(nil), conflict.DefaultKeywords...),
		NoChangesMarkers: append([]string(nil), DefaultNoChangesMarkers...),
	}
}

// Merge overlays the fields set in other onto c.
func (c Config) Merge(other Config) Config {
	if other.Marker != "" {
		c.Marker = other.Marker
	}
	if other.FallbackBranch != "" {
		c.FallbackBranch = other.FallbackBranch
	}
	if other.GitBinary != "" {
		c.GitBinary = other.GitBinary
	}
	if other.StashTimeout != nil {
		c.StashTimeout = other.StashTimeout
	}
	if other.CommandTimeout != nil {
		c.CommandTimeout = other.CommandTimeout
	}
	if other.OpenClient != nil {
		c.OpenClient = other.OpenClient
	}
	if len(other.ConflictKeywords) > 0 {
		c.ConflictKeywords = other.ConflictKeywords
	}
	if len(other.NoChangesMarkers) > 0 {
		c.NoChangesMarkers = other.NoChangesMarkers
	}
	c.Clients.TortoiseGit = append(c.Clients.TortoiseGit, other.Clients.TortoiseGit...)
	c.Clients.SourceTree = append(c.Clients.SourceTree, other.Clients.SourceTree...)
	return c
}

// StashTimeoutValue returns the stash timeout, zero when unset.
func (c Config) StashTimeoutValue() time.Duration {
	if c.StashTimeout == nil {
		return 0
	}
	return time.Duration(*c.StashTimeout)
}

// CommandTimeoutValue returns the per-command timeout, zero when unset.
func (c Config) CommandTimeoutValue() time.Duration {
	if c.CommandTimeout == nil {
		return 0
	}
	return time.Duration(*c.CommandTimeout)
}

// OpenClientEnabled reports whether conflicts should launch a GUI client.
func (c Config) OpenClientEnabled() bool {
	return c.OpenClient == nil || *c.OpenClient
}

// Load builds the effective configuration: defaults, then the global file
// (or explicitPath when set), then <repoRoot>/.gitsync.yaml.
// Missing files are skipped; an explicitPath that does not exist is an error.
func Load(repoRoot, explicitPath string) (Config, error) {
	cfg := Default()

	global := explicitPath
	if global == "" {
		global = GlobalFile()
	}
	if global != "" {
		fileCfg, err := ReadFile(global)
		switch {
		case err == nil:
			cfg = cfg.Merge(fileCfg)
		case !errors.Is(err, fs.ErrNotExist):
			return cfg, err
		case explicitPath != "":
			return cfg, output.NewUserError("config file not found: " + explicitPath)
		}
	}

	if repoRoot != "" {
		fileCfg, err := ReadFile(filepath.Join(repoRoot, RepoFile))
		switch {
		case err == nil:
			cfg = cfg.Merge(fileCfg)
		case !errors.Is(err, fs.ErrNotExist):
			return cfg, err
		}
	}

	return cfg, nil
}

// ReadFile parses one YAML config file.
func ReadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
		return Config{}, output.NewSystemErrorWithCause("reading config "+path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, &output.ExitError{
			Code:    output.ExitUserError,
			Message: fmt.Sprintf("invalid config %s: %v", path, err),
			Cause:   err,
		}
	}
	return cfg, nil
}

// Marshal renders the configuration as YAML.
func (c Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return data, nil
}
