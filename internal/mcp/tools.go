package mcp

import (
	"context"
	"errors"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/zaixsen/unityGitTool/internal/client"
	"github.com/zaixsen/unityGitTool/internal/config"
	"github.com/zaixsen/unityGitTool/internal/conflict"
	"github.com/zaixsen/unityGitTool/internal/git"
	"github.com/zaixsen/unityGitTool/internal/lock"
	gitsync "github.com/zaixsen/unityGitTool/internal/sync"
)

// --- Sync tool ---

// SyncInput is the input for the sync tool.
type SyncInput struct {
	Path           string `json:"path,omitempty"            jsonschema:"repository path (default: server working directory)"`
	FallbackBranch string `json:"fallback_branch,omitempty" jsonschema:"branch to pull when none can be resolved"`
	NoClient       bool   `json:"no_client,omitempty"       jsonschema:"never open a GUI client on conflict"`
}

// SyncOutput is the output for the sync tool.
type SyncOutput struct {
	RunID          string   `json:"run_id"                    jsonschema:"unique ID of this run"`
	Repo           string   `json:"repo"                      jsonschema:"work-tree root that was synced"`
	Success        bool     `json:"success"                   jsonschema:"true when stash, pull and pop all succeeded"`
	Message        string   `json:"message"                   jsonschema:"result or composed failure message"`
	Kind           string   `json:"kind,omitempty"            jsonschema:"failure kind: start_failure, nonzero_exit, timeout or conflict"`
	Command        string   `json:"command,omitempty"         jsonschema:"the git command that failed"`
	Guidance       string   `json:"guidance,omitempty"        jsonschema:"conflict remediation steps"`
	Upstream       string   `json:"upstream,omitempty"        jsonschema:"remote/branch pulled from"`
	Stashed        bool     `json:"stashed"                   jsonschema:"whether local changes were stashed"`
	ClientLaunched string   `json:"client_launched,omitempty" jsonschema:"GUI client opened for conflict resolution"`
	Commands       []string `json:"commands"                  jsonschema:"git commands executed, in order"`
	Summary        string   `json:"summary"                   jsonschema:"plain-text log of every step and its output"`
}

func handleSync(deps Deps) mcp.ToolHandlerFor[SyncInput, SyncOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SyncInput) (*mcp.CallToolResult, SyncOutput, error) {
		root, cfg, err := loadRepo(deps, input.Path)
		if err != nil {
			return nil, SyncOutput{}, err
		}
		if input.FallbackBranch != "" {
			cfg.FallbackBranch = input.FallbackBranch
		}
		if input.NoClient {
			cfg.OpenClient = boolPtr(false)
		}

		held, err := lock.Acquire(deps.LockDir, root)
		if err != nil {
			return nil, SyncOutput{}, err
		}
		defer func() { _ = held.Release() }()

		workflow := gitsync.New(cfg, deps.Runner)
		workflow.Logger = deps.Logger
		outcome := workflow.Run(ctx, root)

		out := SyncOutput{
			RunID:          outcome.RunID,
			Repo:           outcome.Repo,
			Success:        outcome.Success,
			Message:        outcome.Message,
			Kind:           string(outcome.Kind),
			Command:        outcome.Command,
			Guidance:       outcome.Guidance,
			Stashed:        outcome.Stashed,
			ClientLaunched: outcome.ClientLaunched,
			Commands:       outcome.Summary.Commands(),
			Summary:        outcome.Summary.String(),
		}
		if outcome.Upstream != nil {
			out.Upstream = outcome.Upstream.String()
		}
		return nil, out, nil
	}
}

// --- Upstream tool ---

// UpstreamInput is the input for the upstream tool.
type UpstreamInput struct {
	Path string `json:"path,omitempty" jsonschema:"repository path (default: server working directory)"`
}

// UpstreamOutput is the output for the upstream tool.
type UpstreamOutput struct {
	Repo        string `json:"repo"             jsonschema:"work-tree root"`
	Remote      string `json:"remote,omitempty" jsonschema:"remote name"`
	Branch      string `json:"branch"           jsonschema:"branch name"`
	Tracking    bool   `json:"tracking"         jsonschema:"true when the branch has a configured upstream"`
	PullCommand string `json:"pull_command"     jsonschema:"the pull command sync would run"`
}

func handleUpstream(deps Deps) mcp.ToolHandlerFor[UpstreamInput, UpstreamOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input UpstreamInput) (*mcp.CallToolResult, UpstreamOutput, error) {
		root, cfg, err := loadRepo(deps, input.Path)
		if err != nil {
			return nil, UpstreamOutput{}, err
		}

		repo := git.New(deps.Runner, root,
			git.WithBinary(cfg.GitBinary),
			git.WithTimeout(cfg.CommandTimeoutValue()),
		)
		up := repo.ResolveUpstream(ctx, cfg.FallbackBranch)

		return nil, UpstreamOutput{
			Repo:        root,
			Remote:      up.Remote,
			Branch:      up.Branch,
			Tracking:    up.Tracking,
			PullCommand: "git " + strings.Join(up.PullArgs(), " "),
		}, nil
	}
}

// --- Classify tool ---

// ClassifyInput is the input for the classify tool.
type ClassifyInput struct {
	Command string `json:"command"        jsonschema:"the git command that failed, e.g. 'git pull --rebase'"`
	Output  string `json:"output"         jsonschema:"captured stdout and stderr of the command"`
	Path    string `json:"path,omitempty" jsonschema:"repository whose .gitsync.yaml keywords apply"`
}

// ClassifyOutput is the output for the classify tool.
type ClassifyOutput struct {
	Kind     string `json:"kind"              jsonschema:"command kind: rebase-pull, stash-pop or other"`
	Matched  bool   `json:"matched"           jsonschema:"whether a conflict keyword was found"`
	Keyword  string `json:"keyword,omitempty" jsonschema:"the keyword that matched"`
	Guidance string `json:"guidance"          jsonschema:"remediation steps, empty when not a conflict"`
}

func handleClassify(deps Deps) mcp.ToolHandlerFor[ClassifyInput, ClassifyOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input ClassifyInput) (*mcp.CallToolResult, ClassifyOutput, error) {
		if strings.TrimSpace(input.Command) == "" {
			return nil, ClassifyOutput{}, errors.New("command is required")
		}

		cfg, err := loadConfig(deps, input.Path)
		if err != nil {
			return nil, ClassifyOutput{}, err
		}

		classifier := conflict.New(cfg.ConflictKeywords)
		keyword, matched := classifier.Match(input.Output)
		return nil, ClassifyOutput{
			Kind:     string(conflict.KindOf(input.Command)),
			Matched:  matched,
			Keyword:  keyword,
			Guidance: classifier.Classify(input.Command, input.Output),
		}, nil
	}
}

// --- Clients tool ---

// ClientsInput is the input for the clients tool (no parameters needed).
type ClientsInput struct{}

// ClientsOutput is the output for the clients tool.
type ClientsOutput struct {
	Candidates []client.Candidate `json:"candidates"      jsonschema:"every checked install path, in search order"`
	Found      *client.Client     `json:"found,omitempty" jsonschema:"the client a conflict would open"`
	Fallback   string             `json:"fallback"        jsonschema:"command used when no client is installed"`
}

func handleClients(deps Deps) mcp.ToolHandlerFor[ClientsInput, ClientsOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, _ ClientsInput) (*mcp.CallToolResult, ClientsOutput, error) {
		cfg, err := loadConfig(deps, "")
		if err != nil {
			return nil, ClientsOutput{}, err
		}

		locator := &client.Locator{Extra: map[client.Tool][]string{
			client.TortoiseGit: cfg.Clients.TortoiseGit,
			client.SourceTree:  cfg.Clients.SourceTree,
		}}
		out := ClientsOutput{
			Candidates: locator.Candidates(),
			Fallback:   cfg.GitBinary + " gui",
		}
		if found, ok := locator.Find(); ok {
			out.Found = &found
		}
		return nil, out, nil
	}
}

// --- Helpers ---

// loadRepo finds the work-tree root containing path and loads its config.
func loadRepo(deps Deps, path string) (string, config.Config, error) {
	if path == "" {
		path = "."
	}
	root, err := git.FindRoot(path)
	if err != nil {
		return "", config.Config{}, err
	}
	cfg, err := config.Load(root, deps.ConfigPath)
	if err != nil {
		return "", config.Config{}, err
	}
	return root, cfg, nil
}

// loadConfig loads the config for path when given, else the global config only.
func loadConfig(deps Deps, path string) (config.Config, error) {
	if path == "" {
		return config.Load("", deps.ConfigPath)
	}
	_, cfg, err := loadRepo(deps, path)
	return cfg, err
}
