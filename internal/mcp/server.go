// Package mcp provides a Model Context Protocol server for gitsync.
// It exposes the sync workflow and its read-only helpers as MCP tools.
package mcp

import (
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/zaixsen/unityGitTool/internal/process"
)

// Deps are the collaborators shared by every tool handler.
type Deps struct {
	// Runner executes git and GUI clients; nil means process.Exec.
	Runner process.Runner
	// ConfigPath is the --config file, or "" for the default global file.
	ConfigPath string
	// LockDir holds the per-repository lock files; "" means the temp dir.
	LockDir string
	Logger  *slog.Logger
}

// NewServer creates an MCP server with all gitsync tools registered.
func NewServer(version string, deps Deps) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "gitsync",
		Version: version,
	}, nil)
	registerTools(server, deps)
	return server
}

func boolPtr(b bool) *bool {
	return &b
}

// readOnlyAnnotations returns annotations for tools that only query state.
func readOnlyAnnotations() *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		ReadOnlyHint:   true,
		IdempotentHint: true,
		OpenWorldHint:  boolPtr(false),
	}
}

// remoteQueryAnnotations is for tools that change nothing locally but
// contact the remote (ls-remote, remote show).
func remoteQueryAnnotations() *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		ReadOnlyHint:   true,
		IdempotentHint: true,
		OpenWorldHint:  boolPtr(true),
	}
}

// syncAnnotations describes the sync tool: it rewrites the work tree and
// talks to the remote, but restores local changes instead of discarding them.
func syncAnnotations() *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		DestructiveHint: boolPtr(false),
		OpenWorldHint:   boolPtr(true),
	}
}

func registerTools(server *mcp.Server, deps Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name: "sync",
		Description: "Stash local changes, pull --rebase from the upstream, then pop the stash. " +
			"Returns the steps taken, or the failing command with conflict guidance.",
		Annotations: syncAnnotations(),
	}, handleSync(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "upstream",
		Description: "Resolve the remote and branch that sync would pull from, without changing anything.",
		Annotations: remoteQueryAnnotations(),
	}, handleUpstream(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "classify",
		Description: "Check failed git output for conflict markers and return remediation guidance.",
		Annotations: readOnlyAnnotations(),
	}, handleClassify(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "clients",
		Description: "List the GUI git clients gitsync looks for and which of them are installed.",
		Annotations: readOnlyAnnotations(),
	}, handleClients(deps))
}
