package git

import (
	"context"
	"slices"
	"testing"

	"github.com/zaixsen/unityGitTool/internal/process/processtest"
)

const (
	argsTracking   = "rev-parse --abbrev-ref --symbolic-full-name @{u}"
	argsRemote     = "remote"
	argsBranch     = "rev-parse --abbrev-ref HEAD"
	noUpstreamText = "fatal: no upstream configured for branch 'feature'"
)

func TestUpstream_PullArgs(t *testing.T) {
	tests := []struct {
		name string
		up   Upstream
		want []string
	}{
		{"tracking", Upstream{Remote: "origin", Branch: "main", Tracking: true}, []string{"pull", "--rebase"}},
		{"explicit", Upstream{Remote: "upstream", Branch: "develop"}, []string{"pull", "--rebase", "upstream", "develop"}},
		{"no branch", Upstream{Remote: "origin"}, []string{"pull", "--rebase", "origin"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.up.PullArgs(); !slices.Equal(got, tt.want) {
				t.Errorf("PullArgs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveUpstream_Tracking(t *testing.T) {
	fake := processtest.New().On(argsTracking, processtest.OK("origin/feature/scene-fix\n"))
	client := New(fake, "/repo")

	up := client.ResolveUpstream(context.Background(), "develop")

	want := Upstream{Remote: "origin", Branch: "feature/scene-fix", Tracking: true}
	if up != want {
		t.Errorf("ResolveUpstream() = %+v, want %+v", up, want)
	}
	if calls := fake.Calls(); len(calls) != 1 {
		t.Errorf("expected only the tracking query, got %v", calls)
	}
	if !slices.Equal(up.PullArgs(), []string{"pull", "--rebase"}) {
		t.Errorf("PullArgs() = %v", up.PullArgs())
	}
}

func TestResolveUpstream_PrefersOrigin(t *testing.T) {
	fake := processtest.New().
		On(argsTracking, processtest.Fail(128, noUpstreamText)).
		On(argsRemote, processtest.OK("fork\norigin\n")).
		On(argsBranch, processtest.OK("feature\n")).
		On("ls-remote --heads origin feature", processtest.OK("abc123\trefs/heads/feature\n"))
	client := New(fake, "/repo")

	up := client.ResolveUpstream(context.Background(), "develop")

	want := Upstream{Remote: "origin", Branch: "feature"}
	if up != want {
		t.Errorf("ResolveUpstream() = %+v, want %+v", up, want)
	}
}

func TestResolveUpstream_FirstRemoteWhenNoOrigin(t *testing.T) {
	fake := processtest.New().
		On(argsTracking, processtest.Fail(128, noUpstreamText)).
		On(argsRemote, processtest.OK("upstream\n")).
		On(argsBranch, processtest.OK("main\n")).
		On("ls-remote --heads upstream main", processtest.OK("abc123\trefs/heads/main\n"))
	client := New(fake, "/repo")

	up := client.ResolveUpstream(context.Background(), "develop")

	if up.Remote != "upstream" {
		t.Errorf("Remote = %q, want %q", up.Remote, "upstream")
	}
	if up.Branch != "main" || up.Tracking {
		t.Errorf("ResolveUpstream() = %+v", up)
	}
}

func TestResolveUpstream_DetachedUsesRemoteHead(t *testing.T) {
	show := "* remote origin\n  Fetch URL: git@example.com:game.git\n  HEAD branch: trunk\n"
	fake := processtest.New().
		On(argsTracking, processtest.Fail(128, "fatal: HEAD does not point to a branch")).
		On(argsRemote, processtest.OK("origin\n")).
		On(argsBranch, processtest.OK("HEAD\n")).
		On("remote show origin", processtest.OK(show)).
		On("ls-remote --heads origin trunk", processtest.OK("abc\trefs/heads/trunk\n"))
	client := New(fake, "/repo")

	up := client.ResolveUpstream(context.Background(), "develop")

	if up.Branch != "trunk" {
		t.Errorf("Branch = %q, want %q", up.Branch, "trunk")
	}
}

func TestResolveUpstream_MissingRemoteBranchFallsBackToRemoteHead(t *testing.T) {
	show := "* remote origin\n  HEAD branch: main\n"
	fake := processtest.New().
		On(argsTracking, processtest.Fail(128, noUpstreamText)).
		On(argsRemote, processtest.OK("origin\n")).
		On(argsBranch, processtest.OK("local-only\n")).
		On("ls-remote --heads origin local-only", processtest.OK("")).
		On("remote show origin", processtest.OK(show))
	client := New(fake, "/repo")

	up := client.ResolveUpstream(context.Background(), "develop")

	if up.Branch != "main" {
		t.Errorf("Branch = %q, want %q", up.Branch, "main")
	}
}

func TestResolveUpstream_FallbackBranch(t *testing.T) {
	fake := processtest.New().
		On(argsTracking, processtest.Fail(128, noUpstreamText)).
		On(argsRemote, processtest.OK("")).
		On(argsBranch, processtest.Fail(128, "fatal: ambiguous argument 'HEAD'"))
	client := New(fake, "/repo")

	up := client.ResolveUpstream(context.Background(), "develop")

	want := Upstream{Remote: "origin", Branch: "develop"}
	if up != want {
		t.Errorf("ResolveUpstream() = %+v, want %+v", up, want)
	}
	for _, call := range fake.Calls() {
		if call == "ls-remote --heads origin develop" {
			t.Error("ls-remote should not run when no remote is configured")
		}
	}
}

func TestParseHeadBranch(t *testing.T) {
	tests := []struct {
		name string
		out  string
		want string
	}{
		{"present", "  HEAD branch: main\n", "main"},
		{"unknown", "  HEAD branch: (unknown)\n", ""},
		{"missing", "* remote origin\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseHeadBranch(tt.out); got != tt.want {
				t.Errorf("parseHeadBranch() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPickRemote(t *testing.T) {
	tests := []struct {
		remotes []string
		want    string
	}{
		{[]string{"a", "origin"}, "origin"},
		{[]string{"upstream"}, "upstream"},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := pickRemote(tt.remotes); got != tt.want {
			t.Errorf("pickRemote(%v) = %q, want %q", tt.remotes, got, tt.want)
		}
	}
}
