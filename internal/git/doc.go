// Package git provides Git operations via exec for gitsync.
//
// A Client wraps one repository directory and a process.Runner. Every
// method maps to one git subcommand:
//
//	client := git.New(process.Exec{}, root)
//	res, err := client.Stash(ctx, "UnityToolbarAuto", 20*time.Second)
//	up := client.ResolveUpstream(ctx, "develop")
//	res, err = client.Pull(ctx, up)
//
// # Results and Errors
//
// Commands that start report their exit status in the process.Result; the
// returned error is non-nil only when git itself could not be run. Such
// errors are *output.ExitError values with ExitSystemError and still unwrap
// to *process.StartError.
//
// # Upstream Resolution
//
// ResolveUpstream prefers the branch's tracking upstream, then falls back to
// a remote (origin first) and a branch (current, remote HEAD, configured
// fallback), checking with ls-remote that the remote has the branch.
//
// # Repository Discovery
//
// FindRoot locates the work-tree root above a path using go-git, without
// spawning git.
package git
