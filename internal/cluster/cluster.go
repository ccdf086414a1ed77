// Package cluster implements the cluster controller: creating, starting,
// stopping, and destroying a PostgreSQL data directory, running
// subprocesses and queries against it, and managing its configuration
// parameters.
package cluster

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/kballard/go-shellquote"

	"pgcluster/internal/runtime"
	"pgcluster/internal/state"
	"pgcluster/internal/version"
)

// Cluster is a single PostgreSQL data directory plus the strategy used to
// find a PostgreSQL runtime capable of operating on it. Cluster carries no
// mutable state of its own: whether the cluster is absent, stopped, or
// running is always determined by looking at the filesystem and, for
// "running", by asking pg_ctl — never cached in memory, since any number
// of independent processes may be racing to change it.
type Cluster struct {
	DataDir  string
	Strategy runtime.Strategy
}

// New returns a Cluster rooted at datadir, using strategy to resolve a
// PostgreSQL runtime.
func New(datadir string, strategy runtime.Strategy) *Cluster {
	return &Cluster{DataDir: datadir, Strategy: strategy}
}

// StartOptions is a set of "-c name=value" pairs passed to a freshly
// started server. Options are not applied to a server that was already
// running.
type StartOptions map[string]string

// Exists reports whether datadir holds a created cluster (i.e. has a
// PG_VERSION file). This is a pure filesystem check; it says nothing about
// whether the server is running.
func (c *Cluster) Exists() (bool, error) {
	_, err := os.Stat(filepath.Join(c.DataDir, version.PGVersionFile))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// resolveRuntime re-resolves, on every call, which PostgreSQL runtime
// should be used for this cluster: if the cluster already exists, its
// on-disk major version is a hard compatibility constraint; if not, the
// strategy's fallback decides which version a new cluster is created
// with. Re-resolving on every use (rather than caching) is what lets an
// existing cluster keep working across process restarts even as installed
// runtimes come and go.
func (c *Cluster) resolveRuntime(ctx context.Context) (runtime.Runtime, error) {
	exists, err := c.Exists()
	if err != nil {
		return runtime.Runtime{}, err
	}
	if !exists {
		r, err := c.Strategy.Fallback(ctx)
		if err != nil {
			return runtime.Runtime{}, fmt.Errorf("cluster: resolving runtime for new cluster: %w", err)
		}
		return r, nil
	}

	pv, err := version.ReadClusterVersion(c.DataDir)
	if err != nil {
		return runtime.Runtime{}, fmt.Errorf("cluster: reading on-disk version: %w", err)
	}
	r, err := c.Strategy.Select(ctx, runtime.Version(pv))
	if err != nil {
		return runtime.Runtime{}, fmt.Errorf("cluster: no runtime compatible with on-disk version %s: %w", pv, err)
	}
	return r, nil
}

// Create initializes the data directory if it doesn't already exist, using
// a neutral locale/encoding so that tests and tooling see stable output
// regardless of the host's configured locale.
func (c *Cluster) Create(ctx context.Context) (state.State, error) {
	exists, err := c.Exists()
	if err != nil {
		return state.Unmodified, err
	}
	if exists {
		return state.Unmodified, nil
	}

	r, err := c.resolveRuntime(ctx)
	if err != nil {
		return state.Unmodified, err
	}

	if err := os.MkdirAll(c.DataDir, 0o700); err != nil {
		return state.Unmodified, fmt.Errorf("cluster: creating data directory: %w", err)
	}

	cmd := c.command(ctx, r, r.Path("pg_ctl"),
		"init", "-s", "-D", c.DataDir,
		"-o", "-E utf8 --locale C -A trust",
	)
	cmd.Env = append(cmd.Env, "TZ=UTC")
	if out, err := cmd.CombinedOutput(); err != nil {
		return state.Unmodified, fmt.Errorf("cluster: pg_ctl init failed: %w: %s", err, out)
	}

	return state.Modified, nil
}

// Start ensures the cluster is created, then starts it if it isn't
// already running. Options are applied only when this call actually
// starts the server.
func (c *Cluster) Start(ctx context.Context, opts StartOptions) (state.State, error) {
	if _, err := c.Create(ctx); err != nil {
		return state.Unmodified, err
	}

	status, err := c.Running(ctx)
	if err != nil {
		return state.Unmodified, err
	}
	if status == Running {
		return state.Unmodified, nil
	}

	r, err := c.resolveRuntime(ctx)
	if err != nil {
		return state.Unmodified, err
	}

	postgresArgs := []string{"-h", "", "-k", c.DataDir}
	for name, value := range opts {
		postgresArgs = append(postgresArgs, "-c", name+"="+value)
	}

	cmd := c.command(ctx, r, r.Path("pg_ctl"),
		"start", "-s", "-w",
		"-D", c.DataDir,
		"-l", filepath.Join(c.DataDir, "postmaster.log"),
		"-o", shellquote.Join(postgresArgs...),
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return state.Unmodified, fmt.Errorf("cluster: pg_ctl start failed: %w: %s", err, out)
	}

	return state.Modified, nil
}

// Stop stops a running server with "fast" shutdown mode, waiting for it to
// exit.
func (c *Cluster) Stop(ctx context.Context) (state.State, error) {
	status, err := c.Running(ctx)
	if err != nil {
		return state.Unmodified, err
	}
	if status != Running {
		return state.Unmodified, nil
	}

	r, err := c.resolveRuntime(ctx)
	if err != nil {
		return state.Unmodified, err
	}

	cmd := c.command(ctx, r, r.Path("pg_ctl"), "stop", "-s", "-w", "-m", "fast", "-D", c.DataDir)
	if out, err := cmd.CombinedOutput(); err != nil {
		return state.Unmodified, fmt.Errorf("cluster: pg_ctl stop failed: %w: %s", err, out)
	}
	return state.Modified, nil
}

// Destroy stops the cluster if running, then recursively removes the data
// directory.
func (c *Cluster) Destroy(ctx context.Context) (state.State, error) {
	exists, err := c.Exists()
	if err != nil {
		return state.Unmodified, err
	}
	if !exists {
		return state.Unmodified, nil
	}

	if _, err := c.Stop(ctx); err != nil {
		return state.Unmodified, err
	}
	if err := os.RemoveAll(c.DataDir); err != nil {
		return state.Unmodified, fmt.Errorf("cluster: removing data directory: %w", err)
	}
	return state.Modified, nil
}

// command builds an *exec.Cmd for an executable belonging to r, with this
// cluster's environment merged in.
func (c *Cluster) command(ctx context.Context, r runtime.Runtime, path string, args ...string) *exec.Cmd {
	return newCommand(ctx, path, args, c.environment("postgres"))
}
