package cluster

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
)

// Exec builds a child process for name (e.g. "psql") with the cluster's
// environment (PGDATA, PGHOST, PGDATABASE, DATABASE_URL) set, connected to
// the calling process's standard streams.
func (c *Cluster) Exec(ctx context.Context, database, name string, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(os.Environ(), c.environment(database)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd
}

// Shell runs shellPath (or $SHELL if empty) interactively against the
// cluster, so an operator can issue ad hoc psql commands or inspect the
// environment by hand.
func (c *Cluster) Shell(ctx context.Context, database, shellPath string) error {
	if shellPath == "" {
		shellPath = os.Getenv("SHELL")
	}
	if shellPath == "" {
		shellPath = "/bin/sh"
	}
	return c.Exec(ctx, database, shellPath).Run()
}

// superuserRolePattern extracts role names from "postgres --single" output
// lines of the shape rolname="somerole".
var superuserRolePattern = regexp.MustCompile(`rolname="([^"]*)"`)

// DetermineSuperuserRoles starts the cluster's postgres binary in
// "--single" (standalone backend) mode against a stopped cluster and feeds
// it a query selecting every role with both rolsuper and rolcanlogin. This
// is used after a restore, when the caller may not yet know which role to
// connect as.
func (c *Cluster) DetermineSuperuserRoles(ctx context.Context) ([]string, error) {
	r, err := c.resolveRuntime(ctx)
	if err != nil {
		return nil, err
	}

	cmd := c.command(ctx, r, r.Path("postgres"), "--single", "-D", c.DataDir, "postgres")
	cmd.Stdin = bytes.NewBufferString(
		"SELECT rolname FROM pg_roles WHERE rolsuper AND rolcanlogin;\n",
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("cluster: postgres --single failed: %w: %s", err, out)
	}

	matches := superuserRolePattern.FindAllStringSubmatch(string(out), -1)
	if len(matches) == 0 {
		return nil, ErrNoSuperuser
	}
	roles := make([]string, len(matches))
	for i, m := range matches {
		roles[i] = m[1]
	}
	return roles, nil
}
