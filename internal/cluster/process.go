package cluster

import (
	"context"
	"os"
	"os/exec"
)

// newCommand builds a subprocess invocation with extraEnv merged on top of
// the current process environment, so that callers only need to specify
// the cluster-specific overrides (PGDATA, PGHOST, ...).
func newCommand(ctx context.Context, path string, args []string, extraEnv []string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Env = append(os.Environ(), extraEnv...)
	return cmd
}
