package cluster

import (
	"context"
	"fmt"
	"io"
)

// BaseBackup runs pg_basebackup against the cluster's Unix socket, writing
// a plain-format physical backup into destDir (which must already exist
// and be empty). Progress output ("--progress" writes percentage updates
// to stderr) is copied to progress if non-nil.
func (c *Cluster) BaseBackup(ctx context.Context, destDir string, progress io.Writer) error {
	r, err := c.resolveRuntime(ctx)
	if err != nil {
		return err
	}

	cmd := c.command(ctx, r, r.Path("pg_basebackup"),
		"--pgdata", destDir,
		"--format", "plain",
		"--progress",
	)
	cmd.Stdout = io.Discard
	if progress != nil {
		cmd.Stderr = progress
	} else {
		cmd.Stderr = io.Discard
	}
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("cluster: pg_basebackup failed: %w", err)
	}
	return nil
}
