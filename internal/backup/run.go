package backup

import (
	"context"
	"fmt"
	"io"
	"os"

	"pgcluster/internal/cluster"
	"pgcluster/internal/coordination"
)

// Prepare creates the backup destination and its WAL subdirectory if they
// don't already exist, and reserves a uniquely-named temporary directory
// for an in-progress base backup. The returned directory is removed before
// Prepare returns: pg_basebackup refuses to write into a pre-existing
// directory, so a unique name is picked (MkdirTemp's mkdir fails rather
// than reuse an existing name) and then freed for pg_basebackup itself to
// create.
func Prepare(desc Descriptor) (tmpDir string, err error) {
	if err := os.MkdirAll(desc.Dir, 0o700); err != nil {
		return "", fmt.Errorf("backup: creating %s: %w", desc.Dir, err)
	}
	if err := os.MkdirAll(desc.WALDir(), 0o700); err != nil {
		return "", fmt.Errorf("backup: creating %s: %w", desc.WALDir(), err)
	}
	tmpDir, err = os.MkdirTemp(desc.Dir, ".tmp.data.")
	if err != nil {
		return "", fmt.Errorf("backup: reserving temporary directory: %w", err)
	}
	if err := os.Remove(tmpDir); err != nil {
		return "", fmt.Errorf("backup: preparing temporary directory: %w", err)
	}
	return tmpDir, nil
}

// RunExclusive performs the full backup protocol while holding an
// exclusive lock on the cluster, restarting the server first if
// reconfiguring archiving requires it (spec §4.5 step 3).
func RunExclusive(ctx context.Context, resource coordination.ResourceExclusive[*cluster.Cluster], desc Descriptor, progress io.Writer) (string, error) {
	c := resource.Subject

	restartNeeded, err := configureArchiving(ctx, c, desc)
	if err != nil {
		return "", err
	}
	if restartNeeded {
		if _, err := c.Stop(ctx); err != nil {
			return "", fmt.Errorf("backup: restarting to apply archiving configuration: %w", err)
		}
		if _, err := c.Start(ctx, nil); err != nil {
			return "", fmt.Errorf("backup: restarting to apply archiving configuration: %w", err)
		}
	}
	return baseBackup(ctx, c, desc, progress)
}

// RunShared performs the full backup protocol while holding only a shared
// lock. If reconfiguring archiving would require a restart, it fails with
// ErrRestartRequiresExclusive instead — stopping and starting the server
// out from under other shared-lock holders is not something a read
// license is allowed to do (spec §4.5 step 3).
func RunShared(ctx context.Context, resource coordination.ResourceShared[*cluster.Cluster], desc Descriptor, progress io.Writer) (string, error) {
	c := resource.Subject

	restartNeeded, err := configureArchiving(ctx, c, desc)
	if err != nil {
		return "", err
	}
	if restartNeeded {
		return "", ErrRestartRequiresExclusive
	}
	return baseBackup(ctx, c, desc, progress)
}

// baseBackup runs pg_basebackup into a freshly reserved temporary
// directory and, on success, allocates it the next data.NNNNNNNNNN slot.
func baseBackup(ctx context.Context, c *cluster.Cluster, desc Descriptor, progress io.Writer) (string, error) {
	tmpDir, err := Prepare(desc)
	if err != nil {
		return "", err
	}
	if err := c.BaseBackup(ctx, tmpDir, progress); err != nil {
		os.RemoveAll(tmpDir)
		return "", err
	}
	final, err := AllocateNextDataDir(desc, tmpDir)
	if err != nil {
		os.RemoveAll(tmpDir)
		return "", err
	}
	return final, nil
}
