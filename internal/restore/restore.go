package restore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"time"

	"github.com/kballard/go-shellquote"

	"pgcluster/internal/backup"
	"pgcluster/internal/cluster"
	"pgcluster/internal/coordination"
	"pgcluster/internal/filelock"
	"pgcluster/internal/runtime"
)

// pollInterval is how often Run checks whether the recovering server has
// shut itself down, per spec §4.5 Restore protocol step 7.
const pollInterval = time.Second

// Result summarizes a completed restore.
type Result struct {
	// RestoreDir is the data directory the backup was restored into.
	RestoreDir string

	// Guidance is operator-facing text describing how to connect to the
	// restored cluster, derived from its superuser roles (spec §4.5
	// Restore protocol step 10).
	Guidance string
}

// Run executes the restore protocol: it resolves the latest base backup
// under desc, copies it into restoreDir, replays WAL up to the latest
// consistent point via PostgreSQL's own recovery machinery, and resets the
// archiving settings the restored cluster inherited from its source.
// restoreDir must not exist or must be empty.
func Run(ctx context.Context, desc backup.Descriptor, restoreDir string, strategy runtime.Strategy, onProgress ProgressFunc) (Result, error) {
	srcDir, _, ok, err := backup.LatestDataDir(desc.Dir)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return Result{}, backup.ErrNoBaseBackup
	}

	if err := prepareRestoreDir(restoreDir); err != nil {
		return Result{}, err
	}
	if err := copyTree(srcDir, restoreDir, onProgress); err != nil {
		return Result{}, err
	}
	if err := clearDir(filepath.Join(restoreDir, "pg_wal")); err != nil {
		return Result{}, err
	}
	if err := os.WriteFile(filepath.Join(restoreDir, "recovery.signal"), nil, 0o600); err != nil {
		return Result{}, fmt.Errorf("restore: writing recovery.signal: %w", err)
	}

	c := cluster.New(restoreDir, strategy)
	lockPath, err := filelock.ClusterLockPath(restoreDir)
	if err != nil {
		return Result{}, err
	}
	free, err := coordination.NewResourceFree(lockPath, c)
	if err != nil {
		return Result{}, err
	}

	restoreCommand, err := desiredRestoreCommand(desc)
	if err != nil {
		return Result{}, err
	}

	if err := replay(ctx, &free, restoreCommand); err != nil {
		return Result{}, err
	}

	if err := os.Remove(filepath.Join(restoreDir, "recovery.signal")); err != nil && !os.IsNotExist(err) {
		return Result{}, fmt.Errorf("restore: removing recovery.signal: %w", err)
	}

	guidance, err := resetArchivingAndDetermineGuidance(ctx, free, restoreDir)
	if err != nil {
		return Result{}, err
	}

	return Result{RestoreDir: restoreDir, Guidance: guidance}, nil
}

// desiredRestoreCommand builds the restore_command used during recovery:
// a plain "cp" from the backup's WAL archive, with %p/%f left for
// PostgreSQL to substitute.
func desiredRestoreCommand(desc backup.Descriptor) (string, error) {
	pattern := filepath.Join(desc.WALDir(), "%f")
	return fmt.Sprintf("%s %%p", shellquote.Join("cp", pattern)), nil
}

// replay starts the cluster with recovery overrides, waits for the server
// to shut itself down once it reaches the recovery target, and releases
// the lock back to free.
func replay(ctx context.Context, free *coordination.ResourceFree[*cluster.Cluster], restoreCommand string) error {
	overrides := cluster.StartOptions{
		"archive_mode":           "off",
		"restore_command":        restoreCommand,
		"recovery_target":        "immediate",
		"recovery_target_action": "shutdown",
	}

	_, shared, err := coordination.Startup(ctx, *free, overrides)
	if err != nil {
		return fmt.Errorf("restore: starting recovery: %w", err)
	}

	if err := waitForExit(ctx, shared); err != nil {
		return fmt.Errorf("restore: waiting for recovery to finish: %w", err)
	}

	released, err := shared.Release()
	if err != nil {
		return err
	}
	*free = released
	return nil
}

// waitForExit polls the server's running status at pollInterval until it
// reports stopped, mirroring PostgreSQL shutting itself down once recovery
// reaches its target (recovery_target_action=shutdown).
func waitForExit(ctx context.Context, shared coordination.ResourceShared[*cluster.Cluster]) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		running, err := shared.Subject.IsRunning(ctx)
		if err != nil {
			return err
		}
		if !running {
			return nil
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// resetArchivingAndDetermineGuidance starts the restored cluster once
// more with archiving off, resets the archiving parameters it inherited
// from the source cluster, stops it, and determines operator guidance
// from its superuser roles.
func resetArchivingAndDetermineGuidance(ctx context.Context, free coordination.ResourceFree[*cluster.Cluster], restoreDir string) (string, error) {
	_, shared, err := coordination.Startup(ctx, free, cluster.StartOptions{"archive_mode": "off"})
	if err != nil {
		return "", fmt.Errorf("restore: starting restored cluster: %w", err)
	}

	resetErr := resetArchivingSettings(ctx, shared.Subject)

	if _, err := coordination.Shutdown(ctx, shared, coordination.ModeStop); err != nil {
		if resetErr != nil {
			return "", resetErr
		}
		return "", err
	}
	if resetErr != nil {
		return "", resetErr
	}

	roles, err := shared.Subject.DetermineSuperuserRoles(ctx)
	if err != nil {
		return "", err
	}
	return guidanceFor(roles, restoreDir), nil
}

// resetArchivingSettings RESETs the three archiving parameters a restored
// cluster inherits from its source. archive_library is tolerated as
// unsupported on PostgreSQL versions that predate it (spec §4.5 Restore
// protocol step 9, §6).
func resetArchivingSettings(ctx context.Context, c *cluster.Cluster) error {
	for _, name := range []string{"archive_mode", "archive_command"} {
		if err := c.ResetParameter(ctx, name); err != nil {
			return fmt.Errorf("restore: resetting %s: %w", name, err)
		}
	}
	if err := c.ResetParameter(ctx, "archive_library"); err != nil && !cluster.IsUndefinedObject(err) {
		return fmt.Errorf("restore: resetting archive_library: %w", err)
	}
	return nil
}

// guidanceFor produces operator-facing text describing how to connect to
// the restored cluster: if the invoking OS user is itself one of the
// cluster's superusers, connecting needs no extra configuration; otherwise
// PGUSER must be set to one of the discovered superuser names.
func guidanceFor(roles []string, restoreDir string) string {
	if u, err := user.Current(); err == nil {
		for _, r := range roles {
			if r == u.Username {
				return fmt.Sprintf("connect directly: PGDATA=%s PGHOST=%s psql", restoreDir, restoreDir)
			}
		}
	}
	if len(roles) == 0 {
		return fmt.Sprintf("PGDATA=%s PGHOST=%s psql", restoreDir, restoreDir)
	}
	return fmt.Sprintf("PGUSER=%s PGDATA=%s PGHOST=%s psql", roles[0], restoreDir, restoreDir)
}

// prepareRestoreDir creates restoreDir if absent, fails if it exists and
// is non-empty, and sets its mode to 0o700 regardless (spec §4.5 Restore
// protocol step 2).
func prepareRestoreDir(dir string) error {
	entries, err := os.ReadDir(dir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("restore: creating %s: %w", dir, err)
		}
	case err != nil:
		return fmt.Errorf("restore: reading %s: %w", dir, err)
	case len(entries) > 0:
		return ErrDestinationNotEmpty
	}
	if err := os.Chmod(dir, 0o700); err != nil {
		return fmt.Errorf("restore: setting mode on %s: %w", dir, err)
	}
	return nil
}

// clearDir removes every entry directly inside dir, leaving dir itself in
// place. A missing dir is not an error.
func clearDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("restore: reading %s: %w", dir, err)
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return fmt.Errorf("restore: clearing %s: %w", dir, err)
		}
	}
	return nil
}
