package cmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"pgcluster/internal/backup"
	"pgcluster/internal/cluster"
	"pgcluster/internal/coordination"
	"pgcluster/internal/progress"
)

var backupDirFlag string

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Take a base backup of the cluster, starting it first if necessary",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		free, err := openCluster()
		if err != nil {
			return err
		}

		_, shared, err := coordination.Startup(cmd.Context(), free, nil)
		if err != nil {
			return err
		}

		desc := backup.Descriptor{Dir: backupDirFlag}
		dataDir, result, err := runBackup(cmd.Context(), shared, desc)
		if err != nil {
			// The OS reclaims the lock fd on process exit either way; on
			// the error path we don't know which lock state result is in.
			return err
		}

		log.Info("backup", "datadir", dataDir)
		freed, err := result.Release()
		if err != nil {
			return err
		}
		return freed.Close()
	},
}

// runBackup upgrades to an exclusive lock when possible (so a restart
// needed to reconfigure archiving is allowed) and falls back to the
// shared-lock path otherwise, returning the caller's shared lock restored
// either way.
func runBackup(ctx context.Context, shared coordination.ResourceShared[*cluster.Cluster], desc backup.Descriptor) (string, coordination.ResourceShared[*cluster.Cluster], error) {
	still, exclusive, ok, err := shared.TryLockExclusive()
	if err != nil {
		return "", coordination.ResourceShared[*cluster.Cluster]{}, err
	}

	var dataDir string
	if ok {
		err = progress.RunBaseBackup("backing up cluster", func(stderr io.Writer) error {
			d, err := backup.RunExclusive(ctx, exclusive, desc, stderr)
			dataDir = d
			return err
		})
		if err != nil {
			exclusive.Release() //nolint:errcheck // best effort; err is what matters
			return "", coordination.ResourceShared[*cluster.Cluster]{}, err
		}
		downgraded, err := exclusive.LockShared()
		return dataDir, downgraded, err
	}

	err = progress.RunBaseBackup("backing up cluster", func(stderr io.Writer) error {
		d, err := backup.RunShared(ctx, still, desc, stderr)
		dataDir = d
		return err
	})
	return dataDir, still, err
}
