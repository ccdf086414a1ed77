package cmd

import (
	"github.com/spf13/cobra"

	"pgcluster/internal/backup"
	"pgcluster/internal/progress"
	"pgcluster/internal/restore"
)

var (
	restoreBackupDirFlag string
	restoreIntoFlag      string
)

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore the latest base backup into a fresh data directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		desc := backup.Descriptor{Dir: restoreBackupDirFlag}

		var result restore.Result
		err := progress.RunCopy("restoring base backup", func(onProgress func(copied, total int64)) error {
			r, err := restore.Run(cmd.Context(), desc, restoreIntoFlag, strategy(), restore.ProgressFunc(onProgress))
			result = r
			return err
		})
		if err != nil {
			return err
		}

		log.Info("restore", "datadir", result.RestoreDir)
		cmd.Println(result.Guidance)
		return nil
	},
}

func init() {
	restoreCmd.Flags().StringVar(&restoreBackupDirFlag, "backup-dir", "", "backup source directory")
	restoreCmd.Flags().StringVar(&restoreIntoFlag, "into", "", "destination data directory, must not exist or be empty")
	restoreCmd.MarkFlagRequired("backup-dir") //nolint:errcheck // static flag name, cannot fail
	restoreCmd.MarkFlagRequired("into")       //nolint:errcheck // static flag name, cannot fail
}
