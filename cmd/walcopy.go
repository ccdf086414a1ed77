package cmd

import (
	"github.com/spf13/cobra"

	"pgcluster/internal/backup"
)

// walcopyCmd is invoked by PostgreSQL itself as archive_command (see
// desiredArchiveCommand), never by a human, hence Hidden.
var walcopyCmd = &cobra.Command{
	Use:    "walcopy <src> <dst>",
	Short:  "Copy a single WAL segment into the archive (used internally as archive_command)",
	Args:   cobra.ExactArgs(2),
	Hidden: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return backup.WALCopy(args[0], args[1])
	},
}
