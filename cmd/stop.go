package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"pgcluster/internal/coordination"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the cluster if no other process is holding it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		free, err := openCluster()
		if err != nil {
			return err
		}

		shared, err := free.LockShared()
		if err != nil {
			free.Close() //nolint:errcheck // best effort; err below is what matters
			return err
		}

		outcome, err := coordination.Shutdown(cmd.Context(), shared, coordination.ModeStop)
		if err != nil {
			return err
		}
		if outcome.StillRunning {
			fmt.Println("cluster left running: another process is still holding it")
			stillFree, err := outcome.Shared.Release()
			if err != nil {
				return err
			}
			return stillFree.Close()
		}

		log.Info("stop", "datadir", datadirFlag, "state", outcome.State.String())
		return outcome.Free.Close()
	},
}
