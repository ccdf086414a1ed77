package cmd

import (
	"github.com/spf13/cobra"

	"pgcluster/internal/coordination"
)

var startOptionsFlag []string

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the cluster, creating it first if necessary",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		free, err := openCluster()
		if err != nil {
			return err
		}

		st, shared, err := coordination.Startup(cmd.Context(), free, parseOptions(startOptionsFlag))
		if err != nil {
			return err
		}
		defer shared.Release() //nolint:errcheck // best effort on the CLI exit path

		log.Info("start", "datadir", datadirFlag, "state", st.String())
		return nil
	},
}

func init() {
	startCmd.Flags().StringArrayVarP(&startOptionsFlag, "option", "o", nil, "postgresql.conf setting as name=value (repeatable)")
}
