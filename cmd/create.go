package cmd

import (
	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create the cluster's data directory if it doesn't already exist",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		free, err := openCluster()
		if err != nil {
			return err
		}

		exclusive, err := free.LockExclusive()
		if err != nil {
			free.Close() //nolint:errcheck // best effort; err above is what matters
			return err
		}

		st, err := exclusive.Subject.Create(cmd.Context())
		if err != nil {
			return err
		}

		freed, err := exclusive.Release()
		if err != nil {
			return err
		}
		log.Info("create", "datadir", datadirFlag, "state", st.String())
		return freed.Close()
	},
}
