package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"pgcluster/internal/cluster"
	"pgcluster/internal/coordination"
)

var (
	shellDatabaseFlag string
	shellPathFlag     string
	shellDestroyFlag  bool
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive shell against the cluster, starting it first if necessary",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		free, err := openCluster()
		if err != nil {
			return err
		}

		runner := coordination.RunAndStop[*cluster.Cluster, int]
		if shellDestroyFlag {
			runner = coordination.RunAndDestroy[*cluster.Cluster, int]
		}

		code, err := runner(cmd.Context(), log, free, nil,
			func(ctx context.Context, shared coordination.ResourceShared[*cluster.Cluster]) (int, error) {
				runErr := shared.Subject.Shell(ctx, shellDatabaseFlag, shellPathFlag)
				return exitCode(runErr)
			})
		if err != nil {
			return err
		}
		if code != 0 {
			os.Exit(code)
		}
		return nil
	},
}

func init() {
	shellCmd.Flags().StringVar(&shellDatabaseFlag, "database", "postgres", "database to connect the shell's environment to")
	shellCmd.Flags().StringVar(&shellPathFlag, "shell", "", "shell to run instead of $SHELL")
	shellCmd.Flags().BoolVar(&shellDestroyFlag, "destroy", false, "destroy the cluster afterward instead of just stopping it")
}
