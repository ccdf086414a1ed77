package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"pgcluster/internal/cluster"
	"pgcluster/internal/coordination"
)

var (
	execDatabaseFlag string
	execDestroyFlag  bool
)

var execCmd = &cobra.Command{
	Use:                "exec -- command [args...]",
	Short:              "Run a command against the cluster, starting it first if necessary",
	Args:               cobra.MinimumNArgs(1),
	DisableFlagParsing: false,
	RunE: func(cmd *cobra.Command, args []string) error {
		free, err := openCluster()
		if err != nil {
			return err
		}

		runner := coordination.RunAndStop[*cluster.Cluster, int]
		if execDestroyFlag {
			runner = coordination.RunAndDestroy[*cluster.Cluster, int]
		}

		code, err := runner(cmd.Context(), log, free, nil,
			func(ctx context.Context, shared coordination.ResourceShared[*cluster.Cluster]) (int, error) {
				runErr := shared.Subject.Exec(ctx, execDatabaseFlag, args[0], args[1:]...).Run()
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
	execCmd.Flags().StringVar(&execDatabaseFlag, "database", "postgres", "database to connect the command's environment to")
	execCmd.Flags().BoolVar(&execDestroyFlag, "destroy", false, "destroy the cluster afterward instead of just stopping it")
}
