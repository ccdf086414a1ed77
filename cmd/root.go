package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"pgcluster/internal/config"
	"pgcluster/internal/logger"
	"pgcluster/internal/runtime"
)

var (
	cfg *config.Config
	log logger.Logger

	datadirFlag string
)

// rootCmd is the base command when pgcluster is called without any
// subcommand.
var rootCmd = &cobra.Command{
	Use:   "pgcluster",
	Short: "Run ephemeral, on-disk PostgreSQL clusters from userland",
	Long: `pgcluster creates, starts, stops, and destroys PostgreSQL data
directories owned by the invoking user, coordinating any number of
concurrent processes that share one through advisory file locks.

For help with a specific command, use: pgcluster [command] --help`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cmd.Flags().Visit(func(f *pflag.Flag) {
			log.Debug("flag set explicitly", "name", f.Name, "value", f.Value.String())
		})
	},
}

// Execute adds all subcommands to the root command and runs it.
func Execute(ctx context.Context, c *config.Config, l logger.Logger) error {
	cfg = c
	log = l

	rootCmd.PersistentFlags().StringVar(&datadirFlag, "datadir", cfg.DataDir, "cluster data directory")
	rootCmd.PersistentFlags().StringVar(&cfg.RuntimePath, "runtime-path", cfg.RuntimePath, "PostgreSQL bin directory to try before the rest of discovery")
	rootCmd.PersistentFlags().StringVar(&cfg.BinPath, "bin-path", cfg.BinPath, "extra PostgreSQL bin directory to probe during discovery")

	return rootCmd.ExecuteContext(ctx)
}

// strategy resolves the runtime discovery chain from the flags/config in
// effect for the current invocation.
func strategy() runtime.Strategy {
	chain := runtime.DefaultChain(cfg.RuntimePath)
	if cfg.BinPath != "" {
		chain = chain.Prepend(runtime.FromBinDir(cfg.BinPath))
	}
	return chain
}

func init() {
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(destroyCmd)
	rootCmd.AddCommand(execCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(runtimesCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(walcopyCmd)
}
