package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"pgcluster/internal/runtime"
)

var runtimesCmd = &cobra.Command{
	Use:   "runtimes",
	Short: "List discovered PostgreSQL runtimes",
	Long: `List every PostgreSQL installation found by the runtime discovery
chain. The line beginning with "=>" is the one that would be used when
creating a new cluster.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		chain := strategy()

		runtimes, err := chain.Runtimes(cmd.Context())
		if err != nil {
			return err
		}
		fallback, fallbackErr := chain.Fallback(cmd.Context())

		sort.Slice(runtimes, func(i, j int) bool {
			return runtimes[i].Version.Less(runtimes[j].Version)
		})

		for _, r := range runtimes {
			marker := "  "
			if fallbackErr == nil && r.Equal(fallback) {
				marker = "=>"
			}
			fmt.Printf("%s %-10s %s\n", marker, r.Version.String(), r.BinDir)
		}
		return nil
	},
}
