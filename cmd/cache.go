package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the query cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show query cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := buildPipeline()
		if err != nil {
			return err
		}
		defer p.Close()

		stats := p.cache.Stats()
		fmt.Printf("Entries:   %d / %d\n", stats.Size, stats.MaxSize)
		fmt.Printf("Hits:      %d\n", stats.Hits)
		fmt.Printf("Misses:    %d\n", stats.Misses)
		fmt.Printf("Requests:  %d\n", stats.TotalRequests)
		fmt.Printf("Hit rate:  %.1f%%\n", stats.HitRate)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	rootCmd.AddCommand(cacheCmd)
}
