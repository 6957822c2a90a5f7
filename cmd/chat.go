package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/commishdev/commish/internal/platform"
	"github.com/commishdev/commish/internal/usage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive session with the assistant",
	Long: `Start an interactive chat session. Each line routes through the full
query pipeline. Type !usage for a cost report, !cache for cache
statistics, and exit or quit to leave.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")

		p, err := buildPipeline()
		if err != nil {
			return err
		}
		defer p.Close()

		scope := platform.Scope{
			ServerID: viper.GetString("server"),
			UserID:   user,
		}

		fmt.Println("commish chat. Type 'exit' to quit.")
		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("> ")
			if !scanner.Scan() {
				break
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if line == "exit" || line == "quit" {
				break
			}
			if line == "!usage" {
				formatter := usage.NewFormatter("text")
				report, err := formatter.FormatSummary(p.ledger.Summarize())
				if err != nil {
					fmt.Fprintf(os.Stderr, "Error: %v\n", err)
					continue
				}
				fmt.Print(report)
				continue
			}
			if line == "!cache" {
				stats := p.cache.Stats()
				fmt.Printf("Cache: %d/%d entries, %d hits, %d misses (%.1f%% hit rate)\n",
					stats.Size, stats.MaxSize, stats.Hits, stats.Misses, stats.HitRate)
				continue
			}

			response, err := p.orch.Handle(context.Background(), platform.Message{
				Content: line,
				Scope:   scope,
			})
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				continue
			}
			if response != "" {
				fmt.Println(response)
			}
		}
		return scanner.Err()
	},
}

func init() {
	chatCmd.Flags().String("user", "cli", "user id to chat as")
	rootCmd.AddCommand(chatCmd)
}
