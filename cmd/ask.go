package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/commishdev/commish/internal/platform"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask the assistant a question about your league",
	Long: `Ask a natural language question about your league.

Examples:
  commish ask "who has Alabama?"
  commish ask "how many points do I have"
  commish ask "how do I assign teams?"
  commish ask "show standings"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.Join(args, " ")
		user, _ := cmd.Flags().GetString("user")

		p, err := buildPipeline()
		if err != nil {
			return err
		}
		defer p.Close()

		response, err := p.orch.Handle(context.Background(), platform.Message{
			Content: question,
			Scope: platform.Scope{
				ServerID: viper.GetString("server"),
				UserID:   user,
			},
		})
		if err != nil {
			return fmt.Errorf("failed to handle question: %w", err)
		}
		if response != "" {
			fmt.Println(response)
		}
		return nil
	},
}

func init() {
	askCmd.Flags().String("user", "cli", "user id to ask as")
	rootCmd.AddCommand(askCmd)
}
