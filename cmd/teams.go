package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/commishdev/commish/internal/query"
	"github.com/commishdev/commish/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var teamsCmd = &cobra.Command{
	Use:   "teams",
	Short: "Manage team assignments",
}

var teamsAssignCmd = &cobra.Command{
	Use:   "assign [team] [user]",
	Short: "Assign a team to a user (empty user makes it CPU)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		team := query.StandardizeTeam(args[0])
		user := ""
		if len(args) > 1 {
			user = args[1]
		}

		st, err := store.NewSQLiteStore(storePath())
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer st.Close()

		if err := st.AssignTeam(context.Background(), viper.GetString("server"), team, user); err != nil {
			return fmt.Errorf("failed to assign team: %w", err)
		}
		if user == "" {
			fmt.Printf("%s is now CPU-controlled.\n", team)
		} else {
			fmt.Printf("%s assigned to %s.\n", team, user)
		}
		return nil
	},
}

var teamsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all team assignments",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.NewSQLiteStore(storePath())
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer st.Close()

		assignments, err := st.ListAssignments(context.Background(), viper.GetString("server"))
		if err != nil {
			return fmt.Errorf("failed to list assignments: %w", err)
		}
		if len(assignments) == 0 {
			fmt.Println("No teams assigned yet.")
			return nil
		}
		for _, a := range assignments {
			owner := a.UserID
			if owner == "" {
				owner = "CPU"
			}
			fmt.Printf("%s: %s\n", a.TeamName, owner)
		}
		return nil
	},
}

var teamsWhoHasCmd = &cobra.Command{
	Use:   "who-has [team]",
	Short: "Look up a team's owner",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		team := strings.Join(args, " ")

		st, err := store.NewSQLiteStore(storePath())
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer st.Close()

		lookup, err := st.LookupTeam(context.Background(), viper.GetString("server"), query.TeamKey(team))
		if err != nil {
			return fmt.Errorf("failed to look up team: %w", err)
		}
		switch {
		case !lookup.Found:
			fmt.Printf("%s is not in the database.\n", query.StandardizeTeam(team))
		case !lookup.Assigned:
			fmt.Printf("%s is not assigned to anyone (CPU).\n", lookup.TeamName)
		default:
			fmt.Printf("%s is assigned to %s.\n", lookup.TeamName, lookup.UserID)
		}
		return nil
	},
}

func init() {
	teamsCmd.AddCommand(teamsAssignCmd)
	teamsCmd.AddCommand(teamsListCmd)
	teamsCmd.AddCommand(teamsWhoHasCmd)
	rootCmd.AddCommand(teamsCmd)
}
