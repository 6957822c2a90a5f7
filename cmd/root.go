package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "commish",
	Short: "Natural-language assistant for sports league communities",
	Long: `Commish answers free-form questions about your league: team ownership,
records, standings, attribute points, and how to set everything up.
Questions route through a deterministic pattern matcher and intent
classifier first, so common lookups never touch a language model.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.commish.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug output (shows routing + internal diagnostics)")
	rootCmd.PersistentFlags().String("server", "default", "league/server id to operate on")
	rootCmd.PersistentFlags().String("db", "", "SQLite database path (default is $HOME/.commish.db)")

	// TODO: add error return here
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("server", rootCmd.PersistentFlags().Lookup("server"))
	viper.BindPFlag("store.path", rootCmd.PersistentFlags().Lookup("db"))

	viper.SetDefault("cache.max_size", 500)
	viper.SetDefault("cache.ttl_minutes", 60)
	viper.SetDefault("ai.timeout_seconds", 30)
	viper.SetDefault("docs.commands", "docs/command_knowledge_base.md")
	viper.SetDefault("docs.setup_guide", "docs/setup_guide.md")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// Secrets (API keys) live in a local env file, never in the YAML config.
	_ = godotenv.Load("secrets.env")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			os.Exit(1)
		}

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".commish")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("debug") {
			fmt.Println("Using config file:", viper.ConfigFileUsed())
		}
	}
}

func storePath() string {
	if p := viper.GetString("store.path"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".commish.db"
	}
	return filepath.Join(home, ".commish.db")
}

func usagePath() string {
	if p := viper.GetString("usage.path"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".commish_usage.json"
	}
	return filepath.Join(home, ".commish_usage.json")
}
