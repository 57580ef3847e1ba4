package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"forumapi/internal/config"
)

var (
	// Global flags
	envFile  string
	dbDriver string
	dbDSN    string
)

var rootCmd = &cobra.Command{
	Use:   "forum",
	Short: "Forum REST API",
	Long: `Forum REST API serving users, categories, posts and comments under /api/v1.

Settings come from FORUM_* environment variables, optionally loaded from an
env file. The database flags override the environment.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Env file to load before reading FORUM_* variables")
	rootCmd.PersistentFlags().StringVar(&dbDriver, "db-driver", "", "Database driver: sqlite3 or pgx (overrides FORUM_DB_DRIVER)")
	rootCmd.PersistentFlags().StringVar(&dbDSN, "db-dsn", "", "Database DSN (overrides FORUM_DB_DSN)")
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return cfg, err
	}
	if dbDriver != "" {
		cfg.DBDriver = dbDriver
	}
	if dbDSN != "" {
		cfg.DBDSN = dbDSN
	}
	return cfg, cfg.Validate()
}
