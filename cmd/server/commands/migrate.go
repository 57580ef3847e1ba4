package commands

import (
	"github.com/spf13/cobra"

	"forumapi/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or roll back the schema migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrate(cmd, true)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back every migration (drops all forum tables)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrate(cmd, false)
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, up bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := db.Migrate(cfg.DBDriver, cfg.DBDSN, up); err != nil {
		return err
	}
	direction := "applied"
	if !up {
		direction = "rolled back"
	}
	success(cmd.OutOrStdout(), "Migrations %s", direction)
	muted(cmd.OutOrStdout(), "  %s %s", cfg.DBDriver, cfg.DBDSN)
	return nil
}
