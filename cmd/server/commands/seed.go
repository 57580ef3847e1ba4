package commands

import (
	"github.com/spf13/cobra"

	"forumapi/internal/db"
	"forumapi/internal/repository/sqlstore"
	"forumapi/internal/seed"
)

var (
	// Seed flags
	seedCount int
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the database with sample content",
	Long: `Create sample users, categories, posts and comments.

Examples:
  forum seed
  forum seed --count 20`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSeed(cmd)
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().IntVarP(&seedCount, "count", "n", seed.DefaultCount, "Rows to create per resource")
}

func runSeed(cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	database, err := db.Open(cmd.Context(), cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return err
	}
	defer database.Close()

	res, err := seed.Seed(cmd.Context(), sqlstore.New(database), seedCount)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	success(out, "Seeded %d users, %d categories, %d posts, %d comments",
		len(res.Users), len(res.Categories), len(res.Posts), len(res.Comments))
	for _, u := range res.Users {
		muted(out, "  %s  api_key=%s", u.Email, u.APIKey)
	}
	return nil
}
