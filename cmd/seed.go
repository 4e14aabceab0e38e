package cmd

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/plank/internal/config"
	"github.com/thenoetrevino/plank/internal/database"
	"github.com/thenoetrevino/plank/internal/logging"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the database and seed the default statuses",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSeed(cmd.Context())
	},
}

func runSeed(ctx context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := logging.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		return err
	}

	db, err := database.InitDB(ctx, cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.SeedDefaultStatuses(ctx, db); err != nil {
		return err
	}

	slog.Info("database seeded", "path", cfg.Database.Path)
	return nil
}
