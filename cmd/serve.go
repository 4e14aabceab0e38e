package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/plank/internal/app"
	"github.com/thenoetrevino/plank/internal/config"
	"github.com/thenoetrevino/plank/internal/database"
	"github.com/thenoetrevino/plank/internal/events"
	"github.com/thenoetrevino/plank/internal/httpapi"
	"github.com/thenoetrevino/plank/internal/identity"
	"github.com/thenoetrevino/plank/internal/logging"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func runServe() error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := logging.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer cancel()

	db, err := database.InitDB(ctx, cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.SeedDefaultStatuses(ctx, db); err != nil {
		return err
	}

	bus := events.NewBus()
	defer bus.Close()

	directory := identity.NewStaticDirectory(cfg.Users)
	application := app.New(db, directory, bus)

	api := httpapi.NewServer(
		application.Projects,
		application.Epics,
		application.WorkItems,
		application.Statuses,
		application.Boards,
		identity.ContextResolver{},
		bus,
	)

	server := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("plank server starting", "addr", cfg.Server.ListenAddr, "pid", os.Getpid())
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("plank server shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return server.Shutdown(shutdownCtx)
}
