package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"

	"github.com/loganlanou/colink-venture/internal/backend/postgres"
	"github.com/loganlanou/colink-venture/internal/jobs"
	"github.com/loganlanou/colink-venture/internal/middleware"
	"github.com/loganlanou/colink-venture/service"
	"github.com/loganlanou/colink-venture/storage"
)

const shutdownTimeout = 10 * time.Second

var rootCmd = &cobra.Command{
	Use:   "colink",
	Short: "CoLink Venture session shell",
	Long: `colink serves the CoLink Venture pages and session actions. Each browser
tab keeps its own session in tab storage while data comes from the CoLink
backend API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(cmd.ErrOrStderr())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply tab storage migrations and print the schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := service.LoadConfig()
		if err != nil {
			return err
		}

		db, err := storage.New(config.DBPath)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close()

		version, err := db.Version()
		if err != nil {
			return fmt.Errorf("failed to read schema version: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "tab storage at version %d\n", version)
		return nil
	},
}

var pruneTabsCmd = &cobra.Command{
	Use:   "prune-tabs",
	Short: "Delete tab storage idle for longer than TAB_IDLE_TTL",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := service.LoadConfig()
		if err != nil {
			return err
		}

		db, err := storage.New(config.DBPath)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close()

		removed := jobs.NewTabPruner(db, config.Session.TabIdleTTL).RunOnce(cmd.Context())
		fmt.Fprintf(cmd.OutOrStdout(), "pruned %d idle tabs\n", removed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, pruneTabsCmd)
}

func main() {
	// slog is configured in slog.go via init()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func serve(ctx context.Context) error {
	config, err := service.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := storage.New(config.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	var opts []service.Option
	if config.Data.Backend == service.DataBackendPostgres {
		repo, err := postgres.Open(ctx, config.Data.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
		defer repo.Close()
		opts = append(opts, service.WithListings(repo))
	}

	svc, err := service.New(db, config, opts...)
	if err != nil {
		return err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.SecurityHeaders())

	svc.RegisterRoutes(e)

	pruner := jobs.NewTabPruner(db, config.Session.TabIdleTTL)
	pruner.Start(ctx)
	defer pruner.Stop()

	addr := fmt.Sprintf(":%s", config.Port)
	slog.Info("CoLink Venture starting",
		"url", config.BaseURL,
		"port", config.Port,
		"environment", config.Environment,
		"database", config.DBPath,
		"api", config.API.BaseURL,
		"backend", config.Data.Backend,
	)

	errCh := make(chan error, 1)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
