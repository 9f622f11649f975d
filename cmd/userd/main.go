// Package main provides the userstack record store server.
// Clients talk to it over REST on /api/users; a WebSocket change feed
// on /api/events announces every write.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/FrancescoXX/userstack/cmd/userd/handlers"
	"github.com/FrancescoXX/userstack/internal/config"
	"github.com/FrancescoXX/userstack/internal/db"
	"github.com/FrancescoXX/userstack/internal/events"
	"github.com/FrancescoXX/userstack/internal/logging"
)

// Version is set at build time.
var Version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "userd",
		Short:         "User record store server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")

	root.AddCommand(newServeCmd(&configPath))
	root.AddCommand(newMigrateCmd(&configPath))
	root.AddCommand(newVersionCmd())

	return root
}

func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the record store server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			level, err := logging.ParseLevel(cfg.LogLevel)
			if err != nil {
				return err
			}
			logging.Init(os.Stdout, level)

			database, err := db.Open(cfg.DataDir)
			if err != nil {
				return err
			}
			defer database.Close()

			migrator := db.NewMigrator(database.DB)
			if err := migrator.Initialize(); err != nil {
				return err
			}
			if err := migrator.Up(); err != nil {
				return err
			}

			repo := db.NewRepository(database.DB)
			defer repo.Close()

			feed := events.NewHub(cfg.AllowedOrigins)
			defer feed.Stop()

			server := &http.Server{
				Addr:    cfg.Addr,
				Handler: handlers.NewRouter(repo, feed, cfg.AllowedOrigins),
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logging.Info("userd listening", map[string]interface{}{"addr": cfg.Addr})
				errCh <- server.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			logging.Info("userd stopped")
			return nil
		},
	}
}

func newMigrateCmd(configPath *string) *cobra.Command {
	var down bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			database, err := db.Open(cfg.DataDir)
			if err != nil {
				return err
			}
			defer database.Close()

			migrator := db.NewMigrator(database.DB)
			if err := migrator.Initialize(); err != nil {
				return err
			}

			if down {
				return migrator.Down()
			}
			if err := migrator.Up(); err != nil {
				return err
			}

			version, err := migrator.CurrentVersion()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", version)
			return nil
		},
	}
	cmd.Flags().BoolVar(&down, "down", false, "roll back the last migration")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the userd version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "userd v%s\n", Version)
		},
	}
}
