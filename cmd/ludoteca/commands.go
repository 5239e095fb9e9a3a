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

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jbweber/homelab/ludoteca/internal/api"
	"github.com/jbweber/homelab/ludoteca/internal/config"
	"github.com/jbweber/homelab/ludoteca/internal/logging"
	"github.com/jbweber/homelab/ludoteca/internal/metrics"
	"github.com/jbweber/homelab/ludoteca/internal/migrations"
	"github.com/jbweber/homelab/ludoteca/internal/repository"
	"github.com/jbweber/homelab/ludoteca/internal/service/videojuegos"
)

const shutdownTimeout = 10 * time.Second

// app carries the configuration resolved before any subcommand runs
type app struct {
	configFile string
	cfg        *config.Config
}

func newRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "ludoteca",
		Short:         "Ludoteca videogame catalogue service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file path (yaml)")
	flags.String("dsn", "", "database DSN (sqlite path or postgres:// URL)")
	flags.String("log-level", "", "log level: debug|info|warn|error")
	flags.String("log-format", "", "log format: text|json")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		v, err := config.NewViper(a.configFile)
		if err != nil {
			return err
		}
		bindings := map[string]string{
			"dsn":        config.KeyDSN,
			"log-level":  config.KeyLogLevel,
			"log-format": config.KeyLogFormat,
			"port":       config.KeyPort,
		}
		if err := bindFlags(v, cmd, bindings); err != nil {
			return err
		}
		cfg, err := config.FromViper(v)
		if err != nil {
			return err
		}
		a.cfg = cfg
		logging.Setup(cfg.Log)
		return nil
	}

	root.AddCommand(newServeCommand(a), newMigrateCommand(a), newCountCommand(a))
	return root
}

// bindFlags binds only flags set on the command line so viper keeps the
// env and file values otherwise
func bindFlags(v *viper.Viper, cmd *cobra.Command, bindings map[string]string) error {
	for name, key := range bindings {
		f := cmd.Flags().Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

func newServeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
	cmd.Flags().String("port", "", "HTTP listen port")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	logger := slog.Default()

	ds, err := a.cfg.InitializeDatabase(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := ds.Close(); err != nil {
			logger.Warn("failed to close database", slog.Any("error", err))
		}
	}()

	opts := []api.Option{api.WithLogger(logger)}
	if a.cfg.Metrics.Enabled {
		opts = append(opts, api.WithMetrics(metrics.NewRecorder()))
	}
	handlers := api.NewAPI(ds, opts...)

	count, err := handlers.Service().Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count videojuegos: %w", err)
	}
	logger.Info("videojuegos in store", slog.Int64("count", count))

	srv := &http.Server{
		Addr:              a.cfg.Addr(),
		Handler:           handlers.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting ludoteca web service", slog.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func newMigrateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations and print the schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := a.cfg.InitializeDatabase(cmd.Context())
			if err != nil {
				return err
			}
			defer ds.Close()

			version, err := migrations.NewMigrator(ds.DB).GetCurrentVersion(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", version)
			return err
		},
	}
}

func newCountCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the number of stored videogames",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := a.cfg.InitializeDatabase(cmd.Context())
			if err != nil {
				return err
			}
			defer ds.Close()

			svc := videojuegos.NewService(repository.NewVideojuegoRepository(ds.DB))
			n, err := svc.Count(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), n)
			return err
		},
	}
}
