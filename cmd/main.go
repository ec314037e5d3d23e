// Package main provides the CLI entrypoint of the Gfycat link fixer bot.
// It wires subcommands (run, migrate, render), loads configuration, and initializes logging.
package main

import (
	"context"
	"flag"
	"linkfixer/internal/config"
	"linkfixer/pkg/controller"
	"linkfixer/pkg/logger"
	"linkfixer/pkg/storage"
	"linkfixer/pkg/storage/memory"
	"linkfixer/pkg/storage/postgres"
	"log"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// getPostgres creates a PostgreSQL client using configuration values and returns it
// along with a cleanup function to close the connection pool.
func getPostgres(ctx context.Context, cfg *config.Config) (*postgres.PgSQL, func()) {
	pgsql, err := postgres.New(ctx, postgres.Options{
		Username:           cfg.Database.Username,
		Password:           cfg.Database.Password,
		Host:               cfg.Database.Host,
		Port:               cfg.Database.Port,
		Database:           cfg.Database.DatabaseName,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime:    cfg.Database.ConnMaxIdleTime,
		MaxOpenConnections: cfg.Database.MaxOpenConnections,
		MinIdleConnections: cfg.Database.MinIdleConnections,
		SslMode:            cfg.Database.SslMode,
	})
	if err != nil {
		logger.Fatal(ctx, "could not create postgres storage", zap.Error(err))
	}

	return pgsql, func() {
		logger.Info(ctx, "closing postgres client...")
		if err = pgsql.Close(); err != nil {
			logger.Warn(ctx, "could not close postgres connection", zap.Error(err))
		}
	}
}

// getStorage returns the posted-comment ledger: PostgreSQL when the database
// is enabled, memory otherwise. The health checks cover the chosen backend.
func getStorage(ctx context.Context, cfg *config.Config) (storage.Storage, map[string]controller.HealthCheck, func()) {
	if !cfg.Database.Enabled {
		logger.Info(ctx, "database disabled; posted comments are kept in memory")

		return memory.New(), nil, func() {}
	}

	pgsql, closePG := getPostgres(ctx, cfg)

	return pgsql, map[string]controller.HealthCheck{"database": pgsql.Ping}, closePG
}

// main sets up the root Cobra command, loads configuration and logging, and
// registers subcommands before executing the CLI.
func main() {
	rootCmd := &cobra.Command{
		Use:   "linkfixer",
		Short: "Replies to direct Gfycat GIF links with the HTML5 page link",
	}

	// there is no way to access flags before command execution in cobra.
	// configPath here is parsed using the standard flags package.
	// following line is just added to prevent errors when Cobra is parsing the flags.
	rootCmd.PersistentFlags().StringP("config", "c", "config.yml", "Config File Path")

	configPath := flag.String("c", "config.yml", "The config file path")
	flag.Parse()

	log.Println("loading config ...")
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("could not load config file: ", err)
	}

	if err := logger.Setup(logger.Options{
		Environment: cfg.Environment,
		Level:       cfg.Log.Level,
		File:        cfg.Log.File,
		FileLevel:   cfg.Log.FileLevel,
	}); err != nil {
		log.Fatal("could not set up logger: ", err)
	}

	ctx := context.Background()

	defer func() {
		if p := recover(); p != nil {
			logger.Error(ctx, "captured panic, exiting...", zap.Any("panic", p))
			_ = logger.Close()

			panic(p)
		}
	}()

	rootCmd.AddCommand(
		runCommand(cfg),
		migrateCommand(cfg),
		renderCommand(cfg),
	)

	err = rootCmd.Execute()
	_ = logger.Close()
	if err != nil {
		os.Exit(1) //nolint: gocritic
	}
}
