package main

import (
	"context"
	"errors"
	"linkfixer/internal/api"
	"linkfixer/internal/config"
	"linkfixer/internal/feed"
	"linkfixer/internal/fixer"
	"linkfixer/pkg/logger"
	"linkfixer/pkg/metrics"
	"linkfixer/pkg/reddit/redditapi"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func setupServer(ctx context.Context, cfg *config.Config, deps api.Deps) func(ctx context.Context) {
	server := api.NewServer(deps, api.NewOptions(cfg))

	go func() {
		logger.Info(ctx, "starting webserver...", zap.String("addr", cfg.HTTP.Addr))
		if err := server.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error(ctx, "could not start webserver", zap.Error(err))
			}
		}
	}()

	return func(ctx context.Context) {
		logger.Info(ctx, "stopping webserver...")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(ctx, "could not stop webserver", zap.Error(err))
		}
	}
}

func setupMetrics(ctx context.Context) (*prometheus.Registry, *metrics.Metrics, func(ctx context.Context)) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	mp, err := metrics.NewPrometheusProvider(reg)
	if err != nil {
		logger.Fatal(ctx, "could not create meter provider", zap.Error(err))
	}
	m, err := metrics.New(mp)
	if err != nil {
		logger.Fatal(ctx, "could not create metrics", zap.Error(err))
	}

	return reg, m, func(ctx context.Context) {
		if err := mp.Shutdown(ctx); err != nil {
			logger.Warn(ctx, "could not stop meter provider", zap.Error(err))
		}
	}
}

func runCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Streams new submissions and replies to direct Gfycat GIF links",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			reg, m, stopMetrics := setupMetrics(ctx)

			strg, healthChecks, closeStrg := getStorage(ctx, cfg)
			defer closeStrg()

			client := redditapi.New(&http.Client{Timeout: cfg.Reddit.Timeout}, redditapi.Options{
				Username:     cfg.Reddit.Username,
				Password:     cfg.Reddit.Password,
				ClientID:     cfg.Reddit.ClientID,
				ClientSecret: cfg.Reddit.ClientSecret,
				UserAgent:    cfg.Reddit.UserAgent,
				AuthURL:      cfg.Reddit.AuthURL,
				APIURL:       cfg.Reddit.APIURL,
			})

			self, err := client.Me(ctx)
			if err != nil {
				logger.Fatal(ctx, "could not log in to Reddit", zap.Error(err))
			}
			logger.Info(ctx, "logged in to Reddit", zap.String("account", self.Name), zap.String("id", self.ID))

			stopWebserver := setupServer(ctx, cfg, api.Deps{Gatherer: reg, HealthChecks: healthChecks})

			poster := fixer.NewPoster(client, fixer.NewTemplate(cfg.Bot.Owner), cfg.Bot.RetryTime, nil, m)
			dispatcher := fixer.NewDispatcher(fixer.NewOptions(cfg), client, strg, poster, self, m)
			stream := feed.New(client, feed.NewOptions(cfg)).Stream(ctx)

			// returns once interrupted and in-flight units are drained
			if err := dispatcher.Run(ctx, stream); err != nil {
				logger.Error(ctx, "dispatcher stopped with error", zap.Error(err))
			}

			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.GracefulShutdownTimeout)
			defer cancel()

			stopWebserver(shutdownCtx)
			stopMetrics(shutdownCtx)
		},
	}

	return cmd
}
