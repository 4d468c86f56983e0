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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/iho/creditbook/internal/infrastructure/config"
	"github.com/iho/creditbook/internal/infrastructure/logger"
	"github.com/iho/creditbook/internal/infrastructure/metrics"
	"github.com/iho/creditbook/internal/infrastructure/redis"
	"github.com/iho/creditbook/internal/jobs"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	l := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	logger.SetGlobal(l)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, l); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("worker failed")
	}

	log.Info().Msg("worker stopped")
}

func run(ctx context.Context, cfg *config.Config, l zerolog.Logger) error {
	connOpt, err := redis.QueueConnOpt(cfg.RedisURL)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	m := metrics.New(registry)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   connOpt,
		Logger:      l,
		Concurrency: cfg.WorkerConcurrency,
		Notify:      jobs.NewNotifyJob(newSender(cfg, l), cfg.ShopName, l, m),
	})
	if err != nil {
		return err
	}

	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.WorkerMetricsPort),
		Handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return worker.Run(gctx) })
	g.Go(func() error {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return metricsServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// newSender posts to the SMS gateway when one is configured and only logs
// messages otherwise.
func newSender(cfg *config.Config, l zerolog.Logger) jobs.SMSSender {
	if cfg.SMSGatewayURL == "" {
		l.Warn().Msg("SMS_GATEWAY_URL not set; notices will be logged, not sent")
		return jobs.NewLogSender(l)
	}
	return jobs.NewGatewaySender(cfg.SMSGatewayURL, cfg.SMSAPIKey)
}
