package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/trafficpulse/waze-incident-service/internal/accumulator"
	"github.com/trafficpulse/waze-incident-service/internal/adapter/blob"
	"github.com/trafficpulse/waze-incident-service/internal/adapter/httpapi"
	kafkaadapter "github.com/trafficpulse/waze-incident-service/internal/adapter/kafka"
	"github.com/trafficpulse/waze-incident-service/internal/adapter/waze"
	"github.com/trafficpulse/waze-incident-service/internal/config"
	"github.com/trafficpulse/waze-incident-service/internal/observability"
	"github.com/trafficpulse/waze-incident-service/internal/poller"
)

func run(cfg *config.Config) error {
	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Persistence: S3 when a bucket is configured, local files otherwise.
	var persistence blob.Store
	if cfg.S3Bucket != "" {
		s3Store, err := blob.NewS3Store(ctx, cfg.S3Bucket, cfg.S3Prefix, cfg.S3Region, logger)
		if err != nil {
			return err
		}
		persistence = s3Store
		logger.Info("persisting to s3", "bucket", cfg.S3Bucket, "prefix", cfg.S3Prefix)
	} else {
		fileStore, err := blob.NewFileStore(cfg.DataDir, logger)
		if err != nil {
			return err
		}
		persistence = fileStore
		logger.Info("persisting to local files", "dir", cfg.DataDir)
	}

	state, err := persistence.Load(ctx)
	if err != nil {
		return err
	}
	store := accumulator.New(state.Master)
	logger.Info("loaded persisted state", "incidents", store.Size())

	// Announcements are feature-flagged; most deployments run without Kafka.
	var announcer poller.Announcer
	var closer interface{ Close() error }
	if cfg.KafkaEnabled {
		ka := kafkaadapter.NewAnnouncer(cfg, logger)
		announcer = ka
		closer = ka
		logger.Info("kafka announcements enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	}

	fetcher := waze.NewClient(cfg.FeedURL, cfg.FetchTimeout, logger)
	p := poller.New(fetcher, store, persistence, announcer, logger, metrics, cfg.PollInterval, nil)
	srv := httpapi.NewServer(cfg.HTTPAddr, store, p, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("poller error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	// Final flush so incidents merged since the last save survive restart.
	if err := p.Flush(shutdownCtx); err != nil {
		logger.Error("final save failed", "error", err)
	}
	if closer != nil {
		if err := closer.Close(); err != nil {
			logger.Error("kafka announcer close error", "error", err)
		}
	}

	logger.Info("shutdown complete", "incidents", store.Size())
	return nil
}
