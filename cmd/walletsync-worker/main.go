package main

import (
	"context"
	"os"
	"time"

	"walletsync/internal/amqp"
	"walletsync/internal/api"
	"walletsync/internal/cache"
	"walletsync/internal/cli"
	"walletsync/internal/log"
	"walletsync/internal/services"
)

// walletsync-worker is the reconciliation daemon: it replays recorded
// offline mutations against the backend on a poll interval, and sooner
// when a queue notification arrives.
func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger().WithComponent(log.ComponentWorker)

	logger.Info("Starting walletsync-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	store, closeStore := cli.OpenStore(logger, cfg)
	defer closeStore()

	client, err := api.NewHTTPClient(cfg.APIBaseURL, cfg.APITimeout)
	if err != nil {
		logger.Error("Failed to initialize API client", "error", err, "base_url", cfg.APIBaseURL)
		os.Exit(1)
	}

	replayer := services.NewReplayer(cache.New(store), client, services.ReplayerConfig{
		PollInterval: cfg.ReplayInterval,
		BatchSize:    cfg.ReplayBatchSize,
	})

	// AMQP is optional; without it the replayer runs on the timer alone.
	var bus *amqp.Client
	if cfg.AMQPURL != "" {
		bus, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer bus.Close()
		logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	ctx := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := replayer.Stop(shutdownCtx); err != nil {
			logger.Error("Replayer shutdown error", "error", err)
		}
	})

	if err := replayer.Start(ctx); err != nil {
		logger.Error("Failed to start replayer", "error", err)
		os.Exit(1)
	}

	if bus != nil {
		go func() {
			err := bus.ConsumeMutationRecorded(ctx, func(msg *amqp.MutationRecordedMessage) error {
				replayer.Kick()
				return nil
			})
			if err != nil && ctx.Err() == nil {
				logger.Error("AMQP consumer stopped", "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("Worker stopped gracefully")
}
