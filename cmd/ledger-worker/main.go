package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"ledger/internal/amqp"
	"ledger/internal/cli"
	"ledger/internal/log"
	"ledger/internal/worker"
)

const statsInterval = time.Minute

var (
	errNoBroker = errors.New("AMQP_URL is required for the worker")
	errNoMirror = errors.New("MIRROR_BACKEND is none, nothing to mirror to")
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return err
	}

	logger, err := cli.SetupLogger(stdout, cfg.LogLevel, log.ComponentWorker)
	if err != nil {
		return err
	}

	logger.Info("Starting ledger-worker", log.FieldOperation, log.OpStartup)

	if cfg.AMQPURL == "" {
		return errNoBroker
	}

	mirror, err := cli.InitMirror(ctx, logger, cfg)
	if err != nil {
		return err
	}
	if mirror == nil {
		return errNoMirror
	}

	repo, err := cli.InitSQLite(logger, cfg)
	if err != nil {
		return err
	}
	defer repo.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return fmt.Errorf("init amqp client: %w", err)
	}
	defer amqpClient.Close()

	w := worker.NewMirrorWorker(repo, mirror)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumeExpenseRecorded(gctx, w.HandleExpenseRecorded)
	})
	g.Go(func() error {
		ticker := time.NewTicker(statsInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				mirrored, failed := w.Counts()
				logger.Info("Mirror progress", "mirrored", mirrored, "failed", failed)
			}
		}
	})

	err = g.Wait()
	mirrored, failed := w.Counts()
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped", log.FieldError, err, "mirrored", mirrored, "failed", failed)
		return err
	}

	logger.Info("Worker shutdown complete", log.FieldOperation, log.OpShutdown, "mirrored", mirrored, "failed", failed)
	return nil
}
