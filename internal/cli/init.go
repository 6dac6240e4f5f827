// Package cli provides common initialization shared by cmd/ledger and
// cmd/ledger-worker.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/joho/godotenv"

	"ledger/internal/amqp"
	"ledger/internal/config"
	"ledger/internal/log"
	"ledger/internal/services"
	"ledger/internal/sheets"
	gsheet "ledger/internal/sheets/google"
	"ledger/internal/sheets/memory"
	"ledger/internal/sheets/xlsx"
	"ledger/internal/storage"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetupLogger builds the process logger, writing to w, and installs it as
// the slog default.
func SetupLogger(w io.Writer, level, component string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	logger := log.New(log.Config{Level: lvl, Component: component, Output: w})
	log.SetDefault(logger)
	return logger, nil
}

// InitSQLite opens the ledger database described by cfg.
func InitSQLite(logger *log.Logger, cfg *config.Config) (*storage.SQLiteRepository, error) {
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath, storage.WithMaxOpenConns(cfg.MaxOpenConns))
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", log.FieldError, err, log.FieldDBPath, cfg.SQLiteDBPath)
		return nil, fmt.Errorf("init sqlite: %w", err)
	}
	return repo, nil
}

// InitPublisher connects to AMQP when configured. A broker that cannot be
// reached is logged and the ledger keeps working without events.
func InitPublisher(logger *log.Logger, cfg *config.Config) services.ExpensePublisher {
	if cfg.AMQPURL == "" {
		logger.Debug("AMQP disabled - expenses will not be announced")
		return nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Warn("Failed to initialize AMQP client, continuing without events", log.FieldError, err)
		return nil
	}
	logger.Info("Initialized AMQP client", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	return client
}

// InitMirror builds the mirror selected by cfg. It returns nil for "none".
func InitMirror(ctx context.Context, logger *log.Logger, cfg *config.Config) (sheets.ExpenseMirror, error) {
	switch cfg.MirrorBackend {
	case config.MirrorSheets:
		cli, err := gsheet.New(ctx, gsheet.Options{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
			CredentialsFile: cfg.GoogleServiceAccountFile,
		})
		if err != nil {
			return nil, fmt.Errorf("init google sheets mirror: %w", err)
		}
		return cli, nil
	case config.MirrorXLSX:
		wb, err := xlsx.New(cfg.XLSXPath, cfg.GoogleSheetName)
		if err != nil {
			return nil, fmt.Errorf("init xlsx mirror: %w", err)
		}
		logger.Info("Mirroring expenses to workbook", "path", cfg.XLSXPath)
		return wb, nil
	case config.MirrorMemory:
		logger.Warn("Using in-memory mirror, mirrored rows are lost on exit")
		return memory.New(), nil
	case config.MirrorNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported mirror backend: %s", cfg.MirrorBackend)
	}
}
