package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"cpmm/internal/config"
	"cpmm/internal/engine"
	"cpmm/internal/storage"
	"cpmm/internal/storage/postgres"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "cpmm",
		Short:        "Constant-product AMM pool engine",
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file path")
	flags.String("state-dir", "./data/pools", "directory for pool snapshots")
	flags.String("journal", "./data/journal.jsonl", "operation journal JSONL path")
	flags.String("pg-dsn", "", "Postgres DSN; replaces the file snapshot store and journal")
	flags.Int("max-retries", 3, "maximum retry attempts for storage I/O")
	flags.Duration("retry-backoff", 200*time.Millisecond, "initial retry backoff")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.Uint("base-transfer-fee-bps", 0, "base mint transfer fee in basis points")
	flags.Uint64("base-transfer-fee-max", 0, "base mint transfer fee cap in raw units (uncapped when unset)")
	flags.Uint("quote-transfer-fee-bps", 0, "quote mint transfer fee in basis points")
	flags.Uint64("quote-transfer-fee-max", 0, "quote mint transfer fee cap in raw units (uncapped when unset)")

	root.AddCommand(
		newLaunchCmd(),
		newProvideCmd(),
		newWithdrawCmd(),
		newSwapCmd(),
		newQuoteCmd(),
		newRedeemFeesCmd(),
		newShowCmd(),
		newHistoryCmd(),
	)
	return root
}

// runWithEngine loads config, opens storage and hands a ready engine to fn.
func runWithEngine(cmd *cobra.Command, fn func(ctx context.Context, eng *engine.Engine) (interface{}, error)) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		snapshots storage.SnapshotStore
		journal   storage.Journal
	)
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		if err := store.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		snapshots, journal = store, store
	} else {
		snapshots = &storage.FileSnapshotStore{Dir: cfg.StateDir}
		journal = storage.NewJsonlJournal(cfg.Journal)
	}

	eng, err := engine.New(engine.Config{
		MaxRetries:       cfg.MaxRetries,
		RetryBackoff:     cfg.RetryBackoff,
		BaseTransferFee:  cfg.BaseTransferFee,
		QuoteTransferFee: cfg.QuoteTransferFee,
	}, snapshots, journal, logger)
	if err != nil {
		return err
	}

	logger.Debug("engine ready",
		zap.String("command", cmd.Name()),
		zap.Bool("postgres", cfg.PGDSN != ""),
		zap.String("state_dir", cfg.StateDir),
		zap.String("journal", cfg.Journal),
	)

	out, err := fn(ctx, eng)
	if err != nil {
		logger.Error("operation failed", zap.String("command", cmd.Name()), zap.Error(err))
		return err
	}
	return printJSON(cmd, out)
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
