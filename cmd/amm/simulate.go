package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ammPool/internal/config"
	"ammPool/internal/indexer"
	"ammPool/internal/metrics"
	"ammPool/internal/model"
	"ammPool/internal/sim"
	"ammPool/internal/storage"
	"ammPool/internal/storage/postgres"
)

func runSimulate(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadSimulate(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Script == "" {
		return fmt.Errorf("script path is required")
	}

	poolAddr, err := indexer.ParseAddress(cfg.Pool)
	if err != nil {
		return fmt.Errorf("pool: %w", err)
	}
	tokenA, err := indexer.ParseAddress(cfg.TokenA)
	if err != nil {
		return fmt.Errorf("token-a: %w", err)
	}
	tokenB, err := indexer.ParseAddress(cfg.TokenB)
	if err != nil {
		return fmt.Errorf("token-b: %w", err)
	}

	startTime, err := config.ParseTimestamp(cfg.StartTime)
	if err != nil {
		return fmt.Errorf("parse start-time: %w", err)
	}
	if startTime == 0 {
		startTime = uint64(time.Now().Unix())
		if cfg.CheckpointEnabled {
			logger.Warn("start-time not set; resumed runs will stamp different timestamps")
		}
	}

	ops, err := sim.LoadScript(cfg.Script)
	if err != nil {
		return fmt.Errorf("load script: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logsSink := storage.NewJsonlStorage(cfg.LogsOut)
	eventsSink := storage.NewJsonlStorage(cfg.EventsOut)
	errorsSink := storage.NewJsonlStorage(cfg.ErrorsOut)

	// outputs are appended to only when a checkpoint is resumed
	_, resuming, err := indexer.NewCheckpointStore(cfg.Checkpoint, cfg.CheckpointEnabled).Load()
	if err != nil {
		return err
	}
	if !resuming {
		for _, sink := range []*storage.JsonlStorage{logsSink, eventsSink, errorsSink} {
			if err := sink.Truncate(); err != nil {
				return err
			}
		}
	}

	sinks := sim.Sinks{Logs: logsSink, Events: eventsSink, Errors: errorsSink}
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}
		sinks.State = store
	}

	registry := prometheus.NewRegistry()
	poolMetrics := metrics.NewPoolMetrics(registry)

	runner, err := sim.NewRunner(sim.Config{
		ChainID:     cfg.ChainID,
		PoolAddress: poolAddr,
		TokenA:      tokenA,
		TokenB:      tokenB,
		TokenAMeta: model.TokenMeta{
			Symbol:   cfg.TokenASymbol,
			Name:     cfg.TokenASymbol,
			Decimals: cfg.TokenADecimals,
		},
		TokenBMeta: model.TokenMeta{
			Symbol:   cfg.TokenBSymbol,
			Name:     cfg.TokenBSymbol,
			Decimals: cfg.TokenBDecimals,
		},
		StartTime:         startTime,
		BlockInterval:     cfg.BlockInterval,
		BatchSize:         cfg.BatchSize,
		CheckpointPath:    cfg.Checkpoint,
		CheckpointEnabled: cfg.CheckpointEnabled,
		StopOnError:       cfg.StopOnError,
		MaxRetries:        cfg.MaxRetries,
		RetryBackoff:      cfg.RetryBackoff,
	}, sinks, poolMetrics, logger)
	if err != nil {
		return err
	}

	logger.Info("simulate start",
		zap.String("script", cfg.Script),
		zap.Int("operations", len(ops)),
		zap.String("pool", poolAddr.Hex()),
		zap.String("token_a", tokenA.Hex()),
		zap.String("token_b", tokenB.Hex()),
		zap.Uint64("start_time", startTime),
		zap.Bool("resuming", resuming),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
	)

	summary, runErr := runner.Run(ctx, ops)

	if cfg.MetricsOut != "" {
		if err := prometheus.WriteToTextfile(cfg.MetricsOut, registry); err != nil {
			logger.Warn("write metrics textfile", zap.String("path", cfg.MetricsOut), zap.Error(err))
		}
	}

	logger.Info("simulate complete",
		zap.Uint64("applied", summary.Applied),
		zap.Uint64("rejected", summary.Rejected),
		zap.Uint64("replayed", summary.Replayed),
		zap.Uint64("events", summary.Events),
		zap.String("reserve_a", summary.State.ReserveA),
		zap.String("reserve_b", summary.State.ReserveB),
		zap.String("k_last", summary.State.KLast),
		zap.String("total_supply", summary.State.TotalSupply),
		zap.Error(runErr),
	)

	return runErr
}
