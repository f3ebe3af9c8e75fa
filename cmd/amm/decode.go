package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ammPool/internal/chain"
	"ammPool/internal/config"
	"ammPool/internal/evmlog"
	"ammPool/internal/indexer"
	"ammPool/internal/model"
	"ammPool/internal/storage"
)

func runDecode(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadDecode(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.In == "" {
		return fmt.Errorf("input path is required")
	}
	if cfg.Out == "" {
		return fmt.Errorf("output path is required")
	}
	if cfg.Errors == "" {
		return fmt.Errorf("errors path is required")
	}

	poolCache := evmlog.NewPoolMetaCache()
	seeded := cfg.Pool != ""
	if seeded {
		if err := seedPoolMeta(poolCache, cfg); err != nil {
			return err
		}
	}
	if cfg.RPCURL == "" && (!seeded || cfg.IncludeReserves) {
		return fmt.Errorf("rpc url is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var chainClient *chain.Client
	if cfg.RPCURL != "" {
		chainClient, err = chain.NewClient(ctx, cfg.RPCURL)
		if err != nil {
			return fmt.Errorf("connect rpc: %w", err)
		}
		defer chainClient.Close()
	}

	decoder, err := evmlog.NewPoolDecoder(evmlog.DecoderConfig{Topic0Map: cfg.Topic0Map})
	if err != nil {
		return err
	}

	decodeCtx := evmlog.DecodeContext{
		Context:         ctx,
		Chain:           chainClient,
		PoolMetaCache:   poolCache,
		TokenMetaCache:  evmlog.NewTokenMetaCache(),
		Logger:          logger,
		IncludeReserves: cfg.IncludeReserves,
	}

	outWriter, err := storage.NewJSONLWriter(cfg.Out, false)
	if err != nil {
		return err
	}
	defer outWriter.Close()

	errWriter, err := storage.NewJSONLWriter(cfg.Errors, false)
	if err != nil {
		return err
	}
	defer errWriter.Close()

	logger.Info("decode start",
		zap.String("rpc", cfg.RPCURL),
		zap.String("in", cfg.In),
		zap.String("out", cfg.Out),
		zap.String("errors", cfg.Errors),
		zap.Bool("include_reserves", cfg.IncludeReserves),
		zap.Bool("seeded_pool", seeded),
	)

	var total, decoded, skipped, failed int
	err = storage.ScanJSONL(cfg.In, func(_ int, line []byte) error {
		total++

		var record model.LogRecord
		if err := json.Unmarshal(line, &record); err != nil {
			failed++
			writeDecodeError(errWriter, model.DecodeError{Error: err.Error()})
			return nil
		}
		if len(record.Topics) == 0 {
			failed++
			writeDecodeError(errWriter, model.NewDecodeError(record, fmt.Errorf("missing topic0")))
			return nil
		}

		if !decoder.CanDecode(record.Topic0()) {
			skipped++
			return nil
		}

		event, err := decoder.Decode(record, decodeCtx)
		if err != nil {
			failed++
			writeDecodeError(errWriter, model.NewDecodeError(record, err))
			return nil
		}

		if err := outWriter.Write(event); err != nil {
			return err
		}
		decoded++
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("decode complete",
		zap.Int("total", total),
		zap.Int("decoded", decoded),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed),
	)

	return nil
}

// seedPoolMeta registers a pool's asset pair so its logs decode without RPC.
func seedPoolMeta(cache *evmlog.PoolMetaCache, cfg config.DecodeConfig) error {
	pool, err := indexer.ParseAddress(cfg.Pool)
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
	cache.Set(pool, model.PoolMeta{TokenA: tokenA.Hex(), TokenB: tokenB.Hex()})
	return nil
}

func writeDecodeError(writer *storage.JSONLWriter, errRecord model.DecodeError) {
	if writer == nil {
		return
	}
	_ = writer.Write(errRecord)
}
