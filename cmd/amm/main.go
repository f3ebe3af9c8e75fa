package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "amm",
		Short:        "Constant-product pool simulator and log pipeline",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run an operation script against an in-memory pool",
		RunE:  runSimulate,
	}

	simulateCmd.Flags().String("script", "", "operation script JSONL")
	simulateCmd.Flags().Uint64("chain-id", 31337, "chain id stamped on events")
	simulateCmd.Flags().String("pool", "0x0000000000000000000000000000000000000100", "pool address")
	simulateCmd.Flags().String("token-a", "0x0000000000000000000000000000000000000101", "asset A address")
	simulateCmd.Flags().String("token-b", "0x0000000000000000000000000000000000000102", "asset B address")
	simulateCmd.Flags().String("token-a-symbol", "TKA", "asset A symbol")
	simulateCmd.Flags().String("token-b-symbol", "TKB", "asset B symbol")
	simulateCmd.Flags().Uint("token-a-decimals", 18, "asset A decimals")
	simulateCmd.Flags().Uint("token-b-decimals", 18, "asset B decimals")
	simulateCmd.Flags().String("start-time", "", "timestamp of block 1 (unix seconds or RFC3339), default now")
	simulateCmd.Flags().Uint64("block-interval", 12, "seconds between blocks")
	simulateCmd.Flags().Uint64("batch-size", 500, "operations per batch")
	simulateCmd.Flags().String("logs-out", "./data/sim_logs.jsonl", "output raw logs JSONL")
	simulateCmd.Flags().String("events-out", "./data/sim_events.jsonl", "output typed events JSONL")
	simulateCmd.Flags().String("errors-out", "./data/sim_errors.jsonl", "output rejected operations JSONL")
	simulateCmd.Flags().String("checkpoint", "./data/sim_checkpoint.json", "checkpoint file path")
	simulateCmd.Flags().Bool("checkpoint-enabled", true, "enable checkpointing")
	simulateCmd.Flags().Bool("stop-on-error", false, "stop at the first rejected operation")
	simulateCmd.Flags().String("pg-dsn", "", "optional Postgres DSN for pool state snapshots")
	simulateCmd.Flags().String("metrics-out", "", "optional Prometheus textfile path")
	simulateCmd.Flags().Int("max-retries", 3, "maximum retry attempts for sink writes")
	simulateCmd.Flags().Duration("retry-backoff", 200*time.Millisecond, "initial retry backoff")
	simulateCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(simulateCmd)

	fetchCmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch pool logs from an RPC endpoint",
		RunE:  runFetch,
	}

	fetchCmd.Flags().String("rpc", "", "RPC URL")
	fetchCmd.Flags().Uint64("from", 0, "start block (inclusive)")
	fetchCmd.Flags().Uint64("to", 0, "end block (inclusive), 0 means latest")
	fetchCmd.Flags().StringSlice("address", nil, "pool addresses (comma-separated)")
	fetchCmd.Flags().StringSlice("topic0", nil, "topic0 filter (comma-separated), default all pool events")
	fetchCmd.Flags().Uint64("batch-size", 2000, "blocks per batch")
	fetchCmd.Flags().String("out", "./data/logs.jsonl", "output JSONL path")
	fetchCmd.Flags().String("checkpoint", "./data/checkpoint.json", "checkpoint file path")
	fetchCmd.Flags().Bool("checkpoint-enabled", true, "enable checkpointing")
	fetchCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	fetchCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	fetchCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(fetchCmd)

	decodeCmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode raw logs into typed events",
		RunE:  runDecode,
	}

	decodeCmd.Flags().String("rpc", "", "RPC URL, required unless --pool/--token-a/--token-b are given")
	decodeCmd.Flags().String("in", "", "input raw logs JSONL")
	decodeCmd.Flags().String("out", "./data/typed_events.jsonl", "output typed events JSONL")
	decodeCmd.Flags().String("errors", "./data/decode_errors.jsonl", "decode errors JSONL")
	decodeCmd.Flags().String("topic0-map", "", "extra topic0->event mappings (comma-separated key=value)")
	decodeCmd.Flags().Bool("include-reserves", false, "read reserves and kLast at each log's block (requires archive RPC)")
	decodeCmd.Flags().String("pool", "", "pool address with known assets")
	decodeCmd.Flags().String("token-a", "", "asset A of --pool")
	decodeCmd.Flags().String("token-b", "", "asset B of --pool")
	decodeCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(decodeCmd)

	aggregateCmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Aggregate typed events into window metrics",
		RunE:  runAggregate,
	}

	aggregateCmd.Flags().String("rpc", "", "optional RPC URL for decimals and reserve fallback")
	aggregateCmd.Flags().String("in", "", "input typed events JSONL")
	aggregateCmd.Flags().String("window", "5m", "aggregation window (e.g. 1m, 5m, 1h)")
	aggregateCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	aggregateCmd.Flags().Int("batch-size", 1000, "batch size for DB writes")
	aggregateCmd.Flags().String("state-file", "", "optional local state file for progress tracking")
	aggregateCmd.Flags().String("state-name", "aggregate", "progress key in the indexer_state table")
	aggregateCmd.Flags().String("recompute-from", "", "recompute from timestamp (unix seconds or RFC3339)")
	aggregateCmd.Flags().String("decimals", "", "token decimals overrides (comma-separated address=decimals)")
	aggregateCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(aggregateCmd)

	inspectCmd := &cobra.Command{
		Use:   "inspect",
		Short: "Check a deployed pool over RPC",
		RunE:  runInspect,
	}

	inspectCmd.Flags().String("rpc", "", "RPC URL")
	inspectCmd.Flags().String("pool", "", "pool address")
	inspectCmd.Flags().Uint64("block", 0, "block height, 0 means latest")
	inspectCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(inspectCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
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
