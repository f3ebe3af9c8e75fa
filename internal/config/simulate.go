package config

import (
	"time"

	"github.com/spf13/pflag"
)

// SimulateConfig holds configuration for running an operation script.
type SimulateConfig struct {
	Script            string
	ChainID           uint64
	Pool              string
	TokenA            string
	TokenB            string
	TokenASymbol      string
	TokenBSymbol      string
	TokenADecimals    uint8
	TokenBDecimals    uint8
	StartTime         string
	BlockInterval     uint64
	BatchSize         uint64
	LogsOut           string
	EventsOut         string
	ErrorsOut         string
	Checkpoint        string
	CheckpointEnabled bool
	StopOnError       bool
	PGDSN             string
	MetricsOut        string
	MaxRetries        int
	RetryBackoff      time.Duration
	LogLevel          string
}

// LoadSimulate merges config file, environment variables, and flags into SimulateConfig.
func LoadSimulate(cfgFile string, flags *pflag.FlagSet) (SimulateConfig, error) {
	v, err := load(cfgFile, flags, map[string]interface{}{
		"chain-id":           uint64(31337),
		"pool":               "0x0000000000000000000000000000000000000100",
		"token-a":            "0x0000000000000000000000000000000000000101",
		"token-b":            "0x0000000000000000000000000000000000000102",
		"token-a-symbol":     "TKA",
		"token-b-symbol":     "TKB",
		"token-a-decimals":   18,
		"token-b-decimals":   18,
		"block-interval":     uint64(12),
		"batch-size":         uint64(500),
		"logs-out":           "./data/sim_logs.jsonl",
		"events-out":         "./data/sim_events.jsonl",
		"errors-out":         "./data/sim_errors.jsonl",
		"checkpoint":         "./data/sim_checkpoint.json",
		"checkpoint-enabled": true,
		"max-retries":        3,
		"retry-backoff":      200 * time.Millisecond,
		"log-level":          "info",
	})
	if err != nil {
		return SimulateConfig{}, err
	}

	cfg := SimulateConfig{
		Script:            v.GetString("script"),
		ChainID:           v.GetUint64("chain-id"),
		Pool:              v.GetString("pool"),
		TokenA:            v.GetString("token-a"),
		TokenB:            v.GetString("token-b"),
		TokenASymbol:      v.GetString("token-a-symbol"),
		TokenBSymbol:      v.GetString("token-b-symbol"),
		TokenADecimals:    uint8(v.GetUint("token-a-decimals")),
		TokenBDecimals:    uint8(v.GetUint("token-b-decimals")),
		StartTime:         v.GetString("start-time"),
		BlockInterval:     v.GetUint64("block-interval"),
		BatchSize:         v.GetUint64("batch-size"),
		LogsOut:           v.GetString("logs-out"),
		EventsOut:         v.GetString("events-out"),
		ErrorsOut:         v.GetString("errors-out"),
		Checkpoint:        v.GetString("checkpoint"),
		CheckpointEnabled: v.GetBool("checkpoint-enabled"),
		StopOnError:       v.GetBool("stop-on-error"),
		PGDSN:             v.GetString("pg-dsn"),
		MetricsOut:        v.GetString("metrics-out"),
		MaxRetries:        v.GetInt("max-retries"),
		RetryBackoff:      v.GetDuration("retry-backoff"),
		LogLevel:          v.GetString("log-level"),
	}

	return cfg, nil
}
