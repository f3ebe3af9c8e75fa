package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func TestLoadFetchFlagsAndEnv(t *testing.T) {
	t.Setenv("AMM_RPC", "http://localhost:8545")
	t.Setenv("AMM_ADDRESS", "0xaa, 0xbb,")

	flags := pflag.NewFlagSet("fetch", pflag.ContinueOnError)
	flags.Uint64("batch-size", 2000, "")
	flags.Uint64("from", 0, "")
	require.NoError(t, flags.Parse([]string{"--batch-size=10", "--from=7"}))

	cfg, err := LoadFetch("", flags)
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8545", cfg.RPCURL)
	require.Equal(t, []string{"0xaa", "0xbb"}, cfg.Addresses)
	require.Equal(t, uint64(10), cfg.BatchSize)
	require.Equal(t, uint64(7), cfg.FromBlock)
	require.Equal(t, 500*time.Millisecond, cfg.RetryBackoff)
	require.True(t, cfg.CheckpointEnabled)
}

func TestLoadSimulateFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.yaml")
	content := "script: ops.jsonl\n" +
		"token-a-decimals: 6\n" +
		"stop-on-error: true\n" +
		"start-time: \"2024-01-01T00:00:00Z\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadSimulate(path, nil)
	require.NoError(t, err)
	require.Equal(t, "ops.jsonl", cfg.Script)
	require.Equal(t, uint8(6), cfg.TokenADecimals)
	require.Equal(t, uint8(18), cfg.TokenBDecimals)
	require.True(t, cfg.StopOnError)
	require.Equal(t, uint64(31337), cfg.ChainID)
	require.Equal(t, uint64(12), cfg.BlockInterval)

	ts, err := ParseTimestamp(cfg.StartTime)
	require.NoError(t, err)
	require.Equal(t, uint64(1704067200), ts)
}

func TestLoadAggregateDecimals(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agg.yaml")
	content := "window: 1h\n" +
		"decimals:\n" +
		"  \"0x00000000000000000000000000000000000000A1\": 6\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadAggregate(path, nil)
	require.NoError(t, err)
	require.Equal(t, "1h", cfg.Window)
	require.Equal(t, map[string]uint8{"0x00000000000000000000000000000000000000a1": 6}, cfg.Decimals)
	require.Equal(t, "aggregate", cfg.StateName)

	t.Setenv("AMM_DECIMALS", "0xb1=300")
	_, err = LoadAggregate("", nil)
	require.Error(t, err)
}

func TestLoadDecodeTopicMap(t *testing.T) {
	t.Setenv("AMM_TOPIC0_MAP", "0x01=mint, 0x02=burn, bad")
	cfg, err := LoadDecode("", nil)
	require.NoError(t, err)
	require.Equal(t, map[string]string{"0x01": "mint", "0x02": "burn"}, cfg.Topic0Map)
	require.False(t, cfg.IncludeReserves)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := LoadInspect(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
}

func TestParseTimestamp(t *testing.T) {
	ts, err := ParseTimestamp("")
	require.NoError(t, err)
	require.Zero(t, ts)

	ts, err = ParseTimestamp("1700000000")
	require.NoError(t, err)
	require.Equal(t, uint64(1700000000), ts)

	_, err = ParseTimestamp("yesterday")
	require.Error(t, err)
}
