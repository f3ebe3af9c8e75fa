package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ammPool/internal/chain"
	"ammPool/internal/config"
	"ammPool/internal/evmlog"
	"ammPool/internal/indexer"
	"ammPool/internal/model"
	"ammPool/internal/pool"
)

// inspectReport is printed as JSON by the inspect command.
type inspectReport struct {
	Pool        string          `json:"pool"`
	Block       uint64          `json:"block"`
	TokenA      model.TokenMeta `json:"token_a"`
	TokenB      model.TokenMeta `json:"token_b"`
	ReserveA    string          `json:"reserve_a"`
	ReserveB    string          `json:"reserve_b"`
	KLast       string          `json:"k_last"`
	BalanceA    string          `json:"balance_a"`
	BalanceB    string          `json:"balance_b"`
	Synced      bool            `json:"synced"`
	AssetsValid bool            `json:"assets_valid"`
	AssetsError string          `json:"assets_error,omitempty"`
}

func runInspect(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadInspect(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	poolAddr, err := indexer.ParseAddress(cfg.Pool)
	if err != nil {
		return fmt.Errorf("pool: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	report, err := inspectPool(ctx, chainClient, poolAddr, cfg.Block, logger)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

// inspectPool reads a pool's pair, cached reserves and actual balances at
// block (0 for latest) and validates the pair the way pool construction does.
func inspectPool(ctx context.Context, chainClient *chain.Client, poolAddr common.Address, block uint64, logger *zap.Logger) (inspectReport, error) {
	tokenCache := evmlog.NewTokenMetaCache()
	meta, err := evmlog.FetchPoolMeta(ctx, chainClient, poolAddr, tokenCache, logger)
	if err != nil {
		return inspectReport{}, fmt.Errorf("pool meta: %w", err)
	}
	reserves, err := evmlog.FetchPoolReserves(ctx, chainClient, poolAddr, block)
	if err != nil {
		return inspectReport{}, fmt.Errorf("pool reserves: %w", err)
	}

	tokenA := common.HexToAddress(meta.TokenA)
	tokenB := common.HexToAddress(meta.TokenB)

	var blockPtr *big.Int
	if block > 0 {
		blockPtr = new(big.Int).SetUint64(block)
	}
	balanceA, err := evmlog.FetchBalanceOf(ctx, chainClient, tokenA, poolAddr, blockPtr)
	if err != nil {
		return inspectReport{}, fmt.Errorf("balance a: %w", err)
	}
	balanceB, err := evmlog.FetchBalanceOf(ctx, chainClient, tokenB, poolAddr, blockPtr)
	if err != nil {
		return inspectReport{}, fmt.Errorf("balance b: %w", err)
	}

	report := inspectReport{
		Pool:     poolAddr.Hex(),
		Block:    block,
		ReserveA: reserves.ReserveA,
		ReserveB: reserves.ReserveB,
		KLast:    reserves.KLast,
		BalanceA: balanceA.String(),
		BalanceB: balanceB.String(),
	}
	report.TokenA, _ = tokenCache.Get(tokenA)
	report.TokenB, _ = tokenCache.Get(tokenB)
	report.Synced = report.BalanceA == report.ReserveA && report.BalanceB == report.ReserveB

	err = pool.CheckAssets(tokenA, tokenB, func(asset common.Address) (bool, error) {
		return chainClient.HasCode(ctx, asset)
	})
	report.AssetsValid = err == nil
	if err != nil {
		report.AssetsError = err.Error()
		logger.Warn("pool assets invalid", zap.String("pool", poolAddr.Hex()), zap.String("kind", pool.Kind(err)), zap.Error(err))
	}

	return report, nil
}
