package aggregate

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"ammPool/internal/evmlog"
)

const (
	reserveMethodEvent  = "event_meta"
	reserveMethodBlock  = "balance_of_block"
	reserveMethodLatest = "balance_of_latest"
	reserveMethodNone   = "unavailable"
)

// fetchReserves reads the pool's asset balances at blockNumber, falling back
// to the latest block.
func (a *Aggregator) fetchReserves(ctx context.Context, tokenA, tokenB, poolAddr string, blockNumber uint64) (*big.Int, *big.Int, string, error) {
	if a.chainClient == nil {
		return nil, nil, reserveMethodNone, fmt.Errorf("chain client is nil")
	}
	if !common.IsHexAddress(tokenA) || !common.IsHexAddress(tokenB) || !common.IsHexAddress(poolAddr) {
		return nil, nil, reserveMethodNone, fmt.Errorf("invalid address")
	}

	pool := common.HexToAddress(poolAddr)
	blockPtr := new(big.Int).SetUint64(blockNumber)

	balA, errA := evmlog.FetchBalanceOf(ctx, a.chainClient, common.HexToAddress(tokenA), pool, blockPtr)
	balB, errB := evmlog.FetchBalanceOf(ctx, a.chainClient, common.HexToAddress(tokenB), pool, blockPtr)
	if errA == nil && errB == nil {
		return balA, balB, reserveMethodBlock, nil
	}

	balA, errA = evmlog.FetchBalanceOf(ctx, a.chainClient, common.HexToAddress(tokenA), pool, nil)
	balB, errB = evmlog.FetchBalanceOf(ctx, a.chainClient, common.HexToAddress(tokenB), pool, nil)
	if errA == nil && errB == nil {
		return balA, balB, reserveMethodLatest, nil
	}

	return nil, nil, reserveMethodNone, fmt.Errorf("balanceOf failed")
}
