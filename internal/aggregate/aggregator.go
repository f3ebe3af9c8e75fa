package aggregate

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"ammPool/internal/chain"
	"ammPool/internal/evmlog"
	"ammPool/internal/model"
	"ammPool/internal/storage"
)

// Config controls aggregation behavior.
type Config struct {
	WindowSeconds uint64
	BatchSize     int
	RecomputeFrom uint64
	StateStore    StateStore
	// Decimals overrides token decimals by lowercase address.
	Decimals map[string]uint8
}

// Store receives pools and window metrics.
type Store interface {
	UpsertPools(ctx context.Context, pools []model.Pool) error
	UpsertWindowMetrics(ctx context.Context, metrics []model.PoolWindowMetrics) error
}

// Aggregator aggregates typed events into pool window metrics. The chain
// client is optional; without it, reserves come only from event metadata
// and unknown decimals default to zero.
type Aggregator struct {
	cfg          Config
	store        Store
	chainClient  *chain.Client
	logger       *zap.Logger
	tokens       *evmlog.TokenMetaCache
	accumulators map[string]*Accumulator
	poolSeen     map[string]model.Pool
}

func NewAggregator(cfg Config, store Store, chainClient *chain.Client, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}

	tokens := evmlog.NewTokenMetaCache()
	for token, value := range cfg.Decimals {
		if common.IsHexAddress(token) {
			address := common.HexToAddress(token)
			tokens.Set(address, model.TokenMeta{Address: address.Hex(), Decimals: value})
		}
	}

	return &Aggregator{
		cfg:          cfg,
		store:        store,
		chainClient:  chainClient,
		logger:       logger,
		tokens:       tokens,
		accumulators: make(map[string]*Accumulator),
		poolSeen:     make(map[string]model.Pool),
	}
}

// Run executes aggregation over a typed events JSONL file.
func (a *Aggregator) Run(ctx context.Context, inputPath string) error {
	if a.store == nil {
		return fmt.Errorf("store is nil")
	}
	if a.cfg.WindowSeconds == 0 {
		return fmt.Errorf("window seconds must be > 0")
	}
	if a.cfg.BatchSize <= 0 {
		a.cfg.BatchSize = 1000
	}

	startTs, err := a.loadStartTimestamp(ctx)
	if err != nil {
		return err
	}

	batch := make([]model.PoolWindowMetrics, 0, a.cfg.BatchSize)
	pools := make([]model.Pool, 0, 16)
	maxTs := startTs
	var total, windows, skipped, failed int

	err = storage.ScanJSONL(inputPath, func(lineNo int, line []byte) error {
		total++

		var record model.TypedEventRecord
		if err := json.Unmarshal(line, &record); err != nil {
			failed++
			a.logger.Warn("decode typed event", zap.Int("line", lineNo), zap.Error(err))
			return nil
		}

		if record.Timestamp <= startTs {
			skipped++
			return nil
		}

		delta, err := parseEvent(record)
		if err != nil {
			failed++
			a.logger.Warn("aggregate event", zap.Error(err), zap.String("pool", record.Address), zap.String("event", record.EventName))
			return nil
		}
		if delta == nil {
			skipped++
			return nil
		}

		windowStart := windowStart(record.Timestamp, a.cfg.WindowSeconds)
		windowEnd := windowStart + a.cfg.WindowSeconds

		accKey := poolKey(record.Address)
		acc := a.accumulators[accKey]
		if acc == nil {
			acc = NewAccumulator(record, windowStart, windowEnd)
			a.accumulators[accKey] = acc
		} else if acc.WindowStart != windowStart {
			metrics, pool, err := a.flushAccumulator(ctx, acc)
			if err != nil {
				return err
			}
			if metrics != nil {
				batch = append(batch, *metrics)
				windows++
			}
			if pool != nil {
				pools = append(pools, *pool)
			}
			acc = NewAccumulator(record, windowStart, windowEnd)
			a.accumulators[accKey] = acc
		}
		acc.apply(record, delta)

		if record.Timestamp > maxTs {
			maxTs = record.Timestamp
		}

		if len(batch) >= a.cfg.BatchSize {
			if err := a.flushBatches(ctx, batch, pools); err != nil {
				return err
			}
			batch = batch[:0]
			pools = pools[:0]

			if err := a.saveState(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, acc := range a.accumulators {
		metrics, pool, err := a.flushAccumulator(ctx, acc)
		if err != nil {
			return err
		}
		if metrics != nil {
			batch = append(batch, *metrics)
			windows++
		}
		if pool != nil {
			pools = append(pools, *pool)
		}
	}
	a.accumulators = make(map[string]*Accumulator)

	if len(batch) > 0 || len(pools) > 0 {
		if err := a.flushBatches(ctx, batch, pools); err != nil {
			return err
		}
	}

	a.cfg.RecomputeFrom = maxTs
	if err := a.saveState(ctx); err != nil {
		return err
	}

	a.logger.Info("aggregate complete",
		zap.Int("total", total),
		zap.Int("windows", windows),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed),
	)

	return nil
}

func (a *Aggregator) loadStartTimestamp(ctx context.Context) (uint64, error) {
	if a.cfg.RecomputeFrom > 0 {
		return a.cfg.RecomputeFrom - 1, nil
	}
	if a.cfg.StateStore == nil {
		return 0, nil
	}
	last, ok, err := a.cfg.StateStore.Load(ctx)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return last, nil
}

func (a *Aggregator) saveState(ctx context.Context) error {
	if a.cfg.StateStore == nil {
		return nil
	}

	if len(a.accumulators) == 0 {
		return a.cfg.StateStore.Save(ctx, a.cfg.RecomputeFrom)
	}

	safeTs := minOpenWindowStart(a.accumulators)
	if safeTs > 0 {
		safeTs = safeTs - 1
	}
	if safeTs == 0 {
		safeTs = a.cfg.RecomputeFrom
	}
	return a.cfg.StateStore.Save(ctx, safeTs)
}

func (a *Aggregator) flushBatches(ctx context.Context, batch []model.PoolWindowMetrics, pools []model.Pool) error {
	if len(pools) > 0 {
		if err := a.store.UpsertPools(ctx, pools); err != nil {
			return err
		}
	}
	if len(batch) > 0 {
		if err := a.store.UpsertWindowMetrics(ctx, batch); err != nil {
			return err
		}
	}
	return nil
}

func (a *Aggregator) flushAccumulator(ctx context.Context, acc *Accumulator) (*model.PoolWindowMetrics, *model.Pool, error) {
	if acc == nil {
		return nil, nil, nil
	}

	poolMeta := acc.PoolMeta
	if poolMeta.TokenA == "" || poolMeta.TokenB == "" {
		a.logger.Warn("missing pool meta", zap.String("pool", acc.PoolAddress))
		return nil, nil, nil
	}

	poolRecord := a.registerPool(acc)

	decimalsA, err := a.getTokenDecimals(ctx, poolMeta.TokenA)
	if err != nil {
		a.logger.Warn("tokenA decimals", zap.String("token", poolMeta.TokenA), zap.Error(err))
	}
	decimalsB, err := a.getTokenDecimals(ctx, poolMeta.TokenB)
	if err != nil {
		a.logger.Warn("tokenB decimals", zap.String("token", poolMeta.TokenB), zap.Error(err))
	}

	metrics := &model.PoolWindowMetrics{
		ChainID:          acc.ChainID,
		PoolAddress:      acc.PoolAddress,
		WindowSizeSecs:   int64(a.cfg.WindowSeconds),
		WindowStart:      time.Unix(int64(acc.WindowStart), 0).UTC(),
		WindowEnd:        time.Unix(int64(acc.WindowEnd), 0).UTC(),
		SwapCount:        acc.SwapCount,
		VolumeA:          formatTokenAmount(acc.VolumeA, decimalsA),
		VolumeB:          formatTokenAmount(acc.VolumeB, decimalsB),
		LiquidityAdds:    acc.Adds,
		LiquidityRemoves: acc.Removes,
		Minted:           acc.Minted.String(),
		Burned:           acc.Burned.String(),
	}

	reserveA, reserveB, kLast, method := a.windowReserves(ctx, acc)
	metrics.ReserveMethod = method
	if reserveA != nil && reserveB != nil {
		valA := formatTokenAmount(reserveA, decimalsA)
		valB := formatTokenAmount(reserveB, decimalsB)
		metrics.ReserveA = &valA
		metrics.ReserveB = &valB
		if price := computePrice(reserveA, reserveB, decimalsA, decimalsB); price != "" {
			metrics.Price = &price
		}
	}
	if kLast != nil {
		val := kLast.String()
		metrics.KLast = &val
	}

	return metrics, poolRecord, nil
}

// windowReserves prefers reserves carried on events and falls back to
// balanceOf calls at the window's last block.
func (a *Aggregator) windowReserves(ctx context.Context, acc *Accumulator) (*big.Int, *big.Int, *big.Int, string) {
	if meta, ok := acc.LastReserves(); ok {
		reserveA, errA := parseBigInt(meta.ReserveA)
		reserveB, errB := parseBigInt(meta.ReserveB)
		if errA == nil && errB == nil {
			var kLast *big.Int
			if meta.KLast != "" {
				if k, err := parseBigInt(meta.KLast); err == nil {
					kLast = k
				}
			}
			return reserveA, reserveB, kLast, reserveMethodEvent
		}
		a.logger.Warn("invalid event reserves", zap.String("pool", acc.PoolAddress))
	}

	if a.chainClient == nil || acc.LastBlock == 0 {
		return nil, nil, nil, reserveMethodNone
	}
	reserveA, reserveB, method, err := a.fetchReserves(ctx, acc.PoolMeta.TokenA, acc.PoolMeta.TokenB, acc.PoolAddress, acc.LastBlock)
	if err != nil {
		a.logger.Warn("reserve fetch failed", zap.String("pool", acc.PoolAddress), zap.Error(err))
		return nil, nil, nil, reserveMethodNone
	}
	return reserveA, reserveB, nil, method
}

func (a *Aggregator) registerPool(acc *Accumulator) *model.Pool {
	key := poolKey(acc.PoolAddress)
	pool := model.Pool{
		ChainID:        acc.ChainID,
		Address:        acc.PoolAddress,
		TokenA:         acc.PoolMeta.TokenA,
		TokenB:         acc.PoolMeta.TokenB,
		FirstSeenBlock: acc.FirstBlock,
	}

	existing, ok := a.poolSeen[key]
	if ok {
		if existing.FirstSeenBlock <= pool.FirstSeenBlock {
			return nil
		}
	}

	a.poolSeen[key] = pool
	return &pool
}

func (a *Aggregator) getTokenDecimals(ctx context.Context, token string) (uint8, error) {
	if !common.IsHexAddress(token) {
		return 0, fmt.Errorf("invalid token address: %s", token)
	}
	addr := common.HexToAddress(token)
	if meta, ok := a.tokens.Get(addr); ok {
		return meta.Decimals, nil
	}
	if a.chainClient == nil {
		return 0, fmt.Errorf("no decimals configured and chain client is nil")
	}
	meta, err := evmlog.FetchTokenMeta(ctx, a.chainClient, addr, a.logger)
	if err != nil {
		return 0, err
	}
	a.tokens.Set(addr, meta)
	return meta.Decimals, nil
}

func windowStart(ts uint64, windowSec uint64) uint64 {
	return ts - (ts % windowSec)
}

func poolKey(address string) string {
	return strings.ToLower(address)
}

func minOpenWindowStart(acc map[string]*Accumulator) uint64 {
	var min uint64
	for _, entry := range acc {
		if entry == nil {
			continue
		}
		if min == 0 || entry.WindowStart < min {
			min = entry.WindowStart
		}
	}
	return min
}
