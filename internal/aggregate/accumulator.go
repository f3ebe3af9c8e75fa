package aggregate

import (
	"fmt"
	"math/big"
	"strings"

	"ammPool/internal/model"
)

// Accumulator holds aggregate values for a pool window.
type Accumulator struct {
	ChainID     uint64
	PoolAddress string
	PoolMeta    model.PoolMeta
	WindowStart uint64
	WindowEnd   uint64
	SwapCount   uint64
	VolumeA     *big.Int
	VolumeB     *big.Int
	Adds        uint64
	Removes     uint64
	Minted      *big.Int
	Burned      *big.Int
	LastBlock   uint64
	LastTS      uint64
	FirstBlock  uint64

	// reserves and kLast carried by the latest event that had them
	lastReserves model.PoolMeta
	lastPos      model.EventPosition
	hasReserves  bool
}

func NewAccumulator(record model.TypedEventRecord, windowStart, windowEnd uint64) *Accumulator {
	return &Accumulator{
		ChainID:     record.ChainID,
		PoolAddress: record.Address,
		PoolMeta:    model.PoolMeta{TokenA: record.PoolMeta.TokenA, TokenB: record.PoolMeta.TokenB},
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
		VolumeA:     big.NewInt(0),
		VolumeB:     big.NewInt(0),
		Minted:      big.NewInt(0),
		Burned:      big.NewInt(0),
		LastBlock:   record.BlockNumber,
		LastTS:      record.Timestamp,
		FirstBlock:  record.BlockNumber,
	}
}

// eventDelta is the validated contribution of one event to a window.
type eventDelta struct {
	swap    bool
	volumeA *big.Int
	volumeB *big.Int
	minted  *big.Int
	burned  *big.Int
}

// parseEvent decodes and validates an event before it touches any window.
// Events that carry no pool activity return nil.
func parseEvent(record model.TypedEventRecord) (*eventDelta, error) {
	switch strings.ToLower(record.EventName) {
	case "swap":
		var swap model.SwapEventData
		if err := record.DecodeInto(&swap); err != nil {
			return nil, err
		}
		amountIn, err := parseBigInt(swap.AmountIn)
		if err != nil {
			return nil, err
		}
		amountOut, err := parseBigInt(swap.AmountOut)
		if err != nil {
			return nil, err
		}
		switch {
		case record.PoolMeta.TokenA != "" && strings.EqualFold(swap.TokenIn, record.PoolMeta.TokenA):
			return &eventDelta{swap: true, volumeA: amountIn, volumeB: amountOut}, nil
		case record.PoolMeta.TokenB != "" && strings.EqualFold(swap.TokenIn, record.PoolMeta.TokenB):
			return &eventDelta{swap: true, volumeA: amountOut, volumeB: amountIn}, nil
		default:
			return nil, fmt.Errorf("swap token %s not in pool %s", swap.TokenIn, record.Address)
		}
	case "addliquidity":
		var add model.AddLiquidityEventData
		if err := record.DecodeInto(&add); err != nil {
			return nil, err
		}
		minted, err := parseBigInt(add.Liquidity)
		if err != nil {
			return nil, err
		}
		return &eventDelta{minted: minted}, nil
	case "removeliquidity":
		var remove model.RemoveLiquidityEventData
		if err := record.DecodeInto(&remove); err != nil {
			return nil, err
		}
		burned, err := parseBigInt(remove.Liquidity)
		if err != nil {
			return nil, err
		}
		return &eventDelta{burned: burned}, nil
	default:
		return nil, nil
	}
}

// AddEvent validates record and folds it into the window. A rejected event
// leaves the accumulator untouched.
func (a *Accumulator) AddEvent(record model.TypedEventRecord) error {
	delta, err := parseEvent(record)
	if err != nil || delta == nil {
		return err
	}
	a.apply(record, delta)
	return nil
}

func (a *Accumulator) apply(record model.TypedEventRecord, delta *eventDelta) {
	if record.Timestamp >= a.LastTS {
		a.LastTS = record.Timestamp
		a.LastBlock = record.BlockNumber
	}
	if a.FirstBlock == 0 || record.BlockNumber < a.FirstBlock {
		a.FirstBlock = record.BlockNumber
	}
	if a.PoolMeta.TokenA == "" {
		a.PoolMeta.TokenA = record.PoolMeta.TokenA
		a.PoolMeta.TokenB = record.PoolMeta.TokenB
	}

	switch {
	case delta.swap:
		a.VolumeA.Add(a.VolumeA, delta.volumeA)
		a.VolumeB.Add(a.VolumeB, delta.volumeB)
		a.SwapCount++
	case delta.minted != nil:
		a.Minted.Add(a.Minted, delta.minted)
		a.Adds++
	case delta.burned != nil:
		a.Burned.Add(a.Burned, delta.burned)
		a.Removes++
	}

	a.observeReserves(record)
}

func (a *Accumulator) observeReserves(record model.TypedEventRecord) {
	meta := record.PoolMeta
	if meta.ReserveA == "" || meta.ReserveB == "" {
		return
	}
	pos := record.Position()
	if a.hasReserves && pos.Before(a.lastPos) {
		return
	}
	a.lastReserves = meta
	a.lastPos = pos
	a.hasReserves = true
}

// LastReserves returns the reserves after the latest event of the window,
// when events carried them.
func (a *Accumulator) LastReserves() (model.PoolMeta, bool) {
	return a.lastReserves, a.hasReserves
}

func parseBigInt(value string) (*big.Int, error) {
	if value == "" {
		return big.NewInt(0), nil
	}
	parsed, ok := new(big.Int).SetString(value, 10)
	if !ok || parsed.Sign() < 0 {
		return nil, fmt.Errorf("invalid amount: %s", value)
	}
	return parsed, nil
}
