package model

import "time"

// PoolWindowMetrics stores aggregated metrics for a pool window.
type PoolWindowMetrics struct {
	ChainID          uint64
	PoolAddress      string
	WindowSizeSecs   int64
	WindowStart      time.Time
	WindowEnd        time.Time
	SwapCount        uint64
	VolumeA          string
	VolumeB          string
	LiquidityAdds    uint64
	LiquidityRemoves uint64
	Minted           string
	Burned           string
	ReserveA         *string
	ReserveB         *string
	KLast            *string
	// Price is reserve B per unit of reserve A, decimals applied.
	Price         *string
	ReserveMethod string
}
