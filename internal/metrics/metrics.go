package metrics

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "amm"
	subsystem = "pool"
)

// PoolMetrics holds prometheus metrics for a single pool. A nil *PoolMetrics
// is valid and records nothing.
type PoolMetrics struct {
	SwapsTotal      *prometheus.CounterVec
	SwapVolume      *prometheus.CounterVec
	LiquidityEvents *prometheus.CounterVec
	RejectedTotal   *prometheus.CounterVec
	Reserves        *prometheus.GaugeVec
	LPTokenSupply   prometheus.Gauge
	KLast           prometheus.Gauge
}

// NewPoolMetrics creates pool metrics and registers them with reg.
func NewPoolMetrics(reg prometheus.Registerer) *PoolMetrics {
	factory := promauto.With(reg)
	return &PoolMetrics{
		SwapsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "swaps_total",
				Help:      "Total number of committed swaps",
			},
			[]string{"token_in", "token_out"},
		),
		SwapVolume: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "swap_volume_total",
				Help:      "Swap volume in base units",
				// base units lose precision above 2^53
			},
			[]string{"token", "direction"},
		),
		LiquidityEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "liquidity_events_total",
				Help:      "Committed liquidity additions and removals",
			},
			[]string{"kind"},
		),
		RejectedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "rejected_total",
				Help:      "Rejected pool calls by operation and failure kind",
			},
			[]string{"op", "kind"},
		),
		Reserves: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "reserves",
				Help:      "Cached pool reserves in base units",
			},
			[]string{"token"},
		),
		LPTokenSupply: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "lp_token_supply",
				Help:      "Outstanding LP shares",
			},
		),
		KLast: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "k_last",
				Help:      "Invariant constant fixed at the last liquidity event",
			},
		),
	}
}

// ObserveSwap records a committed swap.
func (m *PoolMetrics) ObserveSwap(tokenIn, tokenOut string, amountIn, amountOut *uint256.Int) {
	if m == nil {
		return
	}
	m.SwapsTotal.WithLabelValues(tokenIn, tokenOut).Inc()
	m.SwapVolume.WithLabelValues(tokenIn, "in").Add(toFloat(amountIn))
	m.SwapVolume.WithLabelValues(tokenOut, "out").Add(toFloat(amountOut))
}

// ObserveLiquidity records a committed add or remove.
func (m *PoolMetrics) ObserveLiquidity(kind string) {
	if m == nil {
		return
	}
	m.LiquidityEvents.WithLabelValues(kind).Inc()
}

// ObserveRejected records a rejected call.
func (m *PoolMetrics) ObserveRejected(op, kind string) {
	if m == nil {
		return
	}
	m.RejectedTotal.WithLabelValues(op, kind).Inc()
}

// SetState publishes reserve, supply and invariant gauges.
func (m *PoolMetrics) SetState(tokenA, tokenB string, reserveA, reserveB, supply, kLast *uint256.Int) {
	if m == nil {
		return
	}
	m.Reserves.WithLabelValues(tokenA).Set(toFloat(reserveA))
	m.Reserves.WithLabelValues(tokenB).Set(toFloat(reserveB))
	m.LPTokenSupply.Set(toFloat(supply))
	m.KLast.Set(toFloat(kLast))
}

func toFloat(value *uint256.Int) float64 {
	if value == nil {
		return 0
	}
	f, _ := new(big.Float).SetInt(value.ToBig()).Float64()
	return f
}
