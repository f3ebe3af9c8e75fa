package model

// Event names emitted by the pool.
const (
	EventSwap            = "Swap"
	EventAddLiquidity    = "AddLiquidity"
	EventRemoveLiquidity = "RemoveLiquidity"
)

// SwapEventData is the Swap event payload.
type SwapEventData struct {
	Sender    string `json:"sender"`
	TokenIn   string `json:"token_in"`
	TokenOut  string `json:"token_out"`
	AmountIn  string `json:"amount_in"`
	AmountOut string `json:"amount_out"`
}

// AddLiquidityEventData is the AddLiquidity event payload.
type AddLiquidityEventData struct {
	Sender    string `json:"sender"`
	AmountA   string `json:"amount_a"`
	AmountB   string `json:"amount_b"`
	Liquidity string `json:"liquidity"`
}

// RemoveLiquidityEventData is the RemoveLiquidity event payload.
type RemoveLiquidityEventData struct {
	Sender    string `json:"sender"`
	AmountA   string `json:"amount_a"`
	AmountB   string `json:"amount_b"`
	Liquidity string `json:"liquidity"`
}
