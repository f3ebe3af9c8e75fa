package model

// Operation kinds accepted by the simulation runner.
const (
	OpMint            = "mint"
	OpApprove         = "approve"
	OpAddLiquidity    = "add_liquidity"
	OpRemoveLiquidity = "remove_liquidity"
	OpSwap            = "swap"
	OpTransferShares  = "transfer_shares"
	OpApproveShares   = "approve_shares"
)

// Operation is one line of a simulation script. Amounts are decimal strings.
type Operation struct {
	Op        string `json:"op"`
	Caller    string `json:"caller,omitempty"`
	Asset     string `json:"asset,omitempty"`
	To        string `json:"to,omitempty"`
	Spender   string `json:"spender,omitempty"`
	Amount    string `json:"amount,omitempty"`
	AmountA   string `json:"amount_a,omitempty"`
	AmountB   string `json:"amount_b,omitempty"`
	Liquidity string `json:"liquidity,omitempty"`
	TokenIn   string `json:"token_in,omitempty"`
	TokenOut  string `json:"token_out,omitempty"`
	AmountIn  string `json:"amount_in,omitempty"`
}

// OperationError records a rejected script operation.
type OperationError struct {
	Index       uint64 `json:"index"`
	BlockNumber uint64 `json:"block_number"`
	Op          string `json:"op"`
	Caller      string `json:"caller,omitempty"`
	Kind        string `json:"kind,omitempty"`
	Codespace   string `json:"codespace,omitempty"`
	Code        uint32 `json:"code,omitempty"`
	Error       string `json:"error"`
}
