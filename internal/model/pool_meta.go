package model

// PoolMeta captures the immutable asset pair with optional post-event reserves.
type PoolMeta struct {
	TokenA   string `json:"token_a"`
	TokenB   string `json:"token_b"`
	ReserveA string `json:"reserve_a,omitempty"`
	ReserveB string `json:"reserve_b,omitempty"`
	KLast    string `json:"k_last,omitempty"`
}
