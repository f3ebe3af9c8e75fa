package model

// PoolState is a point-in-time view of a pool's accounting.
type PoolState struct {
	Address     string `json:"address"`
	TokenA      string `json:"token_a"`
	TokenB      string `json:"token_b"`
	ReserveA    string `json:"reserve_a"`
	ReserveB    string `json:"reserve_b"`
	KLast       string `json:"k_last"`
	TotalSupply string `json:"total_supply"`
}

// Meta returns the pool meta carried on events emitted in this state.
func (s PoolState) Meta() PoolMeta {
	return PoolMeta{
		TokenA:   s.TokenA,
		TokenB:   s.TokenB,
		ReserveA: s.ReserveA,
		ReserveB: s.ReserveB,
		KLast:    s.KLast,
	}
}
