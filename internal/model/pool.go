package model

// Pool represents a pool metadata record for storage.
type Pool struct {
	ChainID        uint64 `json:"chain_id"`
	Address        string `json:"address"`
	TokenA         string `json:"token_a"`
	TokenB         string `json:"token_b"`
	FirstSeenBlock uint64 `json:"first_seen_block"`
}
