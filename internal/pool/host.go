package pool

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"ammPool/internal/model"
)

// Ledger is the fungible-asset surface the pool needs from each asset.
// Implementations return copies from BalanceOf and fail without side effects
// on insufficient balance or allowance.
type Ledger interface {
	BalanceOf(holder common.Address) *uint256.Int
	Transfer(from, to common.Address, amount *uint256.Int) error
	TransferFrom(spender, from, to common.Address, amount *uint256.Int) error
}

// ShareLedger is the LP-share ledger owned by the pool.
type ShareLedger interface {
	Ledger
	TotalSupply() *uint256.Int
	Allowance(owner, spender common.Address) *uint256.Int
	Approve(owner, spender common.Address, amount *uint256.Int) error
	Mint(to common.Address, amount *uint256.Int) error
	Burn(from common.Address, amount *uint256.Int) error
}

// Host resolves asset ledgers and provides all-or-nothing execution.
// Ledger reports false for addresses with no deployed asset.
type Host interface {
	Ledger(asset common.Address) (Ledger, bool)
	Snapshot() int
	RevertToSnapshot(id int)
}

// EventSink receives events of committed pool calls.
type EventSink interface {
	Emit(event model.TypedEvent)
}
