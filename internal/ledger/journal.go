package ledger

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// journalEntry undoes a single ledger write.
type journalEntry interface {
	revert()
}

type balanceChange struct {
	token  *Token
	holder common.Address
	prev   uint256.Int
}

func (c balanceChange) revert() {
	c.token.setBalance(c.holder, c.prev)
}

type allowanceChange struct {
	token   *Token
	owner   common.Address
	spender common.Address
	prev    uint256.Int
}

func (c allowanceChange) revert() {
	c.token.setAllowance(c.owner, c.spender, c.prev)
}

type supplyChange struct {
	token *Token
	prev  uint256.Int
}

func (c supplyChange) revert() {
	c.token.supply = c.prev
}

type deployChange struct {
	bank    *Bank
	address common.Address
}

func (c deployChange) revert() {
	delete(c.bank.tokens, c.address)
}
