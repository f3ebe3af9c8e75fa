package pool

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// TotalSupply returns the outstanding LP shares.
func (p *Pool) TotalSupply() *uint256.Int {
	return p.shares.TotalSupply()
}

// BalanceOf returns holder's LP shares.
func (p *Pool) BalanceOf(holder common.Address) *uint256.Int {
	return p.shares.BalanceOf(holder)
}

// Allowance returns the LP shares spender may move on behalf of owner.
func (p *Pool) Allowance(owner, spender common.Address) *uint256.Int {
	return p.shares.Allowance(owner, spender)
}

// Approve sets spender's LP-share allowance over owner's shares.
func (p *Pool) Approve(owner, spender common.Address, amount *uint256.Int) error {
	return p.shares.Approve(owner, spender, orZero(amount))
}

// Transfer moves LP shares between holders.
func (p *Pool) Transfer(from, to common.Address, amount *uint256.Int) error {
	return p.atomic(func() error {
		return p.shares.Transfer(from, to, orZero(amount))
	})
}

// TransferFrom moves LP shares using spender's allowance.
func (p *Pool) TransferFrom(spender, from, to common.Address, amount *uint256.Int) error {
	return p.atomic(func() error {
		return p.shares.TransferFrom(spender, from, to, orZero(amount))
	})
}
