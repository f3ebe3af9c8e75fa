package ledger

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"ammPool/internal/model"
)

// MaxAllowance is treated as an allowance that is never spent down.
var MaxAllowance = new(uint256.Int).SetAllOne()

// Token is a fungible-asset ledger with balances, allowances and a supply.
type Token struct {
	bank       *Bank
	address    common.Address
	meta       model.TokenMeta
	supply     uint256.Int
	balances   map[common.Address]uint256.Int
	allowances map[common.Address]map[common.Address]uint256.Int
}

func newToken(bank *Bank, address common.Address, meta model.TokenMeta) *Token {
	return &Token{
		bank:       bank,
		address:    address,
		meta:       meta,
		balances:   make(map[common.Address]uint256.Int),
		allowances: make(map[common.Address]map[common.Address]uint256.Int),
	}
}

func (t *Token) Address() common.Address {
	return t.address
}

func (t *Token) Meta() model.TokenMeta {
	return t.meta
}

func (t *Token) TotalSupply() *uint256.Int {
	return new(uint256.Int).Set(&t.supply)
}

func (t *Token) BalanceOf(holder common.Address) *uint256.Int {
	balance := t.balances[holder]
	return new(uint256.Int).Set(&balance)
}

func (t *Token) Allowance(owner, spender common.Address) *uint256.Int {
	allowance := t.allowances[owner][spender]
	return new(uint256.Int).Set(&allowance)
}

// Approve sets spender's allowance over owner's balance.
func (t *Token) Approve(owner, spender common.Address, amount *uint256.Int) error {
	t.writeAllowance(owner, spender, *amount)
	return nil
}

// Transfer moves amount from one holder to another.
func (t *Token) Transfer(from, to common.Address, amount *uint256.Int) error {
	fromBalance := t.balances[from]
	if fromBalance.Lt(amount) {
		return ErrInsufficientBalance.Wrapf("%s: %s holds %s, needs %s", t.meta.Symbol, from.Hex(), fromBalance.Dec(), amount.Dec())
	}
	if from == to {
		return nil
	}
	toBalance := t.balances[to]
	t.writeBalance(from, *new(uint256.Int).Sub(&fromBalance, amount))
	t.writeBalance(to, *new(uint256.Int).Add(&toBalance, amount))
	return nil
}

// TransferFrom moves amount out of from using spender's allowance. A
// MaxAllowance approval is not decremented.
func (t *Token) TransferFrom(spender, from, to common.Address, amount *uint256.Int) error {
	allowance := t.allowances[from][spender]
	if allowance.Lt(amount) {
		return ErrInsufficientAllowance.Wrapf("%s: %s allows %s %s, needs %s", t.meta.Symbol, from.Hex(), spender.Hex(), allowance.Dec(), amount.Dec())
	}
	if err := t.Transfer(from, to, amount); err != nil {
		return err
	}
	if !allowance.Eq(MaxAllowance) {
		t.writeAllowance(from, spender, *new(uint256.Int).Sub(&allowance, amount))
	}
	return nil
}

// Mint creates amount new units for to.
func (t *Token) Mint(to common.Address, amount *uint256.Int) error {
	supply, overflow := new(uint256.Int).AddOverflow(&t.supply, amount)
	if overflow {
		return ErrSupplyOverflow.Wrapf("%s: supply %s + %s", t.meta.Symbol, t.supply.Dec(), amount.Dec())
	}
	balance := t.balances[to]
	t.writeSupply(*supply)
	t.writeBalance(to, *new(uint256.Int).Add(&balance, amount))
	return nil
}

// Burn destroys amount units held by from.
func (t *Token) Burn(from common.Address, amount *uint256.Int) error {
	balance := t.balances[from]
	if balance.Lt(amount) {
		return ErrInsufficientBalance.Wrapf("%s: burn %s from %s holding %s", t.meta.Symbol, amount.Dec(), from.Hex(), balance.Dec())
	}
	t.writeBalance(from, *new(uint256.Int).Sub(&balance, amount))
	t.writeSupply(*new(uint256.Int).Sub(&t.supply, amount))
	return nil
}

func (t *Token) writeBalance(holder common.Address, value uint256.Int) {
	t.bank.record(balanceChange{token: t, holder: holder, prev: t.balances[holder]})
	t.setBalance(holder, value)
}

func (t *Token) writeAllowance(owner, spender common.Address, value uint256.Int) {
	t.bank.record(allowanceChange{token: t, owner: owner, spender: spender, prev: t.allowances[owner][spender]})
	t.setAllowance(owner, spender, value)
}

func (t *Token) writeSupply(value uint256.Int) {
	t.bank.record(supplyChange{token: t, prev: t.supply})
	t.supply = value
}

func (t *Token) setBalance(holder common.Address, value uint256.Int) {
	if value.IsZero() {
		delete(t.balances, holder)
		return
	}
	t.balances[holder] = value
}

func (t *Token) setAllowance(owner, spender common.Address, value uint256.Int) {
	if value.IsZero() {
		if spenders, ok := t.allowances[owner]; ok {
			delete(spenders, spender)
			if len(spenders) == 0 {
				delete(t.allowances, owner)
			}
		}
		return
	}
	spenders, ok := t.allowances[owner]
	if !ok {
		spenders = make(map[common.Address]uint256.Int)
		t.allowances[owner] = spenders
	}
	spenders[spender] = value
}
