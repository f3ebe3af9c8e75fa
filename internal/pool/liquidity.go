package pool

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"ammPool/internal/model"
)

// AddLiquidity deposits up to amountAIn/amountBIn and mints LP shares to caller.
//
// The first deposit mints floor(sqrt(amountAIn*amountBIn)) and accepts both
// amounts in full. Later deposits mint the smaller of the two proportional
// shares and only consume the amounts that share is worth, so the offered
// amounts are upper bounds. kLast is refreshed from the new cached reserves.
func (p *Pool) AddLiquidity(caller common.Address, amountAIn, amountBIn *uint256.Int) (amountA, amountB, liquidity *uint256.Int, err error) {
	if isZero(amountAIn) || isZero(amountBIn) {
		return nil, nil, nil, p.reject("add_liquidity", caller, ErrInsufficientInputAmount)
	}

	err = p.atomic(func() error {
		var err error
		amountA, amountB, liquidity, err = p.mintAmounts(amountAIn, amountBIn)
		if err != nil {
			return err
		}
		if liquidity.IsZero() {
			return ErrInsufficientLiquidityMinted
		}

		reserveA, err := add(&p.state.reserves[AssetA], amountA)
		if err != nil {
			return err
		}
		reserveB, err := add(&p.state.reserves[AssetB], amountB)
		if err != nil {
			return err
		}
		kLast, err := mul(reserveA, reserveB)
		if err != nil {
			return err
		}
		p.state.reserves[AssetA] = *reserveA
		p.state.reserves[AssetB] = *reserveB
		p.state.kLast = *kLast

		if err := p.ledgers[AssetA].TransferFrom(p.address, caller, p.address, amountA); err != nil {
			return fmt.Errorf("pull %s: %w", p.tokens[AssetA].Hex(), err)
		}
		if err := p.ledgers[AssetB].TransferFrom(p.address, caller, p.address, amountB); err != nil {
			return fmt.Errorf("pull %s: %w", p.tokens[AssetB].Hex(), err)
		}
		if err := p.shares.Mint(caller, liquidity); err != nil {
			return fmt.Errorf("mint shares: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, nil, p.reject("add_liquidity", caller, err)
	}

	p.emit(model.EventAddLiquidity, model.AddLiquidityEventData{
		Sender:    caller.Hex(),
		AmountA:   amountA.Dec(),
		AmountB:   amountB.Dec(),
		Liquidity: liquidity.Dec(),
	})
	p.metrics.ObserveLiquidity("add")
	p.logger.Debug("add liquidity",
		zap.String("caller", caller.Hex()),
		zap.String("amount_a", amountA.Dec()),
		zap.String("amount_b", amountB.Dec()),
		zap.String("liquidity", liquidity.Dec()),
	)
	return amountA, amountB, liquidity, nil
}

func (p *Pool) mintAmounts(amountAIn, amountBIn *uint256.Int) (amountA, amountB, liquidity *uint256.Int, err error) {
	supply := p.shares.TotalSupply()
	if supply.IsZero() {
		product, err := mul(amountAIn, amountBIn)
		if err != nil {
			return nil, nil, nil, err
		}
		return amountAIn.Clone(), amountBIn.Clone(), new(uint256.Int).Sqrt(product), nil
	}

	reserveA, reserveB := &p.state.reserves[AssetA], &p.state.reserves[AssetB]
	if reserveA.IsZero() || reserveB.IsZero() {
		return nil, nil, nil, ErrNoLiquidity.Wrapf("zero reserve with %s shares outstanding", supply.Dec())
	}

	shareA, err := mulDiv(amountAIn, supply, reserveA)
	if err != nil {
		return nil, nil, nil, err
	}
	shareB, err := mulDiv(amountBIn, supply, reserveB)
	if err != nil {
		return nil, nil, nil, err
	}
	liquidity = minInt(shareA, shareB)

	amountA, err = mulDiv(liquidity, reserveA, supply)
	if err != nil {
		return nil, nil, nil, err
	}
	amountB, err = mulDiv(liquidity, reserveB, supply)
	if err != nil {
		return nil, nil, nil, err
	}
	return amountA, amountB, liquidity, nil
}

// RemoveLiquidity burns liquidity shares held by caller and pays out the
// proportional reserves. kLast is refreshed from the new cached reserves.
func (p *Pool) RemoveLiquidity(caller common.Address, liquidity *uint256.Int) (amountA, amountB *uint256.Int, err error) {
	if isZero(liquidity) {
		return nil, nil, p.reject("remove_liquidity", caller, ErrInsufficientLiquidityBurned)
	}

	err = p.atomic(func() error {
		supply := p.shares.TotalSupply()
		if supply.IsZero() {
			return ErrNoLiquidity.Wrap("no shares outstanding")
		}

		// Take custody of the shares first: a caller short of shares fails
		// here, before the reserve arithmetic can underflow.
		if err := p.shares.Transfer(caller, p.address, liquidity); err != nil {
			return fmt.Errorf("take shares: %w", err)
		}

		reserveA, reserveB := &p.state.reserves[AssetA], &p.state.reserves[AssetB]
		var err error
		amountA, err = mulDiv(liquidity, reserveA, supply)
		if err != nil {
			return err
		}
		amountB, err = mulDiv(liquidity, reserveB, supply)
		if err != nil {
			return err
		}

		reserveA.Sub(reserveA, amountA)
		reserveB.Sub(reserveB, amountB)
		kLast, err := mul(reserveA, reserveB)
		if err != nil {
			return err
		}
		p.state.kLast = *kLast

		if err := p.ledgers[AssetA].Transfer(p.address, caller, amountA); err != nil {
			return fmt.Errorf("push %s: %w", p.tokens[AssetA].Hex(), err)
		}
		if err := p.ledgers[AssetB].Transfer(p.address, caller, amountB); err != nil {
			return fmt.Errorf("push %s: %w", p.tokens[AssetB].Hex(), err)
		}
		if err := p.shares.Burn(p.address, liquidity); err != nil {
			return fmt.Errorf("burn shares: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, p.reject("remove_liquidity", caller, err)
	}

	p.emit(model.EventRemoveLiquidity, model.RemoveLiquidityEventData{
		Sender:    caller.Hex(),
		AmountA:   amountA.Dec(),
		AmountB:   amountB.Dec(),
		Liquidity: liquidity.Dec(),
	})
	p.metrics.ObserveLiquidity("remove")
	p.logger.Debug("remove liquidity",
		zap.String("caller", caller.Hex()),
		zap.String("amount_a", amountA.Dec()),
		zap.String("amount_b", amountB.Dec()),
		zap.String("liquidity", liquidity.Dec()),
	)
	return amountA, amountB, nil
}
