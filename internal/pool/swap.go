package pool

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"ammPool/internal/model"
)

// Swap sells amountIn of tokenIn for tokenOut. The output is priced against
// kLast, the constant fixed at the last liquidity event, and the current
// ledger balances of the pool:
//
//	amountOut = reserveOut - kLast/(reserveIn+amountIn)
//
// kLast is not refreshed here, so consecutive swaps price against the same
// anchor. The caller must have approved the pool for amountIn.
func (p *Pool) Swap(caller, tokenIn, tokenOut common.Address, amountIn *uint256.Int) (*uint256.Int, error) {
	in, out, err := p.swapSides(tokenIn, tokenOut, amountIn)
	if err != nil {
		return nil, p.reject("swap", caller, err)
	}

	var amountOutValue *uint256.Int
	err = p.atomic(func() error {
		amountOutValue, err = p.quote(in, out, amountIn)
		if err != nil {
			return err
		}
		if err := p.ledgers[in].TransferFrom(p.address, caller, p.address, amountIn); err != nil {
			return fmt.Errorf("pull %s: %w", p.tokens[in].Hex(), err)
		}
		if err := p.ledgers[out].Transfer(p.address, caller, amountOutValue); err != nil {
			return fmt.Errorf("push %s: %w", p.tokens[out].Hex(), err)
		}
		p.sync()
		return nil
	})
	if err != nil {
		return nil, p.reject("swap", caller, err)
	}

	p.emit(model.EventSwap, model.SwapEventData{
		Sender:    caller.Hex(),
		TokenIn:   tokenIn.Hex(),
		TokenOut:  tokenOut.Hex(),
		AmountIn:  amountIn.Dec(),
		AmountOut: amountOutValue.Dec(),
	})
	p.metrics.ObserveSwap(p.tokenHex[in], p.tokenHex[out], amountIn, amountOutValue)
	p.logger.Debug("swap",
		zap.String("caller", caller.Hex()),
		zap.String("token_in", tokenIn.Hex()),
		zap.String("amount_in", amountIn.Dec()),
		zap.String("amount_out", amountOutValue.Dec()),
	)
	return amountOutValue, nil
}

// Quote previews Swap without moving funds. It applies the same validation
// and formula against the current ledger balances.
func (p *Pool) Quote(tokenIn, tokenOut common.Address, amountIn *uint256.Int) (*uint256.Int, error) {
	in, out, err := p.swapSides(tokenIn, tokenOut, amountIn)
	if err != nil {
		return nil, err
	}
	return p.quote(in, out, amountIn)
}

func (p *Pool) swapSides(tokenIn, tokenOut common.Address, amountIn *uint256.Int) (Asset, Asset, error) {
	in, ok := p.resolve(tokenIn)
	if !ok {
		return 0, 0, ErrInvalidTokenIn.Wrapf("%s", tokenIn.Hex())
	}
	out, ok := p.resolve(tokenOut)
	if !ok {
		return 0, 0, ErrInvalidTokenOut.Wrapf("%s", tokenOut.Hex())
	}
	if in == out {
		return 0, 0, ErrIdenticalAddress.Wrapf("%s", tokenIn.Hex())
	}
	if isZero(amountIn) {
		return 0, 0, ErrInsufficientInputAmount
	}
	return in, out, nil
}

func (p *Pool) quote(in, out Asset, amountIn *uint256.Int) (*uint256.Int, error) {
	reserveIn := p.ledgers[in].BalanceOf(p.address)
	reserveOut := p.ledgers[out].BalanceOf(p.address)
	return amountOut(&p.state.kLast, reserveIn, reserveOut, amountIn)
}
