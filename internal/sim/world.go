package sim

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"ammPool/internal/indexer"
	"ammPool/internal/ledger"
	"ammPool/internal/metrics"
	"ammPool/internal/model"
	"ammPool/internal/pool"
)

// World is the in-memory chain a script runs against: one bank holding both
// assets and the LP-share ledger, and the pool built over it.
type World struct {
	Bank   *ledger.Bank
	TokenA *ledger.Token
	TokenB *ledger.Token
	Pool   *pool.Pool
}

// NewWorld deploys both assets and an empty pool.
func NewWorld(cfg Config, events pool.EventSink, m *metrics.PoolMetrics, logger *zap.Logger) (*World, error) {
	bank := ledger.NewBank()
	tokenA, err := bank.Deploy(cfg.TokenA, cfg.TokenAMeta)
	if err != nil {
		return nil, fmt.Errorf("deploy token a: %w", err)
	}
	tokenB, err := bank.Deploy(cfg.TokenB, cfg.TokenBMeta)
	if err != nil {
		return nil, fmt.Errorf("deploy token b: %w", err)
	}
	shares, err := bank.Deploy(cfg.PoolAddress, model.TokenMeta{Symbol: "AMM-LP", Name: "AMM Pool Shares", Decimals: 18})
	if err != nil {
		return nil, fmt.Errorf("deploy share ledger: %w", err)
	}

	p, err := pool.New(pool.Config{
		Address: cfg.PoolAddress,
		TokenA:  cfg.TokenA,
		TokenB:  cfg.TokenB,
		Events:  events,
		Metrics: m,
	}, bank, shares, logger)
	if err != nil {
		return nil, err
	}
	bank.Commit()

	return &World{Bank: bank, TokenA: tokenA, TokenB: tokenB, Pool: p}, nil
}

// Apply executes one operation. A failed operation leaves no ledger writes.
func (w *World) Apply(op model.Operation) error {
	defer w.Bank.Commit()

	switch op.Op {
	case model.OpMint:
		token, err := w.token(op.Asset)
		if err != nil {
			return err
		}
		to, err := addressField("to", op.To)
		if err != nil {
			return err
		}
		amount, err := amountField("amount", op.Amount)
		if err != nil {
			return err
		}
		return token.Mint(to, amount)

	case model.OpApprove:
		token, err := w.token(op.Asset)
		if err != nil {
			return err
		}
		owner, err := addressField("caller", op.Caller)
		if err != nil {
			return err
		}
		spender := w.Pool.Address()
		if op.Spender != "" {
			if spender, err = addressField("spender", op.Spender); err != nil {
				return err
			}
		}
		amount, err := amountField("amount", op.Amount)
		if err != nil {
			return err
		}
		return token.Approve(owner, spender, amount)

	case model.OpAddLiquidity:
		caller, err := addressField("caller", op.Caller)
		if err != nil {
			return err
		}
		amountA, err := amountField("amount_a", op.AmountA)
		if err != nil {
			return err
		}
		amountB, err := amountField("amount_b", op.AmountB)
		if err != nil {
			return err
		}
		_, _, _, err = w.Pool.AddLiquidity(caller, amountA, amountB)
		return err

	case model.OpRemoveLiquidity:
		caller, err := addressField("caller", op.Caller)
		if err != nil {
			return err
		}
		liquidity, err := amountField("liquidity", op.Liquidity)
		if err != nil {
			return err
		}
		_, _, err = w.Pool.RemoveLiquidity(caller, liquidity)
		return err

	case model.OpSwap:
		caller, err := addressField("caller", op.Caller)
		if err != nil {
			return err
		}
		tokenIn, err := w.assetAddress(op.TokenIn)
		if err != nil {
			return err
		}
		tokenOut, err := w.assetAddress(op.TokenOut)
		if err != nil {
			return err
		}
		amountIn, err := amountField("amount_in", op.AmountIn)
		if err != nil {
			return err
		}
		_, err = w.Pool.Swap(caller, tokenIn, tokenOut, amountIn)
		return err

	case model.OpTransferShares:
		from, err := addressField("caller", op.Caller)
		if err != nil {
			return err
		}
		to, err := addressField("to", op.To)
		if err != nil {
			return err
		}
		amount, err := amountField("amount", op.Amount)
		if err != nil {
			return err
		}
		return w.Pool.Transfer(from, to, amount)

	case model.OpApproveShares:
		owner, err := addressField("caller", op.Caller)
		if err != nil {
			return err
		}
		spender, err := addressField("spender", op.Spender)
		if err != nil {
			return err
		}
		amount, err := amountField("amount", op.Amount)
		if err != nil {
			return err
		}
		return w.Pool.Approve(owner, spender, amount)

	default:
		return ErrInvalidOperation.Wrapf("unknown op %q", op.Op)
	}
}

// assetAddress resolves "A", "B" or a hex address. Unknown addresses are
// passed through so the pool can reject them itself.
func (w *World) assetAddress(ref string) (common.Address, error) {
	switch strings.ToUpper(strings.TrimSpace(ref)) {
	case "A", "TOKEN_A":
		return w.TokenA.Address(), nil
	case "B", "TOKEN_B":
		return w.TokenB.Address(), nil
	}
	return addressField("asset", ref)
}

func (w *World) token(ref string) (*ledger.Token, error) {
	addr, err := w.assetAddress(ref)
	if err != nil {
		return nil, err
	}
	token, ok := w.Bank.Token(addr)
	if !ok || addr == w.Pool.Address() {
		return nil, ledger.ErrUnknownAsset.Wrapf("%s", ref)
	}
	return token, nil
}

func addressField(field, value string) (common.Address, error) {
	addr, err := indexer.ParseAddress(value)
	if err != nil {
		return common.Address{}, ErrInvalidOperation.Wrapf("%s: %v", field, err)
	}
	return addr, nil
}

func amountField(field, value string) (*uint256.Int, error) {
	v, err := indexer.ParseAmount(value)
	if err != nil {
		return nil, ErrInvalidOperation.Wrapf("%s: %v", field, err)
	}
	return v, nil
}
