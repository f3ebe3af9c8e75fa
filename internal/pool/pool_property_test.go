package pool_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"ammPool/internal/pool"
)

func TestSwapProductBound(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.Uint64Range(1, 1<<40).Draw(t, "reserveA")
		b := rapid.Uint64Range(1, 1<<40).Draw(t, "reserveB")
		in := rapid.Uint64Range(1, 1<<40).Draw(t, "amountIn")
		aToB := rapid.Bool().Draw(t, "aToB")

		f := newFixture(t)
		f.fund(t, alice, a, b)
		f.fund(t, bob, in, in)
		_, _, _, err := f.pool.AddLiquidity(alice, u(a), u(b))
		require.NoError(t, err)

		tokenIn, tokenOut, reserveIn, reserveOut := tokenAAddr, tokenBAddr, a, b
		if !aToB {
			tokenIn, tokenOut, reserveIn, reserveOut = tokenBAddr, tokenAAddr, b, a
		}
		out, err := f.pool.Swap(bob, tokenIn, tokenOut, u(in))
		require.NoError(t, err)
		require.False(t, out.IsZero())

		denominator := new(uint256.Int).Add(u(reserveIn), u(in))
		product := new(uint256.Int).Mul(denominator, new(uint256.Int).Sub(u(reserveOut), out))
		k := f.pool.KLast()
		require.False(t, k.Lt(product), "product %s exceeds k %s", product.Dec(), k.Dec())
		require.True(t, new(uint256.Int).Sub(k, product).Lt(denominator))
		f.requireReservesMatchBalances(t)
	})
}

func TestSwapIdenticalTokensAlwaysRejected(t *testing.T) {
	f := newFixture(t)
	f.fund(t, alice, 1000, 1000)
	_, _, _, err := f.pool.AddLiquidity(alice, u(500), u(500))
	require.NoError(t, err)

	rapid.Check(t, func(t *rapid.T) {
		token := rapid.SampledFrom([]common.Address{tokenAAddr, tokenBAddr}).Draw(t, "token")
		amount := rapid.Uint64Range(0, 1000).Draw(t, "amount")

		_, err := f.pool.Swap(alice, token, token, u(amount))
		require.ErrorIs(t, err, pool.ErrIdenticalAddress)
		f.requireReserves(t, 500, 500)
	})
}

func TestAddLiquidityZeroSideAlwaysRejected(t *testing.T) {
	f := newFixture(t)
	f.fund(t, alice, 1000, 1000)

	rapid.Check(t, func(t *rapid.T) {
		amount := rapid.Uint64Range(0, 1000).Draw(t, "amount")
		zeroA := rapid.Bool().Draw(t, "zeroA")

		amountA, amountB := u(0), u(amount)
		if !zeroA {
			amountA, amountB = u(amount), u(0)
		}
		_, _, _, err := f.pool.AddLiquidity(alice, amountA, amountB)
		require.ErrorIs(t, err, pool.ErrInsufficientInputAmount)
		require.True(t, f.pool.TotalSupply().IsZero())
	})
}

func TestAddThenRemoveNeverProfits(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.Uint64Range(1, 1<<32).Draw(t, "seedA")
		b := rapid.Uint64Range(1, 1<<32).Draw(t, "seedB")
		x := rapid.Uint64Range(1, 1<<32).Draw(t, "depositA")
		y := rapid.Uint64Range(1, 1<<32).Draw(t, "depositB")

		f := newFixture(t)
		f.fund(t, alice, a, b)
		f.fund(t, bob, x, y)
		_, _, _, err := f.pool.AddLiquidity(alice, u(a), u(b))
		require.NoError(t, err)

		amountA, amountB, liquidity, err := f.pool.AddLiquidity(bob, u(x), u(y))
		if err != nil {
			require.ErrorIs(t, err, pool.ErrInsufficientLiquidityMinted)
			return
		}
		require.False(t, amountA.Gt(u(x)))
		require.False(t, amountB.Gt(u(y)))

		outA, outB, err := f.pool.RemoveLiquidity(bob, liquidity)
		require.NoError(t, err)
		require.False(t, outA.Gt(amountA), "withdrew %s A after depositing %s", outA.Dec(), amountA.Dec())
		require.False(t, outB.Gt(amountB), "withdrew %s B after depositing %s", outB.Dec(), amountB.Dec())
		require.True(t, f.pool.BalanceOf(bob).IsZero())
		f.requireReservesMatchBalances(t)
	})
}

func TestReservesTrackBalances(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		f := newFixture(t)
		f.fund(t, alice, 1<<40, 1<<40)
		f.fund(t, bob, 1<<40, 1<<40)
		callers := []common.Address{alice, bob}

		steps := rapid.IntRange(1, 30).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			caller := rapid.SampledFrom(callers).Draw(t, "caller")
			switch rapid.IntRange(0, 2).Draw(t, "op") {
			case 0:
				amountA := rapid.Uint64Range(0, 1<<20).Draw(t, "amountA")
				amountB := rapid.Uint64Range(0, 1<<20).Draw(t, "amountB")
				_, _, _, err := f.pool.AddLiquidity(caller, u(amountA), u(amountB))
				if err == nil {
					reserveA, reserveB := f.pool.GetReserves()
					require.True(t, f.pool.KLast().Eq(new(uint256.Int).Mul(reserveA, reserveB)))
				}
			case 1:
				held := f.pool.BalanceOf(caller).Uint64()
				liquidity := rapid.Uint64Range(0, held+1).Draw(t, "liquidity")
				_, _, err := f.pool.RemoveLiquidity(caller, u(liquidity))
				if liquidity > held && held > 0 {
					require.Error(t, err)
				}
				if err == nil {
					reserveA, reserveB := f.pool.GetReserves()
					require.True(t, f.pool.KLast().Eq(new(uint256.Int).Mul(reserveA, reserveB)))
				}
			case 2:
				tokenIn, tokenOut := tokenAAddr, tokenBAddr
				if rapid.Bool().Draw(t, "bToA") {
					tokenIn, tokenOut = tokenBAddr, tokenAAddr
				}
				amountIn := rapid.Uint64Range(0, 1<<20).Draw(t, "amountIn")
				kBefore := f.pool.KLast()
				_, _ = f.pool.Swap(caller, tokenIn, tokenOut, u(amountIn))
				require.True(t, kBefore.Eq(f.pool.KLast()))
			}
			f.requireReservesMatchBalances(t)
		}
	})
}
