package pool

import "github.com/holiman/uint256"

// mulDiv returns floor(x*y/d) with a checked 256-bit product.
func mulDiv(x, y, d *uint256.Int) (*uint256.Int, error) {
	if d.IsZero() {
		return nil, ErrNoLiquidity.Wrap("division by zero")
	}
	product, overflow := new(uint256.Int).MulOverflow(x, y)
	if overflow {
		return nil, ErrOverflow.Wrapf("%s * %s", x.Dec(), y.Dec())
	}
	return product.Div(product, d), nil
}

func mul(x, y *uint256.Int) (*uint256.Int, error) {
	product, overflow := new(uint256.Int).MulOverflow(x, y)
	if overflow {
		return nil, ErrOverflow.Wrapf("%s * %s", x.Dec(), y.Dec())
	}
	return product, nil
}

func add(x, y *uint256.Int) (*uint256.Int, error) {
	sum, overflow := new(uint256.Int).AddOverflow(x, y)
	if overflow {
		return nil, ErrOverflow.Wrapf("%s + %s", x.Dec(), y.Dec())
	}
	return sum, nil
}

func minInt(x, y *uint256.Int) *uint256.Int {
	if x.Lt(y) {
		return new(uint256.Int).Set(x)
	}
	return new(uint256.Int).Set(y)
}

// amountOut prices a swap against the anchored constant k:
// reserveOut - k/(reserveIn+amountIn), floored.
func amountOut(k, reserveIn, reserveOut, amountIn *uint256.Int) (*uint256.Int, error) {
	denominator, err := add(reserveIn, amountIn)
	if err != nil {
		return nil, err
	}
	if denominator.IsZero() {
		return nil, ErrInsufficientInputAmount
	}
	remaining := new(uint256.Int).Div(k, denominator)
	if !remaining.Lt(reserveOut) {
		return nil, ErrInsufficientOutputAmount.Wrapf("reserve out %s, remaining %s", reserveOut.Dec(), remaining.Dec())
	}
	return new(uint256.Int).Sub(reserveOut, remaining), nil
}

func isZero(x *uint256.Int) bool {
	return x == nil || x.IsZero()
}

// orZero treats a nil amount as zero.
func orZero(x *uint256.Int) *uint256.Int {
	if x == nil {
		return new(uint256.Int)
	}
	return x
}
