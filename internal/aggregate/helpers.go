package aggregate

import "math/big"

const ratioScale = 18

func formatTokenAmount(value *big.Int, decimals uint8) string {
	if value == nil {
		return "0"
	}
	if decimals == 0 {
		return value.String()
	}
	sign := value.Sign()
	abs := new(big.Int).Abs(value)
	rat := new(big.Rat).SetFrac(abs, pow10(decimals))
	text := rat.FloatString(int(decimals))
	if sign < 0 {
		return "-" + text
	}
	return text
}

// computePrice returns units of B per unit of A with decimals applied:
// (reserveB / 10^decimalsB) / (reserveA / 10^decimalsA).
func computePrice(reserveA, reserveB *big.Int, decimalsA, decimalsB uint8) string {
	if reserveA == nil || reserveA.Sign() == 0 || reserveB == nil {
		return ""
	}
	num := new(big.Int).Mul(reserveB, pow10(decimalsA))
	den := new(big.Int).Mul(reserveA, pow10(decimalsB))
	return computeRateFromInt(num, den)
}

func computeRateFromInt(num *big.Int, den *big.Int) string {
	if num == nil || den == nil || den.Sign() == 0 {
		return ""
	}
	rat := new(big.Rat).SetFrac(num, den)
	return rat.FloatString(ratioScale)
}

func pow10(decimals uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
}
