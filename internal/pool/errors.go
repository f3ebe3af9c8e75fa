package pool

import (
	"errors"
	"fmt"

	errorsmod "cosmossdk.io/errors"
)

// Codespace is the error codespace for pool failures.
const Codespace = "amm"

// Pool failure kinds. Every rejected call returns one of these, possibly wrapped.
var (
	ErrInvalidAsset                = errorsmod.Register(Codespace, 2, "invalid asset")
	ErrIdenticalAssets             = errorsmod.Register(Codespace, 3, "identical assets")
	ErrInvalidTokenIn              = errorsmod.Register(Codespace, 4, "invalid token in")
	ErrInvalidTokenOut             = errorsmod.Register(Codespace, 5, "invalid token out")
	ErrIdenticalAddress            = errorsmod.Register(Codespace, 6, "identical address")
	ErrInsufficientInputAmount     = errorsmod.Register(Codespace, 7, "insufficient input amount")
	ErrInsufficientOutputAmount    = errorsmod.Register(Codespace, 8, "insufficient output amount")
	ErrInsufficientLiquidityMinted = errorsmod.Register(Codespace, 9, "insufficient liquidity minted")
	ErrInsufficientLiquidityBurned = errorsmod.Register(Codespace, 10, "insufficient liquidity burned")
	ErrNoLiquidity                 = errorsmod.Register(Codespace, 11, "no liquidity")
	ErrOverflow                    = errorsmod.Register(Codespace, 12, "arithmetic overflow")
)

var kinds = []struct {
	err  *errorsmod.Error
	name string
}{
	{ErrInvalidAsset, "InvalidAsset"},
	{ErrIdenticalAssets, "IdenticalAssets"},
	{ErrInvalidTokenIn, "InvalidTokenIn"},
	{ErrInvalidTokenOut, "InvalidTokenOut"},
	{ErrIdenticalAddress, "IdenticalAddress"},
	{ErrInsufficientInputAmount, "InsufficientInputAmount"},
	{ErrInsufficientOutputAmount, "InsufficientOutputAmount"},
	{ErrInsufficientLiquidityMinted, "InsufficientLiquidityMinted"},
	{ErrInsufficientLiquidityBurned, "InsufficientLiquidityBurned"},
	{ErrNoLiquidity, "NoLiquidity"},
	{ErrOverflow, "Overflow"},
}

// Kind names the failure kind of err. Errors registered outside this package
// are named by codespace and code.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	codespace, code, _ := errorsmod.ABCIInfo(err, false)
	return fmt.Sprintf("%s/%d", codespace, code)
}
