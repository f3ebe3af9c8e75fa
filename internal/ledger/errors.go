package ledger

import errorsmod "cosmossdk.io/errors"

// Codespace is the error codespace for ledger failures.
const Codespace = "ledger"

var (
	ErrUnknownAsset          = errorsmod.Register(Codespace, 2, "unknown asset")
	ErrAssetExists           = errorsmod.Register(Codespace, 3, "asset already deployed")
	ErrInsufficientBalance   = errorsmod.Register(Codespace, 4, "insufficient balance")
	ErrInsufficientAllowance = errorsmod.Register(Codespace, 5, "insufficient allowance")
	ErrSupplyOverflow        = errorsmod.Register(Codespace, 6, "supply overflow")
)
