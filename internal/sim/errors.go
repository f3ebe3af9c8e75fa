package sim

import (
	"errors"

	errorsmod "cosmossdk.io/errors"

	"ammPool/internal/ledger"
	"ammPool/internal/model"
	"ammPool/internal/pool"
)

// Codespace is the error codespace for malformed script operations.
const Codespace = "sim"

var (
	ErrInvalidOperation = errorsmod.Register(Codespace, 2, "invalid operation")
	ErrStateMismatch    = errorsmod.Register(Codespace, 3, "replayed state does not match checkpoint")
)

var ledgerKinds = []struct {
	err  *errorsmod.Error
	name string
}{
	{ledger.ErrUnknownAsset, "UnknownAsset"},
	{ledger.ErrInsufficientBalance, "InsufficientBalance"},
	{ledger.ErrInsufficientAllowance, "InsufficientAllowance"},
	{ledger.ErrSupplyOverflow, "SupplyOverflow"},
}

// kindOf names the failure of one operation.
func kindOf(err error) string {
	if errors.Is(err, ErrInvalidOperation) {
		return "InvalidOperation"
	}
	for _, k := range ledgerKinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return pool.Kind(err)
}

func operationError(index, block uint64, op model.Operation, err error) model.OperationError {
	codespace, code := errorCode(err)
	return model.OperationError{
		Index:       index,
		BlockNumber: block,
		Op:          op.Op,
		Caller:      op.Caller,
		Kind:        kindOf(err),
		Codespace:   codespace,
		Code:        code,
		Error:       err.Error(),
	}
}

// errorCode finds the registered error anywhere in err's chain, including
// through fmt wrapping that ABCIInfo does not follow.
func errorCode(err error) (string, uint32) {
	var coded *errorsmod.Error
	if errors.As(err, &coded) {
		return coded.Codespace(), coded.ABCICode()
	}
	codespace, code, _ := errorsmod.ABCIInfo(err, false)
	return codespace, code
}
