package evmlog

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"

	"ammPool/internal/model"
)

// Encoder turns pool events into EVM-style log records: indexed arguments in
// topics, the rest ABI-encoded in data.
type Encoder struct {
	poolABI abi.ABI
}

func NewEncoder() (*Encoder, error) {
	parsed, err := PoolABI()
	if err != nil {
		return nil, err
	}
	return &Encoder{poolABI: parsed}, nil
}

// Encode builds the LogRecord for event. Block and transaction fields are
// copied from event.
func (e *Encoder) Encode(event model.TypedEvent) (model.LogRecord, error) {
	abiEvent, ok := e.poolABI.Events[event.EventName]
	if !ok {
		return model.LogRecord{}, fmt.Errorf("unsupported event name: %s", event.EventName)
	}

	var (
		addresses []string
		values    []string
	)
	switch decoded := event.Decoded.(type) {
	case model.SwapEventData:
		addresses = []string{decoded.Sender, decoded.TokenIn, decoded.TokenOut}
		values = []string{decoded.AmountIn, decoded.AmountOut}
	case model.AddLiquidityEventData:
		addresses = []string{decoded.Sender}
		values = []string{decoded.AmountA, decoded.AmountB, decoded.Liquidity}
	case model.RemoveLiquidityEventData:
		addresses = []string{decoded.Sender}
		values = []string{decoded.AmountA, decoded.AmountB, decoded.Liquidity}
	default:
		return model.LogRecord{}, fmt.Errorf("unsupported payload %T for %s", event.Decoded, event.EventName)
	}

	indexed, err := hexAddresses(addresses...)
	if err != nil {
		return model.LogRecord{}, fmt.Errorf("%s: %w", event.EventName, err)
	}
	return e.build(event, abiEvent, indexed, values...)
}

func (e *Encoder) build(event model.TypedEvent, abiEvent abi.Event, indexed []common.Address, values ...string) (model.LogRecord, error) {
	if len(indexed) != len(indexedArguments(abiEvent.Inputs)) {
		return model.LogRecord{}, fmt.Errorf("%s: %d indexed arguments, got %d", abiEvent.Name, len(indexedArguments(abiEvent.Inputs)), len(indexed))
	}

	args := make([]interface{}, 0, len(values))
	for _, value := range values {
		amount, err := uint256.FromDecimal(value)
		if err != nil {
			return model.LogRecord{}, fmt.Errorf("%s: amount %q: %w", abiEvent.Name, value, err)
		}
		args = append(args, amount.ToBig())
	}
	data, err := abiEvent.Inputs.NonIndexed().Pack(args...)
	if err != nil {
		return model.LogRecord{}, fmt.Errorf("pack %s: %w", abiEvent.Name, err)
	}

	topics := make([]common.Hash, 0, len(indexed)+1)
	topics = append(topics, abiEvent.ID)
	for _, address := range indexed {
		topics = append(topics, common.BytesToHash(address.Bytes()))
	}

	log := types.Log{
		Address:     common.HexToAddress(event.Address),
		Topics:      topics,
		Data:        data,
		BlockNumber: event.BlockNumber,
		TxHash:      common.HexToHash(event.TxHash),
		BlockHash:   common.HexToHash(event.BlockHash),
		Index:       uint(event.LogIndex),
	}
	return RecordFromLog(event.ChainID, log, event.Timestamp), nil
}

func hexAddresses(inputs ...string) ([]common.Address, error) {
	out := make([]common.Address, 0, len(inputs))
	for _, input := range inputs {
		if !common.IsHexAddress(input) {
			return nil, fmt.Errorf("invalid address: %s", input)
		}
		out = append(out, common.HexToAddress(input))
	}
	return out, nil
}

// amountString renders an unpacked uint256 argument in decimal.
func amountString(value interface{}) (string, error) {
	amount, err := asBigInt(value)
	if err != nil {
		return "", err
	}
	if amount.Sign() < 0 || amount.BitLen() > 256 {
		return "", fmt.Errorf("amount out of range: %s", amount)
	}
	return amount.String(), nil
}
