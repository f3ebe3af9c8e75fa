package evmlog

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
)

func TestRecordFromLog(t *testing.T) {
	log := types.Log{
		Address:     testPool,
		Topics:      []common.Hash{common.HexToHash("0x01"), common.HexToHash("0x02")},
		Data:        []byte{0xde, 0xad},
		BlockNumber: 12,
		TxHash:      common.HexToHash("0x0c"),
		TxIndex:     3,
		BlockHash:   common.HexToHash("0x0b"),
		Index:       4,
		Removed:     true,
	}

	record := RecordFromLog(31337, log, 1700000000)
	require.Equal(t, uint64(31337), record.ChainID)
	require.Equal(t, uint64(12), record.BlockNumber)
	require.Equal(t, uint64(3), record.TxIndex)
	require.Equal(t, uint64(4), record.LogIndex)
	require.Equal(t, testPool.Hex(), record.Address)
	require.Equal(t, common.HexToHash("0x01").Hex(), record.Topic0())
	require.Len(t, record.Topics, 2)
	require.Equal(t, "0xdead", record.Data)
	require.True(t, record.Removed)
	require.Equal(t, uint64(1700000000), record.Timestamp)
	require.Empty(t, record.IngestedAt)
}
