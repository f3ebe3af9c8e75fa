package indexer

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"

	"ammPool/internal/chain/chaintest"
	"ammPool/internal/model"
)

type memoryStorage struct {
	batches [][]model.LogRecord
}

func (m *memoryStorage) PutLogBatch(records []model.LogRecord) error {
	m.batches = append(m.batches, records)
	return nil
}

func (m *memoryStorage) all() []model.LogRecord {
	var out []model.LogRecord
	for _, batch := range m.batches {
		out = append(out, batch...)
	}
	return out
}

func TestRunnerFetchesPoolLogs(t *testing.T) {
	topics, err := DefaultTopic0()
	require.NoError(t, err)
	require.Len(t, topics, 3)

	pool := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	fake := chaintest.NewFakeEth(31337, 10)
	fake.SetBlockTime(3, 1700000030)
	fake.SetBlockTime(8, 1700000080)
	fake.AddLogs(
		types.Log{Address: pool, Topics: []common.Hash{topics[0]}, Data: []byte{0x01}, BlockNumber: 3, TxHash: common.HexToHash("0x03"), Index: 0},
		// duplicate delivery is dropped
		types.Log{Address: pool, Topics: []common.Hash{topics[0]}, Data: []byte{0x01}, BlockNumber: 3, TxHash: common.HexToHash("0x03"), Index: 0},
		types.Log{Address: pool, Topics: []common.Hash{topics[1]}, Data: []byte{}, BlockNumber: 8, TxHash: common.HexToHash("0x08"), Index: 2},
		types.Log{Address: pool, Topics: []common.Hash{common.HexToHash("0xdead")}, Data: []byte{}, BlockNumber: 9, TxHash: common.HexToHash("0x09")},
	)

	client, err := chaintest.Dial(fake)
	require.NoError(t, err)
	defer client.Close()

	cpPath := filepath.Join(t.TempDir(), "cp.json")
	sink := &memoryStorage{}
	runner := NewRunner(RunConfig{
		FromBlock:         1,
		Addresses:         []common.Address{pool},
		BatchSize:         4,
		CheckpointPath:    cpPath,
		CheckpointEnabled: true,
	}, client, sink, nil)
	require.NoError(t, runner.Run(context.Background()))

	require.Len(t, sink.batches, 3)
	records := sink.all()
	require.Len(t, records, 2)
	require.Equal(t, uint64(31337), records[0].ChainID)
	require.Equal(t, uint64(3), records[0].BlockNumber)
	require.Equal(t, uint64(1700000030), records[0].Timestamp)
	require.Equal(t, "0x01", records[0].Data)
	require.Equal(t, topics[1].Hex(), records[1].Topic0())
	require.Equal(t, uint64(2), records[1].LogIndex)

	cp, ok, err := NewCheckpointStore(cpPath, true).Load()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(10), cp.LastProcessed)

	// a second run resumes past the head and does nothing
	again := &memoryStorage{}
	require.NoError(t, NewRunner(RunConfig{
		FromBlock:         1,
		Addresses:         []common.Address{pool},
		BatchSize:         4,
		CheckpointPath:    cpPath,
		CheckpointEnabled: true,
	}, client, again, nil).Run(context.Background()))
	require.Empty(t, again.batches)
}

func TestRunnerRequiresAddress(t *testing.T) {
	fake := chaintest.NewFakeEth(1, 1)
	client, err := chaintest.Dial(fake)
	require.NoError(t, err)
	defer client.Close()

	err = NewRunner(RunConfig{BatchSize: 1}, client, &memoryStorage{}, nil).Run(context.Background())
	require.ErrorContains(t, err, "pool address")
}
