package chain_test

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"

	"ammPool/internal/chain/chaintest"
)

func TestClientBasics(t *testing.T) {
	fake := chaintest.NewFakeEth(56, 1200)
	token := common.HexToAddress("0x00000000000000000000000000000000000000a1")
	fake.Deploy(token, nil)
	fake.SetBlockTime(1100, 1700000000)

	client, err := chaintest.Dial(fake)
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()
	chainID, err := client.GetChainID(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(56), chainID.Uint64())

	head, err := client.LatestBlockNumber(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(1200), head)

	ok, err := client.HasCode(ctx, token)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = client.HasCode(ctx, common.HexToAddress("0x00000000000000000000000000000000000000b1"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestBlockTimestampCached(t *testing.T) {
	fake := chaintest.NewFakeEth(1, 10)
	fake.SetBlockTime(7, 1700000070)

	client, err := chaintest.Dial(fake)
	require.NoError(t, err)
	defer client.Close()

	for i := 0; i < 3; i++ {
		ts, err := client.BlockTimestamp(context.Background(), 7)
		require.NoError(t, err)
		require.Equal(t, uint64(1700000070), ts)
	}
	require.Equal(t, 1, fake.CallCount("eth_getBlockByNumber"))
}

func TestFilterLogs(t *testing.T) {
	fake := chaintest.NewFakeEth(1, 100)
	pool := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	other := common.HexToAddress("0x00000000000000000000000000000000000000bb")
	topic := common.HexToHash("0x01")
	fake.AddLogs(
		types.Log{Address: pool, Topics: []common.Hash{topic}, Data: []byte{}, BlockNumber: 5, TxHash: common.HexToHash("0x05")},
		types.Log{Address: pool, Topics: []common.Hash{topic}, Data: []byte{}, BlockNumber: 50, TxHash: common.HexToHash("0x50")},
		types.Log{Address: other, Topics: []common.Hash{topic}, Data: []byte{}, BlockNumber: 6, TxHash: common.HexToHash("0x06")},
		types.Log{Address: pool, Topics: []common.Hash{common.HexToHash("0x02")}, Data: []byte{}, BlockNumber: 7, TxHash: common.HexToHash("0x07")},
	)

	client, err := chaintest.Dial(fake)
	require.NoError(t, err)
	defer client.Close()

	logs, err := client.FilterLogs(context.Background(), 1, 10, []common.Address{pool}, []common.Hash{topic})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, uint64(5), logs[0].BlockNumber)
	require.Equal(t, common.HexToHash("0x05"), logs[0].TxHash)
}
