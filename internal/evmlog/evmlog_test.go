package evmlog

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ammPool/internal/chain/chaintest"
	"ammPool/internal/model"
)

var (
	testPool   = common.HexToAddress("0x1111111111111111111111111111111111111111")
	testTokenA = common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	testTokenB = common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	testSender = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

func staticContext() DecodeContext {
	cache := NewPoolMetaCache()
	cache.Set(testPool, model.PoolMeta{TokenA: testTokenA.Hex(), TokenB: testTokenB.Hex()})
	return DecodeContext{PoolMetaCache: cache, Logger: zap.NewNop()}
}

func newEncoderDecoder(t *testing.T) (*Encoder, *PoolDecoder) {
	t.Helper()
	encoder, err := NewEncoder()
	require.NoError(t, err)
	decoder, err := NewPoolDecoder(DecoderConfig{})
	require.NoError(t, err)
	return encoder, decoder
}

func TestSwapLogLayout(t *testing.T) {
	encoder, decoder := newEncoderDecoder(t)
	poolABI, err := PoolABI()
	require.NoError(t, err)

	event := model.TypedEvent{
		ChainID:     31337,
		BlockNumber: 12,
		TxHash:      "0x01",
		LogIndex:    0,
		Address:     testPool.Hex(),
		EventName:   model.EventSwap,
		Timestamp:   1700000012,
		Decoded: model.SwapEventData{
			Sender:    testSender.Hex(),
			TokenIn:   testTokenA.Hex(),
			TokenOut:  testTokenB.Hex(),
			AmountIn:  "100",
			AmountOut: "200",
		},
	}

	record, err := encoder.Encode(event)
	require.NoError(t, err)
	require.Len(t, record.Topics, 4)
	require.Equal(t, poolABI.Events["Swap"].ID.Hex(), record.Topic0())
	require.Equal(t, common.BytesToHash(testTokenA.Bytes()).Hex(), record.Topics[2])
	require.Equal(t, uint64(12), record.BlockNumber)
	require.Equal(t, uint64(1700000012), record.Timestamp)
	require.True(t, decoder.CanDecode(record.Topic0()))

	decoded, err := decoder.Decode(record, staticContext())
	require.NoError(t, err)
	require.Equal(t, model.EventSwap, decoded.EventName)
	require.Equal(t, event.Decoded, decoded.Decoded)
	require.Equal(t, testTokenA.Hex(), decoded.PoolMeta.TokenA)
	require.Equal(t, record.Data, decoded.Raw.Data)
}

func TestLiquidityLogs(t *testing.T) {
	encoder, decoder := newEncoderDecoder(t)

	add := model.AddLiquidityEventData{Sender: testSender.Hex(), AmountA: "100", AmountB: "400", Liquidity: "200"}
	record, err := encoder.Encode(model.TypedEvent{Address: testPool.Hex(), EventName: model.EventAddLiquidity, Decoded: add})
	require.NoError(t, err)
	require.Len(t, record.Topics, 2)

	event, err := decoder.Decode(record, staticContext())
	require.NoError(t, err)
	require.Equal(t, add, event.Decoded)

	// values above 2^64 survive encoding
	remove := model.RemoveLiquidityEventData{Sender: testSender.Hex(), AmountA: "340282366920938463463374607431768211456", AmountB: "1", Liquidity: "18446744073709551616"}
	record, err = encoder.Encode(model.TypedEvent{Address: testPool.Hex(), EventName: model.EventRemoveLiquidity, Decoded: remove})
	require.NoError(t, err)

	event, err = decoder.Decode(record, staticContext())
	require.NoError(t, err)
	require.Equal(t, model.EventRemoveLiquidity, event.EventName)
	require.Equal(t, remove, event.Decoded)
}

func TestEncodeRejectsBadPayloads(t *testing.T) {
	encoder, _ := newEncoderDecoder(t)

	_, err := encoder.Encode(model.TypedEvent{EventName: "Collect"})
	require.Error(t, err)

	_, err = encoder.Encode(model.TypedEvent{EventName: model.EventSwap, Decoded: model.AddLiquidityEventData{}})
	require.Error(t, err)

	_, err = encoder.Encode(model.TypedEvent{EventName: model.EventAddLiquidity, Decoded: model.AddLiquidityEventData{
		Sender: testSender.Hex(), AmountA: "-1", AmountB: "1", Liquidity: "1",
	}})
	require.Error(t, err)

	_, err = encoder.Encode(model.TypedEvent{EventName: model.EventAddLiquidity, Decoded: model.AddLiquidityEventData{
		Sender: "bob", AmountA: "1", AmountB: "1", Liquidity: "1",
	}})
	require.Error(t, err)
}

func TestDecodeRejectsMalformedLogs(t *testing.T) {
	encoder, decoder := newEncoderDecoder(t)
	ctx := staticContext()

	_, err := decoder.Decode(model.LogRecord{Address: testPool.Hex()}, ctx)
	require.Error(t, err)

	_, err = decoder.Decode(model.LogRecord{Address: testPool.Hex(), Topics: []string{"0x1234"}}, ctx)
	require.Error(t, err)
	require.False(t, decoder.CanDecode("0x1234"))
	require.False(t, decoder.CanDecode(""))

	record, err := encoder.Encode(model.TypedEvent{Address: testPool.Hex(), EventName: model.EventAddLiquidity, Decoded: model.AddLiquidityEventData{
		Sender: testSender.Hex(), AmountA: "1", AmountB: "2", Liquidity: "3",
	}})
	require.NoError(t, err)

	truncated := record
	truncated.Data = record.Data[:len(record.Data)-64]
	_, err = decoder.Decode(truncated, ctx)
	require.Error(t, err)

	extraTopic := record
	extraTopic.Topics = append(append([]string{}, record.Topics...), record.Topics[1])
	_, err = decoder.Decode(extraTopic, ctx)
	require.Error(t, err)

	unknownPool := record
	unknownPool.Address = testSender.Hex()
	_, err = decoder.Decode(unknownPool, ctx)
	require.Error(t, err)
}

func TestTopic0Aliases(t *testing.T) {
	alias := "0x" + common.Bytes2Hex(bytes.Repeat([]byte{0x42}, 32))
	decoder, err := NewPoolDecoder(DecoderConfig{Topic0Map: map[string]string{alias: "mint"}})
	require.NoError(t, err)
	require.True(t, decoder.CanDecode(alias))

	_, err = NewPoolDecoder(DecoderConfig{Topic0Map: map[string]string{alias: "collect"}})
	require.Error(t, err)
}

// deployFakePool serves the pool views and the ERC20 views of both tokens.
func deployFakePool(t *testing.T, fake *chaintest.FakeEth) {
	t.Helper()
	poolABI, err := PoolABI()
	require.NoError(t, err)
	erc20, err := ERC20ABI()
	require.NoError(t, err)

	fake.Deploy(testPool, func(input []byte, block gethrpc.BlockNumberOrHash) ([]byte, error) {
		method, err := poolABI.MethodById(input)
		if err != nil {
			return nil, err
		}
		switch method.Name {
		case "getTokenA":
			return method.Outputs.Pack(testTokenA)
		case "getTokenB":
			return method.Outputs.Pack(testTokenB)
		case "getReserves":
			n, _ := block.Number()
			return method.Outputs.Pack(big.NewInt(int64(n)*10), big.NewInt(int64(n)*40))
		case "kLast":
			return method.Outputs.Pack(big.NewInt(400))
		}
		return nil, fmt.Errorf("unexpected method %s", method.Name)
	})

	token := func(symbol string, decimals uint8) chaintest.CallHandler {
		return func(input []byte, block gethrpc.BlockNumberOrHash) ([]byte, error) {
			method, err := erc20.MethodById(input)
			if err != nil {
				return nil, err
			}
			switch method.Name {
			case "decimals":
				return method.Outputs.Pack(decimals)
			case "symbol":
				return method.Outputs.Pack(symbol)
			case "name":
				return method.Outputs.Pack(symbol + " token")
			case "balanceOf":
				args, err := method.Inputs.Unpack(input[4:])
				if err != nil {
					return nil, err
				}
				if args[0].(common.Address) == testPool {
					return method.Outputs.Pack(big.NewInt(777))
				}
				return method.Outputs.Pack(big.NewInt(0))
			}
			return nil, fmt.Errorf("unexpected method %s", method.Name)
		}
	}
	fake.Deploy(testTokenA, token("AAA", 18))
	fake.Deploy(testTokenB, token("BBB", 6))
}

func TestDecodeFetchesPoolMeta(t *testing.T) {
	fake := chaintest.NewFakeEth(31337, 100)
	deployFakePool(t, fake)
	client, err := chaintest.Dial(fake)
	require.NoError(t, err)
	defer client.Close()

	encoder, decoder := newEncoderDecoder(t)
	record, err := encoder.Encode(model.TypedEvent{
		Address:     testPool.Hex(),
		BlockNumber: 5,
		EventName:   model.EventSwap,
		Decoded: model.SwapEventData{
			Sender: testSender.Hex(), TokenIn: testTokenB.Hex(), TokenOut: testTokenA.Hex(), AmountIn: "4", AmountOut: "1",
		},
	})
	require.NoError(t, err)

	ctx := DecodeContext{
		Context:         context.Background(),
		Chain:           client,
		PoolMetaCache:   NewPoolMetaCache(),
		TokenMetaCache:  NewTokenMetaCache(),
		Logger:          zap.NewNop(),
		IncludeReserves: true,
	}
	event, err := decoder.Decode(record, ctx)
	require.NoError(t, err)
	require.Equal(t, model.PoolMeta{
		TokenA:   testTokenA.Hex(),
		TokenB:   testTokenB.Hex(),
		ReserveA: "50",
		ReserveB: "200",
		KLast:    "400",
	}, event.PoolMeta)

	cached, ok := ctx.PoolMetaCache.Get(testPool)
	require.True(t, ok)
	require.Empty(t, cached.ReserveA)

	tokenMeta, ok := ctx.TokenMetaCache.Get(testTokenB)
	require.True(t, ok)
	require.Equal(t, "BBB", tokenMeta.Symbol)
	require.Equal(t, uint8(6), tokenMeta.Decimals)

	balance, err := FetchBalanceOf(context.Background(), client, testTokenA, testPool, nil)
	require.NoError(t, err)
	require.Equal(t, int64(777), balance.Int64())
}

func TestEventSignatures(t *testing.T) {
	poolABI, err := PoolABI()
	require.NoError(t, err)
	require.Equal(t, "Swap(address,address,address,uint256,uint256)", poolABI.Events["Swap"].Sig)
	require.Equal(t, "AddLiquidity(address,uint256,uint256,uint256)", poolABI.Events["AddLiquidity"].Sig)
	require.Equal(t, "RemoveLiquidity(address,uint256,uint256,uint256)", poolABI.Events["RemoveLiquidity"].Sig)
	require.Len(t, indexedArguments(poolABI.Events["Swap"].Inputs), 3)
}
