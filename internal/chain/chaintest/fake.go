// Package chaintest serves a minimal in-process eth JSON-RPC backend for tests.
package chaintest

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	gethrpc "github.com/ethereum/go-ethereum/rpc"

	"ammPool/internal/chain"
)

// CallHandler answers eth_call for one contract.
type CallHandler func(input []byte, block gethrpc.BlockNumberOrHash) ([]byte, error)

// FakeEth implements the eth_* methods the chain client uses.
type FakeEth struct {
	mu        sync.Mutex
	chainID   uint64
	head      uint64
	code      map[common.Address][]byte
	contracts map[common.Address]CallHandler
	logs      []types.Log
	times     map[uint64]uint64
	calls     map[string]int
}

func NewFakeEth(chainID, head uint64) *FakeEth {
	return &FakeEth{
		chainID:   chainID,
		head:      head,
		code:      make(map[common.Address][]byte),
		contracts: make(map[common.Address]CallHandler),
		times:     make(map[uint64]uint64),
		calls:     make(map[string]int),
	}
}

// Deploy gives address non-empty code and an optional call handler.
func (f *FakeEth) Deploy(address common.Address, handler CallHandler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.code[address] = []byte{0x60, 0x80}
	if handler != nil {
		f.contracts[address] = handler
	}
}

// AddLogs appends logs served by eth_getLogs.
func (f *FakeEth) AddLogs(logs ...types.Log) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, logs...)
}

// SetBlockTime sets the header timestamp of a block.
func (f *FakeEth) SetBlockTime(number, ts uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.times[number] = ts
}

// CallCount returns how many times an eth_ method was served.
func (f *FakeEth) CallCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *FakeEth) count(method string) {
	f.mu.Lock()
	f.calls[method]++
	f.mu.Unlock()
}

func (f *FakeEth) ChainId(ctx context.Context) (*hexutil.Big, error) {
	f.count("eth_chainId")
	return (*hexutil.Big)(new(big.Int).SetUint64(f.chainID)), nil
}

func (f *FakeEth) BlockNumber(ctx context.Context) (hexutil.Uint64, error) {
	f.count("eth_blockNumber")
	return hexutil.Uint64(f.head), nil
}

func (f *FakeEth) GetCode(ctx context.Context, address common.Address, block gethrpc.BlockNumberOrHash) (hexutil.Bytes, error) {
	f.count("eth_getCode")
	f.mu.Lock()
	defer f.mu.Unlock()
	return hexutil.Bytes(f.code[address]), nil
}

// CallArgs is the subset of eth_call arguments the fake reads.
type CallArgs struct {
	To    *common.Address `json:"to"`
	Input hexutil.Bytes   `json:"input"`
	Data  hexutil.Bytes   `json:"data"`
}

func (f *FakeEth) Call(ctx context.Context, args CallArgs, block gethrpc.BlockNumberOrHash) (hexutil.Bytes, error) {
	f.count("eth_call")
	if args.To == nil {
		return nil, fmt.Errorf("call without target")
	}
	f.mu.Lock()
	handler, ok := f.contracts[*args.To]
	f.mu.Unlock()
	if !ok {
		return hexutil.Bytes{}, nil
	}
	input := args.Input
	if len(input) == 0 {
		input = args.Data
	}
	return handler(input, block)
}

// FilterArgs is the subset of eth_getLogs arguments the fake reads.
type FilterArgs struct {
	FromBlock *hexutil.Big     `json:"fromBlock"`
	ToBlock   *hexutil.Big     `json:"toBlock"`
	Address   []common.Address `json:"address"`
	Topics    [][]common.Hash  `json:"topics"`
}

func (f *FakeEth) GetLogs(ctx context.Context, crit FilterArgs) ([]types.Log, error) {
	f.count("eth_getLogs")
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]types.Log, 0)
	for _, log := range f.logs {
		if crit.FromBlock != nil && log.BlockNumber < crit.FromBlock.ToInt().Uint64() {
			continue
		}
		if crit.ToBlock != nil && log.BlockNumber > crit.ToBlock.ToInt().Uint64() {
			continue
		}
		if len(crit.Address) > 0 && !containsAddress(crit.Address, log.Address) {
			continue
		}
		if len(crit.Topics) > 0 && len(crit.Topics[0]) > 0 {
			if len(log.Topics) == 0 || !containsHash(crit.Topics[0], log.Topics[0]) {
				continue
			}
		}
		out = append(out, log)
	}
	return out, nil
}

func (f *FakeEth) GetBlockByNumber(ctx context.Context, number gethrpc.BlockNumber, fullTx bool) (*types.Header, error) {
	f.count("eth_getBlockByNumber")
	f.mu.Lock()
	defer f.mu.Unlock()

	n := f.head
	if number >= 0 {
		n = uint64(number)
	}
	return &types.Header{
		Number:     new(big.Int).SetUint64(n),
		Time:       f.times[n],
		Difficulty: new(big.Int),
		Extra:      []byte{},
	}, nil
}

// Dial serves fake in-process and returns a chain client connected to it.
func Dial(fake *FakeEth) (*chain.Client, error) {
	srv := gethrpc.NewServer()
	if err := srv.RegisterName("eth", fake); err != nil {
		return nil, fmt.Errorf("register rpc service: %w", err)
	}
	return chain.NewClientFromRPC(gethrpc.DialInProc(srv)), nil
}

func containsAddress(list []common.Address, address common.Address) bool {
	for _, item := range list {
		if item == address {
			return true
		}
	}
	return false
}

func containsHash(list []common.Hash, hash common.Hash) bool {
	for _, item := range list {
		if item == hash {
			return true
		}
	}
	return false
}
