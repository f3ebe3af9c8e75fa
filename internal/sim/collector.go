package sim

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"ammPool/internal/model"
)

// collector implements pool.EventSink. It stamps each event with the
// synthetic block and transaction of the operation being applied.
type collector struct {
	chainID   uint64
	enabled   bool
	block     uint64
	timestamp uint64
	txHash    common.Hash
	logIndex  uint64
	events    []model.TypedEvent
}

func (c *collector) begin(block, timestamp uint64, txHash common.Hash) {
	c.block = block
	c.timestamp = timestamp
	c.txHash = txHash
	c.logIndex = 0
}

func (c *collector) Emit(event model.TypedEvent) {
	if !c.enabled {
		return
	}
	event.ChainID = c.chainID
	event.BlockNumber = c.block
	event.BlockHash = blockHash(c.block).Hex()
	event.TxHash = c.txHash.Hex()
	event.LogIndex = c.logIndex
	event.Timestamp = c.timestamp
	c.logIndex++
	c.events = append(c.events, event)
}

func (c *collector) drain() []model.TypedEvent {
	out := c.events
	c.events = nil
	return out
}

func blockHash(number uint64) common.Hash {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], number)
	return crypto.Keccak256Hash(buf[:])
}

func txHash(index uint64, raw []byte) common.Hash {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], index)
	return crypto.Keccak256Hash(buf[:], raw)
}
