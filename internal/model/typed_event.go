package model

import (
	"encoding/json"
	"fmt"
)

// TypedEvent is a pool event enriched with block and pool metadata.
type TypedEvent struct {
	ChainID     uint64      `json:"chain_id"`
	BlockNumber uint64      `json:"block_number"`
	BlockHash   string      `json:"block_hash"`
	TxHash      string      `json:"tx_hash"`
	LogIndex    uint64      `json:"log_index"`
	Address     string      `json:"address"`
	EventName   string      `json:"event_name"`
	Timestamp   uint64      `json:"timestamp"`
	Decoded     interface{} `json:"decoded"`
	PoolMeta    PoolMeta    `json:"pool_meta"`
	Raw         *RawLogRef  `json:"raw,omitempty"`
}

// Position returns where the event sits in the chain.
func (e TypedEvent) Position() EventPosition {
	return EventPosition{Block: e.BlockNumber, LogIndex: e.LogIndex}
}

// TypedEventRecord is a TypedEvent read back from JSONL, with the payload
// left undecoded until its event name is known.
type TypedEventRecord struct {
	ChainID     uint64          `json:"chain_id"`
	BlockNumber uint64          `json:"block_number"`
	BlockHash   string          `json:"block_hash"`
	TxHash      string          `json:"tx_hash"`
	LogIndex    uint64          `json:"log_index"`
	Address     string          `json:"address"`
	EventName   string          `json:"event_name"`
	Timestamp   uint64          `json:"timestamp"`
	Decoded     json.RawMessage `json:"decoded"`
	PoolMeta    PoolMeta        `json:"pool_meta"`
	Raw         *RawLogRef      `json:"raw,omitempty"`
}

func (r TypedEventRecord) Position() EventPosition {
	return EventPosition{Block: r.BlockNumber, LogIndex: r.LogIndex}
}

// DecodeInto unmarshals the payload into v.
func (r TypedEventRecord) DecodeInto(v interface{}) error {
	if len(r.Decoded) == 0 {
		return fmt.Errorf("%s at block %d: empty payload", r.EventName, r.BlockNumber)
	}
	if err := json.Unmarshal(r.Decoded, v); err != nil {
		return fmt.Errorf("%s at block %d: %w", r.EventName, r.BlockNumber, err)
	}
	return nil
}

// EventPosition orders events by block, then log index.
type EventPosition struct {
	Block    uint64
	LogIndex uint64
}

func (p EventPosition) Before(other EventPosition) bool {
	if p.Block != other.Block {
		return p.Block < other.Block
	}
	return p.LogIndex < other.LogIndex
}

// RawLogRef keeps a minimal raw reference for traceability.
type RawLogRef struct {
	Topic0 string `json:"topic0"`
	Data   string `json:"data"`
}
