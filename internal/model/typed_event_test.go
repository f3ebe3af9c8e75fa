package model

import (
	"encoding/json"
	"testing"
)

func TestSwapEventDataJSONStringFields(t *testing.T) {
	payload := SwapEventData{
		Sender:    "0x1111111111111111111111111111111111111111",
		TokenIn:   "0x2222222222222222222222222222222222222222",
		TokenOut:  "0x3333333333333333333333333333333333333333",
		AmountIn:  "115792089237316195423570985008687907853269984665640564039457584007913129639935",
		AmountOut: "42",
	}

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	for _, key := range []string{"amount_in", "amount_out", "token_in", "token_out"} {
		if _, ok := decoded[key].(string); !ok {
			t.Fatalf("%s should be string", key)
		}
	}
}

func TestPoolStateMeta(t *testing.T) {
	state := PoolState{
		Address:     "0x9999999999999999999999999999999999999999",
		TokenA:      "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		TokenB:      "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
		ReserveA:    "150",
		ReserveB:    "600",
		KLast:       "90000",
		TotalSupply: "300",
	}

	meta := state.Meta()
	if meta.TokenA != state.TokenA || meta.TokenB != state.TokenB {
		t.Fatalf("token mismatch: %+v", meta)
	}
	if meta.ReserveA != "150" || meta.ReserveB != "600" || meta.KLast != "90000" {
		t.Fatalf("reserve mismatch: %+v", meta)
	}
}

func TestEventPositionBefore(t *testing.T) {
	a := TypedEvent{BlockNumber: 5, LogIndex: 2}.Position()
	b := TypedEventRecord{BlockNumber: 5, LogIndex: 3}.Position()
	c := EventPosition{Block: 6}

	if !a.Before(b) || !b.Before(c) || !a.Before(c) {
		t.Fatalf("expected %v < %v < %v", a, b, c)
	}
	if b.Before(a) || a.Before(a) {
		t.Fatalf("ordering not strict")
	}
}

func TestTypedEventRecordDecodeInto(t *testing.T) {
	line := []byte(`{"block_number":7,"event_name":"AddLiquidity","decoded":{"amount_a":"10","amount_b":"20","liquidity":"14"}}`)
	var record TypedEventRecord
	if err := json.Unmarshal(line, &record); err != nil {
		t.Fatalf("unmarshal record: %v", err)
	}

	var add AddLiquidityEventData
	if err := record.DecodeInto(&add); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if add.Liquidity != "14" || add.AmountB != "20" {
		t.Fatalf("unexpected payload: %+v", add)
	}

	if err := (TypedEventRecord{EventName: "Swap"}).DecodeInto(&add); err == nil {
		t.Fatalf("expected error for empty payload")
	}
}
