package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"ammPool/internal/model"
)

func TestJsonlStorageAppendsBatches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "logs.jsonl")
	sink := NewJsonlStorage(path)

	require.NoError(t, sink.PutLogBatch([]model.LogRecord{{BlockNumber: 1}, {BlockNumber: 2}}))
	require.NoError(t, sink.PutLogBatch(nil))
	require.NoError(t, sink.PutLogBatch([]model.LogRecord{{BlockNumber: 3}}))

	var blocks []uint64
	err := ScanJSONL(path, func(lineNo int, line []byte) error {
		var record model.LogRecord
		if err := json.Unmarshal(line, &record); err != nil {
			return err
		}
		blocks = append(blocks, record.BlockNumber)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []uint64{1, 2, 3}, blocks)

	require.NoError(t, sink.Truncate())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Empty(t, data)
}

func TestJsonlStorageErrorsAndEvents(t *testing.T) {
	dir := t.TempDir()
	errs := NewJsonlStorage(filepath.Join(dir, "errors.jsonl"))
	events := NewJsonlStorage(filepath.Join(dir, "events.jsonl"))

	require.NoError(t, errs.PutErrorBatch([]model.OperationError{{Index: 4, Op: model.OpSwap, Error: "identical address"}}))
	require.NoError(t, events.PutEventBatch([]model.TypedEvent{{EventName: model.EventSwap, Decoded: model.SwapEventData{AmountIn: "1"}}}))

	data, err := os.ReadFile(errs.Path())
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(string(data), "\n"))
	require.Contains(t, string(data), `"op":"swap"`)

	data, err = os.ReadFile(events.Path())
	require.NoError(t, err)
	require.Contains(t, string(data), `"amount_in":"1"`)
}

func TestScanLinesSkipsBlanks(t *testing.T) {
	var seen []int
	err := scanLines(strings.NewReader("{}\n\n  \n{}\n"), func(lineNo int, line []byte) error {
		seen = append(seen, lineNo)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []int{1, 4}, seen)
}
