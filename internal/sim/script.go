package sim

import (
	"bytes"
	"encoding/json"
	"fmt"

	"ammPool/internal/model"
	"ammPool/internal/storage"
)

// LoadScript reads a JSONL operation script. Lines starting with '#' are
// comments.
func LoadScript(path string) ([]model.Operation, error) {
	var ops []model.Operation
	err := storage.ScanJSONL(path, func(lineNo int, line []byte) error {
		if bytes.HasPrefix(line, []byte("#")) {
			return nil
		}
		var op model.Operation
		decoder := json.NewDecoder(bytes.NewReader(line))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&op); err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		if op.Op == "" {
			return fmt.Errorf("line %d: op is required", lineNo)
		}
		ops = append(ops, op)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ops, nil
}
