package usage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// AppendToFile persists records as a JSON array, merging with any records
// already in the file. The CLI is short-lived, so each run flushes its
// ledger here and reports read the accumulated history.
func AppendToFile(path string, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	existing, err := LoadFile(path)
	if err != nil {
		return err
	}
	existing = append(existing, records...)

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create usage directory: %w", err)
		}
	}

	content, err := json.MarshalIndent(existing, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal usage records: %w", err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("failed to write usage file: %w", err)
	}
	return nil
}

// LoadFile reads persisted records. A missing file is an empty history, not
// an error.
func LoadFile(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read usage file: %w", err)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse usage file: %w", err)
	}
	return records, nil
}

// SummarizeRecords aggregates an arbitrary record slice, e.g. one loaded
// from disk.
func SummarizeRecords(records []Record) Summary {
	l := &Ledger{records: records}
	if len(records) > 0 {
		l.started = records[0].CreatedAt
	}
	return l.Summarize()
}
