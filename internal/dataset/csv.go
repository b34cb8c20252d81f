// File: internal/dataset/csv.go
package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"sync"
)

// CSVSink appends rows to a CSV file, writing the header exactly once, when
// the file is new or empty. Existing data is never rewritten, so a crashed
// run loses at most the row in flight.
type CSVSink struct {
	path string
	mu   sync.Mutex
}

// NewCSVSink builds a sink for the given path. The file is created lazily on
// the first append.
func NewCSVSink(path string) *CSVSink {
	return &CSVSink{path: path}
}

// Append writes one row, with the header first when the file is fresh.
func (s *CSVSink) Append(ctx context.Context, row Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	fresh := true
	if info, err := os.Stat(s.path); err == nil && info.Size() > 0 {
		fresh = false
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if fresh {
		if err := w.Write(Columns); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	if err := w.Write(row.Values()); err != nil {
		return fmt.Errorf("failed to write row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush row: %w", err)
	}
	return nil
}

// Close is a no-op; every append opens and closes the file.
func (s *CSVSink) Close() error { return nil }

// LoadRecords reads the whole CSV including the header. Used by the label
// command, which rewrites the file in place.
func LoadRecords(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset file: %w", err)
	}
	return records, nil
}

// WriteRecords replaces the file contents with the given records.
func WriteRecords(path string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to rewrite dataset file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write records: %w", err)
	}
	w.Flush()
	return w.Error()
}
