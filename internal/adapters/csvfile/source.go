// Package csvfile reads tracking sheet exports saved as CSV.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/tkitrace/internal/ports/secondary"
)

// Source implements secondary.RowSource over a CSV file on disk.
type Source struct {
	path string
	now  func() time.Time
}

// NewSource creates a CSV row source for path.
func NewSource(path string) *Source {
	return &Source{path: path, now: time.Now}
}

// Name identifies the source in logs and reports.
func (s *Source) Name() string {
	return "csv:" + s.path
}

// Fetch reads the whole file. An empty file yields an empty snapshot.
func (s *Source) Fetch(ctx context.Context) (*secondary.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", s.path, err)
	}
	defer f.Close()

	header, rows, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	return &secondary.Snapshot{
		ID:        uuid.NewString(),
		Source:    s.Name(),
		Header:    header,
		Rows:      rows,
		FetchedAt: s.now(),
	}, nil
}

// Read parses CSV content into a header row and ragged data rows.
// A leading UTF-8 byte order mark, as written by spreadsheet exports, is dropped.
func Read(r io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, nil
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	return header, records[1:], nil
}

var _ secondary.RowSource = (*Source)(nil)
