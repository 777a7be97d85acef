// Package sheets fetches the production tracking range from Google Sheets.
package sheets

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/example/tkitrace/internal/ports/secondary"
)

// Config locates the tracking range.
type Config struct {
	SpreadsheetID   string
	Range           string // A1 notation including the sheet name, e.g. "Echo!A2:AA104"
	CredentialsFile string // Service account JSON; empty uses application default credentials
}

// Source implements secondary.RowSource over the Sheets v4 values API.
// The first row of the range is the header.
type Source struct {
	service *sheets.Service
	cfg     Config
	now     func() time.Time
}

// NewSource creates a read-only Sheets client. Extra options are appended
// after the credentials option, so tests can point it at a fake endpoint.
func NewSource(ctx context.Context, cfg Config, opts ...option.ClientOption) (*Source, error) {
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet ID is required")
	}

	clientOpts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsReadonlyScope)}
	if cfg.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	clientOpts = append(clientOpts, opts...)

	service, err := sheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}

	return &Source{service: service, cfg: cfg, now: time.Now}, nil
}

// Name identifies the source in logs and reports.
func (s *Source) Name() string {
	return fmt.Sprintf("sheets:%s/%s", s.cfg.SpreadsheetID, s.cfg.Range)
}

// Fetch reads the configured range. An empty range yields an empty snapshot.
func (s *Source) Fetch(ctx context.Context) (*secondary.Snapshot, error) {
	resp, err := s.service.Spreadsheets.Values.Get(s.cfg.SpreadsheetID, s.cfg.Range).
		MajorDimension("ROWS").
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get range %s: %w", s.cfg.Range, err)
	}

	snap := &secondary.Snapshot{
		ID:        uuid.NewString(),
		Source:    s.Name(),
		FetchedAt: s.now(),
	}
	if len(resp.Values) == 0 {
		return snap, nil
	}

	snap.Header = toStrings(resp.Values[0])
	for _, row := range resp.Values[1:] {
		snap.Rows = append(snap.Rows, toStrings(row))
	}
	return snap, nil
}

// toStrings converts API cells to strings. Formatted values arrive as strings;
// anything else is printed as-is.
func toStrings(row []interface{}) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		switch v := cell.(type) {
		case string:
			out[i] = v
		case nil:
			out[i] = ""
		default:
			out[i] = fmt.Sprint(v)
		}
	}
	return out
}

var _ secondary.RowSource = (*Source)(nil)
