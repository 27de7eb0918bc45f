// Package sheets backs the row store with a Google Sheets spreadsheet, one
// sheet per collection.
package sheets

import (
	"context"
	"fmt"
	"sync"

	"github.com/fekuna/omnipos-warehouse/internal/logger"
	"github.com/fekuna/omnipos-warehouse/internal/rowstore"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

const (
	columnSpan       = "A:Z"
	valueInputOption = "USER_ENTERED"
)

type Config struct {
	SpreadsheetID   string
	CredentialsJSON string
	CredentialsFile string
	SheetNames      map[rowstore.Collection]string
}

type Store struct {
	svc           *gsheets.Service
	spreadsheetID string
	names         map[rowstore.Collection]string
	logger        logger.ZapLogger

	mu       sync.Mutex
	sheetIDs map[string]int64
}

var _ rowstore.Store = (*Store)(nil)

// NewStore connects to the spreadsheet. Extra client options are applied
// after the credentials, so an endpoint override also works unauthenticated.
func NewStore(ctx context.Context, cfg *Config, log logger.ZapLogger, extra ...option.ClientOption) (*Store, error) {
	opts := []option.ClientOption{option.WithScopes(gsheets.SpreadsheetsScope)}
	switch {
	case cfg.CredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	opts = append(opts, extra...)

	svc, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets client: %w", err)
	}

	names := make(map[rowstore.Collection]string, len(rowstore.Collections))
	for _, c := range rowstore.Collections {
		names[c] = string(c)
		if n, ok := cfg.SheetNames[c]; ok && n != "" {
			names[c] = n
		}
	}

	return &Store{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		names:         names,
		logger:        log,
		sheetIDs:      make(map[string]int64),
	}, nil
}

func (s *Store) Read(ctx context.Context, c rowstore.Collection) (*rowstore.Table, error) {
	name, err := s.sheetName(c)
	if err != nil {
		return nil, err
	}

	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, name+"!"+columnSpan).Context(ctx).Do()
	if err != nil {
		s.logger.Error("failed to read sheet", zap.String("sheet", name), zap.Error(err))
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	t := &rowstore.Table{}
	for i, raw := range resp.Values {
		cells := toStrings(raw)
		if i == 0 {
			t.Header = cells
			continue
		}
		t.Rows = append(t.Rows, rowstore.Row{Index: i + 1, Values: cells})
	}
	return t, nil
}

func (s *Store) Append(ctx context.Context, c rowstore.Collection, values []string) error {
	name, err := s.sheetName(c)
	if err != nil {
		return err
	}

	vr := &gsheets.ValueRange{Values: [][]interface{}{toCells(values)}}
	_, err = s.svc.Spreadsheets.Values.Append(s.spreadsheetID, name+"!"+columnSpan, vr).
		ValueInputOption(valueInputOption).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		s.logger.Error("failed to append to sheet", zap.String("sheet", name), zap.Error(err))
		return fmt.Errorf("append %s: %w", name, err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, c rowstore.Collection, index int, values []string) error {
	name, err := s.sheetName(c)
	if err != nil {
		return err
	}
	if err := s.checkRow(ctx, c, index); err != nil {
		return err
	}

	rng := fmt.Sprintf("%s!A%d:Z%d", name, index, index)
	vr := &gsheets.ValueRange{Values: [][]interface{}{toCells(values)}}
	_, err = s.svc.Spreadsheets.Values.Update(s.spreadsheetID, rng, vr).
		ValueInputOption(valueInputOption).
		Context(ctx).
		Do()
	if err != nil {
		s.logger.Error("failed to update sheet row", zap.String("sheet", name), zap.Int("row", index), zap.Error(err))
		return fmt.Errorf("update %s row %d: %w", name, index, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, c rowstore.Collection, index int) error {
	name, err := s.sheetName(c)
	if err != nil {
		return err
	}
	if err := s.checkRow(ctx, c, index); err != nil {
		return err
	}

	sheetID, err := s.sheetID(ctx, name)
	if err != nil {
		return err
	}

	req := &gsheets.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheets.Request{{
			DeleteDimension: &gsheets.DeleteDimensionRequest{
				Range: &gsheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(index - 1),
					EndIndex:   int64(index),
					// the first sheet usually has id 0, which omitempty would drop
					ForceSendFields: []string{"SheetId"},
				},
			},
		}},
	}
	if _, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do(); err != nil {
		s.logger.Error("failed to delete sheet row", zap.String("sheet", name), zap.Int("row", index), zap.Error(err))
		return fmt.Errorf("delete %s row %d: %w", name, index, err)
	}
	return nil
}

func (s *Store) EnsureHeader(ctx context.Context, c rowstore.Collection, header []string) error {
	t, err := s.Read(ctx, c)
	if err != nil {
		return err
	}
	if len(t.Header) > 0 || len(t.Rows) > 0 {
		return nil
	}
	return s.Append(ctx, c, header)
}

// checkRow rejects positions outside the data rows. The API itself accepts
// any position inside the sheet grid, blank rows included.
func (s *Store) checkRow(ctx context.Context, c rowstore.Collection, index int) error {
	if index < rowstore.FirstDataRow {
		return fmt.Errorf("%w: %s row %d", rowstore.ErrRowNotFound, c, index)
	}
	t, err := s.Read(ctx, c)
	if err != nil {
		return err
	}
	if index >= rowstore.FirstDataRow+len(t.Rows) {
		return fmt.Errorf("%w: %s row %d", rowstore.ErrRowNotFound, c, index)
	}
	return nil
}

func (s *Store) sheetName(c rowstore.Collection) (string, error) {
	name, ok := s.names[c]
	if !ok {
		return "", fmt.Errorf("%w: %s", rowstore.ErrUnknownCollection, c)
	}
	return name, nil
}

// sheetID looks up the numeric id deleteDimension needs. Sheet ids survive
// renames, so they are cached for the life of the store.
func (s *Store) sheetID(ctx context.Context, name string) (int64, error) {
	s.mu.Lock()
	id, ok := s.sheetIDs[name]
	s.mu.Unlock()
	if ok {
		return id, nil
	}

	ss, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("get spreadsheet: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sh := range ss.Sheets {
		if sh.Properties == nil {
			continue
		}
		s.sheetIDs[sh.Properties.Title] = sh.Properties.SheetId
	}
	id, ok = s.sheetIDs[name]
	if !ok {
		return 0, fmt.Errorf("sheet %q not found in spreadsheet", name)
	}
	return id, nil
}

func toStrings(raw []interface{}) []string {
	out := make([]string, len(raw))
	for i, v := range raw {
		if v == nil {
			continue
		}
		out[i] = fmt.Sprint(v)
	}
	return out
}

func toCells(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
