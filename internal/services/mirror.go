package services

import (
	"context"
	"fmt"
	"time"

	"github.com/aiguild/guildtracker/internal/config"
	"github.com/aiguild/guildtracker/internal/models"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Spreadsheet row markers written to the last column.
const (
	MarkerNewEntry = "New Entry"
	MarkerUpdated  = "Updated"
)

// mirrorColumns is the fixed width of a mirrored row: name, one-liner,
// description, AI usage, lead name, contact, status, timestamp, marker.
const mirrorColumns = 9

const mirrorTimeLayout = "2006-01-02 15:04:05"

// RowMirror is the write surface of the spreadsheet mirror. All
// implementations key rows by the project name in the first column.
type RowMirror interface {
	Append(ctx context.Context, values []interface{}) error
	Replace(ctx context.Context, name string, values []interface{}) error
	Clear(ctx context.Context, name string) error
}

// MirrorRow builds the spreadsheet row for a project in the fixed
// column order, stamped with the current time and the given marker.
func MirrorRow(p *models.Project, marker string) []interface{} {
	return []interface{}{
		p.Name,
		p.OneLiner,
		p.Description,
		p.AIUsage,
		p.LeadName,
		p.Contact,
		p.Status,
		time.Now().Format(mirrorTimeLayout),
		marker,
	}
}

// SheetsMirror mirrors project rows to a Google Sheets document. Row 1
// is the header; data starts at row 2.
type SheetsMirror struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetName     string
}

func NewSheetsMirror(ctx context.Context, cfg *config.SheetsConfig) (*SheetsMirror, error) {
	var opts []option.ClientOption
	switch {
	case cfg.CredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	opts = append(opts, option.WithScopes(sheets.SpreadsheetsScope))

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets client: %w", err)
	}

	sheetName := cfg.SheetName
	if sheetName == "" {
		sheetName = "Projects"
	}

	return &SheetsMirror{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     sheetName,
	}, nil
}

func (m *SheetsMirror) dataRange() string {
	return fmt.Sprintf("%s!A2:I", m.sheetName)
}

// locate scans the data range top to bottom and returns the 1-based
// spreadsheet row whose first column equals name exactly. Linear scan:
// the registry is small and the sheet has no index to speak of.
func (m *SheetsMirror) locate(ctx context.Context, name string) (int, error) {
	resp, err := m.svc.Spreadsheets.Values.Get(m.spreadsheetID, m.dataRange()).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", models.ErrMirrorUnavailable, err)
	}

	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		if cell, ok := row[0].(string); ok && cell == name {
			return i + 2, nil // range starts at row 2
		}
	}

	return 0, models.ErrRowNotFound
}

// Append inserts a new row after the existing data.
func (m *SheetsMirror) Append(ctx context.Context, values []interface{}) error {
	body := &sheets.ValueRange{Values: [][]interface{}{values}}
	_, err := m.svc.Spreadsheets.Values.Append(m.spreadsheetID, m.dataRange(), body).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrMirrorUnavailable, err)
	}
	return nil
}

// Replace overwrites the located row's full column range with values.
// Returns ErrRowNotFound when no row carries the name.
func (m *SheetsMirror) Replace(ctx context.Context, name string, values []interface{}) error {
	row, err := m.locate(ctx, name)
	if err != nil {
		return err
	}

	target := fmt.Sprintf("%s!A%d:I%d", m.sheetName, row, row)
	body := &sheets.ValueRange{Values: [][]interface{}{values}}
	_, err = m.svc.Spreadsheets.Values.Update(m.spreadsheetID, target, body).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrMirrorUnavailable, err)
	}
	return nil
}

// Clear blanks the located row's cell range. Returns ErrRowNotFound
// when no row carries the name; callers treat that as already cleared.
func (m *SheetsMirror) Clear(ctx context.Context, name string) error {
	row, err := m.locate(ctx, name)
	if err != nil {
		return err
	}

	blank := make([]interface{}, mirrorColumns)
	for i := range blank {
		blank[i] = ""
	}

	target := fmt.Sprintf("%s!A%d:I%d", m.sheetName, row, row)
	body := &sheets.ValueRange{Values: [][]interface{}{blank}}
	_, err = m.svc.Spreadsheets.Values.Update(m.spreadsheetID, target, body).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrMirrorUnavailable, err)
	}
	return nil
}
