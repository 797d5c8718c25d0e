// Package sheets appends period overviews to a Google spreadsheet using
// Service Account credentials.
package sheets

import (
	"context"
	"fmt"
	"os"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"clientledger/internal/config"
	"clientledger/internal/reports"
)

type Exporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// New creates an Exporter from the export section of the config. Credentials
// come from GOOGLE_CREDENTIALS_JSON or GOOGLE_CREDENTIALS_FILE.
func New(ctx context.Context, cfg *config.Config) (*Exporter, error) {
	if err := cfg.ValidateExport(); err != nil {
		return nil, err
	}

	credentialsJSON := []byte(cfg.GoogleCredentialsJSON)
	if len(credentialsJSON) == 0 {
		data, err := os.ReadFile(cfg.GoogleCredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
		credentialsJSON = data
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Exporter{
		svc:           svc,
		spreadsheetID: cfg.GoogleSpreadsheetID,
		sheetName:     cfg.GoogleSheetName,
	}, nil
}

// AppendOverview appends one row per ranked client, keeping the overview's
// ascending revenue order.
func (e *Exporter) AppendOverview(ctx context.Context, ov reports.Overview) error {
	rows := overviewRows(ov)
	if len(rows) == 0 {
		return nil
	}

	vr := &gsheet.ValueRange{Values: rows}
	_, err := e.svc.Spreadsheets.Values.Append(e.spreadsheetID, e.sheetName+"!A:E", vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append overview rows: %w", err)
	}
	return nil
}

func overviewRows(ov reports.Overview) [][]any {
	rows := make([][]any, 0, len(ov.Clients))
	for _, c := range ov.Clients {
		rows = append(rows, []any{
			ov.Period.String(),
			c.Name,
			c.Income,
			c.Expenses,
			c.Revenue,
		})
	}
	return rows
}
