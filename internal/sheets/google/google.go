// Package google mirrors the ledger into a Google Sheets spreadsheet so
// the club committee can read the books without touching the API.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"kasklub/internal/core"
	ports "kasklub/internal/sheets"

	"golang.org/x/oauth2"
	googleauth "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Column layout of the mirror sheet: A=id, B=date, C=description,
// D=category, E=amount. Row 1 is the header.
const headerRows = 1

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	sheetID       int64 // numeric sheet id, resolved once at startup
}

// Ensure interface conformance
var _ ports.LedgerMirror = (*Client)(nil)

// NewFromEnv creates a Sheets mirror client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID plus credentials, either a service
// account (GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS) or a user OAuth token produced by
// cmd/oauth-init (GOOGLE_OAUTH_CLIENT_JSON or GOOGLE_OAUTH_CLIENT_FILE
// plus GOOGLE_OAUTH_TOKEN_FILE). Optional: GOOGLE_SHEET_NAME
// (default "Ledger").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	sheetName := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if sheetName == "" {
		sheetName = "Ledger"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	c := &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}

	if err := c.resolveSheetID(ctx); err != nil {
		return nil, err
	}

	return c, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))

	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return newOAuthSheetsService(ctx)
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return service, nil
}

// newOAuthSheetsService builds the service from a user OAuth token saved
// by cmd/oauth-init.
func newOAuthSheetsService(ctx context.Context) (*gsheet.Service, error) {
	clientJSON := strings.TrimSpace(os.Getenv("GOOGLE_OAUTH_CLIENT_JSON"))
	clientFile := strings.TrimSpace(os.Getenv("GOOGLE_OAUTH_CLIENT_FILE"))

	var b []byte
	var err error
	switch {
	case clientJSON != "":
		b = []byte(clientJSON)
	case clientFile != "":
		b, err = os.ReadFile(clientFile)
		if err != nil {
			return nil, fmt.Errorf("read oauth client file: %w", err)
		}
	default:
		return nil, errors.New("missing Google credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, GOOGLE_APPLICATION_CREDENTIALS, or GOOGLE_OAUTH_CLIENT_JSON/GOOGLE_OAUTH_CLIENT_FILE)")
	}

	oauthCfg, err := googleauth.ConfigFromJSON(b, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse oauth client: %w", err)
	}

	tokenFile := strings.TrimSpace(os.Getenv("GOOGLE_OAUTH_TOKEN_FILE"))
	if tokenFile == "" {
		tokenFile = "token.json"
	}
	raw, err := os.ReadFile(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("read oauth token file (run oauth-init first): %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(raw, &token); err != nil {
		return nil, fmt.Errorf("parse oauth token: %w", err)
	}

	service, err := gsheet.NewService(ctx,
		goption.WithTokenSource(oauthCfg.TokenSource(ctx, &token)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return service, nil
}

// resolveSheetID looks up the numeric sheet id needed for row deletion.
func (c *Client) resolveSheetID(ctx context.Context) error {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get spreadsheet %s: %w", c.spreadsheetID, err)
	}
	for _, sheet := range ss.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == c.sheetName {
			c.sheetID = sheet.Properties.SheetId
			return nil
		}
	}
	return fmt.Errorf("sheet %q not found in spreadsheet %s", c.sheetName, c.spreadsheetID)
}

// findRowByID scans column A for the transaction id. Returns the 1-based
// row number, or 0 when the id is not mirrored yet.
func (c *Client) findRowByID(ctx context.Context, id string) (int, error) {
	rng := fmt.Sprintf("%s!A:A", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read id column of %s: %w", c.sheetName, err)
	}

	for i, row := range resp.Values {
		if i < headerRows || len(row) == 0 {
			continue
		}
		if cell, ok := row[0].(string); ok && cell == id {
			return i + 1, nil
		}
	}
	return 0, nil
}

// UpsertTransaction implements sheets.LedgerMirror.
func (c *Client) UpsertTransaction(ctx context.Context, tx core.Transaction) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	row, err := c.findRowByID(ctx, tx.ID)
	if err != nil {
		return err
	}

	values := &gsheet.ValueRange{Values: [][]any{{
		tx.ID,
		tx.DisplayDate(),
		tx.Description,
		string(tx.Category),
		tx.Amount.Float(),
	}}}

	if row > 0 {
		rng := fmt.Sprintf("%s!A%d:E%d", c.sheetName, row, row)
		_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, values).
			ValueInputOption("USER_ENTERED").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("update row %d in sheet %s: %w", row, c.sheetName, err)
		}
	} else {
		rng := fmt.Sprintf("%s!A:E", c.sheetName)
		_, err = c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, values).
			ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("append to sheet %s: %w", c.sheetName, err)
		}
	}

	slog.InfoContext(ctx, "Transaction mirrored to Google Sheets",
		"id", tx.ID, "sheet", c.sheetName, "row", row)
	return nil
}

// RemoveTransaction implements sheets.LedgerMirror.
func (c *Client) RemoveTransaction(ctx context.Context, id string) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	row, err := c.findRowByID(ctx, id)
	if err != nil {
		return err
	}
	if row == 0 {
		slog.WarnContext(ctx, "Transaction not found in mirror sheet, nothing to remove", "id", id)
		return nil
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			DeleteDimension: &gsheet.DeleteDimensionRequest{
				Range: &gsheet.DimensionRange{
					SheetId:    c.sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(row - 1),
					EndIndex:   int64(row),
				},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete row %d from sheet %s: %w", row, c.sheetName, err)
	}

	slog.InfoContext(ctx, "Transaction removed from Google Sheets mirror",
		"id", id, "sheet", c.sheetName, "row", row)
	return nil
}
