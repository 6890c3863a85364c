package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"qayd/internal/core"
	ports "qayd/internal/sheets"

	"golang.org/x/oauth2"
	goauth "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Client mirrors both ledgers into one spreadsheet, one tab per ledger.
// Each row starts with the record ID so deletes can find it later.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	expensesSheet string
	incomeSheet   string

	mu       sync.Mutex
	sheetIDs map[string]int64
}

// Ensure interface conformance
var _ ports.Ledger = (*Client)(nil)

// NewFromEnv creates a Sheets client from environment variables.
// Required: GOOGLE_SPREADSHEET_ID plus credentials, either an OAuth pair
// (GOOGLE_OAUTH_CLIENT_JSON/_FILE and GOOGLE_OAUTH_TOKEN_JSON/_FILE) or a
// service account (GOOGLE_SERVICE_ACCOUNT_JSON/_FILE or
// GOOGLE_APPLICATION_CREDENTIALS).
// Optional tab names: GOOGLE_EXPENSES_SHEET_NAME (default "Expenses"),
// GOOGLE_INCOME_SHEET_NAME (default "Income").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	expensesSheet := strings.TrimSpace(os.Getenv("GOOGLE_EXPENSES_SHEET_NAME"))
	if expensesSheet == "" {
		expensesSheet = "Expenses"
	}
	incomeSheet := strings.TrimSpace(os.Getenv("GOOGLE_INCOME_SHEET_NAME"))
	if incomeSheet == "" {
		incomeSheet = "Income"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		expensesSheet: expensesSheet,
		incomeSheet:   incomeSheet,
		sheetIDs:      make(map[string]int64),
	}, nil
}

// newSheetsService prefers the OAuth client/token pair produced by
// oauth-init and falls back to service account credentials.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	clientJSON, err := credentialBytes("GOOGLE_OAUTH_CLIENT_JSON", "GOOGLE_OAUTH_CLIENT_FILE")
	if err != nil {
		return nil, err
	}
	tokenJSON, err := credentialBytes("GOOGLE_OAUTH_TOKEN_JSON", "GOOGLE_OAUTH_TOKEN_FILE")
	if err != nil {
		return nil, err
	}

	if clientJSON != nil && tokenJSON != nil {
		httpClient, err := oauthHTTPClient(ctx, clientJSON, tokenJSON)
		if err != nil {
			return nil, err
		}
		slog.InfoContext(ctx, "Creating Google Sheets service with OAuth credentials")
		service, err := gsheet.NewService(ctx, goption.WithHTTPClient(httpClient))
		if err != nil {
			return nil, fmt.Errorf("create sheets service: %w", err)
		}
		return service, nil
	}

	credentialsJSON, err := credentialBytes("GOOGLE_SERVICE_ACCOUNT_JSON", "GOOGLE_SERVICE_ACCOUNT_FILE")
	if err != nil {
		return nil, err
	}
	if credentialsJSON == nil {
		if path := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")); path != "" {
			credentialsJSON, err = os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("read application credentials: %w", err)
			}
		}
	}
	if credentialsJSON == nil {
		return nil, errors.New("missing Google credentials (set the OAuth client/token pair or a service account)")
	}

	slog.InfoContext(ctx, "Creating Google Sheets service with service account",
		"credentials_size", len(credentialsJSON))
	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// credentialBytes reads a credential from the inline env var or, failing
// that, the file env var. Returns nil when neither is set.
func credentialBytes(jsonKey, fileKey string) ([]byte, error) {
	if inline := strings.TrimSpace(os.Getenv(jsonKey)); inline != "" {
		return []byte(inline), nil
	}
	if path := strings.TrimSpace(os.Getenv(fileKey)); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", fileKey, err)
		}
		return data, nil
	}
	return nil, nil
}

func oauthHTTPClient(ctx context.Context, clientJSON, tokenJSON []byte) (*http.Client, error) {
	conf, err := goauth.ConfigFromJSON(clientJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse OAuth client config: %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(tokenJSON, &token); err != nil {
		return nil, fmt.Errorf("parse OAuth token: %w", err)
	}
	return conf.Client(ctx, &token), nil
}

func (c *Client) AppendExpense(ctx context.Context, rec core.ExpenseRecord) (string, error) {
	if err := rec.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	row := []any{rec.ID, rec.Date.Format("2006-01-02"), rec.Amount,
		string(rec.MainCategory), rec.SubCategory, rec.Note}
	return c.appendRow(ctx, c.expensesSheet, row)
}

func (c *Client) AppendIncome(ctx context.Context, rec core.IncomeRecord) (string, error) {
	if err := rec.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	row := []any{rec.ID, rec.Date.Format("2006-01-02"), rec.Amount,
		string(rec.Type), rec.Detail, rec.Note}
	return c.appendRow(ctx, c.incomeSheet, row)
}

func (c *Client) appendRow(ctx context.Context, sheetName string, row []any) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:F", sheetName)
	vr := &gsheet.ValueRange{Values: [][]any{row}}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", sheetName, err)
	}

	ref := rng
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	slog.InfoContext(ctx, "Appended row to remote ledger", "sheet", sheetName, "ref", ref)
	return ref, nil
}

// DeleteRecord finds the row whose first cell matches id and removes it.
func (c *Client) DeleteRecord(ctx context.Context, kind, id string) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	sheetName, err := c.sheetForKind(kind)
	if err != nil {
		return err
	}

	rng := fmt.Sprintf("%s!A:A", sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read %s: %w", rng, err)
	}

	rowIndex := -1
	for i, row := range resp.Values {
		if len(row) > 0 && strings.TrimSpace(fmt.Sprint(row[0])) == id {
			rowIndex = i
			break
		}
	}
	if rowIndex < 0 {
		// Already gone; deletes are idempotent from the worker's view.
		slog.WarnContext(ctx, "Record not found in remote ledger", "kind", kind, "id", id)
		return nil
	}

	sheetID, err := c.sheetID(ctx, sheetName)
	if err != nil {
		return err
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			DeleteDimension: &gsheet.DeleteDimensionRequest{
				Range: &gsheet.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(rowIndex),
					EndIndex:   int64(rowIndex + 1),
				},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete row %d from %s: %w", rowIndex+1, sheetName, err)
	}

	slog.InfoContext(ctx, "Deleted row from remote ledger",
		"kind", kind, "id", id, "row", rowIndex+1)
	return nil
}

func (c *Client) sheetForKind(kind string) (string, error) {
	switch kind {
	case "expense":
		return c.expensesSheet, nil
	case "income":
		return c.incomeSheet, nil
	}
	return "", fmt.Errorf("unknown record kind %q", kind)
}

// sheetID resolves a tab title to its numeric sheet ID, cached per client.
func (c *Client) sheetID(ctx context.Context, sheetName string) (int64, error) {
	c.mu.Lock()
	if id, ok := c.sheetIDs[sheetName]; ok {
		c.mu.Unlock()
		return id, nil
	}
	c.mu.Unlock()

	meta, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("get spreadsheet metadata: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range meta.Sheets {
		if s.Properties != nil {
			c.sheetIDs[s.Properties.Title] = s.Properties.SheetId
		}
	}
	if id, ok := c.sheetIDs[sheetName]; ok {
		return id, nil
	}
	return 0, fmt.Errorf("sheet %q not found in spreadsheet", sheetName)
}

// Ping verifies the spreadsheet is reachable with the configured credentials.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("spreadsheetId").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("ping spreadsheet: %w", err)
	}
	return nil
}
