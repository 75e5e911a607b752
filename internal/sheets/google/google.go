package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	oauthgoogle "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"ore/internal/cache"
	"ore/internal/core"
	ports "ore/internal/sheets"
)

// Ensure interface conformance
var (
	_ ports.HistoryStore  = (*Client)(nil)
	_ ports.MonthRenderer = (*Client)(nil)
	_ ports.DataWriter    = (*Client)(nil)
)

const sheetIDTTL = 10 * time.Minute

// Config selects the spreadsheet and how to authenticate against it.
// A service account takes precedence over an OAuth client + token pair.
type Config struct {
	SpreadsheetID string

	ServiceAccountJSON string
	ServiceAccountFile string

	OAuthClientJSON string
	OAuthClientFile string
	OAuthTokenJSON  string
	OAuthTokenFile  string

	Style ports.Style
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	style         ports.Style
	sheetIDs      *cache.LRU[string, int64]
}

// NewClient creates a Sheets client for cfg.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	spreadsheetID := strings.TrimSpace(cfg.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return newClient(svc, spreadsheetID, cfg.Style), nil
}

func newClient(svc *gsheet.Service, spreadsheetID string, style ports.Style) *Client {
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		style:         style,
		sheetIDs:      cache.NewLRU[string, int64](64, sheetIDTTL),
	}
}

// newSheetsService initializes a Sheets Service from service account
// credentials or, failing that, an OAuth client with a stored token.
func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	saJSON, err := inlineOrFile(cfg.ServiceAccountJSON, cfg.ServiceAccountFile)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	if len(saJSON) > 0 {
		slog.InfoContext(ctx, "Creating Google Sheets service with Service Account",
			"credentials_size", len(saJSON),
			"scope", gsheet.SpreadsheetsScope)
		return gsheet.NewService(ctx,
			goption.WithCredentialsJSON(saJSON),
			goption.WithScopes(gsheet.SpreadsheetsScope))
	}

	clientJSON, err := inlineOrFile(cfg.OAuthClientJSON, cfg.OAuthClientFile)
	if err != nil {
		return nil, fmt.Errorf("read oauth client file: %w", err)
	}
	tokenJSON, err := inlineOrFile(cfg.OAuthTokenJSON, cfg.OAuthTokenFile)
	if err != nil {
		return nil, fmt.Errorf("read oauth token file: %w", err)
	}
	if len(clientJSON) == 0 || len(tokenJSON) == 0 {
		return nil, errors.New("missing credentials (set a service account or an OAuth client and token)")
	}

	oauthCfg, err := oauthgoogle.ConfigFromJSON(clientJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("oauth config: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(tokenJSON, &tok); err != nil {
		return nil, fmt.Errorf("oauth token: %w", err)
	}
	slog.InfoContext(ctx, "Creating Google Sheets service with OAuth token", "token_expiry", tok.Expiry)
	return gsheet.NewService(ctx, goption.WithHTTPClient(oauthCfg.Client(ctx, &tok)))
}

func inlineOrFile(inline, path string) ([]byte, error) {
	if s := strings.TrimSpace(inline); s != "" {
		return []byte(s), nil
	}
	if p := strings.TrimSpace(path); p != "" {
		return os.ReadFile(p)
	}
	return nil, nil
}

func (c *Client) Location() string {
	return "spreadsheet " + c.spreadsheetID
}

// Load reads the Data tab. A spreadsheet without one holds no history yet.
func (c *Client) Load(ctx context.Context) (*core.History, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	if _, ok, err := c.sheetID(ctx, ports.DataSheet); err != nil {
		return nil, err
	} else if !ok {
		slog.InfoContext(ctx, "No Data tab yet, starting with empty history", "spreadsheet_id", c.spreadsheetID)
		return core.NewHistory(), nil
	}

	rng := rangeRef(ports.DataSheet, "A:G")
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	h, err := parseDataValues(resp.Values)
	if err != nil {
		return nil, &core.CorruptHistoryError{Source: c.Location(), Err: err}
	}
	return h, nil
}

// Save renders every month tab, then rewrites the Data tab. The Data tab is
// what Load reads, so it is written last: a failure part way leaves the
// previously saved history loadable.
func (c *Client) Save(ctx context.Context, h *core.History) error {
	if c.svc == nil {
		return &core.PersistenceError{Path: c.Location(), Err: errors.New("sheets service not initialized")}
	}
	// Tabs may have been renamed or removed since the last save.
	c.sheetIDs.Purge()
	for _, id := range h.Months() {
		if err := c.RenderMonth(ctx, h.MonthView(id)); err != nil {
			return &core.PersistenceError{Path: c.Location(), Err: err}
		}
	}
	if err := c.WriteData(ctx, h); err != nil {
		return &core.PersistenceError{Path: c.Location(), Err: err}
	}
	slog.InfoContext(ctx, "History saved to Google Sheets", "spreadsheet_id", c.spreadsheetID, "months", h.Len())
	return nil
}

// RenderMonth replaces the tab of one month with its calendar block.
func (c *Client) RenderMonth(ctx context.Context, v core.MonthView) error {
	block := ports.LayoutMonth(v)
	sheetID, err := c.ensureSheet(ctx, block.Title)
	if err != nil {
		return err
	}
	if err := c.clear(ctx, block.Title, sheetID); err != nil {
		return err
	}

	rng := rangeRef(block.Title, "A1")
	vr := &gsheet.ValueRange{Values: blockValues(block)}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("write %s: %w", rng, err)
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{Requests: formatRequests(block, sheetID, c.style)}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("format %s: %w", block.Title, err)
	}

	slog.InfoContext(ctx, "Rendered month tab", "sheet", block.Title, "weeks", block.Weeks)
	return nil
}

// WriteData replaces the Data tab with the flat records of h.
func (c *Client) WriteData(ctx context.Context, h *core.History) error {
	sheetID, err := c.ensureSheet(ctx, ports.DataSheet)
	if err != nil {
		return err
	}
	if err := c.clear(ctx, ports.DataSheet, sheetID); err != nil {
		return err
	}
	rng := rangeRef(ports.DataSheet, "A1")
	vr := &gsheet.ValueRange{Values: ports.DataRows(h)}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("write %s: %w", rng, err)
	}
	return nil
}

func (c *Client) clear(ctx context.Context, title string, sheetID int64) error {
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rangeRef(title, "A:Z"), &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", title, err)
	}
	req := &gsheet.BatchUpdateSpreadsheetRequest{Requests: resetRequests(sheetID)}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		// The tab may have been deleted by hand; look it up again next time.
		c.sheetIDs.Delete(title)
		return fmt.Errorf("reset formatting of %s: %w", title, err)
	}
	return nil
}

// sheetID resolves a tab title, refreshing the cached title map on a miss.
func (c *Client) sheetID(ctx context.Context, title string) (int64, bool, error) {
	if id, ok := c.sheetIDs.Get(title); ok {
		return id, true, nil
	}
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, false, fmt.Errorf("read spreadsheet metadata: %w", err)
	}
	var (
		found bool
		id    int64
	)
	for _, sh := range ss.Sheets {
		if sh.Properties == nil {
			continue
		}
		c.sheetIDs.Set(sh.Properties.Title, sh.Properties.SheetId)
		if sh.Properties.Title == title {
			found, id = true, sh.Properties.SheetId
		}
	}
	return id, found, nil
}

func (c *Client) ensureSheet(ctx context.Context, title string) (int64, error) {
	id, ok, err := c.sheetID(ctx, title)
	if err != nil || ok {
		return id, err
	}
	req := &gsheet.BatchUpdateSpreadsheetRequest{Requests: []*gsheet.Request{{
		AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: title}},
	}}}
	resp, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("add sheet %s: %w", title, err)
	}
	if len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil || resp.Replies[0].AddSheet.Properties == nil {
		return 0, fmt.Errorf("add sheet %s: empty reply", title)
	}
	id = resp.Replies[0].AddSheet.Properties.SheetId
	c.sheetIDs.Set(title, id)
	slog.InfoContext(ctx, "Created sheet", "sheet", title, "sheet_id", id)
	return id, nil
}

// rangeRef builds an A1 range on a tab, quoting the title.
func rangeRef(title, a1 string) string {
	return fmt.Sprintf("'%s'!%s", strings.ReplaceAll(title, "'", "''"), a1)
}
