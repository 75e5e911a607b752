package google

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ore/internal/core"
	ports "ore/internal/sheets"
)

func TestNewClientRequiresSpreadsheetID(t *testing.T) {
	_, err := NewClient(context.Background(), Config{SpreadsheetID: "  "})
	if err == nil || !strings.Contains(err.Error(), "GOOGLE_SPREADSHEET_ID") {
		t.Fatalf("expected missing id error, got %v", err)
	}
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(context.Background(), Config{SpreadsheetID: "abc"})
	if err == nil || !strings.Contains(err.Error(), "missing credentials") {
		t.Fatalf("expected missing credentials error, got %v", err)
	}
}

func TestNewClientRejectsBadOAuthClient(t *testing.T) {
	_, err := NewClient(context.Background(), Config{
		SpreadsheetID:   "abc",
		OAuthClientJSON: "{not json",
		OAuthTokenJSON:  `{"access_token":"x"}`,
	})
	if err == nil || !strings.Contains(err.Error(), "oauth config") {
		t.Fatalf("expected oauth config error, got %v", err)
	}
}

func TestInlineOrFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds.json")
	if err := os.WriteFile(path, []byte(`{"k":1}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	tests := []struct {
		name         string
		inline, file string
		want         string
		wantErr      bool
	}{
		{name: "inline wins", inline: ` {"a":1} `, file: path, want: `{"a":1}`},
		{name: "file", file: path, want: `{"k":1}`},
		{name: "neither", want: ""},
		{name: "missing file", file: filepath.Join(t.TempDir(), "nope"), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := inlineOrFile(tt.inline, tt.file)
			if (err != nil) != tt.wantErr {
				t.Fatalf("unexpected error %v", err)
			}
			if string(got) != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestUninitializedClient(t *testing.T) {
	c := newClient(nil, "abc", ports.DefaultStyle())
	if _, err := c.Load(context.Background()); err == nil {
		t.Fatal("expected error from Load")
	}
	err := c.Save(context.Background(), core.NewHistory())
	var pe *core.PersistenceError
	if !errors.As(err, &pe) || pe.Path != "spreadsheet abc" {
		t.Fatalf("expected *PersistenceError, got %v", err)
	}
}

func TestRangeRefQuotesTitle(t *testing.T) {
	if got := rangeRef("March 2025", "A1"); got != "'March 2025'!A1" {
		t.Fatalf("unexpected range %q", got)
	}
	if got := rangeRef("Bob's", "A:G"); got != "'Bob''s'!A:G" {
		t.Fatalf("unexpected range %q", got)
	}
}
