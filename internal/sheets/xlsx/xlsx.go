// Package xlsx stores the work hours history in a local Excel workbook: one
// calendar sheet per month plus a flat Data sheet that is read back on load.
package xlsx

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"ore/internal/core"
	"ore/internal/sheets"
)

var _ sheets.HistoryStore = (*Store)(nil)

// DefaultPath is the workbook file name used when none is configured.
const DefaultPath = "work_hours_history.xlsx"

type Store struct {
	path  string
	style sheets.Style
}

func New(path string, style sheets.Style) *Store {
	if path == "" {
		path = DefaultPath
	}
	return &Store{path: path, style: style}
}

func (s *Store) Location() string {
	return s.path
}

// Load reads the Data sheet of the workbook. A missing or zero-length file is
// an empty history. Workbooks written by older versions carry the flat table
// on their first sheet instead and are read from there.
func (s *Store) Load(ctx context.Context) (*core.History, error) {
	info, err := os.Stat(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.InfoContext(ctx, "No workbook yet, starting with empty history", "path", s.path)
		return core.NewHistory(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", s.path, err)
	}
	if info.Size() == 0 {
		return core.NewHistory(), nil
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, &core.CorruptHistoryError{Source: s.path, Err: err}
	}
	defer f.Close()

	sheet := sheets.DataSheet
	if idx, _ := f.GetSheetIndex(sheet); idx == -1 {
		list := f.GetSheetList()
		if len(list) == 0 {
			return nil, &core.CorruptHistoryError{Source: s.path, Err: errors.New("workbook has no sheets")}
		}
		sheet = list[0]
		slog.WarnContext(ctx, "Workbook has no Data sheet, reading legacy layout", "path", s.path, "sheet", sheet)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &core.CorruptHistoryError{Source: s.path, Err: fmt.Errorf("read sheet %s: %w", sheet, err)}
	}
	h, err := sheets.ParseDataRows(rows)
	if err != nil {
		return nil, &core.CorruptHistoryError{Source: s.path, Err: fmt.Errorf("sheet %s: %w", sheet, err)}
	}

	slog.InfoContext(ctx, "Loaded history from workbook", "path", s.path, "months", h.Len())
	return h, nil
}

// Save renders the whole history and replaces the workbook. The file is
// written next to the target and renamed over it, so a failed save leaves the
// previous workbook in place.
func (s *Store) Save(ctx context.Context, h *core.History) error {
	f, err := Render(h, s.style)
	if err != nil {
		return &core.PersistenceError{Path: s.path, Err: err}
	}
	defer f.Close()

	if err := writeAtomic(s.path, f); err != nil {
		return &core.PersistenceError{Path: s.path, Err: err}
	}

	slog.InfoContext(ctx, "Workbook saved", "path", s.path, "months", h.Len())
	return nil
}

func writeAtomic(path string, f *excelize.File) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".ore-*.xlsx")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = f.WriteTo(tmp); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	// CreateTemp uses 0600; keep the mode of the workbook being replaced.
	mode := fs.FileMode(0o644)
	if info, statErr := os.Stat(path); statErr == nil {
		mode = info.Mode().Perm()
	}
	if err = tmp.Chmod(mode); err != nil {
		return fmt.Errorf("chmod workbook: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync workbook: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close workbook: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace workbook: %w", err)
	}
	return nil
}
