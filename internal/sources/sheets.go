package sources

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sadanews/sada/internal/logger"
	"github.com/sadanews/sada/internal/models"
	"github.com/tealeg/xlsx/v3"
)

// Expected spreadsheet columns, in order. The first row is a header and
// is skipped.
const (
	colTitle = iota
	colContent
	colCategory
	colImage
	colLink
	colDate
	sheetColumns
)

// SheetsAdapter imports candidates from .xlsx files dropped into an import
// directory. Consumed files are moved into a "done" subdirectory so a run
// never imports the same file twice.
type SheetsAdapter struct {
	importDir string
}

func NewSheetsAdapter(importDir string) *SheetsAdapter {
	return &SheetsAdapter{importDir: importDir}
}

func (a *SheetsAdapter) Name() string { return "Google Sheets" }

func (a *SheetsAdapter) Fetch(ctx context.Context) ([]models.Candidate, error) {
	entries, err := os.ReadDir(a.importDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read import directory: %w", err)
	}

	var candidates []models.Candidate
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".xlsx") {
			continue
		}

		path := filepath.Join(a.importDir, entry.Name())
		items, err := a.readFile(path)
		if err != nil {
			logger.Get().Warn().Err(err).Str("file", entry.Name()).
				Msg("Skipping unreadable spreadsheet")
			continue
		}
		candidates = append(candidates, items...)

		if err := a.markConsumed(path); err != nil {
			logger.Get().Warn().Err(err).Str("file", entry.Name()).
				Msg("Failed to move consumed spreadsheet aside")
		}
	}

	return candidates, nil
}

func (a *SheetsAdapter) readFile(path string) ([]models.Candidate, error) {
	file, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}

	var candidates []models.Candidate
	for _, sheet := range file.Sheets {
		rowIndex := 0
		err := sheet.ForEachRow(func(row *xlsx.Row) error {
			defer func() { rowIndex++ }()
			if rowIndex == 0 {
				return nil // header
			}

			c, ok := mapSheetRow(row, a.Name())
			if ok {
				candidates = append(candidates, c)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to iterate sheet %s: %w", sheet.Name, err)
		}
	}
	return candidates, nil
}

func mapSheetRow(row *xlsx.Row, source string) (models.Candidate, bool) {
	cell := func(i int) string {
		c := row.GetCell(i)
		if c == nil {
			return ""
		}
		return strings.TrimSpace(c.String())
	}

	title := cell(colTitle)
	content := cell(colContent)
	if title == "" || content == "" {
		return models.Candidate{}, false
	}

	date := time.Now()
	if raw := cell(colDate); raw != "" {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			date = parsed
		} else if parsed, err := time.Parse("2006-01-02", raw); err == nil {
			date = parsed
		}
	}

	return models.Candidate{
		Title:        title,
		Content:      content,
		Category:     cell(colCategory),
		Image:        cell(colImage),
		OriginalLink: cell(colLink),
		Date:         date,
		Source:       source,
	}, true
}

func (a *SheetsAdapter) markConsumed(path string) error {
	doneDir := filepath.Join(a.importDir, "done")
	if err := os.MkdirAll(doneDir, 0755); err != nil {
		return fmt.Errorf("failed to create done directory: %w", err)
	}
	return os.Rename(path, filepath.Join(doneDir, filepath.Base(path)))
}
