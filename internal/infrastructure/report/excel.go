// Package report renders a run's results to an Excel workbook: one sheet
// with the matched tenders ordered by relevance, one with everything that
// was collected.
package report

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"tenderscan/internal/domain"
	"tenderscan/internal/ports"
)

const (
	matchedSheet = "Matched Tenders"
	rawSheet     = "All Tenders (Raw)"
)

// ExcelExporter writes tenders_<date>.xlsx into the output directory.
type ExcelExporter struct {
	dir      string
	filename string // may contain {date}
	log      *slog.Logger
	now      func() time.Time
}

var _ ports.Reporter = (*ExcelExporter)(nil)

func NewExcelExporter(dir, filename string, log *slog.Logger) *ExcelExporter {
	if filename == "" {
		filename = "tenders_{date}.xlsx"
	}
	return &ExcelExporter{dir: dir, filename: filename, log: log, now: time.Now}
}

// Export writes the workbook and returns its absolute path.
func (e *ExcelExporter) Export(matched, all []domain.Tender) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(f.GetSheetName(0), matchedSheet)
	if _, err := f.NewSheet(rawSheet); err != nil {
		return "", fmt.Errorf("add raw sheet: %w", err)
	}

	if err := e.writeMatched(f, matched); err != nil {
		return "", err
	}
	if err := e.writeRaw(f, all); err != nil {
		return "", err
	}

	name := strings.ReplaceAll(e.filename, "{date}", e.now().Format("2006-01-02"))
	path := filepath.Join(e.dir, name)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if e.log != nil {
		e.log.Info("report written", "path", abs, "matched", len(matched), "total", len(all))
	}
	return abs, nil
}

var matchedHeaders = []string{
	"Score", "Title", "Portal", "Department", "Location",
	"Budget", "Published", "Deadline", "Matched Keywords", "Link",
}

func (e *ExcelExporter) writeMatched(f *excelize.File, matched []domain.Tender) error {
	if err := e.writeHeader(f, matchedSheet, matchedHeaders); err != nil {
		return err
	}

	for i, t := range matched {
		row := i + 2
		values := []any{
			t.MatchScore,
			t.Title,
			t.Portal,
			t.Department,
			t.Location,
			t.DisplayBudget(),
			t.DisplayPublished(),
			t.DisplayDeadline(),
			strings.Join(t.MatchedKeywords, ", "),
			t.URL,
		}
		if err := setRow(f, matchedSheet, row, values); err != nil {
			return err
		}
		if t.URL != "" {
			cell, _ := excelize.CoordinatesToCellName(len(values), row)
			if err := f.SetCellHyperLink(matchedSheet, cell, t.URL, "External"); err != nil {
				return fmt.Errorf("set hyperlink: %w", err)
			}
		}
		if err := e.tintScore(f, matchedSheet, row, t.MatchScore); err != nil {
			return err
		}
	}

	return setColumnWidths(f, matchedSheet, map[string]float64{
		"B": 60, "D": 35, "E": 20, "F": 18, "G": 18, "H": 18, "I": 35, "J": 45,
	})
}

var rawHeaders = []string{
	"Tender ID", "Title", "Portal", "Department", "Location",
	"Budget", "Published", "Deadline", "Score", "Link",
}

func (e *ExcelExporter) writeRaw(f *excelize.File, all []domain.Tender) error {
	if err := e.writeHeader(f, rawSheet, rawHeaders); err != nil {
		return err
	}
	for i, t := range all {
		values := []any{
			t.TenderID,
			t.Title,
			t.Portal,
			t.Department,
			t.Location,
			t.DisplayBudget(),
			t.DisplayPublished(),
			t.DisplayDeadline(),
			t.MatchScore,
			t.URL,
		}
		if err := setRow(f, rawSheet, i+2, values); err != nil {
			return err
		}
	}
	return setColumnWidths(f, rawSheet, map[string]float64{"B": 60, "D": 35, "J": 45})
}

func (e *ExcelExporter) writeHeader(f *excelize.File, sheet string, headers []string) error {
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"263238"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("set header: %w", err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("apply header style: %w", err)
	}
	return nil
}

// tintScore colors the score cell by relevance band.
func (e *ExcelExporter) tintScore(f *excelize.File, sheet string, row, score int) error {
	var color string
	switch {
	case score >= 80:
		color = "1A7A3C"
	case score >= 60:
		color = "4CAF50"
	case score >= 30:
		color = "FFC107"
	default:
		color = "B0BEC5"
	}
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("score style: %w", err)
	}
	cell := fmt.Sprintf("A%d", row)
	if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
		return fmt.Errorf("apply score style: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("set cell %s: %w", cell, err)
		}
	}
	return nil
}

func setColumnWidths(f *excelize.File, sheet string, widths map[string]float64) error {
	for col, w := range widths {
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}
	return nil
}
