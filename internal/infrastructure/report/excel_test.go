package report

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"tenderscan/internal/domain"
)

func TestExportWritesBothSheets(t *testing.T) {
	dir := t.TempDir()
	e := NewExcelExporter(dir, "tenders_{date}.xlsx", nil)
	e.now = func() time.Time { return time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC) }

	deadline := time.Date(2026, 9, 5, 15, 0, 0, 0, time.UTC)
	matched := []domain.Tender{{
		TenderID:        "2026_HSL_001",
		Title:           "Hull painting works",
		Portal:          domain.PortalHSL,
		MatchScore:      85,
		MatchedKeywords: []string{"painting", "LOC:visakhapatnam"},
		Deadline:        &deadline,
		URL:             "https://eprocurehsl.nic.in/tender/1",
	}}
	all := append(matched, domain.Tender{Title: "Unrelated supply", Portal: domain.PortalCPPP, MatchScore: 10})

	path, err := e.Export(matched, all)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if filepath.Base(path) != "tenders_2026-08-26.xlsx" {
		t.Errorf("filename = %q, want date expanded", filepath.Base(path))
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != "Matched Tenders" || sheets[1] != "All Tenders (Raw)" {
		t.Fatalf("sheets = %v", sheets)
	}

	title, _ := f.GetCellValue("Matched Tenders", "B2")
	if title != "Hull painting works" {
		t.Errorf("matched title cell = %q", title)
	}
	score, _ := f.GetCellValue("Matched Tenders", "A2")
	if score != "85" {
		t.Errorf("matched score cell = %q", score)
	}
	rawTitle, _ := f.GetCellValue("All Tenders (Raw)", "B3")
	if rawTitle != "Unrelated supply" {
		t.Errorf("raw sheet row 3 title = %q", rawTitle)
	}
}

func TestExportEmptyRun(t *testing.T) {
	e := NewExcelExporter(t.TempDir(), "", nil)
	path, err := e.Export(nil, nil)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	header, _ := f.GetCellValue("Matched Tenders", "A1")
	if header != "Score" {
		t.Errorf("header = %q", header)
	}
}
