package services

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/danodev/daworks/internal/models"
)

func TestStatementPeriod(t *testing.T) {
	tests := []struct {
		start string
		end   string
		want  string
	}{
		{"2024-06-01", "2024-06-30", "Period: 2024-06-01 to 2024-06-30"},
		{"2024-06-01", "", "Period: from 2024-06-01"},
		{"", "2024-06-30", "Period: through 2024-06-30"},
		{"", "", "Period: all activity"},
	}

	for _, tt := range tests {
		if got := statementPeriod(tt.start, tt.end); got != tt.want {
			t.Errorf("statementPeriod(%q, %q) = %q, expected %q", tt.start, tt.end, got, tt.want)
		}
	}
}

func TestStatementColumnWidths(t *testing.T) {
	longDesc := strings.Repeat("x", 100)
	report := &StatementReport{
		Items: []models.StatementItem{
			{Description: longDesc, Amount: 100},
			{Description: "short", Amount: 5},
		},
	}

	widths := statementColumnWidths(report)
	if len(widths) != len(statementHeaders) {
		t.Fatalf("len(widths) = %d, expected %d", len(widths), len(statementHeaders))
	}

	// Long descriptions cap at 60
	if widths[1] != 60 {
		t.Errorf("description width = %v, expected 60", widths[1])
	}
	for i, w := range widths {
		if w < 10 {
			t.Errorf("column %d width = %v, expected at least 10", i, w)
		}
	}
}

func TestRenderStatementXLSX(t *testing.T) {
	day := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	report := &StatementReport{
		Client: &models.AccountClient{CompanyName: "Acme Pty Ltd"},
		Start:  "2024-06-01",
		End:    "2024-06-30",
		Items: []models.StatementItem{
			{Date: day, Description: "Monthly retainer", Quantity: 1, UnitAmount: 2000, Amount: 2000},
		},
		Adhoc: []models.AdhocRequirement{
			{Title: "Logo refresh", Status: "delivered", Fee: 350, UpdatedAt: day},
		},
		ItemsTotal: 2000,
		AdhocTotal: 350,
		GrandTotal: 2350,
	}

	data, err := renderStatementXLSX(report)
	if err != nil {
		t.Fatalf("renderStatementXLSX error: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("renderStatementXLSX returned no bytes")
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("reopening workbook: %v", err)
	}
	defer f.Close()

	assertCell := func(cell, want string) {
		t.Helper()
		got, err := f.GetCellValue(statementSheet, cell)
		if err != nil {
			t.Fatalf("GetCellValue(%s) error: %v", cell, err)
		}
		if got != want {
			t.Errorf("cell %s = %q, expected %q", cell, got, want)
		}
	}

	assertCell("A1", "Statement of Account")
	assertCell("A2", "Acme Pty Ltd")
	assertCell("A3", "Period: 2024-06-01 to 2024-06-30")
	assertCell("A5", "Date")
	assertCell("E5", "Amount")
	assertCell("B6", "Monthly retainer")
	assertCell("B7", "Ad-hoc: Logo refresh")
	assertCell("B9", "Items total")
	assertCell("B10", "Ad-hoc total")
	assertCell("B11", "Total")
	assertCell("E11", "2350")
}

func TestRenderStatementXLSX_EmptyReport(t *testing.T) {
	report := &StatementReport{
		Client: &models.AccountClient{CompanyName: "Empty Co"},
	}

	data, err := renderStatementXLSX(report)
	if err != nil {
		t.Fatalf("renderStatementXLSX error: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("reopening workbook: %v", err)
	}
	defer f.Close()

	got, err := f.GetCellValue(statementSheet, "B7")
	if err != nil {
		t.Fatalf("GetCellValue error: %v", err)
	}
	if got != "Items total" {
		t.Errorf("cell B7 = %q, expected %q", got, "Items total")
	}
}

func TestStoredFileName(t *testing.T) {
	name := storedFileName("report.PDF")
	if !strings.HasSuffix(name, ".pdf") {
		t.Errorf("stored name %q should keep a lowercased extension", name)
	}
	if len(name) <= len(".pdf") {
		t.Errorf("stored name %q too short", name)
	}

	if a, b := storedFileName("a.txt"), storedFileName("a.txt"); a == b {
		t.Error("two uploads produced the same stored name")
	}

	// Hostile extensions are dropped
	weird := storedFileName("file.<script>alert</script>")
	if strings.Contains(weird, "<") {
		t.Errorf("stored name %q kept unsafe characters", weird)
	}
}
