package services

import (
	"strings"
	"testing"

	"github.com/danodev/daworks/internal/models"
)

func TestMapExpenseColumns(t *testing.T) {
	tests := []struct {
		name    string
		header  []string
		date    int
		amount  int
		channel int
		wantErr bool
	}{
		{
			name:   "standard export",
			header: []string{"Date", "Campaign", "Channel", "Spend", "Clicks", "Impressions"},
			date:   0, amount: 3, channel: 2,
		},
		{
			name:   "alternate keywords",
			header: []string{"Day", "Platform", "Cost (USD)", "Views"},
			date:   0, amount: 2, channel: 1,
		},
		{
			name:   "source as channel",
			header: []string{"report_date", "source", "amount"},
			date:   0, amount: 2, channel: 1,
		},
		{
			name:    "missing amount",
			header:  []string{"Date", "Campaign", "Clicks"},
			wantErr: true,
		},
		{
			name:    "missing date",
			header:  []string{"Campaign", "Spend"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols, err := mapExpenseColumns(tt.header)
			if tt.wantErr {
				if err == nil {
					t.Errorf("mapExpenseColumns(%v) expected error, got none", tt.header)
				}
				return
			}
			if err != nil {
				t.Fatalf("mapExpenseColumns(%v) error: %v", tt.header, err)
			}
			if cols.date != tt.date {
				t.Errorf("date column = %d, expected %d", cols.date, tt.date)
			}
			if cols.amount != tt.amount {
				t.Errorf("amount column = %d, expected %d", cols.amount, tt.amount)
			}
			if cols.channel != tt.channel {
				t.Errorf("channel column = %d, expected %d", cols.channel, tt.channel)
			}
		})
	}
}

func TestMapExpenseColumns_FirstMatchWins(t *testing.T) {
	// Two columns could both claim "amount"; the leftmost wins
	cols, err := mapExpenseColumns([]string{"date", "spend", "total cost"})
	if err != nil {
		t.Fatalf("mapExpenseColumns error: %v", err)
	}
	if cols.amount != 1 {
		t.Errorf("amount column = %d, expected 1", cols.amount)
	}
}

func TestParseImportDate(t *testing.T) {
	tests := []struct {
		value   string
		want    string
		wantErr bool
	}{
		{"2024-06-01", "2024-06-01", false},
		{"2024/06/01", "2024-06-01", false},
		{"06/01/2024", "2024-06-01", false},
		{" 2024-06-01 ", "2024-06-01", false},
		{"June 1st", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := parseImportDate(tt.value)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseImportDate(%q) expected error, got %v", tt.value, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseImportDate(%q) error: %v", tt.value, err)
			continue
		}
		if got.Format("2006-01-02") != tt.want {
			t.Errorf("parseImportDate(%q) = %s, expected %s", tt.value, got.Format("2006-01-02"), tt.want)
		}
	}
}

func TestParseImportAmount(t *testing.T) {
	tests := []struct {
		value   string
		want    float64
		wantErr bool
	}{
		{"123.45", 123.45, false},
		{"$1,234.50", 1234.50, false},
		{"€99", 99, false},
		{" 10 ", 10, false},
		{"free", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := parseImportAmount(tt.value)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseImportAmount(%q) expected error, got %v", tt.value, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseImportAmount(%q) error: %v", tt.value, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseImportAmount(%q) = %v, expected %v", tt.value, got, tt.want)
		}
	}
}

func TestParseImportInt(t *testing.T) {
	tests := []struct {
		value string
		want  int64
	}{
		{"1200", 1200},
		{"1,200", 1200},
		{"", 0},
		{"n/a", 0},
	}

	for _, tt := range tests {
		if got := parseImportInt(tt.value); got != tt.want {
			t.Errorf("parseImportInt(%q) = %d, expected %d", tt.value, got, tt.want)
		}
	}
}

func TestParseExpenseRow(t *testing.T) {
	cols := expenseColumns{
		date: 0, amount: 1, channel: 2, campaign: 3,
		clicks: 4, impressions: 5, region: -1, country: -1,
	}
	campaigns := []models.Campaign{
		{ID: 7, Name: "Summer Sale", UTMCampaign: "summer_sale"},
	}

	row := []string{"2024-06-01", "$250.00", "Google Ads", "summer-sale", "120", "4,500"}
	expense, ok := parseExpenseRow(3, row, cols, campaigns)
	if !ok {
		t.Fatal("parseExpenseRow returned ok = false for a valid row")
	}
	if expense.ProjectID != 3 {
		t.Errorf("ProjectID = %d, expected 3", expense.ProjectID)
	}
	if expense.Amount != 250 {
		t.Errorf("Amount = %v, expected 250", expense.Amount)
	}
	if expense.Channel != "Google Ads" {
		t.Errorf("Channel = %q, expected %q", expense.Channel, "Google Ads")
	}
	if expense.Clicks != 120 {
		t.Errorf("Clicks = %d, expected 120", expense.Clicks)
	}
	if expense.Impressions != 4500 {
		t.Errorf("Impressions = %d, expected 4500", expense.Impressions)
	}
	if expense.CampaignID == nil || *expense.CampaignID != 7 {
		t.Errorf("CampaignID = %v, expected 7", expense.CampaignID)
	}
}

func TestParseExpenseRow_SkipsBadRows(t *testing.T) {
	cols := expenseColumns{date: 0, amount: 1, channel: -1, campaign: -1, clicks: -1, impressions: -1, region: -1, country: -1}

	tests := []struct {
		name string
		row  []string
	}{
		{"bad date", []string{"not a date", "100"}},
		{"bad amount", []string{"2024-06-01", "a lot"}},
		{"short row", []string{"2024-06-01"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := parseExpenseRow(1, tt.row, cols, nil); ok {
				t.Errorf("parseExpenseRow(%v) expected ok = false", tt.row)
			}
		})
	}
}

func TestParseExpenseRow_NoCampaignColumn(t *testing.T) {
	cols := expenseColumns{date: 0, amount: 1, channel: -1, campaign: -1, clicks: -1, impressions: -1, region: -1, country: -1}

	expense, ok := parseExpenseRow(1, []string{"2024-06-01", "50"}, cols, nil)
	if !ok {
		t.Fatal("parseExpenseRow returned ok = false")
	}
	if expense.CampaignID != nil {
		t.Errorf("CampaignID = %v, expected nil", expense.CampaignID)
	}
}

func TestReadCSV(t *testing.T) {
	data := "date,amount\n2024-06-01,100\n2024-06-02,200\n"
	records, err := readCSV([]byte(data))
	if err != nil {
		t.Fatalf("readCSV error: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("len(records) = %d, expected 3", len(records))
	}

	// Ragged rows must not abort the parse
	ragged := "date,amount,channel\n2024-06-01,100\n"
	if _, err := readCSV([]byte(ragged)); err != nil {
		t.Errorf("readCSV(ragged) error: %v", err)
	}
}

func TestFieldOutOfRange(t *testing.T) {
	row := []string{"a", "b"}
	if got := field(row, -1); got != "" {
		t.Errorf("field(row, -1) = %q, expected empty", got)
	}
	if got := field(row, 5); got != "" {
		t.Errorf("field(row, 5) = %q, expected empty", got)
	}
	if got := field(row, 1); got != "b" {
		t.Errorf("field(row, 1) = %q, expected %q", got, "b")
	}
}

func TestImportDateFormats_CoverCommonExports(t *testing.T) {
	if len(importDateFormats) == 0 {
		t.Fatal("importDateFormats is empty")
	}
	for _, format := range importDateFormats {
		if !strings.Contains(format, "2006") {
			t.Errorf("format %q does not look like a Go reference layout", format)
		}
	}
}
