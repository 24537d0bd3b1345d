package services

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"strings"
	"testing"
	"time"

	"github.com/danodev/daworks/internal/models"
)

func TestGoogleConversionRows(t *testing.T) {
	converted := time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)
	leads := []models.Lead{
		{GCLID: "gclid-1", Value: 1500, ConvertedAt: &converted},
		{GCLID: "", Value: 900, ConvertedAt: &converted}, // no gclid, skipped
		{GCLID: "gclid-2", Value: 250.5, ConvertedAt: &converted},
	}

	rows := googleConversionRows(leads, "Lead Won", "USD")
	if len(rows) != 3 {
		t.Fatalf("len(rows) = %d, expected 3 (header + 2 leads)", len(rows))
	}

	header := strings.Join(rows[0], ",")
	expected := "Google Click ID,Conversion Name,Conversion Time,Conversion Value,Conversion Currency"
	if header != expected {
		t.Errorf("header = %q, expected %q", header, expected)
	}

	if rows[1][0] != "gclid-1" {
		t.Errorf("gclid = %q, expected %q", rows[1][0], "gclid-1")
	}
	if rows[1][1] != "Lead Won" {
		t.Errorf("conversion name = %q, expected %q", rows[1][1], "Lead Won")
	}
	if rows[1][3] != "1500.00" {
		t.Errorf("value = %q, expected %q", rows[1][3], "1500.00")
	}
	if rows[2][3] != "250.50" {
		t.Errorf("value = %q, expected %q", rows[2][3], "250.50")
	}
	if rows[1][4] != "USD" {
		t.Errorf("currency = %q, expected %q", rows[1][4], "USD")
	}
	if !strings.HasPrefix(rows[1][2], "2024-06-15 10:30:00") {
		t.Errorf("conversion time = %q, expected 2024-06-15 10:30:00 prefix", rows[1][2])
	}
}

func TestMetaConversionRows(t *testing.T) {
	converted := time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)
	leads := []models.Lead{
		{Email: "Jane@Example.com", Value: 100, ConvertedAt: &converted},
		{Email: "  ", Value: 50, ConvertedAt: &converted}, // no email, skipped
	}

	rows := metaConversionRows(leads, "EUR")
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, expected 2 (header + 1 lead)", len(rows))
	}

	header := strings.Join(rows[0], ",")
	if header != "email,event_name,event_time,value,currency" {
		t.Errorf("header = %q, expected %q", header, "email,event_name,event_time,value,currency")
	}

	sum := sha256.Sum256([]byte("jane@example.com"))
	if rows[1][0] != hex.EncodeToString(sum[:]) {
		t.Errorf("hashed email = %q, expected digest of normalized address", rows[1][0])
	}
	if rows[1][1] != "Purchase" {
		t.Errorf("event_name = %q, expected %q", rows[1][1], "Purchase")
	}
	if rows[1][2] != "1718447400" {
		t.Errorf("event_time = %q, expected %q", rows[1][2], "1718447400")
	}
	if rows[1][4] != "EUR" {
		t.Errorf("currency = %q, expected %q", rows[1][4], "EUR")
	}
}

func TestHashEmail_Normalizes(t *testing.T) {
	a := hashEmail("jane@example.com")
	b := hashEmail("  JANE@example.COM ")
	if a != b {
		t.Errorf("hashEmail is not normalization-stable: %q vs %q", a, b)
	}
	if len(a) != 64 {
		t.Errorf("len(hash) = %d, expected 64 hex chars", len(a))
	}
	if hashEmail("jane@example.com") == hashEmail("john@example.com") {
		t.Error("different emails produced the same hash")
	}
}

func TestConversionTime_FallsBackToUpdatedAt(t *testing.T) {
	converted := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	updated := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

	withStamp := models.Lead{ConvertedAt: &converted, UpdatedAt: updated}
	if got := conversionTime(withStamp); !got.Equal(converted) {
		t.Errorf("conversionTime = %v, expected %v", got, converted)
	}

	withoutStamp := models.Lead{UpdatedAt: updated}
	if got := conversionTime(withoutStamp); !got.Equal(updated) {
		t.Errorf("conversionTime = %v, expected %v", got, updated)
	}
}

func TestCSVBytes(t *testing.T) {
	data, err := csvBytes([][]string{{"a", "b"}, {"1", "hello, world"}})
	if err != nil {
		t.Fatalf("csvBytes error: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("re-parsing output: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, expected 2", len(records))
	}
	if records[1][1] != "hello, world" {
		t.Errorf("quoted field = %q, expected %q", records[1][1], "hello, world")
	}
}

func TestCountDataRows(t *testing.T) {
	tests := []struct {
		data string
		want int
	}{
		{"header\nrow1\nrow2\n", 2},
		{"header\n", 0},
		{"", 0},
	}

	for _, tt := range tests {
		if got := countDataRows([]byte(tt.data)); got != tt.want {
			t.Errorf("countDataRows(%q) = %d, expected %d", tt.data, got, tt.want)
		}
	}
}

func TestExportFileName(t *testing.T) {
	name := exportFileName("google_conversions")
	if !strings.HasPrefix(name, "google_conversions_") {
		t.Errorf("file name = %q, expected google_conversions_ prefix", name)
	}
	if !strings.HasSuffix(name, ".csv") {
		t.Errorf("file name = %q, expected .csv suffix", name)
	}
}

func TestFormatConversionValue(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{1500, "1500.00"},
		{0, "0.00"},
		{99.999, "100.00"},
	}

	for _, tt := range tests {
		if got := formatConversionValue(tt.value); got != tt.want {
			t.Errorf("formatConversionValue(%v) = %q, expected %q", tt.value, got, tt.want)
		}
	}
}
