package services

import (
	"testing"
	"time"
)

func TestIsBusinessDay_WeekendsOnly(t *testing.T) {
	s := NewHolidayService()

	saturday := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	if s.IsBusinessDay(saturday, "NONE") {
		t.Error("Saturday reported as a business day")
	}

	wednesday := time.Date(2024, 6, 12, 12, 0, 0, 0, time.UTC)
	if !s.IsBusinessDay(wednesday, "NONE") {
		t.Error("Wednesday reported as a non-business day")
	}
}

func TestIsBusinessDay_UnknownCountryFallsBack(t *testing.T) {
	s := NewHolidayService()

	wednesday := time.Date(2024, 6, 12, 12, 0, 0, 0, time.UTC)
	if !s.IsBusinessDay(wednesday, "XX") {
		t.Error("unknown country should fall back to weekday check")
	}
}

func TestIsBusinessDay_USIndependenceDay(t *testing.T) {
	s := NewHolidayService()

	// 2024-07-04 is a Thursday, a working day everywhere but the US
	july4 := time.Date(2024, 7, 4, 12, 0, 0, 0, time.UTC)
	if s.IsBusinessDay(july4, "US") {
		t.Error("July 4th reported as a US business day")
	}
	if !s.IsBusinessDay(july4, "NONE") {
		t.Error("July 4th should be a business day under the weekends-only calendar")
	}
}

func TestHolidayCountries(t *testing.T) {
	s := NewHolidayService()
	countries := s.Countries()

	if len(countries) < 20 {
		t.Fatalf("len(countries) = %d, expected at least 20", len(countries))
	}

	codes := make(map[string]bool)
	for _, c := range countries {
		if c.Code == "" || c.Name == "" {
			t.Errorf("country with empty field: %+v", c)
		}
		if codes[c.Code] {
			t.Errorf("duplicate country code %q", c.Code)
		}
		codes[c.Code] = true
	}

	for _, want := range []string{"CN", "US", "NONE"} {
		if !codes[want] {
			t.Errorf("countries missing %q", want)
		}
	}
}

func TestIsValidCountry(t *testing.T) {
	s := NewHolidayService()

	for _, code := range []string{"CN", "US", "GB", "NONE"} {
		if !s.IsValidCountry(code) {
			t.Errorf("IsValidCountry(%q) = false, expected true", code)
		}
	}
	if s.IsValidCountry("XX") {
		t.Error("IsValidCountry(\"XX\") = true, expected false")
	}
}
