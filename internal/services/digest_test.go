package services

import (
	"strings"
	"testing"
	"time"

	"github.com/danodev/daworks/internal/models"
)

func TestDigestCronExpr(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"09:00", "0 9 * * *"},
		{"18:30", "30 18 * * *"},
		{"7:45", "45 7 * * *"},
		{"7:5", "0 9 * * *"},
		{"25:00", "0 9 * * *"},
		{"garbage", "0 9 * * *"},
		{"", "0 9 * * *"},
	}

	for _, tt := range tests {
		if got := digestCronExpr(tt.input); got != tt.want {
			t.Errorf("digestCronExpr(%q) = %q, expected %q", tt.input, got, tt.want)
		}
	}
}

func TestBuildDigestMessage(t *testing.T) {
	s := &DigestService{}
	digest := &models.DigestLog{
		ReportDate:       time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		TotalSpend:       300,
		TotalClicks:      1200,
		TotalImpressions: 45000,
		TotalLeads:       4,
		WonLeads:         2,
		TotalRevenue:     1500,
		TopChannels:      `[{"channel":"google","spend":200,"clicks":900}]`,
		TopCampaigns:     `[{"name":"Summer Sale","spend":180,"leads":3}]`,
	}

	msg := s.buildMessage(digest)

	for _, want := range []string{
		"Marketing Digest - 2024-06-15",
		"Spend: 300.00",
		"Clicks: 1200",
		"Leads: 4 (won 2)",
		"Revenue: 1500.00",
		"CPL: 75.00",
		"Top channels",
		"google",
		"Top campaigns",
		"Summer Sale",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("digest message missing %q:\n%s", want, msg)
		}
	}
}

func TestBuildDigestMessage_QuietDay(t *testing.T) {
	s := &DigestService{}
	digest := &models.DigestLog{
		ReportDate:   time.Date(2024, 6, 16, 0, 0, 0, 0, time.UTC),
		TopChannels:  `[]`,
		TopCampaigns: `[]`,
	}

	msg := s.buildMessage(digest)

	if strings.Contains(msg, "CPL") {
		t.Error("message shows CPL with zero leads")
	}
	if strings.Contains(msg, "Top channels") {
		t.Error("message shows an empty channels section")
	}
	if strings.Contains(msg, "Top campaigns") {
		t.Error("message shows an empty campaigns section")
	}
	if !strings.Contains(msg, "Spend: 0.00") {
		t.Errorf("message missing zero spend line:\n%s", msg)
	}
}

func TestNewDigestService_DefaultsCountry(t *testing.T) {
	s := NewDigestService(nil, nil, nil, nil, "")
	if s.country != "NONE" {
		t.Errorf("country = %q, expected %q", s.country, "NONE")
	}

	s = NewDigestService(nil, nil, nil, nil, "US")
	if s.country != "US" {
		t.Errorf("country = %q, expected %q", s.country, "US")
	}
}
