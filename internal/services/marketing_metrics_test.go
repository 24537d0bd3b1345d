package services

import (
	"testing"

	"github.com/danodev/daworks/internal/models"
)

func TestComputeMetrics(t *testing.T) {
	expenses := []models.ExpenseLog{
		{Amount: 100, Clicks: 50, Impressions: 1000},
		{Amount: 200, Clicks: 150, Impressions: 4000},
	}
	leads := []models.Lead{
		{Status: models.LeadStatusNew},
		{Status: models.LeadStatusWon, Value: 900},
		{Status: models.LeadStatusWon, Value: 600},
		{Status: models.LeadStatusLost},
	}

	m := computeMetrics(expenses, leads)

	if m.Spend != 300 {
		t.Errorf("Spend = %f, expected 300", m.Spend)
	}
	if m.Clicks != 200 {
		t.Errorf("Clicks = %d, expected 200", m.Clicks)
	}
	if m.Impressions != 5000 {
		t.Errorf("Impressions = %d, expected 5000", m.Impressions)
	}
	if m.Leads != 4 {
		t.Errorf("Leads = %d, expected 4", m.Leads)
	}
	if m.Won != 2 {
		t.Errorf("Won = %d, expected 2", m.Won)
	}
	if m.Revenue != 1500 {
		t.Errorf("Revenue = %f, expected 1500", m.Revenue)
	}
	if m.CPL != 75 {
		t.Errorf("CPL = %f, expected 75", m.CPL)
	}
	if m.CPC != 1.5 {
		t.Errorf("CPC = %f, expected 1.5", m.CPC)
	}
	if m.CTR != 4 {
		t.Errorf("CTR = %f, expected 4", m.CTR)
	}
	if m.ROAS != 5 {
		t.Errorf("ROAS = %f, expected 5", m.ROAS)
	}
	if m.ConversionRate != 50 {
		t.Errorf("ConversionRate = %f, expected 50", m.ConversionRate)
	}
}

func TestComputeMetrics_ZeroDenominators(t *testing.T) {
	m := computeMetrics(nil, nil)

	if m.CPL != 0 {
		t.Errorf("CPL with no leads = %f, expected 0", m.CPL)
	}
	if m.CPC != 0 {
		t.Errorf("CPC with no clicks = %f, expected 0", m.CPC)
	}
	if m.CTR != 0 {
		t.Errorf("CTR with no impressions = %f, expected 0", m.CTR)
	}
	if m.ROAS != 0 {
		t.Errorf("ROAS with no spend = %f, expected 0", m.ROAS)
	}
	if m.ConversionRate != 0 {
		t.Errorf("ConversionRate with no leads = %f, expected 0", m.ConversionRate)
	}
}

func TestComputeMetrics_SpendWithoutLeads(t *testing.T) {
	expenses := []models.ExpenseLog{{Amount: 500}}

	m := computeMetrics(expenses, nil)

	if m.Spend != 500 {
		t.Errorf("Spend = %f, expected 500", m.Spend)
	}
	if m.CPL != 0 {
		t.Errorf("CPL = %f, expected 0 when there are no leads", m.CPL)
	}
	if m.ROAS != 0 {
		t.Errorf("ROAS = %f, expected 0 without revenue", m.ROAS)
	}
}

func TestComputeBreakdown_ByChannel(t *testing.T) {
	expenses := []models.ExpenseLog{
		{Channel: "google", Amount: 100},
		{Channel: "meta", Amount: 50},
		{Channel: "google", Amount: 25},
	}
	leads := []models.Lead{
		{Channel: "google", Status: models.LeadStatusWon, Value: 400},
		{Channel: "email", Status: models.LeadStatusNew},
	}

	entries := computeBreakdown(expenses, leads,
		func(e *models.ExpenseLog) string { return channelKey(e.Channel) },
		func(l *models.Lead) string { return channelKey(l.Channel) })

	if len(entries) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(entries))
	}

	// Sorted keys: email, google, meta
	if entries[0].Key != "email" || entries[1].Key != "google" || entries[2].Key != "meta" {
		t.Errorf("keys = [%s %s %s], expected sorted [email google meta]",
			entries[0].Key, entries[1].Key, entries[2].Key)
	}

	google := entries[1].Metrics
	if google.Spend != 125 {
		t.Errorf("google Spend = %f, expected 125", google.Spend)
	}
	if google.Leads != 1 || google.Won != 1 {
		t.Errorf("google leads/won = %d/%d, expected 1/1", google.Leads, google.Won)
	}
	if google.Revenue != 400 {
		t.Errorf("google Revenue = %f, expected 400", google.Revenue)
	}

	email := entries[0].Metrics
	if email.Spend != 0 || email.Leads != 1 {
		t.Errorf("email spend/leads = %f/%d, expected 0/1", email.Spend, email.Leads)
	}
}

func TestComputeBreakdown_ByRegion(t *testing.T) {
	expenses := []models.ExpenseLog{
		{Region: "Lisbon", Country: "PT", Amount: 80},
	}
	leads := []models.Lead{
		{Region: "Lisbon", Country: "PT", Status: models.LeadStatusNew},
		{Region: "Porto", Country: "PT", Status: models.LeadStatusNew},
	}

	entries := computeBreakdown(expenses, leads,
		func(e *models.ExpenseLog) string { return regionKey(e.Region, e.Country) },
		func(l *models.Lead) string { return regionKey(l.Region, l.Country) })

	if len(entries) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(entries))
	}
	if entries[0].Key != "Lisbon, PT" {
		t.Errorf("first key = %q, expected %q", entries[0].Key, "Lisbon, PT")
	}
	if entries[0].Metrics.Spend != 80 || entries[0].Metrics.Leads != 1 {
		t.Errorf("Lisbon spend/leads = %f/%d, expected 80/1",
			entries[0].Metrics.Spend, entries[0].Metrics.Leads)
	}
}

func TestChannelKey(t *testing.T) {
	if channelKey("") != "unknown" {
		t.Errorf("empty channel should map to unknown, got %q", channelKey(""))
	}
	if channelKey("google") != "google" {
		t.Errorf("channelKey(google) = %q", channelKey("google"))
	}
}

func TestRegionKey(t *testing.T) {
	if regionKey("", "") != "unknown" {
		t.Errorf("empty region/country should map to unknown, got %q", regionKey("", ""))
	}
	if regionKey("Lisbon", "PT") != "Lisbon, PT" {
		t.Errorf("regionKey = %q, expected %q", regionKey("Lisbon", "PT"), "Lisbon, PT")
	}
	if regionKey("", "PT") != ", PT" {
		t.Errorf("regionKey with empty region = %q, expected %q", regionKey("", "PT"), ", PT")
	}
}

func TestSafeDiv(t *testing.T) {
	if got := safeDiv(10, 2); got != 5 {
		t.Errorf("safeDiv(10, 2) = %f, expected 5", got)
	}
	if got := safeDiv(10, 0); got != 0 {
		t.Errorf("safeDiv(10, 0) = %f, expected 0", got)
	}
	if got := safeDiv(0, 0); got != 0 {
		t.Errorf("safeDiv(0, 0) = %f, expected 0", got)
	}
}
