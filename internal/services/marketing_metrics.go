package services

import (
	"fmt"
	"sort"

	"github.com/danodev/daworks/internal/models"
)

// MarketingMetrics is one KPI block. Every ratio returns 0 when its
// denominator is 0.
type MarketingMetrics struct {
	Spend          float64 `json:"spend"`
	Clicks         int64   `json:"clicks"`
	Impressions    int64   `json:"impressions"`
	Leads          int64   `json:"leads"`
	Won            int64   `json:"won"`
	Revenue        float64 `json:"revenue"`
	CPL            float64 `json:"cpl"`
	CPC            float64 `json:"cpc"`
	CTR            float64 `json:"ctr"`
	ROAS           float64 `json:"roas"`
	ConversionRate float64 `json:"conversion_rate"`
}

type MetricsBreakdownEntry struct {
	Key     string           `json:"key"`
	Metrics MarketingMetrics `json:"metrics"`
}

type MarketingMetricsRequest struct {
	Start   string `form:"start"`
	End     string `form:"end"`
	GroupBy string `form:"group_by" binding:"omitempty,oneof=channel region"`
}

type MarketingMetricsResponse struct {
	Start     string                  `json:"start,omitempty"`
	End       string                  `json:"end,omitempty"`
	GroupBy   string                  `json:"group_by,omitempty"`
	Totals    MarketingMetrics        `json:"totals"`
	Breakdown []MetricsBreakdownEntry `json:"breakdown,omitempty"`
}

// GetMetrics loads the project's expenses and leads in range and
// reduces them to KPIs, optionally grouped by channel or by the
// "region, country" composite key
func (s *MarketingService) GetMetrics(projectID uint, req *MarketingMetricsRequest) (*MarketingMetricsResponse, error) {
	expenseQuery := s.db.Model(&models.ExpenseLog{}).Where("project_id = ?", projectID)
	expenseQuery, err := applyDateRange(expenseQuery, "date", req.Start, req.End)
	if err != nil {
		return nil, err
	}

	var expenses []models.ExpenseLog
	if err := expenseQuery.Find(&expenses).Error; err != nil {
		return nil, err
	}

	leadQuery := s.db.Model(&models.Lead{}).Where("project_id = ?", projectID)
	leadQuery, err = applyDateRange(leadQuery, "created_at", req.Start, req.End)
	if err != nil {
		return nil, err
	}

	var leads []models.Lead
	if err := leadQuery.Find(&leads).Error; err != nil {
		return nil, err
	}

	resp := &MarketingMetricsResponse{
		Start:   req.Start,
		End:     req.End,
		GroupBy: req.GroupBy,
		Totals:  computeMetrics(expenses, leads),
	}

	switch req.GroupBy {
	case "channel":
		resp.Breakdown = computeBreakdown(expenses, leads,
			func(e *models.ExpenseLog) string { return channelKey(e.Channel) },
			func(l *models.Lead) string { return channelKey(l.Channel) })
	case "region":
		resp.Breakdown = computeBreakdown(expenses, leads,
			func(e *models.ExpenseLog) string { return regionKey(e.Region, e.Country) },
			func(l *models.Lead) string { return regionKey(l.Region, l.Country) })
	}

	return resp, nil
}

// computeMetrics is a single pass over in-memory rows
func computeMetrics(expenses []models.ExpenseLog, leads []models.Lead) MarketingMetrics {
	var m MarketingMetrics

	for i := range expenses {
		m.Spend += expenses[i].Amount
		m.Clicks += expenses[i].Clicks
		m.Impressions += expenses[i].Impressions
	}

	for i := range leads {
		m.Leads++
		if leads[i].Status == models.LeadStatusWon {
			m.Won++
			m.Revenue += leads[i].Value
		}
	}

	m.CPL = safeDiv(m.Spend, float64(m.Leads))
	m.CPC = safeDiv(m.Spend, float64(m.Clicks))
	m.CTR = safeDiv(float64(m.Clicks), float64(m.Impressions)) * 100
	m.ROAS = safeDiv(m.Revenue, m.Spend)
	m.ConversionRate = safeDiv(float64(m.Won), float64(m.Leads)) * 100

	return m
}

// computeBreakdown groups both row kinds by a shared string key and
// reduces each group. Keys come back sorted for stable output.
func computeBreakdown(expenses []models.ExpenseLog, leads []models.Lead,
	expenseKey func(*models.ExpenseLog) string, leadKey func(*models.Lead) string) []MetricsBreakdownEntry {

	expenseGroups := make(map[string][]models.ExpenseLog)
	leadGroups := make(map[string][]models.Lead)
	keys := make(map[string]bool)

	for i := range expenses {
		k := expenseKey(&expenses[i])
		expenseGroups[k] = append(expenseGroups[k], expenses[i])
		keys[k] = true
	}
	for i := range leads {
		k := leadKey(&leads[i])
		leadGroups[k] = append(leadGroups[k], leads[i])
		keys[k] = true
	}

	sorted := make([]string, 0, len(keys))
	for k := range keys {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	entries := make([]MetricsBreakdownEntry, 0, len(sorted))
	for _, k := range sorted {
		entries = append(entries, MetricsBreakdownEntry{
			Key:     k,
			Metrics: computeMetrics(expenseGroups[k], leadGroups[k]),
		})
	}
	return entries
}

func channelKey(channel string) string {
	if channel == "" {
		return "unknown"
	}
	return channel
}

// regionKey builds the "region, country" composite grouping key
func regionKey(region, country string) string {
	if region == "" && country == "" {
		return "unknown"
	}
	return fmt.Sprintf("%s, %s", region, country)
}

func safeDiv(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}
