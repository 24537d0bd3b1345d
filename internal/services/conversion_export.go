package services

import (
	"bytes"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"gorm.io/gorm"

	"github.com/danodev/daworks/internal/config"
	"github.com/danodev/daworks/internal/models"
	"github.com/danodev/daworks/pkg/logger"
)

// Conversion time layout Google Ads accepts for offline imports
const googleConversionTime = "2006-01-02 15:04:05-07:00"

const defaultConversionName = "Lead Won"

// ExportService renders won leads as offline conversion files in the
// shapes Google Ads and Meta expect, and optionally pushes them to a
// configured collector endpoint.
type ExportService struct {
	db     *gorm.DB
	cfg    *config.MarketingConfig
	sysCfg *SystemConfigService
	client *resty.Client
}

func NewExportService(db *gorm.DB, cfg *config.MarketingConfig, sysCfg *SystemConfigService) *ExportService {
	client := resty.New().
		SetTimeout(15 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(1 * time.Second)
	return &ExportService{db: db, cfg: cfg, sysCfg: sysCfg, client: client}
}

type ConversionExportRequest struct {
	Start          string `form:"start"`           // YYYY-MM-DD, filters on converted_at
	End            string `form:"end"`             // YYYY-MM-DD inclusive
	ConversionName string `form:"conversion_name"` // Google only, defaults to "Lead Won"
}

// ExportGoogle renders won leads carrying a gclid as a Google Ads
// offline conversion CSV
func (s *ExportService) ExportGoogle(projectID uint, req *ConversionExportRequest) ([]byte, string, error) {
	leads, err := s.wonLeads(projectID, req, "gclid")
	if err != nil {
		return nil, "", err
	}

	name := strings.TrimSpace(req.ConversionName)
	if name == "" {
		name = defaultConversionName
	}
	currency := s.currency()

	data, err := csvBytes(googleConversionRows(leads, name, currency))
	if err != nil {
		return nil, "", err
	}
	return data, exportFileName("google_conversions"), nil
}

// ExportMeta renders won leads carrying an email as a Meta offline
// event CSV. Emails are SHA-256 hashed as Meta requires.
func (s *ExportService) ExportMeta(projectID uint, req *ConversionExportRequest) ([]byte, string, error) {
	leads, err := s.wonLeads(projectID, req, "email")
	if err != nil {
		return nil, "", err
	}

	data, err := csvBytes(metaConversionRows(leads, s.currency()))
	if err != nil {
		return nil, "", err
	}
	return data, exportFileName("meta_conversions"), nil
}

// PushConversions generates the requested export and POSTs it to the
// configured webhook. Returns how many conversion rows were sent.
func (s *ExportService) PushConversions(projectID uint, platform string, req *ConversionExportRequest) (int, error) {
	if s.cfg == nil || s.cfg.ExportWebhook == "" {
		return 0, errors.New("no export webhook configured")
	}

	var (
		data []byte
		name string
		err  error
	)
	switch platform {
	case "google":
		data, name, err = s.ExportGoogle(projectID, req)
	case "meta":
		data, name, err = s.ExportMeta(projectID, req)
	default:
		return 0, fmt.Errorf("unknown export platform %q", platform)
	}
	if err != nil {
		return 0, err
	}

	rows := countDataRows(data)
	request := s.client.R().
		SetHeader("Content-Type", "text/csv").
		SetHeader("X-Export-Platform", platform).
		SetHeader("X-Export-File", name).
		SetBody(data)
	if s.cfg.ExportToken != "" {
		request.SetHeader("Authorization", "Bearer "+s.cfg.ExportToken)
	}

	resp, err := request.Post(s.cfg.ExportWebhook)
	if err != nil {
		logger.Errorf("[Export] push to %s failed: %v", s.cfg.ExportWebhook, err)
		return 0, fmt.Errorf("pushing export: %w", err)
	}
	if resp.StatusCode() >= 400 {
		logger.Errorf("[Export] push to %s returned %d: %s", s.cfg.ExportWebhook, resp.StatusCode(), resp.String())
		return 0, fmt.Errorf("export endpoint returned status %d", resp.StatusCode())
	}

	logger.Infof("[Export] pushed %d %s conversions for project %d", rows, platform, projectID)
	return rows, nil
}

// wonLeads loads the project's won leads that have the named field
// populated, filtered on converted_at
func (s *ExportService) wonLeads(projectID uint, req *ConversionExportRequest, requiredField string) ([]models.Lead, error) {
	query := s.db.Where("project_id = ? AND status = ?", projectID, models.LeadStatusWon).
		Where(requiredField + " != ''")

	query, err := applyDateRange(query, "converted_at", req.Start, req.End)
	if err != nil {
		return nil, err
	}

	var leads []models.Lead
	if err := query.Order("converted_at ASC").Find(&leads).Error; err != nil {
		return nil, err
	}
	return leads, nil
}

func (s *ExportService) currency() string {
	if s.sysCfg == nil {
		return "USD"
	}
	return s.sysCfg.GetWithDefault("currency", "USD")
}

// googleConversionRows builds the Google Ads offline conversion sheet,
// header included. Leads without a gclid are skipped.
func googleConversionRows(leads []models.Lead, conversionName, currency string) [][]string {
	rows := [][]string{{"Google Click ID", "Conversion Name", "Conversion Time", "Conversion Value", "Conversion Currency"}}
	for _, lead := range leads {
		if lead.GCLID == "" {
			continue
		}
		rows = append(rows, []string{
			lead.GCLID,
			conversionName,
			conversionTime(lead).Format(googleConversionTime),
			formatConversionValue(lead.Value),
			currency,
		})
	}
	return rows
}

// metaConversionRows builds the Meta offline event sheet, header
// included. Leads without an email are skipped.
func metaConversionRows(leads []models.Lead, currency string) [][]string {
	rows := [][]string{{"email", "event_name", "event_time", "value", "currency"}}
	for _, lead := range leads {
		if strings.TrimSpace(lead.Email) == "" {
			continue
		}
		rows = append(rows, []string{
			hashEmail(lead.Email),
			"Purchase",
			strconv.FormatInt(conversionTime(lead).Unix(), 10),
			formatConversionValue(lead.Value),
			currency,
		})
	}
	return rows
}

// conversionTime prefers the won timestamp and falls back to the last
// update for rows that predate the stamp
func conversionTime(lead models.Lead) time.Time {
	if lead.ConvertedAt != nil {
		return *lead.ConvertedAt
	}
	return lead.UpdatedAt
}

// hashEmail normalizes and hashes an email the way Meta expects
// uploaded PII: lowercase, trimmed, SHA-256 hex
func hashEmail(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

func formatConversionValue(value float64) string {
	return strconv.FormatFloat(value, 'f', 2, 64)
}

func csvBytes(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.WriteAll(rows); err != nil {
		return nil, err
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// countDataRows counts CSV lines minus the header
func countDataRows(data []byte) int {
	lines := 0
	for _, b := range data {
		if b == '\n' {
			lines++
		}
	}
	if lines == 0 {
		return 0
	}
	return lines - 1
}

func exportFileName(prefix string) string {
	return fmt.Sprintf("%s_%s.csv", prefix, time.Now().Format("20060102"))
}
