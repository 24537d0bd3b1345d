package services

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/danodev/daworks/internal/models"
	"github.com/danodev/daworks/pkg/logger"
)

// DigestService builds the daily marketing digest and posts it through
// the notifier. The schedule comes from system config and the digest
// stays quiet on weekends and public holidays.
type DigestService struct {
	db             *gorm.DB
	sysCfg         *SystemConfigService
	notifier       *NotifyBotService
	holiday        *HolidayService
	country        string
	cronScheduler  *cron.Cron
	currentEntryID cron.EntryID
}

func NewDigestService(db *gorm.DB, sysCfg *SystemConfigService, notifier *NotifyBotService, holiday *HolidayService, country string) *DigestService {
	if country == "" {
		country = "NONE"
	}
	return &DigestService{
		db:       db,
		sysCfg:   sysCfg,
		notifier: notifier,
		holiday:  holiday,
		country:  country,
	}
}

type ChannelStat struct {
	Channel string  `json:"channel"`
	Spend   float64 `json:"spend"`
	Clicks  int64   `json:"clicks"`
}

type CampaignStat struct {
	Name  string  `json:"name"`
	Spend float64 `json:"spend"`
	Leads int     `json:"leads"`
}

func (s *DigestService) StartScheduler() {
	s.cronScheduler = cron.New()
	s.RefreshSchedule()
	s.cronScheduler.Start()
	logger.Infof("[Digest] scheduler started")
}

func (s *DigestService) StopScheduler() {
	if s.cronScheduler != nil {
		s.cronScheduler.Stop()
	}
}

// RefreshSchedule re-reads the digest time from system config and
// reschedules the cron entry. Called after admins change the time.
func (s *DigestService) RefreshSchedule() {
	if s.cronScheduler == nil {
		return
	}
	if s.currentEntryID != 0 {
		s.cronScheduler.Remove(s.currentEntryID)
	}

	digestTime := s.sysCfg.GetWithDefault("digest_time", "09:00")
	cronExpr := digestCronExpr(digestTime)

	entryID, err := s.cronScheduler.AddFunc(cronExpr, s.runScheduled)
	if err != nil {
		logger.Errorf("[Digest] failed to schedule cron job: %v", err)
		return
	}

	s.currentEntryID = entryID
	logger.Infof("[Digest] scheduled at %s (cron: %s)", digestTime, cronExpr)
}

// digestCronExpr turns a HH:MM config value into a daily cron spec.
// Unparseable values fall back to 09:00.
func digestCronExpr(digestTime string) string {
	t, err := time.Parse("15:04", digestTime)
	if err != nil {
		return "0 9 * * *"
	}
	return fmt.Sprintf("%d %d * * *", t.Minute(), t.Hour())
}

// runScheduled is the cron entry point. Checks the enable flag, the
// holiday calendar and the cross-replica lock before doing any work.
func (s *DigestService) runScheduled() {
	if s.sysCfg.GetWithDefault("digest_enabled", "false") != "true" {
		return
	}

	today := time.Now()
	country := s.sysCfg.GetWithDefault("digest_holiday_country", s.country)
	if !s.holiday.IsBusinessDay(today, country) {
		logger.Infof("[Digest] %s is not a business day in %s, skipping", today.Format("2006-01-02"), country)
		return
	}

	if !s.acquireLock(today) {
		logger.Infof("[Digest] another instance already sent today's digest")
		return
	}

	if err := s.GenerateAndSend(); err != nil {
		logger.Errorf("[Digest] run failed: %v", err)
		s.notifier.NotifyError(fmt.Sprintf("Daily marketing digest failed: %v", err))
	}
}

// acquireLock inserts a day-keyed scheduler lock. The unique index on
// (lock_name, lock_key) guarantees one replica wins.
func (s *DigestService) acquireLock(day time.Time) bool {
	s.db.Where("expires_at < ?", time.Now()).Delete(&models.SchedulerLock{})

	host, _ := os.Hostname()
	lock := models.SchedulerLock{
		LockName:  "marketing_digest",
		LockKey:   day.Format("2006-01-02"),
		LockedBy:  host,
		LockedAt:  time.Now(),
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
	return s.db.Create(&lock).Error == nil
}

// GenerateAndSend builds yesterday's digest, stores it and broadcasts
// it to the digest bots. Used by the cron run and the admin trigger.
func (s *DigestService) GenerateAndSend() error {
	digest, err := s.Generate()
	if err != nil {
		return err
	}

	title := fmt.Sprintf("Marketing digest for %s", digest.ReportDate.Format("2006-01-02"))
	body := s.buildMessage(digest)

	sent, err := s.notifier.BroadcastDigest(title, body)
	if err != nil {
		digest.NotifyError = err.Error()
		s.db.Save(digest)
		return err
	}

	if sent > 0 {
		now := time.Now()
		digest.NotifiedAt = &now
		digest.NotifyError = ""
		s.db.Save(digest)
	}

	logger.Infof("[Digest] digest %d delivered to %d bots", digest.ID, sent)
	return nil
}

// Generate aggregates yesterday's marketing activity into a digest
// row. Running twice for the same date updates the stored row.
func (s *DigestService) Generate() (*models.DigestLog, error) {
	now := time.Now()
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	start := end.AddDate(0, 0, -1)

	digest := s.collect(start, end)

	var existing models.DigestLog
	if err := s.db.Where("report_date = ?", start).First(&existing).Error; err == nil {
		digest.ID = existing.ID
		digest.CreatedAt = existing.CreatedAt
		digest.NotifiedAt = existing.NotifiedAt
	}

	if err := s.db.Save(digest).Error; err != nil {
		return nil, err
	}
	return digest, nil
}

func (s *DigestService) collect(start, end time.Time) *models.DigestLog {
	digest := &models.DigestLog{ReportDate: start}

	s.db.Model(&models.ExpenseLog{}).
		Where("date >= ? AND date < ?", start, end).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&digest.TotalSpend)

	s.db.Model(&models.ExpenseLog{}).
		Where("date >= ? AND date < ?", start, end).
		Select("COALESCE(SUM(clicks), 0)").
		Scan(&digest.TotalClicks)

	s.db.Model(&models.ExpenseLog{}).
		Where("date >= ? AND date < ?", start, end).
		Select("COALESCE(SUM(impressions), 0)").
		Scan(&digest.TotalImpressions)

	var totalLeads int64
	s.db.Model(&models.Lead{}).
		Where("created_at >= ? AND created_at < ?", start, end).
		Count(&totalLeads)
	digest.TotalLeads = int(totalLeads)

	var won int64
	s.db.Model(&models.Lead{}).
		Where("converted_at >= ? AND converted_at < ? AND status = ?", start, end, models.LeadStatusWon).
		Count(&won)
	digest.WonLeads = int(won)

	s.db.Model(&models.Lead{}).
		Where("converted_at >= ? AND converted_at < ? AND status = ?", start, end, models.LeadStatusWon).
		Select("COALESCE(SUM(value), 0)").
		Scan(&digest.TotalRevenue)

	channelsJSON, _ := json.Marshal(s.topChannels(start, end, 5))
	campaignsJSON, _ := json.Marshal(s.topCampaigns(start, end, 5))
	digest.TopChannels = string(channelsJSON)
	digest.TopCampaigns = string(campaignsJSON)

	return digest
}

func (s *DigestService) topChannels(start, end time.Time, limit int) []ChannelStat {
	var stats []ChannelStat
	s.db.Model(&models.ExpenseLog{}).
		Select("channel, COALESCE(SUM(amount), 0) as spend, COALESCE(SUM(clicks), 0) as clicks").
		Where("date >= ? AND date < ? AND channel != ''", start, end).
		Group("channel").
		Order("spend DESC").
		Limit(limit).
		Scan(&stats)
	return stats
}

func (s *DigestService) topCampaigns(start, end time.Time, limit int) []CampaignStat {
	var rows []struct {
		CampaignID uint
		Spend      float64
	}
	s.db.Model(&models.ExpenseLog{}).
		Select("campaign_id, COALESCE(SUM(amount), 0) as spend").
		Where("date >= ? AND date < ? AND campaign_id IS NOT NULL", start, end).
		Group("campaign_id").
		Order("spend DESC").
		Limit(limit).
		Scan(&rows)

	var stats []CampaignStat
	for _, row := range rows {
		var campaign models.Campaign
		if err := s.db.First(&campaign, row.CampaignID).Error; err != nil {
			continue
		}

		var leads int64
		s.db.Model(&models.Lead{}).
			Where("campaign_id = ? AND created_at >= ? AND created_at < ?", row.CampaignID, start, end).
			Count(&leads)

		stats = append(stats, CampaignStat{Name: campaign.Name, Spend: row.Spend, Leads: int(leads)})
	}
	return stats
}

func (s *DigestService) buildMessage(digest *models.DigestLog) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("## 📊 Marketing Digest - %s\n\n", digest.ReportDate.Format("2006-01-02")))

	sb.WriteString("### Yesterday\n")
	sb.WriteString(fmt.Sprintf("- 💰 Spend: %.2f\n", digest.TotalSpend))
	sb.WriteString(fmt.Sprintf("- 🖱 Clicks: %d | Impressions: %d\n", digest.TotalClicks, digest.TotalImpressions))
	sb.WriteString(fmt.Sprintf("- 🧲 Leads: %d (won %d)\n", digest.TotalLeads, digest.WonLeads))
	sb.WriteString(fmt.Sprintf("- 📈 Revenue: %.2f\n", digest.TotalRevenue))
	if digest.TotalLeads > 0 {
		sb.WriteString(fmt.Sprintf("- CPL: %.2f\n", digest.TotalSpend/float64(digest.TotalLeads)))
	}
	sb.WriteString("\n")

	var channels []ChannelStat
	if err := json.Unmarshal([]byte(digest.TopChannels), &channels); err == nil && len(channels) > 0 {
		sb.WriteString("### 🏆 Top channels\n")
		for i, c := range channels {
			sb.WriteString(fmt.Sprintf("%d. %s - spend %.2f, %d clicks\n", i+1, c.Channel, c.Spend, c.Clicks))
		}
		sb.WriteString("\n")
	}

	var campaigns []CampaignStat
	if err := json.Unmarshal([]byte(digest.TopCampaigns), &campaigns); err == nil && len(campaigns) > 0 {
		sb.WriteString("### 🎯 Top campaigns\n")
		for i, c := range campaigns {
			sb.WriteString(fmt.Sprintf("%d. %s - spend %.2f, %d leads\n", i+1, c.Name, c.Spend, c.Leads))
		}
	}

	return sb.String()
}

func (s *DigestService) List(page, pageSize int) ([]models.DigestLog, int64, error) {
	var digests []models.DigestLog
	var total int64

	s.db.Model(&models.DigestLog{}).Count(&total)

	offset := (page - 1) * pageSize
	if err := s.db.Order("report_date DESC").Offset(offset).Limit(pageSize).Find(&digests).Error; err != nil {
		return nil, 0, err
	}

	return digests, total, nil
}

func (s *DigestService) GetByID(id uint) (*models.DigestLog, error) {
	var digest models.DigestLog
	if err := s.db.First(&digest, id).Error; err != nil {
		return nil, err
	}
	return &digest, nil
}

// Resend rebroadcasts a stored digest to the current digest bots
func (s *DigestService) Resend(id uint) error {
	digest, err := s.GetByID(id)
	if err != nil {
		return err
	}

	title := fmt.Sprintf("Marketing digest for %s", digest.ReportDate.Format("2006-01-02"))
	sent, err := s.notifier.BroadcastDigest(title, s.buildMessage(digest))
	if err != nil {
		digest.NotifyError = err.Error()
		s.db.Save(digest)
		return err
	}

	if sent > 0 {
		now := time.Now()
		digest.NotifiedAt = &now
		digest.NotifyError = ""
		s.db.Save(digest)
	}
	return nil
}
