package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/danodev/daworks/internal/models"
	"github.com/danodev/daworks/pkg/logger"
)

// Files with at most this many data rows are imported inside the
// request; larger ones go through the queue.
const inlineImportLimit = 200

// Progress events are published every this many processed rows
const importProgressEvery = 50

// ImportService ingests expense CSV files. Column meaning is guessed
// from header keywords, rows with unparseable dates or amounts are
// skipped and counted, never fatal.
type ImportService struct {
	db *gorm.DB
}

func NewImportService(db *gorm.DB) *ImportService {
	return &ImportService{db: db}
}

// expenseColumns holds the resolved index per concern, -1 when the
// header has no matching column
type expenseColumns struct {
	date        int
	amount      int
	channel     int
	campaign    int
	clicks      int
	impressions int
	region      int
	country     int
}

// mapExpenseColumns resolves header names to columns by keyword. Date
// and amount are required, everything else is optional.
func mapExpenseColumns(header []string) (expenseColumns, error) {
	cols := expenseColumns{
		date: -1, amount: -1, channel: -1, campaign: -1,
		clicks: -1, impressions: -1, region: -1, country: -1,
	}

	for i, raw := range header {
		name := strings.ToLower(strings.TrimSpace(raw))
		switch {
		case cols.date == -1 && (strings.Contains(name, "date") || name == "day"):
			cols.date = i
		case cols.amount == -1 && (strings.Contains(name, "amount") || strings.Contains(name, "spend") || strings.Contains(name, "cost")):
			cols.amount = i
		case cols.campaign == -1 && strings.Contains(name, "campaign"):
			cols.campaign = i
		case cols.channel == -1 && (strings.Contains(name, "channel") || strings.Contains(name, "platform") || strings.Contains(name, "source")):
			cols.channel = i
		case cols.clicks == -1 && strings.Contains(name, "click"):
			cols.clicks = i
		case cols.impressions == -1 && (strings.Contains(name, "impression") || strings.Contains(name, "view")):
			cols.impressions = i
		case cols.region == -1 && strings.Contains(name, "region"):
			cols.region = i
		case cols.country == -1 && strings.Contains(name, "country"):
			cols.country = i
		}
	}

	if cols.date == -1 || cols.amount == -1 {
		return cols, errors.New("CSV must have a date column and an amount column")
	}
	return cols, nil
}

// StartImport parses the upload, creates the job row and either runs
// it inline or hands it to the queue
func (s *ImportService) StartImport(projectID, userID uint, fileName string, data []byte) (*models.ImportJob, error) {
	var count int64
	s.db.Model(&models.Project{}).Where("id = ?", projectID).Count(&count)
	if count == 0 {
		return nil, errors.New("project not found")
	}

	records, err := readCSV(data)
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, errors.New("CSV has no data rows")
	}

	if _, err := mapExpenseColumns(records[0]); err != nil {
		return nil, err
	}

	job := models.ImportJob{
		ProjectID: projectID,
		FileName:  fileName,
		Status:    "pending",
		TotalRows: len(records) - 1,
		CreatedBy: userID,
	}
	if err := s.db.Create(&job).Error; err != nil {
		return nil, err
	}

	if job.TotalRows <= inlineImportLimit {
		s.runImport(&job, records)
		return &job, nil
	}

	path := filepath.Join(os.TempDir(), fmt.Sprintf("daworks-import-%d.csv", job.ID))
	if err := os.WriteFile(path, data, 0600); err != nil {
		s.markFailed(&job, fmt.Sprintf("staging upload: %v", err))
		return nil, err
	}

	task := &ImportTask{JobID: job.ID, ProjectID: projectID, UserID: userID, FilePath: path}
	if err := GetTaskQueue().Enqueue(task); err != nil {
		s.markFailed(&job, fmt.Sprintf("enqueue: %v", err))
		return nil, err
	}

	return &job, nil
}

// ProcessImportTask is the queue processor. It is registered with the
// worker and the sync fallback at startup.
func (s *ImportService) ProcessImportTask(ctx context.Context, task *ImportTask) error {
	var job models.ImportJob
	if err := s.db.First(&job, task.JobID).Error; err != nil {
		return err
	}

	data, err := os.ReadFile(task.FilePath)
	if err != nil {
		s.markFailed(&job, fmt.Sprintf("reading staged file: %v", err))
		return err
	}
	defer os.Remove(task.FilePath)

	records, err := readCSV(data)
	if err != nil {
		s.markFailed(&job, err.Error())
		return err
	}

	s.runImport(&job, records)
	return nil
}

// runImport walks the data rows, inserting what parses and counting
// what does not
func (s *ImportService) runImport(job *models.ImportJob, records [][]string) {
	now := time.Now()
	s.db.Model(job).Updates(map[string]interface{}{"status": "running", "started_at": now})
	job.Status = "running"
	s.publishProgress(job, 0, 0)

	cols, err := mapExpenseColumns(records[0])
	if err != nil {
		s.markFailed(job, err.Error())
		return
	}

	// Load campaigns once so each row can be attributed without a query
	var campaigns []models.Campaign
	if err := s.db.Where("project_id = ?", job.ProjectID).Order("id ASC").Find(&campaigns).Error; err != nil {
		logger.Warnf("[Import] campaign lookup for job %d failed: %v", job.ID, err)
	}

	imported, skipped := 0, 0
	for _, row := range records[1:] {
		expense, ok := parseExpenseRow(job.ProjectID, row, cols, campaigns)
		if !ok {
			skipped++
		} else if err := s.db.Create(expense).Error; err != nil {
			logger.Warnf("[Import] job %d row insert failed: %v", job.ID, err)
			skipped++
		} else {
			imported++
		}

		if (imported+skipped)%importProgressEvery == 0 {
			s.db.Model(job).Updates(map[string]interface{}{
				"imported_rows": imported,
				"skipped_rows":  skipped,
			})
			s.publishProgress(job, imported, skipped)
		}
	}

	finished := time.Now()
	s.db.Model(job).Updates(map[string]interface{}{
		"status":        "completed",
		"imported_rows": imported,
		"skipped_rows":  skipped,
		"finished_at":   finished,
	})
	job.Status = "completed"
	job.ImportedRows = imported
	job.SkippedRows = skipped
	s.publishProgress(job, imported, skipped)

	logger.Infof("[Import] job %d completed: %d imported, %d skipped of %d",
		job.ID, imported, skipped, job.TotalRows)
}

// parseExpenseRow maps one CSV row to an expense log. Returns false
// when the date or amount cannot be parsed.
func parseExpenseRow(projectID uint, row []string, cols expenseColumns, campaigns []models.Campaign) (*models.ExpenseLog, bool) {
	date, err := parseImportDate(field(row, cols.date))
	if err != nil {
		return nil, false
	}
	amount, err := parseImportAmount(field(row, cols.amount))
	if err != nil {
		return nil, false
	}

	expense := &models.ExpenseLog{
		ProjectID:   projectID,
		Date:        date,
		Amount:      amount,
		Channel:     strings.TrimSpace(field(row, cols.channel)),
		Region:      strings.TrimSpace(field(row, cols.region)),
		Country:     strings.TrimSpace(field(row, cols.country)),
		Clicks:      parseImportInt(field(row, cols.clicks)),
		Impressions: parseImportInt(field(row, cols.impressions)),
	}

	if name := strings.TrimSpace(field(row, cols.campaign)); name != "" {
		expense.CampaignID = matchCampaign(normalizeCampaignKey(name), campaigns)
	}

	return expense, true
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

var importDateFormats = []string{"2006-01-02", "2006/01/02", "01/02/2006", "02.01.2006"}

func parseImportDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, format := range importDateFormats {
		if t, err := time.Parse(format, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", value)
}

func parseImportAmount(value string) (float64, error) {
	value = strings.TrimSpace(value)
	value = strings.TrimLeft(value, "$€£¥")
	value = strings.ReplaceAll(value, ",", "")
	return strconv.ParseFloat(value, 64)
}

func parseImportInt(value string) int64 {
	value = strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	if value == "" {
		return 0
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func readCSV(data []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}
	return records, nil
}

func (s *ImportService) markFailed(job *models.ImportJob, message string) {
	finished := time.Now()
	s.db.Model(job).Updates(map[string]interface{}{
		"status":        "failed",
		"error_message": message,
		"finished_at":   finished,
	})
	job.Status = "failed"
	job.ErrorMessage = message
	s.publishProgress(job, job.ImportedRows, job.SkippedRows)
	logger.Errorf("[Import] job %d failed: %s", job.ID, message)
}

func (s *ImportService) publishProgress(job *models.ImportJob, imported, skipped int) {
	PublishImportEvent(job.CreatedBy, job.ID, map[string]interface{}{
		"job_id":   job.ID,
		"status":   job.Status,
		"total":    job.TotalRows,
		"imported": imported,
		"skipped":  skipped,
		"error":    job.ErrorMessage,
	})
}

// GetJob returns one import job scoped to its project
func (s *ImportService) GetJob(projectID, jobID uint) (*models.ImportJob, error) {
	var job models.ImportJob
	err := s.db.Where("id = ? AND project_id = ?", jobID, projectID).First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("import job not found")
		}
		return nil, err
	}
	return &job, nil
}

// ListJobs returns the project's import jobs, newest first
func (s *ImportService) ListJobs(projectID uint) ([]models.ImportJob, error) {
	var jobs []models.ImportJob
	err := s.db.Where("project_id = ?", projectID).
		Order("created_at DESC").Limit(50).
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}
