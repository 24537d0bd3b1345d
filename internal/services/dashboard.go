package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/danodev/daworks/internal/models"
)

// DashboardService aggregates the home screen overview: entity counts,
// the caller's task load, the CRM pipeline and recent activity.
type DashboardService struct {
	db *gorm.DB
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

type DashboardCounts struct {
	Companies      int64 `json:"companies"`
	Contacts       int64 `json:"contacts"`
	Projects       int64 `json:"projects"`
	ActiveProjects int64 `json:"active_projects"`
	Patients       int64 `json:"patients"`
	Boards         int64 `json:"boards"`
	OpenTasks      int64 `json:"open_tasks"`
	LeadsThisMonth int64 `json:"leads_this_month"`
}

// TaskLoad is the caller's personal task summary
type TaskLoad struct {
	Open           int64 `json:"open"`
	DueToday       int64 `json:"due_today"`
	Overdue        int64 `json:"overdue"`
	Unacknowledged int64 `json:"unacknowledged"`
}

// PipelineStage is one column of the CRM pipeline with its total deal
// value
type PipelineStage struct {
	Stage string  `json:"stage"`
	Count int64   `json:"count"`
	Value float64 `json:"value"`
}

type DashboardOverview struct {
	Counts        DashboardCounts `json:"counts"`
	MyTasks       TaskLoad        `json:"my_tasks"`
	Pipeline      []PipelineStage `json:"pipeline"`
	UpcomingTasks []models.Task   `json:"upcoming_tasks"`
	RecentLeads   []models.Lead   `json:"recent_leads"`
}

// Statuses that count as open work
var openTaskStatuses = []string{models.TaskStatusTodo, models.TaskStatusInProgress}

// GetOverview assembles the dashboard for one user
func (s *DashboardService) GetOverview(userID uint) (*DashboardOverview, error) {
	overview := &DashboardOverview{}
	now := time.Now()

	s.db.Model(&models.Company{}).Count(&overview.Counts.Companies)
	s.db.Model(&models.Contact{}).Count(&overview.Counts.Contacts)
	s.db.Model(&models.Project{}).Count(&overview.Counts.Projects)
	s.db.Model(&models.Project{}).
		Where("status = ?", models.ProjectStatusActive).
		Count(&overview.Counts.ActiveProjects)
	s.db.Model(&models.Patient{}).Count(&overview.Counts.Patients)
	s.db.Model(&models.Board{}).Count(&overview.Counts.Boards)
	s.db.Model(&models.Task{}).
		Where("status IN ?", openTaskStatuses).
		Count(&overview.Counts.OpenTasks)
	s.db.Model(&models.Lead{}).
		Where("created_at >= ?", monthStart(now)).
		Count(&overview.Counts.LeadsThisMonth)

	overview.MyTasks = s.taskLoad(userID, now)
	overview.Pipeline = s.pipeline()

	s.db.Where("assignee_id = ? AND status IN ? AND due_date IS NOT NULL", userID, openTaskStatuses).
		Where("due_date < ?", dayStart(now).AddDate(0, 0, 7)).
		Order("due_date ASC").
		Limit(5).
		Preload("Patient").
		Preload("Project").
		Find(&overview.UpcomingTasks)

	s.db.Order("created_at DESC").Limit(5).Find(&overview.RecentLeads)

	return overview, nil
}

func (s *DashboardService) taskLoad(userID uint, now time.Time) TaskLoad {
	var load TaskLoad
	today := dayStart(now)
	tomorrow := today.AddDate(0, 0, 1)

	mine := func() *gorm.DB {
		return s.db.Model(&models.Task{}).
			Where("assignee_id = ? AND status IN ?", userID, openTaskStatuses)
	}

	mine().Count(&load.Open)
	mine().Where("due_date >= ? AND due_date < ?", today, tomorrow).Count(&load.DueToday)
	mine().Where("due_date < ?", today).Count(&load.Overdue)
	mine().Where("acknowledged_at IS NULL").Count(&load.Unacknowledged)

	return load
}

func (s *DashboardService) pipeline() []PipelineStage {
	var stages []PipelineStage
	s.db.Model(&models.Project{}).
		Select("stage, COUNT(*) as count, COALESCE(SUM(value), 0) as value").
		Group("stage").
		Scan(&stages)

	// Present stages in pipeline order, not whatever GROUP BY returned
	order := []string{
		models.StageLead, models.StageQualified, models.StageProposal,
		models.StageNegotiation, models.StageWon, models.StageLost,
	}
	byStage := make(map[string]PipelineStage, len(stages))
	for _, stage := range stages {
		byStage[stage.Stage] = stage
	}

	sorted := make([]PipelineStage, 0, len(order))
	for _, name := range order {
		if stage, ok := byStage[name]; ok {
			sorted = append(sorted, stage)
		} else {
			sorted = append(sorted, PipelineStage{Stage: name})
		}
	}
	return sorted
}

// dayStart truncates to local midnight
func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// monthStart truncates to the first of the month
func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
