package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/danodev/daworks/internal/models"
	"github.com/danodev/daworks/pkg/logger"
	"gorm.io/gorm"
)

type TaskService struct {
	db *gorm.DB
}

func NewTaskService(db *gorm.DB) *TaskService {
	return &TaskService{db: db}
}

type TaskListRequest struct {
	Page       int    `form:"page" binding:"min=1"`
	PageSize   int    `form:"page_size" binding:"min=1,max=100"`
	Status     string `form:"status"`
	Priority   string `form:"priority"`
	AssigneeID uint   `form:"assignee_id"`
	PatientID  uint   `form:"patient_id"`
	ProjectID  uint   `form:"project_id"`
}

type TaskListResponse struct {
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
	Items    []models.Task `json:"items"`
}

type CreateTaskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	PatientID   *uint  `json:"patient_id"`
	ProjectID   *uint  `json:"project_id"`
	Status      string `json:"status" binding:"omitempty,oneof=todo in_progress done cancelled"`
	Priority    string `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	Type        string `json:"type" binding:"omitempty,oneof=call follow_up intake_review meeting admin other"`
	AssigneeID  *uint  `json:"assignee_id"`
	DueDate     string `json:"due_date"`
}

type UpdateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status" binding:"omitempty,oneof=todo in_progress done cancelled"`
	Priority    string `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	Type        string `json:"type" binding:"omitempty,oneof=call follow_up intake_review meeting admin other"`
	AssigneeID  *uint  `json:"assignee_id"`
	DueDate     string `json:"due_date"`
}

// List returns paginated tasks
func (s *TaskService) List(req *TaskListRequest) (*TaskListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 10
	}

	var tasks []models.Task
	var total int64

	query := s.db.Model(&models.Task{})

	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.Priority != "" {
		query = query.Where("priority = ?", req.Priority)
	}
	if req.AssigneeID != 0 {
		query = query.Where("assignee_id = ?", req.AssigneeID)
	}
	if req.PatientID != 0 {
		query = query.Where("patient_id = ?", req.PatientID)
	}
	if req.ProjectID != 0 {
		query = query.Where("project_id = ?", req.ProjectID)
	}

	query.Count(&total)

	offset := (req.Page - 1) * req.PageSize
	if err := query.Preload("Assignee").Preload("Patient").Preload("Project").
		Offset(offset).Limit(req.PageSize).
		Order("due_date IS NULL, due_date ASC, created_at DESC").Find(&tasks).Error; err != nil {
		return nil, err
	}

	return &TaskListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    tasks,
	}, nil
}

// GetByID returns a task by ID
func (s *TaskService) GetByID(id uint) (*models.Task, error) {
	var task models.Task
	if err := s.db.Preload("Assignee").Preload("Patient").Preload("Project").
		First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// Create creates a new task
func (s *TaskService) Create(req *CreateTaskRequest, userID uint) (*models.Task, error) {
	dueDate, err := parseDatePtr(req.DueDate)
	if err != nil {
		return nil, err
	}

	if req.Status == "" {
		req.Status = models.TaskStatusTodo
	}
	if req.Priority == "" {
		req.Priority = models.TaskPriorityMedium
	}
	if req.Type == "" {
		req.Type = "other"
	}

	task := models.Task{
		Title:       req.Title,
		Description: req.Description,
		PatientID:   req.PatientID,
		ProjectID:   req.ProjectID,
		Status:      req.Status,
		Priority:    req.Priority,
		Type:        req.Type,
		AssigneeID:  req.AssigneeID,
		DueDate:     dueDate,
		CreatedBy:   userID,
	}

	if err := s.db.Create(&task).Error; err != nil {
		return nil, err
	}

	s.notifyAssignment(&task, userID)
	return &task, nil
}

// Update updates a task with only the provided fields
func (s *TaskService) Update(id uint, req *UpdateTaskRequest, userID uint) (*models.Task, error) {
	var task models.Task
	if err := s.db.First(&task, id).Error; err != nil {
		return nil, err
	}

	assigneeChanged := req.AssigneeID != nil &&
		(task.AssigneeID == nil || *task.AssigneeID != *req.AssigneeID)

	updates := make(map[string]interface{})

	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.Status != "" {
		updates["status"] = req.Status
	}
	if req.Priority != "" {
		updates["priority"] = req.Priority
	}
	if req.Type != "" {
		updates["type"] = req.Type
	}
	if req.AssigneeID != nil {
		updates["assignee_id"] = req.AssigneeID
	}
	if req.DueDate != "" {
		dueDate, err := parseDatePtr(req.DueDate)
		if err != nil {
			return nil, err
		}
		updates["due_date"] = dueDate
	}

	if len(updates) > 0 {
		if err := s.db.Model(&task).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	if assigneeChanged {
		task.AssigneeID = req.AssigneeID
		s.notifyAssignment(&task, userID)
	}
	return &task, nil
}

// notifyAssignment tells the assignee about their new task. Assigning a
// task to yourself stays quiet, and failures are logged so task writes
// never fail on notification problems.
func (s *TaskService) notifyAssignment(task *models.Task, actorID uint) {
	if task.AssigneeID == nil || *task.AssigneeID == actorID {
		return
	}

	notification := models.Notification{
		RecipientID: *task.AssigneeID,
		Type:        models.NotificationTaskAssigned,
		Title:       fmt.Sprintf("Task assigned: %s", task.Title),
		Body:        task.Description,
		RefType:     "task",
		RefID:       &task.ID,
	}
	if err := s.db.Create(&notification).Error; err != nil {
		logger.Warnf("[Task] assignment notification for user %d failed: %v", *task.AssigneeID, err)
		return
	}
	PublishNotificationEvent(notification.RecipientID, notification.ID, notification)
}

// Delete deletes a task
func (s *TaskService) Delete(id uint) error {
	result := s.db.Delete(&models.Task{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("task not found")
	}
	return nil
}

// Acknowledge stamps the task's read receipt. The first stamp wins and
// later calls return the task unchanged.
func (s *TaskService) Acknowledge(id uint) (*models.Task, error) {
	var task models.Task
	if err := s.db.First(&task, id).Error; err != nil {
		return nil, err
	}

	if task.AcknowledgedAt != nil {
		return &task, nil
	}

	now := time.Now()
	// Guard in SQL so concurrent calls cannot overwrite the first stamp.
	if err := s.db.Model(&models.Task{}).
		Where("id = ? AND acknowledged_at IS NULL", id).
		Update("acknowledged_at", now).Error; err != nil {
		return nil, err
	}

	if err := s.db.First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}
