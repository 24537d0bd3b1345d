package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/danodev/daworks/internal/models"
	"gorm.io/gorm"
)

var (
	ErrProjectNotFound     = errors.New("project not found")
	ErrCompanyNotFound     = errors.New("company not found")
	ErrContactNotInCompany = errors.New("contact does not belong to this company")
)

type ProjectService struct {
	db *gorm.DB
}

func NewProjectService(db *gorm.DB) *ProjectService {
	return &ProjectService{db: db}
}

type ProjectListRequest struct {
	Page      int    `form:"page" binding:"min=1"`
	PageSize  int    `form:"page_size" binding:"min=1,max=100"`
	Name      string `form:"name"`
	CompanyID uint   `form:"company_id"`
	Status    string `form:"status"`
	Stage     string `form:"stage"`
}

type ProjectListResponse struct {
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	Items    []models.Project `json:"items"`
}

type CreateProjectRequest struct {
	CompanyID   uint    `json:"company_id" binding:"required"`
	ContactID   *uint   `json:"contact_id"`
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Status      string  `json:"status" binding:"omitempty,oneof=planning active on_hold completed cancelled"`
	Stage       string  `json:"stage" binding:"omitempty,oneof=lead qualified proposal negotiation won lost"`
	Value       float64 `json:"value"`
	Currency    string  `json:"currency"`
	StartDate   string  `json:"start_date"`
	DueDate     string  `json:"due_date"`
}

type UpdateProjectRequest struct {
	ContactID   *uint    `json:"contact_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Status      string   `json:"status" binding:"omitempty,oneof=planning active on_hold completed cancelled"`
	Stage       string   `json:"stage" binding:"omitempty,oneof=lead qualified proposal negotiation won lost"`
	Value       *float64 `json:"value"`
	Currency    string   `json:"currency"`
	StartDate   string   `json:"start_date"`
	DueDate     string   `json:"due_date"`
}

// parseDatePtr parses a YYYY-MM-DD string into an optional time. Empty
// input yields nil.
func parseDatePtr(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return &t, nil
}

// List returns paginated projects
func (s *ProjectService) List(req *ProjectListRequest) (*ProjectListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 10
	}

	var projects []models.Project
	var total int64

	query := s.db.Model(&models.Project{})

	if req.Name != "" {
		query = query.Where("name LIKE ?", "%"+req.Name+"%")
	}
	if req.CompanyID != 0 {
		query = query.Where("company_id = ?", req.CompanyID)
	}
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.Stage != "" {
		query = query.Where("stage = ?", req.Stage)
	}

	query.Count(&total)

	offset := (req.Page - 1) * req.PageSize
	if err := query.Preload("Company").Offset(offset).Limit(req.PageSize).
		Order("created_at DESC").Find(&projects).Error; err != nil {
		return nil, err
	}

	return &ProjectListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    projects,
	}, nil
}

// GetByID returns a project by ID
func (s *ProjectService) GetByID(id uint) (*models.Project, error) {
	var project models.Project
	if err := s.db.Preload("Company").Preload("Contact").First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// Create creates a new project
func (s *ProjectService) Create(req *CreateProjectRequest, userID uint) (*models.Project, error) {
	var company models.Company
	if err := s.db.First(&company, req.CompanyID).Error; err != nil {
		return nil, ErrCompanyNotFound
	}
	if req.ContactID != nil {
		var contact models.Contact
		if err := s.db.Where("id = ? AND company_id = ?", *req.ContactID, req.CompanyID).
			First(&contact).Error; err != nil {
			return nil, ErrContactNotInCompany
		}
	}

	startDate, err := parseDatePtr(req.StartDate)
	if err != nil {
		return nil, err
	}
	dueDate, err := parseDatePtr(req.DueDate)
	if err != nil {
		return nil, err
	}

	if req.Status == "" {
		req.Status = models.ProjectStatusPlanning
	}
	if req.Stage == "" {
		req.Stage = models.StageLead
	}
	if req.Currency == "" {
		req.Currency = "USD"
	}

	project := models.Project{
		CompanyID:   req.CompanyID,
		ContactID:   req.ContactID,
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		Stage:       req.Stage,
		Value:       req.Value,
		Currency:    req.Currency,
		StartDate:   startDate,
		DueDate:     dueDate,
		OwnerID:     userID,
	}

	if err := s.db.Create(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// Update updates a project with only the provided fields
func (s *ProjectService) Update(id uint, req *UpdateProjectRequest) (*models.Project, error) {
	var project models.Project
	if err := s.db.First(&project, id).Error; err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})

	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.Status != "" {
		updates["status"] = req.Status
	}
	if req.Stage != "" {
		updates["stage"] = req.Stage
	}
	if req.Value != nil {
		updates["value"] = *req.Value
	}
	if req.Currency != "" {
		updates["currency"] = req.Currency
	}
	if req.ContactID != nil {
		var contact models.Contact
		if err := s.db.Where("id = ? AND company_id = ?", *req.ContactID, project.CompanyID).
			First(&contact).Error; err != nil {
			return nil, ErrContactNotInCompany
		}
		updates["contact_id"] = req.ContactID
	}
	if req.StartDate != "" {
		startDate, err := parseDatePtr(req.StartDate)
		if err != nil {
			return nil, err
		}
		updates["start_date"] = startDate
	}
	if req.DueDate != "" {
		dueDate, err := parseDatePtr(req.DueDate)
		if err != nil {
			return nil, err
		}
		updates["due_date"] = dueDate
	}

	if len(updates) > 0 {
		if err := s.db.Model(&project).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return &project, nil
}

// Delete deletes a project
func (s *ProjectService) Delete(id uint) error {
	result := s.db.Delete(&models.Project{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProjectNotFound
	}
	return nil
}
