package services

import (
	"errors"
	"fmt"

	"github.com/danodev/daworks/internal/models"
	"gorm.io/gorm"
)

type PatientService struct {
	db *gorm.DB
}

func NewPatientService(db *gorm.DB) *PatientService {
	return &PatientService{db: db}
}

type PatientListRequest struct {
	Page     int    `form:"page" binding:"min=1"`
	PageSize int    `form:"page_size" binding:"min=1,max=100"`
	Name     string `form:"name"`
	Source   string `form:"source"`
	Status   string `form:"status"`
}

type PatientListResponse struct {
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	Items    []models.Patient `json:"items"`
}

type CreatePatientRequest struct {
	FirstName   string `json:"first_name" binding:"required"`
	LastName    string `json:"last_name" binding:"required"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	DateOfBirth string `json:"date_of_birth"`
	Gender      string `json:"gender"`
	Address     string `json:"address"`
	Source      string `json:"source" binding:"omitempty,oneof=intake_form referral walk_in marketing other"`
	Status      string `json:"status" binding:"omitempty,oneof=new active inactive"`
	Notes       string `json:"notes"`
}

type UpdatePatientRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	DateOfBirth string `json:"date_of_birth"`
	Gender      string `json:"gender"`
	Address     string `json:"address"`
	Source      string `json:"source" binding:"omitempty,oneof=intake_form referral walk_in marketing other"`
	Status      string `json:"status" binding:"omitempty,oneof=new active inactive"`
	Notes       string `json:"notes"`
}

// IntakeRequest is the public intake form payload. Name fields are
// required and at least one of email or phone must be provided.
type IntakeRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Message   string `json:"message"`
}

// List returns paginated patients
func (s *PatientService) List(req *PatientListRequest) (*PatientListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 10
	}

	var patients []models.Patient
	var total int64

	query := s.db.Model(&models.Patient{})

	if req.Name != "" {
		query = query.Where("first_name LIKE ? OR last_name LIKE ?", "%"+req.Name+"%", "%"+req.Name+"%")
	}
	if req.Source != "" {
		query = query.Where("source = ?", req.Source)
	}
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}

	query.Count(&total)

	offset := (req.Page - 1) * req.PageSize
	if err := query.Offset(offset).Limit(req.PageSize).Order("created_at DESC").Find(&patients).Error; err != nil {
		return nil, err
	}

	return &PatientListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    patients,
	}, nil
}

// GetByID returns a patient by ID
func (s *PatientService) GetByID(id uint) (*models.Patient, error) {
	var patient models.Patient
	if err := s.db.First(&patient, id).Error; err != nil {
		return nil, err
	}
	return &patient, nil
}

// Create creates a new patient
func (s *PatientService) Create(req *CreatePatientRequest) (*models.Patient, error) {
	dob, err := parseDatePtr(req.DateOfBirth)
	if err != nil {
		return nil, err
	}

	if req.Source == "" {
		req.Source = models.PatientSourceOther
	}
	if req.Status == "" {
		req.Status = "new"
	}

	patient := models.Patient{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Phone:       req.Phone,
		DateOfBirth: dob,
		Gender:      req.Gender,
		Address:     req.Address,
		Source:      req.Source,
		Status:      req.Status,
		Notes:       req.Notes,
	}

	if err := s.db.Create(&patient).Error; err != nil {
		return nil, err
	}
	return &patient, nil
}

// Update updates a patient with only the provided fields
func (s *PatientService) Update(id uint, req *UpdatePatientRequest) (*models.Patient, error) {
	var patient models.Patient
	if err := s.db.First(&patient, id).Error; err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})

	if req.FirstName != "" {
		updates["first_name"] = req.FirstName
	}
	if req.LastName != "" {
		updates["last_name"] = req.LastName
	}
	if req.Email != "" {
		updates["email"] = req.Email
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if req.DateOfBirth != "" {
		dob, err := parseDatePtr(req.DateOfBirth)
		if err != nil {
			return nil, err
		}
		updates["date_of_birth"] = dob
	}
	if req.Gender != "" {
		updates["gender"] = req.Gender
	}
	if req.Address != "" {
		updates["address"] = req.Address
	}
	if req.Source != "" {
		updates["source"] = req.Source
	}
	if req.Status != "" {
		updates["status"] = req.Status
	}
	if req.Notes != "" {
		updates["notes"] = req.Notes
	}

	if len(updates) > 0 {
		if err := s.db.Model(&patient).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return &patient, nil
}

// Delete deletes a patient
func (s *PatientService) Delete(id uint) error {
	result := s.db.Delete(&models.Patient{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("patient not found")
	}
	return nil
}

// SubmitIntake handles the public intake form. It creates the patient
// with source intake_form and a follow-up task for staff in one
// transaction.
func (s *PatientService) SubmitIntake(req *IntakeRequest) (*models.Patient, error) {
	if req.Email == "" && req.Phone == "" {
		return nil, errors.New("email or phone is required")
	}

	patient := models.Patient{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Source:    models.PatientSourceIntakeForm,
		Status:    "new",
		Notes:     req.Message,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&patient).Error; err != nil {
			return err
		}
		task := models.Task{
			Title:       fmt.Sprintf("Review intake: %s %s", patient.FirstName, patient.LastName),
			Description: req.Message,
			PatientID:   &patient.ID,
			Status:      models.TaskStatusTodo,
			Priority:    models.TaskPriorityMedium,
			Type:        "intake_review",
		}
		return tx.Create(&task).Error
	})
	if err != nil {
		return nil, err
	}
	return &patient, nil
}
