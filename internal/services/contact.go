package services

import (
	"errors"

	"github.com/danodev/daworks/internal/models"
	"gorm.io/gorm"
)

type ContactService struct {
	db *gorm.DB
}

func NewContactService(db *gorm.DB) *ContactService {
	return &ContactService{db: db}
}

type ContactListRequest struct {
	Page      int    `form:"page" binding:"min=1"`
	PageSize  int    `form:"page_size" binding:"min=1,max=100"`
	CompanyID uint   `form:"company_id"`
	Name      string `form:"name"`
}

type ContactListResponse struct {
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	Items    []models.Contact `json:"items"`
}

type CreateContactRequest struct {
	CompanyID uint   `json:"company_id" binding:"required"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Title     string `json:"title"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	IsPrimary bool   `json:"is_primary"`
	Notes     string `json:"notes"`
}

type UpdateContactRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Title     string `json:"title"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	IsPrimary *bool  `json:"is_primary"`
	Notes     string `json:"notes"`
}

// List returns paginated contacts
func (s *ContactService) List(req *ContactListRequest) (*ContactListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 10
	}

	var contacts []models.Contact
	var total int64

	query := s.db.Model(&models.Contact{})

	if req.CompanyID != 0 {
		query = query.Where("company_id = ?", req.CompanyID)
	}
	if req.Name != "" {
		query = query.Where("first_name LIKE ? OR last_name LIKE ?", "%"+req.Name+"%", "%"+req.Name+"%")
	}

	query.Count(&total)

	offset := (req.Page - 1) * req.PageSize
	if err := query.Preload("Company").Offset(offset).Limit(req.PageSize).
		Order("is_primary DESC, created_at DESC").Find(&contacts).Error; err != nil {
		return nil, err
	}

	return &ContactListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    contacts,
	}, nil
}

// GetByID returns a contact by ID
func (s *ContactService) GetByID(id uint) (*models.Contact, error) {
	var contact models.Contact
	if err := s.db.Preload("Company").First(&contact, id).Error; err != nil {
		return nil, err
	}
	return &contact, nil
}

// Create creates a new contact. When the contact is marked primary, the
// flag is cleared on its siblings in the same transaction.
func (s *ContactService) Create(req *CreateContactRequest) (*models.Contact, error) {
	var company models.Company
	if err := s.db.First(&company, req.CompanyID).Error; err != nil {
		return nil, errors.New("company not found")
	}

	contact := models.Contact{
		CompanyID: req.CompanyID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Title:     req.Title,
		Email:     req.Email,
		Phone:     req.Phone,
		IsPrimary: req.IsPrimary,
		Notes:     req.Notes,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if req.IsPrimary {
			if err := tx.Model(&models.Contact{}).
				Where("company_id = ? AND is_primary = ?", req.CompanyID, true).
				Update("is_primary", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(&contact).Error
	})
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

// Update updates a contact with only the provided fields. Setting
// is_primary clears the flag on the company's other contacts.
func (s *ContactService) Update(id uint, req *UpdateContactRequest) (*models.Contact, error) {
	var contact models.Contact
	if err := s.db.First(&contact, id).Error; err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})

	if req.FirstName != "" {
		updates["first_name"] = req.FirstName
	}
	if req.LastName != "" {
		updates["last_name"] = req.LastName
	}
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.Email != "" {
		updates["email"] = req.Email
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if req.Notes != "" {
		updates["notes"] = req.Notes
	}
	if req.IsPrimary != nil {
		updates["is_primary"] = *req.IsPrimary
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if req.IsPrimary != nil && *req.IsPrimary {
			if err := tx.Model(&models.Contact{}).
				Where("company_id = ? AND id != ? AND is_primary = ?", contact.CompanyID, id, true).
				Update("is_primary", false).Error; err != nil {
				return err
			}
		}
		if len(updates) > 0 {
			return tx.Model(&contact).Updates(updates).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

// Delete deletes a contact
func (s *ContactService) Delete(id uint) error {
	result := s.db.Delete(&models.Contact{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("contact not found")
	}
	return nil
}
