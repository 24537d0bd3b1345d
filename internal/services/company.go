package services

import (
	"errors"

	"github.com/danodev/daworks/internal/models"
	"gorm.io/gorm"
)

type CompanyService struct {
	db *gorm.DB
}

func NewCompanyService(db *gorm.DB) *CompanyService {
	return &CompanyService{db: db}
}

type CompanyListRequest struct {
	Page     int    `form:"page" binding:"min=1"`
	PageSize int    `form:"page_size" binding:"min=1,max=100"`
	Name     string `form:"name"`
	Industry string `form:"industry"`
	Country  string `form:"country"`
}

type CompanyListResponse struct {
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	Items    []models.Company `json:"items"`
}

type CreateCompanyRequest struct {
	Name     string `json:"name" binding:"required"`
	Industry string `json:"industry"`
	Website  string `json:"website"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Country  string `json:"country"`
	LinkedIn string `json:"linkedin"`
	Facebook string `json:"facebook"`
	Twitter  string `json:"twitter"`
	LogoURL  string `json:"logo_url"`
	Notes    string `json:"notes"`
}

type UpdateCompanyRequest struct {
	Name     string `json:"name"`
	Industry string `json:"industry"`
	Website  string `json:"website"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Country  string `json:"country"`
	LinkedIn string `json:"linkedin"`
	Facebook string `json:"facebook"`
	Twitter  string `json:"twitter"`
	LogoURL  string `json:"logo_url"`
	Notes    string `json:"notes"`
}

// List returns paginated companies
func (s *CompanyService) List(req *CompanyListRequest) (*CompanyListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 10
	}

	var companies []models.Company
	var total int64

	query := s.db.Model(&models.Company{})

	if req.Name != "" {
		query = query.Where("name LIKE ?", "%"+req.Name+"%")
	}
	if req.Industry != "" {
		query = query.Where("industry = ?", req.Industry)
	}
	if req.Country != "" {
		query = query.Where("country = ?", req.Country)
	}

	query.Count(&total)

	offset := (req.Page - 1) * req.PageSize
	if err := query.Offset(offset).Limit(req.PageSize).Order("created_at DESC").Find(&companies).Error; err != nil {
		return nil, err
	}

	return &CompanyListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    companies,
	}, nil
}

// GetByID returns a company with its contacts and projects preloaded
func (s *CompanyService) GetByID(id uint) (*models.Company, error) {
	var company models.Company
	err := s.db.Preload("Contacts", func(db *gorm.DB) *gorm.DB {
		return db.Order("is_primary DESC, last_name ASC")
	}).Preload("Projects", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at DESC")
	}).First(&company, id).Error
	if err != nil {
		return nil, err
	}
	return &company, nil
}

// Create creates a new company
func (s *CompanyService) Create(req *CreateCompanyRequest, userID uint) (*models.Company, error) {
	company := models.Company{
		Name:      req.Name,
		Industry:  req.Industry,
		Website:   req.Website,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
		City:      req.City,
		Country:   req.Country,
		LinkedIn:  req.LinkedIn,
		Facebook:  req.Facebook,
		Twitter:   req.Twitter,
		LogoURL:   req.LogoURL,
		Notes:     req.Notes,
		CreatedBy: userID,
	}

	if err := s.db.Create(&company).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

// Update updates a company with only the provided fields
func (s *CompanyService) Update(id uint, req *UpdateCompanyRequest) (*models.Company, error) {
	var company models.Company
	if err := s.db.First(&company, id).Error; err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})

	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Industry != "" {
		updates["industry"] = req.Industry
	}
	if req.Website != "" {
		updates["website"] = req.Website
	}
	if req.Email != "" {
		updates["email"] = req.Email
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if req.Address != "" {
		updates["address"] = req.Address
	}
	if req.City != "" {
		updates["city"] = req.City
	}
	if req.Country != "" {
		updates["country"] = req.Country
	}
	if req.LinkedIn != "" {
		updates["linked_in"] = req.LinkedIn
	}
	if req.Facebook != "" {
		updates["facebook"] = req.Facebook
	}
	if req.Twitter != "" {
		updates["twitter"] = req.Twitter
	}
	if req.LogoURL != "" {
		updates["logo_url"] = req.LogoURL
	}
	if req.Notes != "" {
		updates["notes"] = req.Notes
	}

	if len(updates) > 0 {
		if err := s.db.Model(&company).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return &company, nil
}

// Delete removes a company together with its contacts and projects
func (s *CompanyService) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.Company{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errors.New("company not found")
		}
		if err := tx.Where("company_id = ?", id).Delete(&models.Contact{}).Error; err != nil {
			return err
		}
		return tx.Where("company_id = ?", id).Delete(&models.Project{}).Error
	})
}
