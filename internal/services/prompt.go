package services

import (
	"encoding/json"
	"errors"
	"regexp"

	"github.com/danodev/daworks/internal/models"
	"gorm.io/gorm"
)

// ErrSystemPrompt is returned for delete attempts on built-in prompts.
var ErrSystemPrompt = errors.New("system prompts cannot be deleted")

var placeholderPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_]+)\s*\}\}`)

// extractPlaceholders lists the distinct {{name}} tokens in a template,
// in order of first appearance.
func extractPlaceholders(content string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, match := range placeholderPattern.FindAllStringSubmatch(content, -1) {
		name := match[1]
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

func placeholdersJSON(content string) string {
	names := extractPlaceholders(content)
	if len(names) == 0 {
		return ""
	}
	b, err := json.Marshal(names)
	if err != nil {
		return ""
	}
	return string(b)
}

type PromptService struct {
	db *gorm.DB
}

func NewPromptService(db *gorm.DB) *PromptService {
	return &PromptService{db: db}
}

type PromptListParams struct {
	Page     int
	PageSize int
	Name     string
	IsSystem *bool
}

type PromptListResult struct {
	Items []models.PromptTemplate `json:"items"`
	Total int64                   `json:"total"`
}

func (s *PromptService) List(params PromptListParams) (*PromptListResult, error) {
	var prompts []models.PromptTemplate
	var total int64

	query := s.db.Model(&models.PromptTemplate{})

	if params.Name != "" {
		query = query.Where("name LIKE ?", "%"+params.Name+"%")
	}
	if params.IsSystem != nil {
		query = query.Where("is_system = ?", *params.IsSystem)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	offset := (params.Page - 1) * params.PageSize
	if err := query.Offset(offset).Limit(params.PageSize).Order("is_system DESC, is_default DESC, id DESC").Find(&prompts).Error; err != nil {
		return nil, err
	}

	return &PromptListResult{
		Items: prompts,
		Total: total,
	}, nil
}

func (s *PromptService) GetByID(id uint) (*models.PromptTemplate, error) {
	var prompt models.PromptTemplate
	if err := s.db.First(&prompt, id).Error; err != nil {
		return nil, err
	}
	return &prompt, nil
}

func (s *PromptService) GetDefault() (*models.PromptTemplate, error) {
	var prompt models.PromptTemplate
	if err := s.db.Where("is_default = ?", true).First(&prompt).Error; err != nil {
		return nil, err
	}
	return &prompt, nil
}

func (s *PromptService) Create(prompt *models.PromptTemplate) error {
	// User-created prompts are not system prompts
	prompt.IsSystem = false
	prompt.Variables = placeholdersJSON(prompt.Content)
	return s.db.Create(prompt).Error
}

func (s *PromptService) Update(id uint, updates map[string]interface{}) error {
	var prompt models.PromptTemplate
	if err := s.db.First(&prompt, id).Error; err != nil {
		return err
	}

	// System prompts cannot have their is_system flag changed
	delete(updates, "is_system")

	// A content change re-derives the placeholder list.
	if content, ok := updates["content"].(string); ok {
		updates["variables"] = placeholdersJSON(content)
	}

	return s.db.Model(&models.PromptTemplate{}).Where("id = ?", id).Updates(updates).Error
}

func (s *PromptService) Delete(id uint) error {
	var prompt models.PromptTemplate
	if err := s.db.First(&prompt, id).Error; err != nil {
		return err
	}

	if prompt.IsSystem {
		return ErrSystemPrompt
	}

	return s.db.Delete(&models.PromptTemplate{}, id).Error
}

// SetDefault makes the given prompt the one the assistant resolves. The
// unset and set run in one transaction so a default always survives.
func (s *PromptService) SetDefault(id uint) error {
	var prompt models.PromptTemplate
	if err := s.db.First(&prompt, id).Error; err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.PromptTemplate{}).
			Where("is_default = ? AND id != ?", true, id).
			Update("is_default", false).Error; err != nil {
			return err
		}
		return tx.Model(&prompt).Update("is_default", true).Error
	})
}

// GetAllActive returns all active prompts for selection
func (s *PromptService) GetAllActive() ([]models.PromptTemplate, error) {
	var prompts []models.PromptTemplate
	if err := s.db.Order("is_system DESC, is_default DESC, name ASC").Find(&prompts).Error; err != nil {
		return nil, err
	}
	return prompts, nil
}
