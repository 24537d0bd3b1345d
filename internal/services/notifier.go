package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/danodev/daworks/internal/models"
	"github.com/danodev/daworks/pkg/logger"
)

// NotifyBotService manages outbound webhook targets and delivers
// messages to them. Bots receive the daily digest and error alerts
// depending on their flags.
type NotifyBotService struct {
	db *gorm.DB
}

func NewNotifyBotService(db *gorm.DB) *NotifyBotService {
	return &NotifyBotService{db: db}
}

type NotifyBotListRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Name     string `form:"name"`
	Type     string `form:"type"`
	IsActive *bool  `form:"is_active"`
}

type NotifyBotListResponse struct {
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
	Items    []models.NotifyBot `json:"items"`
}

type CreateNotifyBotRequest struct {
	Name          string `json:"name" binding:"required"`
	Type          string `json:"type" binding:"required,oneof=slack dingtalk feishu generic"`
	Webhook       string `json:"webhook" binding:"required"`
	Secret        string `json:"secret"`
	IsActive      bool   `json:"is_active"`
	ErrorNotify   bool   `json:"error_notify"`
	DigestEnabled bool   `json:"digest_enabled"`
}

type UpdateNotifyBotRequest struct {
	Name          string `json:"name"`
	Type          string `json:"type" binding:"omitempty,oneof=slack dingtalk feishu generic"`
	Webhook       string `json:"webhook"`
	Secret        string `json:"secret"`
	IsActive      *bool  `json:"is_active"`
	ErrorNotify   *bool  `json:"error_notify"`
	DigestEnabled *bool  `json:"digest_enabled"`
}

// List returns paginated notify bots
func (s *NotifyBotService) List(req *NotifyBotListRequest) (*NotifyBotListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 10
	}

	var bots []models.NotifyBot
	var total int64

	query := s.db.Model(&models.NotifyBot{})

	if req.Name != "" {
		query = query.Where("name LIKE ?", "%"+req.Name+"%")
	}
	if req.Type != "" {
		query = query.Where("type = ?", req.Type)
	}
	if req.IsActive != nil {
		query = query.Where("is_active = ?", *req.IsActive)
	}

	query.Count(&total)

	offset := (req.Page - 1) * req.PageSize
	if err := query.Offset(offset).Limit(req.PageSize).Order("created_at DESC").Find(&bots).Error; err != nil {
		return nil, err
	}

	return &NotifyBotListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    bots,
	}, nil
}

// GetByID returns a notify bot by ID
func (s *NotifyBotService) GetByID(id uint) (*models.NotifyBot, error) {
	var bot models.NotifyBot
	if err := s.db.First(&bot, id).Error; err != nil {
		return nil, err
	}
	return &bot, nil
}

// Create creates a new notify bot
func (s *NotifyBotService) Create(req *CreateNotifyBotRequest) (*models.NotifyBot, error) {
	bot := models.NotifyBot{
		Name:          req.Name,
		Type:          req.Type,
		Webhook:       req.Webhook,
		Secret:        req.Secret,
		IsActive:      req.IsActive,
		ErrorNotify:   req.ErrorNotify,
		DigestEnabled: req.DigestEnabled,
	}

	if err := s.db.Create(&bot).Error; err != nil {
		return nil, err
	}

	return &bot, nil
}

// Update updates a notify bot
func (s *NotifyBotService) Update(id uint, req *UpdateNotifyBotRequest) (*models.NotifyBot, error) {
	var bot models.NotifyBot
	if err := s.db.First(&bot, id).Error; err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})

	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Type != "" {
		updates["type"] = req.Type
	}
	if req.Webhook != "" {
		updates["webhook"] = req.Webhook
	}
	if req.Secret != "" {
		updates["secret"] = req.Secret
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.ErrorNotify != nil {
		updates["error_notify"] = *req.ErrorNotify
	}
	if req.DigestEnabled != nil {
		updates["digest_enabled"] = *req.DigestEnabled
	}

	if err := s.db.Model(&bot).Updates(updates).Error; err != nil {
		return nil, err
	}

	// Reload
	s.db.First(&bot, id)
	return &bot, nil
}

// Delete deletes a notify bot
func (s *NotifyBotService) Delete(id uint) error {
	result := s.db.Delete(&models.NotifyBot{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("notify bot not found")
	}
	return nil
}

// GetDigestBots returns all active bots subscribed to the daily digest
func (s *NotifyBotService) GetDigestBots() ([]models.NotifyBot, error) {
	var bots []models.NotifyBot
	if err := s.db.Where("is_active = ? AND digest_enabled = ?", true, true).Find(&bots).Error; err != nil {
		return nil, err
	}
	return bots, nil
}

// GetErrorNotifyBots returns all active bots with error alerts enabled
func (s *NotifyBotService) GetErrorNotifyBots() ([]models.NotifyBot, error) {
	var bots []models.NotifyBot
	if err := s.db.Where("is_active = ? AND error_notify = ?", true, true).Find(&bots).Error; err != nil {
		return nil, err
	}
	return bots, nil
}

// BroadcastDigest delivers a markdown digest to every digest bot.
// Failures are logged per bot so one broken webhook does not stop the
// rest. Returns how many bots were reached.
func (s *NotifyBotService) BroadcastDigest(title, body string) (int, error) {
	bots, err := s.GetDigestBots()
	if err != nil {
		return 0, err
	}
	if len(bots) == 0 {
		logger.Infof("[Notifier] no digest bots configured, skipping broadcast")
		return 0, nil
	}

	sent := 0
	for i := range bots {
		bot := &bots[i]
		if err := getAdapter(bot.Type).SendMarkdown(bot, title, body); err != nil {
			logger.Errorf("[Notifier] digest to bot %s (%s) failed: %v", bot.Name, bot.Type, err)
			continue
		}
		sent++
	}

	logger.Infof("[Notifier] digest sent to %d/%d bots", sent, len(bots))
	return sent, nil
}

// NotifyError sends a short alert to every active error-notify bot
func (s *NotifyBotService) NotifyError(message string) {
	bots, err := s.GetErrorNotifyBots()
	if err != nil {
		logger.Errorf("[Notifier] failed to load error-notify bots: %v", err)
		return
	}

	for i := range bots {
		bot := &bots[i]
		if err := getAdapter(bot.Type).SendText(bot, message); err != nil {
			logger.Errorf("[Notifier] error alert to bot %s (%s) failed: %v", bot.Name, bot.Type, err)
		}
	}
}

// SendTest delivers a test message so admins can verify a webhook
// before enabling it
func (s *NotifyBotService) SendTest(id uint) error {
	bot, err := s.GetByID(id)
	if err != nil {
		return err
	}

	message := fmt.Sprintf("Test message from Daworks for bot %q. If you can read this, the webhook works.", bot.Name)
	return getAdapter(bot.Type).SendText(bot, message)
}
