package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/danodev/daworks/internal/models"
)

// NotificationService manages in-app notifications shown in the bell menu
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

type NotificationListRequest struct {
	Page       int  `form:"page" binding:"omitempty,min=1"`
	PageSize   int  `form:"page_size" binding:"omitempty,min=1,max=100"`
	UnreadOnly bool `form:"unread_only"`
}

type NotificationListResponse struct {
	Total    int64                 `json:"total"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"page_size"`
	Unread   int64                 `json:"unread"`
	Items    []models.Notification `json:"items"`
}

// List returns the recipient's notifications, newest first
func (s *NotificationService) List(recipientID uint, req *NotificationListRequest) (*NotificationListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 10
	}

	query := s.db.Model(&models.Notification{}).Where("recipient_id = ?", recipientID)

	if req.UnreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	query.Count(&total)

	var items []models.Notification
	offset := (req.Page - 1) * req.PageSize
	if err := query.Order("created_at DESC, id DESC").Offset(offset).Limit(req.PageSize).Find(&items).Error; err != nil {
		return nil, err
	}

	unread, err := s.UnreadCount(recipientID)
	if err != nil {
		return nil, err
	}

	return &NotificationListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Unread:   unread,
		Items:    items,
	}, nil
}

// UnreadCount returns how many unread notifications the recipient has
func (s *NotificationService) UnreadCount(recipientID uint) (int64, error) {
	var count int64
	err := s.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error
	return count, err
}

// MarkRead marks one notification as read. Marking an already-read
// notification is a no-op. Recipients can only touch their own rows.
func (s *NotificationService) MarkRead(recipientID, id uint) (*models.Notification, error) {
	var notification models.Notification
	if err := s.db.Where("id = ? AND recipient_id = ?", id, recipientID).First(&notification).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("notification not found")
		}
		return nil, err
	}

	if notification.IsRead {
		return &notification, nil
	}

	if err := s.db.Model(&notification).Update("is_read", true).Error; err != nil {
		return nil, err
	}

	notification.IsRead = true
	return &notification, nil
}

// MarkAllRead marks every unread notification for the recipient as read
// and returns how many rows changed
func (s *NotificationService) MarkAllRead(recipientID uint) (int64, error) {
	result := s.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}
