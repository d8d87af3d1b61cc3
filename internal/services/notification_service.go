package services

import (
	"context"
	"fmt"

	"teamboard/internal/models"

	"gorm.io/gorm"
)

// NotificationService 站内通知查询与已读标记
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// ListNotifications 按用户列出通知，未读在前
func (s *NotificationService) ListNotifications(ctx context.Context, workspaceID, userID string, unreadOnly bool) ([]models.Notification, error) {
	q := s.db.WithContext(ctx).
		Where("workspace_id = ? AND user_id = ?", workspaceID, userID)
	if unreadOnly {
		q = q.Where("read = ?", false)
	}
	var list []models.Notification
	err := q.Order("read ASC, created_at DESC").Find(&list).Error
	return list, err
}

// MarkRead 标记单条通知已读
func (s *NotificationService) MarkRead(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ?", id).
		Update("read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("notification not found")
	}
	return nil
}

// MarkAllRead 标记用户全部通知已读，返回影响行数
func (s *NotificationService) MarkAllRead(ctx context.Context, workspaceID, userID string) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("workspace_id = ? AND user_id = ? AND read = ?", workspaceID, userID, false).
		Update("read", true)
	return res.RowsAffected, res.Error
}
