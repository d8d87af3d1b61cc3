package services

import (
	"context"
	"fmt"

	"teamboard/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuditService 审计日志读写
type AuditService struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewAuditService(db *gorm.DB, logger *logrus.Logger) *AuditService {
	if logger == nil {
		logger = logrus.New()
	}
	return &AuditService{db: db, logger: logger}
}

// CreateAuditLog 写入一条审计记录
func (s *AuditService) CreateAuditLog(ctx context.Context, entry AuditEntry) error {
	if entry.WorkspaceID == "" {
		return fmt.Errorf("workspace id required")
	}
	log := &models.AuditLog{
		WorkspaceID: entry.WorkspaceID,
		EntityID:    entry.EntityID,
		EntityType:  entry.EntityType,
		EntityTitle: entry.EntityTitle,
		Action:      entry.Action,
		UserID:      entry.UserID,
	}
	return s.db.WithContext(ctx).Create(log).Error
}

// ListAuditLogs 按工作区分页查询审计记录
func (s *AuditService) ListAuditLogs(ctx context.Context, workspaceID string, limit, offset int) ([]models.AuditLog, int64, error) {
	if limit <= 0 {
		limit = 50
	}
	var total int64
	q := s.db.WithContext(ctx).Model(&models.AuditLog{}).Where("workspace_id = ?", workspaceID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var logs []models.AuditLog
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
