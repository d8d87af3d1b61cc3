package services

import (
	"context"
	"fmt"
	"time"

	"teamboard/internal/models"

	"gorm.io/gorm"
)

// WorkspaceService 工作区管理与概览聚合
type WorkspaceService struct {
	db *gorm.DB
}

func NewWorkspaceService(db *gorm.DB) *WorkspaceService {
	return &WorkspaceService{db: db}
}

// CreateWorkspace 创建工作区
func (s *WorkspaceService) CreateWorkspace(ctx context.Context, name, ownerID string) (*models.Workspace, error) {
	if name == "" {
		return nil, fmt.Errorf("name required")
	}
	ws := &models.Workspace{Name: name, OwnerID: ownerID}
	if err := s.db.WithContext(ctx).Create(ws).Error; err != nil {
		return nil, err
	}
	return ws, nil
}

// GetWorkspace 查询工作区及其看板
func (s *WorkspaceService) GetWorkspace(ctx context.Context, id string) (*models.Workspace, error) {
	var ws models.Workspace
	err := s.db.WithContext(ctx).Preload("Boards").First(&ws, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &ws, nil
}

// ListWorkspaces 列出全部工作区
func (s *WorkspaceService) ListWorkspaces(ctx context.Context) ([]models.Workspace, error) {
	var list []models.Workspace
	err := s.db.WithContext(ctx).Order("created_at ASC").Find(&list).Error
	return list, err
}

// ListSummary 列维度的卡片计数
type ListSummary struct {
	ListID    string `json:"list_id"`
	ListTitle string `json:"list_title"`
	Cards     int64  `json:"cards"`
}

// WorkspaceOverview 工作区概览
type WorkspaceOverview struct {
	Boards       int64                 `json:"boards"`
	Cards        int64                 `json:"cards"`
	OverdueCards int64                 `json:"overdue_cards"`
	ActiveRules  int64                 `json:"active_rules"`
	Lists        []ListSummary         `json:"lists"`
	RecentAudit  []models.AuditLog     `json:"recent_audit"`
	RecentRuns   []models.AutomationRun `json:"recent_runs"`
}

// GetOverview 聚合概览数据：看板/卡片/逾期计数、各列分布、最近动态
func (s *WorkspaceService) GetOverview(ctx context.Context, workspaceID string, limit int) (*WorkspaceOverview, error) {
	if limit <= 0 {
		limit = 10
	}
	overview := &WorkspaceOverview{}

	if err := s.db.WithContext(ctx).Model(&models.Board{}).
		Where("workspace_id = ?", workspaceID).
		Count(&overview.Boards).Error; err != nil {
		return nil, fmt.Errorf("count boards: %w", err)
	}

	cardBase := s.db.WithContext(ctx).Model(&models.Card{}).
		Joins("JOIN lists ON lists.id = cards.list_id").
		Joins("JOIN boards ON boards.id = lists.board_id").
		Where("boards.workspace_id = ?", workspaceID)
	if err := cardBase.Session(&gorm.Session{}).Count(&overview.Cards).Error; err != nil {
		return nil, fmt.Errorf("count cards: %w", err)
	}
	if err := cardBase.Session(&gorm.Session{}).
		Where("cards.due_date IS NOT NULL AND cards.due_date < ?", time.Now()).
		Count(&overview.OverdueCards).Error; err != nil {
		return nil, fmt.Errorf("count overdue: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&models.AutomationRule{}).
		Where("workspace_id = ? AND active = ?", workspaceID, true).
		Count(&overview.ActiveRules).Error; err != nil {
		return nil, fmt.Errorf("count rules: %w", err)
	}

	if err := s.db.WithContext(ctx).Table("lists").
		Select("lists.id AS list_id, lists.title AS list_title, COUNT(cards.id) AS cards").
		Joins("JOIN boards ON boards.id = lists.board_id").
		Joins("LEFT JOIN cards ON cards.list_id = lists.id AND cards.deleted_at IS NULL").
		Where("boards.workspace_id = ? AND lists.deleted_at IS NULL", workspaceID).
		Group("lists.id, lists.title").
		Scan(&overview.Lists).Error; err != nil {
		return nil, fmt.Errorf("aggregate lists: %w", err)
	}

	if err := s.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("created_at DESC").Limit(limit).
		Find(&overview.RecentAudit).Error; err != nil {
		return nil, fmt.Errorf("load audit: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&models.AutomationRun{}).
		Joins("JOIN automation_rules ON automation_rules.id = automation_runs.rule_id").
		Where("automation_rules.workspace_id = ?", workspaceID).
		Order("automation_runs.created_at DESC").Limit(limit).
		Find(&overview.RecentRuns).Error; err != nil {
		return nil, fmt.Errorf("load runs: %w", err)
	}

	return overview, nil
}
