package services

import (
	"context"
	"encoding/json"
	"fmt"

	"teamboard/internal/models"

	"gorm.io/gorm"
)

// AutomationActionRequest 创建规则时的单个动作
type AutomationActionRequest struct {
	Type   models.ActionType      `json:"type" binding:"required"`
	Order  int                    `json:"order"`
	Config map[string]interface{} `json:"config"`
}

// AutomationRuleRequest 创建自动化规则的请求
type AutomationRuleRequest struct {
	Name        string                    `json:"name" binding:"required"`
	WorkspaceID string                    `json:"workspace_id" binding:"required"`
	BoardID     *string                   `json:"board_id"`
	TriggerType models.TriggerType        `json:"trigger_type" binding:"required"`
	Conditions  map[string]interface{}    `json:"conditions"`
	Actions     []AutomationActionRequest `json:"actions"`
	Active      *bool                     `json:"active"`
	CreatedBy   string                    `json:"created_by"`
}

// CreateRule validates and persists a rule with its trigger and ordered
// actions. Trigger/action types and the conditions document are checked at
// this write boundary so dispatches never see malformed rules of our own
// making.
func (s *AutomationService) CreateRule(ctx context.Context, req *AutomationRuleRequest) (*models.AutomationRule, error) {
	if req == nil {
		return nil, fmt.Errorf("request required")
	}
	if !models.KnownTriggerType(req.TriggerType) {
		return nil, fmt.Errorf("unsupported trigger type: %s", req.TriggerType)
	}

	condJSON, err := json.Marshal(req.Conditions)
	if err != nil {
		return nil, fmt.Errorf("invalid conditions: %w", err)
	}
	if _, err := ParseConditions(string(condJSON)); err != nil {
		return nil, fmt.Errorf("invalid conditions: %w", err)
	}

	// Orders are taken as given unless the request supplies none at all,
	// in which case request order becomes execution order.
	explicitOrders := false
	for _, a := range req.Actions {
		if a.Order != 0 {
			explicitOrders = true
			break
		}
	}
	actions := make([]models.AutomationAction, 0, len(req.Actions))
	for i, a := range req.Actions {
		if !models.KnownActionType(a.Type) {
			return nil, fmt.Errorf("action %d: unsupported type %s", i, a.Type)
		}
		cfgJSON, err := json.Marshal(a.Config)
		if err != nil {
			return nil, fmt.Errorf("action %d: invalid config: %w", i, err)
		}
		order := a.Order
		if !explicitOrders {
			order = i
		}
		actions = append(actions, models.AutomationAction{
			Type:   a.Type,
			Order:  order,
			Config: string(cfgJSON),
		})
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	rule := &models.AutomationRule{
		WorkspaceID: req.WorkspaceID,
		BoardID:     req.BoardID,
		Name:        req.Name,
		Active:      active,
		CreatedBy:   req.CreatedBy,
		Trigger: &models.AutomationTrigger{
			Type:       req.TriggerType,
			Conditions: string(condJSON),
		},
		Actions: actions,
	}
	if err := s.db.WithContext(ctx).Create(rule).Error; err != nil {
		return nil, err
	}
	return rule, nil
}

// ListRules 按工作区（可选按看板）列出规则
func (s *AutomationService) ListRules(ctx context.Context, workspaceID string, boardID *string) ([]models.AutomationRule, error) {
	q := s.db.WithContext(ctx).Where("workspace_id = ?", workspaceID)
	if boardID != nil && *boardID != "" {
		q = q.Where("board_id = ?", *boardID)
	}
	var rules []models.AutomationRule
	err := q.
		Preload("Trigger").
		Preload("Actions", func(db *gorm.DB) *gorm.DB { return db.Order("action_order ASC") }).
		Order("created_at DESC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

// GetRule 获取单条规则
func (s *AutomationService) GetRule(ctx context.Context, id string) (*models.AutomationRule, error) {
	var rule models.AutomationRule
	err := s.db.WithContext(ctx).
		Preload("Trigger").
		Preload("Actions", func(db *gorm.DB) *gorm.DB { return db.Order("action_order ASC") }).
		First(&rule, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

// SetRuleActive 启用/停用规则
func (s *AutomationService) SetRuleActive(ctx context.Context, id string, active bool) error {
	res := s.db.WithContext(ctx).Model(&models.AutomationRule{}).
		Where("id = ?", id).
		Update("active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("rule not found")
	}
	return nil
}

// DeleteRule 删除规则及其触发器与动作
func (s *AutomationService) DeleteRule(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.AutomationRule{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("rule not found")
		}
		if err := tx.Delete(&models.AutomationTrigger{}, "rule_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.AutomationAction{}, "rule_id = ?", id).Error
	})
}

// ListRuns 返回规则的执行报告，最近优先
func (s *AutomationService) ListRuns(ctx context.Context, ruleID string, limit int) ([]models.AutomationRun, error) {
	if limit <= 0 {
		limit = 50
	}
	var runs []models.AutomationRun
	err := s.db.WithContext(ctx).
		Where("rule_id = ?", ruleID).
		Order("created_at DESC").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, err
	}
	return runs, nil
}
