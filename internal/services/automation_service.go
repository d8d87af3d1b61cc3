package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"teamboard/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// EventContext carries the event data of a single dispatch. Callers fill in
// whatever the fired trigger knows (cardId, title, listTitle, updates, ...).
type EventContext map[string]interface{}

// AuditEntry 审计日志写入参数
type AuditEntry struct {
	EntityID    string
	EntityType  string
	EntityTitle string
	Action      string
	WorkspaceID string
	UserID      string
}

// AuditLogger is the audit-log collaborator the engine writes through.
type AuditLogger interface {
	CreateAuditLog(ctx context.Context, entry AuditEntry) error
}

// Mailer is the transactional email collaborator.
type Mailer interface {
	SendBeautifulEmail(to, subject, htmlContent string) error
}

// AutomationService evaluates automation rules against fired domain events
// and executes their actions. Collaborators are injected so tests can swap
// in doubles; the service itself keeps no state between dispatches.
type AutomationService struct {
	db     *gorm.DB
	logger *logrus.Logger
	mailer Mailer
	audit  AuditLogger
}

func NewAutomationService(db *gorm.DB, logger *logrus.Logger, mailer Mailer, audit AuditLogger) *AutomationService {
	if logger == nil {
		logger = logrus.New()
	}
	return &AutomationService{db: db, logger: logger, mailer: mailer, audit: audit}
}

// ProcessAutomations runs one dispatch: load active rules matching the
// trigger within the workspace (and board, when given), evaluate each rule's
// conditions against evt, and execute matched rules' actions in order.
//
// Automations are a side channel. Nothing here may surface to the caller:
// a missing board aborts the dispatch with a log line, a broken condition
// document demotes to "rule does not match", a failed action is recorded and
// execution moves on.
func (s *AutomationService) ProcessAutomations(ctx context.Context, trigger models.TriggerType, evt EventContext, workspaceID, boardID string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorf("automation: dispatch for %s panicked: %v", trigger, r)
		}
	}()
	if s.db == nil || workspaceID == "" {
		return
	}

	rules, err := s.loadRules(ctx, trigger, workspaceID, boardID)
	if err != nil {
		s.logger.Warnf("automation: load rules for %s failed: %v", trigger, err)
		return
	}
	if len(rules) == 0 {
		return
	}

	// Board metadata feeds email templating. A dispatch that names a board
	// which no longer exists acts on stale data and is dropped whole.
	var board *models.Board
	if boardID != "" {
		var b models.Board
		if err := s.db.WithContext(ctx).Preload("Lists").First(&b, "id = ?", boardID).Error; err != nil {
			s.logger.Warnf("automation: board %s not found, dropping %s dispatch: %v", boardID, trigger, err)
			return
		}
		board = &b
	}

	if evt == nil {
		evt = EventContext{}
	}
	evt["triggerType"] = string(trigger)
	if board != nil {
		evt["boardTitle"] = board.Title
	}

	for _, rule := range rules {
		if rule.Trigger == nil {
			continue
		}
		conds, err := ParseConditions(rule.Trigger.Conditions)
		if err != nil {
			// Malformed condition documents demote to "no match".
			s.logger.Warnf("automation: rule %s (%s): %v", rule.Name, rule.ID, err)
			continue
		}
		if !conds.Matches(evt) {
			continue
		}
		s.executeActions(ctx, rule, trigger, evt, board)
	}
}

// loadRules returns active rules for the trigger type, actions pre-sorted by
// execution order. Workspace-wide rules (board unset) match any dispatch in
// the workspace; board-scoped rules require the same board.
func (s *AutomationService) loadRules(ctx context.Context, trigger models.TriggerType, workspaceID, boardID string) ([]models.AutomationRule, error) {
	q := s.db.WithContext(ctx).
		Joins("JOIN automation_triggers ON automation_triggers.rule_id = automation_rules.id").
		Where("automation_rules.workspace_id = ? AND automation_rules.active = ?", workspaceID, true).
		Where("automation_triggers.type = ?", trigger)
	if boardID != "" {
		q = q.Where("automation_rules.board_id = ? OR automation_rules.board_id IS NULL", boardID)
	} else {
		q = q.Where("automation_rules.board_id IS NULL")
	}

	var rules []models.AutomationRule
	err := q.
		Preload("Trigger").
		Preload("Actions", func(db *gorm.DB) *gorm.DB {
			return db.Order("action_order ASC")
		}).
		Order("automation_rules.created_at ASC").
		Find(&rules).Error
	return rules, err
}

// executeActions runs a matched rule's actions strictly in order. A failed
// action is recorded and skipped over; it never blocks later actions or
// later rules. The per-rule outcome is persisted as an AutomationRun.
func (s *AutomationService) executeActions(ctx context.Context, rule models.AutomationRule, trigger models.TriggerType, evt EventContext, board *models.Board) {
	var failures []string
	for _, action := range rule.Actions {
		if err := s.executeAction(ctx, action, trigger, evt, board); err != nil {
			s.logger.Warnf("automation: rule %s action %s (#%d) failed: %v", rule.Name, action.Type, action.Order, err)
			failures = append(failures, fmt.Sprintf("%s#%d: %v", action.Type, action.Order, err))
		}
	}

	status := "success"
	if len(failures) > 0 {
		status = "partial"
		if len(failures) == len(rule.Actions) {
			status = "failed"
		}
	}
	s.recordRun(ctx, rule.ID, trigger, contextCardID(evt), status, strings.Join(failures, "; "))
}

// Per-action config payloads, decoded from the stored JSON document.
type (
	updatePriorityConfig struct {
		Priority string `json:"priority"`
	}
	updateStatusConfig struct {
		ListID string `json:"listId"`
	}
	assignUserConfig struct {
		UserID string `json:"userId"`
	}
	sendNotificationConfig struct {
		UserID  string `json:"userId"`
		Message string `json:"message"`
	}
	createTasksConfig struct {
		Tasks []struct {
			Title string `json:"title"`
			Order int    `json:"order"`
		} `json:"tasks"`
	}
	addTagConfig struct {
		TagID string `json:"tagId"`
	}
	calendarEventConfig struct {
		Title     string    `json:"title"`
		UserID    string    `json:"userId"`
		StartDate time.Time `json:"startDate"`
		EndDate   time.Time `json:"endDate"`
	}
	auditLogConfig struct {
		Action     string `json:"action"`
		EntityType string `json:"entityType"`
		LogMessage string `json:"logMessage"`
	}
	sendEmailConfig struct {
		UserID string `json:"userId"`
	}
)

func decodeConfig(action models.AutomationAction, out interface{}) error {
	doc := action.Config
	if strings.TrimSpace(doc) == "" {
		doc = "{}"
	}
	if err := json.Unmarshal([]byte(doc), out); err != nil {
		return fmt.Errorf("action config: %w", err)
	}
	return nil
}

func (s *AutomationService) executeAction(ctx context.Context, action models.AutomationAction, trigger models.TriggerType, evt EventContext, board *models.Board) error {
	switch action.Type {
	case models.ActionUpdateCardPriority:
		var cfg updatePriorityConfig
		if err := decodeConfig(action, &cfg); err != nil {
			return err
		}
		if cfg.Priority == "" {
			return fmt.Errorf("priority required")
		}
		return s.updateCardField(ctx, evt, "priority", cfg.Priority)

	case models.ActionUpdateCardStatus:
		var cfg updateStatusConfig
		if err := decodeConfig(action, &cfg); err != nil {
			return err
		}
		if cfg.ListID == "" {
			return fmt.Errorf("listId required")
		}
		var list models.List
		if err := s.db.WithContext(ctx).First(&list, "id = ?", cfg.ListID).Error; err != nil {
			return fmt.Errorf("target list %s: %w", cfg.ListID, err)
		}
		return s.updateCardField(ctx, evt, "list_id", list.ID)

	case models.ActionAssignUser:
		var cfg assignUserConfig
		if err := decodeConfig(action, &cfg); err != nil {
			return err
		}
		if cfg.UserID == "" {
			return fmt.Errorf("userId required")
		}
		return s.updateCardField(ctx, evt, "assignee_id", cfg.UserID)

	case models.ActionSendNotification:
		var cfg sendNotificationConfig
		if err := decodeConfig(action, &cfg); err != nil {
			return err
		}
		if cfg.UserID == "" || cfg.Message == "" {
			return fmt.Errorf("userId and message required")
		}
		workspaceID, _ := evt["workspaceId"].(string)
		if workspaceID == "" {
			workspaceID = s.workspaceOfBoard(board)
		}
		notification := &models.Notification{
			WorkspaceID: workspaceID,
			UserID:      cfg.UserID,
			Message:     cfg.Message,
		}
		return s.db.WithContext(ctx).Create(notification).Error

	case models.ActionCreateTasks:
		var cfg createTasksConfig
		if err := decodeConfig(action, &cfg); err != nil {
			return err
		}
		cardID := contextCardID(evt)
		if cardID == "" {
			return fmt.Errorf("cardId missing from context")
		}
		for _, spec := range cfg.Tasks {
			task := &models.Task{CardID: cardID, Title: spec.Title, Order: spec.Order}
			if err := s.db.WithContext(ctx).Create(task).Error; err != nil {
				return fmt.Errorf("create task %q: %w", spec.Title, err)
			}
		}
		return nil

	case models.ActionAddTag:
		var cfg addTagConfig
		if err := decodeConfig(action, &cfg); err != nil {
			return err
		}
		cardID := contextCardID(evt)
		if cardID == "" {
			return fmt.Errorf("cardId missing from context")
		}
		var tag models.Tag
		if err := s.db.WithContext(ctx).First(&tag, "id = ?", cfg.TagID).Error; err != nil {
			return fmt.Errorf("tag %s: %w", cfg.TagID, err)
		}
		// many2many append upserts the join row, so repeats are harmless
		card := models.Card{ID: cardID}
		return s.db.WithContext(ctx).Model(&card).Association("Tags").Append(&tag)

	case models.ActionCreateCalendarEvent:
		var cfg calendarEventConfig
		if err := decodeConfig(action, &cfg); err != nil {
			return err
		}
		if cfg.UserID == "" || cfg.Title == "" {
			return fmt.Errorf("userId and title required")
		}
		event := &models.CalendarEvent{
			UserID:    cfg.UserID,
			Title:     cfg.Title,
			StartDate: cfg.StartDate,
			EndDate:   cfg.EndDate,
		}
		if cardID := contextCardID(evt); cardID != "" {
			event.CardID = &cardID
		}
		return s.db.WithContext(ctx).Create(event).Error

	case models.ActionCreateAuditLog:
		var cfg auditLogConfig
		if err := decodeConfig(action, &cfg); err != nil {
			return err
		}
		if s.audit == nil {
			return fmt.Errorf("audit collaborator not configured")
		}
		workspaceID, _ := evt["workspaceId"].(string)
		if workspaceID == "" {
			workspaceID = s.workspaceOfBoard(board)
		}
		return s.audit.CreateAuditLog(ctx, AuditEntry{
			EntityID:    contextCardID(evt),
			EntityType:  cfg.EntityType,
			EntityTitle: cfg.LogMessage,
			Action:      cfg.Action,
			WorkspaceID: workspaceID,
		})

	case models.ActionSendEmail:
		var cfg sendEmailConfig
		if err := decodeConfig(action, &cfg); err != nil {
			return err
		}
		if s.mailer == nil {
			return fmt.Errorf("mailer not configured")
		}
		var user models.User
		if err := s.db.WithContext(ctx).First(&user, "id = ?", cfg.UserID).Error; err != nil {
			return fmt.Errorf("email recipient %s: %w", cfg.UserID, err)
		}
		if user.Email == "" {
			// Not a failure: users without an email address simply don't get one.
			s.logger.Infof("automation: user %s has no email, skipping send", user.ID)
			return nil
		}
		tmpl := buildEmailTemplate(trigger, evt, board)
		return s.mailer.SendBeautifulEmail(user.Email, tmpl.Subject, tmpl.Content)

	default:
		// Unknown action types no-op so old deployments survive new rule data.
		s.logger.Warnf("automation: unrecognized action type %q, skipping", action.Type)
		return nil
	}
}

func (s *AutomationService) updateCardField(ctx context.Context, evt EventContext, column string, value interface{}) error {
	cardID := contextCardID(evt)
	if cardID == "" {
		return fmt.Errorf("cardId missing from context")
	}
	res := s.db.WithContext(ctx).Model(&models.Card{}).Where("id = ?", cardID).Update(column, value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("card %s not found", cardID)
	}
	return nil
}

func (s *AutomationService) workspaceOfBoard(board *models.Board) string {
	if board == nil {
		return ""
	}
	return board.WorkspaceID
}

func contextCardID(evt EventContext) string {
	id, _ := evt["cardId"].(string)
	return id
}

func (s *AutomationService) recordRun(ctx context.Context, ruleID string, trigger models.TriggerType, cardID, status, message string) {
	run := &models.AutomationRun{
		RuleID:  ruleID,
		Trigger: trigger,
		CardID:  cardID,
		Status:  status,
		Message: message,
	}
	if err := s.db.WithContext(ctx).Create(run).Error; err != nil {
		s.logger.Warnf("automation: record run failed: %v", err)
	}
}
