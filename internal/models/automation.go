package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TriggerType 自动化触发事件类型
type TriggerType string

const (
	TriggerCardCreated        TriggerType = "CARD_CREATED"
	TriggerCardMoved          TriggerType = "CARD_MOVED"
	TriggerCardUpdated        TriggerType = "CARD_UPDATED"
	TriggerCardAssigned       TriggerType = "CARD_ASSIGNED"
	TriggerTaskAdded          TriggerType = "TASK_ADDED"
	TriggerTaskCompleted      TriggerType = "TASK_COMPLETED"
	TriggerAllTasksCompleted  TriggerType = "ALL_TASKS_COMPLETED"
	TriggerDueDateApproaching TriggerType = "DUE_DATE_APPROACHING"
	TriggerCommentAdded       TriggerType = "COMMENT_ADDED"
	TriggerAttachmentAdded    TriggerType = "ATTACHMENT_ADDED"
	TriggerUserMentioned      TriggerType = "USER_MENTIONED"
)

// ActionType 自动化动作类型
type ActionType string

const (
	ActionUpdateCardPriority  ActionType = "UPDATE_CARD_PRIORITY"
	ActionUpdateCardStatus    ActionType = "UPDATE_CARD_STATUS"
	ActionAssignUser          ActionType = "ASSIGN_USER"
	ActionSendNotification    ActionType = "SEND_NOTIFICATION"
	ActionCreateTasks         ActionType = "CREATE_TASKS"
	ActionAddTag              ActionType = "ADD_TAG"
	ActionCreateCalendarEvent ActionType = "CREATE_CALENDAR_EVENT"
	ActionCreateAuditLog      ActionType = "CREATE_AUDIT_LOG"
	ActionSendEmail           ActionType = "SEND_EMAIL"
)

// KnownTriggerType 判断触发类型是否受支持
func KnownTriggerType(t TriggerType) bool {
	switch t {
	case TriggerCardCreated, TriggerCardMoved, TriggerCardUpdated, TriggerCardAssigned,
		TriggerTaskAdded, TriggerTaskCompleted, TriggerAllTasksCompleted,
		TriggerDueDateApproaching, TriggerCommentAdded, TriggerAttachmentAdded,
		TriggerUserMentioned:
		return true
	default:
		return false
	}
}

// KnownActionType 判断动作类型是否受支持
func KnownActionType(t ActionType) bool {
	switch t {
	case ActionUpdateCardPriority, ActionUpdateCardStatus, ActionAssignUser,
		ActionSendNotification, ActionCreateTasks, ActionAddTag,
		ActionCreateCalendarEvent, ActionCreateAuditLog, ActionSendEmail:
		return true
	default:
		return false
	}
}

// AutomationRule 自动化规则：一个触发器绑定一组有序动作。
// BoardID 为空时规则对整个工作区生效。
type AutomationRule struct {
	ID          string         `gorm:"primaryKey;size:36" json:"id"`
	WorkspaceID string         `gorm:"index;not null;size:36" json:"workspace_id"`
	BoardID     *string        `gorm:"index;size:36" json:"board_id"`
	Name        string         `gorm:"not null" json:"name"`
	Active      bool           `gorm:"default:true" json:"active"`
	CreatedBy   string         `gorm:"size:36" json:"created_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Trigger *AutomationTrigger `gorm:"foreignKey:RuleID" json:"trigger,omitempty"`
	Actions []AutomationAction `gorm:"foreignKey:RuleID" json:"actions,omitempty"`
}

func (r *AutomationRule) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// AutomationTrigger 规则的触发器，与规则 1:1。
// Conditions 为 JSON 文档：{field: value} 或 {field: {operator, value}}。
type AutomationTrigger struct {
	ID         string      `gorm:"primaryKey;size:36" json:"id"`
	RuleID     string      `gorm:"uniqueIndex;not null;size:36" json:"rule_id"`
	Type       TriggerType `gorm:"index;not null" json:"type"`
	Conditions string      `gorm:"type:text" json:"conditions"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

func (t *AutomationTrigger) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// AutomationAction 规则下的一个动作，Order 决定执行顺序。
// Config 为 JSON 文档，结构由 Type 决定。
type AutomationAction struct {
	ID        string     `gorm:"primaryKey;size:36" json:"id"`
	RuleID    string     `gorm:"index;not null;size:36" json:"rule_id"`
	Type      ActionType `gorm:"not null" json:"type"`
	Order     int        `gorm:"column:action_order;default:0" json:"order"`
	Config    string     `gorm:"type:text" json:"config"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (a *AutomationAction) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// AutomationRun 一次规则执行的结果报告，用于可观测性。
// Status: success, partial, failed。Message 记录动作级失败明细。
type AutomationRun struct {
	ID        string      `gorm:"primaryKey;size:36" json:"id"`
	RuleID    string      `gorm:"index;not null;size:36" json:"rule_id"`
	Trigger   TriggerType `json:"trigger"`
	CardID    string      `gorm:"index;size:36" json:"card_id"`
	Status    string      `gorm:"index" json:"status"`
	Message   string      `gorm:"type:text" json:"message"`
	CreatedAt time.Time   `json:"created_at"`

	Rule AutomationRule `gorm:"foreignKey:RuleID" json:"rule,omitempty"`
}

func (r *AutomationRun) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
