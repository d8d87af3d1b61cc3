package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User 平台用户
type User struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"`
	Username  string         `gorm:"unique;not null" json:"username"`
	Email     string         `json:"email"` // may be empty; email actions skip such users
	Name      string         `json:"name"`
	Avatar    string         `json:"avatar"`
	Role      string         `gorm:"default:'member'" json:"role"` // member, admin
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// Workspace 团队空间，所有业务数据的租户边界
type Workspace struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"`
	Name      string         `gorm:"not null" json:"name"`
	OwnerID   string         `gorm:"index;size:36" json:"owner_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Owner  User    `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Boards []Board `gorm:"foreignKey:WorkspaceID" json:"boards,omitempty"`
}

func (w *Workspace) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return nil
}

// Board 看板
type Board struct {
	ID          string         `gorm:"primaryKey;size:36" json:"id"`
	WorkspaceID string         `gorm:"index;not null;size:36" json:"workspace_id"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Color       string         `json:"color"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Workspace Workspace `gorm:"foreignKey:WorkspaceID" json:"workspace,omitempty"`
	Lists     []List    `gorm:"foreignKey:BoardID" json:"lists,omitempty"`
}

func (b *Board) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// List 看板列，Position 决定展示顺序
type List struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"`
	BoardID   string         `gorm:"index;not null;size:36" json:"board_id"`
	Title     string         `gorm:"not null" json:"title"`
	Position  int            `gorm:"default:0" json:"position"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Board Board  `gorm:"foreignKey:BoardID" json:"board,omitempty"`
	Cards []Card `gorm:"foreignKey:ListID" json:"cards,omitempty"`
}

func (l *List) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// Card 卡片
type Card struct {
	ID          string         `gorm:"primaryKey;size:36" json:"id"`
	ListID      string         `gorm:"index;not null;size:36" json:"list_id"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Priority    string         `gorm:"default:'medium'" json:"priority"` // low, medium, high, urgent
	Position    int            `gorm:"default:0" json:"position"`
	AssigneeID  *string        `gorm:"index;size:36" json:"assignee_id"`
	DueDate     *time.Time     `json:"due_date"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	List        List             `gorm:"foreignKey:ListID" json:"list,omitempty"`
	Assignee    *User            `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
	Tasks       []Task           `gorm:"foreignKey:CardID" json:"tasks,omitempty"`
	Comments    []CardComment    `gorm:"foreignKey:CardID" json:"comments,omitempty"`
	Attachments []CardAttachment `gorm:"foreignKey:CardID" json:"attachments,omitempty"`
	Tags        []Tag            `gorm:"many2many:card_tags" json:"tags,omitempty"`
}

func (c *Card) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// Task 卡片下的子任务（清单项）
type Task struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	CardID      string     `gorm:"index;not null;size:36" json:"card_id"`
	Title       string     `gorm:"not null" json:"title"`
	Order       int        `gorm:"column:task_order;default:0" json:"order"`
	Completed   bool       `gorm:"default:false" json:"completed"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Card Card `gorm:"foreignKey:CardID" json:"card,omitempty"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// Tag 工作区级标签，与卡片多对多
type Tag struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	WorkspaceID string    `gorm:"index;not null;size:36" json:"workspace_id"`
	Name        string    `gorm:"not null" json:"name"`
	Color       string    `json:"color"`
	CreatedAt   time.Time `json:"created_at"`

	Cards []Card `gorm:"many2many:card_tags" json:"cards,omitempty"`
}

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// CardComment 卡片评论
type CardComment struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CardID    string    `gorm:"index;not null;size:36" json:"card_id"`
	UserID    string    `gorm:"index;size:36" json:"user_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`

	Card Card `gorm:"foreignKey:CardID" json:"card,omitempty"`
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (c *CardComment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// CardAttachment 卡片附件元数据
type CardAttachment struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CardID    string    `gorm:"index;not null;size:36" json:"card_id"`
	UserID    string    `gorm:"index;size:36" json:"user_id"`
	FileName  string    `gorm:"not null" json:"file_name"`
	FileURL   string    `gorm:"not null" json:"file_url"`
	FileSize  int64     `json:"file_size"`
	MimeType  string    `json:"mime_type"`
	CreatedAt time.Time `json:"created_at"`

	Card Card `gorm:"foreignKey:CardID" json:"card,omitempty"`
}

func (a *CardAttachment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// Notification 站内通知
type Notification struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	WorkspaceID string    `gorm:"index;not null;size:36" json:"workspace_id"`
	UserID      string    `gorm:"index;not null;size:36" json:"user_id"`
	Message     string    `gorm:"type:text;not null" json:"message"`
	Read        bool      `gorm:"default:false" json:"read"`
	CreatedAt   time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}

// CalendarEvent 日历事件，可关联触发它的卡片
type CalendarEvent struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"index;not null;size:36" json:"user_id"`
	CardID    *string   `gorm:"index;size:36" json:"card_id"`
	Title     string    `gorm:"not null" json:"title"`
	StartDate time.Time `gorm:"not null" json:"start_date"`
	EndDate   time.Time `gorm:"not null" json:"end_date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Card *Card `gorm:"foreignKey:CardID" json:"card,omitempty"`
}

func (e *CalendarEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// AuditLog 操作审计记录
type AuditLog struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	WorkspaceID string    `gorm:"index;not null;size:36" json:"workspace_id"`
	EntityID    string    `gorm:"index;size:36" json:"entity_id"`
	EntityType  string    `json:"entity_type"` // CARD, BOARD, LIST, ...
	EntityTitle string    `json:"entity_title"`
	Action      string    `json:"action"` // CREATE, UPDATE, DELETE, MOVE, ...
	UserID      string    `gorm:"index;size:36" json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
}

func (l *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
