package services

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"teamboard/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CardService 卡片及其子资源（任务/评论/附件）的业务操作。
// 每次成功的变更在同一请求内同步触发对应的自动化事件。
type CardService struct {
	db         *gorm.DB
	logger     *logrus.Logger
	automation *AutomationService
}

func NewCardService(db *gorm.DB, logger *logrus.Logger) *CardService {
	if logger == nil {
		logger = logrus.New()
	}
	return &CardService{db: db, logger: logger}
}

// SetAutomationService 注入自动化服务
func (s *CardService) SetAutomationService(automation *AutomationService) {
	s.automation = automation
}

// CardCreateRequest 创建卡片请求
type CardCreateRequest struct {
	ListID      string     `json:"list_id" binding:"required"`
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	AssigneeID  *string    `json:"assignee_id"`
	DueDate     *time.Time `json:"due_date"`
}

// CardUpdateRequest 更新卡片请求，nil 字段不变更
type CardUpdateRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Priority    *string    `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
}

// cardScope resolves the board and workspace a card lives in, for dispatch.
type cardScope struct {
	listTitle   string
	boardID     string
	workspaceID string
}

func (s *CardService) scopeOfList(ctx context.Context, listID string) (cardScope, error) {
	var list models.List
	if err := s.db.WithContext(ctx).Preload("Board").First(&list, "id = ?", listID).Error; err != nil {
		return cardScope{}, fmt.Errorf("list %s: %w", listID, err)
	}
	return cardScope{
		listTitle:   list.Title,
		boardID:     list.BoardID,
		workspaceID: list.Board.WorkspaceID,
	}, nil
}

func (s *CardService) dispatch(ctx context.Context, trigger models.TriggerType, evt EventContext, scope cardScope) {
	if s.automation == nil {
		return
	}
	evt["workspaceId"] = scope.workspaceID
	s.automation.ProcessAutomations(ctx, trigger, evt, scope.workspaceID, scope.boardID)
}

// CreateCard 创建卡片并触发 CARD_CREATED
func (s *CardService) CreateCard(ctx context.Context, req *CardCreateRequest) (*models.Card, error) {
	scope, err := s.scopeOfList(ctx, req.ListID)
	if err != nil {
		return nil, err
	}

	card := &models.Card{
		ListID:      req.ListID,
		Title:       req.Title,
		Description: req.Description,
		AssigneeID:  req.AssigneeID,
		DueDate:     req.DueDate,
	}
	if req.Priority != "" {
		card.Priority = req.Priority
	}
	if err := s.db.WithContext(ctx).Create(card).Error; err != nil {
		return nil, err
	}

	s.dispatch(ctx, models.TriggerCardCreated, EventContext{
		"cardId":    card.ID,
		"title":     card.Title,
		"listTitle": scope.listTitle,
		"priority":  card.Priority,
	}, scope)
	return card, nil
}

// GetCard 查询单张卡片及其关联
func (s *CardService) GetCard(ctx context.Context, id string) (*models.Card, error) {
	var card models.Card
	err := s.db.WithContext(ctx).
		Preload("Tasks", func(db *gorm.DB) *gorm.DB { return db.Order("task_order ASC") }).
		Preload("Comments").
		Preload("Attachments").
		Preload("Tags").
		Preload("Assignee").
		First(&card, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &card, nil
}

// ListCards 列出某列下的卡片
func (s *CardService) ListCards(ctx context.Context, listID string) ([]models.Card, error) {
	var cards []models.Card
	err := s.db.WithContext(ctx).
		Where("list_id = ?", listID).
		Order("position ASC").
		Find(&cards).Error
	return cards, err
}

// UpdateCard 更新卡片字段并触发 CARD_UPDATED，context 携带变更字段集合
func (s *CardService) UpdateCard(ctx context.Context, id string, req *CardUpdateRequest) (*models.Card, error) {
	card, err := s.GetCard(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Priority != nil {
		updates["priority"] = *req.Priority
	}
	if req.DueDate != nil {
		updates["due_date"] = *req.DueDate
	}
	if len(updates) == 0 {
		return card, nil
	}
	if err := s.db.WithContext(ctx).Model(card).Updates(updates).Error; err != nil {
		return nil, err
	}

	scope, err := s.scopeOfList(ctx, card.ListID)
	if err != nil {
		s.logger.Warnf("card %s: resolve scope after update: %v", id, err)
		return card, nil
	}
	s.dispatch(ctx, models.TriggerCardUpdated, EventContext{
		"cardId":  card.ID,
		"title":   card.Title,
		"updates": updates,
	}, scope)
	return card, nil
}

// MoveCard 跨列移动卡片并触发 CARD_MOVED
func (s *CardService) MoveCard(ctx context.Context, id, destListID string, position int) (*models.Card, error) {
	var card models.Card
	if err := s.db.WithContext(ctx).Preload("List").First(&card, "id = ?", id).Error; err != nil {
		return nil, err
	}
	sourceTitle := card.List.Title

	destScope, err := s.scopeOfList(ctx, destListID)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&card).
		Updates(map[string]interface{}{"list_id": destListID, "position": position}).Error; err != nil {
		return nil, err
	}

	s.dispatch(ctx, models.TriggerCardMoved, EventContext{
		"cardId":               card.ID,
		"title":                card.Title,
		"sourceListTitle":      sourceTitle,
		"destinationListTitle": destScope.listTitle,
	}, destScope)
	return &card, nil
}

// AssignCard 指派卡片并触发 CARD_ASSIGNED
func (s *CardService) AssignCard(ctx context.Context, id, userID string) (*models.Card, error) {
	var card models.Card
	if err := s.db.WithContext(ctx).First(&card, "id = ?", id).Error; err != nil {
		return nil, err
	}
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("assignee %s: %w", userID, err)
	}
	if err := s.db.WithContext(ctx).Model(&card).Update("assignee_id", userID).Error; err != nil {
		return nil, err
	}

	scope, err := s.scopeOfList(ctx, card.ListID)
	if err != nil {
		s.logger.Warnf("card %s: resolve scope after assign: %v", id, err)
		return &card, nil
	}
	s.dispatch(ctx, models.TriggerCardAssigned, EventContext{
		"cardId":     card.ID,
		"title":      card.Title,
		"assigneeId": userID,
	}, scope)
	return &card, nil
}

// DeleteCard 删除卡片（软删除）
func (s *CardService) DeleteCard(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.Card{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("card not found")
	}
	return nil
}

// AddTask 新增子任务并触发 TASK_ADDED
func (s *CardService) AddTask(ctx context.Context, cardID, title string, order int) (*models.Task, error) {
	var card models.Card
	if err := s.db.WithContext(ctx).First(&card, "id = ?", cardID).Error; err != nil {
		return nil, err
	}
	task := &models.Task{CardID: cardID, Title: title, Order: order}
	if err := s.db.WithContext(ctx).Create(task).Error; err != nil {
		return nil, err
	}

	scope, err := s.scopeOfList(ctx, card.ListID)
	if err == nil {
		s.dispatch(ctx, models.TriggerTaskAdded, EventContext{
			"cardId":    card.ID,
			"title":     card.Title,
			"taskTitle": task.Title,
		}, scope)
	}
	return task, nil
}

// CompleteTask 完成子任务，触发 TASK_COMPLETED；当卡片全部任务完成时
// 额外触发 ALL_TASKS_COMPLETED。
func (s *CardService) CompleteTask(ctx context.Context, taskID string) (*models.Task, error) {
	var task models.Task
	if err := s.db.WithContext(ctx).Preload("Card").First(&task, "id = ?", taskID).Error; err != nil {
		return nil, err
	}
	if task.Completed {
		return &task, nil
	}
	now := time.Now()
	if err := s.db.WithContext(ctx).Model(&task).
		Updates(map[string]interface{}{"completed": true, "completed_at": now}).Error; err != nil {
		return nil, err
	}

	scope, err := s.scopeOfList(ctx, task.Card.ListID)
	if err != nil {
		s.logger.Warnf("task %s: resolve scope: %v", taskID, err)
		return &task, nil
	}
	evt := EventContext{
		"cardId":    task.CardID,
		"title":     task.Card.Title,
		"taskTitle": task.Title,
	}
	s.dispatch(ctx, models.TriggerTaskCompleted, evt, scope)

	var remaining int64
	if err := s.db.WithContext(ctx).Model(&models.Task{}).
		Where("card_id = ? AND completed = ?", task.CardID, false).
		Count(&remaining).Error; err == nil && remaining == 0 {
		s.dispatch(ctx, models.TriggerAllTasksCompleted, EventContext{
			"cardId": task.CardID,
			"title":  task.Card.Title,
		}, scope)
	}
	return &task, nil
}

var mentionPattern = regexp.MustCompile(`@([A-Za-z0-9_.-]+)`)

// AddComment 新增评论，触发 COMMENT_ADDED；评论中每个 @用户名 命中
// 已注册用户时触发一次 USER_MENTIONED。
func (s *CardService) AddComment(ctx context.Context, cardID, userID, content string) (*models.CardComment, error) {
	var card models.Card
	if err := s.db.WithContext(ctx).First(&card, "id = ?", cardID).Error; err != nil {
		return nil, err
	}
	comment := &models.CardComment{CardID: cardID, UserID: userID, Content: content}
	if err := s.db.WithContext(ctx).Create(comment).Error; err != nil {
		return nil, err
	}

	scope, err := s.scopeOfList(ctx, card.ListID)
	if err != nil {
		s.logger.Warnf("card %s: resolve scope after comment: %v", cardID, err)
		return comment, nil
	}
	s.dispatch(ctx, models.TriggerCommentAdded, EventContext{
		"cardId":   card.ID,
		"title":    card.Title,
		"comment":  content,
		"authorId": userID,
	}, scope)

	for _, match := range mentionPattern.FindAllStringSubmatch(content, -1) {
		var mentioned models.User
		if err := s.db.WithContext(ctx).First(&mentioned, "username = ?", match[1]).Error; err != nil {
			continue
		}
		s.dispatch(ctx, models.TriggerUserMentioned, EventContext{
			"cardId":          card.ID,
			"title":           card.Title,
			"mentionedUserId": mentioned.ID,
			"comment":         content,
		}, scope)
	}
	return comment, nil
}

// AddAttachment 记录附件元数据并触发 ATTACHMENT_ADDED
func (s *CardService) AddAttachment(ctx context.Context, attachment *models.CardAttachment) (*models.CardAttachment, error) {
	var card models.Card
	if err := s.db.WithContext(ctx).First(&card, "id = ?", attachment.CardID).Error; err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(attachment).Error; err != nil {
		return nil, err
	}

	scope, err := s.scopeOfList(ctx, card.ListID)
	if err == nil {
		s.dispatch(ctx, models.TriggerAttachmentAdded, EventContext{
			"cardId":   card.ID,
			"title":    card.Title,
			"fileName": attachment.FileName,
		}, scope)
	}
	return attachment, nil
}
