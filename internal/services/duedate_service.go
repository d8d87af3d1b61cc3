package services

import (
	"context"
	"fmt"
	"time"

	"teamboard/internal/models"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

// DueDateService 扫描临近到期的卡片并触发 DUE_DATE_APPROACHING。
// 同一张卡片同一天最多触发一次。
type DueDateService struct {
	db         *gorm.DB
	logger     *logrus.Logger
	automation *AutomationService
	tracer     trace.Tracer

	// WindowDays 是“临近”判定窗口：到期日落在 [now, now+WindowDays] 内的
	// 卡片会被派发，context 携带剩余天数 daysBeforeDue。
	WindowDays int

	lastFired map[string]string // cardID -> YYYY-MM-DD of last dispatch
}

func NewDueDateService(db *gorm.DB, logger *logrus.Logger, automation *AutomationService) *DueDateService {
	if logger == nil {
		logger = logrus.New()
	}
	return &DueDateService{
		db:         db,
		logger:     logger,
		automation: automation,
		tracer:     otel.Tracer("teamboard/duedate"),
		WindowDays: 3,
		lastFired:  make(map[string]string),
	}
}

// Start 周期运行扫描直到 ctx 取消
func (s *DueDateService) Start(ctx context.Context, interval time.Duration) {
	s.logger.Info("Starting due date monitoring service")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Due date monitoring service stopped")
			return
		case <-ticker.C:
			if err := s.Scan(ctx, time.Now()); err != nil {
				s.logger.Errorf("Due date monitoring error: %v", err)
			}
		}
	}
}

type dueCard struct {
	models.Card
	BoardID     string
	WorkspaceID string
	ListTitle   string
}

// Scan dispatches DUE_DATE_APPROACHING for every card whose due date falls
// inside the window, at most once per card per day.
func (s *DueDateService) Scan(ctx context.Context, now time.Time) error {
	ctx, span := s.tracer.Start(ctx, "duedate.scan")
	defer span.End()

	horizon := now.AddDate(0, 0, s.WindowDays)
	var cards []dueCard
	err := s.db.WithContext(ctx).Model(&models.Card{}).
		Select("cards.*, boards.id AS board_id, boards.workspace_id AS workspace_id, lists.title AS list_title").
		Joins("JOIN lists ON lists.id = cards.list_id").
		Joins("JOIN boards ON boards.id = lists.board_id").
		Where("cards.due_date IS NOT NULL AND cards.due_date >= ? AND cards.due_date <= ?", now, horizon).
		Scan(&cards).Error
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("load due cards: %w", err)
	}

	today := now.Format("2006-01-02")
	for _, card := range cards {
		if s.lastFired[card.ID] == today {
			continue
		}
		s.lastFired[card.ID] = today

		daysBefore := int(card.DueDate.Sub(now).Hours() / 24)
		evt := EventContext{
			"cardId":        card.ID,
			"title":         card.Title,
			"listTitle":     card.ListTitle,
			"daysBeforeDue": daysBefore,
			"workspaceId":   card.WorkspaceID,
		}
		s.automation.ProcessAutomations(ctx, models.TriggerDueDateApproaching, evt, card.WorkspaceID, card.BoardID)
	}
	return nil
}
