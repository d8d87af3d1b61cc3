package services

import (
	"context"
	"fmt"

	"teamboard/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// BoardService 看板与列的管理
type BoardService struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewBoardService(db *gorm.DB, logger *logrus.Logger) *BoardService {
	if logger == nil {
		logger = logrus.New()
	}
	return &BoardService{db: db, logger: logger}
}

// BoardCreateRequest 创建看板请求
type BoardCreateRequest struct {
	WorkspaceID string `json:"workspace_id" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// CreateBoard 创建看板并初始化默认三列
func (s *BoardService) CreateBoard(ctx context.Context, req *BoardCreateRequest) (*models.Board, error) {
	board := &models.Board{
		WorkspaceID: req.WorkspaceID,
		Title:       req.Title,
		Description: req.Description,
		Color:       req.Color,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(board).Error; err != nil {
			return err
		}
		for i, title := range []string{"To Do", "In Progress", "Done"} {
			list := &models.List{BoardID: board.ID, Title: title, Position: i}
			if err := tx.Create(list).Error; err != nil {
				return err
			}
			board.Lists = append(board.Lists, *list)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return board, nil
}

// GetBoard 查询看板及其列
func (s *BoardService) GetBoard(ctx context.Context, id string) (*models.Board, error) {
	var board models.Board
	err := s.db.WithContext(ctx).
		Preload("Lists", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&board, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &board, nil
}

// ListBoards 列出工作区下的看板
func (s *BoardService) ListBoards(ctx context.Context, workspaceID string) ([]models.Board, error) {
	var boards []models.Board
	err := s.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("created_at ASC").
		Find(&boards).Error
	return boards, err
}

// DeleteBoard 删除看板及其列（级联由软删除保证查询不可见）
func (s *BoardService) DeleteBoard(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Board{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("board not found")
		}
		return tx.Delete(&models.List{}, "board_id = ?", id).Error
	})
}

// AddList 在看板末尾追加一列
func (s *BoardService) AddList(ctx context.Context, boardID, title string) (*models.List, error) {
	var board models.Board
	if err := s.db.WithContext(ctx).First(&board, "id = ?", boardID).Error; err != nil {
		return nil, err
	}
	var maxPos int
	s.db.WithContext(ctx).Model(&models.List{}).
		Where("board_id = ?", boardID).
		Select("COALESCE(MAX(position), -1)").
		Scan(&maxPos)
	list := &models.List{BoardID: boardID, Title: title, Position: maxPos + 1}
	if err := s.db.WithContext(ctx).Create(list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// ReorderList 调整列位置
func (s *BoardService) ReorderList(ctx context.Context, listID string, position int) error {
	res := s.db.WithContext(ctx).Model(&models.List{}).
		Where("id = ?", listID).
		Update("position", position)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("list not found")
	}
	return nil
}
