package handlers

import (
	"net/http"

	"teamboard/internal/services"

	"github.com/gin-gonic/gin"
)

// BoardHandler 看板与列的 API
type BoardHandler struct {
	service *services.BoardService
}

func NewBoardHandler(service *services.BoardService) *BoardHandler {
	return &BoardHandler{service: service}
}

// Create 创建看板
func (h *BoardHandler) Create(c *gin.Context) {
	var req services.BoardCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}
	board, err := h.service.CreateBoard(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Failed to create board", Message: err.Error()})
		return
	}
	c.JSON(http.StatusCreated, board)
}

// Get 获取看板
func (h *BoardHandler) Get(c *gin.Context) {
	board, err := h.service.GetBoard(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Board not found", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, board)
}

// List 按工作区列出看板
func (h *BoardHandler) List(c *gin.Context) {
	workspaceID := c.Query("workspace_id")
	if workspaceID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request", Message: "workspace_id is required"})
		return
	}
	boards, err := h.service.ListBoards(c.Request.Context(), workspaceID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list boards", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, boards)
}

// Delete 删除看板
func (h *BoardHandler) Delete(c *gin.Context) {
	if err := h.service.DeleteBoard(c.Request.Context(), c.Param("id")); err != nil {
		status := http.StatusInternalServerError
		if err.Error() == "board not found" {
			status = http.StatusNotFound
		}
		c.JSON(status, ErrorResponse{Error: "Failed to delete board", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}

// AddList 追加一列
func (h *BoardHandler) AddList(c *gin.Context) {
	var req struct {
		Title string `json:"title" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}
	list, err := h.service.AddList(c.Request.Context(), c.Param("id"), req.Title)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Failed to add list", Message: err.Error()})
		return
	}
	c.JSON(http.StatusCreated, list)
}

// ReorderList 调整列顺序
func (h *BoardHandler) ReorderList(c *gin.Context) {
	var req struct {
		Position *int `json:"position" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}
	if err := h.service.ReorderList(c.Request.Context(), c.Param("listId"), *req.Position); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Failed to reorder list", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "updated"})
}

// RegisterBoardRoutes 注册路由
func RegisterBoardRoutes(r *gin.RouterGroup, handler *BoardHandler) {
	boards := r.Group("/boards")
	{
		boards.GET("", handler.List)
		boards.POST("", handler.Create)
		boards.GET(":id", handler.Get)
		boards.DELETE(":id", handler.Delete)
		boards.POST(":id/lists", handler.AddList)
		boards.PUT(":id/lists/:listId/position", handler.ReorderList)
	}
}
