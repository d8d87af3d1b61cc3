package handlers

import (
	"net/http"

	"teamboard/internal/models"
	"teamboard/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CardHandler 卡片及其子资源的 API
type CardHandler struct {
	service *services.CardService
	logger  *logrus.Logger
}

func NewCardHandler(service *services.CardService, logger *logrus.Logger) *CardHandler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &CardHandler{service: service, logger: logger}
}

// Create 创建卡片
func (h *CardHandler) Create(c *gin.Context) {
	var req services.CardCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}
	card, err := h.service.CreateCard(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Failed to create card", Message: err.Error()})
		return
	}
	c.JSON(http.StatusCreated, card)
}

// Get 获取卡片
func (h *CardHandler) Get(c *gin.Context) {
	card, err := h.service.GetCard(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Card not found", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, card)
}

// List 按列列出卡片
func (h *CardHandler) List(c *gin.Context) {
	listID := c.Query("list_id")
	if listID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request", Message: "list_id is required"})
		return
	}
	cards, err := h.service.ListCards(c.Request.Context(), listID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list cards", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, cards)
}

// Update 更新卡片字段
func (h *CardHandler) Update(c *gin.Context) {
	var req services.CardUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}
	card, err := h.service.UpdateCard(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Failed to update card", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, card)
}

// Move 移动卡片到目标列
func (h *CardHandler) Move(c *gin.Context) {
	var req struct {
		ListID   string `json:"list_id" binding:"required"`
		Position int    `json:"position"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}
	card, err := h.service.MoveCard(c.Request.Context(), c.Param("id"), req.ListID, req.Position)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Failed to move card", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, card)
}

// Assign 指派卡片
func (h *CardHandler) Assign(c *gin.Context) {
	var req struct {
		UserID string `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}
	card, err := h.service.AssignCard(c.Request.Context(), c.Param("id"), req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Failed to assign card", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, card)
}

// Delete 删除卡片
func (h *CardHandler) Delete(c *gin.Context) {
	if err := h.service.DeleteCard(c.Request.Context(), c.Param("id")); err != nil {
		status := http.StatusInternalServerError
		if err.Error() == "card not found" {
			status = http.StatusNotFound
		}
		c.JSON(status, ErrorResponse{Error: "Failed to delete card", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}

// AddTask 新增子任务
func (h *CardHandler) AddTask(c *gin.Context) {
	var req struct {
		Title string `json:"title" binding:"required"`
		Order int    `json:"order"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}
	task, err := h.service.AddTask(c.Request.Context(), c.Param("id"), req.Title, req.Order)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Failed to add task", Message: err.Error()})
		return
	}
	c.JSON(http.StatusCreated, task)
}

// CompleteTask 完成子任务
func (h *CardHandler) CompleteTask(c *gin.Context) {
	task, err := h.service.CompleteTask(c.Request.Context(), c.Param("taskId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Failed to complete task", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, task)
}

// AddComment 新增评论
func (h *CardHandler) AddComment(c *gin.Context) {
	var req struct {
		UserID  string `json:"user_id"`
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}
	comment, err := h.service.AddComment(c.Request.Context(), c.Param("id"), req.UserID, req.Content)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Failed to add comment", Message: err.Error()})
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// AddAttachment 登记附件元数据
func (h *CardHandler) AddAttachment(c *gin.Context) {
	var req struct {
		UserID   string `json:"user_id"`
		FileName string `json:"file_name" binding:"required"`
		FileURL  string `json:"file_url" binding:"required"`
		FileSize int64  `json:"file_size"`
		MimeType string `json:"mime_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}
	attachment := &models.CardAttachment{
		CardID:   c.Param("id"),
		UserID:   req.UserID,
		FileName: req.FileName,
		FileURL:  req.FileURL,
		FileSize: req.FileSize,
		MimeType: req.MimeType,
	}
	created, err := h.service.AddAttachment(c.Request.Context(), attachment)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Failed to add attachment", Message: err.Error()})
		return
	}
	c.JSON(http.StatusCreated, created)
}

// RegisterCardRoutes 注册路由
func RegisterCardRoutes(r *gin.RouterGroup, handler *CardHandler) {
	cards := r.Group("/cards")
	{
		cards.GET("", handler.List)
		cards.POST("", handler.Create)
		cards.GET(":id", handler.Get)
		cards.PUT(":id", handler.Update)
		cards.DELETE(":id", handler.Delete)
		cards.POST(":id/move", handler.Move)
		cards.POST(":id/assign", handler.Assign)
		cards.POST(":id/tasks", handler.AddTask)
		cards.POST(":id/tasks/:taskId/complete", handler.CompleteTask)
		cards.POST(":id/comments", handler.AddComment)
		cards.POST(":id/attachments", handler.AddAttachment)
	}
}
