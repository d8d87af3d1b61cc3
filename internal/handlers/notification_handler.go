package handlers

import (
	"net/http"

	"teamboard/internal/services"

	"github.com/gin-gonic/gin"
)

// NotificationHandler 站内通知 API
type NotificationHandler struct {
	service *services.NotificationService
}

func NewNotificationHandler(service *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// List 按用户列出通知
func (h *NotificationHandler) List(c *gin.Context) {
	workspaceID := c.Query("workspace_id")
	userID := c.Query("user_id")
	if workspaceID == "" || userID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request", Message: "workspace_id and user_id are required"})
		return
	}
	unreadOnly := c.Query("unread") == "true"
	list, err := h.service.ListNotifications(c.Request.Context(), workspaceID, userID, unreadOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list notifications", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, list)
}

// MarkRead 标记通知已读
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.service.MarkRead(c.Request.Context(), c.Param("id")); err != nil {
		status := http.StatusInternalServerError
		if err.Error() == "notification not found" {
			status = http.StatusNotFound
		}
		c.JSON(status, ErrorResponse{Error: "Failed to mark read", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "read"})
}

// MarkAllRead 全部标记已读
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	var req struct {
		WorkspaceID string `json:"workspace_id" binding:"required"`
		UserID      string `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}
	updated, err := h.service.MarkAllRead(c.Request.Context(), req.WorkspaceID, req.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to mark all read", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "read", Data: gin.H{"updated": updated}})
}

// RegisterNotificationRoutes 注册路由
func RegisterNotificationRoutes(r *gin.RouterGroup, handler *NotificationHandler) {
	n := r.Group("/notifications")
	{
		n.GET("", handler.List)
		n.PUT(":id/read", handler.MarkRead)
		n.POST("/read-all", handler.MarkAllRead)
	}
}
