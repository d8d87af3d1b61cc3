package handlers

import (
	"net/http"
	"strconv"

	"teamboard/internal/services"

	"github.com/gin-gonic/gin"
)

// AuditHandler 审计日志查询 API
type AuditHandler struct {
	service *services.AuditService
}

func NewAuditHandler(service *services.AuditService) *AuditHandler {
	return &AuditHandler{service: service}
}

// List 按工作区分页查询审计记录
func (h *AuditHandler) List(c *gin.Context) {
	workspaceID := c.Query("workspace_id")
	if workspaceID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request", Message: "workspace_id is required"})
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))
	if page < 1 {
		page = 1
	}
	logs, total, err := h.service.ListAuditLogs(c.Request.Context(), workspaceID, pageSize, (page-1)*pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list audit logs", Message: err.Error()})
		return
	}
	pages := int(total) / pageSize
	if int(total)%pageSize != 0 {
		pages++
	}
	c.JSON(http.StatusOK, PaginatedResponse{
		Data:     logs,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		Pages:    pages,
	})
}

// RegisterAuditRoutes 注册路由
func RegisterAuditRoutes(r *gin.RouterGroup, handler *AuditHandler) {
	r.GET("/audit-logs", handler.List)
}
