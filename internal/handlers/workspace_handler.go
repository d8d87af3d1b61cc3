package handlers

import (
	"net/http"
	"strconv"

	"teamboard/internal/services"

	"github.com/gin-gonic/gin"
)

// WorkspaceHandler 工作区 API
type WorkspaceHandler struct {
	service *services.WorkspaceService
}

func NewWorkspaceHandler(service *services.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{service: service}
}

// Create 创建工作区
func (h *WorkspaceHandler) Create(c *gin.Context) {
	var req struct {
		Name    string `json:"name" binding:"required"`
		OwnerID string `json:"owner_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}
	ws, err := h.service.CreateWorkspace(c.Request.Context(), req.Name, req.OwnerID)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Failed to create workspace", Message: err.Error()})
		return
	}
	c.JSON(http.StatusCreated, ws)
}

// Get 获取工作区
func (h *WorkspaceHandler) Get(c *gin.Context) {
	ws, err := h.service.GetWorkspace(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Workspace not found", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, ws)
}

// List 列出工作区
func (h *WorkspaceHandler) List(c *gin.Context) {
	list, err := h.service.ListWorkspaces(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list workspaces", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, list)
}

// Overview 工作区概览
func (h *WorkspaceHandler) Overview(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	overview, err := h.service.GetOverview(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to load overview", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, overview)
}

// RegisterWorkspaceRoutes 注册路由
func RegisterWorkspaceRoutes(r *gin.RouterGroup, handler *WorkspaceHandler) {
	ws := r.Group("/workspaces")
	{
		ws.GET("", handler.List)
		ws.POST("", handler.Create)
		ws.GET(":id", handler.Get)
		ws.GET(":id/overview", handler.Overview)
	}
}
