package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var startTime = time.Now()

// HealthHandler 健康与就绪检查
type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Services  map[string]ServiceInfo `json:"services"`
	System    SystemInfo             `json:"system"`
}

// ServiceInfo 单个依赖的检查结果
type ServiceInfo struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SystemInfo 进程信息
type SystemInfo struct {
	Uptime     string `json:"uptime"`
	Goroutines int    `json:"goroutines"`
	GoVersion  string `json:"go_version"`
}

// Health 返回整体健康状态；数据库不可达时降级为 degraded
func (h *HealthHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Services:  map[string]ServiceInfo{},
		System: SystemInfo{
			Uptime:     time.Since(startTime).String(),
			Goroutines: runtime.NumGoroutine(),
			GoVersion:  runtime.Version(),
		},
	}

	start := time.Now()
	if err := h.pingDB(); err != nil {
		resp.Status = "degraded"
		resp.Services["database"] = ServiceInfo{Status: "down", Error: err.Error()}
	} else {
		resp.Services["database"] = ServiceInfo{Status: "up", Latency: time.Since(start).String()}
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}

// Ready 就绪探针：仅检查数据库连接
func (h *HealthHandler) Ready(c *gin.Context) {
	if err := h.pingDB(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ready": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ready": true})
}

func (h *HealthHandler) pingDB() error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
