package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"portfolio-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// HealthCheck 检查一个外部依赖是否可用。
type HealthCheck func(ctx context.Context) error

// HealthHandler 提供存活与就绪探针。
type HealthHandler struct {
	checks  map[string]HealthCheck
	timeout time.Duration
}

// NewHealthHandler 创建 HealthHandler，checks 的键为依赖名称。
func NewHealthHandler(checks map[string]HealthCheck) *HealthHandler {
	if checks == nil {
		checks = map[string]HealthCheck{}
	}
	return &HealthHandler{checks: checks, timeout: 2 * time.Second}
}

func (h *HealthHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "pong"})
}

func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

// Ready 依次运行所有依赖检查，任意一项失败即返回 503。
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	results := make(gin.H, len(names))
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			log.Warnf("Readiness check %s failed: %v", name, err)
			results[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	if status != http.StatusOK {
		c.JSON(status, gin.H{"status": "not_ready", "checks": results})
		return
	}
	c.JSON(status, gin.H{"status": "ready", "checks": results})
}
