package handler

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// Pinger 可被健康检查探测的组件
type Pinger interface {
	Driver() string
	Ping(ctx context.Context) error
}

type HealthCheckHandler struct {
	store Pinger
}

func NewHealthCheckHandler(store Pinger) *HealthCheckHandler {
	return &HealthCheckHandler{store: store}
}

type HealthStatus struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Uptime     string            `json:"uptime"`
	Components []ComponentStatus `json:"components,omitempty"`
}

// 启用关键组件标签判断
type ComponentStatus struct {
	Name    string        `json:"name"`
	Status  string        `json:"status"`
	IsCore  bool          `json:"is_core"`
	Latency time.Duration `json:"latency,omitempty"`
	Error   string        `json:"error,omitempty"`
}

var startupTime = time.Now()

// AdvancedHealthCheck 探测存储后端，核心组件异常时返回 503
func (h *HealthCheckHandler) AdvancedHealthCheck(ctx context.Context, c *app.RequestContext) {
	status := HealthStatus{
		Status:     "healthy",
		Timestamp:  time.Now().UTC(),
		Uptime:     time.Since(startupTime).Round(time.Second).String(),
		Components: []ComponentStatus{h.checkStore(ctx)},
	}

	if hasCriticalErrors(status.Components) {
		status.Status = "degraded"
		c.JSON(consts.StatusServiceUnavailable, status)
		return
	}

	c.JSON(consts.StatusOK, status)
}

func (h *HealthCheckHandler) checkStore(ctx context.Context) ComponentStatus {
	comp := ComponentStatus{Name: "store:" + h.store.Driver(), IsCore: true, Status: "ok"}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	err := h.store.Ping(pingCtx)
	comp.Latency = time.Since(start)
	if err != nil {
		comp.Status = "error"
		comp.Error = err.Error()
	}
	return comp
}

func hasCriticalErrors(components []ComponentStatus) bool {
	for _, comp := range components {
		// 核心组件状态异常或任意组件发生严重错误
		if (comp.IsCore && comp.Status != "ok") || comp.Status == "critical" {
			return true
		}
	}
	return false
}
