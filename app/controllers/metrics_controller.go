package controllers

import (
	"github.com/beego/beego/v2/server/web"

	"github.com/jarvisai/assistant-go/internal/di"
	"github.com/jarvisai/assistant-go/internal/services"
)

// MetricsController 指标控制器
type MetricsController struct {
	web.Controller
	metricsService *services.MetricsService
}

// NewMetricsController 创建指标控制器
func NewMetricsController(metricsService *services.MetricsService) *MetricsController {
	return &MetricsController{metricsService: metricsService}
}

// Prepare beego每次请求新建控制器实例,从DI容器取回服务
func (c *MetricsController) Prepare() {
	if c.metricsService == nil {
		di.Invoke(func(s *services.MetricsService) {
			c.metricsService = s
		})
	}
}

// Metrics 返回Prometheus格式的指标
func (c *MetricsController) Metrics() {
	c.Ctx.Output.Header("Content-Type", "text/plain; charset=utf-8")
	c.metricsService.ServeHTTP(c.Ctx.ResponseWriter, c.Ctx.Request)
}
