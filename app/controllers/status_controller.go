package controllers

import (
	"github.com/jarvisai/assistant-go/internal/di"
	"github.com/jarvisai/assistant-go/internal/rag"
	"github.com/jarvisai/assistant-go/internal/services"
	"github.com/jarvisai/assistant-go/internal/utils"
)

// RootController 根路径控制器
type RootController struct {
	BaseController
}

// Index 服务自述
func (c *RootController) Index() {
	c.JSONSuccess(map[string]interface{}{
		"service": "jarvis-assistant",
		"status":  "running",
	})
}

// HealthController 健康检查控制器
type HealthController struct {
	BaseController
}

// Health 存活探针
func (c *HealthController) Health() {
	c.JSONSuccess(map[string]interface{}{"status": "ok"})
}

// StatusController 运行状态控制器
type StatusController struct {
	BaseController
	embedder    rag.Embedder
	store       rag.VectorStore
	synthesizer *rag.Synthesizer
	sessions    *services.SessionService
}

// NewStatusController 创建状态控制器
func NewStatusController(embedder rag.Embedder, store rag.VectorStore, synthesizer *rag.Synthesizer, sessions *services.SessionService) *StatusController {
	return &StatusController{
		embedder:    embedder,
		store:       store,
		synthesizer: synthesizer,
		sessions:    sessions,
	}
}

// Prepare beego每次请求新建控制器实例,从DI容器取回服务
func (c *StatusController) Prepare() {
	if c.store == nil {
		di.Invoke(func(embedder rag.Embedder, store rag.VectorStore, synthesizer *rag.Synthesizer, sessions *services.SessionService) {
			c.embedder = embedder
			c.store = store
			c.synthesizer = synthesizer
			c.sessions = sessions
		})
	}
}

// Status 汇总各组件的可用状态与索引统计
func (c *StatusController) Status() {
	status := map[string]interface{}{
		"embedder_ready":     c.embedder.Ready(),
		"vector_store_ready": c.store.Ready(),
		"llm_ready":          c.synthesizer.Ready(),
		"llm_provider":       c.synthesizer.ProviderName(),
		"active_sessions":    c.sessions.Count(),
		"environment":        utils.CheckEnvironment(),
	}

	if c.store.Ready() {
		if stats, err := c.store.Stats(c.Ctx.Request.Context()); err == nil {
			status["index_stats"] = stats
		}
	}

	c.JSONSuccess(status)
}
