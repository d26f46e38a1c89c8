package router

import (
	"github.com/beego/beego/v2/server/web"

	"github.com/jarvisai/assistant-go/app/controllers"
	"github.com/jarvisai/assistant-go/app/middleware"
)

// Controllers 路由需要的控制器集合
type Controllers struct {
	Chat      *controllers.ChatController
	Documents *controllers.DocumentController
	Status    *controllers.StatusController
	Metrics   *controllers.MetricsController
}

// Init registers all routes. Must be called after config is loaded.
func Init(c Controllers) {
	web.Router("/", &controllers.RootController{}, "get:Index")
	web.Router("/health", &controllers.HealthController{}, "get:Health")

	web.InsertFilter("/*", web.BeforeRouter, middleware.CORSMiddleware)

	// 问答路由
	web.Router("/api/chat", c.Chat, "post:Chat")
	web.Router("/api/chat/history", c.Chat, "get:History;delete:ClearHistory")

	// 文档路由
	// 注意：具体路由必须在参数路由之前
	web.Router("/api/documents/ingest-dir", c.Documents, "post:IngestDirectory")
	web.Router("/api/documents", c.Documents, "get:List;post:Upload")

	// 运行状态与指标
	web.Router("/api/status", c.Status, "get:Status")
	web.Router("/metrics", c.Metrics, "get:Metrics")
}
