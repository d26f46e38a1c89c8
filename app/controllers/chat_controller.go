package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jarvisai/assistant-go/internal/di"
	"github.com/jarvisai/assistant-go/internal/services"
)

var validate = validator.New()

// ChatRequest 问答请求体
type ChatRequest struct {
	Query     string `json:"query" validate:"required,min=1"`
	SessionID string `json:"session_id" validate:"omitempty,max=128"`
}

// ChatController 问答控制器
type ChatController struct {
	BaseController
	assistantService *services.AssistantService
}

// NewChatController 创建问答控制器
func NewChatController(assistantService *services.AssistantService) *ChatController {
	return &ChatController{assistantService: assistantService}
}

// Prepare beego每次请求新建控制器实例,从DI容器取回服务
func (c *ChatController) Prepare() {
	if c.assistantService == nil {
		di.Invoke(func(s *services.AssistantService) {
			c.assistantService = s
		})
	}
}

// Chat 处理一次提问
func (c *ChatController) Chat() {
	var req ChatRequest
	if err := json.Unmarshal(c.Ctx.Input.RequestBody, &req); err != nil {
		c.JSONError(http.StatusBadRequest, "请求体格式错误")
		return
	}
	if err := validate.Struct(&req); err != nil {
		c.JSONError(http.StatusBadRequest, "查询参数不能为空")
		return
	}

	resp, err := c.assistantService.Chat(c.Ctx.Request.Context(), req.SessionID, req.Query)
	if err != nil {
		c.JSONError(http.StatusInternalServerError, "问答失败")
		return
	}
	c.JSONSuccess(resp)
}

// History 返回会话历史
func (c *ChatController) History() {
	sessionID := c.GetString("session_id")
	if sessionID == "" {
		c.JSONError(http.StatusBadRequest, "session_id不能为空")
		return
	}
	c.JSONSuccess(map[string]interface{}{
		"session_id": sessionID,
		"history":    c.assistantService.History(sessionID),
	})
}

// ClearHistory 清空会话历史
func (c *ChatController) ClearHistory() {
	sessionID := c.GetString("session_id")
	if sessionID == "" {
		c.JSONError(http.StatusBadRequest, "session_id不能为空")
		return
	}
	c.assistantService.ClearHistory(sessionID)
	c.JSONSuccess(map[string]interface{}{"session_id": sessionID, "cleared": true})
}
