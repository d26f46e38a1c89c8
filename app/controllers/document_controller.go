package controllers

import (
	"net/http"

	"github.com/jarvisai/assistant-go/internal/di"
	"github.com/jarvisai/assistant-go/internal/rag"
	"github.com/jarvisai/assistant-go/internal/services"
)

// DocumentController 文档控制器
type DocumentController struct {
	BaseController
	documentService *services.DocumentService
}

// NewDocumentController 创建文档控制器
func NewDocumentController(documentService *services.DocumentService) *DocumentController {
	return &DocumentController{documentService: documentService}
}

// Prepare beego每次请求新建控制器实例,从DI容器取回服务
func (c *DocumentController) Prepare() {
	if c.documentService == nil {
		di.Invoke(func(s *services.DocumentService) {
			c.documentService = s
		})
	}
}

// Upload 上传并摄取单个文件（multipart/form-data）
func (c *DocumentController) Upload() {
	file, header, err := c.GetFile("file")
	if err != nil {
		c.JSONError(http.StatusBadRequest, "缺少上传文件")
		return
	}
	defer file.Close()

	chunks, err := c.documentService.SaveAndIngest(c.Ctx.Request.Context(), header.Filename, file)
	if err != nil {
		if rag.IsRejection(err) {
			c.JSONError(http.StatusUnprocessableEntity, err.Error())
			return
		}
		c.JSONError(http.StatusInternalServerError, "文档摄取失败")
		return
	}

	c.JSONSuccess(map[string]interface{}{
		"file":   header.Filename,
		"chunks": chunks,
	})
}

// IngestDirectory 摄取配置的数据目录下的全部支持文件
func (c *DocumentController) IngestDirectory() {
	result, err := c.documentService.IngestDataDir(c.Ctx.Request.Context())
	if err != nil {
		c.JSONError(http.StatusInternalServerError, err.Error())
		return
	}
	c.JSONSuccess(result)
}

// List 列出已上传的文件
func (c *DocumentController) List() {
	files, err := c.documentService.ListUploads()
	if err != nil {
		c.JSONError(http.StatusInternalServerError, "读取上传目录失败")
		return
	}
	c.JSONSuccess(map[string]interface{}{
		"files":             files,
		"supported_formats": c.documentService.SupportedFormats(),
	})
}
