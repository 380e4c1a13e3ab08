package api

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/domainpack/service/internal/config"
	"github.com/domainpack/service/internal/models"
	"github.com/domainpack/service/internal/services"
	"github.com/domainpack/service/internal/store"
)

// 全局变量
var (
	startTime = time.Now() // 记录服务启动时间
)

// Handler API处理器
type Handler struct {
	intentService *services.IntentService
	store         store.DocumentStore
	cfg           *config.Config
}

// NewHandler 创建API处理器
func NewHandler(intentService *services.IntentService, documentStore store.DocumentStore, cfg *config.Config) *Handler {
	return &Handler{
		intentService: intentService,
		store:         documentStore,
		cfg:           cfg,
	}
}

// RegisterRoutes 注册全部HTTP路由
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	// 健康检查
	router.GET("/", h.Root)
	router.GET("/health", h.HealthCheck)

	// YAML领域包管理
	router.POST("/upload", h.UploadYAML)
	router.POST("/validate", h.ValidateYAML)
	router.GET("/domain_pack_list", h.GetDomainPackList)

	// 意图解析
	router.POST("/intent", h.InterpretIntent)
	router.GET("/intent/health", h.IntentHealth)
}

// Root 根端点，返回服务概览
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": h.cfg.ServiceName,
		"version": h.cfg.AppVersion,
		"uptime":  time.Since(startTime).Round(time.Second).String(),
		"endpoints": gin.H{
			"upload":           "/upload - Upload and store YAML files",
			"validate":         "/validate - Validate YAML structure without storing",
			"domain_pack_list": "/domain_pack_list - List all uploaded domain packs",
			"intent":           "/intent - Convert natural language to structured intent",
			"intent_health":    "/intent/health - LLM configuration diagnostics",
		},
	})
}

// HealthCheck 健康检查端点，探测文档存储连通性
func (h *Handler) HealthCheck(c *gin.Context) {
	storeStatus := "connected"
	status := "healthy"
	if err := h.store.Ping(c.Request.Context()); err != nil {
		logrus.Errorf("存储健康检查失败: %v", err)
		storeStatus = "disconnected"
		status = "degraded"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  status,
		"storage": storeStatus,
		"service": h.cfg.ServiceName,
	})
}

// UploadYAML 上传并持久化领域包YAML文件
// 流程：扩展名检查 -> 读取 -> 解析 -> 元数据提取 -> 章节统计 -> 存储
func (h *Handler) UploadYAML(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "file is required"})
		return
	}
	logrus.Infof("收到上传请求: %s", fileHeader.Filename)

	// 1. 校验文件扩展名
	if !hasYAMLExtension(fileHeader.Filename) {
		logrus.Warnf("非法文件扩展名: %s", fileHeader.Filename)
		c.JSON(http.StatusBadRequest, gin.H{"detail": "File must be a YAML file (.yaml or .yml)"})
		return
	}

	// 2. 读取文件内容
	content, err := readUploadedFile(fileHeader)
	if err != nil {
		logrus.Errorf("读取文件失败: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"detail": fmt.Sprintf("Error reading file: %v", err)})
		return
	}
	logrus.Infof("文件读取成功: %d 字节", len(content))

	// 3. 解析YAML（解析层已把数字键统一为字符串）
	parsed, err := services.ParseYAMLContent(content)
	if err != nil {
		logrus.Errorf("YAML解析失败: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"detail": fmt.Sprintf("Invalid YAML syntax: %v", err)})
		return
	}

	// 4. 提取元数据
	metadata, err := services.ExtractMetadata(parsed)
	if err != nil {
		logrus.Errorf("元数据提取失败: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	// 5. 统计章节
	sectionsCount, sections := services.CountSections(parsed)

	// 6. 构建并存储文档
	doc := &models.DomainPackDocument{
		Filename:      fileHeader.Filename,
		RawYAML:       string(content),
		ParsedYAML:    parsed,
		Metadata:      *metadata,
		SectionsCount: sectionsCount,
		Sections:      sections,
		UploadedAt:    time.Now().UTC(),
	}

	documentID, err := h.store.SaveDocument(c.Request.Context(), doc)
	if err != nil {
		logrus.Errorf("文档存储失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"detail": "Error storing document in database. Please ensure the document store is available.",
		})
		return
	}

	logrus.Infof("上传完成: %s -> %s", fileHeader.Filename, documentID)
	c.JSON(http.StatusCreated, models.UploadResponse{
		DocumentID:    documentID,
		Filename:      fileHeader.Filename,
		Metadata:      *metadata,
		SectionsCount: sectionsCount,
		Message:       fmt.Sprintf("YAML file '%s' uploaded and stored successfully", fileHeader.Filename),
	})
}

// ValidateYAML 校验领域包结构，不做任何存储
// 语法错误同样以ValidationResult形态返回，HTTP状态保持200
func (h *Handler) ValidateYAML(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "file is required"})
		return
	}
	logrus.Infof("收到校验请求: %s", fileHeader.Filename)

	if !hasYAMLExtension(fileHeader.Filename) {
		logrus.Warnf("非法文件扩展名: %s", fileHeader.Filename)
		c.JSON(http.StatusBadRequest, gin.H{"detail": "File must be a YAML file (.yaml or .yml)"})
		return
	}

	content, err := readUploadedFile(fileHeader)
	if err != nil {
		logrus.Errorf("读取文件失败: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"detail": fmt.Sprintf("Error reading file: %v", err)})
		return
	}

	parsed, err := services.ParseYAMLContent(content)
	if err != nil {
		logrus.Errorf("YAML解析失败: %v", err)
		c.JSON(http.StatusOK, models.ValidationResult{
			IsValid:  false,
			Errors:   []string{fmt.Sprintf("Invalid YAML syntax: %v", err)},
			Warnings: []string{},
		})
		return
	}

	result := services.ValidateYAMLStructure(parsed)
	if result.IsValid {
		logrus.Infof("校验通过: %s", fileHeader.Filename)
	} else {
		logrus.Warnf("校验失败: %s, %d 处错误, %d 条告警",
			fileHeader.Filename, len(result.Errors), len(result.Warnings))
	}
	c.JSON(http.StatusOK, result)
}

// GetDomainPackList 返回全部已上传领域包，按上传时间倒序
func (h *Handler) GetDomainPackList(c *gin.Context) {
	logrus.Info("查询领域包列表")

	items, err := h.store.ListDocuments(c.Request.Context())
	if err != nil {
		logrus.Errorf("领域包列表查询失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"detail": fmt.Sprintf("Error retrieving domain pack list: %v", err),
		})
		return
	}

	logrus.Infof("返回 %d 个领域包", len(items))
	c.JSON(http.StatusOK, models.DomainPackListResponse{
		TotalCount:  len(items),
		DomainPacks: items,
	})
}

// InterpretIntent 把自然语言请求解析为结构化意图
// 任何流水线失败都返回携带机器可读错误码的fail-safe响应，置信度恒为0
func (h *Handler) InterpretIntent(c *gin.Context) {
	var req models.IntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": fmt.Sprintf("invalid request body: %v", err)})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	schema, intentErr := h.intentService.InterpretIntent(c.Request.Context(), &req)
	if intentErr != nil {
		c.JSON(http.StatusInternalServerError, buildIntentErrorResponse(intentErr))
		return
	}

	c.JSON(http.StatusOK, models.IntentResponse{
		Intent:  schema,
		Message: "Intent parsed successfully",
	})
}

// IntentHealth 意图服务健康检查，不发起LLM调用
func (h *Handler) IntentHealth(c *gin.Context) {
	c.JSON(http.StatusOK, h.intentService.Health())
}

// buildIntentErrorResponse 把流水线错误转成线上响应
// schema类错误附带字段级明细与原始LLM记录，便于调用方诊断
func buildIntentErrorResponse(intentErr *services.IntentError) models.IntentErrorResponse {
	resp := models.IntentErrorResponse{
		Error:      intentErr.Code,
		Message:    intentErr.Message,
		Confidence: 0.0,
	}

	if intentErr.Kind == services.ErrKindSchema {
		validationErrors := make([]string, 0, len(intentErr.FieldErrors))
		for _, fe := range intentErr.FieldErrors {
			validationErrors = append(validationErrors, fe.String())
		}
		resp.Details = map[string]interface{}{
			"validation_errors": validationErrors,
			"llm_output":        intentErr.RawRecord,
		}
	}
	return resp
}

// hasYAMLExtension 检查文件名是否为YAML扩展名
func hasYAMLExtension(filename string) bool {
	lower := strings.ToLower(filename)
	return strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml")
}

// readUploadedFile 读取multipart上传的文件内容
func readUploadedFile(fileHeader *multipart.FileHeader) ([]byte, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}
