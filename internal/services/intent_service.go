package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/domainpack/service/internal/config"
	"github.com/domainpack/service/internal/llm"
	"github.com/domainpack/service/internal/models"
)

// =============================================================================
// 意图解析编排 - 串联 生成->提取->归一化->校验 流水线
// =============================================================================

// 机器可读错误码，随失败响应返回给调用方
const (
	CodeLLMConfigurationError = "LLM_CONFIGURATION_ERROR"
	CodeLLMAPIError           = "LLM_API_ERROR"
	CodeInvalidIntentSchema   = "INVALID_INTENT_SCHEMA"
	CodeInternalError         = "INTERNAL_ERROR"
)

// ErrorKind 流水线失败类别，四类错误不会被降级合并
type ErrorKind string

const (
	ErrKindConfiguration ErrorKind = "configuration" // 提供商不支持或缺凭证，不重试
	ErrKindBackend       ErrorKind = "backend"       // 调用期瞬态失败，重试耗尽后上抛
	ErrKindExtraction    ErrorKind = "extraction"    // 文本中无法恢复JSON记录，不自动重试
	ErrKindSchema        ErrorKind = "schema"        // 严格校验失败，不自动重试
	ErrKindInternal      ErrorKind = "internal"      // 未分类异常的兜底
)

// IntentError 流水线失败详情，置信度语义上恒为0
type IntentError struct {
	Kind        ErrorKind
	Code        string
	Message     string
	FieldErrors []models.FieldError    // 仅schema类错误携带
	RawRecord   map[string]interface{} // 仅schema类错误携带，供运维诊断
	Err         error
}

func (e *IntentError) Error() string {
	return e.Message
}

func (e *IntentError) Unwrap() error {
	return e.Err
}

// pipelineState 流水线状态机
type pipelineState string

const (
	stateRequested        pipelineState = "Requested"
	stateProviderSelected pipelineState = "ProviderSelected"
	stateGenerating       pipelineState = "Generating"
	stateExtracted        pipelineState = "Extracted"
	stateNormalized       pipelineState = "Normalized"
	stateValidated        pipelineState = "Validated"
	stateSucceeded        pipelineState = "Succeeded"
)

// HealthStatus /intent/health 的诊断结果，不发起任何网络调用
type HealthStatus struct {
	Status           string `json:"status"` // healthy / degraded / unhealthy
	Provider         string `json:"llm_provider,omitempty"`
	Model            string `json:"llm_model,omitempty"`
	APIKeyConfigured bool   `json:"api_key_configured"`
	Message          string `json:"message"`
}

// IntentService 意图解析服务
// 提供商在构造时由显式配置选定一次，客户端跨请求并发复用
type IntentService struct {
	cfg     *config.Config
	client  llm.Client
	retry   *llm.RetryPolicy
	initErr error
}

// NewIntentService 创建意图解析服务
// 构造失败不阻止服务启动：客户端缺失时 /intent 返回配置错误，/intent/health 报告degraded
func NewIntentService(cfg *config.Config, factory *llm.Factory) *IntentService {
	s := &IntentService{
		cfg:   cfg,
		retry: llm.DefaultRetryPolicy(),
	}

	client, err := factory.CreateClient(&llm.ClientConfig{
		Provider:    llm.Provider(cfg.LLMProvider),
		APIKey:      cfg.APIKeyFor(cfg.LLMProvider),
		Model:       cfg.LLMModel,
		Temperature: cfg.LLMTemperature,
		MaxTokens:   cfg.LLMMaxTokens,
		Timeout:     cfg.LLMTimeout,
		RateLimit:   cfg.LLMRateLimit,
	})
	if err != nil {
		s.initErr = err
		logrus.Warnf("LLM客户端初始化失败: %v", err)
		return s
	}

	s.client = client
	logrus.Infof("LLM客户端初始化成功: provider=%s model=%s", client.GetProvider(), client.GetModel())
	return s
}

// InterpretIntent 把自然语言请求解析为经过严格校验的IntentionSchema
// 任一阶段失败都会归入四类错误之一；未分类异常兜底为内部错误
func (s *IntentService) InterpretIntent(ctx context.Context, req *models.IntentRequest) (schema *models.IntentionSchema, intentErr *IntentError) {
	// 未分类异常兜底，保证调用方永远拿到统一的低置信度失败信号
	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("意图解析发生未预期异常: %v", r)
			schema = nil
			intentErr = &IntentError{
				Kind:    ErrKindInternal,
				Code:    CodeInternalError,
				Message: fmt.Sprintf("an unexpected error occurred: %v", r),
			}
		}
	}()

	state := stateRequested
	advance := func(to pipelineState) {
		logrus.Debugf("流水线状态: %s -> %s", state, to)
		state = to
	}

	req.Canonicalize()
	logrus.Infof("收到意图解析请求: domain_pack_id=%s", req.DomainPackID)
	logrus.Infof("用户请求: %s", req.UserRequest)

	// Requested -> ProviderSelected：构造期错误在此暴露，零网络调用
	if s.client == nil {
		return nil, &IntentError{
			Kind:    ErrKindConfiguration,
			Code:    CodeLLMConfigurationError,
			Message: fmt.Sprintf("LLM service not properly configured: %v", s.initErr),
			Err:     s.initErr,
		}
	}
	advance(stateProviderSelected)

	// ProviderSelected -> Generating -> Extracted：重试策略只管辖这条边
	advance(stateGenerating)
	userMessage := BuildIntentUserMessage(req.DomainPackID, req.DomainName, req.Description, req.UserRequest)

	rawOutput, err := s.retry.Do(ctx, func() (string, error) {
		return s.client.Generate(ctx, IntentSystemPrompt, userMessage)
	})
	if err != nil {
		logrus.Errorf("LLM调用失败（重试已耗尽）: %v", err)
		return nil, &IntentError{
			Kind:    ErrKindBackend,
			Code:    CodeLLMAPIError,
			Message: fmt.Sprintf("failed to generate intent: %v", err),
			Err:     err,
		}
	}
	logrus.Debugf("LLM原始输出: %s", rawOutput)

	record, err := ParseLLMOutput(rawOutput)
	if err != nil {
		logrus.Errorf("LLM输出中无法恢复JSON记录: %v", err)
		return nil, &IntentError{
			Kind:    ErrKindExtraction,
			Code:    CodeLLMAPIError,
			Message: fmt.Sprintf("failed to generate intent: %v", err),
			Err:     err,
		}
	}
	advance(stateExtracted)

	// Extracted -> Normalized：纯结构修复，必然成功
	record = NormalizeIntentData(record)
	advance(stateNormalized)

	// 归一化保持对请求上下文无感知，标识字段由编排层注入
	if _, exists := record["intent_id"]; !exists {
		record["intent_id"] = uuid.NewString()
	}
	if _, exists := record["domain_pack_id"]; !exists {
		record["domain_pack_id"] = req.DomainPackID
	}

	// Normalized -> Validated：严格校验，失败携带字段路径明细
	result, fieldErrs := ValidateIntentSchema(record)
	if len(fieldErrs) > 0 {
		logrus.Errorf("意图校验失败: %d 处字段违规", len(fieldErrs))
		for _, fe := range fieldErrs {
			logrus.Debugf("校验错误: %s", fe.String())
		}
		return nil, &IntentError{
			Kind:        ErrKindSchema,
			Code:        CodeInvalidIntentSchema,
			Message:     "The intent could not be parsed safely. LLM output does not match required schema.",
			FieldErrors: fieldErrs,
			RawRecord:   record,
		}
	}
	advance(stateValidated)

	// Validated -> Succeeded：低置信度/歧义/高风险只告警，不改变结果
	advance(stateSucceeded)
	logrus.Infof("意图解析成功: confidence=%.2f state=%s", result.Confidence, state)

	if result.Confidence < 0.5 {
		logrus.Warnf("低置信度意图: %.2f", result.Confidence)
	}
	if len(result.Ambiguities) > 0 {
		logrus.Warnf("检测到歧义: %v", result.Ambiguities)
	}
	if result.ExecutionRisk == models.RiskHigh {
		logrus.Warnf("检测到高执行风险意图: %s", result.IntentID)
	}

	return result, nil
}

// Health 报告LLM配置健康状态，不发起网络调用
func (s *IntentService) Health() HealthStatus {
	provider := s.cfg.LLMProvider

	if s.initErr != nil && errors.Is(s.initErr, llm.ErrUnsupportedProvider) {
		return HealthStatus{
			Status:  "unhealthy",
			Message: fmt.Sprintf("configuration error: %v", s.initErr),
		}
	}

	apiKeyConfigured := s.cfg.APIKeyFor(provider) != ""
	status := "healthy"
	message := "LLM service configured"
	if !apiKeyConfigured {
		status = "degraded"
		message = "LLM API key not configured"
	}

	return HealthStatus{
		Status:           status,
		Provider:         provider,
		Model:            s.cfg.LLMModel,
		APIKeyConfigured: apiKeyConfigured,
		Message:          message,
	}
}
