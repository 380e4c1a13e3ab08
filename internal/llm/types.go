package llm

import (
	"context"
	"errors"
	"time"
)

// =============================================================================
// 核心类型定义
// =============================================================================

// Provider LLM提供商类型
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderGroq      Provider = "groq"
	ProviderAnthropic Provider = "anthropic"
)

// 构造期错误：二者必须可区分
// ErrUnsupportedProvider 表示配置了未知的提供商
// ErrMissingAPIKey 表示提供商受支持但缺少凭证
var (
	ErrUnsupportedProvider = errors.New("unsupported llm provider")
	ErrMissingAPIKey       = errors.New("api key not configured")
)

// ClientConfig LLM客户端配置
// 调用参数（温度、最大Token、超时）按部署固定，不随请求变化
type ClientConfig struct {
	Provider    Provider      `json:"provider"`
	APIKey      string        `json:"api_key"`
	BaseURL     string        `json:"base_url"`
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Timeout     time.Duration `json:"timeout"`
	RateLimit   int           `json:"rate_limit"` // requests per minute
}

// ProviderError LLM调用错误
type ProviderError struct {
	Provider  Provider `json:"provider"`
	Code      string   `json:"code"`
	Message   string   `json:"message"`
	Retryable bool     `json:"retryable"`
}

func (e *ProviderError) Error() string {
	return e.Message
}

// Client 统一LLM客户端接口 - 策略模式的Strategy接口
// 实现必须保证并发安全，可跨请求复用
type Client interface {
	// Generate 单次生成：固定指令 + 请求消息 -> 原始文本
	Generate(ctx context.Context, systemPrompt, userMessage string) (string, error)

	// GetProvider 获取提供商
	GetProvider() Provider

	// GetModel 获取模型名称
	GetModel() string

	// Close 关闭客户端
	Close() error
}
