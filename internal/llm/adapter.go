package llm

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// =============================================================================
// 适配器模式 - 统一不同LLM API的差异
// =============================================================================

// BaseAdapter 基础适配器 - 适配器模式的Adapter
// 持有共享的HTTP客户端与限流器，各提供商客户端内嵌复用
type BaseAdapter struct {
	provider    Provider
	config      *ClientConfig
	httpClient  *http.Client
	rateLimiter *rate.Limiter
}

// NewBaseAdapter 创建基础适配器
func NewBaseAdapter(provider Provider, config *ClientConfig) *BaseAdapter {
	// 创建HTTP客户端，超时来自部署配置
	httpClient := &http.Client{
		Timeout: config.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 20,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	// 创建限流器 (requests per minute -> requests per second)
	rateLimit := config.RateLimit
	if rateLimit <= 0 {
		rateLimit = 60
	}
	rateLimiter := rate.NewLimiter(rate.Limit(float64(rateLimit)/60.0), rateLimit)

	return &BaseAdapter{
		provider:    provider,
		config:      config,
		httpClient:  httpClient,
		rateLimiter: rateLimiter,
	}
}

// GetProvider 获取提供商
func (ba *BaseAdapter) GetProvider() Provider {
	return ba.provider
}

// CheckRateLimit 检查限流
func (ba *BaseAdapter) CheckRateLimit(ctx context.Context) error {
	if err := ba.rateLimiter.Wait(ctx); err != nil {
		return &ProviderError{
			Provider:  ba.provider,
			Code:      "RATE_LIMIT_EXCEEDED",
			Message:   "rate limit exceeded",
			Retryable: true,
		}
	}
	return nil
}

// Close 关闭适配器
func (ba *BaseAdapter) Close() error {
	ba.httpClient.CloseIdleConnections()
	return nil
}
