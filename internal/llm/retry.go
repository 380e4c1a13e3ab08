package llm

import (
	"context"
	"fmt"
	"time"
)

// =============================================================================
// 重试策略 - 指数退避包装单次LLM调用
// =============================================================================

// RetryPolicy 重试策略配置
// 只包装调用期失败；构造期错误（缺凭证）不会进入重试
type RetryPolicy struct {
	MaxAttempts  int           // 最大尝试次数（含首次）
	InitialDelay time.Duration // 初始退避时间
	MaxDelay     time.Duration // 退避时间上限
	Multiplier   float64       // 退避倍增因子

	// OnRetry 每次重试前回调（测试中用于记录退避序列）
	OnRetry func(attempt int, err error, delay time.Duration)
}

// DefaultRetryPolicy 返回默认重试策略：3次尝试，2s起步，10s封顶，2倍递增
func DefaultRetryPolicy() *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts:  3,
		InitialDelay: 2 * time.Second,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
	}
}

// Do 执行fn，失败时按指数退避重试
// 耗尽尝试次数后原样返回最后一次错误；context取消会立即中断等待
func (p *RetryPolicy) Do(ctx context.Context, fn func() (string, error)) (string, error) {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	delay := p.InitialDelay

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		// 第一次执行不延迟
		if attempt > 1 {
			if p.OnRetry != nil {
				p.OnRetry(attempt, lastErr, delay)
			}

			// 等待退避时间，同时监听context取消
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("retry aborted: %w", ctx.Err())
			case <-time.After(delay):
			}

			// 计算下一次退避时间
			delay = time.Duration(float64(delay) * p.Multiplier)
			if p.MaxDelay > 0 && delay > p.MaxDelay {
				delay = p.MaxDelay
			}
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err
	}

	return "", lastErr
}
