package utils

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TraceIDKey 请求追踪ID在gin上下文与标准context中的键名
const TraceIDKey = "traceId"

type traceIDContextKey struct{}

// GenerateTraceID 生成请求追踪ID
func GenerateTraceID() string {
	return uuid.NewString()[:8]
}

// TraceIDMiddleware 请求追踪中间件
// 复用调用方通过 X-Trace-ID 请求头传入的ID，没有则生成新的
func TraceIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader("X-Trace-ID")
		if traceID == "" {
			traceID = GenerateTraceID()
		}

		c.Set(TraceIDKey, traceID)
		c.Header("X-Trace-ID", traceID)

		// 下游服务通过标准context拿到追踪ID
		c.Request = c.Request.WithContext(WithTraceID(c.Request.Context(), traceID))

		c.Next()
	}
}

// GetTraceIDFromGin 从gin上下文获取追踪ID
func GetTraceIDFromGin(c *gin.Context) string {
	if traceID, exists := c.Get(TraceIDKey); exists {
		if s, ok := traceID.(string); ok {
			return s
		}
	}
	return ""
}

// WithTraceID 把追踪ID写入标准context
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDContextKey{}, traceID)
}

// GetTraceIDFromContext 从标准context获取追踪ID
func GetTraceIDFromContext(ctx context.Context) string {
	if traceID, ok := ctx.Value(traceIDContextKey{}).(string); ok {
		return traceID
	}
	return ""
}
