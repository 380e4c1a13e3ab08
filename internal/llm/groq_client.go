package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// =============================================================================
// Groq客户端实现 - 走OpenAI兼容的chat completions协议
// =============================================================================

// GroqClient Groq适配器
type GroqClient struct {
	*BaseAdapter
	apiKey  string
	baseURL string
	model   string
}

// NewGroqClient 创建Groq客户端
// 缺少API密钥时立即失败，不发起任何网络调用
func NewGroqClient(config *ClientConfig) (Client, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("groq: %w", ErrMissingAPIKey)
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "https://api.groq.com/openai/v1"
	}

	model := config.Model
	if model == "" {
		model = "llama-3.3-70b-versatile"
	}

	return &GroqClient{
		BaseAdapter: NewBaseAdapter(ProviderGroq, config),
		apiKey:      config.APIKey,
		baseURL:     baseURL,
		model:       model,
	}, nil
}

// Generate 生成文本
func (gc *GroqClient) Generate(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	// 1. 检查限流
	if err := gc.CheckRateLimit(ctx); err != nil {
		return "", err
	}

	// 2. 转换请求格式（OpenAI兼容）
	groqReq := &OpenAIRequest{
		Model: gc.model,
		Messages: []OpenAIMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userMessage},
		},
		Temperature: gc.config.Temperature,
		MaxTokens:   gc.config.MaxTokens,
	}

	// 3. 发送请求
	resp, err := gc.sendRequest(ctx, groqReq)
	if err != nil {
		return "", err
	}

	// 4. 提取文本内容
	if len(resp.Choices) == 0 {
		return "", &ProviderError{
			Provider:  ProviderGroq,
			Code:      "EMPTY_RESPONSE",
			Message:   "groq returned no choices",
			Retryable: true,
		}
	}

	return resp.Choices[0].Message.Content, nil
}

// GetModel 获取模型名称
func (gc *GroqClient) GetModel() string {
	return gc.model
}

// sendRequest 发送HTTP请求
func (gc *GroqClient) sendRequest(ctx context.Context, req *OpenAIRequest) (*OpenAIResponse, error) {
	// 序列化请求
	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request failed: %w", err)
	}

	// 创建HTTP请求
	httpReq, err := http.NewRequestWithContext(ctx, "POST", gc.baseURL+"/chat/completions", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}

	// 设置请求头
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+gc.apiKey)

	// 发送请求
	httpResp, err := gc.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request failed: %w", err)
	}
	defer httpResp.Body.Close()

	// 读取响应
	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response failed: %w", err)
	}

	// 检查HTTP状态码
	if httpResp.StatusCode != http.StatusOK {
		var errorResp OpenAIErrorResponse
		if err := json.Unmarshal(respBody, &errorResp); err == nil && errorResp.Error.Message != "" {
			return nil, &ProviderError{
				Provider:  ProviderGroq,
				Code:      errorResp.Error.Type,
				Message:   errorResp.Error.Message,
				Retryable: httpResp.StatusCode >= 500 || httpResp.StatusCode == http.StatusTooManyRequests,
			}
		}
		return nil, fmt.Errorf("HTTP %d: %s", httpResp.StatusCode, string(respBody))
	}

	// 解析响应
	var resp OpenAIResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response failed: %w", err)
	}

	return &resp, nil
}
