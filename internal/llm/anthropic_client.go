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
// Anthropic客户端实现
// =============================================================================

// AnthropicClient Anthropic适配器
type AnthropicClient struct {
	*BaseAdapter
	apiKey  string
	baseURL string
	model   string
}

// AnthropicRequest Anthropic请求格式
type AnthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	System      string             `json:"system,omitempty"`
	Messages    []AnthropicMessage `json:"messages"`
}

// AnthropicMessage Anthropic消息格式
type AnthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AnthropicResponse Anthropic响应格式
type AnthropicResponse struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Role    string `json:"role"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Model      string `json:"model"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// AnthropicErrorResponse Anthropic错误响应
type AnthropicErrorResponse struct {
	Type  string `json:"type"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewAnthropicClient 创建Anthropic客户端
// 缺少API密钥时立即失败，不发起任何网络调用
func NewAnthropicClient(config *ClientConfig) (Client, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("anthropic: %w", ErrMissingAPIKey)
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "https://api.anthropic.com/v1"
	}

	model := config.Model
	if model == "" {
		model = "claude-3-5-sonnet-20241022"
	}

	return &AnthropicClient{
		BaseAdapter: NewBaseAdapter(ProviderAnthropic, config),
		apiKey:      config.APIKey,
		baseURL:     baseURL,
		model:       model,
	}, nil
}

// Generate 生成文本
func (ac *AnthropicClient) Generate(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	// 1. 检查限流
	if err := ac.CheckRateLimit(ctx); err != nil {
		return "", err
	}

	// 2. 转换请求格式，Anthropic使用单独的system字段
	anthropicReq := &AnthropicRequest{
		Model:       ac.model,
		MaxTokens:   ac.config.MaxTokens,
		Temperature: ac.config.Temperature,
		System:      systemPrompt,
		Messages: []AnthropicMessage{
			{Role: "user", Content: userMessage},
		},
	}

	// 3. 发送请求
	resp, err := ac.sendRequest(ctx, anthropicReq)
	if err != nil {
		return "", err
	}

	// 4. 提取文本内容
	if len(resp.Content) == 0 {
		return "", &ProviderError{
			Provider:  ProviderAnthropic,
			Code:      "EMPTY_RESPONSE",
			Message:   "anthropic returned no content blocks",
			Retryable: true,
		}
	}

	return resp.Content[0].Text, nil
}

// GetModel 获取模型名称
func (ac *AnthropicClient) GetModel() string {
	return ac.model
}

// sendRequest 发送HTTP请求
func (ac *AnthropicClient) sendRequest(ctx context.Context, req *AnthropicRequest) (*AnthropicResponse, error) {
	// 序列化请求
	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request failed: %w", err)
	}

	// 创建HTTP请求
	httpReq, err := http.NewRequestWithContext(ctx, "POST", ac.baseURL+"/messages", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}

	// 设置请求头
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", ac.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	// 发送请求
	httpResp, err := ac.httpClient.Do(httpReq)
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
		var errorResp AnthropicErrorResponse
		if err := json.Unmarshal(respBody, &errorResp); err == nil && errorResp.Error.Message != "" {
			return nil, &ProviderError{
				Provider:  ProviderAnthropic,
				Code:      errorResp.Error.Type,
				Message:   errorResp.Error.Message,
				Retryable: httpResp.StatusCode >= 500 || httpResp.StatusCode == http.StatusTooManyRequests,
			}
		}
		return nil, fmt.Errorf("HTTP %d: %s", httpResp.StatusCode, string(respBody))
	}

	// 解析响应
	var resp AnthropicResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response failed: %w", err)
	}

	return &resp, nil
}
