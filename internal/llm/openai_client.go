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
// OpenAI客户端实现
// =============================================================================

// OpenAIClient OpenAI适配器
type OpenAIClient struct {
	*BaseAdapter
	apiKey  string
	baseURL string
	model   string
}

// OpenAIRequest OpenAI请求格式
type OpenAIRequest struct {
	Model       string          `json:"model"`
	Messages    []OpenAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
}

// OpenAIMessage OpenAI消息格式
type OpenAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// OpenAIResponse OpenAI响应格式
type OpenAIResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int           `json:"index"`
		Message      OpenAIMessage `json:"message"`
		FinishReason string        `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// OpenAIErrorResponse OpenAI错误响应
type OpenAIErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// NewOpenAIClient 创建OpenAI客户端
// 缺少API密钥时立即失败，不发起任何网络调用
func NewOpenAIClient(config *ClientConfig) (Client, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("openai: %w", ErrMissingAPIKey)
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	model := config.Model
	if model == "" {
		model = "gpt-4"
	}

	return &OpenAIClient{
		BaseAdapter: NewBaseAdapter(ProviderOpenAI, config),
		apiKey:      config.APIKey,
		baseURL:     baseURL,
		model:       model,
	}, nil
}

// Generate 生成文本
func (oc *OpenAIClient) Generate(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	// 1. 检查限流
	if err := oc.CheckRateLimit(ctx); err != nil {
		return "", err
	}

	// 2. 转换请求格式
	openaiReq := &OpenAIRequest{
		Model: oc.model,
		Messages: []OpenAIMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userMessage},
		},
		Temperature: oc.config.Temperature,
		MaxTokens:   oc.config.MaxTokens,
	}

	// 3. 发送请求
	resp, err := oc.sendRequest(ctx, openaiReq)
	if err != nil {
		return "", err
	}

	// 4. 提取文本内容
	if len(resp.Choices) == 0 {
		return "", &ProviderError{
			Provider:  ProviderOpenAI,
			Code:      "EMPTY_RESPONSE",
			Message:   "openai returned no choices",
			Retryable: true,
		}
	}

	return resp.Choices[0].Message.Content, nil
}

// GetModel 获取模型名称
func (oc *OpenAIClient) GetModel() string {
	return oc.model
}

// sendRequest 发送HTTP请求
func (oc *OpenAIClient) sendRequest(ctx context.Context, req *OpenAIRequest) (*OpenAIResponse, error) {
	// 序列化请求
	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request failed: %w", err)
	}

	// 创建HTTP请求
	httpReq, err := http.NewRequestWithContext(ctx, "POST", oc.baseURL+"/chat/completions", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}

	// 设置请求头
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+oc.apiKey)

	// 发送请求
	httpResp, err := oc.httpClient.Do(httpReq)
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
				Provider:  ProviderOpenAI,
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
