package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/domainpack/service/internal/config"
	"github.com/domainpack/service/internal/llm"
	"github.com/domainpack/service/internal/models"
	"github.com/domainpack/service/internal/services"
	"github.com/domainpack/service/internal/store"
)

// =============================================================================
// HTTP端点测试
// =============================================================================

// stubLLMClient 固定输出的测试客户端
type stubLLMClient struct {
	output string
}

func (c *stubLLMClient) Generate(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	return c.output, nil
}

func (c *stubLLMClient) GetProvider() llm.Provider { return llm.Provider("stub") }
func (c *stubLLMClient) GetModel() string          { return "stub-model" }
func (c *stubLLMClient) Close() error              { return nil }

// newTestRouter 构造测试用的完整路由
func newTestRouter(t *testing.T, llmOutput string) (*gin.Engine, store.DocumentStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		ServiceName:    "domain-pack-backend",
		AppVersion:     "1.0.0",
		LLMProvider:    "stub",
		LLMModel:       "stub-model",
		LLMTimeout:     5 * time.Second,
		LLMRateLimit:   600,
		LLMMaxTokens:   2000,
		LLMTemperature: 0.1,
	}

	factory := llm.NewFactory()
	factory.RegisterProvider(llm.Provider("stub"), func(config *llm.ClientConfig) (llm.Client, error) {
		return &stubLLMClient{output: llmOutput}, nil
	})

	documentStore := store.NewMemoryDocumentStore()
	handler := NewHandler(services.NewIntentService(cfg, factory), documentStore, cfg)

	router := gin.New()
	handler.RegisterRoutes(router)
	return router, documentStore
}

// uploadRequest 构造multipart文件上传请求
func uploadRequest(t *testing.T, path, filename, content string) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

const testPackYAML = `name: legal
description: Legal and compliance domain
version: "1.0"
entities:
  - name: CLIENT
    type: PERSON
    attributes: [client_id]
key_terms: [contract]
`

// TestRootEndpoint 测试根端点
func TestRootEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, "{}")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "online", resp["status"])
	assert.Equal(t, "domain-pack-backend", resp["service"])
}

// TestHealthEndpoint 测试健康检查端点
func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, "{}")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, "connected", resp["storage"])
}

// TestUploadEndpoint 测试领域包上传
func TestUploadEndpoint(t *testing.T) {
	router, documentStore := newTestRouter(t, "{}")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "/upload", "legal.yaml", testPackYAML))

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp models.UploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.DocumentID)
	assert.Equal(t, "legal.yaml", resp.Filename)
	assert.Equal(t, "legal", resp.Metadata.Name)
	assert.Equal(t, 2, resp.SectionsCount)

	// 文档确实入库
	doc, err := documentStore.GetDocument(context.Background(), resp.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, "legal", doc.Metadata.Name)
}

// TestUploadEndpointBadExtension 测试非YAML扩展名被拒绝
func TestUploadEndpointBadExtension(t *testing.T) {
	router, _ := newTestRouter(t, "{}")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "/upload", "legal.json", testPackYAML))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "YAML file")
}

// TestUploadEndpointInvalidSyntax 测试语法错误返回400
func TestUploadEndpointInvalidSyntax(t *testing.T) {
	router, _ := newTestRouter(t, "{}")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "/upload", "broken.yaml", "name: [unclosed"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid YAML syntax")
}

// TestUploadEndpointMissingMetadata 测试缺失元数据返回400
func TestUploadEndpointMissingMetadata(t *testing.T) {
	router, _ := newTestRouter(t, "{}")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "/upload", "partial.yaml", "name: legal"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "missing required metadata fields")
}

// TestValidateEndpoint 测试结构校验端点
func TestValidateEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, "{}")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "/validate", "legal.yaml", testPackYAML))

	assert.Equal(t, http.StatusOK, w.Code)

	var result models.ValidationResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
}

// TestValidateEndpointSyntaxError 测试语法错误以ValidationResult形态返回
func TestValidateEndpointSyntaxError(t *testing.T) {
	router, _ := newTestRouter(t, "{}")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "/validate", "broken.yaml", "name: [unclosed"))

	assert.Equal(t, http.StatusOK, w.Code)

	var result models.ValidationResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.False(t, result.IsValid)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Invalid YAML syntax")
}

// TestDomainPackListEndpoint 测试领域包列表端点
func TestDomainPackListEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, "{}")

	// 先上传两个领域包
	for _, filename := range []string{"a.yaml", "b.yaml"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, uploadRequest(t, "/upload", filename, testPackYAML))
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/domain_pack_list", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.DomainPackListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.TotalCount)
	require.Len(t, resp.DomainPacks, 2)
	assert.Equal(t, "legal", resp.DomainPacks[0].DomainName)
}

// TestIntentEndpointSuccess 测试意图解析成功响应
func TestIntentEndpointSuccess(t *testing.T) {
	router, _ := newTestRouter(t, `{
		"target_section": "entities",
		"operation": "ADD",
		"intent_summary": "Add new entity CLIENT",
		"confidence": 0.9,
		"entities_involved": [{"type": "ENTITY", "name": "CLIENT"}],
		"payload": {"explicit": {"name": "CLIENT"}, "implicit": {}},
		"execution_risk": "LOW"
	}`)

	body, _ := json.Marshal(models.IntentRequest{
		DomainPackID: "Legal_v01",
		DomainName:   "legal",
		Description:  "Legal and compliance domain",
		UserRequest:  "Add new entity CLIENT",
	})
	req := httptest.NewRequest(http.MethodPost, "/intent", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.IntentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Intent)
	assert.Equal(t, "Intent parsed successfully", resp.Message)
	assert.Equal(t, "Legal_v01", resp.Intent.DomainPackID)
	assert.Equal(t, models.OperationAdd, resp.Intent.Operation)
}

// TestIntentEndpointExtractionFailure 测试LLM输出无JSON时的fail-safe响应
func TestIntentEndpointExtractionFailure(t *testing.T) {
	router, _ := newTestRouter(t, "I cannot help with that.")

	body, _ := json.Marshal(models.IntentRequest{
		DomainPackID: "Legal_v01",
		DomainName:   "legal",
		Description:  "Legal domain",
		UserRequest:  "Do something",
	})
	req := httptest.NewRequest(http.MethodPost, "/intent", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp models.IntentErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "LLM_API_ERROR", resp.Error)
	assert.Equal(t, 0.0, resp.Confidence)
}

// TestIntentEndpointSchemaFailure 测试schema违规响应携带字段明细
func TestIntentEndpointSchemaFailure(t *testing.T) {
	router, _ := newTestRouter(t, `{
		"target_section": "bad_section",
		"operation": "ADD",
		"intent_summary": "Bad record",
		"confidence": 0.9,
		"execution_risk": "LOW"
	}`)

	body, _ := json.Marshal(models.IntentRequest{
		DomainPackID: "Legal_v01",
		DomainName:   "legal",
		Description:  "Legal domain",
		UserRequest:  "Do something",
	})
	req := httptest.NewRequest(http.MethodPost, "/intent", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp models.IntentErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_INTENT_SCHEMA", resp.Error)
	assert.Equal(t, 0.0, resp.Confidence)
	require.NotNil(t, resp.Details)
	assert.Contains(t, resp.Details, "validation_errors")
	assert.Contains(t, resp.Details, "llm_output")
}

// TestIntentEndpointMissingFields 测试请求体缺字段返回400
func TestIntentEndpointMissingFields(t *testing.T) {
	router, _ := newTestRouter(t, "{}")

	req := httptest.NewRequest(http.MethodPost, "/intent", bytes.NewReader([]byte(`{"domain_pack_id": "Legal_v01"}`)))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestIntentHealthEndpoint 测试意图服务健康检查端点
func TestIntentHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, "{}")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/intent/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, []interface{}{"healthy", "degraded"}, resp["status"])
}
