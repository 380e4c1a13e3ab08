package services

import (
	"encoding/json"
	"errors"
	"strings"
)

// =============================================================================
// LLM输出解析 - 从自由文本中恢复单个JSON记录
// =============================================================================

// ErrNoJSONFound LLM输出中找不到可解析的JSON记录
var ErrNoJSONFound = errors.New("could not extract valid JSON from LLM output")

// ParseLLMOutput 从原始LLM输出中提取JSON对象
// 按顺序尝试，首个成功者生效：
// 1. 整段文本直接解析
// 2. ```json 标记的代码块内容
// 3. 任意 ``` 代码块内容
// 4. 首个 { 到末个 } 之间的子串
func ParseLLMOutput(rawOutput string) (map[string]interface{}, error) {
	// 1. 尝试直接解析
	if record, err := parseJSONObject(rawOutput); err == nil {
		return record, nil
	}

	// 2. 尝试提取```json代码块
	if inner, ok := extractFencedBlock(rawOutput, "```json"); ok {
		if record, err := parseJSONObject(inner); err == nil {
			return record, nil
		}
	}

	// 3. 尝试提取任意```代码块
	if inner, ok := extractFencedBlock(rawOutput, "```"); ok {
		if record, err := parseJSONObject(inner); err == nil {
			return record, nil
		}
	}

	// 4. 尝试截取首个{到末个}之间的子串
	start := strings.Index(rawOutput, "{")
	end := strings.LastIndex(rawOutput, "}")
	if start != -1 && end > start {
		if record, err := parseJSONObject(rawOutput[start : end+1]); err == nil {
			return record, nil
		}
	}

	return nil, ErrNoJSONFound
}

// parseJSONObject 解析JSON，要求根节点是对象
func parseJSONObject(text string) (map[string]interface{}, error) {
	var record map[string]interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &record); err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrNoJSONFound
	}
	return record, nil
}

// extractFencedBlock 提取首个代码块围栏内的文本
func extractFencedBlock(text, fence string) (string, bool) {
	start := strings.Index(text, fence)
	if start == -1 {
		return "", false
	}
	start += len(fence)

	end := strings.Index(text[start:], "```")
	if end == -1 {
		return "", false
	}

	return strings.TrimSpace(text[start : start+end]), true
}
