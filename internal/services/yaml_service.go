package services

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/domainpack/service/internal/models"
)

// =============================================================================
// YAML解析服务 - 领域包文件的解析与元数据提取
// =============================================================================

// ErrYAMLRootNotMapping YAML根节点不是映射
var ErrYAMLRootNotMapping = errors.New("YAML root must be a mapping")

// ParseYAMLContent 把YAML文本解析为通用映射
// 空文档返回空映射；根节点非映射视为错误
func ParseYAMLContent(content []byte) (map[string]interface{}, error) {
	logrus.Debug("解析YAML内容")

	var raw interface{}
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("YAML parsing error: %w", err)
	}

	if raw == nil {
		logrus.Warn("YAML内容为空")
		return map[string]interface{}{}, nil
	}

	parsed, ok := normalizeMapKeys(raw).(map[string]interface{})
	if !ok {
		return nil, ErrYAMLRootNotMapping
	}

	logrus.Debug("YAML解析成功")
	return parsed, nil
}

// ExtractMetadata 提取必填的name/description/version元数据
func ExtractMetadata(parsed map[string]interface{}) (*models.PackMetadata, error) {
	var missing []string
	for _, field := range []string{"name", "description", "version"} {
		if _, exists := parsed[field]; !exists {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required metadata fields: %v", missing)
	}

	meta := &models.PackMetadata{
		Name:        fmt.Sprintf("%v", parsed["name"]),
		Description: fmt.Sprintf("%v", parsed["description"]),
		Version:     fmt.Sprintf("%v", parsed["version"]),
	}
	logrus.Infof("元数据提取成功: %s v%s", meta.Name, meta.Version)
	return meta, nil
}

// CountSections 统计已知章节的出现情况
// 返回章节数量与仅含已知章节的子映射，元数据字段不计入
func CountSections(parsed map[string]interface{}) (int, map[string]interface{}) {
	sections := make(map[string]interface{})
	for _, key := range models.SectionKeys {
		if value, exists := parsed[key]; exists {
			sections[key] = value
		}
	}
	logrus.Infof("发现 %d 个章节", len(sections))
	return len(sections), sections
}

// normalizeMapKeys 递归把映射键统一为字符串
// 文档存储要求所有键为字符串，YAML中的数字键（如问题模板的序号）在此转换
func normalizeMapKeys(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		result := make(map[string]interface{}, len(v))
		for key, value := range v {
			result[key] = normalizeMapKeys(value)
		}
		return result
	case map[interface{}]interface{}:
		result := make(map[string]interface{}, len(v))
		for key, value := range v {
			result[fmt.Sprintf("%v", key)] = normalizeMapKeys(value)
		}
		return result
	case []interface{}:
		result := make([]interface{}, len(v))
		for i, item := range v {
			result[i] = normalizeMapKeys(item)
		}
		return result
	default:
		return data
	}
}
