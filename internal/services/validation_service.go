package services

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/domainpack/service/internal/models"
)

// =============================================================================
// 领域包结构校验 - 只查结构与类型，不查业务语义
// =============================================================================

// ValidateYAMLStructure 校验解析后的领域包结构
// 错误阻断上传，告警不阻断；错误消息携带 a -> b -> c 形式的字段路径
func ValidateYAMLStructure(parsed map[string]interface{}) models.ValidationResult {
	logrus.Debug("开始领域包结构校验")

	var errs []string

	// 必填元数据：三个字符串字段
	for _, field := range []string{"name", "description", "version"} {
		raw, exists := parsed[field]
		if !exists {
			errs = append(errs, fmt.Sprintf("%s: field required", field))
			continue
		}
		if !isScalar(raw) {
			errs = append(errs, fmt.Sprintf("%s: must be a scalar value", field))
		}
	}

	// entities：对象列表，每项要求name/type/attributes
	if raw, exists := parsed["entities"]; exists {
		validateObjectList(raw, "entities", []string{"name", "type", "attributes"}, &errs)
	}

	// key_terms：字符串列表
	if raw, exists := parsed["key_terms"]; exists {
		if items, ok := raw.([]interface{}); ok {
			for i, item := range items {
				if _, ok := item.(string); !ok {
					errs = append(errs, fmt.Sprintf("key_terms -> %d: must be a string", i))
				}
			}
		} else {
			errs = append(errs, "key_terms: must be a list")
		}
	}

	// entity_aliases：实体类型到别名列表的映射
	if raw, exists := parsed["entity_aliases"]; exists {
		if aliases, ok := raw.(map[string]interface{}); ok {
			for key, value := range aliases {
				if _, ok := value.([]interface{}); !ok {
					errs = append(errs, fmt.Sprintf("entity_aliases -> %s: must be a list of aliases", key))
				}
			}
		} else {
			errs = append(errs, "entity_aliases: must be a mapping")
		}
	}

	// extraction_patterns：对象列表
	if raw, exists := parsed["extraction_patterns"]; exists {
		validateObjectList(raw, "extraction_patterns", nil, &errs)
	}

	// relationships：对象列表，每项要求name/from/to/attributes
	if raw, exists := parsed["relationships"]; exists {
		validateObjectList(raw, "relationships", []string{"name", "from", "to", "attributes"}, &errs)
	}

	// relationship_types：对象列表，每项要求type/business_context
	if raw, exists := parsed["relationship_types"]; exists {
		validateObjectList(raw, "relationship_types", []string{"type", "business_context"}, &errs)
	}

	// 其余列表章节只查容器类型
	for _, key := range []string{"business_patterns", "reasoning_templates", "multihop_questions", "business_rules"} {
		if raw, exists := parsed[key]; exists {
			validateObjectList(raw, key, nil, &errs)
		}
	}

	// 映射章节
	for _, key := range []string{"business_context", "question_templates", "validation_rules"} {
		if raw, exists := parsed[key]; exists {
			if _, ok := raw.(map[string]interface{}); !ok {
				errs = append(errs, fmt.Sprintf("%s: must be a mapping", key))
			}
		}
	}

	if len(errs) > 0 {
		logrus.Warnf("领域包结构校验失败: %d 处错误", len(errs))
		return models.ValidationResult{
			IsValid:  false,
			Errors:   errs,
			Warnings: []string{},
		}
	}

	logrus.Debug("领域包结构校验通过")
	return models.ValidationResult{
		IsValid:  true,
		Errors:   []string{},
		Warnings: checkForWarnings(parsed),
	}
}

// checkForWarnings 收集不阻断上传的提示项
func checkForWarnings(parsed map[string]interface{}) []string {
	warnings := []string{}

	listSections := []string{
		"entities", "key_terms", "extraction_patterns",
		"relationships", "business_patterns", "business_rules",
	}
	for _, section := range listSections {
		if raw, exists := parsed[section]; exists {
			if items, ok := raw.([]interface{}); ok && len(items) == 0 {
				warnings = append(warnings, fmt.Sprintf("Section '%s' is present but empty", section))
			}
		}
	}

	if raw, exists := parsed["entity_aliases"]; exists {
		if aliases, ok := raw.(map[string]interface{}); ok && len(aliases) == 0 {
			warnings = append(warnings, "Section 'entity_aliases' is present but empty")
		}
	}

	if len(warnings) > 0 {
		logrus.Infof("发现 %d 条告警", len(warnings))
	}
	return warnings
}

// validateObjectList 校验章节为对象列表，并检查每项的必填键
func validateObjectList(raw interface{}, section string, requiredKeys []string, errs *[]string) {
	items, ok := raw.([]interface{})
	if !ok {
		*errs = append(*errs, fmt.Sprintf("%s: must be a list", section))
		return
	}
	for i, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			*errs = append(*errs, fmt.Sprintf("%s -> %d: must be a mapping", section, i))
			continue
		}
		for _, key := range requiredKeys {
			if _, exists := obj[key]; !exists {
				*errs = append(*errs, fmt.Sprintf("%s -> %d -> %s: field required", section, i, key))
			}
		}
	}
}

// isScalar 判断值是否为标量（字符串或数值）
func isScalar(raw interface{}) bool {
	switch raw.(type) {
	case string, int, int64, float64, float32, bool:
		return true
	default:
		return false
	}
}
