package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/domainpack/service/internal/models"
)

// =============================================================================
// 意图记录严格校验 - 规范schema的唯一裁决点
// =============================================================================

// ValidateIntentSchema 对归一化后的记录执行严格校验
// 成功返回类型化的IntentionSchema；失败返回按字段路径定位的错误列表，不抛异常
func ValidateIntentSchema(record map[string]interface{}) (*models.IntentionSchema, []models.FieldError) {
	var errs []models.FieldError
	schema := &models.IntentionSchema{}

	// intent_id：缺失时生成，存在时必须为字符串
	if raw, exists := record["intent_id"]; exists {
		if s, ok := raw.(string); ok && s != "" {
			schema.IntentID = s
		} else {
			errs = append(errs, models.FieldError{Path: "intent_id", Message: "must be a non-empty string"})
		}
	} else {
		schema.IntentID = uuid.NewString()
	}

	// domain_pack_id：必填字符串
	if s, ok := requireString(record, "domain_pack_id", &errs); ok {
		schema.DomainPackID = s
	}

	// target_section：必须恰好是枚举中的单个值
	if s, ok := requireString(record, "target_section", &errs); ok {
		section := models.TargetSection(s)
		if !section.IsValid() {
			errs = append(errs, models.FieldError{
				Path:    "target_section",
				Message: fmt.Sprintf("invalid section %q, must be one of: %s", s, joinSections()),
			})
		} else {
			schema.TargetSection = section
		}
	}

	// operation：必须恰好是枚举中的单个值
	if s, ok := requireString(record, "operation", &errs); ok {
		op := models.Operation(s)
		if !op.IsValid() {
			errs = append(errs, models.FieldError{
				Path:    "operation",
				Message: fmt.Sprintf("invalid operation %q, must be one of: ADD, UPDATE, DELETE, MERGE, SPLIT, REORDER", s),
			})
		} else {
			schema.Operation = op
		}
	}

	// intent_summary：必填字符串
	if s, ok := requireString(record, "intent_summary", &errs); ok {
		schema.IntentSummary = s
	}

	// confidence：必填数值，闭区间[0.0, 1.0]
	if raw, exists := record["confidence"]; exists {
		if f, ok := asNumber(raw); ok {
			if f < 0.0 || f > 1.0 {
				errs = append(errs, models.FieldError{Path: "confidence", Message: "confidence must be between 0.0 and 1.0"})
			} else {
				schema.Confidence = f
			}
		} else {
			errs = append(errs, models.FieldError{Path: "confidence", Message: "must be a number"})
		}
	} else {
		errs = append(errs, models.FieldError{Path: "confidence", Message: "field required"})
	}

	// entities_involved：对象数组，元素必须同时携带type与name
	schema.EntitiesInvolved = []models.EntityInvolved{}
	if raw, exists := record["entities_involved"]; exists {
		entities, ok := raw.([]interface{})
		if !ok {
			errs = append(errs, models.FieldError{Path: "entities_involved", Message: "must be an array"})
		} else {
			for i, entity := range entities {
				obj, ok := entity.(map[string]interface{})
				if !ok {
					errs = append(errs, models.FieldError{
						Path:    fmt.Sprintf("entities_involved.%d", i),
						Message: "must be an object with type and name",
					})
					continue
				}
				item := models.EntityInvolved{}
				if s, ok := obj["type"].(string); ok && s != "" {
					item.Type = s
				} else {
					errs = append(errs, models.FieldError{
						Path:    fmt.Sprintf("entities_involved.%d.type", i),
						Message: "field required",
					})
				}
				if s, ok := obj["name"].(string); ok && s != "" {
					item.Name = s
				} else {
					errs = append(errs, models.FieldError{
						Path:    fmt.Sprintf("entities_involved.%d.name", i),
						Message: "field required",
					})
				}
				schema.EntitiesInvolved = append(schema.EntitiesInvolved, item)
			}
		}
	}

	// payload：必须包含explicit/implicit两个对象
	if raw, exists := record["payload"]; exists {
		payload, ok := raw.(map[string]interface{})
		if !ok {
			errs = append(errs, models.FieldError{Path: "payload", Message: "must be an object"})
		} else {
			schema.Payload.Explicit = requireObject(payload, "explicit", "payload.explicit", &errs)
			schema.Payload.Implicit = requireObject(payload, "implicit", "payload.implicit", &errs)
		}
	} else {
		errs = append(errs, models.FieldError{Path: "payload", Message: "field required"})
	}

	// constraints：布尔开关 + 附加约束对象
	if raw, exists := record["constraints"]; exists {
		constraints, ok := raw.(map[string]interface{})
		if !ok {
			errs = append(errs, models.FieldError{Path: "constraints", Message: "must be an object"})
		} else {
			if b, ok := constraints["must_not_override_existing"].(bool); ok {
				schema.Constraints.MustNotOverrideExisting = b
			} else {
				errs = append(errs, models.FieldError{Path: "constraints.must_not_override_existing", Message: "must be a boolean"})
			}
			schema.Constraints.AdditionalConstraints = requireObject(constraints, "additional_constraints", "constraints.additional_constraints", &errs)
		}
	} else {
		errs = append(errs, models.FieldError{Path: "constraints", Message: "field required"})
	}

	// 自由文本列表字段
	schema.Assumptions = requireStringList(record, "assumptions", &errs)
	schema.Ambiguities = requireStringList(record, "ambiguities", &errs)
	schema.Suggestions = requireStringList(record, "suggestions", &errs)

	// validation_requirements：布尔开关 + 附加校验映射
	if raw, exists := record["validation_requirements"]; exists {
		valReqs, ok := raw.(map[string]interface{})
		if !ok {
			errs = append(errs, models.FieldError{Path: "validation_requirements", Message: "must be an object"})
		} else {
			if b, ok := valReqs["schema_validation"].(bool); ok {
				schema.ValidationRequirements.SchemaValidation = b
			} else {
				errs = append(errs, models.FieldError{Path: "validation_requirements.schema_validation", Message: "must be a boolean"})
			}
			if b, ok := valReqs["duplicate_check"].(bool); ok {
				schema.ValidationRequirements.DuplicateCheck = b
			} else {
				errs = append(errs, models.FieldError{Path: "validation_requirements.duplicate_check", Message: "must be a boolean"})
			}

			schema.ValidationRequirements.AdditionalValidations = map[string]bool{}
			if rawExtra, has := valReqs["additional_validations"]; has {
				extra, ok := rawExtra.(map[string]interface{})
				if !ok {
					errs = append(errs, models.FieldError{Path: "validation_requirements.additional_validations", Message: "must be an object"})
				} else {
					for key, value := range extra {
						if b, ok := value.(bool); ok {
							schema.ValidationRequirements.AdditionalValidations[key] = b
						} else {
							errs = append(errs, models.FieldError{
								Path:    fmt.Sprintf("validation_requirements.additional_validations.%s", key),
								Message: "must be a boolean",
							})
						}
					}
				}
			} else {
				errs = append(errs, models.FieldError{Path: "validation_requirements.additional_validations", Message: "field required"})
			}
		}
	} else {
		errs = append(errs, models.FieldError{Path: "validation_requirements", Message: "field required"})
	}

	// execution_risk：必须恰好是LOW/MEDIUM/HIGH之一
	if s, ok := requireString(record, "execution_risk", &errs); ok {
		risk := models.ExecutionRisk(s)
		if !risk.IsValid() {
			errs = append(errs, models.FieldError{
				Path:    "execution_risk",
				Message: fmt.Sprintf("invalid risk %q, must be one of: LOW, MEDIUM, HIGH", s),
			})
		} else {
			schema.ExecutionRisk = risk
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return schema, nil
}

// requireString 要求字段存在且为非空字符串
func requireString(record map[string]interface{}, key string, errs *[]models.FieldError) (string, bool) {
	raw, exists := record[key]
	if !exists {
		*errs = append(*errs, models.FieldError{Path: key, Message: "field required"})
		return "", false
	}
	s, ok := raw.(string)
	if !ok || s == "" {
		*errs = append(*errs, models.FieldError{Path: key, Message: "must be a non-empty string"})
		return "", false
	}
	return s, true
}

// requireObject 要求字段存在且为对象
func requireObject(parent map[string]interface{}, key, path string, errs *[]models.FieldError) map[string]interface{} {
	raw, exists := parent[key]
	if !exists {
		*errs = append(*errs, models.FieldError{Path: path, Message: "field required"})
		return map[string]interface{}{}
	}
	obj, ok := raw.(map[string]interface{})
	if !ok {
		*errs = append(*errs, models.FieldError{Path: path, Message: "must be an object"})
		return map[string]interface{}{}
	}
	return obj
}

// requireStringList 要求字段为字符串数组，缺失视为空数组
func requireStringList(record map[string]interface{}, key string, errs *[]models.FieldError) []string {
	result := []string{}
	raw, exists := record[key]
	if !exists {
		return result
	}
	items, ok := raw.([]interface{})
	if !ok {
		// []string 直接给出的情况（内部构造的记录）
		if ss, ok := raw.([]string); ok {
			return append(result, ss...)
		}
		*errs = append(*errs, models.FieldError{Path: key, Message: "must be an array of strings"})
		return result
	}
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			*errs = append(*errs, models.FieldError{Path: fmt.Sprintf("%s.%d", key, i), Message: "must be a string"})
			continue
		}
		result = append(result, s)
	}
	return result
}

// asNumber 接受JSON反序列化或内部构造的数值类型
func asNumber(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// joinSections 拼接全部合法章节名
func joinSections() string {
	names := make([]string, len(models.AllTargetSections))
	for i, s := range models.AllTargetSections {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}
