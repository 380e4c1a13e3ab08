package services

// =============================================================================
// 意图记录归一化 - 结构修复，不补语义
// =============================================================================

// NormalizeIntentData 把LLM产出的记录向规范形态修复
// 只修结构性偏差，绝不替LLM补发 target_section、operation、intent_summary、
// confidence、execution_risk —— 这五项缺失或畸形属于校验失败
// intent_id 与 domain_pack_id 同样不在此填充，由编排层注入请求上下文
func NormalizeIntentData(record map[string]interface{}) map[string]interface{} {
	normalized := make(map[string]interface{}, len(record))
	for k, v := range record {
		normalized[k] = v
	}

	// 修复 entities_involved：裸字符串转为对象
	if raw, exists := normalized["entities_involved"]; exists {
		if entities, ok := raw.([]interface{}); ok {
			fixed := make([]interface{}, 0, len(entities))
			for _, entity := range entities {
				switch e := entity.(type) {
				case string:
					fixed = append(fixed, map[string]interface{}{
						"type": "ENTITY",
						"name": e,
					})
				case map[string]interface{}:
					// 有name无type时补默认类型
					if _, hasName := e["name"]; hasName {
						if _, hasType := e["type"]; !hasType {
							e["type"] = "ENTITY"
						}
					}
					fixed = append(fixed, e)
				default:
					fixed = append(fixed, entity)
				}
			}
			normalized["entities_involved"] = fixed
		}
	}

	// 修复 payload：保证 explicit/implicit 双层结构
	if raw, exists := normalized["payload"]; exists {
		if payload, ok := raw.(map[string]interface{}); ok {
			_, hasExplicit := payload["explicit"]
			_, hasImplicit := payload["implicit"]

			if !hasExplicit && !hasImplicit {
				// 整个payload视为用户显式给出的数据
				normalized["payload"] = map[string]interface{}{
					"explicit": payload,
					"implicit": map[string]interface{}{},
				}
			} else {
				if !hasExplicit {
					payload["explicit"] = map[string]interface{}{}
				}
				if !hasImplicit {
					payload["implicit"] = map[string]interface{}{}
				}
			}
		}
	} else {
		normalized["payload"] = map[string]interface{}{
			"explicit": map[string]interface{}{},
			"implicit": map[string]interface{}{},
		}
	}

	// 修复 constraints：补齐默认约束
	if raw, exists := normalized["constraints"]; exists {
		if constraints, ok := raw.(map[string]interface{}); ok {
			if _, has := constraints["must_not_override_existing"]; !has {
				constraints["must_not_override_existing"] = true
			}
			if _, has := constraints["additional_constraints"]; !has {
				constraints["additional_constraints"] = map[string]interface{}{}
			}
		}
	} else {
		normalized["constraints"] = map[string]interface{}{
			"must_not_override_existing": true,
			"additional_constraints":     map[string]interface{}{},
		}
	}

	// 修复 validation_requirements：补齐默认校验项
	if raw, exists := normalized["validation_requirements"]; exists {
		if valReqs, ok := raw.(map[string]interface{}); ok {
			if _, has := valReqs["schema_validation"]; !has {
				valReqs["schema_validation"] = true
			}
			if _, has := valReqs["duplicate_check"]; !has {
				valReqs["duplicate_check"] = true
			}
			if _, has := valReqs["additional_validations"]; !has {
				valReqs["additional_validations"] = map[string]interface{}{}
			}
		}
	} else {
		normalized["validation_requirements"] = map[string]interface{}{
			"schema_validation":      true,
			"duplicate_check":        true,
			"additional_validations": map[string]interface{}{},
		}
	}

	// 可选列表字段缺失时补空序列
	for _, key := range []string{"assumptions", "ambiguities", "suggestions"} {
		if _, exists := normalized[key]; !exists {
			normalized[key] = []interface{}{}
		}
	}

	return normalized
}
