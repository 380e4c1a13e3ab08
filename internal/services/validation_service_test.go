package services

import (
	"strings"
	"testing"
)

// =============================================================================
// 领域包结构校验测试
// =============================================================================

func validDomainPack() map[string]interface{} {
	return map[string]interface{}{
		"name":        "legal",
		"description": "Legal and compliance domain",
		"version":     "1.0",
		"entities": []interface{}{
			map[string]interface{}{
				"name":       "CLIENT",
				"type":       "PERSON",
				"attributes": []interface{}{"client_id", "name"},
			},
		},
		"key_terms": []interface{}{"contract", "liability"},
		"entity_aliases": map[string]interface{}{
			"CLIENT": []interface{}{"customer", "party"},
		},
	}
}

// TestValidateYAMLStructureValid 测试合法结构通过校验
func TestValidateYAMLStructureValid(t *testing.T) {
	result := ValidateYAMLStructure(validDomainPack())

	if !result.IsValid {
		t.Fatalf("Expected valid, got errors: %v", result.Errors)
	}
	if len(result.Errors) != 0 {
		t.Errorf("Expected no errors, got %v", result.Errors)
	}
}

// TestValidateYAMLStructureMissingMetadata 测试缺失必填元数据
func TestValidateYAMLStructureMissingMetadata(t *testing.T) {
	pack := validDomainPack()
	delete(pack, "version")

	result := ValidateYAMLStructure(pack)
	if result.IsValid {
		t.Fatal("Expected invalid")
	}
	if !containsError(result.Errors, "version: field required") {
		t.Errorf("Expected version error, got %v", result.Errors)
	}
}

// TestValidateYAMLStructureEntityMissingFields 测试实体缺字段时携带路径
func TestValidateYAMLStructureEntityMissingFields(t *testing.T) {
	pack := validDomainPack()
	pack["entities"] = []interface{}{
		map[string]interface{}{"name": "CLIENT"},
	}

	result := ValidateYAMLStructure(pack)
	if result.IsValid {
		t.Fatal("Expected invalid")
	}
	if !containsError(result.Errors, "entities -> 0 -> type") {
		t.Errorf("Expected path to entity type, got %v", result.Errors)
	}
	if !containsError(result.Errors, "entities -> 0 -> attributes") {
		t.Errorf("Expected path to entity attributes, got %v", result.Errors)
	}
}

// TestValidateYAMLStructureWrongContainerTypes 测试容器类型错误
func TestValidateYAMLStructureWrongContainerTypes(t *testing.T) {
	pack := validDomainPack()
	pack["key_terms"] = "not a list"
	pack["entity_aliases"] = []interface{}{"not", "a", "map"}

	result := ValidateYAMLStructure(pack)
	if result.IsValid {
		t.Fatal("Expected invalid")
	}
	if !containsError(result.Errors, "key_terms: must be a list") {
		t.Errorf("Expected key_terms error, got %v", result.Errors)
	}
	if !containsError(result.Errors, "entity_aliases: must be a mapping") {
		t.Errorf("Expected entity_aliases error, got %v", result.Errors)
	}
}

// TestValidateYAMLStructureRelationships 测试关系章节必填键
func TestValidateYAMLStructureRelationships(t *testing.T) {
	pack := validDomainPack()
	pack["relationships"] = []interface{}{
		map[string]interface{}{"name": "represents", "from": "ATTORNEY"},
	}

	result := ValidateYAMLStructure(pack)
	if result.IsValid {
		t.Fatal("Expected invalid")
	}
	if !containsError(result.Errors, "relationships -> 0 -> to") {
		t.Errorf("Expected relationship to error, got %v", result.Errors)
	}
}

// TestValidateYAMLStructureEmptySectionWarnings 测试空章节只告警不阻断
func TestValidateYAMLStructureEmptySectionWarnings(t *testing.T) {
	pack := validDomainPack()
	pack["entities"] = []interface{}{}
	pack["business_rules"] = []interface{}{}
	pack["entity_aliases"] = map[string]interface{}{}

	result := ValidateYAMLStructure(pack)
	if !result.IsValid {
		t.Fatalf("Empty sections must not block, got errors: %v", result.Errors)
	}
	if len(result.Warnings) != 3 {
		t.Errorf("Expected 3 warnings, got %v", result.Warnings)
	}
	if !containsError(result.Warnings, "Section 'entities' is present but empty") {
		t.Errorf("Expected entities warning, got %v", result.Warnings)
	}
}

// TestValidateYAMLStructureErrorsSuppressWarnings 测试失败时不输出告警
func TestValidateYAMLStructureErrorsSuppressWarnings(t *testing.T) {
	pack := validDomainPack()
	delete(pack, "name")
	pack["business_rules"] = []interface{}{}

	result := ValidateYAMLStructure(pack)
	if result.IsValid {
		t.Fatal("Expected invalid")
	}
	if len(result.Warnings) != 0 {
		t.Errorf("Expected no warnings on failure, got %v", result.Warnings)
	}
}

// containsError 检查消息列表中是否有包含指定子串的条目
func containsError(messages []string, substr string) bool {
	for _, msg := range messages {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}
