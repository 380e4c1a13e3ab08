package models

import (
	"fmt"
	"strings"
)

// =============================================================================
// 意图解析数据模型 - 对应 /intent 端点
// =============================================================================

// TargetSection 领域包YAML允许的目标章节
type TargetSection string

const (
	SectionName               TargetSection = "name"
	SectionDescription        TargetSection = "description"
	SectionVersion            TargetSection = "version"
	SectionEntities           TargetSection = "entities"
	SectionKeyTerms           TargetSection = "key_terms"
	SectionEntityAliases      TargetSection = "entity_aliases"
	SectionExtractionPatterns TargetSection = "extraction_patterns"
	SectionBusinessContext    TargetSection = "business_context"
	SectionRelationshipTypes  TargetSection = "relationship_types"
	SectionRelationships      TargetSection = "relationships"
	SectionBusinessPatterns   TargetSection = "business_patterns"
	SectionReasoningTemplates TargetSection = "reasoning_templates"
	SectionMultihopQuestions  TargetSection = "multihop_questions"
	SectionQuestionTemplates  TargetSection = "question_templates"
	SectionBusinessRules      TargetSection = "business_rules"
	SectionValidationRules    TargetSection = "validation_rules"
)

// AllTargetSections 全部合法章节
var AllTargetSections = []TargetSection{
	SectionName, SectionDescription, SectionVersion, SectionEntities,
	SectionKeyTerms, SectionEntityAliases, SectionExtractionPatterns,
	SectionBusinessContext, SectionRelationshipTypes, SectionRelationships,
	SectionBusinessPatterns, SectionReasoningTemplates, SectionMultihopQuestions,
	SectionQuestionTemplates, SectionBusinessRules, SectionValidationRules,
}

// IsValid 检查章节取值是否合法
func (s TargetSection) IsValid() bool {
	for _, v := range AllTargetSections {
		if s == v {
			return true
		}
	}
	return false
}

// Operation 领域包章节允许的操作类型
type Operation string

const (
	OperationAdd     Operation = "ADD"
	OperationUpdate  Operation = "UPDATE"
	OperationDelete  Operation = "DELETE"
	OperationMerge   Operation = "MERGE"
	OperationSplit   Operation = "SPLIT"
	OperationReorder Operation = "REORDER"
)

// AllOperations 全部合法操作
var AllOperations = []Operation{
	OperationAdd, OperationUpdate, OperationDelete,
	OperationMerge, OperationSplit, OperationReorder,
}

// IsValid 检查操作取值是否合法
func (o Operation) IsValid() bool {
	for _, v := range AllOperations {
		if o == v {
			return true
		}
	}
	return false
}

// ExecutionRisk 意图执行风险等级
type ExecutionRisk string

const (
	RiskLow    ExecutionRisk = "LOW"
	RiskMedium ExecutionRisk = "MEDIUM"
	RiskHigh   ExecutionRisk = "HIGH"
)

// IsValid 检查风险等级取值是否合法
func (r ExecutionRisk) IsValid() bool {
	return r == RiskLow || r == RiskMedium || r == RiskHigh
}

// EntityInvolved 意图涉及的实体
type EntityInvolved struct {
	Type string `json:"type"` // 实体类型，例如 ENTITY、RELATIONSHIP
	Name string `json:"name"` // 实体名称
}

// IntentPayload 意图载荷，区分用户显式给出与推断得到的数据
type IntentPayload struct {
	Explicit map[string]interface{} `json:"explicit"`
	Implicit map[string]interface{} `json:"implicit"`
}

// IntentConstraints 意图执行约束
type IntentConstraints struct {
	MustNotOverrideExisting bool                   `json:"must_not_override_existing"`
	AdditionalConstraints   map[string]interface{} `json:"additional_constraints"`
}

// ValidationRequirements 意图执行前需要完成的校验项
type ValidationRequirements struct {
	SchemaValidation      bool            `json:"schema_validation"`
	DuplicateCheck        bool            `json:"duplicate_check"`
	AdditionalValidations map[string]bool `json:"additional_validations"`
}

// IntentionSchema 结构化意图的规范形态
// 描述对领域包YAML的一次变更请求，不代表变更已执行
type IntentionSchema struct {
	IntentID               string                 `json:"intent_id"`
	DomainPackID           string                 `json:"domain_pack_id"`
	TargetSection          TargetSection          `json:"target_section"`
	Operation              Operation              `json:"operation"`
	IntentSummary          string                 `json:"intent_summary"`
	Confidence             float64                `json:"confidence"`
	EntitiesInvolved       []EntityInvolved       `json:"entities_involved"`
	Payload                IntentPayload          `json:"payload"`
	Constraints            IntentConstraints      `json:"constraints"`
	Assumptions            []string               `json:"assumptions"`
	Ambiguities            []string               `json:"ambiguities"`
	Suggestions            []string               `json:"suggestions"`
	ValidationRequirements ValidationRequirements `json:"validation_requirements"`
	ExecutionRisk          ExecutionRisk          `json:"execution_risk"`
}

// FieldError 单条校验错误，Path使用点号/下标定位字段
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (e FieldError) String() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// IntentRequest /intent 端点请求体
type IntentRequest struct {
	DomainPackID string `json:"domain_pack_id" binding:"required"`
	DomainName   string `json:"domain_name" binding:"required"`
	Description  string `json:"description" binding:"required"`
	UserRequest  string `json:"user_request" binding:"required"`
}

// Canonicalize 规整请求内容，去除用户请求首尾空白
func (r *IntentRequest) Canonicalize() {
	r.UserRequest = strings.TrimSpace(r.UserRequest)
}

// Validate 检查请求是否完整
func (r *IntentRequest) Validate() error {
	if strings.TrimSpace(r.UserRequest) == "" {
		return fmt.Errorf("user_request cannot be empty")
	}
	return nil
}

// IntentResponse /intent 端点成功响应
type IntentResponse struct {
	Intent  *IntentionSchema `json:"intent"`
	Message string           `json:"message"`
}

// IntentErrorResponse /intent 端点失败响应（fail-safe，置信度恒为0）
type IntentErrorResponse struct {
	Error      string                 `json:"error"`
	Message    string                 `json:"message"`
	Confidence float64                `json:"confidence"`
	Details    map[string]interface{} `json:"details,omitempty"`
}
