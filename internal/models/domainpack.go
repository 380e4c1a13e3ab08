package models

import "time"

// =============================================================================
// 领域包文档模型 - 对应 /upload /validate /domain_pack_list 端点
// =============================================================================

// SectionKeys 领域包YAML中除元数据外的全部章节键
var SectionKeys = []string{
	"entities", "key_terms", "entity_aliases", "extraction_patterns",
	"business_context", "relationship_types", "relationships",
	"business_patterns", "reasoning_templates", "multihop_questions",
	"question_templates", "business_rules", "validation_rules",
}

// PackMetadata 领域包元数据，三个字段均为必填
type PackMetadata struct {
	Name        string `json:"name" bson:"name"`
	Description string `json:"description" bson:"description"`
	Version     string `json:"version" bson:"version"`
}

// DomainPackDocument 持久化的领域包文档
type DomainPackDocument struct {
	ID            string                 `json:"document_id" bson:"_id,omitempty"`
	Filename      string                 `json:"filename" bson:"filename"`
	RawYAML       string                 `json:"raw_yaml" bson:"raw_yaml"`
	ParsedYAML    map[string]interface{} `json:"parsed_yaml" bson:"parsed_yaml"`
	Metadata      PackMetadata           `json:"metadata" bson:"metadata"`
	SectionsCount int                    `json:"sections_count" bson:"sections_count"`
	Sections      map[string]interface{} `json:"sections" bson:"sections"`
	UploadedAt    time.Time              `json:"uploaded_at" bson:"uploaded_at"`
}

// DomainPackListItem 领域包列表项
type DomainPackListItem struct {
	DomainPackID string    `json:"domain_pack_id"`
	DomainName   string    `json:"domain_name"`
	Description  string    `json:"description"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// DomainPackListResponse /domain_pack_list 端点响应
type DomainPackListResponse struct {
	TotalCount  int                  `json:"total_count"`
	DomainPacks []DomainPackListItem `json:"domain_packs"`
}

// ValidationResult /validate 端点响应
// errors为结构性违规，warnings为不阻塞的问题
type ValidationResult struct {
	IsValid  bool     `json:"is_valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// UploadResponse /upload 端点响应
type UploadResponse struct {
	DocumentID    string       `json:"document_id"`
	Filename      string       `json:"filename"`
	Metadata      PackMetadata `json:"metadata"`
	SectionsCount int          `json:"sections_count"`
	Message       string       `json:"message"`
}
