package store

import (
	"context"
	"errors"

	"github.com/domainpack/service/internal/models"
)

// =============================================================================
// 文档存储抽象 - 领域包文档的持久化接口
// =============================================================================

// ErrDocumentNotFound 文档不存在
var ErrDocumentNotFound = errors.New("document not found")

// DocumentStore 领域包文档存储接口
type DocumentStore interface {
	// SaveDocument 保存领域包文档，返回生成的文档ID
	SaveDocument(ctx context.Context, doc *models.DomainPackDocument) (string, error)

	// GetDocument 按ID读取领域包文档
	GetDocument(ctx context.Context, id string) (*models.DomainPackDocument, error)

	// ListDocuments 按上传时间倒序返回全部领域包的列表项
	ListDocuments(ctx context.Context) ([]models.DomainPackListItem, error)

	// Ping 检查存储连通性
	Ping(ctx context.Context) error

	// Close 释放存储资源
	Close(ctx context.Context) error
}
