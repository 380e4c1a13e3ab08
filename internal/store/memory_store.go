package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/domainpack/service/internal/models"
)

// MemoryDocumentStore 内存版本的领域包文档存储实现
// 适用于测试环境或无数据库的小规模部署
type MemoryDocumentStore struct {
	documents map[string]*models.DomainPackDocument
	mutex     sync.RWMutex
}

// NewMemoryDocumentStore 创建内存文档存储实例
func NewMemoryDocumentStore() *MemoryDocumentStore {
	return &MemoryDocumentStore{
		documents: make(map[string]*models.DomainPackDocument),
	}
}

// SaveDocument 保存领域包文档
func (s *MemoryDocumentStore) SaveDocument(ctx context.Context, doc *models.DomainPackDocument) (string, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	// 1. 分配文档ID与上传时间
	id := doc.ID
	if id == "" {
		id = uuid.NewString()
	}
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = time.Now().UTC()
	}

	// 2. 深拷贝后存储，避免调用方后续修改污染存量数据
	docCopy := *doc
	docCopy.ID = id
	docCopy.ParsedYAML = copyMap(doc.ParsedYAML)
	docCopy.Sections = copyMap(doc.Sections)
	s.documents[id] = &docCopy

	logrus.Infof("文档保存成功(内存): id=%s 当前文档总数=%d", id, len(s.documents))
	return id, nil
}

// GetDocument 按ID读取领域包文档
func (s *MemoryDocumentStore) GetDocument(ctx context.Context, id string) (*models.DomainPackDocument, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	doc, exists := s.documents[id]
	if !exists {
		return nil, ErrDocumentNotFound
	}

	docCopy := *doc
	docCopy.ParsedYAML = copyMap(doc.ParsedYAML)
	docCopy.Sections = copyMap(doc.Sections)
	return &docCopy, nil
}

// ListDocuments 按上传时间倒序返回领域包列表项
func (s *MemoryDocumentStore) ListDocuments(ctx context.Context) ([]models.DomainPackListItem, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	items := make([]models.DomainPackListItem, 0, len(s.documents))
	for id, doc := range s.documents {
		items = append(items, models.DomainPackListItem{
			DomainPackID: id,
			DomainName:   doc.Metadata.Name,
			Description:  doc.Metadata.Description,
			UploadedAt:   doc.UploadedAt,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].UploadedAt.After(items[j].UploadedAt)
	})
	return items, nil
}

// Ping 内存存储恒为可用
func (s *MemoryDocumentStore) Ping(ctx context.Context) error {
	return nil
}

// Close 释放资源
func (s *MemoryDocumentStore) Close(ctx context.Context) error {
	return nil
}

// copyMap 浅拷贝顶层键，嵌套值由解析层独占不会被复用修改
func copyMap(src map[string]interface{}) map[string]interface{} {
	if src == nil {
		return nil
	}
	dst := make(map[string]interface{}, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
