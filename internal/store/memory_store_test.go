package store

import (
	"context"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/domainpack/service/internal/models"
)

// =============================================================================
// 内存文档存储测试
// =============================================================================

func fakeDocument() *models.DomainPackDocument {
	return &models.DomainPackDocument{
		Filename: gofakeit.Word() + ".yaml",
		RawYAML:  "name: " + gofakeit.Word(),
		ParsedYAML: map[string]interface{}{
			"name": gofakeit.Word(),
		},
		Metadata: models.PackMetadata{
			Name:        gofakeit.Word(),
			Description: gofakeit.Sentence(6),
			Version:     "1.0",
		},
		SectionsCount: 2,
		Sections: map[string]interface{}{
			"entities":  []interface{}{},
			"key_terms": []interface{}{gofakeit.Word()},
		},
	}
}

// TestMemoryStoreSaveAndGet 测试保存与读取
func TestMemoryStoreSaveAndGet(t *testing.T) {
	s := NewMemoryDocumentStore()
	ctx := context.Background()

	doc := fakeDocument()
	id, err := s.SaveDocument(ctx, doc)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	fetched, err := s.GetDocument(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, doc.Filename, fetched.Filename)
	assert.Equal(t, doc.Metadata, fetched.Metadata)
	assert.False(t, fetched.UploadedAt.IsZero())
}

// TestMemoryStoreGetNotFound 测试读取不存在的文档
func TestMemoryStoreGetNotFound(t *testing.T) {
	s := NewMemoryDocumentStore()

	_, err := s.GetDocument(context.Background(), "missing-id")
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

// TestMemoryStoreListOrdering 测试列表按上传时间倒序
func TestMemoryStoreListOrdering(t *testing.T) {
	s := NewMemoryDocumentStore()
	ctx := context.Background()

	now := time.Now().UTC()
	oldest := fakeDocument()
	oldest.UploadedAt = now.Add(-2 * time.Hour)
	middle := fakeDocument()
	middle.UploadedAt = now.Add(-1 * time.Hour)
	newest := fakeDocument()
	newest.UploadedAt = now

	for _, doc := range []*models.DomainPackDocument{middle, oldest, newest} {
		_, err := s.SaveDocument(ctx, doc)
		require.NoError(t, err)
	}

	items, err := s.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, newest.Metadata.Name, items[0].DomainName)
	assert.Equal(t, oldest.Metadata.Name, items[2].DomainName)
}

// TestMemoryStoreIsolation 测试存储内容不受调用方后续修改影响
func TestMemoryStoreIsolation(t *testing.T) {
	s := NewMemoryDocumentStore()
	ctx := context.Background()

	doc := fakeDocument()
	id, err := s.SaveDocument(ctx, doc)
	require.NoError(t, err)

	// 保存后修改原始文档
	doc.ParsedYAML["name"] = "mutated"

	fetched, err := s.GetDocument(ctx, id)
	require.NoError(t, err)
	assert.NotEqual(t, "mutated", fetched.ParsedYAML["name"])
}

// TestMemoryStorePing 测试内存存储恒为可用
func TestMemoryStorePing(t *testing.T) {
	s := NewMemoryDocumentStore()
	assert.NoError(t, s.Ping(context.Background()))
	assert.NoError(t, s.Close(context.Background()))
}
