package store

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/domainpack/service/internal/models"
)

// MongoDocumentStore MongoDB版本的领域包文档存储实现
type MongoDocumentStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// mongoDocument MongoDB侧的文档形态，_id使用ObjectID
type mongoDocument struct {
	ID            bson.ObjectID          `bson:"_id,omitempty"`
	Filename      string                 `bson:"filename"`
	RawYAML       string                 `bson:"raw_yaml"`
	ParsedYAML    map[string]interface{} `bson:"parsed_yaml"`
	Metadata      models.PackMetadata    `bson:"metadata"`
	SectionsCount int                    `bson:"sections_count"`
	Sections      map[string]interface{} `bson:"sections"`
	UploadedAt    time.Time              `bson:"uploaded_at"`
}

// NewMongoDocumentStore 连接MongoDB并创建文档存储实例
// 连接后立即Ping确认可达，失败时由调用方决定回退策略
func NewMongoDocumentStore(ctx context.Context, uri, database, collection string) (*MongoDocumentStore, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri).SetServerSelectionTimeout(5 * time.Second))
	if err != nil {
		return nil, fmt.Errorf("failed to create mongodb client: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	logrus.Infof("MongoDB连接成功: database=%s collection=%s", database, collection)
	return &MongoDocumentStore{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

// SaveDocument 保存领域包文档，返回生成的文档ID
func (s *MongoDocumentStore) SaveDocument(ctx context.Context, doc *models.DomainPackDocument) (string, error) {
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = time.Now().UTC()
	}

	record := mongoDocument{
		Filename:      doc.Filename,
		RawYAML:       doc.RawYAML,
		ParsedYAML:    doc.ParsedYAML,
		Metadata:      doc.Metadata,
		SectionsCount: doc.SectionsCount,
		Sections:      doc.Sections,
		UploadedAt:    doc.UploadedAt,
	}

	result, err := s.collection.InsertOne(ctx, record)
	if err != nil {
		return "", fmt.Errorf("failed to insert document: %w", err)
	}

	oid, ok := result.InsertedID.(bson.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type: %T", result.InsertedID)
	}

	logrus.Infof("文档保存成功(MongoDB): id=%s", oid.Hex())
	return oid.Hex(), nil
}

// GetDocument 按ID读取领域包文档
func (s *MongoDocumentStore) GetDocument(ctx context.Context, id string) (*models.DomainPackDocument, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid document id %q: %w", id, err)
	}

	var record mongoDocument
	if err := s.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&record); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to fetch document: %w", err)
	}

	return &models.DomainPackDocument{
		ID:            record.ID.Hex(),
		Filename:      record.Filename,
		RawYAML:       record.RawYAML,
		ParsedYAML:    record.ParsedYAML,
		Metadata:      record.Metadata,
		SectionsCount: record.SectionsCount,
		Sections:      record.Sections,
		UploadedAt:    record.UploadedAt,
	}, nil
}

// ListDocuments 按上传时间倒序返回领域包列表项
// 只投影列表所需字段，避免拉取完整的解析结果
func (s *MongoDocumentStore) ListDocuments(ctx context.Context) ([]models.DomainPackListItem, error) {
	opts := options.Find().
		SetProjection(bson.M{"metadata": 1, "uploaded_at": 1}).
		SetSort(bson.D{{Key: "uploaded_at", Value: -1}})

	cursor, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer cursor.Close(ctx)

	var records []mongoDocument
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode documents: %w", err)
	}

	items := make([]models.DomainPackListItem, 0, len(records))
	for _, record := range records {
		items = append(items, models.DomainPackListItem{
			DomainPackID: record.ID.Hex(),
			DomainName:   record.Metadata.Name,
			Description:  record.Metadata.Description,
			UploadedAt:   record.UploadedAt,
		})
	}
	return items, nil
}

// Ping 检查MongoDB连通性
func (s *MongoDocumentStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close 断开MongoDB连接
func (s *MongoDocumentStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
