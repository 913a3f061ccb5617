package docstore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/LokaPoojithaDondeti/Cassandra/internal/common"
)

// mã lỗi NamespaceExists của MongoDB
const mongoErrNamespaceExists = 48

// MongoStore là Store trên một database MongoDB
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoStore tạo Store trên database dbName của client đã kết nối
func NewMongoStore(client *mongo.Client, dbName string) *MongoStore {
	return &MongoStore{
		client: client,
		db:     client.Database(dbName),
	}
}

// ListCollectionNames trả về tên các collection trong database
func (s *MongoStore) ListCollectionNames(ctx context.Context) ([]string, error) {
	names, err := s.db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	return names, nil
}

// CreateCollection tạo collection mới
func (s *MongoStore) CreateCollection(ctx context.Context, name string) error {
	if err := s.db.CreateCollection(ctx, name); err != nil {
		var cmdErr mongo.CommandError
		if errors.As(err, &cmdErr) && cmdErr.Code == mongoErrNamespaceExists {
			return fmt.Errorf("%w: %s", common.ErrCollectionExists, name)
		}
		return fmt.Errorf("failed to create collection %s: %w", name, err)
	}
	return nil
}

// Collection trả về handle collection
func (s *MongoStore) Collection(name string) Collection {
	return &mongoCollection{coll: s.db.Collection(name)}
}

// Close ngắt kết nối client
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

type mongoCollection struct {
	coll *mongo.Collection
}

func (c *mongoCollection) Name() string {
	return c.coll.Name()
}

func (c *mongoCollection) InsertOne(ctx context.Context, doc interface{}) error {
	if _, err := c.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("%w: %s: %w", common.ErrInsert, c.coll.Name(), err)
	}
	return nil
}

func (c *mongoCollection) InsertMany(ctx context.Context, docs []interface{}) error {
	if len(docs) == 0 {
		return nil
	}
	if _, err := c.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true)); err != nil {
		// insert có thứ tự: các document trước document lỗi đã được ghi
		partial := &PartialInsertError{Index: -1, Err: err}
		var bwe mongo.BulkWriteException
		if errors.As(err, &bwe) {
			for _, we := range bwe.WriteErrors {
				if partial.Index < 0 || we.Index < partial.Index {
					partial.Index = we.Index
				}
			}
		}
		return fmt.Errorf("%w: %s: %w", common.ErrInsert, c.coll.Name(), partial)
	}
	return nil
}

func (c *mongoCollection) FindAll(ctx context.Context) ([]bson.M, error) {
	cursor, err := c.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", common.ErrQuery, c.coll.Name(), err)
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", common.ErrQuery, c.coll.Name(), err)
	}
	return docs, nil
}
