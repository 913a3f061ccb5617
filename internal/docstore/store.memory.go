package docstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/LokaPoojithaDondeti/Cassandra/internal/common"
)

// MemoryStore là Store trong bộ nhớ process, dùng cho chạy thử và test
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string][][]byte
}

// NewMemoryStore tạo MemoryStore rỗng
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string][][]byte)}
}

// ListCollectionNames trả về tên các collection theo thứ tự alphabet
func (s *MemoryStore) ListCollectionNames(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.collections))
	for name := range s.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// CreateCollection tạo collection mới
func (s *MemoryStore) CreateCollection(ctx context.Context, name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[name]; ok {
		return fmt.Errorf("%w: %s", common.ErrCollectionExists, name)
	}
	s.collections[name] = nil
	return nil
}

// Collection trả về handle collection
func (s *MemoryStore) Collection(name string) Collection {
	return &memoryCollection{store: s, name: name}
}

// Close không làm gì
func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}

// Count trả về số document trong collection, -1 nếu collection không tồn tại
func (s *MemoryStore) Count(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs, ok := s.collections[name]
	if !ok {
		return -1
	}
	return len(docs)
}

type memoryCollection struct {
	store *MemoryStore
	name  string
}

func (c *memoryCollection) Name() string {
	return c.name
}

func (c *memoryCollection) InsertOne(ctx context.Context, doc interface{}) error {
	return c.InsertMany(ctx, []interface{}{doc})
}

func (c *memoryCollection) InsertMany(ctx context.Context, docs []interface{}) error {
	encoded := make([][]byte, 0, len(docs))
	for _, doc := range docs {
		data, err := marshalDocument(c.name, doc)
		if err != nil {
			return err
		}
		encoded = append(encoded, data)
	}

	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.collections[c.name]
	if !ok {
		return fmt.Errorf("%w: %w: %s", common.ErrInsert, common.ErrCollectionMissing, c.name)
	}
	s.collections[c.name] = append(existing, encoded...)
	return nil
}

func (c *memoryCollection) FindAll(ctx context.Context) ([]bson.M, error) {
	c.store.mu.RLock()
	// collection chưa tồn tại đọc ra rỗng, giống mongo
	raw := append([][]byte(nil), c.store.collections[c.name]...)
	c.store.mu.RUnlock()

	docs := make([]bson.M, 0, len(raw))
	for _, data := range raw {
		doc, err := unmarshalDocument(c.name, data)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
