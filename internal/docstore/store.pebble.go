package docstore

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"github.com/cockroachdb/pebble"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/LokaPoojithaDondeti/Cassandra/internal/common"
)

// Layout key trong pebble:
//   c\x00<collection>                 → đánh dấu collection tồn tại
//   d\x00<collection>\x00<seq uint64> → document bson, seq tăng dần theo thứ tự ghi
const (
	pebbleCollectionPrefix = "c\x00"
	pebbleDocumentPrefix   = "d\x00"
)

// PebbleStore là Store nhúng trên PebbleDB
type PebbleStore struct {
	db   *pebble.DB
	mu   sync.Mutex
	seqs map[string]uint64
}

// OpenPebbleStore mở (hoặc tạo) PebbleDB tại dir. opts nil dùng cấu hình mặc định.
func OpenPebbleStore(dir string, opts *pebble.Options) (*PebbleStore, error) {
	if opts == nil {
		opts = &pebble.Options{}
	}
	d, err := pebble.Open(filepath.Clean(dir), opts)
	if err != nil {
		return nil, fmt.Errorf("%w: pebble open: %v", common.ErrConnection, err)
	}
	return &PebbleStore{db: d, seqs: make(map[string]uint64)}, nil
}

func collectionKey(name string) []byte {
	return []byte(pebbleCollectionPrefix + name)
}

func documentPrefix(name string) []byte {
	return []byte(pebbleDocumentPrefix + name + "\x00")
}

func documentKey(name string, seq uint64) []byte {
	prefix := documentPrefix(name)
	key := make([]byte, len(prefix)+8)
	copy(key, prefix)
	binary.BigEndian.PutUint64(key[len(prefix):], seq)
	return key
}

// prefixUpperBound trả về key nhỏ nhất lớn hơn mọi key có prefix (prefix kết thúc bằng \x00)
func prefixUpperBound(prefix []byte) []byte {
	upper := append([]byte(nil), prefix...)
	upper[len(upper)-1]++
	return upper
}

// ListCollectionNames trả về tên các collection theo thứ tự alphabet
func (s *PebbleStore) ListCollectionNames(ctx context.Context) ([]string, error) {
	lower := []byte(pebbleCollectionPrefix)
	it, err := s.db.NewIter(&pebble.IterOptions{LowerBound: lower, UpperBound: prefixUpperBound(lower)})
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	defer it.Close()

	var names []string
	for it.First(); it.Valid(); it.Next() {
		names = append(names, string(it.Key()[len(lower):]))
	}
	sort.Strings(names)
	return names, nil
}

func (s *PebbleStore) hasCollection(name string) (bool, error) {
	_, closer, err := s.db.Get(collectionKey(name))
	if errors.Is(err, pebble.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	_ = closer.Close()
	return true, nil
}

// CreateCollection tạo collection mới
func (s *PebbleStore) CreateCollection(ctx context.Context, name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := s.hasCollection(name)
	if err != nil {
		return fmt.Errorf("failed to create collection %s: %w", name, err)
	}
	if exists {
		return fmt.Errorf("%w: %s", common.ErrCollectionExists, name)
	}
	if err := s.db.Set(collectionKey(name), nil, pebble.Sync); err != nil {
		return fmt.Errorf("failed to create collection %s: %w", name, err)
	}
	return nil
}

// Collection trả về handle collection
func (s *PebbleStore) Collection(name string) Collection {
	return &pebbleCollection{store: s, name: name}
}

// Close đóng PebbleDB
func (s *PebbleStore) Close(ctx context.Context) error {
	return s.db.Close()
}

// nextSeqLocked trả về seq kế tiếp của collection, đọc seq cuối từ đĩa ở lần đầu
func (s *PebbleStore) nextSeqLocked(name string) (uint64, error) {
	if seq, ok := s.seqs[name]; ok {
		s.seqs[name] = seq + 1
		return seq + 1, nil
	}

	prefix := documentPrefix(name)
	it, err := s.db.NewIter(&pebble.IterOptions{LowerBound: prefix, UpperBound: prefixUpperBound(prefix)})
	if err != nil {
		return 0, err
	}
	defer it.Close()

	var last uint64
	if it.Last() {
		last = binary.BigEndian.Uint64(it.Key()[len(prefix):])
	}
	s.seqs[name] = last + 1
	return last + 1, nil
}

type pebbleCollection struct {
	store *PebbleStore
	name  string
}

func (c *pebbleCollection) Name() string {
	return c.name
}

func (c *pebbleCollection) InsertOne(ctx context.Context, doc interface{}) error {
	return c.InsertMany(ctx, []interface{}{doc})
}

// InsertMany ghi cả lô trong một pebble batch, lô lỗi thì không document nào được ghi
func (c *pebbleCollection) InsertMany(ctx context.Context, docs []interface{}) error {
	if len(docs) == 0 {
		return nil
	}
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := s.hasCollection(c.name)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", common.ErrInsert, c.name, err)
	}
	if !exists {
		return fmt.Errorf("%w: %w: %s", common.ErrInsert, common.ErrCollectionMissing, c.name)
	}

	batch := s.db.NewBatch()
	defer batch.Close()

	for _, doc := range docs {
		data, err := marshalDocument(c.name, doc)
		if err != nil {
			delete(s.seqs, c.name)
			return err
		}
		seq, err := s.nextSeqLocked(c.name)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", common.ErrInsert, c.name, err)
		}
		if err := batch.Set(documentKey(c.name, seq), data, nil); err != nil {
			delete(s.seqs, c.name)
			return fmt.Errorf("%w: %s: %w", common.ErrInsert, c.name, err)
		}
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		// seq trong bộ nhớ đã tăng, đọc lại từ đĩa ở lần ghi sau
		delete(s.seqs, c.name)
		return fmt.Errorf("%w: %s: %w", common.ErrInsert, c.name, err)
	}
	return nil
}

func (c *pebbleCollection) FindAll(ctx context.Context) ([]bson.M, error) {
	prefix := documentPrefix(c.name)
	it, err := c.store.db.NewIter(&pebble.IterOptions{LowerBound: prefix, UpperBound: prefixUpperBound(prefix)})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", common.ErrQuery, c.name, err)
	}
	defer it.Close()

	var docs []bson.M
	for it.First(); it.Valid(); it.Next() {
		doc, err := unmarshalDocument(c.name, it.Value())
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := it.Error(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", common.ErrQuery, c.name, err)
	}
	return docs, nil
}
