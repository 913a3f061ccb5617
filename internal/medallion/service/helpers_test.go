package medallionsvc

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/LokaPoojithaDondeti/Cassandra/internal/docstore"
	"github.com/LokaPoojithaDondeti/Cassandra/internal/metrics"
	"github.com/LokaPoojithaDondeti/Cassandra/internal/source"
)

// tableReader trả về bảng dựng sẵn
type tableReader struct {
	table *source.Table
	err   error
	calls int
}

func (r *tableReader) Read(ctx context.Context, location string) (*source.Table, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return r.table, nil
}

var salesHeader = []string{"Region", "Country", "Item Type", "Order ID", "Order Date", "Units Sold", "Total Revenue", "Total Profit"}

func tableWith(header []string, rows [][]string) *source.Table {
	return source.NewTable(header, rows)
}

func salesTable(rows ...[]string) *tableReader {
	return &tableReader{table: source.NewTable(salesHeader, rows)}
}

// flakyStore bọc MemoryStore, cho phép làm lỗi list collection hoặc insert
type flakyStore struct {
	*docstore.MemoryStore
	listErr error
	// failAfter[collection] = số document ghi thành công trước khi insert lỗi
	failAfter map[string]int
	inserted  map[string]int
	creates   int
}

func newFlakyStore() *flakyStore {
	return &flakyStore{
		MemoryStore: docstore.NewMemoryStore(),
		failAfter:   make(map[string]int),
		inserted:    make(map[string]int),
	}
}

func (s *flakyStore) ListCollectionNames(ctx context.Context) ([]string, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.MemoryStore.ListCollectionNames(ctx)
}

func (s *flakyStore) CreateCollection(ctx context.Context, name string) error {
	s.creates++
	return s.MemoryStore.CreateCollection(ctx, name)
}

func (s *flakyStore) Collection(name string) docstore.Collection {
	return &flakyCollection{Collection: s.MemoryStore.Collection(name), store: s}
}

type flakyCollection struct {
	docstore.Collection
	store *flakyStore
}

var errDiskFull = errors.New("disk full")

func (c *flakyCollection) InsertOne(ctx context.Context, doc interface{}) error {
	limit, ok := c.store.failAfter[c.Name()]
	if ok && c.store.inserted[c.Name()] >= limit {
		return fmt.Errorf("insert into %s: %w", c.Name(), errDiskFull)
	}
	if err := c.Collection.InsertOne(ctx, doc); err != nil {
		return err
	}
	c.store.inserted[c.Name()]++
	return nil
}

// InsertMany nguyên tử: lô vượt giới hạn bị từ chối toàn bộ
func (c *flakyCollection) InsertMany(ctx context.Context, docs []interface{}) error {
	limit, ok := c.store.failAfter[c.Name()]
	if ok && c.store.inserted[c.Name()]+len(docs) > limit {
		return fmt.Errorf("insert batch into %s: %w", c.Name(), errDiskFull)
	}
	if err := c.Collection.InsertMany(ctx, docs); err != nil {
		return err
	}
	c.store.inserted[c.Name()] += len(docs)
	return nil
}

// testDeps tạo Deps với id tuần tự, thời gian cố định và logger ghi vào hook
func testDeps(t *testing.T, store docstore.Store) (Deps, *logrustest.Hook) {
	t.Helper()
	log, hook := logrustest.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	seq := 0
	return Deps{
		Store:   store,
		Metrics: metrics.NewRegistry(),
		Log:     log,
		NewID: func() string {
			seq++
			return fmt.Sprintf("id-%03d", seq)
		},
		Now: func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) },
	}, hook
}

func findAll(t *testing.T, store docstore.Store, name string) []bson.M {
	t.Helper()
	docs, err := store.Collection(name).FindAll(context.Background())
	if err != nil {
		t.Fatalf("FindAll(%s) lỗi: %v", name, err)
	}
	return docs
}

func strPtr(s string) *string { return &s }

func int64Ptr(n int64) *int64 { return &n }

func float64Ptr(f float64) *float64 { return &f }
