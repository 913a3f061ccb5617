package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	_ "modernc.org/sqlite"

	"github.com/LokaPoojithaDondeti/Cassandra/internal/common"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS medallion_collections (
	name       TEXT PRIMARY KEY,
	created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS medallion_documents (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	collection TEXT NOT NULL,
	doc_id     TEXT NOT NULL,
	body       BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS medallion_documents_collection_seq ON medallion_documents (collection, seq);
`

// SQLiteStore là Store trên một file SQLite, document lưu dạng bson blob
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore mở (hoặc tạo) file SQLite tại path và tạo schema nếu chưa có
func OpenSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("%w: sqlite dir: %v", common.ErrConnection, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: sqlite open: %v", common.ErrConnection, err)
	}
	// Một connection để các lệnh tuần tự không tranh khóa file
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: sqlite schema: %v", common.ErrConnection, err)
	}
	return &SQLiteStore{db: db}, nil
}

// ListCollectionNames trả về tên các collection theo thứ tự alphabet
func (s *SQLiteStore) ListCollectionNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM medallion_collections ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to list collections: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *SQLiteStore) hasCollection(ctx context.Context, q interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}, name string) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM medallion_collections WHERE name = ?`, name).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CreateCollection tạo collection mới
func (s *SQLiteStore) CreateCollection(ctx context.Context, name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	exists, err := s.hasCollection(ctx, s.db, name)
	if err != nil {
		return fmt.Errorf("failed to create collection %s: %w", name, err)
	}
	if exists {
		return fmt.Errorf("%w: %s", common.ErrCollectionExists, name)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO medallion_collections (name, created_at) VALUES (?, ?)`,
		name, time.Now().Unix()); err != nil {
		return fmt.Errorf("failed to create collection %s: %w", name, err)
	}
	return nil
}

// Collection trả về handle collection
func (s *SQLiteStore) Collection(name string) Collection {
	return &sqliteCollection{store: s, name: name}
}

// Close đóng file SQLite
func (s *SQLiteStore) Close(ctx context.Context) error {
	return s.db.Close()
}

type sqliteCollection struct {
	store *SQLiteStore
	name  string
}

func (c *sqliteCollection) Name() string {
	return c.name
}

func (c *sqliteCollection) InsertOne(ctx context.Context, doc interface{}) error {
	return c.InsertMany(ctx, []interface{}{doc})
}

// InsertMany ghi cả lô trong một transaction
func (c *sqliteCollection) InsertMany(ctx context.Context, docs []interface{}) error {
	if len(docs) == 0 {
		return nil
	}
	tx, err := c.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", common.ErrInsert, c.name, err)
	}
	defer func() { _ = tx.Rollback() }()

	exists, err := c.store.hasCollection(ctx, tx, c.name)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", common.ErrInsert, c.name, err)
	}
	if !exists {
		return fmt.Errorf("%w: %w: %s", common.ErrInsert, common.ErrCollectionMissing, c.name)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO medallion_documents (collection, doc_id, body) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", common.ErrInsert, c.name, err)
	}
	defer stmt.Close()

	for _, doc := range docs {
		data, err := marshalDocument(c.name, doc)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, c.name, documentID(data), data); err != nil {
			return fmt.Errorf("%w: %s: %w", common.ErrInsert, c.name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %s: %w", common.ErrInsert, c.name, err)
	}
	return nil
}

func (c *sqliteCollection) FindAll(ctx context.Context) ([]bson.M, error) {
	rows, err := c.store.db.QueryContext(ctx,
		`SELECT body FROM medallion_documents WHERE collection = ? ORDER BY seq`, c.name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", common.ErrQuery, c.name, err)
	}
	defer rows.Close()

	var docs []bson.M
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", common.ErrQuery, c.name, err)
		}
		doc, err := unmarshalDocument(c.name, body)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", common.ErrQuery, c.name, err)
	}
	return docs, nil
}
