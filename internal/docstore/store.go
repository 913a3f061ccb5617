// Package docstore định nghĩa kho document theo collection mà pipeline ghi từng tầng vào.
// Có 4 driver: mongo (mặc định), pebble, sqlite và memory. Các driver không phải mongo
// lưu document ở dạng bson nên kiểu dữ liệu đọc lại giống hệt khi đọc từ mongo.
package docstore

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/LokaPoojithaDondeti/Cassandra/internal/common"
)

// Store là kho document gồm nhiều collection có tên
type Store interface {
	// ListCollectionNames trả về tên tất cả collection đang có
	ListCollectionNames(ctx context.Context) ([]string, error)
	// CreateCollection tạo collection mới; trùng tên trả về common.ErrCollectionExists
	CreateCollection(ctx context.Context, name string) error
	// Collection trả về handle của collection, không kiểm tra tồn tại
	Collection(name string) Collection
	// Close giải phóng kết nối
	Close(ctx context.Context) error
}

// Collection là handle của một collection
type Collection interface {
	Name() string
	// InsertOne ghi một document (struct có tag bson, bson.M hoặc bson.D)
	InsertOne(ctx context.Context, doc interface{}) error
	// InsertMany ghi nhiều document theo thứ tự; lỗi thì hoặc cả lô không được ghi,
	// hoặc trả về *PartialInsertError cho biết phần đầu lô đã ghi
	InsertMany(ctx context.Context, docs []interface{}) error
	// FindAll đọc toàn bộ document theo thứ tự lưu trữ
	FindAll(ctx context.Context) ([]bson.M, error)
}

// PartialInsertError báo InsertMany có thứ tự đã dừng giữa chừng.
// Index là vị trí document lỗi đầu tiên, các document trước đó đã được ghi; -1 là không xác định.
// Driver ghi cả lô nguyên tử (pebble, sqlite, memory) không trả về lỗi này.
type PartialInsertError struct {
	Index int
	Err   error
}

func (e *PartialInsertError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("ordered insert stopped at unknown position: %v", e.Err)
	}
	return fmt.Sprintf("ordered insert stopped at document %d: %v", e.Index, e.Err)
}

func (e *PartialInsertError) Unwrap() error {
	return e.Err
}

// validateName kiểm tra tên collection dùng được làm key cho các driver nhúng
func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty collection name", common.ErrProvisioning)
	}
	if strings.ContainsRune(name, 0) {
		return fmt.Errorf("%w: collection name contains NUL", common.ErrProvisioning)
	}
	return nil
}

// marshalDocument chuyển document sang bson, lỗi được gắn vào ErrInsert
func marshalDocument(collection string, doc interface{}) ([]byte, error) {
	data, err := bson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal document for %s: %v", common.ErrInsert, collection, err)
	}
	return data, nil
}

// unmarshalDocument giải mã bson thành bson.M
func unmarshalDocument(collection string, data []byte) (bson.M, error) {
	var doc bson.M
	if err := bson.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: unmarshal document from %s: %v", common.ErrQuery, collection, err)
	}
	return doc, nil
}

// documentID lấy _id dạng chuỗi của document đã marshal, rỗng nếu không có
func documentID(data []byte) string {
	v, err := bson.Raw(data).LookupErr("_id")
	if err != nil {
		return ""
	}
	if s, ok := v.StringValueOK(); ok {
		return s
	}
	return v.String()
}
