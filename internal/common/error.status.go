package common

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrorCode định nghĩa mã lỗi chi tiết
type ErrorCode struct {
	Code        string // Mã lỗi (ví dụ: SRC_001)
	Category    string // Phân loại lỗi (ví dụ: Source)
	SubCategory string // Phân loại con (ví dụ: Read)
	Description string // Mô tả chi tiết
}

// Định nghĩa các mã lỗi theo hệ thống phân cấp
var (
	// Configuration Errors (CFG_xxx)
	ErrCodeConfig = ErrorCode{
		Code:        "CFG_001",
		Category:    "Configuration",
		SubCategory: "Load",
		Description: "Lỗi đọc hoặc kiểm tra cấu hình",
	}

	// Source Errors (SRC_xxx)
	ErrCodeSourceRead = ErrorCode{
		Code:        "SRC_001",
		Category:    "Source",
		SubCategory: "Read",
		Description: "Lỗi đọc dữ liệu nguồn",
	}

	ErrCodeSourceFormat = ErrorCode{
		Code:        "SRC_002",
		Category:    "Source",
		SubCategory: "Format",
		Description: "Dữ liệu nguồn sai định dạng",
	}

	// Database Errors (DB_xxx)
	ErrCodeDatabaseConnection = ErrorCode{
		Code:        "DB_001",
		Category:    "Database",
		SubCategory: "Connection",
		Description: "Lỗi kết nối kho dữ liệu",
	}

	ErrCodeDatabaseProvision = ErrorCode{
		Code:        "DB_002",
		Category:    "Database",
		SubCategory: "Provision",
		Description: "Lỗi kiểm tra hoặc tạo collection",
	}

	ErrCodeDatabaseWrite = ErrorCode{
		Code:        "DB_003",
		Category:    "Database",
		SubCategory: "Write",
		Description: "Lỗi ghi document",
	}

	ErrCodeDatabaseQuery = ErrorCode{
		Code:        "DB_004",
		Category:    "Database",
		SubCategory: "Query",
		Description: "Lỗi đọc document",
	}

	// Pipeline Errors (PIPE_xxx)
	ErrCodePipelineDecode = ErrorCode{
		Code:        "PIPE_001",
		Category:    "Pipeline",
		SubCategory: "Decode",
		Description: "Document không chuyển được sang bản ghi của tầng",
	}

	ErrCodePipelineMapping = ErrorCode{
		Code:        "PIPE_002",
		Category:    "Pipeline",
		SubCategory: "Mapping",
		Description: "Tên trường giữa các tầng không khớp",
	}
)

// Error định nghĩa cấu trúc lỗi chi tiết
type Error struct {
	Code    ErrorCode // Mã lỗi chi tiết
	Message string    // Thông báo lỗi
	Details any       // Thông tin chi tiết thêm về lỗi
}

// Error trả về message của lỗi
func (e *Error) Error() string {
	return e.Message
}

// Is kiểm tra xem error có phải là target error không (hỗ trợ errors.Is)
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code.Code == t.Code.Code && e.Message == t.Message
}

// NewError tạo một error mới với đầy đủ thông tin
func NewError(code ErrorCode, message string, details any) error {
	return &Error{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// Các lỗi dùng chung, bọc bằng fmt.Errorf("%w: ...") để giữ ngữ cảnh
var (
	ErrConfig = NewError(ErrCodeConfig, "invalid configuration", nil)

	ErrSourceRead   = NewError(ErrCodeSourceRead, "source read failed", nil)
	ErrSourceFormat = NewError(ErrCodeSourceFormat, "source format invalid", nil)

	ErrConnection        = NewError(ErrCodeDatabaseConnection, "store connection failed", nil)
	ErrProvisioning      = NewError(ErrCodeDatabaseProvision, "collection provisioning failed", nil)
	ErrCollectionExists  = NewError(ErrCodeDatabaseProvision, "collection already exists", nil)
	ErrCollectionMissing = NewError(ErrCodeDatabaseProvision, "collection does not exist", nil)
	ErrInsert            = NewError(ErrCodeDatabaseWrite, "document insert failed", nil)
	ErrQuery             = NewError(ErrCodeDatabaseQuery, "document scan failed", nil)

	ErrDecode        = NewError(ErrCodePipelineDecode, "document decode failed", nil)
	ErrFieldMismatch = NewError(ErrCodePipelineMapping, "field mapping mismatch", nil)
)

// IsTransient phân loại lỗi có thể là tạm thời (mạng, timeout).
// Chỉ dùng để ghi log, pipeline không retry.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return mongo.IsNetworkError(err) || mongo.IsTimeout(err)
}

// CodeOf trả về mã lỗi của error đầu tiên thuộc taxonomy trong chuỗi wrap, rỗng nếu không có
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code.Code
	}
	return ""
}
