package utility

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NewDocumentID sinh _id mới cho document (uuid v4 dạng chuỗi)
func NewDocumentID() string {
	return uuid.New().String()
}

// IsNullValue kiểm tra giá trị có được coi là null hay không (nil, NaN, chuỗi rỗng)
func IsNullValue(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case primitive.Null, primitive.Undefined:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case float64:
		return math.IsNaN(v)
	case float32:
		return math.IsNaN(float64(v))
	default:
		return false
	}
}

// ParseInt64Cell parse một ô dữ liệu dạng text thành int64.
// Ô rỗng trả về (nil, nil); ô không parse được trả về lỗi.
// Chấp nhận dạng "12.0" và dấu phân cách hàng nghìn ",".
func ParseInt64Cell(cell string) (*int64, error) {
	s := normalizeNumericText(cell)
	if s == "" {
		return nil, nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return &n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || !fitsInt64(f) {
		return nil, fmt.Errorf("không thể convert '%s' sang int64", cell)
	}
	n := int64(f)
	return &n, nil
}

// fitsInt64 kiểm tra f là số nguyên nằm trong khoảng int64 (2^63 không biểu diễn được)
func fitsInt64(f float64) bool {
	return f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64
}

// ParseFloat64Cell parse một ô dữ liệu dạng text thành float64.
// Ô rỗng hoặc "NaN" trả về (nil, nil); ô không parse được trả về lỗi.
func ParseFloat64Cell(cell string) (*float64, error) {
	s := normalizeNumericText(cell)
	if s == "" || strings.EqualFold(s, "nan") {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) {
		return nil, fmt.Errorf("không thể convert '%s' sang float64", cell)
	}
	return &f, nil
}

func normalizeNumericText(cell string) string {
	return strings.ReplaceAll(strings.TrimSpace(cell), ",", "")
}

// ToInt64 convert giá trị đọc từ kho document → int64
func ToInt64(value interface{}) (int64, error) {
	switch v := value.(type) {
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	case int:
		return int64(v), nil
	case float64:
		if !fitsInt64(v) {
			return 0, fmt.Errorf("không thể convert %v sang int64", v)
		}
		return int64(v), nil
	case string:
		n, err := ParseInt64Cell(v)
		if err != nil {
			return 0, err
		}
		if n == nil {
			return 0, fmt.Errorf("chuỗi rỗng không convert được sang int64")
		}
		return *n, nil
	default:
		return 0, fmt.Errorf("không thể convert %T sang int64", value)
	}
}

// ToFloat64 convert giá trị đọc từ kho document → float64
func ToFloat64(value interface{}) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case primitive.Decimal128:
		return strconv.ParseFloat(v.String(), 64)
	case string:
		f, err := ParseFloat64Cell(v)
		if err != nil {
			return 0, err
		}
		if f == nil {
			return 0, fmt.Errorf("chuỗi rỗng không convert được sang float64")
		}
		return *f, nil
	default:
		return 0, fmt.Errorf("không thể convert %T sang float64", value)
	}
}

// ToString convert bất kỳ → string, null → ""
func ToString(value interface{}) string {
	if IsNullValue(value) {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case float64:
		// Số nguyên lưu dạng float (vd: Order ID 6.86800212e+08) giữ dạng số nguyên
		if v == math.Trunc(v) && math.Abs(v) < 1e15 {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", value)
	}
}

// ToTime convert giá trị thời gian đọc từ kho document → *time.Time UTC, null → nil
func ToTime(value interface{}) (*time.Time, error) {
	switch v := value.(type) {
	case nil, primitive.Null:
		return nil, nil
	case time.Time:
		t := v.UTC()
		return &t, nil
	case primitive.DateTime:
		t := v.Time().UTC()
		return &t, nil
	default:
		return nil, fmt.Errorf("không thể convert %T sang time", value)
	}
}
