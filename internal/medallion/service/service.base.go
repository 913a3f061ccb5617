// Package medallionsvc chạy pipeline medallion bronze → silver → gold trên kho document.
// Các tầng chạy tuần tự, mỗi tầng đọc lại toàn bộ tầng trước từ kho, không rollback khi lỗi.
package medallionsvc

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/LokaPoojithaDondeti/Cassandra/internal/docstore"
	"github.com/LokaPoojithaDondeti/Cassandra/internal/logger"
	"github.com/LokaPoojithaDondeti/Cassandra/internal/metrics"
	"github.com/LokaPoojithaDondeti/Cassandra/internal/source"
	"github.com/LokaPoojithaDondeti/Cassandra/internal/utility"
)

// TableReader đọc toàn bộ bảng nguồn theo location
type TableReader interface {
	Read(ctx context.Context, location string) (*source.Table, error)
}

// Collections là tên collection của từng tầng
type Collections struct {
	Bronze         string
	Silver         string
	GoldRegion     string
	GoldCategory   string
	GoldPerformers string
}

// DefaultCollections trả về tên collection mặc định
func DefaultCollections() Collections {
	return Collections{
		Bronze:         "bronze_sales",
		Silver:         "silver_sales",
		GoldRegion:     "gold_sales_by_region",
		GoldCategory:   "gold_sales_by_category",
		GoldPerformers: "gold_top_performers",
	}
}

// Deps là các phụ thuộc dùng chung của các stage
type Deps struct {
	Store     docstore.Store
	Metrics   *metrics.Registry // nil: tạo registry riêng
	Log       *logrus.Logger    // nil: logger "pipeline"
	BatchSize int               // <= 1: insert từng document
	NewID     func() string     // nil: uuid v4
	Now       func() time.Time  // nil: time.Now
}

// withDefaults điền các phụ thuộc còn thiếu
func (d Deps) withDefaults() Deps {
	if d.Metrics == nil {
		d.Metrics = metrics.NewRegistry()
	}
	if d.Log == nil {
		d.Log = logger.GetPipelineLogger()
	}
	if d.BatchSize < 1 {
		d.BatchSize = 1
	}
	if d.NewID == nil {
		d.NewID = utility.NewDocumentID
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}
