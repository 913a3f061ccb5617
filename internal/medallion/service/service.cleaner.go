package medallionsvc

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/sirupsen/logrus"

	"github.com/LokaPoojithaDondeti/Cassandra/internal/medallion/models"
)

// Cleaner dựng tầng silver từ toàn bộ tầng bronze
type Cleaner struct {
	deps        Deps
	bronze      string
	silver      string
	provisioner *CollectionProvisioner
}

// NewCleaner tạo Cleaner đọc collection bronze và ghi collection silver
func NewCleaner(deps Deps, bronze, silver string) *Cleaner {
	deps = deps.withDefaults()
	return &Cleaner{
		deps:        deps,
		bronze:      bronze,
		silver:      silver,
		provisioner: NewCollectionProvisioner(deps),
	}
}

// CleanData đọc bronze theo thứ tự của kho, khử trùng lặp theo Order ID, điền giá trị mặc định,
// chuẩn hóa Order Date rồi ghi từng bản ghi vào silver với _id mới. Trả về số document đã ghi.
func (s *Cleaner) CleanData(ctx context.Context) (int, error) {
	log := s.deps.Log.WithFields(logrus.Fields{"stage": "clean", "collection": s.silver})

	docs, err := s.deps.Store.Collection(s.bronze).FindAll(ctx)
	if err != nil {
		return 0, err
	}
	records := make([]models.BronzeRecord, 0, len(docs))
	for i, doc := range docs {
		r, err := models.BronzeFromDocument(doc)
		if err != nil {
			return 0, fmt.Errorf("bronze document %d (%v): %w", i, doc["_id"], err)
		}
		records = append(records, r)
	}

	unique := Deduplicate(records)
	dropped := len(records) - len(unique)
	s.deps.Metrics.DuplicatesDropped.Add(float64(dropped))
	log.WithFields(logrus.Fields{"bronze": len(records), "unique": len(unique), "dropped": dropped}).Info("Bronze deduplicated")

	s.provisioner.Ensure(ctx, s.silver)

	writer := newDocumentWriter(s.deps.Store.Collection(s.silver), s.deps.BatchSize, s.deps.Metrics)
	for i, r := range unique {
		silver := FillDefaults(r)
		for column, raw := range r.Invalid {
			log.WithFields(logrus.Fields{"orderId": derefString(r.OrderID), "column": column, "value": raw}).
				Warn("Numeric text coerced to default")
		}
		silver.OrderDate = NormalizeDate(r.OrderDate)
		if r.OrderDate != nil && silver.OrderDate == nil {
			s.deps.Metrics.InvalidDates.Inc()
			log.WithFields(logrus.Fields{"orderId": derefString(r.OrderID), "value": *r.OrderDate}).Debug("Order Date coerced to null")
		}
		silver.ID = s.deps.NewID()

		if err := writer.Write(ctx, silver); err != nil {
			return writer.Written(), fmt.Errorf("silver record %d: %w", i, err)
		}
	}
	if err := writer.Flush(ctx); err != nil {
		return writer.Written(), fmt.Errorf("silver flush: %w", err)
	}

	log.WithField("documents", writer.Written()).Info("Cleaned data written to silver")
	return writer.Written(), nil
}

// Deduplicate giữ bản ghi đầu tiên của mỗi Order ID theo thứ tự đầu vào.
// Các bản ghi không có Order ID được coi là cùng một khóa.
func Deduplicate(records []models.BronzeRecord) []models.BronzeRecord {
	seen := make(map[string]bool, len(records))
	nullSeen := false
	out := make([]models.BronzeRecord, 0, len(records))
	for _, r := range records {
		if r.OrderID == nil {
			if nullSeen {
				continue
			}
			nullSeen = true
		} else {
			if seen[*r.OrderID] {
				continue
			}
			seen[*r.OrderID] = true
		}
		out = append(out, r)
	}
	return out
}

// FillDefaults chuyển bản ghi bronze sang silver, số đo thiếu hoặc là text lỗi nhận mặc định:
// Units Sold → 0, Total Revenue → 0.0, Total Profit → 0.0. Các field khác giữ nguyên.
// Order Date và _id chưa được gán.
func FillDefaults(r models.BronzeRecord) models.SilverRecord {
	out := models.SilverRecord{
		SalesFields: r.SalesFields,
		Extra:       r.Extra,
	}
	if r.UnitsSold != nil {
		out.UnitsSold = *r.UnitsSold
	}
	if r.TotalRevenue != nil {
		out.TotalRevenue = *r.TotalRevenue
	}
	if r.TotalProfit != nil {
		out.TotalProfit = *r.TotalProfit
	}
	return out
}

// NormalizeDate parse ngày dạng text thành thời điểm UTC.
// Giá trị rỗng hoặc không parse được trả về nil, không bao giờ panic.
func NormalizeDate(raw *string) (t *time.Time) {
	if raw == nil {
		return nil
	}
	s := strings.TrimSpace(*raw)
	if s == "" {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			t = nil
		}
	}()

	parsed, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return nil
	}
	parsed = parsed.UTC()
	return &parsed
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
