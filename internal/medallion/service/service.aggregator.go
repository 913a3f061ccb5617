package medallionsvc

import (
	"context"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/LokaPoojithaDondeti/Cassandra/internal/common"
	"github.com/LokaPoojithaDondeti/Cassandra/internal/medallion/models"
	"github.com/LokaPoojithaDondeti/Cassandra/internal/utility"
)

// GoldTarget gắn một view tổng hợp với collection gold của nó
type GoldTarget struct {
	View       models.ViewSpec
	Collection string
}

// DefaultGoldTargets trả về 3 view mặc định gắn với tên collection trong cs
func DefaultGoldTargets(cs Collections) []GoldTarget {
	views := models.DefaultViews()
	return []GoldTarget{
		{View: views[0], Collection: cs.GoldRegion},
		{View: views[1], Collection: cs.GoldCategory},
		{View: views[2], Collection: cs.GoldPerformers},
	}
}

// Aggregator dựng các view tầng gold từ toàn bộ tầng silver
type Aggregator struct {
	deps        Deps
	silver      string
	targets     []GoldTarget
	provisioner *CollectionProvisioner
}

// NewAggregator tạo Aggregator đọc collection silver và ghi từng view vào collection của nó
func NewAggregator(deps Deps, silver string, targets []GoldTarget) *Aggregator {
	deps = deps.withDefaults()
	return &Aggregator{
		deps:        deps,
		silver:      silver,
		targets:     targets,
		provisioner: NewCollectionProvisioner(deps),
	}
}

// AggregateData đọc silver, tính từng view rồi ghi vào collection gold tương ứng.
// Các view độc lập với nhau; lỗi ở một view dừng cả stage. Trả về số document gold đã ghi.
func (s *Aggregator) AggregateData(ctx context.Context) (int, error) {
	docs, err := s.deps.Store.Collection(s.silver).FindAll(ctx)
	if err != nil {
		return 0, err
	}
	records := make([]models.SilverRecord, 0, len(docs))
	for i, doc := range docs {
		r, err := models.SilverFromDocument(doc)
		if err != nil {
			return 0, fmt.Errorf("silver document %d (%v): %w", i, doc["_id"], err)
		}
		records = append(records, r)
	}
	s.deps.Log.WithFields(logrus.Fields{"stage": "aggregate", "silver": len(records)}).Info("Silver loaded")

	// Tính xong mọi view trước khi ghi để lỗi mapping không để lại gold dở dang
	results := make([][]models.GoldAggregateRow, len(s.targets))
	for i, target := range s.targets {
		rows, err := Aggregate(records, target.View)
		if err != nil {
			return 0, fmt.Errorf("view %s: %w", target.View.Name, err)
		}
		results[i] = rows
	}

	total := 0
	for i, target := range s.targets {
		s.provisioner.Ensure(ctx, target.Collection)

		writer := newDocumentWriter(s.deps.Store.Collection(target.Collection), s.deps.BatchSize, s.deps.Metrics)
		for j, row := range results[i] {
			row.ID = s.deps.NewID()
			if err := writer.Write(ctx, row.ToDocument()); err != nil {
				return total + writer.Written(), fmt.Errorf("view %s row %d: %w", target.View.Name, j, err)
			}
		}
		if err := writer.Flush(ctx); err != nil {
			return total + writer.Written(), fmt.Errorf("view %s flush: %w", target.View.Name, err)
		}
		total += writer.Written()

		s.deps.Log.WithFields(logrus.Fields{
			"stage":      "aggregate",
			"view":       target.View.Name,
			"collection": target.Collection,
			"documents":  writer.Written(),
		}).Info("Gold view written")
	}
	return total, nil
}

// measureSum cộng dồn số đo, giữ kiểu int64 khi mọi giá trị là số nguyên
type measureSum struct {
	isFloat bool
	i       int64
	f       float64
}

func (m *measureSum) add(value interface{}) error {
	if utility.IsNullValue(value) {
		return nil
	}
	switch v := value.(type) {
	case int64, int32, int:
		n, _ := utility.ToInt64(v)
		sum := m.i + n
		if (n > 0 && sum < m.i) || (n < 0 && sum > m.i) {
			// tràn int64 thì chuyển sang float64
			m.isFloat = true
		}
		m.i = sum
		m.f += float64(n)
		return nil
	}
	f, err := utility.ToFloat64(value)
	if err != nil {
		return err
	}
	m.isFloat = true
	m.f += f
	return nil
}

func (m *measureSum) value() interface{} {
	if m.isFloat {
		return m.f
	}
	return m.i
}

// Aggregate nhóm records theo view.GroupField và cộng view.SourceField.
// Bản ghi không có field nhóm hoặc field nguồn trả về common.ErrFieldMismatch.
// Khóa nhóm rỗng/null gộp thành một nhóm null. Các nhóm giữ thứ tự gặp lần đầu;
// khi view.Limit > 0 chỉ giữ Limit nhóm có tổng lớn nhất, bằng nhau thì nhóm gặp trước đứng trước.
func Aggregate(records []models.SilverRecord, view models.ViewSpec) ([]models.GoldAggregateRow, error) {
	type group struct {
		key *string
		sum measureSum
	}
	var groups []*group
	index := make(map[string]*group)
	var nullGroup *group

	for i, r := range records {
		groupValue, ok := r.Field(view.GroupField)
		if !ok {
			return nil, fmt.Errorf("%w: record %d has no group field %q", common.ErrFieldMismatch, i, view.GroupField)
		}
		sourceValue, ok := r.Field(view.SourceField)
		if !ok {
			return nil, fmt.Errorf("%w: record %d has no source field %q", common.ErrFieldMismatch, i, view.SourceField)
		}

		var g *group
		if utility.IsNullValue(groupValue) {
			if nullGroup == nil {
				nullGroup = &group{}
				groups = append(groups, nullGroup)
			}
			g = nullGroup
		} else {
			key := utility.ToString(groupValue)
			if g = index[key]; g == nil {
				g = &group{key: &key}
				index[key] = g
				groups = append(groups, g)
			}
		}

		if err := g.sum.add(sourceValue); err != nil {
			return nil, fmt.Errorf("%w: record %d field %q: %v", common.ErrDecode, i, view.SourceField, err)
		}
	}

	rows := make([]models.GoldAggregateRow, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, models.GoldAggregateRow{
			View:         view.Name,
			GroupField:   view.GroupField,
			GroupKey:     g.key,
			MeasureField: view.MeasureField,
			Measure:      g.sum.value(),
		})
	}

	if view.Limit > 0 {
		sort.SliceStable(rows, func(a, b int) bool {
			return rows[a].MeasureValue() > rows[b].MeasureValue()
		})
		if len(rows) > view.Limit {
			rows = rows[:view.Limit]
		}
	}
	return rows, nil
}
