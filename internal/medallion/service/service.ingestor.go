package medallionsvc

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/LokaPoojithaDondeti/Cassandra/internal/common"
	"github.com/LokaPoojithaDondeti/Cassandra/internal/medallion/models"
)

// Ingestor nạp bảng nguồn vào tầng bronze, mỗi dòng một document với _id mới
type Ingestor struct {
	deps        Deps
	reader      TableReader
	location    string
	collection  string
	provisioner *CollectionProvisioner
}

// NewIngestor tạo Ingestor đọc từ location và ghi vào collection
func NewIngestor(deps Deps, reader TableReader, location, collection string) *Ingestor {
	deps = deps.withDefaults()
	return &Ingestor{
		deps:        deps,
		reader:      reader,
		location:    location,
		collection:  collection,
		provisioner: NewCollectionProvisioner(deps),
	}
}

// LoadRawData đọc toàn bộ nguồn rồi ghi từng dòng vào bronze theo thứ tự.
// Lỗi đọc nguồn hoặc lỗi insert dừng stage, các document đã ghi vẫn giữ nguyên.
// Trả về số document đã ghi.
func (s *Ingestor) LoadRawData(ctx context.Context) (int, error) {
	log := s.deps.Log.WithFields(logrus.Fields{"stage": "ingest", "collection": s.collection})

	table, err := s.reader.Read(ctx, s.location)
	if err != nil {
		if !errors.Is(err, common.ErrSourceRead) && !errors.Is(err, common.ErrSourceFormat) {
			err = fmt.Errorf("%w: %w", common.ErrSourceRead, err)
		}
		return 0, err
	}
	s.deps.Metrics.RowsRead.Add(float64(table.Len()))
	log.WithFields(logrus.Fields{"rows": table.Len(), "columns": len(table.Header)}).Info("Source table loaded")

	s.provisioner.Ensure(ctx, s.collection)

	writer := newDocumentWriter(s.deps.Store.Collection(s.collection), s.deps.BatchSize, s.deps.Metrics)
	ingestedAt := s.deps.Now()
	for i := 0; i < table.Len(); i++ {
		row := i
		record, warnings := models.NewBronzeRecord(s.deps.NewID(), int64(row+1), ingestedAt, table.Header,
			func(column string) (string, bool) { return table.Value(row, column) })

		for _, w := range warnings {
			s.deps.Metrics.InvalidNumerics.Inc()
			log.WithFields(logrus.Fields{
				"row":    row + 1,
				"column": w.Column,
				"value":  w.Value,
			}).Warn("Numeric cell is not a number, kept as raw text")
		}

		if err := writer.Write(ctx, record); err != nil {
			return writer.Written(), fmt.Errorf("bronze row %d: %w", row+1, err)
		}
	}
	if err := writer.Flush(ctx); err != nil {
		return writer.Written(), fmt.Errorf("bronze flush: %w", err)
	}

	log.WithField("documents", writer.Written()).Info("Raw data loaded into bronze")
	return writer.Written(), nil
}
