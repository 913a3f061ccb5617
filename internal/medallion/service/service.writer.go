package medallionsvc

import (
	"context"
	"errors"

	"github.com/LokaPoojithaDondeti/Cassandra/internal/docstore"
	"github.com/LokaPoojithaDondeti/Cassandra/internal/metrics"
)

// documentWriter ghi document theo thứ tự vào một collection.
// Lỗi đầu tiên dừng việc ghi, các document trước đó vẫn được giữ.
type documentWriter struct {
	coll      docstore.Collection
	batchSize int
	metrics   *metrics.Registry

	pending []interface{}
	written int
}

func newDocumentWriter(coll docstore.Collection, batchSize int, m *metrics.Registry) *documentWriter {
	return &documentWriter{coll: coll, batchSize: batchSize, metrics: m}
}

// Write ghi một document, hoặc đưa vào lô khi batchSize > 1
func (w *documentWriter) Write(ctx context.Context, doc interface{}) error {
	if w.batchSize <= 1 {
		return w.insertOne(ctx, doc)
	}
	w.pending = append(w.pending, doc)
	if len(w.pending) >= w.batchSize {
		return w.Flush(ctx)
	}
	return nil
}

// Flush ghi phần lô còn lại
func (w *documentWriter) Flush(ctx context.Context) error {
	if len(w.pending) == 0 {
		return nil
	}
	batch := w.pending
	w.pending = nil

	err := w.coll.InsertMany(ctx, batch)
	if err == nil {
		w.count(len(batch))
		return nil
	}

	var partial *docstore.PartialInsertError
	if errors.As(err, &partial) {
		// phần đầu lô đã ghi, document lỗi là lỗi của stage
		if partial.Index > 0 {
			w.count(partial.Index)
		}
		return err
	}

	// Cả lô không được ghi: ghi lại từng document để dừng đúng ở document lỗi
	for _, doc := range batch {
		if err := w.insertOne(ctx, doc); err != nil {
			return err
		}
	}
	return nil
}

// Written trả về số document đã ghi thành công
func (w *documentWriter) Written() int {
	return w.written
}

func (w *documentWriter) insertOne(ctx context.Context, doc interface{}) error {
	if err := w.coll.InsertOne(ctx, doc); err != nil {
		return err
	}
	w.count(1)
	return nil
}

func (w *documentWriter) count(n int) {
	w.written += n
	w.metrics.DocumentsInserted.WithLabelValues(w.coll.Name()).Add(float64(n))
}
