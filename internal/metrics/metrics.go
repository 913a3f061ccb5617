// Package metrics gom các chỉ số của một lần chạy pipeline vào prometheus registry riêng.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry chứa các metric của pipeline
type Registry struct {
	reg *prometheus.Registry

	RowsRead           prometheus.Counter
	DocumentsInserted  *prometheus.CounterVec // label: collection
	ProvisionFailures  *prometheus.CounterVec // label: collection
	DuplicatesDropped  prometheus.Counter
	InvalidDates       prometheus.Counter
	InvalidNumerics    prometheus.Counter
	StageDurationSec   *prometheus.HistogramVec // label: stage
	StageFailures      *prometheus.CounterVec   // label: stage
	LastRunSuccessUnix prometheus.Gauge
}

// NewRegistry tạo registry và đăng ký toàn bộ metric
func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	rowsRead := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "medallion_source_rows_read_total",
		Help: "Rows read from the tabular source.",
	})
	inserted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "medallion_documents_inserted_total",
		Help: "Documents inserted per collection.",
	}, []string{"collection"})
	provisionFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "medallion_provision_failures_total",
		Help: "Collection provisioning errors that were logged and swallowed.",
	}, []string{"collection"})
	duplicates := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "medallion_silver_duplicates_dropped_total",
		Help: "Bronze records dropped by Order ID deduplication.",
	})
	invalidDates := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "medallion_silver_invalid_dates_total",
		Help: "Order Date values coerced to null.",
	})
	invalidNumerics := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "medallion_bronze_invalid_numerics_total",
		Help: "Numeric source cells that could not be parsed and were stored as null.",
	})
	stageDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "medallion_stage_duration_seconds",
		Help:    "Wall time of each pipeline stage.",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})
	stageFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "medallion_stage_failures_total",
		Help: "Pipeline stages that aborted with an error.",
	}, []string{"stage"})
	lastSuccess := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "medallion_last_run_success_timestamp_seconds",
		Help: "Unix time of the last run that completed all stages.",
	})

	r.MustRegister(rowsRead, inserted, provisionFailures, duplicates, invalidDates, invalidNumerics,
		stageDuration, stageFailures, lastSuccess)
	return &Registry{
		reg:                r,
		RowsRead:           rowsRead,
		DocumentsInserted:  inserted,
		ProvisionFailures:  provisionFailures,
		DuplicatesDropped:  duplicates,
		InvalidDates:       invalidDates,
		InvalidNumerics:    invalidNumerics,
		StageDurationSec:   stageDuration,
		StageFailures:      stageFailures,
		LastRunSuccessUnix: lastSuccess,
	}
}

// Gatherer trả về registry bên dưới
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

// WriteTextfile ghi toàn bộ metric ra file theo định dạng textfile của node_exporter
func (r *Registry) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("metrics dir: %w", err)
		}
	}
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}
