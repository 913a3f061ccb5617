package medallionsvc

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/LokaPoojithaDondeti/Cassandra/internal/common"
)

// Tên các stage, dùng làm label metric và field log
const (
	StageIngest    = "ingest"
	StageClean     = "clean"
	StageAggregate = "aggregate"
)

// StageError cho biết stage nào đã dừng pipeline
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// RunResult là số document mỗi stage đã ghi
type RunResult struct {
	Bronze int
	Silver int
	Gold   int
}

// Pipeline chạy Ingestor → Cleaner → Aggregator tuần tự
type Pipeline struct {
	deps       Deps
	ingestor   *Ingestor
	cleaner    *Cleaner
	aggregator *Aggregator
}

// NewPipeline tạo pipeline đọc nguồn location và ghi vào các collection cs
func NewPipeline(deps Deps, reader TableReader, location string, cs Collections) *Pipeline {
	deps = deps.withDefaults()
	return &Pipeline{
		deps:       deps,
		ingestor:   NewIngestor(deps, reader, location, cs.Bronze),
		cleaner:    NewCleaner(deps, cs.Bronze, cs.Silver),
		aggregator: NewAggregator(deps, cs.Silver, DefaultGoldTargets(cs)),
	}
}

// Run chạy lần lượt 3 stage, dừng ở stage lỗi đầu tiên.
// Không rollback, không retry: dữ liệu các stage trước vẫn giữ, chạy lại sẽ ghi thêm dữ liệu trùng.
func (p *Pipeline) Run(ctx context.Context) (RunResult, error) {
	var result RunResult
	log := p.deps.Log
	log.Info("Pipeline started")
	started := p.deps.Now()

	stages := []struct {
		name string
		run  func(context.Context) (int, error)
		out  *int
	}{
		{StageIngest, p.ingestor.LoadRawData, &result.Bronze},
		{StageClean, p.cleaner.CleanData, &result.Silver},
		{StageAggregate, p.aggregator.AggregateData, &result.Gold},
	}

	for _, stage := range stages {
		stageStart := time.Now()
		n, err := stage.run(ctx)
		*stage.out = n
		p.deps.Metrics.StageDurationSec.WithLabelValues(stage.name).Observe(time.Since(stageStart).Seconds())

		if err != nil {
			p.deps.Metrics.StageFailures.WithLabelValues(stage.name).Inc()
			log.WithFields(logrus.Fields{
				"stage":     stage.name,
				"written":   n,
				"code":      common.CodeOf(err),
				"transient": common.IsTransient(err),
			}).WithError(err).Error("Pipeline stage failed, later stages skipped")
			return result, &StageError{Stage: stage.name, Err: err}
		}
	}

	p.deps.Metrics.LastRunSuccessUnix.Set(float64(p.deps.Now().Unix()))
	log.WithFields(logrus.Fields{
		"bronze":   result.Bronze,
		"silver":   result.Silver,
		"gold":     result.Gold,
		"duration": p.deps.Now().Sub(started).String(),
	}).Info("Pipeline completed")
	return result, nil
}
