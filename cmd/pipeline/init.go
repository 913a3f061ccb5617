package main

import (
	"context"
	"fmt"

	"github.com/LokaPoojithaDondeti/Cassandra/config"
	"github.com/LokaPoojithaDondeti/Cassandra/internal/database"
	"github.com/LokaPoojithaDondeti/Cassandra/internal/docstore"
	"github.com/LokaPoojithaDondeti/Cassandra/internal/logger"
	medallionsvc "github.com/LokaPoojithaDondeti/Cassandra/internal/medallion/service"
	"github.com/LokaPoojithaDondeti/Cassandra/internal/metrics"
	"github.com/LokaPoojithaDondeti/Cassandra/internal/source"
)

// initLogger khởi tạo hệ thống logging, cấu hình đọc từ biến môi trường LOG_*
func initLogger() error {
	if err := logger.Init(nil); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.GetAppLogger().Info("Logger system initialized successfully")
	return nil
}

// initConfig đọc và kiểm tra cấu hình, thiếu thông tin kết nối thì dừng ngay
func initConfig() (*config.Configuration, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, err
	}
	logger.GetAppLogger().WithField("driver", cfg.StoreDriver).
		WithField("dataset", cfg.DatasetURL).
		WithField("gold", cfg.GoldCollections()).
		Info("Configuration loaded")
	return cfg, nil
}

// initStore mở kho document theo driver cấu hình
func initStore(ctx context.Context, cfg *config.Configuration) (docstore.Store, error) {
	return database.OpenStore(ctx, cfg)
}

// initPipeline dựng pipeline từ cấu hình và kho document
func initPipeline(cfg *config.Configuration, store docstore.Store, m *metrics.Registry) *medallionsvc.Pipeline {
	log := logger.GetPipelineLogger()
	reader := source.NewReader(log, source.WithRetryMax(cfg.SourceHTTPRetryMax))

	deps := medallionsvc.Deps{
		Store:     store,
		Metrics:   m,
		Log:       log,
		BatchSize: cfg.BatchSize,
	}
	collections := medallionsvc.Collections{
		Bronze:         cfg.Collection_Bronze,
		Silver:         cfg.Collection_Silver,
		GoldRegion:     cfg.Collection_GoldRegion,
		GoldCategory:   cfg.Collection_GoldCategory,
		GoldPerformers: cfg.Collection_GoldPerformers,
	}
	return medallionsvc.NewPipeline(deps, reader, cfg.DatasetURL, collections)
}
