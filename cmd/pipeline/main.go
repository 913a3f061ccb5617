// Command pipeline chạy một lần toàn bộ pipeline bronze → silver → gold rồi thoát.
// Exit code 1 khi có stage lỗi hoặc không khởi tạo được.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/LokaPoojithaDondeti/Cassandra/internal/database"
	"github.com/LokaPoojithaDondeti/Cassandra/internal/logger"
	"github.com/LokaPoojithaDondeti/Cassandra/internal/metrics"
)

func main() {
	code := run()
	// Flush log bất đồng bộ trước khi thoát
	logger.Shutdown()
	os.Exit(code)
}

func run() int {
	if err := initLogger(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	log := logger.GetAppLogger()

	cfg, err := initConfig()
	if err != nil {
		log.WithError(err).Error("Failed to load configuration")
		return 1
	}

	ctx := context.Background()
	store, err := initStore(ctx, cfg)
	if err != nil {
		log.WithError(err).Error("Failed to open document store")
		return 1
	}
	defer database.CloseStore(ctx, store)

	m := metrics.NewRegistry()
	defer func() {
		if err := m.WriteTextfile(cfg.MetricsTextfile); err != nil {
			log.WithError(err).Warn("Failed to write metrics")
		}
	}()

	if _, err := initPipeline(cfg, store, m).Run(ctx); err != nil {
		log.WithError(err).Error("Pipeline failed")
		return 1
	}
	return 0
}
