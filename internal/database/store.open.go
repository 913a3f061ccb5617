// Package database mở kho document theo driver trong cấu hình.
package database

import (
	"context"
	"fmt"

	"github.com/cockroachdb/pebble"

	"github.com/LokaPoojithaDondeti/Cassandra/config"
	"github.com/LokaPoojithaDondeti/Cassandra/internal/common"
	"github.com/LokaPoojithaDondeti/Cassandra/internal/docstore"
	"github.com/LokaPoojithaDondeti/Cassandra/internal/logger"
)

// OpenStore mở docstore.Store theo c.StoreDriver
func OpenStore(ctx context.Context, c *config.Configuration) (docstore.Store, error) {
	log := logger.GetAppLogger().WithField("driver", c.StoreDriver)

	switch c.StoreDriver {
	case config.StoreDriverMongo, "":
		client, err := GetInstance(ctx, c)
		if err != nil {
			return nil, err
		}
		return docstore.NewMongoStore(client, c.MongoDB_Namespace), nil

	case config.StoreDriverPebble:
		s, err := docstore.OpenPebbleStore(c.PebbleDir, &pebble.Options{})
		if err != nil {
			return nil, err
		}
		log.WithField("dir", c.PebbleDir).Info("Opened pebble store")
		return s, nil

	case config.StoreDriverSQLite:
		s, err := docstore.OpenSQLiteStore(ctx, c.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.WithField("path", c.SQLitePath).Info("Opened sqlite store")
		return s, nil

	case config.StoreDriverMemory:
		log.Warn("Using in-memory store, data is discarded on exit")
		return docstore.NewMemoryStore(), nil

	default:
		return nil, fmt.Errorf("%w: unknown store driver %q", common.ErrConfig, c.StoreDriver)
	}
}

// CloseStore đóng kho document và ghi log kết quả
func CloseStore(ctx context.Context, s docstore.Store) error {
	if s == nil {
		return nil
	}
	if err := s.Close(ctx); err != nil {
		logger.GetAppLogger().WithError(err).Error("Failed to close document store")
		return err
	}
	logger.GetAppLogger().Info("Document store closed")
	return nil
}
