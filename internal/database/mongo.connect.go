package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/LokaPoojithaDondeti/Cassandra/config"
	"github.com/LokaPoojithaDondeti/Cassandra/internal/common"
	"github.com/LokaPoojithaDondeti/Cassandra/internal/logger"
)

// mongoClientOptions dựng options kết nối từ endpoint + token ứng dụng
func mongoClientOptions(c *config.Configuration) *options.ClientOptions {
	clientOptions := options.Client().ApplyURI(c.MongoDB_APIEndpoint).
		SetMaxPoolSize(10).                 // pipeline chạy tuần tự, không cần pool lớn
		SetMinPoolSize(1).                  // Giữ tối thiểu 1 connection trong pool
		SetConnectTimeout(5 * time.Second). // Timeout khi kết nối
		SetSocketTimeout(30 * time.Second)  // Timeout khi gửi nhận dữ liệu

	if c.MongoDB_ApplicationToken != "" {
		clientOptions.SetAuth(options.Credential{
			Username: c.MongoDB_TokenUsername,
			Password: c.MongoDB_ApplicationToken,
		})
	}
	return clientOptions
}

// GetInstance kết nối tới kho document kiểu Mongo theo cấu hình và ping thử.
//
// Tham số:
// - c: cấu hình đã validate, cần MongoDB_APIEndpoint và MongoDB_ApplicationToken
//
// Trả về:
// - *mongo.Client: client đã kết nối
// - error: lỗi bọc common.ErrConnection
func GetInstance(ctx context.Context, c *config.Configuration) (*mongo.Client, error) {
	if c.MongoDB_APIEndpoint == "" {
		return nil, fmt.Errorf("%w: database endpoint is empty", common.ErrConnection)
	}

	// Kết nối thử với MongoDB
	ctxConnect, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctxConnect, mongoClientOptions(c))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to MongoDB: %w", common.ErrConnection, err)
	}

	// Kiểm tra kết nối
	ctxPing, cancelPing := context.WithTimeout(ctx, 5*time.Second)
	defer cancelPing()

	if err = client.Ping(ctxPing, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("%w: failed to ping MongoDB: %w", common.ErrConnection, err)
	}

	logger.GetAppLogger().WithField("namespace", c.MongoDB_Namespace).Info("Successfully connected to MongoDB")
	return client, nil
}
