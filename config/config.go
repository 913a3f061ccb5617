package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/LokaPoojithaDondeti/Cassandra/internal/common"
)

// DefaultDatasetURL là bộ dữ liệu mẫu 100 đơn hàng dùng khi không cấu hình DATASET_URL
const DefaultDatasetURL = "https://raw.githubusercontent.com/gchandra10/filestorage/main/sales_100.csv"

// Các driver lưu trữ document được hỗ trợ
const (
	StoreDriverMongo  = "mongo"
	StoreDriverPebble = "pebble"
	StoreDriverSQLite = "sqlite"
	StoreDriverMemory = "memory"
)

// Configuration chứa thông tin tĩnh cần thiết để chạy pipeline
// Nó chứa thông tin kết nối kho document, nguồn dữ liệu và tên các collection theo tầng
type Configuration struct {
	DatasetURL  string `env:"DATASET_URL" validate:"required"`                                  // Đường dẫn file nguồn (path, http(s)://, gs://)
	StoreDriver string `env:"STORE_DRIVER" envDefault:"mongo" validate:"oneof=mongo pebble sqlite memory"` // Driver lưu trữ

	// Kho document kiểu Mongo: endpoint + token + namespace
	MongoDB_APIEndpoint      string `env:"MONGODB_API_ENDPOINT" validate:"required_if=StoreDriver mongo"`      // URI kết nối
	MongoDB_ApplicationToken string `env:"MONGODB_APPLICATION_TOKEN" validate:"required_if=StoreDriver mongo"` // Token ứng dụng (dùng làm password)
	MongoDB_TokenUsername    string `env:"MONGODB_TOKEN_USERNAME" envDefault:"token"`                           // Username đi kèm token
	MongoDB_Namespace        string `env:"MONGODB_NAMESPACE" validate:"required_if=StoreDriver mongo"`         // Tên database (keyspace)

	PebbleDir  string `env:"PEBBLE_DIR" envDefault:"./data/pebble" validate:"required_if=StoreDriver pebble"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"./data/medallion.sqlite" validate:"required_if=StoreDriver sqlite"`

	BatchSize          int    `env:"PIPELINE_BATCH_SIZE" envDefault:"1" validate:"min=1"`     // 1 = insert từng document
	SourceHTTPRetryMax int    `env:"SOURCE_HTTP_RETRY_MAX" envDefault:"0" validate:"min=0"`   // 0 = không retry
	MetricsTextfile    string `env:"METRICS_TEXTFILE"`                                        // Rỗng = không ghi metrics

	// Tên collection theo tầng
	Collection_Bronze         string `env:"COLLECTION_BRONZE" envDefault:"bronze_sales" validate:"required"`
	Collection_Silver         string `env:"COLLECTION_SILVER" envDefault:"silver_sales" validate:"required"`
	Collection_GoldRegion     string `env:"COLLECTION_GOLD_REGION" envDefault:"gold_sales_by_region" validate:"required"`
	Collection_GoldCategory   string `env:"COLLECTION_GOLD_CATEGORY" envDefault:"gold_sales_by_category" validate:"required"`
	Collection_GoldPerformers string `env:"COLLECTION_GOLD_PERFORMERS" envDefault:"gold_top_performers" validate:"required"`
}

// getEnvPath trả về đường dẫn đến file env dựa trên môi trường
func getEnvPath() string {
	// Mặc định sử dụng môi trường development
	goEnv := os.Getenv("GO_ENV")
	if goEnv == "" {
		goEnv = "development"
	}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	// Tìm thư mục config/env, đi dần lên thư mục cha
	for {
		envDir := filepath.Join(currentDir, "config", "env")
		if _, err := os.Stat(envDir); err == nil {
			return filepath.Join(envDir, fmt.Sprintf("%s.env", goEnv))
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return ""
		}
		currentDir = parentDir
	}
}

// NewConfig đọc cấu hình từ file env (nếu có) và biến môi trường của process.
// Biến môi trường đã set sẵn luôn được ưu tiên hơn file env.
func NewConfig(files ...string) (*Configuration, error) {
	if len(files) == 0 {
		if envPath := getEnvPath(); envPath != "" {
			if _, err := os.Stat(envPath); err == nil {
				files = append(files, envPath)
			}
		}
	}
	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			return nil, fmt.Errorf("%w: load env file %s: %v", common.ErrConfig, strings.Join(files, ","), err)
		}
	}

	cfg := Configuration{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("%w: parse env: %v", common.ErrConfig, err)
	}
	if cfg.DatasetURL == "" {
		cfg.DatasetURL = DefaultDatasetURL
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate kiểm tra cấu hình trước khi dùng, thiếu thông tin kết nối thì dừng ngay
func (c *Configuration) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s(%s)", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("%w: invalid fields: %s", common.ErrConfig, strings.Join(fields, ", "))
	}
	return fmt.Errorf("%w: %v", common.ErrConfig, err)
}

// GoldCollections trả về tên 3 collection tầng gold theo thứ tự region, category, top performers
func (c *Configuration) GoldCollections() []string {
	return []string{c.Collection_GoldRegion, c.Collection_GoldCategory, c.Collection_GoldPerformers}
}
