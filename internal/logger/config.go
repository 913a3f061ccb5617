package logger

import (
	"os"
	"strings"

	"github.com/caarlos0/env"
)

// LogConfig chứa cấu hình cho hệ thống logging
type LogConfig struct {
	// Log Level: trace, debug, info, warn, error, fatal
	Level string `env:"LOG_LEVEL" envDefault:"info"`

	// Log Format: json, text
	Format string `env:"LOG_FORMAT" envDefault:"text"`

	// Log Output: file, stdout, both
	Output string `env:"LOG_OUTPUT" envDefault:"stdout"`

	// Log Rotation
	MaxSize    int  `env:"LOG_MAX_SIZE" envDefault:"100"`  // MB
	MaxBackups int  `env:"LOG_MAX_BACKUPS" envDefault:"7"` // Số file cũ giữ lại
	MaxAge     int  `env:"LOG_MAX_AGE" envDefault:"7"`     // Số ngày giữ lại
	Compress   bool `env:"LOG_COMPRESS" envDefault:"true"` // Nén file cũ

	// Log Paths
	LogPath      string `env:"LOG_PATH" envDefault:"./logs"`
	AppFile      string `env:"LOG_APP_FILE" envDefault:"app.log"`
	PipelineFile string `env:"LOG_PIPELINE_FILE" envDefault:"pipeline.log"`

	// Kích thước buffer của async hook
	BufferSize int `env:"LOG_BUFFER_SIZE" envDefault:"1000"`
}

// DefaultConfig trả về cấu hình mặc định, có override từ biến môi trường
func DefaultConfig() *LogConfig {
	config := &LogConfig{}
	if err := env.Parse(config); err != nil {
		config = &LogConfig{
			Level:        "info",
			Format:       "text",
			Output:       "stdout",
			MaxSize:      100,
			MaxBackups:   7,
			MaxAge:       7,
			Compress:     true,
			LogPath:      "./logs",
			AppFile:      "app.log",
			PipelineFile: "pipeline.log",
			BufferSize:   1000,
		}
	}

	// Điều chỉnh theo môi trường khi không set rõ
	goEnv := os.Getenv("GO_ENV")
	if goEnv == "" || goEnv == "development" {
		if os.Getenv("LOG_LEVEL") == "" {
			config.Level = "debug"
		}
	} else if os.Getenv("LOG_FORMAT") == "" {
		config.Format = "json"
	}

	config.Level = strings.ToLower(config.Level)
	config.Format = strings.ToLower(config.Format)
	config.Output = strings.ToLower(config.Output)
	return config
}
