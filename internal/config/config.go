package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	Environment    string        `validate:"required"`
	Port           string        `validate:"required,numeric"`
	BackendURL     string        `validate:"required,url"`
	LogLevel       string        `validate:"required"`
	RequestTimeout time.Duration `validate:"gte=0"`
	Intake         IntakeConfig
	History        HistoryConfig
	Results        ResultsConfig
}

type IntakeConfig struct {
	MaxFileSize int64 `validate:"gt=0"`
	PreviewSize int   `validate:"gt=0,lte=2048"`
}

type HistoryConfig struct {
	Limit int `validate:"gt=0"`
}

type ResultsConfig struct {
	OutputDir string `validate:"required"`
	// Bucket, when set, sends saved results to object storage instead of OutputDir.
	Bucket          string
	Prefix          string
	Endpoint        string `validate:"omitempty,url"`
	Region          string `validate:"required_with=Bucket"`
	AccessKeyID     string
	SecretAccessKey string
}

func Load() *Config {
	maxUploadMB, _ := strconv.ParseInt(getEnv("MAX_UPLOAD_MB", "16"), 10, 64)
	previewSize, _ := strconv.Atoi(getEnv("PREVIEW_SIZE", "320"))
	historyLimit, _ := strconv.Atoi(getEnv("HISTORY_LIMIT", "5"))

	timeout, err := time.ParseDuration(getEnv("REQUEST_TIMEOUT", "120s"))
	if err != nil {
		timeout = 120 * time.Second
	}

	return &Config{
		Environment:    getEnv("ENV", "development"),
		Port:           getEnv("PORT", "3000"),
		BackendURL:     getEnv("BACKEND_URL", "http://localhost:5000"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		RequestTimeout: timeout,
		Intake: IntakeConfig{
			MaxFileSize: maxUploadMB * 1024 * 1024,
			PreviewSize: previewSize,
		},
		History: HistoryConfig{
			Limit: historyLimit,
		},
		Results: ResultsConfig{
			OutputDir:       getEnv("OUTPUT_DIR", "./downloads"),
			Bucket:          os.Getenv("RESULTS_BUCKET"),
			Prefix:          getEnv("RESULTS_PREFIX", "results"),
			Endpoint:        os.Getenv("S3_ENDPOINT"),
			Region:          getEnv("S3_REGION", "us-east-1"),
			AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
		},
	}
}

// Validate reports the first invalid field of the loaded configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
