package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/langchou/tesgo/pkg/tesla"
)

type Config struct {
	Debug bool

	// Tesla API
	Email         string
	Password      string
	UseMockServer bool
	APIHost       string
	MockHost      string
	HTTPTimeout   time.Duration

	// Mock server
	MockServerPort string

	// Token 存储路径
	TokenFile string
}

func Load() (*Config, error) {
	// 尝试加载 .env 文件（可选）
	_ = godotenv.Load()

	cfg := &Config{
		Debug:          getEnvBool("DEBUG", false),
		Email:          getEnv("TESLA_EMAIL", ""),
		Password:       getEnv("TESLA_PASSWORD", ""),
		UseMockServer:  getEnvBool("TESLA_USE_MOCK_SERVER", false),
		APIHost:        getEnv("TESLA_API_HOST", tesla.ProductionBaseURL),
		MockHost:       getEnv("TESLA_MOCK_HOST", tesla.MockBaseURL),
		HTTPTimeout:    getEnvDuration("HTTP_TIMEOUT", 30*time.Second),
		MockServerPort: getEnv("MOCK_SERVER_PORT", "4000"),
		TokenFile:      getEnv("TOKEN_FILE", "tokens.json"),
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		b, err := strconv.ParseBool(value)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return defaultValue
}
