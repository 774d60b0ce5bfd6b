package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	DispatcherRaw = "raw"
	DispatcherSDK = "sdk"
)

type Config struct {
	HTTPAddr    string   `envconfig:"HTTP_ADDR" default:":8080"`
	LogLevel    string   `envconfig:"LOG_LEVEL" default:"info"`
	CORSOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS"`
	LLM         LLMConfig
}

// LLMConfig описывает параметры обращения к completion endpoint.
// Ключи окружения получают префикс LLM_ от поля Config.LLM (LLM_BASE_URL и т.д.).
// API-ключа здесь нет: ключ приходит только от пользователя вместе с запросом.
type LLMConfig struct {
	BaseURL      string        `envconfig:"BASE_URL" default:"https://api.moonshot.cn/v1"`
	DefaultModel string        `envconfig:"DEFAULT_MODEL" default:"moonshot-v1-8k"`
	Temperature  float64       `envconfig:"TEMPERATURE" default:"0.9"`
	MaxTokens    int           `envconfig:"MAX_TOKENS" default:"1000"`
	Timeout      time.Duration `envconfig:"TIMEOUT" default:"30s"`
	Dispatcher   string        `envconfig:"DISPATCHER" default:"raw"`
}

// Load читает .env (если есть), затем переменные окружения.
func Load() (Config, error) {
	if err := loadDotEnv(getEnv("ENV_FILE", ".env")); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("process env: %w", err)
	}
	cfg.LLM.BaseURL = strings.TrimSuffix(cfg.LLM.BaseURL, "/")
	cfg.LLM.Dispatcher = strings.ToLower(strings.TrimSpace(cfg.LLM.Dispatcher))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.HTTPAddr == "" {
		return errors.New("HTTP_ADDR is empty")
	}
	if c.LLM.BaseURL == "" {
		return errors.New("LLM_BASE_URL is empty")
	}
	if c.LLM.DefaultModel == "" {
		return errors.New("LLM_DEFAULT_MODEL is empty")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("LLM_TEMPERATURE out of range: %v", c.LLM.Temperature)
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("LLM_MAX_TOKENS must be positive, got %d", c.LLM.MaxTokens)
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT must be positive, got %s", c.LLM.Timeout)
	}
	switch c.LLM.Dispatcher {
	case DispatcherRaw, DispatcherSDK:
	default:
		return fmt.Errorf("unknown LLM_DISPATCHER %q", c.LLM.Dispatcher)
	}
	return nil
}

// loadDotEnv не перезаписывает уже заданные переменные окружения.
// Отсутствие файла не считается ошибкой.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func getEnv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return def
}
