package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

// ============================================================
// Configuration
// ============================================================

type Config struct {
	Port         string `env:"PORT" envDefault:"3000"`
	Environment  string `env:"ENV" envDefault:"development"`
	ReadTimeout  int    `env:"READ_TIMEOUT" envDefault:"10"`
	WriteTimeout int    `env:"WRITE_TIMEOUT" envDefault:"10"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
	LogDir    string `env:"LOG_DIR"` // пусто = только stdout

	DBPath        string `env:"MAPPER_DB_PATH" envDefault:"data/db/mapper.db"`
	AssetsDir     string `env:"ASSETS_DIR" envDefault:"data/assets"`
	AssetsBaseURL string `env:"ASSETS_BASE_URL" envDefault:"/assets"`
	SeedSample    bool   `env:"SEED_SAMPLE_DATA" envDefault:"false"`

	CanvasWidth      int     `env:"CANVAS_WIDTH" envDefault:"1200"`
	CanvasHeight     int     `env:"CANVAS_HEIGHT" envDefault:"800"`
	FilterDimOpacity float64 `env:"FILTER_DIM_OPACITY" envDefault:"0.25"`
	LogoFetchTimeout int     `env:"LOGO_FETCH_TIMEOUT" envDefault:"5"`
	SessionTTL       int     `env:"SESSION_TTL" envDefault:"60"` // минуты простоя
	BodyLimitMB      int     `env:"BODY_LIMIT_MB" envDefault:"16"`

	MapperURL string `env:"MAPPER_URL" envDefault:"http://localhost:3001"`
}

// Load загружает конфигурацию из .env (если есть) и переменных окружения
func Load() *Config {
	if path := envFile(); path != "" {
		if err := godotenv.Load(path); err != nil {
			fmt.Printf("config: cannot load %s: %v\n", path, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("config: parse error, using defaults: %v\n", err)
		return Defaults()
	}
	return cfg
}

// Defaults возвращает конфигурацию без учета окружения.
func Defaults() *Config {
	return &Config{
		Port:             "3000",
		Environment:      "development",
		ReadTimeout:      10,
		WriteTimeout:     10,
		LogLevel:         "info",
		LogFormat:        "text",
		DBPath:           "data/db/mapper.db",
		AssetsDir:        "data/assets",
		AssetsBaseURL:    "/assets",
		CanvasWidth:      1200,
		CanvasHeight:     800,
		FilterDimOpacity: 0.25,
		LogoFetchTimeout: 5,
		SessionTTL:       60,
		BodyLimitMB:      16,
		MapperURL:        "http://localhost:3001",
	}
}

// envFile возвращает путь к .env: ENV_FILE или ./.env, если файл существует.
func envFile() string {
	if path := os.Getenv("ENV_FILE"); path != "" {
		return path
	}
	if _, err := os.Stat(".env"); err == nil {
		return ".env"
	}
	return ""
}
