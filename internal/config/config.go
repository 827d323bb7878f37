package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/Igoorx/godfield-flash/internal/engine"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config - настройки процесса из окружения.
type Config struct {
	Port            int           `validate:"min=1,max=65535"`
	DBPath          string        `validate:"required"`
	ReplayDir       string        `validate:"required"`
	TurnTimeout     time.Duration `validate:"min=0"`
	ResultCacheSize int           `validate:"min=1"`
	ResultCacheTTL  time.Duration `validate:"gt=0"`
	MaxPlayers      int           `validate:"min=2,max=8"`
	AssistantChance int           `validate:"min=0,max=100"`

	// CatalogPath пустой - встроенный каталог.
	CatalogPath string
	Training    bool
	Debug       bool

	HasSeed bool
	Seed    int64
}

// Load читает .env (если есть) и переменные окружения.
func Load() (*Config, error) {
	// .env не обязателен: в контейнере все приходит из окружения
	_ = godotenv.Load()

	cfg := &Config{
		CatalogPath: getEnv("GF_CATALOG_PATH", ""),
		DBPath:      getEnv("GF_DB_PATH", "godfield.db"),
		ReplayDir:   getEnv("GF_REPLAY_DIR", "replays"),
	}

	var err error
	if cfg.Port, err = getInt("GF_PORT", 8080); err != nil {
		return nil, err
	}
	if cfg.TurnTimeout, err = getDuration("GF_TURN_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.ResultCacheSize, err = getInt("GF_RESULT_CACHE_SIZE", 128); err != nil {
		return nil, err
	}
	if cfg.ResultCacheTTL, err = getDuration("GF_RESULT_CACHE_TTL", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.Training, err = getBool("GF_TRAINING", false); err != nil {
		return nil, err
	}
	if cfg.Debug, err = getBool("GF_DEBUG", false); err != nil {
		return nil, err
	}
	if cfg.MaxPlayers, err = getInt("GF_MAX_PLAYERS", 8); err != nil {
		return nil, err
	}
	if cfg.AssistantChance, err = getInt("GF_ASSISTANT_CHANCE", 30); err != nil {
		return nil, err
	}
	if v, ok := os.LookupEnv("GF_SEED"); ok {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid GF_SEED value: %w", err)
		}
		cfg.Seed, cfg.HasSeed = seed, true
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Engine собирает настройки движка. Без GF_SEED зерно берется из времени.
func (c *Config) Engine() engine.Config {
	ec := engine.NewConfig()
	if c.HasSeed {
		ec.Seed = c.Seed
	}
	ec.TurnTimeout = c.TurnTimeout
	ec.Training = c.Training
	ec.Debug = c.Debug
	ec.MaxPlayers = c.MaxPlayers
	ec.AssistantChance = c.AssistantChance
	return ec
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getInt(key string, def int) (int, error) {
	v, err := strconv.Atoi(getEnv(key, strconv.Itoa(def)))
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return v, nil
}

func getBool(key string, def bool) (bool, error) {
	v, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(def)))
	if err != nil {
		return false, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return v, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v, err := time.ParseDuration(getEnv(key, def.String()))
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return v, nil
}
