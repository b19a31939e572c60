package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Драйверы хранилища
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// Форматы логов
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config содержит настройки приложения.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Logging LoggingConfig `yaml:"logging"`
	Quiz    QuizConfig    `yaml:"quiz"`
}

// ServerConfig содержит настройки HTTP сервера.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	APIPrefix       string        `yaml:"api_prefix"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// StorageConfig содержит настройки хранилища.
type StorageConfig struct {
	Driver         string         `yaml:"driver"`
	ConnectTimeout time.Duration  `yaml:"connect_timeout"`
	Postgres       PostgresConfig `yaml:"postgres"`
	Mongo          MongoConfig    `yaml:"mongo"`
}

// PostgresConfig содержит настройки подключения к PostgreSQL.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// MongoConfig содержит настройки подключения к MongoDB.
type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

// LoggingConfig содержит настройки логирования.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// QuizConfig содержит настройки предметной области.
type QuizConfig struct {
	// DefaultKeyword подставляется в GET /quizzes/{quizId}/populate.
	DefaultKeyword string `yaml:"default_keyword"`
}

// Default возвращает конфигурацию по умолчанию.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":4000",
			APIPrefix:       "/api",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{
			Driver:         DriverMemory,
			ConnectTimeout: 10 * time.Second,
			Mongo: MongoConfig{
				Database: "simplequiz",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: FormatText,
		},
		Quiz: QuizConfig{
			DefaultKeyword: "capital",
		},
	}
}

// Overrides содержит значения из флагов командной строки.
// Пустые поля ничего не меняют.
type Overrides struct {
	Addr     string
	Driver   string
	LogLevel string
}

// Load собирает конфигурацию: значения по умолчанию, затем YAML файл path
// (если указан), затем переменные окружения, в том числе из envFile,
// затем over. Проверка выполняется один раз, после всех слоёв.
// Отсутствие envFile не считается ошибкой.
func Load(path, envFile string, over Overrides) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err = yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	cfg.apply(over)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (cfg *Config) apply(over Overrides) {
	if over.Addr != "" {
		cfg.Server.Addr = over.Addr
	}
	if over.Driver != "" {
		cfg.Storage.Driver = over.Driver
	}
	if over.LogLevel != "" {
		cfg.Logging.Level = over.LogLevel
	}
}

// applyEnv переопределяет настройки переменными окружения.
func (cfg *Config) applyEnv() error {
	if port, ok := os.LookupEnv("PORT"); ok && port != "" {
		cfg.Server.Addr = ":" + port
	}

	cfg.Server.Addr = getEnv("QUIZ_ADDR", cfg.Server.Addr)
	cfg.Server.APIPrefix = getEnv("QUIZ_API_PREFIX", cfg.Server.APIPrefix)
	cfg.Storage.Driver = getEnv("QUIZ_STORAGE_DRIVER", cfg.Storage.Driver)
	cfg.Storage.Postgres.DSN = getEnv("QUIZ_POSTGRES_DSN", cfg.Storage.Postgres.DSN)
	cfg.Storage.Mongo.URI = getEnv("QUIZ_MONGO_URI", cfg.Storage.Mongo.URI)
	cfg.Storage.Mongo.Database = getEnv("QUIZ_MONGO_DATABASE", cfg.Storage.Mongo.Database)
	cfg.Logging.Level = getEnv("QUIZ_LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnv("QUIZ_LOG_FORMAT", cfg.Logging.Format)
	cfg.Quiz.DefaultKeyword = getEnv("QUIZ_DEFAULT_KEYWORD", cfg.Quiz.DefaultKeyword)

	if value, ok := os.LookupEnv("QUIZ_SHUTDOWN_TIMEOUT"); ok && value != "" {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid QUIZ_SHUTDOWN_TIMEOUT: %w", err)
		}
		cfg.Server.ShutdownTimeout = d
	}

	return nil
}

// Validate проверяет обязательные настройки.
func (cfg *Config) Validate() error {
	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return errors.New("server.addr is required")
	}

	if cfg.Server.APIPrefix != "" && !strings.HasPrefix(cfg.Server.APIPrefix, "/") {
		return fmt.Errorf("server.api_prefix must start with '/', got %q", cfg.Server.APIPrefix)
	}

	if cfg.Server.ShutdownTimeout <= 0 {
		return errors.New("server.shutdown_timeout must be positive")
	}

	if cfg.Storage.ConnectTimeout <= 0 {
		return errors.New("storage.connect_timeout must be positive")
	}

	switch cfg.Storage.Driver {
	case DriverMemory:
	case DriverPostgres:
		if cfg.Storage.Postgres.DSN == "" {
			return errors.New("storage.postgres.dsn is required for postgres driver")
		}
	case DriverMongo:
		if cfg.Storage.Mongo.URI == "" {
			return errors.New("storage.mongo.uri is required for mongo driver")
		}
		if cfg.Storage.Mongo.Database == "" {
			return errors.New("storage.mongo.database is required for mongo driver")
		}
	default:
		return fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}

	if _, err := cfg.Logging.SlogLevel(); err != nil {
		return err
	}

	if cfg.Logging.Format != FormatText && cfg.Logging.Format != FormatJSON {
		return fmt.Errorf("unsupported log format %q", cfg.Logging.Format)
	}

	if strings.TrimSpace(cfg.Quiz.DefaultKeyword) == "" {
		return errors.New("quiz.default_keyword is required")
	}

	return nil
}

// SlogLevel возвращает уровень логирования для slog.
func (l LoggingConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return level, fmt.Errorf("invalid log level %q: %w", l.Level, err)
	}
	return level, nil
}

// getEnv возвращает значение переменной окружения или значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}
