package config

import (
	"fmt"
	"log"
	"time"

	"ronin-novel/internal/utils"

	"github.com/kelseyhightower/envconfig"
)

// Config содержит конфигурацию сервиса истории
type Config struct {
	// Настройки сервера
	Port               string   `envconfig:"GAMEPLAY_SERVER_PORT" default:"8082"`
	LogLevel           string   `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding        string   `envconfig:"LOG_ENCODING" default:"json"`
	LogOutput          string   `envconfig:"LOG_OUTPUT" default:"stdout"` // stdout, stderr или путь к файлу
	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`

	// Настройки сюжета
	StoryFile           string `envconfig:"STORY_FILE"`                             // Пусто - встроенная история
	StoryValidateOnLoad bool   `envconfig:"STORY_VALIDATE_ON_LOAD" default:"false"` // Падать при висячих ссылках в графе
	StrictMode          bool   `envconfig:"GAME_STRICT_MODE" default:"false"`       // Ошибки вместо no-op при неверном выборе

	// Настройки PostgreSQL
	DBHost        string        `envconfig:"DB_HOST" required:"true"`
	DBPort        string        `envconfig:"DB_PORT" default:"5432"`
	DBUser        string        `envconfig:"DB_USER" required:"true"`
	DBName        string        `envconfig:"DB_NAME" required:"true"`
	DBSSLMode     string        `envconfig:"DB_SSL_MODE" default:"disable"`
	DBMaxConns    int           `envconfig:"DB_MAX_CONNECTIONS" default:"10"`
	DBIdleTimeout time.Duration `envconfig:"DB_MAX_IDLE_MINUTES" default:"5m"`
	DBPassword    string        `ignored:"true"` // Секрет, читается из файла

	// Настройки Redis (кэш сессий). Пустой адрес отключает кэш.
	RedisAddr       string        `envconfig:"REDIS_ADDR" default:"redis:6379"`
	RedisDB         int           `envconfig:"REDIS_DB" default:"0"`
	SessionCacheTTL time.Duration `envconfig:"SESSION_CACHE_TTL" default:"30m"`

	// Настройки RabbitMQ. Пустой URL отключает публикацию событий в очередь.
	RabbitMQURL     string `envconfig:"RABBITMQ_URL"`
	GameEventsQueue string `envconfig:"GAME_EVENTS_QUEUE" default:"game_events"`

	// Каталог с Docker Secrets
	SecretsDir string `envconfig:"SECRETS_DIR" default:"/run/secrets"`
	JWTSecret  string `ignored:"true"` // Секрет, читается из файла
}

// GetDSN возвращает строку подключения (DSN) для PostgreSQL
func (c *Config) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// LoadConfig загружает конфигурацию из переменных окружения и секретов
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}

	// Загружаем ОБЯЗАТЕЛЬНЫЕ секреты
	var loadErr error
	cfg.DBPassword, loadErr = utils.ReadSecretFrom(cfg.SecretsDir, "db_password")
	if loadErr != nil {
		return nil, loadErr
	}
	cfg.JWTSecret, loadErr = utils.ReadSecretFrom(cfg.SecretsDir, "jwt_secret")
	if loadErr != nil {
		return nil, loadErr
	}

	log.Printf("Конфигурация загружена (секреты из файлов):")
	log.Printf("  Port: %s", cfg.Port)
	log.Printf("  LogLevel: %s", cfg.LogLevel)
	log.Printf("  LogOutput: %s", cfg.LogOutput)
	log.Printf("  Story: file=%q validateOnLoad=%t strict=%t", cfg.StoryFile, cfg.StoryValidateOnLoad, cfg.StrictMode)
	log.Printf("  DB DSN: postgres://%s:***@%s:%s/%s?sslmode=%s", cfg.DBUser, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBSSLMode)
	log.Printf("  DB Max Conns: %d", cfg.DBMaxConns)
	log.Printf("  Redis: %s (db %d, ttl %v)", cfg.RedisAddr, cfg.RedisDB, cfg.SessionCacheTTL)
	if cfg.RabbitMQURL != "" {
		log.Printf("  RabbitMQ: включен, очередь событий %s", cfg.GameEventsQueue)
	} else {
		log.Println("  RabbitMQ: выключен")
	}
	log.Println("  JWT Secret: [ЗАГРУЖЕН]")

	return &cfg, nil
}
