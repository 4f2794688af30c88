package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Режимы обновления точек при синхронизации уже существующего объекта
const (
	PointModeMerge   = "merge"
	PointModeReplace = "replace"
)

// Драйверы хранилища отчетов
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Cache     CacheConfig
	Log       LogConfig
	Worker    WorkerConfig
	Reconcile ReconcileConfig
	Pilot     PilotConfig
}

type ServerConfig struct {
	Host        string
	Port        int
	Env         string
	CORSOrigins string
}

type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CacheConfig struct {
	// TypesCacheTTL - 0 означает хранение без срока (каталог типов меняется только при деплое)
	TypesCacheTTL  time.Duration
	ExportCacheTTL time.Duration
}

type LogConfig struct {
	Level string
}

type WorkerConfig struct {
	Enabled       bool
	ConsumerGroup string
	MaxRetries    int
}

type ReconcileConfig struct {
	PointMode string
}

// PilotConfig - настройки полевого клиента (cmd/pilot)
type PilotConfig struct {
	APIURL         string
	StateFile      string
	UserID         string
	UserRole       string
	RequestTimeout time.Duration
}

func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile читает конфигурацию из указанного файла и переменных окружения.
// Отсутствие файла не является ошибкой: все значения можно задать через окружение.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:        v.GetString("API_HOST"),
			Port:        v.GetInt("API_PORT"),
			Env:         v.GetString("API_ENV"),
			CORSOrigins: v.GetString("API_CORS_ORIGINS"),
		},
		Database: DatabaseConfig{
			Driver:          strings.ToLower(v.GetString("DB_DRIVER")),
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			DBName:          v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxConns:        v.GetInt("DB_MAX_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME")) * time.Second,
			ConnMaxIdleTime: time.Duration(v.GetInt("DB_CONN_MAX_IDLE_TIME")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Cache: CacheConfig{
			TypesCacheTTL:  time.Duration(v.GetInt("TYPES_CACHE_TTL")) * time.Second,
			ExportCacheTTL: time.Duration(v.GetInt("EXPORT_CACHE_TTL")) * time.Second,
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Worker: WorkerConfig{
			Enabled:       v.GetBool("WORKER_ENABLED"),
			ConsumerGroup: v.GetString("WORKER_CONSUMER_GROUP"),
			MaxRetries:    v.GetInt("WORKER_MAX_RETRIES"),
		},
		Reconcile: ReconcileConfig{
			PointMode: strings.ToLower(v.GetString("RECONCILE_POINT_MODE")),
		},
		Pilot: PilotConfig{
			APIURL:         strings.TrimRight(v.GetString("PILOT_API_URL"), "/"),
			StateFile:      v.GetString("PILOT_STATE_FILE"),
			UserID:         v.GetString("PILOT_USER_ID"),
			UserRole:       v.GetString("PILOT_USER_ROLE"),
			RequestTimeout: time.Duration(v.GetInt("PILOT_REQUEST_TIMEOUT")) * time.Second,
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("API_HOST", "0.0.0.0")
	v.SetDefault("API_PORT", 8080)
	v.SetDefault("API_ENV", "development")
	v.SetDefault("API_CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")
	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("EXPORT_CACHE_TTL", 86400)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("WORKER_CONSUMER_GROUP", "report-export-workers")
	v.SetDefault("WORKER_MAX_RETRIES", 3)
	v.SetDefault("RECONCILE_POINT_MODE", PointModeMerge)
	v.SetDefault("PILOT_API_URL", "http://localhost:8080/api/v1")
	v.SetDefault("PILOT_STATE_FILE", "journey-state.json")
	v.SetDefault("PILOT_USER_ROLE", "pilot")
	v.SetDefault("PILOT_REQUEST_TIMEOUT", 15)
}

func (c *Config) validate() error {
	switch c.Reconcile.PointMode {
	case PointModeMerge, PointModeReplace:
	default:
		return fmt.Errorf("invalid RECONCILE_POINT_MODE %q: expected %s or %s",
			c.Reconcile.PointMode, PointModeMerge, PointModeReplace)
	}

	switch c.Database.Driver {
	case DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("invalid DB_DRIVER %q: expected %s or %s",
			c.Database.Driver, DriverPostgres, DriverMemory)
	}

	return nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// DSN - строка подключения для драйвера pgx
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Addr - адрес Redis в виде host:port
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
