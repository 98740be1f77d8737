package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gopkg.in/yaml.v3"

	"github.com/damoang/tourlog-backend/pkg/logger"
)

// Config 애플리케이션 전체 설정
type Config struct {
	Environment string          `yaml:"environment"`
	Server      ServerConfig    `yaml:"server"`
	Database    DatabaseConfig  `yaml:"database"`
	Redis       RedisConfig     `yaml:"redis"`
	JWT         JWTConfig       `yaml:"jwt"`
	Preview     PreviewConfig   `yaml:"preview"`
	Scheduler   SchedulerConfig `yaml:"scheduler"`
	Versions    VersionsConfig  `yaml:"versions"`
	CORS        CORSConfig      `yaml:"cors"`
}

// ServerConfig HTTP 서버 설정
type ServerConfig struct {
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DatabaseConfig MySQL 설정
type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Name            string        `yaml:"name"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// GetDSN builds the MySQL DSN. parseTime is required for DATETIME columns.
func (d DatabaseConfig) GetDSN() string {
	c := mysqldriver.NewConfig()
	c.User = d.User
	c.Passwd = d.Password
	c.Net = "tcp"
	c.Addr = fmt.Sprintf("%s:%d", d.Host, d.Port)
	c.DBName = d.Name
	c.ParseTime = true
	c.Loc = time.UTC
	c.Params = map[string]string{"charset": "utf8mb4"}
	return c.FormatDSN()
}

// RedisConfig Redis 설정
type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// JWTConfig bearer 토큰 검증 설정 (identity provider와 공유하는 secret)
type JWTConfig struct {
	Secret    string `yaml:"secret"`
	ExpiresIn int    `yaml:"expires_in"` // seconds
}

// PreviewConfig 미리보기 토큰 설정
type PreviewConfig struct {
	Secret  string        `yaml:"secret"`
	TTL     time.Duration `yaml:"ttl"`
	BaseURL string        `yaml:"base_url"`
}

// SchedulerConfig 예약 발행 / 휴지통 정리 설정
type SchedulerConfig struct {
	Enabled         bool          `yaml:"enabled"`
	PublishInterval time.Duration `yaml:"publish_interval"`
	TrashInterval   time.Duration `yaml:"trash_interval"`
	TrashRetention  time.Duration `yaml:"trash_retention"`
	TickInterval    time.Duration `yaml:"tick_interval"`
}

// VersionsConfig 버전 이력 보존 설정
type VersionsConfig struct {
	Max int `yaml:"max"`
}

// CORSConfig CORS 설정
type CORSConfig struct {
	AllowOrigins string `yaml:"allow_origins"`
}

// Default returns a Config populated with the built-in defaults.
func Default() *Config {
	return &Config{
		Environment: "local",
		Server: ServerConfig{
			Port:         8082,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            3306,
			User:            "tourlog",
			Name:            "tourlog",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Redis: RedisConfig{
			Host:     "localhost",
			Port:     6379,
			PoolSize: 10,
		},
		JWT: JWTConfig{
			ExpiresIn: 900,
		},
		Preview: PreviewConfig{
			TTL:     time.Hour,
			BaseURL: "http://localhost:3000/preview",
		},
		Scheduler: SchedulerConfig{
			Enabled:         true,
			PublishInterval: 5 * time.Minute,
			TrashInterval:   24 * time.Hour,
			TrashRetention:  30 * 24 * time.Hour,
			TickInterval:    30 * time.Second,
		},
		Versions: VersionsConfig{Max: 3},
	}
}

// Load reads the YAML config at path on top of the defaults and then applies
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		logger.Warn("config file %s not found, using defaults", path)
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Environment, "APP_ENV")
	setInt(&cfg.Server.Port, "SERVER_PORT")

	setString(&cfg.Database.Host, "DB_HOST")
	setInt(&cfg.Database.Port, "DB_PORT")
	setString(&cfg.Database.User, "DB_USER")
	setString(&cfg.Database.Password, "DB_PASSWORD")
	setString(&cfg.Database.Name, "DB_NAME")

	setString(&cfg.Redis.Host, "REDIS_HOST")
	setInt(&cfg.Redis.Port, "REDIS_PORT")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "REDIS_DB")

	setString(&cfg.JWT.Secret, "JWT_SECRET")
	setString(&cfg.Preview.Secret, "PREVIEW_SECRET")
	setString(&cfg.Preview.BaseURL, "PREVIEW_BASE_URL")
	setDuration(&cfg.Scheduler.PublishInterval, "SCHEDULER_PUBLISH_INTERVAL")
	setDuration(&cfg.Scheduler.TrashInterval, "SCHEDULER_TRASH_INTERVAL")
	setDuration(&cfg.Scheduler.TrashRetention, "SCHEDULER_TRASH_RETENTION")
	if v := os.Getenv("SCHEDULER_ENABLED"); v != "" {
		cfg.Scheduler.Enabled = v == "true" || v == "1"
	}

	setString(&cfg.CORS.AllowOrigins, "CORS_ALLOW_ORIGINS")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

// Validate checks the values the engine cannot run without.
func (c *Config) Validate() error {
	if len(c.Preview.Secret) < 32 {
		return errors.New("preview.secret must be at least 32 bytes")
	}
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret is required")
	}
	if c.Preview.TTL <= 0 {
		return errors.New("preview.ttl must be positive")
	}
	if c.Scheduler.PublishInterval <= 0 || c.Scheduler.TrashInterval <= 0 {
		return errors.New("scheduler intervals must be positive")
	}
	if c.Scheduler.TrashRetention <= 0 {
		return errors.New("scheduler.trash_retention must be positive")
	}
	if c.Versions.Max < 1 {
		return errors.New("versions.max must be >= 1")
	}
	return nil
}

// IsDevelopment reports whether the app runs in a local/dev environment
func (c *Config) IsDevelopment() bool {
	switch c.Environment {
	case "", "local", "dev", "development":
		return true
	}
	return false
}

// LogResolved prints the resolved non-secret values
func LogResolved(c *Config) {
	l := logger.GetLogger()
	l.Info().
		Str("env", c.Environment).
		Int("port", c.Server.Port).
		Str("db_addr", fmt.Sprintf("%s:%d/%s", c.Database.Host, c.Database.Port, c.Database.Name)).
		Str("redis_addr", fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)).
		Bool("scheduler_enabled", c.Scheduler.Enabled).
		Dur("publish_interval", c.Scheduler.PublishInterval).
		Dur("trash_interval", c.Scheduler.TrashInterval).
		Dur("trash_retention", c.Scheduler.TrashRetention).
		Dur("preview_ttl", c.Preview.TTL).
		Int("max_versions", c.Versions.Max).
		Msg("config resolved")
}
