package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config конфигурация сервиса
type Config struct {
	Server        ServerConfig        `toml:"server"`
	Database      DatabaseConfig      `toml:"database"`
	Logs          LogsConfig          `toml:"logs"`
	Metrics       MetricsConfig       `toml:"metrics"`
	Redis         RedisConfig         `toml:"redis"`
	CreditService CreditServiceConfig `toml:"credit_service"`
	Scheduling    SchedulingConfig    `toml:"scheduling"`
	RateLimit     RateLimitConfig     `toml:"rate_limit"`
}

// ServerConfig параметры HTTP-сервера (таймауты в секундах)
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig параметры подключения к Postgres
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
}

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// LogsConfig параметры логирования
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsConfig параметры prometheus
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// RedisConfig параметры кэша расписаний. Пустой Addr отключает кэш.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	TTL      int    `toml:"ttl"` // секунды
}

// Enabled возвращает true, если кэш настроен
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

// CreditServiceConfig сервис кредитов клиента (флаг льготной отмены)
type CreditServiceConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"` // секунды
}

// SchedulingConfig параметры генерации слотов и политики переноса
type SchedulingConfig struct {
	BookingStepMinutes     int     `toml:"booking_step_minutes"`
	RescheduleStepMinutes  int     `toml:"reschedule_step_minutes"`
	DefaultDurationMinutes int     `toml:"default_duration_minutes"`
	RescheduleCutoffHours  float64 `toml:"reschedule_cutoff_hours"`
	AllowOverrun           bool    `toml:"allow_overrun"`
	Timezone               string  `toml:"timezone"`
	MaxAdvanceDays         int     `toml:"max_advance_days"` // 0 = без ограничений
}

// RescheduleCutoff окно до начала занятия, в котором клиент не может его перенести
func (s SchedulingConfig) RescheduleCutoff() time.Duration {
	return time.Duration(s.RescheduleCutoffHours * float64(time.Hour))
}

// Location часовой пояс расписаний практиков
func (s SchedulingConfig) Location() (*time.Location, error) {
	return time.LoadLocation(s.Timezone)
}

// RateLimitConfig ограничение частоты запросов к публичным эндпоинтам
type RateLimitConfig struct {
	Enabled           bool    `toml:"enabled"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

// Load читает конфигурацию из TOML-файла.
// Секреты можно переопределить переменными окружения (в том числе из .env).
func Load(path string) (*Config, error) {
	// .env необязателен
	_ = godotenv.Load()

	cfg := defaults()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     10,
			WriteTimeout:    10,
			IdleTimeout:     60,
			ShutdownTimeout: 15,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    20,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Logs: LogsConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Path:        "/metrics",
			ServiceName: "session-scheduler",
		},
		Redis: RedisConfig{
			TTL: 300,
		},
		CreditService: CreditServiceConfig{
			Timeout: 3,
		},
		Scheduling: SchedulingConfig{
			BookingStepMinutes:     60,
			RescheduleStepMinutes:  30,
			DefaultDurationMinutes: 60,
			RescheduleCutoffHours:  3,
			Timezone:               "UTC",
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 20,
			Burst:             40,
		},
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("CREDIT_SERVICE_URL"); v != "" {
		cfg.CreditService.URL = v
	}
}

// Validate проверяет согласованность значений
func (c *Config) Validate() error {
	var errs []error

	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		errs = append(errs, fmt.Errorf("server.http_port must be a valid TCP port (got %d)", c.Server.HTTPPort))
	}
	if c.Database.DBName == "" {
		errs = append(errs, errors.New("database.dbname is required"))
	}
	if c.CreditService.URL == "" {
		errs = append(errs, errors.New("credit_service.url is required"))
	}
	if c.Scheduling.BookingStepMinutes <= 0 {
		errs = append(errs, errors.New("scheduling.booking_step_minutes must be positive"))
	}
	if c.Scheduling.RescheduleStepMinutes <= 0 {
		errs = append(errs, errors.New("scheduling.reschedule_step_minutes must be positive"))
	}
	if c.Scheduling.DefaultDurationMinutes <= 0 {
		errs = append(errs, errors.New("scheduling.default_duration_minutes must be positive"))
	}
	if c.Scheduling.RescheduleCutoffHours <= 0 {
		errs = append(errs, errors.New("scheduling.reschedule_cutoff_hours must be positive"))
	}
	if c.Scheduling.MaxAdvanceDays < 0 {
		errs = append(errs, errors.New("scheduling.max_advance_days must not be negative"))
	}
	if _, err := c.Scheduling.Location(); err != nil {
		errs = append(errs, fmt.Errorf("scheduling.timezone: %w", err))
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		errs = append(errs, errors.New("rate_limit requires positive requests_per_second and burst"))
	}

	return errors.Join(errs...)
}
