// config предоставляет структуру конфигурации сервиса и функции
// загрузки из файла/переменных окружения с предсказуемым приоритетом.
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// MinJWTSecretLen — минимальная длина секрета подписи токенов.
// Недостаточная длина — фатальная ошибка старта, а не предупреждение.
const MinJWTSecretLen = 32

// Config — корневая конфигурация сервиса.
// Источники значений (по убыванию приоритета):
//  1. явный путь через флаг --config;
//  2. путь в переменной окружения CONFIG_PATH;
//  3. файл local.yaml из рабочей директории;
//  4. переменные окружения (cleanenv).
type Config struct {
	Env        string           `yaml:"env" env:"ENV" env-default:"local"`
	HTTP       HTTPConfig       `yaml:"http"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Auth       AuthConfig       `yaml:"auth"`
	Cookies    CookieConfig     `yaml:"cookies"`
	DB         DBConfig         `yaml:"db"`
	Revocation RevocationConfig `yaml:"revocation"`
	Timeouts   TimeoutConfig    `yaml:"timeouts"`
}

// TimeoutConfig — таймауты сервиса.
type TimeoutConfig struct {
	Service time.Duration `yaml:"service" env:"SERVICE_TIMEOUT" env-default:"5s"`
}

// HTTPConfig — сетевые настройки публичного HTTP-сервера.
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"50080"`
}

// MetricsConfig — отдельный HTTP для Prometheus и health-проб.
type MetricsConfig struct {
	Host string `yaml:"host" env:"METRICS_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"METRICS_PORT" env-default:"50085"`
}

// Addr возвращает адрес в формате host:port.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// Addr возвращает адрес в формате host:port.
func (m MetricsConfig) Addr() string {
	return net.JoinHostPort(m.Host, m.Port)
}

// AuthConfig содержит параметры выпуска и валидации токенов.
// Соотношение времён жизни access/refresh по умолчанию — 15m к 168h (1:672).
type AuthConfig struct {
	JWTSecret       string        `yaml:"jwt_secret" env:"JWT_SECRET" env-required:"true"`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl" env:"ACCESS_TOKEN_TTL" env-default:"15m"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl" env:"REFRESH_TOKEN_TTL" env-default:"168h"`
	Issuer          string        `yaml:"issuer"   env:"ISSUER" env-default:"auth-service"`
	Audience        []string      `yaml:"audience" env:"AUDIENCE" env-default:"appointment-api"`
}

// CookieConfig — транспортировка токенов в cookie.
// SameSite: "lax" для same-site деплоя, "none" для cross-site (требует Secure).
type CookieConfig struct {
	Domain   string `yaml:"domain"    env:"COOKIE_DOMAIN" env-default:""`
	Secure   bool   `yaml:"secure"    env:"COOKIE_SECURE" env-default:"false"`
	SameSite string `yaml:"same_site" env:"COOKIE_SAME_SITE" env-default:"lax"`
}

// DBConfig — настройки подключения к базе данных.
type DBConfig struct {
	DatabaseURL string `yaml:"db_url" env:"DATABASE_URL" env-required:"true"`
}

// RevocationConfig — выбор бэкенда хранилища отозванных токенов.
// Backend: "memory" (один процессный экземпляр) или "redis" (несколько инстансов).
type RevocationConfig struct {
	Backend       string        `yaml:"backend"        env:"REVOCATION_BACKEND" env-default:"memory"`
	RedisURL      string        `yaml:"redis_url"      env:"REVOCATION_REDIS_URL"`
	SweepInterval time.Duration `yaml:"sweep_interval" env:"REVOCATION_SWEEP_INTERVAL" env-default:"5m"`
}

// MustLoad — обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

// Load загружает конфигурацию по приоритету:
// 1) явный путь; 2) CONFIG_PATH; 3) ./local.yaml; 4) ENV.
// После чтения файла ENV-переменные накладываются поверх значений из YAML.
func Load(path string) (*Config, error) {
	var cfg Config

	// чтение файла + overlay ENV.
	tryRead := func(p string) (*Config, error) {
		if p == "" {
			return nil, fmt.Errorf("empty config path")
		}

		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		return &cfg, nil
	}

	// 1) Явный путь.
	if path != "" {
		c, err := tryRead(path)
		if err != nil {
			return nil, err
		}

		return c, validate(c)
	}

	// 2) CONFIG_PATH.
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		c, err := tryRead(envPath)
		if err != nil {
			return nil, err
		}

		return c, validate(c)
	}

	// 3) ./local.yaml.
	if _, err := os.Stat("local.yaml"); err == nil {
		c, err := tryRead("local.yaml")
		if err != nil {
			return nil, err
		}

		return c, validate(c)
	}

	// 4) Только ENV.
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}

	return &cfg, validate(&cfg)
}

// validate — инварианты конфигурации, нарушение которых фатально на старте.
func validate(cfg *Config) error {
	if len(cfg.Auth.JWTSecret) < MinJWTSecretLen {
		return fmt.Errorf("jwt_secret must be at least %d characters", MinJWTSecretLen)
	}

	switch cfg.Cookies.SameSite {
	case "lax":
	case "none":
		if !cfg.Cookies.Secure {
			return fmt.Errorf("cookies.same_site=none requires cookies.secure=true")
		}
	default:
		return fmt.Errorf("cookies.same_site must be \"lax\" or \"none\", got %q", cfg.Cookies.SameSite)
	}

	switch cfg.Revocation.Backend {
	case "memory":
	case "redis":
		if cfg.Revocation.RedisURL == "" {
			return fmt.Errorf("revocation.backend=redis requires revocation.redis_url")
		}
	default:
		return fmt.Errorf("revocation.backend must be \"memory\" or \"redis\", got %q", cfg.Revocation.Backend)
	}

	return nil
}
