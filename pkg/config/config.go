package config

import (
	"errors"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Store backends selectable with STORE_BACKEND.
const (
	StorePostgres = "postgres"
	StoreKV       = "kv"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string
	Timezone  string

	Store     StoreConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Cache     CacheConfig
	Dashboard DashboardConfig
}

// StoreConfig picks the persistence backend for classes, attendance and tuition.
type StoreConfig struct {
	Backend        string
	MigrationsPath string
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig verifies tokens issued by the hosted auth provider.
type JWTConfig struct {
	Secret   string
	Issuer   string
	Required bool
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// CacheConfig toggles the Redis response cache.
type CacheConfig struct {
	Enabled     bool
	CalendarTTL time.Duration
}

// DashboardConfig governs dashboard cache tuning and list sizes.
type DashboardConfig struct {
	CacheTTL         time.Duration
	OverdueListLimit int
}

// DatabaseURL renders the connection settings as a postgres URL for migrate.
func (c DatabaseConfig) DatabaseURL() string {
	var b strings.Builder
	b.WriteString("postgres://")
	b.WriteString(c.User)
	if c.Password != "" {
		b.WriteString(":")
		b.WriteString(c.Password)
	}
	b.WriteString("@")
	b.WriteString(c.Host)
	b.WriteString(":")
	b.WriteString(strconv.Itoa(c.Port))
	b.WriteString("/")
	b.WriteString(c.Name)
	if c.SSLMode != "" {
		b.WriteString("?sslmode=")
		b.WriteString(c.SSLMode)
	}
	return b.String()
}

// Location resolves the configured timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	if c == nil || c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")
	cfg.Timezone = v.GetString("TIMEZONE")

	backend := strings.ToLower(strings.TrimSpace(v.GetString("STORE_BACKEND")))
	if backend != StoreKV {
		backend = StorePostgres
	}
	cfg.Store = StoreConfig{
		Backend:        backend,
		MigrationsPath: v.GetString("MIGRATIONS_PATH"),
	}

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:   v.GetString("JWT_SECRET"),
		Issuer:   v.GetString("JWT_ISSUER"),
		Required: v.GetBool("AUTH_REQUIRED"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Cache = CacheConfig{
		Enabled:     v.GetBool("ENABLE_CACHE"),
		CalendarTTL: parseDuration(v.GetString("CALENDAR_CACHE_TTL"), 2*time.Minute),
	}

	overdueLimit := v.GetInt("OVERDUE_LIST_LIMIT")
	if overdueLimit <= 0 {
		overdueLimit = 10
	}
	cfg.Dashboard = DashboardConfig{
		CacheTTL:         parseDuration(v.GetString("DASHBOARD_CACHE_TTL"), 5*time.Minute),
		OverdueListLimit: overdueLimit,
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")
	v.SetDefault("TIMEZONE", "Asia/Ho_Chi_Minh")

	v.SetDefault("STORE_BACKEND", StorePostgres)
	v.SetDefault("MIGRATIONS_PATH", "migrations")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "lms")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "")
	v.SetDefault("AUTH_REQUIRED", false)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_CACHE", false)
	v.SetDefault("CALENDAR_CACHE_TTL", "2m")
	v.SetDefault("DASHBOARD_CACHE_TTL", "5m")
	v.SetDefault("OVERDUE_LIST_LIMIT", 10)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
