package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	CORS        CORSConfig
	Log         LogConfig
	Timetable   TimetableConfig
	Catalog     CatalogConfig
	IndexRepair IndexRepairConfig
	DayShape    DayShapeConfig
	Export      ExportConfig
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

type JWTConfig struct {
	Secret   string
	Issuer   string
	Audience []string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// TimetableConfig toggles the timetable engine endpoints.
type TimetableConfig struct {
	Enabled         bool
	ProposalTTL     time.Duration
	UseSessionIndex bool
}

// CatalogConfig governs caching of faculty and course lookups.
type CatalogConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// IndexRepairConfig tunes session index writes and the background repair queue.
type IndexRepairConfig struct {
	Workers          int
	Retries          int
	RetryDelay       time.Duration
	WriteConcurrency int
}

// ExportConfig controls signed export download links. Links are disabled without a secret.
type ExportConfig struct {
	LinkSecret string
	LinkTTL    time.Duration
}

// DayShapeConfig is the institute default used when a request carries no time slot config.
type DayShapeConfig struct {
	StartTime         string
	EndTime           string
	SessionMinutes    int
	ShortBreakMinutes int
	LunchStart        string
	LunchMinutes      int
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
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

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
		Audience: splitAndTrim(v.GetString("JWT_AUDIENCE")),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Timetable = TimetableConfig{
		Enabled:         v.GetBool("ENABLE_TIMETABLES"),
		ProposalTTL:     parseDuration(v.GetString("TIMETABLE_PROPOSAL_TTL"), 30*time.Minute),
		UseSessionIndex: v.GetBool("TIMETABLE_USE_SESSION_INDEX"),
	}

	cfg.Catalog = CatalogConfig{
		CacheEnabled: v.GetBool("CATALOG_CACHE_ENABLED"),
		CacheTTL:     parseDuration(v.GetString("CATALOG_CACHE_TTL"), 5*time.Minute),
	}

	cfg.IndexRepair = IndexRepairConfig{
		Workers:          v.GetInt("INDEX_REPAIR_WORKERS"),
		Retries:          v.GetInt("INDEX_REPAIR_RETRIES"),
		RetryDelay:       parseDuration(v.GetString("INDEX_REPAIR_RETRY_DELAY"), 2*time.Second),
		WriteConcurrency: v.GetInt("INDEX_WRITE_CONCURRENCY"),
	}

	cfg.Export = ExportConfig{
		LinkSecret: v.GetString("EXPORT_LINK_SECRET"),
		LinkTTL:    parseDuration(v.GetString("EXPORT_LINK_TTL"), 24*time.Hour),
	}

	cfg.DayShape = DayShapeConfig{
		StartTime:         v.GetString("DEFAULT_DAY_START"),
		EndTime:           v.GetString("DEFAULT_DAY_END"),
		SessionMinutes:    v.GetInt("DEFAULT_SESSION_MINUTES"),
		ShortBreakMinutes: v.GetInt("DEFAULT_SHORT_BREAK_MINUTES"),
		LunchStart:        v.GetString("DEFAULT_LUNCH_START"),
		LunchMinutes:      v.GetInt("DEFAULT_LUNCH_MINUTES"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "timetable_engine")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "")
	v.SetDefault("JWT_AUDIENCE", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_TIMETABLES", true)
	v.SetDefault("TIMETABLE_PROPOSAL_TTL", "30m")
	v.SetDefault("TIMETABLE_USE_SESSION_INDEX", true)

	v.SetDefault("CATALOG_CACHE_ENABLED", false)
	v.SetDefault("CATALOG_CACHE_TTL", "5m")

	v.SetDefault("INDEX_REPAIR_WORKERS", 2)
	v.SetDefault("INDEX_REPAIR_RETRIES", 3)
	v.SetDefault("INDEX_REPAIR_RETRY_DELAY", "2s")
	v.SetDefault("INDEX_WRITE_CONCURRENCY", 4)

	v.SetDefault("EXPORT_LINK_SECRET", "")
	v.SetDefault("EXPORT_LINK_TTL", "24h")

	v.SetDefault("DEFAULT_DAY_START", "09:00")
	v.SetDefault("DEFAULT_DAY_END", "17:00")
	v.SetDefault("DEFAULT_SESSION_MINUTES", 60)
	v.SetDefault("DEFAULT_SHORT_BREAK_MINUTES", 10)
	v.SetDefault("DEFAULT_LUNCH_START", "12:00")
	v.SetDefault("DEFAULT_LUNCH_MINUTES", 60)
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
