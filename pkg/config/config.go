package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Session storage backends.
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
	StoreBolt     = "bolt"
)

type Config struct {
	Env  string
	Port int

	Backend  BackendConfig
	Google   GoogleConfig
	Session  SessionConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Bolt     BoltConfig
	CORS     CORSConfig
	Log      LogConfig
	Metrics  MetricsConfig
}

// BackendConfig points the gateway at the academic records API.
type BackendConfig struct {
	BaseURL     string
	TokenHeader string
	// Timeout of zero leaves requests bounded only by the caller's context.
	Timeout time.Duration
}

// GoogleConfig configures the Google Identity Services button on the login screen.
type GoogleConfig struct {
	ClientID string
}

// SessionConfig controls session persistence and the console cookie.
type SessionConfig struct {
	Store         string
	KeyPrefix     string
	CookieName    string
	CookieSecret  string
	CookieTTL     time.Duration
	CookieSecure  bool
	IdleTTL       time.Duration
	SweepInterval time.Duration
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

// BoltConfig locates the embedded session database file.
type BoltConfig struct {
	Path string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool
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

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")

	cfg.Backend = BackendConfig{
		BaseURL:     strings.TrimRight(v.GetString("BACKEND_BASE_URL"), "/"),
		TokenHeader: v.GetString("BACKEND_TOKEN_HEADER"),
		Timeout:     parseDuration(v.GetString("BACKEND_TIMEOUT"), 0),
	}

	cfg.Google = GoogleConfig{ClientID: v.GetString("GOOGLE_CLIENT_ID")}

	cfg.Session = SessionConfig{
		Store:         strings.ToLower(strings.TrimSpace(v.GetString("SESSION_STORE"))),
		KeyPrefix:     v.GetString("SESSION_KEY_PREFIX"),
		CookieName:    v.GetString("SESSION_COOKIE_NAME"),
		CookieSecret:  v.GetString("SESSION_COOKIE_SECRET"),
		CookieTTL:     parseDuration(v.GetString("SESSION_COOKIE_TTL"), 30*24*time.Hour),
		CookieSecure:  v.GetBool("SESSION_COOKIE_SECURE"),
		IdleTTL:       parseDuration(v.GetString("SESSION_IDLE_TTL"), 30*time.Minute),
		SweepInterval: parseDuration(v.GetString("SESSION_SWEEP_INTERVAL"), 5*time.Minute),
	}

	switch cfg.Session.Store {
	case StoreMemory, StoreRedis, StorePostgres, StoreBolt:
	default:
		return nil, errors.New("SESSION_STORE must be one of memory, redis, postgres, bolt")
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

	cfg.Bolt = BoltConfig{Path: v.GetString("BOLT_PATH")}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Metrics = MetricsConfig{Enabled: v.GetBool("ENABLE_METRICS")}

	if cfg.Env == EnvProduction && cfg.Session.CookieSecret == defaultCookieSecret {
		return nil, errors.New("SESSION_COOKIE_SECRET must be set in production")
	}

	return cfg, nil
}

const defaultCookieSecret = "dev_console_secret"

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)

	v.SetDefault("BACKEND_BASE_URL", "http://localhost:8081")
	v.SetDefault("BACKEND_TOKEN_HEADER", "X-Auth-Token")
	v.SetDefault("BACKEND_TIMEOUT", "")

	v.SetDefault("GOOGLE_CLIENT_ID", "")

	v.SetDefault("SESSION_STORE", StoreBolt)
	v.SetDefault("SESSION_KEY_PREFIX", "console:session")
	v.SetDefault("SESSION_COOKIE_NAME", "console_session")
	v.SetDefault("SESSION_COOKIE_SECRET", defaultCookieSecret)
	v.SetDefault("SESSION_COOKIE_TTL", "720h")
	v.SetDefault("SESSION_COOKIE_SECURE", false)
	v.SetDefault("SESSION_IDLE_TTL", "30m")
	v.SetDefault("SESSION_SWEEP_INTERVAL", "5m")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "academic_console")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("BOLT_PATH", "./console-sessions.db")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_METRICS", true)
}

// isMissingFile reports a missing .env, which viper surfaces as a plain
// filesystem error when SetConfigFile is used.
func isMissingFile(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such file or directory")
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
