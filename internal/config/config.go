package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server       ServerConfig
	App          AppConfig
	Log          LogConfig
	Auth         AuthConfig
	Cache        CacheConfig
	InspectionDB InspectionDBConfig
	Ingest       IngestConfig
	RateLimit    RateLimitConfig
	CORS         CORSConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"PORT" default:"3000"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"120s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
	TrustProxy      bool          `envconfig:"SERVER_TRUST_PROXY" default:"false"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"irisk-inspections-api"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	Version     string `envconfig:"APP_VERSION" default:"1.0.0"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"json"` // json or text
}

// AuthConfig holds access-token verification settings.
type AuthConfig struct {
	JWTSecret string `envconfig:"AUTH_JWT_SECRET"`
	Issuer    string `envconfig:"AUTH_JWT_ISSUER" default:""`
	Audience  string `envconfig:"AUTH_JWT_AUDIENCE" default:"authenticated"`
}

// CacheConfig holds Redis settings for shared rate-limit counters.
type CacheConfig struct {
	RedisEnabled  bool   `envconfig:"REDIS_ENABLED" default:"false"`
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	KeyPrefix     string `envconfig:"REDIS_KEY_PREFIX" default:"irisk:ratelimit"`
}

// InspectionDBConfig holds inspection database settings.
type InspectionDBConfig struct {
	Type string `envconfig:"INSPECTION_DB_TYPE" default:"sqlite"` // sqlite, postgres or mysql
	Path string `envconfig:"INSPECTION_DB_PATH" default:"./data/inspections.db"`
	// PostgreSQL / MySQL settings
	Host     string        `envconfig:"INSPECTION_DB_HOST" default:"localhost"`
	Port     int           `envconfig:"INSPECTION_DB_PORT" default:"5432"`
	Name     string        `envconfig:"INSPECTION_DB_NAME" default:"irisk"`
	User     string        `envconfig:"INSPECTION_DB_USER" default:"postgres"`
	Password string        `envconfig:"INSPECTION_DB_PASS" default:""`
	SSLMode  string        `envconfig:"INSPECTION_DB_SSLMODE" default:"disable"`
	MaxConns int           `envconfig:"INSPECTION_DB_MAX_CONNS" default:"10"`
	Timeout  time.Duration `envconfig:"INSPECTION_DB_TIMEOUT" default:"10s"`
}

// IngestConfig holds bulk upload limits.
type IngestConfig struct {
	ChunkSize     int   `envconfig:"INGEST_CHUNK_SIZE" default:"1000"`
	MaxSubmission int   `envconfig:"INGEST_MAX_SUBMISSION" default:"10000"`
	ListLimit     int   `envconfig:"INGEST_LIST_LIMIT" default:"1000"`
	MaxBodyBytes  int64 `envconfig:"INGEST_MAX_BODY_BYTES" default:"33554432"`
}

// RateLimitConfig holds fixed-window throttling settings.
type RateLimitConfig struct {
	Window time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"60s"`
	Global int64         `envconfig:"RATE_LIMIT_GLOBAL" default:"10"`
	Bulk   int64         `envconfig:"RATE_LIMIT_BULK" default:"3"`
}

// CORSConfig holds cross-origin settings.
type CORSConfig struct {
	AllowedOrigins []string `envconfig:"FRONTEND_URL" default:"http://localhost:5173"`
}

// PostgresDSN returns the PostgreSQL connection string.
func (i *InspectionDBConfig) PostgresDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(i.User, i.Password),
		Host:     fmt.Sprintf("%s:%d", i.Host, i.Port),
		Path:     i.Name,
		RawQuery: "sslmode=" + url.QueryEscape(i.SSLMode),
	}
	return u.String()
}

// MySQLDSN returns the MySQL data source name.
func (i *InspectionDBConfig) MySQLDSN() string {
	c := mysql.NewConfig()
	c.User = i.User
	c.Passwd = i.Password
	c.Net = "tcp"
	c.Addr = fmt.Sprintf("%s:%d", i.Host, i.Port)
	c.DBName = i.Name
	c.ParseTime = true
	c.Loc = time.UTC
	return c.FormatDSN()
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RedisAddress returns the Redis address in host:port format.
func (c *CacheConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode.
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// IsProduction returns true if running in production mode.
func (a *AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Validate checks cross-field constraints that envconfig cannot express.
func (c *Config) Validate() error {
	var errs []error

	if len(c.Auth.JWTSecret) < 32 {
		errs = append(errs, errors.New("AUTH_JWT_SECRET must be at least 32 characters"))
	}

	switch strings.ToLower(c.InspectionDB.Type) {
	case "sqlite", "postgres", "postgresql", "mysql":
	default:
		errs = append(errs, fmt.Errorf("INSPECTION_DB_TYPE %q is not one of sqlite, postgres, mysql", c.InspectionDB.Type))
	}
	if c.InspectionDB.Timeout <= 0 {
		errs = append(errs, errors.New("INSPECTION_DB_TIMEOUT must be positive"))
	}

	if c.Ingest.ChunkSize < 1 || c.Ingest.ChunkSize > 1000 {
		errs = append(errs, errors.New("INGEST_CHUNK_SIZE must be between 1 and 1000"))
	}
	if c.Ingest.MaxSubmission < 1 {
		errs = append(errs, errors.New("INGEST_MAX_SUBMISSION must be positive"))
	}
	if c.Ingest.ListLimit < 1 || c.Ingest.ListLimit > 1000 {
		errs = append(errs, errors.New("INGEST_LIST_LIMIT must be between 1 and 1000"))
	}
	if c.Ingest.MaxBodyBytes < 1 {
		errs = append(errs, errors.New("INGEST_MAX_BODY_BYTES must be positive"))
	}

	if c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_WINDOW must be positive"))
	}
	if c.RateLimit.Global < 1 || c.RateLimit.Bulk < 1 {
		errs = append(errs, errors.New("RATE_LIMIT_GLOBAL and RATE_LIMIT_BULK must be positive"))
	}

	return errors.Join(errs...)
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
