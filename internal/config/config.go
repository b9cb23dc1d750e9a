package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server     ServerConfig
	App        AppConfig
	Cache      CacheConfig
	SnapshotDB SnapshotDBConfig
	GW2        GW2Config
	Cleanup    CleanupConfig
	Validation ValidationConfig
}

// ServerConfig holds HTTP server settings. WriteTimeout must cover a full
// collection, which can take a minute for large accounts.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"300s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"gw2vault-api"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	Debug       bool   `envconfig:"APP_DEBUG" default:"false"`
	Version     string `envconfig:"APP_VERSION" default:"1.0.0"`
	LoginKey    string `envconfig:"LOGIN_KEY" default:""` // admin endpoints; empty disables them
}

// CacheConfig holds cache settings.
type CacheConfig struct {
	Type string        `envconfig:"CACHE_TYPE" default:"memory"` // memory or redis
	TTL  time.Duration `envconfig:"CACHE_TTL" default:"10m"`

	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	RedisPrefix   string `envconfig:"REDIS_PREFIX" default:"gw2vault"`
}

// SnapshotDBConfig holds snapshot store settings.
type SnapshotDBConfig struct {
	Type string `envconfig:"SNAPSHOT_DB_TYPE" default:"sqlite"` // sqlite, postgres, mysql or mongodb
	Path string `envconfig:"SNAPSHOT_DB_PATH" default:"./data/gw2vault.db"`
	// PostgreSQL / MySQL settings
	Host     string `envconfig:"SNAPSHOT_DB_HOST" default:"localhost"`
	Port     int    `envconfig:"SNAPSHOT_DB_PORT" default:"0"`
	Name     string `envconfig:"SNAPSHOT_DB_NAME" default:"gw2vault"`
	User     string `envconfig:"SNAPSHOT_DB_USER" default:""`
	Password string `envconfig:"SNAPSHOT_DB_PASS" default:""`
	SSLMode  string `envconfig:"SNAPSHOT_DB_SSLMODE" default:"disable"`
	// MongoDB settings
	MongoURI      string `envconfig:"MONGODB_URI" default:"mongodb://localhost:27017"`
	MongoDatabase string `envconfig:"MONGODB_DATABASE" default:"gw2vault"`
}

// GW2Config holds remote API settings.
type GW2Config struct {
	BaseURL     string        `envconfig:"GW2_BASE_URL" default:"https://api.guildwars2.com"`
	Timeout     time.Duration `envconfig:"GW2_TIMEOUT" default:"30s"`
	Concurrency int           `envconfig:"GW2_CONCURRENCY" default:"10"`
	ChunkSize   int           `envconfig:"GW2_CHUNK_SIZE" default:"200"`
}

// CleanupConfig controls removal of snapshots nobody refreshed.
type CleanupConfig struct {
	Enabled   bool          `envconfig:"CLEANUP_ENABLED" default:"true"`
	Threshold time.Duration `envconfig:"CLEANUP_THRESHOLD" default:"720h"`
	Interval  time.Duration `envconfig:"CLEANUP_INTERVAL" default:"6h"`
}

// ValidationConfig holds the key validation cache settings.
type ValidationConfig struct {
	CacheTTL time.Duration `envconfig:"VALIDATION_CACHE_TTL" default:"5m"`
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RedisAddress returns the Redis address in host:port format.
func (c *CacheConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// PostgresDSN returns the PostgreSQL connection string.
func (d *SnapshotDBConfig) PostgresDSN() string {
	port := d.Port
	if port == 0 {
		port = 5432
	}
	user := d.User
	if user == "" {
		user = "postgres"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(user, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, port),
		Path:     d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}

// MySQLDSN returns the go-sql-driver data source name.
func (d *SnapshotDBConfig) MySQLDSN() string {
	port := d.Port
	if port == 0 {
		port = 3306
	}
	user := d.User
	if user == "" {
		user = "root"
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		user, d.Password, d.Host, port, d.Name)
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

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.SnapshotDB.Type {
	case "sqlite", "postgres", "postgresql", "mysql", "mongodb", "mongo":
	default:
		return fmt.Errorf("invalid SNAPSHOT_DB_TYPE %q", c.SnapshotDB.Type)
	}

	switch c.Cache.Type {
	case "memory", "redis":
	default:
		return fmt.Errorf("invalid CACHE_TYPE %q", c.Cache.Type)
	}

	if c.GW2.Concurrency < 1 {
		return fmt.Errorf("GW2_CONCURRENCY must be at least 1, got %d", c.GW2.Concurrency)
	}
	if c.GW2.ChunkSize < 1 || c.GW2.ChunkSize > 200 {
		return fmt.Errorf("GW2_CHUNK_SIZE must be between 1 and 200, got %d", c.GW2.ChunkSize)
	}

	return nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
