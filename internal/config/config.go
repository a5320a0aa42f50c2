package config

import (
	"fmt"
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
	Server        ServerConfig
	App           AppConfig
	Database      DatabaseConfig
	EntitlementDB EntitlementDBConfig
	Redis         RedisConfig
	Emote         EmoteConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"emote-pack-service"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	Version     string `envconfig:"APP_VERSION" default:"1.0.0"`
	AdminKey    string `envconfig:"ADMIN_KEY" default:""` // X-Admin-Key for admin endpoints
}

// DatabaseConfig holds MySQL connection settings (items and, when selected,
// entitlements).
type DatabaseConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"3306"`
	Name     string `envconfig:"DB_NAME" default:"emoteshop"`
	User     string `envconfig:"DB_USER" default:"root"`
	Password string `envconfig:"DB_PASS" default:""`
}

// EntitlementDBConfig selects the entitlement storage backend.
type EntitlementDBConfig struct {
	Type string `envconfig:"ENTITLEMENT_DB_TYPE" default:"mysql"` // mysql or sqlite
	Path string `envconfig:"ENTITLEMENT_DB_PATH" default:"./data/entitlements.db"`
}

// RedisConfig holds the activation bus settings.
type RedisConfig struct {
	Host              string `envconfig:"REDIS_HOST" default:"localhost"`
	Port              int    `envconfig:"REDIS_PORT" default:"6379"`
	Password          string `envconfig:"REDIS_PASSWORD" default:""`
	DB                int    `envconfig:"REDIS_DB" default:"0"`
	ActivationChannel string `envconfig:"REDIS_ACTIVATION_CHANNEL" default:"emote:activation"`
}

// EmoteConfig holds definition source and scheduler settings.
type EmoteConfig struct {
	DBPath            string        `envconfig:"EMOTE_DB_PATH" default:"./db/emote_db.yml"`
	PollInterval      time.Duration `envconfig:"EMOTE_POLL_INTERVAL" default:"60s"`
	MaxMaterialAmount uint16        `envconfig:"EMOTE_MAX_MATERIAL_AMOUNT" default:"30000"`
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DSN returns the MySQL data source name.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

// Address returns the Redis address in host:port format.
func (r *RedisConfig) Address() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// IsDevelopment returns true if running in development mode.
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
