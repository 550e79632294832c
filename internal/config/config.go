package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port         string `yaml:"port" env:"SERVER_PORT"`
		Mode         string `yaml:"mode" env:"SERVER_MODE"`
		ReadTimeout  string `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
		WriteTimeout string `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
	} `yaml:"database"`

	JWT struct {
		Secret                string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		Issuer                string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	Redis struct {
		Enabled     bool   `yaml:"enabled" env:"REDIS_ENABLED"`
		URL         string `yaml:"url" env:"REDIS_URL"`
		SettingsTTL string `yaml:"settings_ttl" env:"REDIS_SETTINGS_TTL"`
	} `yaml:"redis"`

	Jobs struct {
		Enabled        bool   `yaml:"enabled" env:"JOBS_ENABLED"`
		PurgeSchedule  string `yaml:"purge_schedule" env:"JOBS_PURGE_SCHEDULE"`
		PurgeRetention string `yaml:"purge_retention" env:"JOBS_PURGE_RETENTION"`
	} `yaml:"jobs"`

	Metrics struct {
		Enabled bool   `yaml:"enabled" env:"METRICS_ENABLED"`
		Path    string `yaml:"path" env:"METRICS_PATH"`
	} `yaml:"metrics"`

	Storage struct {
		Path           string `yaml:"path" env:"STORAGE_PATH"`
		BaseURL        string `yaml:"base_url" env:"STORAGE_BASE_URL"`
		MaxImageSizeMB int    `yaml:"max_image_size_mb" env:"STORAGE_MAX_IMAGE_SIZE_MB"`
	} `yaml:"storage"`

	Seed struct {
		Enabled          bool   `yaml:"enabled" env:"SEED_ENABLED"`
		OrganizationName string `yaml:"organization_name" env:"SEED_ORGANIZATION_NAME"`
		FacilityName     string `yaml:"facility_name" env:"SEED_FACILITY_NAME"`
		AdminUsername    string `yaml:"admin_username" env:"SEED_ADMIN_USERNAME"`
		AdminEmail       string `yaml:"admin_email" env:"SEED_ADMIN_EMAIL"`
		AdminPassword    string `yaml:"admin_password" env:"SEED_ADMIN_PASSWORD"`
	} `yaml:"seed"`
}

// LoadConfig loads configuration from a file, an optional .env file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// loadDotEnv reads .env in development only; a missing file is not an error.
func loadDotEnv() error {
	goEnv := strings.ToLower(os.Getenv("GO_ENV"))
	if goEnv != "" && goEnv != "development" {
		return nil
	}
	if _, err := os.Stat(".env"); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load()
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.ReadTimeout = "10s"
	config.Server.WriteTimeout = "10s"

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "facilityhub"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"

	config.JWT.AccessTokenExpiration = "1h"
	config.JWT.Issuer = "facilityhub.app"

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.Redis.Enabled = false
	config.Redis.URL = "redis://localhost:6379/0"
	config.Redis.SettingsTTL = "10m"

	config.Jobs.Enabled = true
	config.Jobs.PurgeSchedule = "0 30 3 * * *"
	config.Jobs.PurgeRetention = "720h"

	config.Metrics.Enabled = true
	config.Metrics.Path = "/metrics"

	config.Storage.Path = "uploads"
	config.Storage.BaseURL = "/uploads"
	config.Storage.MaxImageSizeMB = 5

	config.Seed.Enabled = true
	config.Seed.OrganizationName = "FacilityHub"
	config.Seed.FacilityName = "Main Campus"
	config.Seed.AdminUsername = "admin"
	config.Seed.AdminEmail = "admin@facilityhub.local"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	durations := map[string]string{
		"JWT access token expiration": config.JWT.AccessTokenExpiration,
		"database connection lifetime": config.Database.ConnMaxLifetime,
		"server read timeout":          config.Server.ReadTimeout,
		"server write timeout":         config.Server.WriteTimeout,
		"redis settings ttl":           config.Redis.SettingsTTL,
		"purge retention":              config.Jobs.PurgeRetention,
	}
	for name, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s format: %w", name, err)
		}
	}

	if config.Redis.Enabled && config.Redis.URL == "" {
		return fmt.Errorf("redis url is required when redis is enabled")
	}

	if config.Jobs.Enabled && config.Jobs.PurgeSchedule == "" {
		return fmt.Errorf("purge schedule is required when jobs are enabled")
	}

	if !strings.HasPrefix(config.Storage.BaseURL, "/") {
		return fmt.Errorf("storage base url must start with '/'")
	}

	if config.Metrics.Enabled && !strings.HasPrefix(config.Metrics.Path, "/") {
		return fmt.Errorf("metrics path must start with '/'")
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// Duration parses a duration that validateConfig already checked, falling back to def.
func Duration(value string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
