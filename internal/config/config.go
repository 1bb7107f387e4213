package config

import (
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Supported database drivers
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port         string `yaml:"port" env:"SERVER_PORT"`
		Mode         string `yaml:"mode" env:"SERVER_MODE"`
		ReadTimeout  string `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
		WriteTimeout string `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
		// Proxies whose X-Forwarded-For is honoured. Empty means the peer address is the client.
		TrustedProxies []string `yaml:"trusted_proxies" env:"SERVER_TRUSTED_PROXIES"`
	} `yaml:"server"`

	Database struct {
		Driver         string `yaml:"driver" env:"DB_DRIVER"`
		ConnectTimeout string `yaml:"connect_timeout" env:"DB_CONNECT_TIMEOUT"`

		// Mongo settings
		URI        string `yaml:"uri" env:"MONGO_DB_URL"`
		Name       string `yaml:"name" env:"MONGO_DB_NAME"`
		Collection string `yaml:"collection" env:"MONGO_COLLECTION"`

		// Postgres settings
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		MigrationsDir   string `yaml:"migrations_dir" env:"DB_MIGRATIONS_DIR"`
	} `yaml:"database"`

	Storage struct {
		ImagePath      string `yaml:"image_path" env:"STORAGE_IMAGE_PATH"`
		PublicPrefix   string `yaml:"public_prefix" env:"STORAGE_PUBLIC_PREFIX"`
		MaxImageSizeMB int64  `yaml:"max_image_size_mb" env:"STORAGE_MAX_IMAGE_SIZE_MB"`
		DefaultPicture string `yaml:"default_picture" env:"STORAGE_DEFAULT_PICTURE"`
	} `yaml:"storage"`

	RateLimit struct {
		UpdateLimit  int64  `yaml:"update_limit" env:"RATE_LIMIT_UPDATE_LIMIT"`
		UpdatePeriod string `yaml:"update_period" env:"RATE_LIMIT_UPDATE_PERIOD"`
	} `yaml:"rate_limit"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS"`
	} `yaml:"cors"`

	Validation struct {
		StrictFormats bool `yaml:"strict_formats" env:"VALIDATION_STRICT_FORMATS"`
	} `yaml:"validation"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from a .env file, a YAML file and environment variables,
// in that order of increasing precedence.
func LoadConfig(configPath string) (*Config, error) {
	// A missing .env is normal outside local development
	_ = godotenv.Load()

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

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "5000"
	config.Server.Mode = "development"
	config.Server.ReadTimeout = "15s"
	config.Server.WriteTimeout = "15s"

	config.Database.Driver = DriverMongo
	config.Database.ConnectTimeout = "10s"
	config.Database.URI = "mongodb://localhost:27017"
	config.Database.Collection = "students"

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "students"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 2
	config.Database.MaxOpenConns = 10
	config.Database.ConnMaxLifetime = "1h"
	config.Database.MigrationsDir = "migrations"

	config.Storage.ImagePath = "images"
	config.Storage.PublicPrefix = "images"
	config.Storage.MaxImageSizeMB = 5
	config.Storage.DefaultPicture = "defaultPic.png"

	config.RateLimit.UpdateLimit = 20
	config.RateLimit.UpdatePeriod = "15m"

	config.CORS.AllowedOrigins = []string{"*"}

	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	for _, proxy := range config.Server.TrustedProxies {
		if net.ParseIP(proxy) != nil {
			continue
		}
		if _, _, err := net.ParseCIDR(proxy); err != nil {
			return fmt.Errorf("invalid trusted proxy %q", proxy)
		}
	}

	config.Database.Driver = strings.ToLower(strings.TrimSpace(config.Database.Driver))
	switch config.Database.Driver {
	case DriverMongo:
		if config.Database.URI == "" {
			return fmt.Errorf("mongo uri is required")
		}
	case DriverPostgres:
		if config.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if _, err := time.ParseDuration(config.Database.ConnMaxLifetime); err != nil {
			return fmt.Errorf("invalid connection max lifetime format: %w", err)
		}
	default:
		return fmt.Errorf("unsupported database driver %q", config.Database.Driver)
	}

	if config.Storage.ImagePath == "" {
		return fmt.Errorf("storage image path is required")
	}
	if config.Storage.MaxImageSizeMB <= 0 {
		return fmt.Errorf("storage max image size must be positive")
	}

	if config.RateLimit.UpdateLimit <= 0 {
		return fmt.Errorf("rate limit for updates must be positive")
	}

	for name, value := range map[string]string{
		"server read timeout":      config.Server.ReadTimeout,
		"server write timeout":     config.Server.WriteTimeout,
		"database connect timeout": config.Database.ConnectTimeout,
		"rate limit update period": config.RateLimit.UpdatePeriod,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s format: %w", name, err)
		}
	}

	return nil
}

// MaxImageSizeBytes returns the upload size limit in bytes
func (c *Config) MaxImageSizeBytes() int64 {
	return c.Storage.MaxImageSizeMB << 20
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
