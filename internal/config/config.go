package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port           int      `yaml:"port"`
		AllowedOrigins []string `yaml:"allowedOrigins"`
		MaxUploadMB    int64    `yaml:"maxUploadMB"`
		RateLimit      struct {
			RPS   float64 `yaml:"rps"`
			Burst int     `yaml:"burst"`
		} `yaml:"rateLimit"`
	} `yaml:"server"`

	Database struct {
		Driver   string `yaml:"driver"` // mysql | postgres | none
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslMode"`
	} `yaml:"database"`

	Storage struct {
		Driver   string `yaml:"driver"` // minio | local
		LocalDir string `yaml:"localDir"`
	} `yaml:"storage"`

	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	AI struct {
		APIKey string `yaml:"apiKey"`
		Model  string `yaml:"model"`
	} `yaml:"ai"`

	Analysis struct {
		Signals          string `yaml:"signals"` // content | openai
		AutoValidateRule string `yaml:"autoValidateRule"`
		MaxDocumentMB    int64  `yaml:"maxDocumentMB"`
	} `yaml:"analysis"`

	// Auth maps tenant -> API key. Empty disables authentication.
	Auth struct {
		APIKeys map[string]string `yaml:"apiKeys"`
	} `yaml:"auth"`

	Log struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"log"`
}

const DefaultAutoValidateRule = "score >= 80 && size(errors) == 0"

// Load baca file config.yaml, lalu timpa dengan environment variable.
// A missing file is not an error; defaults and env still apply.
func Load(path string) (*Config, error) {
	// .env is optional, only useful for local development
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SERVER_PORT: %w", err)
		}
		c.Server.Port = port
	}
	setString(&c.Database.Driver, "DATABASE_DRIVER")
	setString(&c.Database.Host, "DATABASE_HOST")
	setString(&c.Database.User, "DATABASE_USER")
	setString(&c.Database.Password, "DATABASE_PASSWORD")
	setString(&c.Database.Name, "DATABASE_NAME")
	if v := os.Getenv("DATABASE_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid DATABASE_PORT: %w", err)
		}
		c.Database.Port = port
	}
	setString(&c.Storage.Driver, "STORAGE_DRIVER")
	setString(&c.Minio.Endpoint, "MINIO_ENDPOINT")
	setString(&c.Minio.AccessKey, "MINIO_ACCESS_KEY")
	setString(&c.Minio.SecretKey, "MINIO_SECRET_KEY")
	setString(&c.Minio.BucketName, "MINIO_BUCKET")
	setString(&c.AI.APIKey, "OPENAI_API_KEY")
	setString(&c.AI.Model, "OPENAI_MODEL")
	setString(&c.Analysis.Signals, "ANALYSIS_SIGNALS")
	setString(&c.Analysis.AutoValidateRule, "AUTO_VALIDATE_RULE")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.File, "LOG_FILE")
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.MaxUploadMB <= 0 {
		c.Server.MaxUploadMB = 10
	}
	if c.Server.RateLimit.RPS <= 0 {
		c.Server.RateLimit.RPS = 5
	}
	if c.Server.RateLimit.Burst <= 0 {
		c.Server.RateLimit.Burst = 20
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "none"
	}
	if c.Database.Port == 0 {
		switch c.Database.Driver {
		case "mysql":
			c.Database.Port = 3306
		case "postgres":
			c.Database.Port = 5432
		}
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "local"
	}
	if c.Storage.LocalDir == "" {
		c.Storage.LocalDir = "./data/documents"
	}
	if c.Minio.BucketName == "" {
		c.Minio.BucketName = "rental-documents"
	}
	if c.Analysis.Signals == "" {
		c.Analysis.Signals = "content"
	}
	if strings.TrimSpace(c.Analysis.AutoValidateRule) == "" {
		c.Analysis.AutoValidateRule = DefaultAutoValidateRule
	}
	if c.Analysis.MaxDocumentMB <= 0 {
		c.Analysis.MaxDocumentMB = 20
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks the combinations that would only fail later at runtime.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "mysql", "postgres", "none":
	default:
		return fmt.Errorf("unsupported database driver: %s (allowed: mysql, postgres, none)", c.Database.Driver)
	}
	switch c.Storage.Driver {
	case "local":
	case "minio":
		if c.Minio.Endpoint == "" {
			return errors.New("minio.endpoint is required when storage.driver is minio")
		}
	default:
		return fmt.Errorf("unsupported storage driver: %s (allowed: minio, local)", c.Storage.Driver)
	}
	switch c.Analysis.Signals {
	case "content":
	case "openai":
		if c.AI.APIKey == "" {
			return errors.New("ai.apiKey is required when analysis.signals is openai")
		}
	default:
		return fmt.Errorf("unsupported signal source: %s (allowed: content, openai)", c.Analysis.Signals)
	}
	return nil
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	dsn := mysql.NewConfig()
	dsn.User = c.Database.User
	dsn.Passwd = c.Database.Password
	dsn.Net = "tcp"
	dsn.Addr = net.JoinHostPort(c.Database.Host, strconv.Itoa(c.Database.Port))
	dsn.DBName = c.Database.Name
	dsn.ParseTime = true
	dsn.Loc = time.UTC
	dsn.Params = map[string]string{"charset": "utf8mb4"}
	return dsn.FormatDSN()
}

// PostgresDSN builds a lib/pq connection URL.
func (c *Config) PostgresDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port),
		Path:     c.Database.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.Database.SSLMode),
	}
	return u.String()
}

// MigrationURL returns the database URL in the form golang-migrate expects.
func (c *Config) MigrationURL() (string, error) {
	switch c.Database.Driver {
	case "mysql":
		return "mysql://" + c.MySQLDSN(), nil
	case "postgres":
		return c.PostgresDSN(), nil
	default:
		return "", fmt.Errorf("migrations need a database driver, got %q", c.Database.Driver)
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
