package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Database     DatabaseConfig     `yaml:"database"`
	JWT          JWTConfig          `yaml:"jwt"`
	Security     SecurityConfig     `yaml:"security"`
	Paths        PathsConfig        `yaml:"paths"`
	Uploads      UploadsConfig      `yaml:"uploads"`
	Messaging    MessagingConfig    `yaml:"messaging"`
	DefaultAdmin DefaultAdminConfig `yaml:"default_admin"`
}

type ServerConfig struct {
	Host         string   `yaml:"host"`
	Port         int      `yaml:"port"`
	Mode         string   `yaml:"mode"`
	CORSOrigins  []string `yaml:"cors_origins"`
	MaxBodyBytes int64    `yaml:"max_body_bytes"`
}

type DatabaseConfig struct {
	Type     string         `yaml:"type"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	MySQL    MySQLConfig    `yaml:"mysql"`
	Postgres PostgresConfig `yaml:"postgres"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	Charset  string `yaml:"charset"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

type JWTConfig struct {
	Secret    string `yaml:"secret"`
	ExpiresIn string `yaml:"expires_in"`
	Issuer    string `yaml:"issuer"`
}

type SecurityConfig struct {
	BcryptCost       int             `yaml:"bcrypt_cost"`
	MaxFailedLogins  int             `yaml:"max_failed_logins"`
	LockoutDuration  string          `yaml:"lockout_duration"`
	PasswordResetTTL string          `yaml:"password_reset_ttl"`
	ExposeResetToken bool            `yaml:"expose_reset_token"`
	RateLimit        RateLimitConfig `yaml:"rate_limit"`
}

type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
	Burst             int  `yaml:"burst"`
}

type PathsConfig struct {
	Uploads string `yaml:"uploads"`
}

type UploadsConfig struct {
	MaxFileMB int `yaml:"max_file_mb"`
	MaxFiles  int `yaml:"max_files"`
}

type MessagingConfig struct {
	AMQPURL  string `yaml:"amqp_url"`
	Exchange string `yaml:"exchange"`
}

type DefaultAdminConfig struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// envOverrides lists the JUBA_* variables that win over the config file.
type envOverrides struct {
	JWTSecret     string `envconfig:"JWT_SECRET"`
	DBType        string `envconfig:"DB_TYPE"`
	DBPath        string `envconfig:"DB_PATH"`
	MySQLHost     string `envconfig:"MYSQL_HOST"`
	MySQLUser     string `envconfig:"MYSQL_USER"`
	MySQLPassword string `envconfig:"MYSQL_PASSWORD"`
	MySQLDatabase string `envconfig:"MYSQL_DATABASE"`
	PostgresDSN   string `envconfig:"POSTGRES_DSN"`
	Port          int    `envconfig:"PORT"`
	UploadsPath   string `envconfig:"UPLOADS_PATH"`
	AMQPURL       string `envconfig:"AMQP_URL"`
}

var Global *Config

// Load reads the configuration file and environment variables
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Ensure data directory exists for SQLite
	if cfg.Database.Type == "sqlite" {
		dataDir := filepath.Dir(cfg.Database.SQLite.Path)
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	if err := os.MkdirAll(cfg.Paths.Uploads, 0755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}

	Global = &cfg
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	var env envOverrides
	if err := envconfig.Process("juba", &env); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}

	if env.JWTSecret != "" {
		cfg.JWT.Secret = env.JWTSecret
	}
	if env.DBType != "" {
		cfg.Database.Type = env.DBType
	}
	if env.DBPath != "" {
		cfg.Database.SQLite.Path = env.DBPath
	}
	if env.MySQLHost != "" {
		cfg.Database.MySQL.Host = env.MySQLHost
	}
	if env.MySQLUser != "" {
		cfg.Database.MySQL.Username = env.MySQLUser
	}
	if env.MySQLPassword != "" {
		cfg.Database.MySQL.Password = env.MySQLPassword
	}
	if env.MySQLDatabase != "" {
		cfg.Database.MySQL.Database = env.MySQLDatabase
	}
	if env.PostgresDSN != "" {
		cfg.Database.Postgres.DSN = env.PostgresDSN
	}
	if env.Port != 0 {
		cfg.Server.Port = env.Port
	}
	if env.UploadsPath != "" {
		cfg.Paths.Uploads = env.UploadsPath
	}
	if env.AMQPURL != "" {
		cfg.Messaging.AMQPURL = env.AMQPURL
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 5000
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "debug"
	}
	if c.Server.MaxBodyBytes == 0 {
		c.Server.MaxBodyBytes = 2 << 20
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"*"}
	}
	if c.Database.Type == "" {
		c.Database.Type = "sqlite"
	}
	if c.Database.SQLite.Path == "" {
		c.Database.SQLite.Path = "data/juba-homez.db"
	}
	if c.Database.MySQL.Port == 0 {
		c.Database.MySQL.Port = 3306
	}
	if c.Database.MySQL.Charset == "" {
		c.Database.MySQL.Charset = "utf8mb4"
	}
	if c.JWT.ExpiresIn == "" {
		c.JWT.ExpiresIn = "168h"
	}
	if c.JWT.Issuer == "" {
		c.JWT.Issuer = "juba-homez"
	}
	if c.Security.BcryptCost == 0 {
		c.Security.BcryptCost = 12
	}
	if c.Security.MaxFailedLogins == 0 {
		c.Security.MaxFailedLogins = 5
	}
	if c.Security.LockoutDuration == "" {
		c.Security.LockoutDuration = "15m"
	}
	if c.Security.PasswordResetTTL == "" {
		c.Security.PasswordResetTTL = "1h"
	}
	if c.Security.RateLimit.RequestsPerMinute == 0 {
		c.Security.RateLimit.RequestsPerMinute = 120
	}
	if c.Security.RateLimit.Burst == 0 {
		c.Security.RateLimit.Burst = 40
	}
	if c.Paths.Uploads == "" {
		c.Paths.Uploads = "uploads"
	}
	if c.Uploads.MaxFileMB == 0 {
		c.Uploads.MaxFileMB = 25
	}
	if c.Uploads.MaxFiles == 0 {
		c.Uploads.MaxFiles = 10
	}
	if c.Messaging.Exchange == "" {
		c.Messaging.Exchange = "juba.notifications"
	}
}

// Validate checks the settings that have no sensible default.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return errors.New("JWT secret is required")
	}
	switch c.Database.Type {
	case "sqlite":
	case "mysql":
		if c.Database.MySQL.Username == "" {
			return errors.New("MySQL username is required")
		}
		if c.Database.MySQL.Database == "" {
			return errors.New("MySQL database name is required")
		}
	case "postgres":
		if c.Database.Postgres.DSN == "" {
			return errors.New("Postgres DSN is required")
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.Database.Type)
	}
	return nil
}

// TokenTTL returns the session token lifetime, 7 days when unset or invalid.
func (c *Config) TokenTTL() time.Duration {
	return parseDuration(c.JWT.ExpiresIn, 7*24*time.Hour)
}

// LockoutDuration returns how long an account stays locked after too many failures.
func (c *Config) LockoutDuration() time.Duration {
	return parseDuration(c.Security.LockoutDuration, 15*time.Minute)
}

// PasswordResetTTL returns the lifetime of password reset tokens.
func (c *Config) PasswordResetTTL() time.Duration {
	return parseDuration(c.Security.PasswordResetTTL, time.Hour)
}

// MaxUploadBytes returns the per-file upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Uploads.MaxFileMB) << 20
}

// Address returns host:port for the HTTP listener.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func parseDuration(value string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil || d <= 0 {
		return def
	}
	return d
}
