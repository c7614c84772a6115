package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the whole application configuration, populated from
// environment variables.
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Email    EmailConfig
	MinIO    MinIOConfig
	Upload   UploadConfig
	Blog     BlogConfig
	Admin    AdminConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
	BaseURL     string // used to build verification links in emails
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	ExpiryDays int // token lifetime, default 7 days
}

type EmailConfig struct {
	SMTPHost string
	SMTPPort string
	From     string
	// ContactTo receives contact form submissions.
	ContactTo string
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type UploadConfig struct {
	MaxFileSize int64 // bytes
	MaxFiles    int   // per multi-upload request
}

type BlogConfig struct {
	// AutoApproveComments controls whether public comment submissions are
	// visible immediately or held for moderation.
	AutoApproveComments bool
	DefaultPageSize     int
	AdminPageSize       int
}

type AdminConfig struct {
	// Seed account, created at startup when absent.
	Name     string
	Email    string
	Password string
}

// Load reads config from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Connect Digitals API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			BaseURL:     getEnv("APP_BASE_URL", "http://localhost:8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "connectdigitals"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 25),
			MinConns: getEnvInt("DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:     getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			ExpiryDays: getEnvInt("JWT_EXPIRE_DAYS", 7),
		},
		Email: EmailConfig{
			SMTPHost:  getEnv("SMTP_HOST", "localhost"),
			SMTPPort:  getEnv("SMTP_PORT", "1025"),
			From:      getEnv("EMAIL_FROM", "noreply@connectdigitals.com"),
			ContactTo: getEnv("CONTACT_EMAIL", "hello@connectdigitals.com"),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:    getEnv("MINIO_BUCKET", "connectdigitals"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Upload: UploadConfig{
			MaxFileSize: int64(getEnvInt("MAX_FILE_SIZE", 5*1024*1024)),
			MaxFiles:    getEnvInt("MAX_UPLOAD_FILES", 5),
		},
		Blog: BlogConfig{
			AutoApproveComments: getEnvBool("BLOG_AUTO_APPROVE_COMMENTS", true),
			DefaultPageSize:     getEnvInt("BLOG_PAGE_SIZE", 6),
			AdminPageSize:       getEnvInt("ADMIN_PAGE_SIZE", 10),
		},
		Admin: AdminConfig{
			Name:     getEnv("ADMIN_NAME", "Admin User"),
			Email:    getEnv("ADMIN_EMAIL", ""),
			Password: getEnv("ADMIN_PASSWORD", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate refuses unsafe defaults outside development.
func (c *Config) Validate() error {
	if c.App.Environment == "production" {
		if c.JWT.Secret == "your-secret-key-change-in-production" {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD must be set in production")
		}
	}

	if c.JWT.ExpiryDays < 1 {
		return fmt.Errorf("JWT_EXPIRE_DAYS must be at least 1")
	}

	return nil
}

// TokenExpiry returns the JWT lifetime as a duration.
func (c *Config) TokenExpiry() time.Duration {
	return time.Duration(c.JWT.ExpiryDays) * 24 * time.Hour
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
