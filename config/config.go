package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var (
	ErrMissingJWTSecret  = errors.New("JWT_SECRET is not set")
	ErrMissingHMACSecret = errors.New("HMAC_VERIFICATION_CODE_SECRET is not set")
	ErrInvalidPolicy     = errors.New("CODE_DISPATCH_POLICY must be dispatch_first or persist_first")
	ErrInvalidBackend    = errors.New("UPLOAD_BACKEND must be local or s3")
	ErrMissingS3Bucket   = errors.New("AWS_S3_BUCKET is required for the s3 upload backend")
)

// Code dispatch policies. See the verification service for how they apply.
const (
	DispatchFirst = "dispatch_first"
	PersistFirst  = "persist_first"
)

// Upload backends.
const (
	UploadBackendLocal = "local"
	UploadBackendS3    = "s3"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Codes    CodeConfig
	Mail     MailConfig
	CORS     CORSConfig
	Upload   UploadConfig
	S3       S3Config
	Redis    RedisConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port        string
	GinMode     string
	Environment string
}

// IsProduction controls cookie security flags.
func (s ServerConfig) IsProduction() bool {
	return s.Environment == "production"
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type JWTConfig struct {
	Secret string
	Expiry time.Duration
}

type CodeConfig struct {
	HMACSecret      string
	DispatchPolicy  string
	CleanupSchedule string
}

type MailConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// Enabled reports whether SMTP credentials are present.
func (m MailConfig) Enabled() bool {
	return m.Username != "" && m.Password != ""
}

type CORSConfig struct {
	AllowedOrigins []string
}

type UploadConfig struct {
	Backend string
	Dir     string
	MaxSize int64
}

type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	BaseURL         string // CloudFront or S3 direct URL
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type LogConfig struct {
	Format string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	mailUser := getEnv("SMTP_EMAIL", "")
	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "carauction"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
			Expiry: parseDuration(getEnv("JWT_EXPIRY", "8h"), 8*time.Hour),
		},
		Codes: CodeConfig{
			HMACSecret:      getEnv("HMAC_VERIFICATION_CODE_SECRET", ""),
			DispatchPolicy:  getEnv("CODE_DISPATCH_POLICY", DispatchFirst),
			CleanupSchedule: getEnv("CODE_CLEANUP_SCHEDULE", "@every 5m"),
		},
		Mail: MailConfig{
			Host:     getEnv("SMTP_HOST", "smtp.gmail.com"),
			Port:     getEnv("SMTP_PORT", "587"),
			Username: mailUser,
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("MAIL_FROM", mailUser),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		Upload: UploadConfig{
			Backend: getEnv("UPLOAD_BACKEND", UploadBackendLocal),
			Dir:     getEnv("UPLOAD_DIR", "./public/images"),
			MaxSize: 5 * 1024 * 1024,
		},
		S3: S3Config{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			Bucket:          getEnv("AWS_S3_BUCKET", ""),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			BaseURL:         getEnv("AWS_S3_BASE_URL", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt(getEnv("REDIS_DB", "0")),
		},
		Log: LogConfig{
			Format: getEnv("LOG_FORMAT", "console"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return ErrMissingJWTSecret
	}
	if c.Codes.HMACSecret == "" {
		return ErrMissingHMACSecret
	}
	switch c.Codes.DispatchPolicy {
	case DispatchFirst, PersistFirst:
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidPolicy, c.Codes.DispatchPolicy)
	}
	switch c.Upload.Backend {
	case UploadBackendLocal:
	case UploadBackendS3:
		if c.S3.Bucket == "" {
			return ErrMissingS3Bucket
		}
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidBackend, c.Upload.Backend)
	}
	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default %s", s, fallback)
		return fallback
	}
	return duration
}

func parseInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Printf("Invalid integer %s, using 0", s)
		return 0
	}
	return n
}

func parseSlice(s string) []string {
	if s == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
