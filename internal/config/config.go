package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported media store providers.
const (
	ProviderCloudinary = "cloudinary"
	ProviderS3         = "s3"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Store      StoreConfig
	Cloudinary CloudinaryConfig
	S3         S3Config
	Upload     UploadConfig
	Log        LogConfig
	CORS       CORSConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	Environment     string        `mapstructure:"environment"`
}

// IsProduction reports whether the server runs in production mode.
func (s *ServerConfig) IsProduction() bool {
	return s.Environment == "production"
}

// StoreConfig selects the media store backend.
type StoreConfig struct {
	Provider string `mapstructure:"provider"`
}

// CloudinaryConfig holds Cloudinary account credentials.
type CloudinaryConfig struct {
	CloudName string `mapstructure:"cloud_name"`
	APIKey    string `mapstructure:"api_key"`
	APISecret string `mapstructure:"api_secret"`
	Folder    string `mapstructure:"folder"`
}

// S3Config holds settings for an S3-compatible media store.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PublicBaseURL string `mapstructure:"public_base_url"`
	Folder        string `mapstructure:"folder"`
}

// UploadConfig holds staging and fan-out settings for the upload relay.
type UploadConfig struct {
	StagingDir       string `mapstructure:"staging_dir"`
	MaxConcurrency   int    `mapstructure:"max_concurrency"`
	MaxFileSizeMB    int64  `mapstructure:"max_file_size_mb"`
	MaxRequestSizeMB int64  `mapstructure:"max_request_size_mb"`
	MaxMemoryMB      int64  `mapstructure:"max_memory_mb"`
}

// MaxFileBytes returns the per-file size cap in bytes. Zero disables the cap.
func (u *UploadConfig) MaxFileBytes() int64 {
	return u.MaxFileSizeMB * 1024 * 1024
}

// MaxRequestBytes returns the cap on a whole upload request body in bytes. Zero disables
// the cap.
func (u *UploadConfig) MaxRequestBytes() int64 {
	return u.MaxRequestSizeMB * 1024 * 1024
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// AllowAll reports whether any origin is accepted.
func (c *CORSConfig) AllowAll() bool {
	return len(c.AllowedOrigins) == 0 || (len(c.AllowedOrigins) == 1 && c.AllowedOrigins[0] == "*")
}

// Load reads configuration from a .env file (if present) and environment variables.
// Cloudinary credentials and PORT are read from their conventional unprefixed names;
// everything else uses the RELAY_ prefix.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("RELAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", "5000")
	v.SetDefault("server.read_timeout", "60s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.environment", "development")

	v.SetDefault("store.provider", ProviderCloudinary)
	v.SetDefault("cloudinary.folder", "uploads")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "media-relay")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.public_base_url", "")
	v.SetDefault("s3.folder", "uploads")

	// Upload defaults
	v.SetDefault("upload.staging_dir", "uploads")
	v.SetDefault("upload.max_concurrency", 4)
	v.SetDefault("upload.max_file_size_mb", 100)
	v.SetDefault("upload.max_request_size_mb", 512)
	v.SetDefault("upload.max_memory_mb", 32)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 7)
	v.SetDefault("log.compress", false)

	v.SetDefault("cors.allowed_origins", "*")

	envBindings := map[string]string{
		"server.port":                "PORT",
		"server.read_timeout":        "RELAY_SERVER_READ_TIMEOUT",
		"server.write_timeout":       "RELAY_SERVER_WRITE_TIMEOUT",
		"server.shutdown_timeout":    "RELAY_SERVER_SHUTDOWN_TIMEOUT",
		"server.environment":         "RELAY_SERVER_ENVIRONMENT",
		"store.provider":             "RELAY_STORE_PROVIDER",
		"cloudinary.cloud_name":      "CLOUDINARY_CLOUD_NAME",
		"cloudinary.api_key":         "CLOUDINARY_API_KEY",
		"cloudinary.api_secret":      "CLOUDINARY_API_SECRET",
		"cloudinary.folder":          "RELAY_CLOUDINARY_FOLDER",
		"s3.region":                  "RELAY_S3_REGION",
		"s3.bucket":                  "RELAY_S3_BUCKET",
		"s3.endpoint":                "RELAY_S3_ENDPOINT",
		"s3.access_key":              "RELAY_S3_ACCESS_KEY",
		"s3.secret_key":              "RELAY_S3_SECRET_KEY",
		"s3.public_base_url":         "RELAY_S3_PUBLIC_BASE_URL",
		"s3.folder":                  "RELAY_S3_FOLDER",
		"upload.staging_dir":         "RELAY_UPLOAD_STAGING_DIR",
		"upload.max_concurrency":     "RELAY_UPLOAD_MAX_CONCURRENCY",
		"upload.max_file_size_mb":    "RELAY_UPLOAD_MAX_FILE_SIZE_MB",
		"upload.max_request_size_mb": "RELAY_UPLOAD_MAX_REQUEST_SIZE_MB",
		"upload.max_memory_mb":       "RELAY_UPLOAD_MAX_MEMORY_MB",
		"log.level":                  "RELAY_LOG_LEVEL",
		"log.format":                 "RELAY_LOG_FORMAT",
		"log.file":                   "RELAY_LOG_FILE",
		"log.max_size_mb":            "RELAY_LOG_MAX_SIZE_MB",
		"log.max_backups":            "RELAY_LOG_MAX_BACKUPS",
		"log.max_age_days":           "RELAY_LOG_MAX_AGE_DAYS",
		"log.compress":               "RELAY_LOG_COMPRESS",
		"cors.allowed_origins":       "RELAY_CORS_ALLOWED_ORIGINS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	cfg.Server = ServerConfig{
		Port:            strings.TrimPrefix(v.GetString("server.port"), ":"),
		ReadTimeout:     v.GetDuration("server.read_timeout"),
		WriteTimeout:    v.GetDuration("server.write_timeout"),
		ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		Environment:     v.GetString("server.environment"),
	}
	cfg.Store = StoreConfig{
		Provider: strings.ToLower(strings.TrimSpace(v.GetString("store.provider"))),
	}
	cfg.Cloudinary = CloudinaryConfig{
		CloudName: v.GetString("cloudinary.cloud_name"),
		APIKey:    v.GetString("cloudinary.api_key"),
		APISecret: v.GetString("cloudinary.api_secret"),
		Folder:    v.GetString("cloudinary.folder"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PublicBaseURL: v.GetString("s3.public_base_url"),
		Folder:        v.GetString("s3.folder"),
	}
	cfg.Upload = UploadConfig{
		StagingDir:       v.GetString("upload.staging_dir"),
		MaxConcurrency:   v.GetInt("upload.max_concurrency"),
		MaxFileSizeMB:    v.GetInt64("upload.max_file_size_mb"),
		MaxRequestSizeMB: v.GetInt64("upload.max_request_size_mb"),
		MaxMemoryMB:      v.GetInt64("upload.max_memory_mb"),
	}
	cfg.Log = LogConfig{
		Level:      v.GetString("log.level"),
		Format:     v.GetString("log.format"),
		File:       v.GetString("log.file"),
		MaxSizeMB:  v.GetInt("log.max_size_mb"),
		MaxBackups: v.GetInt("log.max_backups"),
		MaxAgeDays: v.GetInt("log.max_age_days"),
		Compress:   v.GetBool("log.compress"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{AllowedOrigins: corsOrigins}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected provider is fully configured.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("config: server port is required")
	}
	if c.Upload.StagingDir == "" {
		return errors.New("config: upload staging dir is required")
	}
	if c.Upload.MaxConcurrency < 1 {
		return fmt.Errorf("config: upload max concurrency must be positive, got %d", c.Upload.MaxConcurrency)
	}
	if c.Upload.MaxFileSizeMB < 0 {
		return fmt.Errorf("config: upload max file size must not be negative, got %d", c.Upload.MaxFileSizeMB)
	}
	if c.Upload.MaxRequestSizeMB < 0 {
		return fmt.Errorf("config: upload max request size must not be negative, got %d", c.Upload.MaxRequestSizeMB)
	}

	switch c.Store.Provider {
	case ProviderCloudinary:
		var missing []string
		if c.Cloudinary.CloudName == "" {
			missing = append(missing, "CLOUDINARY_CLOUD_NAME")
		}
		if c.Cloudinary.APIKey == "" {
			missing = append(missing, "CLOUDINARY_API_KEY")
		}
		if c.Cloudinary.APISecret == "" {
			missing = append(missing, "CLOUDINARY_API_SECRET")
		}
		if len(missing) > 0 {
			return fmt.Errorf("config: cloudinary credentials missing: %s", strings.Join(missing, ", "))
		}
		if !singleSegment(c.Cloudinary.Folder) {
			return fmt.Errorf("config: cloudinary folder must be a single path segment, got %q", c.Cloudinary.Folder)
		}
	case ProviderS3:
		if c.S3.Bucket == "" {
			return errors.New("config: s3 bucket is required")
		}
		if c.S3.PublicBaseURL == "" {
			return errors.New("config: s3 public base url is required")
		}
		if !singleSegment(c.S3.Folder) {
			return fmt.Errorf("config: s3 folder must be a single path segment, got %q", c.S3.Folder)
		}
	default:
		return fmt.Errorf("config: unknown store provider %q", c.Store.Provider)
	}
	return nil
}

// singleSegment reports whether folder is one non-empty path segment. Public IDs are
// derived from the last two URL segments, so stored assets must be exactly
// <folder>/<name>.
func singleSegment(folder string) bool {
	f := strings.Trim(folder, "/")
	return f != "" && !strings.Contains(f, "/")
}
