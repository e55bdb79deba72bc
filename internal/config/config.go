package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	envPrefix              = "BOARDS"
	defaultHTTPAddress     = "0.0.0.0:5000"
	defaultDatabaseDriver  = DatabaseDriverSQLite
	defaultDatabasePath    = "boards.db"
	defaultLogLevel        = "info"
	defaultCookieName      = "token"
	defaultTokenTTL        = 30 * 24 * time.Hour
	defaultMediaProvider   = MediaProviderLocal
	defaultUploadDir       = "public/uploads"
	defaultPublicPrefix    = "/uploads"
	defaultMaxImageBytes   = 2 << 20
	defaultMaxPDFBytes     = 20 << 20
	defaultPdftoppmPath    = "pdftoppm"
	defaultS3Region        = "auto"
	defaultS3KeyPrefix     = "board_images"
	defaultAllowedOrigins  = "http://localhost:5173"
	defaultShutdownTimeout = 10 * time.Second
)

const (
	// DatabaseDriverSQLite stores data in a local SQLite file.
	DatabaseDriverSQLite = "sqlite"
	// DatabaseDriverPostgres stores data in PostgreSQL reached through database.dsn.
	DatabaseDriverPostgres = "postgres"
	// MediaProviderLocal stores uploads on local disk under media.upload_dir.
	MediaProviderLocal = "local"
	// MediaProviderS3 stores uploads in an S3-compatible bucket.
	MediaProviderS3 = "s3"
)

// AppConfig captures runtime configuration for the API server.
type AppConfig struct {
	HTTPAddress     string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
	Database        DatabaseConfig
	Auth            AuthConfig
	Media           MediaConfig
	LogLevel        string
}

// DatabaseConfig selects and addresses the backing database.
type DatabaseConfig struct {
	Driver string
	Path   string
	DSN    string
}

// AuthConfig configures credential issuance and transport.
type AuthConfig struct {
	SigningSecret          string
	TokenTTL               time.Duration
	CookieName             string
	CookieSecure           bool
	AllowAdminRegistration bool
}

// MediaConfig configures upload storage and PDF rasterization.
type MediaConfig struct {
	Provider      string
	UploadDir     string
	PublicPrefix  string
	MaxImageBytes int64
	MaxPDFBytes   int64
	PdftoppmPath  string
	S3            S3Config
}

// S3Config addresses an S3-compatible bucket (AWS S3, Cloudflare R2, MinIO).
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	PublicBaseURL   string
	KeyPrefix       string
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("http.address", defaultHTTPAddress)
	configViper.SetDefault("http.allowed_origins", defaultAllowedOrigins)
	configViper.SetDefault("http.shutdown_timeout", defaultShutdownTimeout)
	configViper.SetDefault("database.driver", defaultDatabaseDriver)
	configViper.SetDefault("database.path", defaultDatabasePath)
	configViper.SetDefault("auth.token_ttl", defaultTokenTTL)
	configViper.SetDefault("auth.cookie_name", defaultCookieName)
	configViper.SetDefault("auth.cookie_secure", false)
	configViper.SetDefault("auth.allow_admin_registration", false)
	configViper.SetDefault("log.level", defaultLogLevel)
	configViper.SetDefault("media.provider", defaultMediaProvider)
	configViper.SetDefault("media.upload_dir", defaultUploadDir)
	configViper.SetDefault("media.public_prefix", defaultPublicPrefix)
	configViper.SetDefault("media.max_image_bytes", defaultMaxImageBytes)
	configViper.SetDefault("media.max_pdf_bytes", defaultMaxPDFBytes)
	configViper.SetDefault("media.pdftoppm_path", defaultPdftoppmPath)
	configViper.SetDefault("media.s3.region", defaultS3Region)
	configViper.SetDefault("media.s3.key_prefix", defaultS3KeyPrefix)
}

// Load parses runtime configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddress:     configViper.GetString("http.address"),
		AllowedOrigins:  splitList(configViper.GetString("http.allowed_origins")),
		ShutdownTimeout: configViper.GetDuration("http.shutdown_timeout"),
		Database: DatabaseConfig{
			Driver: strings.ToLower(strings.TrimSpace(configViper.GetString("database.driver"))),
			Path:   configViper.GetString("database.path"),
			DSN:    configViper.GetString("database.dsn"),
		},
		Auth: AuthConfig{
			SigningSecret:          configViper.GetString("auth.signing_secret"),
			TokenTTL:               configViper.GetDuration("auth.token_ttl"),
			CookieName:             configViper.GetString("auth.cookie_name"),
			CookieSecure:           configViper.GetBool("auth.cookie_secure"),
			AllowAdminRegistration: configViper.GetBool("auth.allow_admin_registration"),
		},
		Media: MediaConfig{
			Provider:      strings.ToLower(strings.TrimSpace(configViper.GetString("media.provider"))),
			UploadDir:     configViper.GetString("media.upload_dir"),
			PublicPrefix:  configViper.GetString("media.public_prefix"),
			MaxImageBytes: configViper.GetInt64("media.max_image_bytes"),
			MaxPDFBytes:   configViper.GetInt64("media.max_pdf_bytes"),
			PdftoppmPath:  configViper.GetString("media.pdftoppm_path"),
			S3: S3Config{
				Bucket:          configViper.GetString("media.s3.bucket"),
				Region:          configViper.GetString("media.s3.region"),
				Endpoint:        configViper.GetString("media.s3.endpoint"),
				AccessKeyID:     configViper.GetString("media.s3.access_key_id"),
				SecretAccessKey: configViper.GetString("media.s3.secret_access_key"),
				PublicBaseURL:   configViper.GetString("media.s3.public_base_url"),
				KeyPrefix:       configViper.GetString("media.s3.key_prefix"),
			},
		},
		LogLevel: configViper.GetString("log.level"),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

func (c AppConfig) validate() error {
	if strings.TrimSpace(c.Auth.SigningSecret) == "" {
		return fmt.Errorf("auth.signing_secret is required")
	}
	if strings.TrimSpace(c.Auth.CookieName) == "" {
		return fmt.Errorf("auth.cookie_name is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive")
	}
	switch c.Database.Driver {
	case DatabaseDriverSQLite:
		if strings.TrimSpace(c.Database.Path) == "" {
			return fmt.Errorf("database.path is required")
		}
	case DatabaseDriverPostgres:
		if strings.TrimSpace(c.Database.DSN) == "" {
			return fmt.Errorf("database.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("database.driver %q is not supported", c.Database.Driver)
	}
	if strings.TrimSpace(c.Media.UploadDir) == "" {
		return fmt.Errorf("media.upload_dir is required")
	}
	if c.Media.MaxImageBytes <= 0 || c.Media.MaxPDFBytes <= 0 {
		return fmt.Errorf("media upload limits must be positive")
	}
	switch c.Media.Provider {
	case MediaProviderLocal:
	case MediaProviderS3:
		if strings.TrimSpace(c.Media.S3.Bucket) == "" {
			return fmt.Errorf("media.s3.bucket is required for the s3 provider")
		}
		if strings.TrimSpace(c.Media.S3.PublicBaseURL) == "" {
			return fmt.Errorf("media.s3.public_base_url is required for the s3 provider")
		}
	default:
		return fmt.Errorf("media.provider %q is not supported", c.Media.Provider)
	}
	return nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
