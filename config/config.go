package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const Production = "production"

// App holds the configuration loaded by Load.
var App *Configuration

type DatabaseOptions struct {
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"3306"`
	Database string `env:"DB_DATABASE" envDefault:"sim_talenta_gtk"`
	Username string `env:"DB_USERNAME" envDefault:"root"`
	Password string `env:"DB_PASSWORD"`
	DebugSQL bool   `env:"DEBUG_SQL" envDefault:"false"`
}

// DSN returns the MySQL data source name.
func (d *DatabaseOptions) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.Username,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type JWTOptions struct {
	Secret        string        `env:"JWT_SECRET"`
	RefreshSecret string        `env:"JWT_REFRESH_SECRET"`
	AccessTTL     time.Duration `env:"JWT_ACCESS_TTL" envDefault:"15m"`
	RefreshTTL    time.Duration `env:"JWT_REFRESH_TTL" envDefault:"168h"`
}

type MinioOptions struct {
	Endpoint  string `env:"MINIO_ENDPOINT"`
	Port      int    `env:"MINIO_PORT" envDefault:"9000"`
	UseSSL    bool   `env:"MINIO_USE_SSL" envDefault:"false"`
	AccessKey string `env:"MINIO_ACCESS_KEY" envDefault:"minioadmin"`
	SecretKey string `env:"MINIO_SECRET_KEY" envDefault:"minioadmin"`
	Bucket    string `env:"MINIO_BUCKET" envDefault:"sim-talenta-gtk"`
}

// Enabled reports whether uploads go to MinIO instead of local disk.
func (m *MinioOptions) Enabled() bool {
	return strings.TrimSpace(m.Endpoint) != ""
}

type MailOptions struct {
	Host          string `env:"SMTP_HOST"`
	Port          int    `env:"SMTP_PORT" envDefault:"587"`
	User          string `env:"SMTP_USER"`
	Pass          string `env:"SMTP_PASS"`
	From          string `env:"SMTP_FROM"`
	SkipTLSVerify bool   `env:"SMTP_SKIP_TLS_VERIFY" envDefault:"false"`
}

type ImportOptions struct {
	// DefaultPassword is given to every account created by the GTK import.
	DefaultPassword string `env:"IMPORT_DEFAULT_PASSWORD" envDefault:"gtk123"`
	EmailDomain     string `env:"IMPORT_EMAIL_DOMAIN" envDefault:"gtk.sipodi.id"`
	MaxUploadBytes  int64  `env:"IMPORT_MAX_UPLOAD_BYTES" envDefault:"20971520"`
	BcryptCost      int    `env:"IMPORT_BCRYPT_COST" envDefault:"12"`
	ReportMail      bool   `env:"IMPORT_REPORT_MAIL" envDefault:"false"`
	LockEnabled     bool   `env:"IMPORT_LOCK_ENABLED" envDefault:"true"`
}

type Configuration struct {
	Database DatabaseOptions
	JWT      JWTOptions
	Minio    MinioOptions
	Mail     MailOptions
	Import   ImportOptions

	Environment        string   `env:"ENVIRONMENT" envDefault:"development"`
	ServerPort         string   `env:"SERVER_PORT" envDefault:"8080"`
	GinMode            string   `env:"GIN_MODE"`
	LogLevel           string   `env:"LOG_LEVEL" envDefault:"info"`
	LogPath            string   `env:"LOG_PATH" envDefault:"logs/sim-talenta-api.log"`
	UploadPath         string   `env:"UPLOAD_PATH" envDefault:"./uploads"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
}

// IsProduction reports whether ENVIRONMENT is production.
func (c *Configuration) IsProduction() bool {
	return strings.EqualFold(c.Environment, Production)
}

// Validate checks settings that would otherwise fail late at request time.
func (c *Configuration) Validate() error {
	if c.IsProduction() && strings.TrimSpace(c.JWT.Secret) == "" {
		return errors.New("JWT_SECRET is required in production")
	}
	if c.Import.BcryptCost < bcrypt.MinCost || c.Import.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("IMPORT_BCRYPT_COST must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.Import.BcryptCost)
	}
	if strings.TrimSpace(c.Import.DefaultPassword) == "" {
		return errors.New("IMPORT_DEFAULT_PASSWORD must not be empty")
	}
	if c.Import.MaxUploadBytes <= 0 {
		return fmt.Errorf("IMPORT_MAX_UPLOAD_BYTES must be positive, got %d", c.Import.MaxUploadBytes)
	}
	return nil
}

// LoadEnv loads the env files that exist and reports how many were read.
func LoadEnv(envFiles []string) (int, error) {
	existing := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

// Load reads .env files and the process environment into App.
func Load() (*Configuration, error) {
	if _, err := LoadEnv([]string{".env", ".env.local"}); err != nil {
		return nil, fmt.Errorf("load env files: %w", err)
	}
	cfg := &Configuration{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.JWT.Secret == "" && !cfg.IsProduction() {
		cfg.JWT.Secret = "secret"
	}
	if cfg.JWT.RefreshSecret == "" {
		cfg.JWT.RefreshSecret = cfg.JWT.Secret + "-refresh"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	App = cfg
	return cfg, nil
}
