// Package config loads process configuration from environment variables.
package config

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/bellavista/carehome-cms/internal/core/domain"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"

	minSecretLength = 32
)

var devOrigins = []string{"http://localhost:3000", "http://localhost:5173"}

type Config struct {
	Port      string `env:"PORT, default=8080"`
	Env       string `env:"ENV, default=development"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=false"`
	Workers   int    `env:"WORKERS, default=8"`

	Auth     AuthConfig
	Database DatabaseConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Upload   UploadConfig
	S3       S3Config
	Mail     MailConfig
	Reviews  ReviewsConfig
	CSRF     CSRFConfig
	Backup   BackupConfig
}

type AuthConfig struct {
	JWTSecret       string        `env:"JWT_SECRET"`
	JWTTTL          time.Duration `env:"JWT_TTL, default=1h"`
	AdminUsername   string        `env:"ADMIN_USERNAME"`
	AdminPassword   string        `env:"ADMIN_PASSWORD"`
	MaxAttempts     int           `env:"LOGIN_MAX_ATTEMPTS, default=5"`
	Window          time.Duration `env:"LOGIN_WINDOW, default=15m"`
	LockoutDuration time.Duration `env:"LOCKOUT_DURATION, default=15m"`
	// WindowStore selects where lockout and rate-limit state lives.
	WindowStore string `env:"WINDOW_STORE, default=memory"`

	// GeneratedSecret is set when JWT_SECRET was missing outside production
	// and a throwaway secret was generated. Tokens do not survive a restart.
	GeneratedSecret bool
}

type DatabaseConfig struct {
	Driver string `env:"DATABASE_DRIVER, default=postgres"`
	URL    string `env:"DATABASE_URL, default=postgresql://localhost:5432/carehome?sslmode=disable"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB, default=carehome_cms"`
	// AuditSink is "mongo" or "log".
	AuditSink string `env:"AUDIT_SINK, default=log"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"ALLOWED_ORIGINS"`
	AllowAnyOrigin bool     `env:"ALLOW_ANY_ORIGIN, default=false"`
}

type UploadConfig struct {
	MaxMB int    `env:"MAX_UPLOAD_MB, default=50"`
	Dir   string `env:"UPLOAD_DIR, default=./uploads"`
}

type S3Config struct {
	Bucket    string `env:"S3_BUCKET"`
	Region    string `env:"AWS_REGION, default=eu-west-2"`
	Endpoint  string `env:"S3_ENDPOINT"`
	AccessKey string `env:"AWS_ACCESS_KEY_ID"`
	SecretKey string `env:"AWS_SECRET_ACCESS_KEY"`
	PublicURL string `env:"S3_PUBLIC_URL"`
}

type MailConfig struct {
	Host       string `env:"SMTP_HOST"`
	Port       int    `env:"SMTP_PORT, default=587"`
	Username   string `env:"SMTP_USERNAME"`
	Password   string `env:"SMTP_PASSWORD"`
	Sender     string `env:"MAIL_SENDER"`
	AdminEmail string `env:"ADMIN_EMAIL"`
}

type ReviewsConfig struct {
	PlacesAPIKey string          `env:"GOOGLE_PLACES_API_KEY"`
	Locations    ReviewLocations `env:"REVIEW_LOCATIONS"`
	Schedule     string          `env:"REVIEW_IMPORT_SCHEDULE, default=@every 12h"`
}

type CSRFConfig struct {
	Enabled bool          `env:"CSRF_ENABLED, default=false"`
	TTL     time.Duration `env:"CSRF_TTL, default=1h"`
}

type BackupConfig struct {
	// Schedule for automatic home content backups; empty disables them.
	Schedule string `env:"BACKUP_SCHEDULE"`
}

// ReviewLocations decodes "Name=place_id;Name=place_id".
type ReviewLocations []domain.ReviewLocation

func (l *ReviewLocations) EnvDecode(val string) error {
	var out ReviewLocations
	for _, part := range strings.Split(val, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, id, ok := strings.Cut(part, "=")
		name, id = strings.TrimSpace(name), strings.TrimSpace(id)
		if !ok || name == "" || id == "" {
			return fmt.Errorf("review location %q: want Name=place_id", part)
		}
		out = append(out, domain.ReviewLocation{Name: name, PlaceID: id})
	}
	*l = out
	return nil
}

func (c *Config) IsProduction() bool { return c.Env == EnvProduction }

// Load reads the environment, applies development fallbacks and validates
// the result.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

// MustLoad is Load for process startup.
func MustLoad(ctx context.Context) *Config {
	cfg, err := Load(ctx)
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, err
	}
	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))
	cfg.CORS.AllowedOrigins = trimAll(cfg.CORS.AllowedOrigins)
	if cfg.Mail.Sender == "" {
		cfg.Mail.Sender = cfg.Mail.Username
	}

	if !cfg.IsProduction() {
		if len(cfg.CORS.AllowedOrigins) == 0 {
			cfg.CORS.AllowedOrigins = devOrigins
		}
		if cfg.Auth.JWTSecret == "" {
			secret, err := randomSecret()
			if err != nil {
				return nil, err
			}
			cfg.Auth.JWTSecret = secret
			cfg.Auth.GeneratedSecret = true
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate refuses configurations that would be unsafe to run.
func (c *Config) Validate() error {
	var errs []error
	if c.Env != EnvProduction && c.Env != EnvDevelopment && c.Env != "test" {
		errs = append(errs, fmt.Errorf("ENV must be production, development or test, got %q", c.Env))
	}
	if len(c.Auth.JWTSecret) < minSecretLength && c.IsProduction() {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes in production", minSecretLength))
	}
	if c.Auth.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	if c.Auth.MaxAttempts <= 0 || c.Auth.Window <= 0 || c.Auth.LockoutDuration <= 0 {
		errs = append(errs, errors.New("LOGIN_MAX_ATTEMPTS, LOGIN_WINDOW and LOCKOUT_DURATION must be positive"))
	}
	if c.Auth.WindowStore != "memory" && c.Auth.WindowStore != "redis" {
		errs = append(errs, fmt.Errorf("WINDOW_STORE must be memory or redis, got %q", c.Auth.WindowStore))
	}
	if c.Auth.WindowStore == "redis" && c.Redis.Addr == "" {
		errs = append(errs, errors.New("REDIS_ADDR is required when WINDOW_STORE=redis"))
	}
	if c.Database.Driver != "postgres" && c.Database.Driver != "sqlite" {
		errs = append(errs, fmt.Errorf("DATABASE_DRIVER must be postgres or sqlite, got %q", c.Database.Driver))
	}
	if c.Mongo.AuditSink != "mongo" && c.Mongo.AuditSink != "log" {
		errs = append(errs, fmt.Errorf("AUDIT_SINK must be mongo or log, got %q", c.Mongo.AuditSink))
	}
	if c.Upload.MaxMB <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_MB must be positive"))
	}
	if c.CSRF.TTL <= 0 {
		errs = append(errs, errors.New("CSRF_TTL must be positive"))
	}

	for _, o := range c.CORS.AllowedOrigins {
		if o == "*" && !c.CORS.AllowAnyOrigin {
			errs = append(errs, errors.New("ALLOWED_ORIGINS=* requires ALLOW_ANY_ORIGIN=true"))
		}
	}
	if c.IsProduction() && len(c.CORS.AllowedOrigins) == 0 {
		errs = append(errs, errors.New("ALLOWED_ORIGINS is required in production"))
	}
	return errors.Join(errs...)
}

func trimAll(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func randomSecret() (string, error) {
	b := make([]byte, minSecretLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate jwt secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
