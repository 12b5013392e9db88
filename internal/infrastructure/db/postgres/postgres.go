package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/bellavista/carehome-cms/internal/core/domain"
)

// Supported drivers.
const (
	DriverPostgres = "postgres"
	DriverSqlite   = "sqlite"
)

const (
	defaultMaxOpenConns = 10
	defaultConnMaxLife  = 30 * time.Minute
	slowQueryThreshold  = time.Second
)

// Config captures the settings for the content database.
type Config struct {
	Driver       string
	URL          string
	MaxOpenConns int
}

// Open connects to the content database and verifies it with a ping. A
// postgres:// URL is rewritten to postgresql:// for the pgx driver.
func Open(ctx context.Context, cfg Config, log zerolog.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case DriverPostgres, "":
		dialector = postgres.Open(NormalizeURL(cfg.URL))
	case DriverSqlite:
		dialector = sqlite.Open(cfg.URL)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         NewGormLogger(log, slowQueryThreshold),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = defaultMaxOpenConns
	}
	if cfg.Driver == DriverSqlite {
		// one writer; also keeps an in-memory database on a single connection
		maxOpen = 1
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetConnMaxLifetime(defaultConnMaxLife)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("database ping: %w", err)
	}
	return db, nil
}

// NormalizeURL rewrites the legacy postgres:// scheme.
func NormalizeURL(url string) string {
	if strings.HasPrefix(url, "postgres://") {
		return "postgresql://" + strings.TrimPrefix(url, "postgres://")
	}
	return url
}

// Migrate creates or updates every table the CMS uses.
func Migrate(ctx context.Context, db *gorm.DB) error {
	err := db.WithContext(ctx).AutoMigrate(
		&domain.User{},
		&domain.Home{},
		&domain.NewsItem{},
		&domain.FAQ{},
		&domain.Event{},
		&domain.Vacancy{},
		&domain.JobApplication{},
		&domain.ScheduledTour{},
		&domain.CareEnquiry{},
		&domain.Review{},
		&domain.MealPlan{},
		&domain.KioskCheckIn{},
	)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Ping checks the underlying connection.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
