package db

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/cqox-backend/internal/pkg/logger"
	"github.com/yungbote/cqox-backend/internal/platform/envutil"
)

const defaultSQLitePath = "emotion.db"

type Service struct {
	db      *gorm.DB
	log     *logger.Logger
	dialect string
}

// ResolveURL picks the connection string: DATABASE_URL first, then the
// discrete POSTGRES_* variables, then a local SQLite file.
func ResolveURL() string {
	if raw := envutil.String("DATABASE_URL", ""); raw != "" {
		return raw
	}
	if host := envutil.String("POSTGRES_HOST", ""); host != "" {
		return fmt.Sprintf(
			"postgres://%s:%s@%s:%s/%s?sslmode=disable",
			envutil.String("POSTGRES_USER", "postgres"),
			envutil.String("POSTGRES_PASSWORD", ""),
			host,
			envutil.String("POSTGRES_PORT", "5432"),
			envutil.String("POSTGRES_NAME", "cqox"),
		)
	}
	return "sqlite://" + defaultSQLitePath
}

func Open(databaseURL string, logg *logger.Logger) (*Service, error) {
	serviceLog := logg.With("service", "DatabaseService")

	dialector, dialect, err := dialectorFor(databaseURL)
	if err != nil {
		return nil, err
	}

	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", dialect, err)
	}
	if dialect == "sqlite" {
		// Writers serialize on SQLite; one connection avoids SQLITE_BUSY under the worker pool.
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	}

	serviceLog.Info("database connected", "dialect", dialect)
	return &Service{db: db, log: serviceLog, dialect: dialect}, nil
}

func (s *Service) DB() *gorm.DB { return s.db }

func (s *Service) Dialect() string { return s.dialect }

func (s *Service) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func dialectorFor(databaseURL string) (gorm.Dialector, string, error) {
	raw := strings.TrimSpace(databaseURL)
	switch {
	case raw == "":
		return nil, "", fmt.Errorf("empty database url")
	case strings.HasPrefix(raw, "postgres://"), strings.HasPrefix(raw, "postgresql://"):
		return postgres.Open(raw), "postgres", nil
	case strings.HasPrefix(raw, "sqlite://"):
		return sqlite.Open(strings.TrimPrefix(raw, "sqlite://")), "sqlite", nil
	case strings.HasPrefix(raw, "file:"), raw == ":memory:", strings.HasSuffix(raw, ".db"):
		return sqlite.Open(raw), "sqlite", nil
	default:
		return nil, "", fmt.Errorf("unsupported database url scheme: %q", redactURL(raw))
	}
}

func redactURL(raw string) string {
	if i := strings.Index(raw, "://"); i >= 0 {
		return raw[:i+3] + "..."
	}
	if len(raw) > 12 {
		return raw[:12] + "..."
	}
	return raw
}
