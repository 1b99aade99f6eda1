package testutil

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/cqox-backend/internal/data/db"
	"github.com/yungbote/cqox-backend/internal/pkg/logger"
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	return logger.Nop()
}

// DB returns a migrated database private to the calling test. It is a
// shared-cache in-memory SQLite database unless TEST_POSTGRES_DSN is set, in
// which case every test runs inside a transaction that is rolled back.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()
	cfg := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
	}

	if dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN")); dsn != "" {
		pg, err := gorm.Open(postgres.Open(dsn), cfg)
		if err != nil {
			tb.Fatalf("open postgres: %v", err)
		}
		if err := db.AutoMigrateAll(pg); err != nil {
			tb.Fatalf("migrate postgres: %v", err)
		}
		return Tx(tb, pg)
	}

	name := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	mem, err := gorm.Open(sqlite.Open(name), cfg)
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := mem.DB()
	if err != nil {
		tb.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.AutoMigrateAll(mem); err != nil {
		tb.Fatalf("migrate sqlite: %v", err)
	}
	return mem
}

func Tx(tb testing.TB, conn *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := conn.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback().Error
	})
	return tx
}
