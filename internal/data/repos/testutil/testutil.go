package testutil

import (
	"context"
	"os"
	"sync"
	"testing"

	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	kbdb "github.com/yungbote/infobase-backend/internal/data/db"
	"github.com/yungbote/infobase-backend/internal/platform/logger"
)

// sqliteDSN is shared-cache so every pooled connection sees the same in-memory database.
const sqliteDSN = "file:kb_test?mode=memory&cache=shared"

var (
	dbOnce sync.Once
	db     *gorm.DB
	dbErr  error

	logOnce sync.Once
	logg    *logger.Logger
	logErr  error
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logOnce.Do(func() {
		logg, logErr = logger.New("test")
	})
	if logErr != nil {
		tb.Fatalf("failed to init logger: %v", logErr)
	}
	return logg
}

// DB returns a migrated database. TEST_POSTGRES_DSN selects Postgres; without
// it the tests run against an in-memory SQLite database.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dbOnce.Do(func() {
		cfg := kbdb.Config{Driver: kbdb.DriverSQLite, DSN: sqliteDSN}
		if dsn := os.Getenv("TEST_POSTGRES_DSN"); dsn != "" {
			cfg = kbdb.Config{Driver: kbdb.DriverPostgres, DSN: dsn}
		}
		svc, err := kbdb.NewService(logger.NewNop(), cfg)
		if err != nil {
			dbErr = err
			return
		}
		db = svc.DB().Session(&gorm.Session{Logger: gormLogger.Default.LogMode(gormLogger.Silent)})
		if err := svc.Migrate(context.Background()); err != nil {
			dbErr = err
			return
		}
	})

	if dbErr != nil {
		tb.Fatalf("failed to init test db: %v", dbErr)
	}
	return db
}

// Tx opens a transaction that is rolled back when the test ends.
func Tx(tb testing.TB, db *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := db.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback().Error
	})
	return tx
}

// IsPostgres reports whether the shared test database is Postgres.
func IsPostgres(db *gorm.DB) bool {
	return db.Dialector.Name() == kbdb.DriverPostgres
}
