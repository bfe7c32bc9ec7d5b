// Package db opens the SQL database backing the reference-data cache.
package db

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/diewo77/go-crm-panel/internal/refdata"
)

// DefaultSQLiteDSN is a process-local in-memory database.
const DefaultSQLiteDSN = "file::memory:?cache=shared"

// Open connects with the named driver ("sqlite" or "postgres"), retrying a
// few times to let a database container come up.
func Open(driver, dsn string, log *zap.Logger) (*gorm.DB, error) {
	if log == nil {
		log = zap.NewNop()
	}
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(NormalizeDSN(dsn))
	case "sqlite", "":
		if dsn == "" {
			dsn = DefaultSQLiteDSN
		}
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("db: unknown driver %q", driver)
	}

	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	var (
		conn *gorm.DB
		err  error
	)
	for i := 0; i < 5; i++ {
		conn, err = gorm.Open(dialector, cfg)
		if err == nil {
			break
		}
		log.Warn("database connection failed, retrying", zap.Int("attempt", i+1), zap.Error(err))
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("db: connect: %w", err)
	}
	return conn, nil
}

// Migrate creates the cache tables.
func Migrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(refdata.Models()...); err != nil {
		return fmt.Errorf("db: migrate: %w", err)
	}
	return nil
}
