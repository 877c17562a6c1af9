// Package postgres opens the shared gorm connection used by the vector index.
package postgres

import (
	"context"
	"time"

	errors "github.com/Laisky/errors/v2"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// DialInfo postgres dial info
type DialInfo struct {
	Addr,
	DBName,
	User,
	Pwd string
}

// BuildDSN builds a PostgreSQL DSN for shared database clients.
func BuildDSN(dialInfo DialInfo) string {
	return "host=" + dialInfo.Addr + " user=" + dialInfo.User + " password=" + dialInfo.Pwd + " dbname=" + dialInfo.DBName + " port=5432 sslmode=disable TimeZone=UTC"
}

// NewDB opens a gorm handle backed by pgx and verifies connectivity.
func NewDB(ctx context.Context, dialInfo DialInfo) (*gorm.DB, error) {
	dsn := BuildDSN(dialInfo)

	db, err := gorm.Open(gormPostgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "get sql db")
	}
	if err = sqlDB.PingContext(ctx); err != nil {
		return nil, errors.Wrap(err, "ping postgres")
	}

	// config db
	sqlDB.SetMaxIdleConns(6)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}
