// Package redis wraps the shared redis client used for ingestion hand-off.
package redis

import (
	"github.com/redis/go-redis/v9"
)

// DB is a wrapper for go-redis
type DB struct {
	db *redis.Client
}

// NewDB creates a new DB instance
func NewDB(opt *redis.Options) *DB {
	return &DB{
		db: redis.NewClient(opt),
	}
}
