// Package mongo provides a wrapper for the MongoDB client.
package mongo

import (
	"context"
	"net/url"
	"time"

	errors "github.com/Laisky/errors/v2"
	mongoLib "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const defaultTimeout = 30 * time.Second

// DB is the exportable mongo handle used by the chat dao.
type DB interface {
	Close(ctx context.Context) error
	GetCol(colName string) *mongoLib.Collection
	CurrentDB() *mongoLib.Database
}

// DialInfo defines the MongoDB connection information.
type DialInfo struct {
	Addr,
	DBName,
	User,
	Pwd string
}

type db struct {
	cli    *mongoLib.Client
	dbName string
}

// buildMongoURI builds a MongoDB connection URI from the given dial info.
func buildMongoURI(dialInfo DialInfo) string {
	uri := &url.URL{
		Scheme: "mongodb",
		Host:   dialInfo.Addr,
		Path:   "/" + dialInfo.DBName,
	}
	if dialInfo.User != "" || dialInfo.Pwd != "" {
		uri.User = url.UserPassword(dialInfo.User, dialInfo.Pwd)
	}
	return uri.String()
}

// NewDB connects to mongodb and verifies the connection with a ping.
func NewDB(ctx context.Context, dialInfo DialInfo) (DB, error) {
	connectCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cli, err := mongoLib.Connect(connectCtx, options.Client().ApplyURI(buildMongoURI(dialInfo)))
	if err != nil {
		return nil, errors.Wrap(err, "connect mongo")
	}
	if err = cli.Ping(connectCtx, readpref.Primary()); err != nil {
		return nil, errors.Wrap(err, "ping mongo")
	}

	return &db{cli: cli, dbName: dialInfo.DBName}, nil
}

func (d *db) Close(ctx context.Context) error {
	return errors.Wrap(d.cli.Disconnect(ctx), "disconnect mongo")
}

func (d *db) GetCol(colName string) *mongoLib.Collection {
	return d.CurrentDB().Collection(colName)
}

func (d *db) CurrentDB() *mongoLib.Database {
	return d.cli.Database(d.dbName)
}
