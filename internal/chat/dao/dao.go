// Package dao is the data access object for chat messages and files.
package dao

import (
	"context"
	"io"
	"time"

	errors "github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	"github.com/Laisky/zap"
	minioLib "github.com/minio/minio-go/v7"
	"go.mongodb.org/mongo-driver/bson"
	mongoLib "go.mongodb.org/mongo-driver/mongo"

	"github.com/Eli-Gooding/ChatGenius-App/internal/chat/model"
	"github.com/Eli-Gooding/ChatGenius-App/library/db/mongo"
	"github.com/Eli-Gooding/ChatGenius-App/library/log"
)

const (
	colMessages = "messages"
	colChannels = "channels"
	colFiles    = "files"
)

// Dao reads and writes the chat primary store and the file blob store.
type Dao struct {
	db     mongo.DB
	minio  *minioLib.Client
	bucket string
}

// New creates a chat dao.
func New(db mongo.DB, minioCli *minioLib.Client, bucket string) *Dao {
	return &Dao{
		db:     db,
		minio:  minioCli,
		bucket: bucket,
	}
}

func (d *Dao) GetMessagesCol() *mongoLib.Collection {
	return d.db.GetCol(colMessages)
}
func (d *Dao) GetChannelsCol() *mongoLib.Collection {
	return d.db.GetCol(colChannels)
}
func (d *Dao) GetFilesCol() *mongoLib.Collection {
	return d.db.GetCol(colFiles)
}

// CreateMessage inserts the message and, for thread replies, flags the
// parent as having replies.
func (d *Dao) CreateMessage(ctx context.Context, msg *model.Message) error {
	logger := gmw.GetLogger(ctx)
	if logger == nil {
		logger = log.Logger.Named("chat_dao")
	}

	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	if _, err := d.GetMessagesCol().InsertOne(ctx, msg); err != nil {
		return errors.Wrap(err, "insert message")
	}

	if msg.ParentMessageID != "" {
		_, err := d.GetMessagesCol().UpdateOne(ctx,
			bson.M{"_id": msg.ParentMessageID},
			bson.M{"$set": bson.M{"has_reply": true}},
		)
		if err != nil {
			// the reply itself is durable; the flag is presentational
			logger.Warn("mark parent has_reply",
				zap.Error(err),
				zap.String("parent_id", msg.ParentMessageID))
		}
	}

	return nil
}

// GetMessage loads one message by ID.
func (d *Dao) GetMessage(ctx context.Context, id string) (*model.Message, error) {
	msg := new(model.Message)
	err := d.GetMessagesCol().FindOne(ctx, bson.M{"_id": id}).Decode(msg)
	if err != nil {
		if errors.Is(err, mongoLib.ErrNoDocuments) {
			return nil, errors.Wrapf(model.ErrNotFound, "message %q", id)
		}
		return nil, errors.Wrapf(err, "get message %q", id)
	}
	return msg, nil
}

// GetChannel loads one channel by ID.
func (d *Dao) GetChannel(ctx context.Context, id string) (*model.Channel, error) {
	channel := new(model.Channel)
	err := d.GetChannelsCol().FindOne(ctx, bson.M{"_id": id}).Decode(channel)
	if err != nil {
		if errors.Is(err, mongoLib.ErrNoDocuments) {
			return nil, errors.Wrapf(model.ErrNotFound, "channel %q", id)
		}
		return nil, errors.Wrapf(err, "get channel %q", id)
	}
	return channel, nil
}

// GetFile loads one file metadata record by ID.
func (d *Dao) GetFile(ctx context.Context, id string) (*model.File, error) {
	file := new(model.File)
	err := d.GetFilesCol().FindOne(ctx, bson.M{"_id": id}).Decode(file)
	if err != nil {
		if errors.Is(err, mongoLib.ErrNoDocuments) {
			return nil, errors.Wrapf(model.ErrNotFound, "file %q", id)
		}
		return nil, errors.Wrapf(err, "get file %q", id)
	}
	return file, nil
}

// DownloadFile fetches the file bytes from blob storage.
func (d *Dao) DownloadFile(ctx context.Context, file *model.File) ([]byte, error) {
	obj, err := d.minio.GetObject(ctx, d.bucket, file.StoragePath, minioLib.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrapf(err, "get object %q", file.StoragePath)
	}
	defer obj.Close()

	cnt, err := io.ReadAll(obj)
	if err != nil {
		return nil, errors.Wrapf(err, "read object %q", file.StoragePath)
	}
	return cnt, nil
}
