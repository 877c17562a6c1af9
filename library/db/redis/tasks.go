package redis

import (
	"context"
	"encoding/json"
	"time"

	errors "github.com/Laisky/errors/v2"
	redisLib "github.com/redis/go-redis/v9"
)

// AddIngestMessageTask enqueues a message for asynchronous embedding.
//
// The ingestion pipeline is an independent consumer; a full or unreachable
// queue must not block the primary message write, so callers treat errors
// from this method as a warning, not a failure.
func (db *DB) AddIngestMessageTask(ctx context.Context, messageID string) error {
	task := &IngestMessageTask{
		MessageID: messageID,
		CreatedAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(task)
	if err != nil {
		return errors.Wrap(err, "marshal ingest task")
	}

	if err = db.db.RPush(ctx, KeyTaskIngestMessage, payload).Err(); err != nil {
		return errors.Wrap(err, "rpush ingest task")
	}

	return nil
}

// PopIngestMessageTask blocks up to timeout waiting for the next ingestion task.
// A nil task with nil error means the wait timed out.
func (db *DB) PopIngestMessageTask(ctx context.Context, timeout time.Duration) (*IngestMessageTask, error) {
	vals, err := db.db.BLPop(ctx, timeout, KeyTaskIngestMessage).Result()
	if err != nil {
		if errors.Is(err, redisLib.Nil) {
			return nil, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, errors.WithStack(err)
		}
		return nil, errors.Wrap(err, "blpop ingest task")
	}
	if len(vals) != 2 {
		return nil, nil
	}

	task := new(IngestMessageTask)
	if err = json.Unmarshal([]byte(vals[1]), task); err != nil {
		return nil, errors.Wrap(err, "unmarshal ingest task")
	}

	return task, nil
}
