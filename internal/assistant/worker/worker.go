// Package worker consumes queued ingestion tasks so embedding failures
// never block the primary message write path.
package worker

import (
	"context"
	"time"

	errors "github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"

	"github.com/Eli-Gooding/ChatGenius-App/internal/assistant"
	"github.com/Eli-Gooding/ChatGenius-App/internal/chat/model"
	"github.com/Eli-Gooding/ChatGenius-App/library/db/redis"
	"github.com/Eli-Gooding/ChatGenius-App/library/log"
)

const (
	popTimeout = 5 * time.Second

	// retryBackoff keeps the loop from spinning hot when the queue is
	// unreachable and BLPop fails immediately.
	retryBackoff = time.Second
)

// TaskQueue yields pending message ingestion tasks.
type TaskQueue interface {
	PopIngestMessageTask(ctx context.Context, timeout time.Duration) (*redis.IngestMessageTask, error)
}

// MessageSource loads messages from the primary store.
type MessageSource interface {
	GetMessage(ctx context.Context, id string) (*model.Message, error)
}

// Ingestor embeds and indexes a single message.
type Ingestor interface {
	IngestMessage(ctx context.Context, record assistant.MessageRecord) error
}

// IngestWorker drains the ingestion queue. Tasks are at-least-once; the
// deterministic index IDs make reprocessing harmless.
type IngestWorker struct {
	queue    TaskQueue
	messages MessageSource
	ingestor Ingestor
	logger   logSDK.Logger
}

// NewIngestWorker wires a worker instance.
func NewIngestWorker(queue TaskQueue, messages MessageSource, ingestor Ingestor, logger logSDK.Logger) (*IngestWorker, error) {
	if queue == nil {
		return nil, errors.New("task queue is required")
	}
	if messages == nil {
		return nil, errors.New("message source is required")
	}
	if ingestor == nil {
		return nil, errors.New("ingestor is required")
	}
	if logger == nil {
		logger = log.Logger.Named("ingest_worker")
	}

	return &IngestWorker{
		queue:    queue,
		messages: messages,
		ingestor: ingestor,
		logger:   logger,
	}, nil
}

// Start runs the worker loop until the context is cancelled.
func (w *IngestWorker) Start(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if err := w.RunOnce(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			w.logger.Warn("ingest worker run failed", zap.Error(err))

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(retryBackoff):
			}
		}
	}
}

// RunOnce pops at most one task and processes it. A timed-out pop is not
// an error.
func (w *IngestWorker) RunOnce(ctx context.Context) error {
	task, err := w.queue.PopIngestMessageTask(ctx, popTimeout)
	if err != nil {
		return errors.Wrap(err, "pop ingest task")
	}
	if task == nil {
		return nil
	}

	if err := w.processTask(ctx, task); err != nil {
		return errors.Wrapf(err, "process ingest task for message %q", task.MessageID)
	}
	return nil
}

func (w *IngestWorker) processTask(ctx context.Context, task *redis.IngestMessageTask) error {
	msg, err := w.messages.GetMessage(ctx, task.MessageID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			// the message was deleted before we got to it; nothing to index
			w.logger.Debug("skip ingest of missing message", zap.String("message_id", task.MessageID))
			return nil
		}
		return errors.WithStack(err)
	}

	record := assistant.MessageRecord{
		ID:          msg.ID,
		AuthorName:  msg.Username,
		ChannelName: msg.ChannelName,
		CreatedAt:   msg.CreatedAt,
		TextContent: msg.Content,
		IsReply:     msg.IsReply(),
		ParentID:    msg.ParentMessageID,
	}
	if err := w.ingestor.IngestMessage(ctx, record); err != nil {
		return errors.WithStack(err)
	}

	w.logger.Info("queued message ingested", zap.String("message_id", msg.ID))
	return nil
}
