package web

import (
	"context"

	gmw "github.com/Laisky/gin-middlewares/v7"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/gin-gonic/gin"

	"github.com/Eli-Gooding/ChatGenius-App/internal/assistant"
	"github.com/Eli-Gooding/ChatGenius-App/internal/chat/model"
	"github.com/Eli-Gooding/ChatGenius-App/library/auth"
	"github.com/Eli-Gooding/ChatGenius-App/library/jwt"
	"github.com/Eli-Gooding/ChatGenius-App/library/log"
)

// AssistantService is the slice of the assistant pipeline the HTTP layer needs.
type AssistantService interface {
	Answer(ctx context.Context, query string) (*assistant.AnswerResult, error)
	IngestMessage(ctx context.Context, record assistant.MessageRecord) error
	IngestDocument(ctx context.Context, record assistant.DocumentRecord) (int, error)
}

// ChatStore is the slice of the chat dao the HTTP layer needs.
type ChatStore interface {
	CreateMessage(ctx context.Context, msg *model.Message) error
	GetChannel(ctx context.Context, id string) (*model.Channel, error)
	GetFile(ctx context.Context, id string) (*model.File, error)
	DownloadFile(ctx context.Context, file *model.File) ([]byte, error)
}

// IngestQueue hands newly created messages to the asynchronous ingestion
// consumer. Nil when the queue is not configured.
type IngestQueue interface {
	AddIngestMessageTask(ctx context.Context, messageID string) error
}

// Controller serves the assistant and chat REST endpoints.
type Controller struct {
	assistant AssistantService
	chat      ChatStore
	queue     IngestQueue
	logger    logSDK.Logger

	// authFunc resolves the caller's claims; overridable in tests.
	authFunc func(ctx context.Context, uc *jwt.UserClaims) error
}

// NewController wires the HTTP controller.
func NewController(svc AssistantService, chat ChatStore, queue IngestQueue, logger logSDK.Logger) *Controller {
	if logger == nil {
		logger = log.Logger.Named("web")
	}
	return &Controller{
		assistant: svc,
		chat:      chat,
		queue:     queue,
		logger:    logger,
		authFunc: func(ctx context.Context, uc *jwt.UserClaims) error {
			return auth.Instance.GetUserClaims(ctx, uc)
		},
	}
}

func (c *Controller) requestLogger(ctx *gin.Context, name string) logSDK.Logger {
	if ctxLogger := gmw.GetLogger(ctx); ctxLogger != nil {
		return ctxLogger.Named(name)
	}
	return c.logger.Named(name)
}

// RegisterRoutes attaches the REST endpoints to the gin engine.
func (c *Controller) RegisterRoutes(server *gin.Engine) {
	server.POST("/api/ai-assistant", c.handleAssistantQuery)
	server.POST("/api/files/process", c.handleFileProcess)
	server.POST("/api/messages", c.handleMessageCreate)
}
