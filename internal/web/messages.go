package web

import (
	"net/http"
	"time"

	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Eli-Gooding/ChatGenius-App/internal/assistant"
	"github.com/Eli-Gooding/ChatGenius-App/internal/chat/model"
	"github.com/Eli-Gooding/ChatGenius-App/library/jwt"
)

// handleMessageCreate stores a message and makes it searchable. The
// embedding write is a re-triggerable side effect: it is queued when a
// queue is configured, run inline otherwise, and its failure never fails
// the message write.
func (c *Controller) handleMessageCreate(ctx *gin.Context) {
	logger := c.requestLogger(ctx, "message_create")

	uc := &jwt.UserClaims{}
	if err := c.authFunc(ctx.Request.Context(), uc); err != nil {
		ctx.JSON(http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
		return
	}

	var req messageCreateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
		return
	}

	channel, err := c.chat.GetChannel(ctx.Request.Context(), req.ChannelID)
	if err != nil {
		logger.Error("fetch channel", zap.Error(err), zap.String("channel_id", req.ChannelID))
		ctx.JSON(http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
		return
	}

	msg := &model.Message{
		ID:              uuid.NewString(),
		ChannelID:       channel.ID,
		ChannelName:     channel.ChannelName,
		UserID:          uc.Subject,
		Username:        uc.Username,
		Content:         req.Content,
		ParentMessageID: req.ParentMessageID,
		CreatedAt:       time.Now().UTC(),
	}
	if err := c.chat.CreateMessage(ctx.Request.Context(), msg); err != nil {
		logger.Error("insert message", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
		return
	}

	c.triggerMessageIngestion(ctx, msg)

	ctx.JSON(http.StatusOK, msg)
}

// triggerMessageIngestion hands the message to the ingestion pipeline.
// Errors are logged, not surfaced; the primary write already succeeded.
func (c *Controller) triggerMessageIngestion(ctx *gin.Context, msg *model.Message) {
	logger := c.requestLogger(ctx, "message_ingest")

	if c.queue != nil {
		if err := c.queue.AddIngestMessageTask(ctx.Request.Context(), msg.ID); err != nil {
			logger.Warn("enqueue message ingestion",
				zap.Error(err),
				zap.String("message_id", msg.ID))
		}
		return
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
	if err := c.assistant.IngestMessage(ctx.Request.Context(), record); err != nil {
		logger.Warn("ingest message",
			zap.Error(err),
			zap.String("message_id", msg.ID))
	}
}
