package web

import (
	"net/http"

	errors "github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/Eli-Gooding/ChatGenius-App/internal/assistant"
	"github.com/Eli-Gooding/ChatGenius-App/internal/chat/model"
	"github.com/Eli-Gooding/ChatGenius-App/library/jwt"
)

// handleFileProcess chunks, embeds, and indexes an already-uploaded file.
// The upload itself succeeded independently; a failure here only means the
// file is not searchable yet, and re-running is safe because index IDs are
// deterministic.
func (c *Controller) handleFileProcess(ctx *gin.Context) {
	logger := c.requestLogger(ctx, "file_process")

	uc := &jwt.UserClaims{}
	if err := c.authFunc(ctx.Request.Context(), uc); err != nil {
		ctx.JSON(http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
		return
	}

	var req fileProcessRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
		return
	}

	file, err := c.chat.GetFile(ctx.Request.Context(), req.FileID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, errorResponse{Error: "File not found"})
			return
		}
		logger.Error("fetch file", zap.Error(err), zap.String("file_id", req.FileID))
		ctx.JSON(http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
		return
	}

	cnt, err := c.chat.DownloadFile(ctx.Request.Context(), file)
	if err != nil {
		logger.Error("download file", zap.Error(err), zap.String("file_id", req.FileID))
		ctx.JSON(http.StatusInternalServerError, errorResponse{Error: "File download failed"})
		return
	}

	record := assistant.DocumentRecord{
		ID:          file.ID,
		FileName:    file.FileName,
		ContentType: file.ContentType,
		AuthorName:  file.Username,
		ChannelName: file.ChannelName,
		CreatedAt:   file.CreatedAt,
		RawBytes:    cnt,
	}

	written, err := c.assistant.IngestDocument(ctx.Request.Context(), record)
	if err != nil {
		logger.Error("ingest document",
			zap.Error(err),
			zap.String("file_id", req.FileID),
			zap.Int("chunks_written", written))

		var partial *assistant.PartialBatchError
		if errors.As(err, &partial) {
			ctx.JSON(http.StatusInternalServerError, errorResponse{
				Error:           "Document partially processed",
				ChunksProcessed: &partial.Written,
			})
			return
		}
		var unsupported *assistant.UnsupportedFormatError
		if errors.As(err, &unsupported) {
			ctx.JSON(http.StatusInternalServerError, errorResponse{Error: unsupported.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
		return
	}

	logger.Info("document processed",
		zap.String("file_id", req.FileID),
		zap.Int("chunks", written))
	ctx.JSON(http.StatusOK, fileProcessResponse{
		Success:         true,
		ChunksProcessed: written,
	})
}
