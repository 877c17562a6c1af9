package web

import (
	"net/http"

	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"
)

// handleAssistantQuery answers a workspace question with retrieved context.
func (c *Controller) handleAssistantQuery(ctx *gin.Context) {
	logger := c.requestLogger(ctx, "ai_assistant")

	var req assistantQueryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
		return
	}

	result, err := c.assistant.Answer(ctx.Request.Context(), req.Query)
	if err != nil {
		logger.Error("assistant query failed", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, errorResponse{Error: "Failed to process request"})
		return
	}

	items := make([]contextItem, 0, len(result.Sources))
	for _, src := range result.Sources {
		items = append(items, contextItem{
			Content:  src.Metadata.Content,
			Metadata: src.Metadata,
		})
	}

	ctx.JSON(http.StatusOK, assistantQueryResponse{
		Response: result.Answer,
		Context:  items,
	})
}
