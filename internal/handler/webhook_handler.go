package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mail-dispatch-service/internal/service/reconcile"
	"mail-dispatch-service/pkg/logger"
)

type WebhookHandler struct {
	reconciler *reconcile.Service
	logger     *zap.Logger
}

func NewWebhookHandler(reconciler *reconcile.Service, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		reconciler: reconciler,
		logger:     log,
	}
}

// HandleEvents handles POST /webhook/events. The body must be a JSON
// array; elements are decoded one by one inside the reconciler so a
// single bad element never drops its siblings. The response is 200 once
// every event has been attempted, no matter how many were skipped or
// failed; the provider never sees per-event detail.
func (h *WebhookHandler) HandleEvents(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
		return
	}

	var events []json.RawMessage
	if err := json.Unmarshal(body, &events); err != nil || events == nil {
		// events == nil means the body was a JSON null, not an array.
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be a JSON array of events"})
		return
	}

	logger.WithTrace(c.Request.Context(), h.logger).Info("processing webhook events",
		zap.Int("count", len(events)),
	)

	h.reconciler.ProcessEvents(c.Request.Context(), events)

	c.JSON(http.StatusOK, gin.H{"message": "events processed"})
}
