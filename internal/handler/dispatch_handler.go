package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mail-dispatch-service/internal/model"
	"mail-dispatch-service/internal/service/dispatch"
)

type DispatchHandler struct {
	dispatchService *dispatch.Service
}

func NewDispatchHandler(dispatchService *dispatch.Service) *DispatchHandler {
	return &DispatchHandler{
		dispatchService: dispatchService,
	}
}

// Dispatch handles POST /email/dispatch
func (h *DispatchHandler) Dispatch(c *gin.Context) {
	var req struct {
		Recipients []model.RecipientSpec `json:"recipients"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	senderEmail := c.GetString("sender_email")
	if senderEmail == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "sender not authenticated"})
		return
	}

	batch := model.DispatchBatch{
		Recipients: req.Recipients,
		Sender: model.SenderIdentity{
			Email: senderEmail,
			Name:  c.GetString("sender_name"),
		},
	}

	result, err := h.dispatchService.Dispatch(c.Request.Context(), batch)
	if errors.Is(err, dispatch.ErrNoRecipients) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty recipient list"})
		return
	}
	if err != nil {
		// Provider diagnostics live in the audit record, not the response.
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to dispatch emails"})
		return
	}

	c.JSON(http.StatusOK, result)
}
