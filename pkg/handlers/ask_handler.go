package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ashishvarghese242/cpo-os-demo/pkg/models"
	"github.com/ashishvarghese242/cpo-os-demo/pkg/services"
)

// AskHandler fronts the EnablementGPT chat proxy.
type AskHandler struct {
	ask *services.AskService
}

// NewAskHandler creates a new AskHandler.
func NewAskHandler(ask *services.AskService) *AskHandler {
	return &AskHandler{ask: ask}
}

// PostAsk answers an analyst question with dataset context injected.
// Oversized caller-supplied context is rejected with 413.
func (h *AskHandler) PostAsk(c *gin.Context) {
	var req services.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing 'query'"})
		return
	}

	resp, err := h.ask.Ask(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, services.ErrContextTooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Context too large (>1.5MB). Send summarized slices."})
			return
		}
		if errors.Is(err, services.ErrNotConfigured) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream error", "detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetSuggestions returns scope-aware starter questions for the chat panel.
func (h *AskHandler) GetSuggestions(c *gin.Context) {
	mode, err := models.ParseMode(c.DefaultQuery("mode", string(models.ModeSales)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"mode":      mode,
		"questions": h.ask.SuggestQuestions(mode),
	})
}
