package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ashishvarghese242/cpo-os-demo/pkg/services"
)

// ContentHandler serves semantic search over the indexed content catalog.
type ContentHandler struct {
	vectors *services.VectorStoreService
}

// NewContentHandler creates a new ContentHandler. vectors may be nil when no
// Qdrant instance is configured.
func NewContentHandler(vectors *services.VectorStoreService) *ContentHandler {
	return &ContentHandler{vectors: vectors}
}

// SearchContent looks up catalog items semantically similar to the query.
func (h *ContentHandler) SearchContent(c *gin.Context) {
	if h.vectors == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "content search is not configured"})
		return
	}

	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'q' is required"})
		return
	}

	topK := uint64(5)
	if v, err := strconv.ParseUint(c.DefaultQuery("top_k", "5"), 10, 64); err == nil && v > 0 {
		topK = v
	}

	hits, err := h.vectors.SearchContent(c.Request.Context(), query, topK)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"query": query, "hits": hits, "count": len(hits)})
}
