package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ashishvarghese242/cpo-os-demo/pkg/services"
)

// DatasetHandler manages dataset lifecycle: workbook imports, reloads and
// catalog reindexing.
type DatasetHandler struct {
	datasets *services.DatasetService
	vectors  *services.VectorStoreService
}

// NewDatasetHandler creates a new DatasetHandler. vectors may be nil;
// reindexing is skipped in that case.
func NewDatasetHandler(datasets *services.DatasetService, vectors *services.VectorStoreService) *DatasetHandler {
	return &DatasetHandler{datasets: datasets, vectors: vectors}
}

// ImportWorkbook accepts an uploaded .xlsx or .csv roster workbook and merges
// its rows into the active snapshot.
func (h *DatasetHandler) ImportWorkbook(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart 'file' is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open uploaded file: " + err.Error()})
		return
	}
	defer file.Close()

	report, err := h.datasets.ImportWorkbook(file, fileHeader.Filename)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

// ReloadDatasets re-reads the JSON feeds from the data directory and, when a
// vector store is attached, reindexes the content catalog.
func (h *DatasetHandler) ReloadDatasets(c *gin.Context) {
	if err := h.datasets.Reload(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := gin.H{"reloaded": true}
	if h.vectors != nil {
		indexed, err := h.vectors.IndexCatalog(c.Request.Context(), h.datasets.Snapshot().Catalog)
		if err != nil {
			resp["index_error"] = err.Error()
		}
		resp["indexed"] = indexed
	}
	c.JSON(http.StatusOK, resp)
}
