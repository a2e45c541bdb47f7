package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BowmanStephen/dadpack-backend/internal/collection"
	"github.com/BowmanStephen/dadpack-backend/internal/models"
	"github.com/BowmanStephen/dadpack-backend/internal/storage"
)

// maxImportBytes bounds an import request body (a collection export is a
// few megabytes at most; anything bigger is not ours).
const maxImportBytes = 32 << 20

type CollectionHandler struct {
	store   *collection.Store
	persist *storage.Store
}

func NewCollectionHandler(store *collection.Store, persist *storage.Store) *CollectionHandler {
	return &CollectionHandler{store: store, persist: persist}
}

// GetCollection returns the full live collection.
// GET /api/collection
func (h *CollectionHandler) GetCollection(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Snapshot())
}

// GetStats returns the aggregate collection view.
// GET /api/collection/stats
func (h *CollectionHandler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Stats())
}

// Export streams the portable backup document.
// GET /api/collection/export
func (h *CollectionHandler) Export(c *gin.Context) {
	data, err := h.store.Export()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "code": "EXPORT_FAILED"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="dadpack-collection.json"`)
	c.Data(http.StatusOK, "application/json", data)
}

// Import replaces the collection with a backup document and persists it.
// POST /api/collection/import
func (h *CollectionHandler) Import(c *gin.Context) {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read request body", "code": "BAD_REQUEST"})
		return
	}

	if err := h.store.Import(data); err != nil {
		if errors.Is(err, models.ErrInvalidFormat) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "INVALID_FORMAT"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "code": "IMPORT_FAILED"})
		return
	}

	snapshot := h.store.Snapshot()
	pity := h.store.Pity()
	report, err := h.persist.Save(c.Request.Context(), snapshot, &pity)
	if err != nil {
		log.Printf("Persistence: save after import failed: %v", err)
		c.JSON(http.StatusOK, gin.H{
			"imported":   true,
			"save_error": "import applied in memory but could not be persisted",
		})
		return
	}

	resp := gin.H{"imported": true, "packs": h.store.Stats().LivePacks}
	if report.Warning != "" {
		resp["storage_warning"] = report.Warning
	}
	c.JSON(http.StatusOK, resp)
}

// GetArchive returns the cold-archived packs.
// GET /api/collection/archive
func (h *CollectionHandler) GetArchive(c *gin.Context) {
	packs, err := h.persist.Archive(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "code": "ARCHIVE_FAILED"})
		return
	}
	if packs == nil {
		packs = []models.CompressedPack{}
	}
	c.JSON(http.StatusOK, gin.H{"packs": packs})
}
