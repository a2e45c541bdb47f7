package handlers

import (
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/BowmanStephen/dadpack-backend/internal/collection"
	"github.com/BowmanStephen/dadpack-backend/internal/metrics"
	"github.com/BowmanStephen/dadpack-backend/internal/models"
	"github.com/BowmanStephen/dadpack-backend/internal/packgen"
	"github.com/BowmanStephen/dadpack-backend/internal/storage"
)

// maxPacksPerRequest caps a multi-open request.
const maxPacksPerRequest = 10

// PackHandler runs the open-pack flow: generate, append, persist. The mutex
// guarantees at most one in-flight save; rapid opens from the UI serialize
// here instead of racing on the storage driver.
type PackHandler struct {
	mu      sync.Mutex
	gen     *packgen.Generator
	store   *collection.Store
	persist *storage.Store
}

func NewPackHandler(gen *packgen.Generator, store *collection.Store, persist *storage.Store) *PackHandler {
	return &PackHandler{gen: gen, store: store, persist: persist}
}

type openRequest struct {
	Count int `json:"count"`
}

// OpenPacks opens 1..10 packs, appends them to the collection and persists.
// POST /api/packs/open
func (h *PackHandler) OpenPacks(c *gin.Context) {
	var req openRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "code": "BAD_REQUEST"})
			return
		}
	}
	if req.Count < 1 {
		req.Count = 1
	}
	if req.Count > maxPacksPerRequest {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "at most 10 packs per request",
			"code":  "TOO_MANY_PACKS",
		})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	packs := make([]*models.Pack, 0, req.Count)
	for i := 0; i < req.Count; i++ {
		pack, err := h.store.Draw(h.gen.Open)
		if err != nil {
			// CatalogExhausted is a configuration bug; surface it loudly.
			log.Printf("Pack generator: open failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "code": "GENERATION_FAILED"})
			return
		}
		metrics.RecordPack(pack)
		packs = append(packs, pack)
	}

	response := gin.H{
		"packs": packs,
		"pity":  h.store.Pity(),
	}

	snapshot := h.store.Snapshot()
	pity := h.store.Pity()
	report, err := h.persist.Save(c.Request.Context(), snapshot, &pity)
	metrics.RecordSave(report)
	if report != nil && (report.CompressedPacks > 0 || len(report.ArchivedPackIDs) > 0) {
		// Save reshaped the snapshot; adopt it so memory matches disk.
		h.store.ApplyRemediation(snapshot)
		response["remediation"] = report
	}
	if report != nil && report.Warning != "" {
		response["storage_warning"] = report.Warning
	}

	switch {
	case errors.Is(err, models.ErrStorageFull):
		// The packs were opened and live in memory; the user must free
		// space before they survive a reload.
		response["save_error"] = "storage full: export or clear old packs to keep these"
		response["code"] = "STORAGE_FULL"
		c.JSON(http.StatusInsufficientStorage, response)
	case err != nil:
		log.Printf("Persistence: save after open failed: %v", err)
		response["save_error"] = "could not persist your collection; it lives in memory until the next successful save"
		response["code"] = "PERSISTENCE_FAILED"
		c.JSON(http.StatusOK, response)
	default:
		c.JSON(http.StatusOK, response)
	}
}

// GetPity returns the current bad-luck counters.
// GET /api/pity
func (h *PackHandler) GetPity(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Pity())
}
