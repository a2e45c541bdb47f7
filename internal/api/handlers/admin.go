package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BowmanStephen/dadpack-backend/internal/collection"
	"github.com/BowmanStephen/dadpack-backend/internal/events"
	"github.com/BowmanStephen/dadpack-backend/internal/storage"
)

// AdminHandler exposes storage status, manual remediation and live-event
// bonus control. The remediation and bonus routes sit behind the admin key.
type AdminHandler struct {
	store   *collection.Store
	persist *storage.Store
	bonuses *events.StaticProvider
}

func NewAdminHandler(store *collection.Store, persist *storage.Store, bonuses *events.StaticProvider) *AdminHandler {
	return &AdminHandler{store: store, persist: persist, bonuses: bonuses}
}

// StorageStatus reports quota usage and the policy thresholds.
// GET /api/storage/status
func (h *AdminHandler) StorageStatus(c *gin.Context) {
	quota, err := h.persist.Status(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "code": "STATUS_FAILED"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"used_bytes":     quota.UsedBytes,
		"total_bytes":    quota.TotalBytes,
		"percent":        quota.Percent(),
		"warn_threshold": storage.WarnThreshold,
		"full_threshold": storage.FullThreshold,
	})
}

// Remediate compresses and archives old packs on demand ("free up space").
// POST /api/admin/remediate
func (h *AdminHandler) Remediate(c *gin.Context) {
	snapshot := h.store.Snapshot()
	pity := h.store.Pity()

	report, err := h.persist.Remediate(c.Request.Context(), snapshot, &pity)
	if err != nil {
		log.Printf("Persistence: manual remediation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "code": "REMEDIATION_FAILED"})
		return
	}

	h.store.ApplyRemediation(snapshot)
	c.JSON(http.StatusOK, gin.H{"report": report})
}

// GetBonuses lists the active probability bonuses.
// GET /api/admin/bonuses
func (h *AdminHandler) GetBonuses(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"bonuses": h.bonuses.ActiveBonuses()})
}

// SetBonuses replaces the active probability bonuses.
// PUT /api/admin/bonuses
func (h *AdminHandler) SetBonuses(c *gin.Context) {
	var req struct {
		Bonuses []events.Bonus `json:"bonuses"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "code": "BAD_REQUEST"})
		return
	}
	if err := h.bonuses.SetActive(req.Bonuses); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "INVALID_BONUS"})
		return
	}
	log.Printf("Events: %d bonus(es) now active", len(req.Bonuses))
	c.JSON(http.StatusOK, gin.H{"bonuses": h.bonuses.ActiveBonuses()})
}
