package metrics

import (
	"github.com/BowmanStephen/dadpack-backend/internal/collection"
	"github.com/BowmanStephen/dadpack-backend/internal/models"
	"github.com/BowmanStephen/dadpack-backend/internal/storage"
)

// UpdateCollectionMetrics refreshes the collection and pity gauges from the
// store. Call after pack opens or periodically from the metrics worker.
func UpdateCollectionMetrics(store *collection.Store) {
	if store == nil {
		return
	}
	stats := store.Stats()
	CollectionPacks.Set(float64(stats.LivePacks))
	CollectionUniqueCards.Set(float64(stats.UniqueCards))

	pity := store.Pity()
	for _, tier := range models.PityTiers {
		PityCounter.WithLabelValues(string(tier)).Set(float64(pity.Count(tier)))
	}
}

// UpdateStorageMetrics publishes the driver's quota estimate.
func UpdateStorageMetrics(quota storage.Quota) {
	StorageUsagePercent.Set(quota.Percent())
}

// RecordPack counts one opened pack and its pulls.
func RecordPack(pack *models.Pack) {
	PacksOpenedTotal.Inc()
	for _, c := range pack.Cards {
		CardsPulledTotal.WithLabelValues(string(c.Rarity)).Inc()
		if c.IsHolo() {
			HoloPullsTotal.WithLabelValues(string(c.Holo)).Inc()
		}
	}
}

// RecordSave counts retries and remediation work from a save report.
func RecordSave(report *storage.SaveReport) {
	if report == nil {
		return
	}
	if report.Attempts > 1 {
		SaveRetriesTotal.Add(float64(report.Attempts - 1))
	}
	if report.CompressedPacks > 0 || len(report.ArchivedPackIDs) > 0 {
		SaveRemediationsTotal.Inc()
	}
}
