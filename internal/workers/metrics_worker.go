package workers

import (
	"context"
	"log"
	"time"

	"github.com/BowmanStephen/dadpack-backend/internal/collection"
	"github.com/BowmanStephen/dadpack-backend/internal/metrics"
	"github.com/BowmanStephen/dadpack-backend/internal/storage"
)

// MetricsWorker periodically refreshes the collection and storage gauges so
// dashboards stay current even when nobody is opening packs.
type MetricsWorker struct {
	store    *collection.Store
	persist  *storage.Store
	interval time.Duration
}

func NewMetricsWorker(store *collection.Store, persist *storage.Store, interval time.Duration) *MetricsWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &MetricsWorker{store: store, persist: persist, interval: interval}
}

// Start runs the refresh loop until the context is cancelled.
func (w *MetricsWorker) Start(ctx context.Context) {
	log.Printf("Metrics worker started: refreshing every %s", w.interval)

	// Publish once on startup so gauges are populated before the first tick.
	w.refresh(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Metrics worker stopping...")
			return
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *MetricsWorker) refresh(ctx context.Context) {
	metrics.UpdateCollectionMetrics(w.store)

	quota, err := w.persist.Status(ctx)
	if err != nil {
		log.Printf("Metrics worker: quota estimate failed: %v", err)
		return
	}
	metrics.UpdateStorageMetrics(quota)
}
