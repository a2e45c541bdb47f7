package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dadpack_http_requests_total",
		Help: "HTTP requests by method, route and status code",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dadpack_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	PacksOpenedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dadpack_packs_opened_total",
		Help: "Packs opened since process start",
	})

	CardsPulledTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dadpack_cards_pulled_total",
		Help: "Cards pulled since process start, by rarity",
	}, []string{"rarity"})

	HoloPullsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dadpack_holo_pulls_total",
		Help: "Holo cards pulled since process start, by variant",
	}, []string{"variant"})

	CollectionPacks = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dadpack_collection_packs",
		Help: "Packs currently held in the live collection",
	})

	CollectionUniqueCards = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dadpack_collection_unique_cards",
		Help: "Distinct card ids ever pulled",
	})

	PityCounter = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "dadpack_pity_counter",
		Help: "Packs opened since the last qualifying pull, by tier",
	}, []string{"tier"})

	StorageUsagePercent = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dadpack_storage_usage_percent",
		Help: "Estimated storage usage as a fraction of capacity",
	})

	SaveRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dadpack_save_retries_total",
		Help: "Save attempts beyond the first, summed over all saves",
	})

	SaveRemediationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dadpack_save_remediations_total",
		Help: "Saves that had to compress or archive packs to fit quota",
	})
)
