package cache

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	rebuilds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketsync_cache_rebuilds_total",
			Help: "Total number of snapshot rebuild attempts by status",
		},
		[]string{"status"},
	)

	rebuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "marketsync_cache_rebuild_duration_seconds",
			Help:    "Duration of snapshot rebuilds",
			Buckets: prometheus.DefBuckets,
		},
	)

	snapshotEntities = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "marketsync_snapshot_entities",
			Help: "Number of entities in the current published snapshot",
		},
		[]string{"entity"},
	)
)

func RebuildInc(status string) {
	rebuilds.WithLabelValues(status).Inc()
}

func RebuildDurationLog(d time.Duration) {
	rebuildDuration.Observe(d.Seconds())
}

func SnapshotSizeLog(admins, users, orders, activeOrders int) {
	snapshotEntities.WithLabelValues("admins").Set(float64(admins))
	snapshotEntities.WithLabelValues("users").Set(float64(users))
	snapshotEntities.WithLabelValues("orders").Set(float64(orders))
	snapshotEntities.WithLabelValues("active_orders").Set(float64(activeOrders))
}
