package scheduler

import (
	"context"

	"github.com/dework-labs/marketsync/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	itemsSynced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketsync_items_synced_total",
			Help: "Total number of processed sync queue items by outcome",
		},
		[]string{"entity_type", "outcome"},
	)

	queueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "marketsync_sync_queue_depth",
			Help: "Number of pending sync queue rows",
		},
	)
)

func ItemSyncedInc(entityType store.EntityType, outcome string) {
	itemsSynced.WithLabelValues(string(entityType), outcome).Inc()
}

// ObserveQueueDepth records the current queue depth gauge. Failures are
// ignored; the gauge just misses one sample.
func ObserveQueueDepth(ctx context.Context, st *store.Store) {
	depth, err := st.QueueDepth(ctx)
	if err != nil {
		return
	}

	queueDepth.Set(float64(depth))
}
