package discovery

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dework-labs/marketsync/internal/store"
)

var (
	discovered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketsync_entities_discovered_total",
			Help: "Total number of newly discovered entities by type",
		},
		[]string{"entity_type"},
	)

	headSeqNo = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "marketsync_chain_head_seq_no",
			Help: "Latest observed chain sequence number",
		},
	)
)

func DiscoveredAdd(entityType store.EntityType, n int) {
	discovered.WithLabelValues(string(entityType)).Add(float64(n))
}

func HeadSeqNoLog(seqNo uint64) {
	headSeqNo.Set(float64(seqNo))
}
