package common

const (
	ComponentScheduler   = "sync-scheduler"
	ComponentCache       = "cache-engine"
	ComponentStore       = "store"
	ComponentRemote      = "remote-client"
	ComponentDiscovery   = "discovery"
	ComponentResync      = "resync"
	ComponentHeadTracker = "head-tracker"
	ComponentMaintenance = "maintenance"
	ComponentAPI         = "api"
)

var AllComponents = map[string]struct{}{
	ComponentScheduler:   {},
	ComponentCache:       {},
	ComponentStore:       {},
	ComponentRemote:      {},
	ComponentDiscovery:   {},
	ComponentResync:      {},
	ComponentHeadTracker: {},
	ComponentMaintenance: {},
	ComponentAPI:         {},
}
