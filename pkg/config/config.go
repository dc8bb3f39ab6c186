package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dework-labs/marketsync/internal/common"
	"github.com/dework-labs/marketsync/internal/logger"
)

// Config represents the complete configuration for marketsync.
type Config struct {
	// Chain contains the remote chain access configuration
	Chain ChainConfig `yaml:"chain" json:"chain" toml:"chain"`

	// DB contains the entity store database configuration
	DB DatabaseConfig `yaml:"db" json:"db" toml:"db"`

	// Sync contains the sync scheduler configuration
	Sync SyncConfig `yaml:"sync" json:"sync" toml:"sync"`

	// Cache contains the cache rebuild engine configuration
	Cache CacheConfig `yaml:"cache" json:"cache" toml:"cache"`

	// API contains the read-only query API configuration
	API *APIConfig `yaml:"api,omitempty" json:"api,omitempty" toml:"api,omitempty"`

	// Logging contains logging configuration
	Logging *LoggingConfig `yaml:"logging,omitempty" json:"logging,omitempty" toml:"logging,omitempty"`

	// Metrics contains Prometheus metrics configuration
	Metrics *MetricsConfig `yaml:"metrics,omitempty" json:"metrics,omitempty" toml:"metrics,omitempty"`

	// Maintenance contains optional database maintenance settings
	Maintenance *MaintenanceConfig `yaml:"maintenance,omitempty" json:"maintenance,omitempty" toml:"maintenance,omitempty"`
}

// ChainConfig represents remote chain access configuration.
type ChainConfig struct {
	// RPCURL is the chain RPC endpoint URL
	RPCURL string `yaml:"rpc_url" json:"rpc_url" toml:"rpc_url"`

	// MasterAddress is the root marketplace contract address
	MasterAddress string `yaml:"master_address" json:"master_address" toml:"master_address"`

	// Mainnet indicates whether the configured endpoint is the main network.
	// The persisted indexer state must agree with this flag on every start.
	Mainnet bool `yaml:"mainnet" json:"mainnet" toml:"mainnet"`

	// HeadInterval is how often the latest chain sequence number is recorded
	HeadInterval common.Duration `yaml:"head_interval" json:"head_interval" toml:"head_interval"`
}

// ApplyDefaults sets default values for optional chain configuration fields.
func (c *ChainConfig) ApplyDefaults() {
	if c.HeadInterval.Duration == 0 {
		c.HeadInterval = common.NewDuration(30 * time.Second)
	}
}

// SyncConfig represents the sync scheduler configuration.
type SyncConfig struct {
	// Interval is the normal polling cadence of the scheduler
	Interval common.Duration `yaml:"interval" json:"interval" toml:"interval"`

	// FastRetryInterval is the cadence used while the remote client
	// connection is not yet initialized
	FastRetryInterval common.Duration `yaml:"fast_retry_interval" json:"fast_retry_interval" toml:"fast_retry_interval"`

	// BatchCap is the maximum number of queue items processed per invocation
	BatchCap int `yaml:"batch_cap" json:"batch_cap" toml:"batch_cap"`

	// DiscoveryInterval is how often new on-chain entity indices are discovered
	DiscoveryInterval common.Duration `yaml:"discovery_interval" json:"discovery_interval" toml:"discovery_interval"`

	// Resync contains per-entity-type force-resync intervals
	Resync ResyncConfig `yaml:"resync" json:"resync" toml:"resync"`
}

// ApplyDefaults sets default values for optional sync configuration fields.
func (s *SyncConfig) ApplyDefaults() {
	if s.Interval.Duration == 0 {
		s.Interval = common.NewDuration(10 * time.Second)
	}
	if s.FastRetryInterval.Duration == 0 {
		s.FastRetryInterval = common.NewDuration(1 * time.Second)
	}
	if s.BatchCap == 0 {
		s.BatchCap = 100
	}
	if s.DiscoveryInterval.Duration == 0 {
		s.DiscoveryInterval = common.NewDuration(1 * time.Minute)
	}
	s.Resync.ApplyDefaults()
}

// ResyncConfig holds force-resync intervals per entity type.
type ResyncConfig struct {
	Admins common.Duration `yaml:"admins" json:"admins" toml:"admins"`
	Users  common.Duration `yaml:"users" json:"users" toml:"users"`
	Orders common.Duration `yaml:"orders" json:"orders" toml:"orders"`
}

// ApplyDefaults sets default values for optional resync configuration fields.
func (r *ResyncConfig) ApplyDefaults() {
	if r.Admins.Duration == 0 {
		r.Admins = common.NewDuration(1 * time.Hour)
	}
	if r.Users.Duration == 0 {
		r.Users = common.NewDuration(30 * time.Minute)
	}
	if r.Orders.Duration == 0 {
		r.Orders = common.NewDuration(15 * time.Minute)
	}
}

// CacheConfig represents the cache rebuild engine configuration.
type CacheConfig struct {
	// RebuildInterval is the fixed cadence between snapshot rebuilds.
	// The sync scheduler additionally triggers immediate rebuilds after
	// non-empty batches.
	RebuildInterval common.Duration `yaml:"rebuild_interval" json:"rebuild_interval" toml:"rebuild_interval"`

	// Languages lists the translation target languages for active orders
	Languages []LanguageConfig `yaml:"languages" json:"languages" toml:"languages"`
}

// ApplyDefaults sets default values for optional cache configuration fields.
func (c *CacheConfig) ApplyDefaults() {
	if c.RebuildInterval.Duration == 0 {
		c.RebuildInterval = common.NewDuration(1 * time.Minute)
	}
	if len(c.Languages) == 0 {
		c.Languages = []LanguageConfig{{Key: "en", Name: "English"}}
	}
}

// LanguageConfig describes one supported translation language.
// Key is the stable language key (e.g. "en"); Name is the display name
// (e.g. "English"). Translated-order lookups accept either.
type LanguageConfig struct {
	Key  string `yaml:"key" json:"key" toml:"key"`
	Name string `yaml:"name" json:"name" toml:"name"`
}

// DatabaseConfig represents database configuration.
type DatabaseConfig struct {
	// Path is the file path to the SQLite database
	Path string `yaml:"path" json:"path" toml:"path"`

	// JournalMode sets the SQLite journal mode (e.g., "WAL", "DELETE")
	// WAL mode is recommended for better concurrency
	JournalMode string `yaml:"journal_mode" json:"journal_mode" toml:"journal_mode"`

	// Synchronous sets the synchronization level ("FULL", "NORMAL", "OFF")
	// NORMAL provides a good balance between safety and performance
	Synchronous string `yaml:"synchronous" json:"synchronous" toml:"synchronous"`

	// BusyTimeout is the time in milliseconds to wait when the database is locked
	BusyTimeout int `yaml:"busy_timeout" json:"busy_timeout" toml:"busy_timeout"`

	// CacheSize is the size of the page cache (negative = KB, positive = pages)
	CacheSize int `yaml:"cache_size" json:"cache_size" toml:"cache_size"`

	// MaxOpenConnections is the maximum number of open database connections
	MaxOpenConnections int `yaml:"max_open_connections" json:"max_open_connections" toml:"max_open_connections"`

	// MaxIdleConnections is the maximum number of idle connections in the pool
	MaxIdleConnections int `yaml:"max_idle_connections" json:"max_idle_connections" toml:"max_idle_connections"`

	// EnableForeignKeys enables foreign key constraint enforcement
	EnableForeignKeys bool `yaml:"enable_foreign_keys" json:"enable_foreign_keys" toml:"enable_foreign_keys"`
}

// ApplyDefaults sets default values for optional database configuration fields.
func (d *DatabaseConfig) ApplyDefaults() {
	if d.JournalMode == "" {
		d.JournalMode = "WAL"
	}
	if d.Synchronous == "" {
		d.Synchronous = "NORMAL"
	}
	if d.BusyTimeout == 0 {
		d.BusyTimeout = 5000
	}
	if d.CacheSize == 0 {
		d.CacheSize = 10000
	}
	if d.MaxOpenConnections == 0 {
		d.MaxOpenConnections = 25
	}
	if d.MaxIdleConnections == 0 {
		d.MaxIdleConnections = 5
	}
	// EnableForeignKeys defaults to false (zero value)
}

// MaintenanceConfig configures database maintenance behavior.
type MaintenanceConfig struct {
	// Enabled controls whether background maintenance runs
	Enabled bool `yaml:"enabled" json:"enabled" toml:"enabled"`

	// CheckInterval is how often to run maintenance (e.g., "30m", "1h")
	CheckInterval common.Duration `yaml:"check_interval" json:"check_interval" toml:"check_interval"`

	// WALCheckpointMode controls the WAL checkpoint aggressiveness
	// Options: PASSIVE, FULL, RESTART, TRUNCATE
	WALCheckpointMode string `yaml:"wal_checkpoint_mode" json:"wal_checkpoint_mode" toml:"wal_checkpoint_mode"`
}

// ApplyDefaults sets default values for optional maintenance configuration fields.
func (m *MaintenanceConfig) ApplyDefaults() {
	if m.CheckInterval.Duration == 0 {
		m.CheckInterval = common.NewDuration(30 * time.Minute)
	}
	if m.WALCheckpointMode == "" {
		m.WALCheckpointMode = "TRUNCATE"
	}
	// Enabled defaults to false (zero value)
}

// Validate checks if the maintenance configuration is valid.
func (m *MaintenanceConfig) Validate() error {
	if m.WALCheckpointMode != "" {
		validModes := []string{"PASSIVE", "FULL", "RESTART", "TRUNCATE"}
		if !slices.Contains(validModes, m.WALCheckpointMode) {
			return fmt.Errorf("maintenance.wal_checkpoint_mode: must be one of: PASSIVE, FULL, RESTART, TRUNCATE")
		}
	}

	return nil
}

// LoggingConfig configures logging behavior with per-component log levels.
type LoggingConfig struct {
	// DefaultLevel is the default log level for all components
	// Options: "debug", "info", "warn", "error"
	DefaultLevel string `yaml:"default_level" json:"default_level" toml:"default_level"`

	// Development enables development mode (stack traces, console encoder)
	Development bool `yaml:"development" json:"development" toml:"development"`

	// ComponentLevels sets log levels for specific components
	// Available components:
	//   - sync-scheduler: Sync queue draining and retry
	//   - cache-engine: Snapshot rebuilds
	//   - store: Entity store access
	//   - remote-client: Chain RPC access
	//   - discovery: New entity discovery
	//   - resync: Periodic force resync
	//   - head-tracker: Chain head sequence tracking
	//   - maintenance: Database maintenance
	//   - api: Query API
	ComponentLevels map[string]string `yaml:"component_levels,omitempty" json:"component_levels,omitempty" toml:"component_levels,omitempty"` //nolint:lll
}

// ApplyDefaults sets default values for optional logging configuration fields.
func (l *LoggingConfig) ApplyDefaults() {
	if l.DefaultLevel == "" {
		l.DefaultLevel = "info"
	}
	// Development defaults to false (zero value)
	if l.ComponentLevels == nil {
		l.ComponentLevels = make(map[string]string)
	}
}

// Validate checks if the logging configuration is valid.
func (l *LoggingConfig) Validate() error {
	if l.DefaultLevel != "" {
		if _, valid := logger.ValidLogLevels[common.ToLowerWithTrim(l.DefaultLevel)]; !valid {
			return fmt.Errorf("logging.default_level: must be one of: debug, info, warn, error")
		}
	}

	for component, level := range l.ComponentLevels {
		if _, validComponent := common.AllComponents[common.ToLowerWithTrim(component)]; !validComponent {
			return fmt.Errorf("logging.component_levels: unknown component '%s'", component)
		}

		if _, valid := logger.ValidLogLevels[common.ToLowerWithTrim(level)]; !valid {
			return fmt.Errorf("logging.component_levels[%s]: must be one of: debug, info, warn, error", component)
		}
	}

	return nil
}

// GetComponentLevel returns the log level for a specific component.
// Falls back to DefaultLevel if no component-specific level is set.
func (l *LoggingConfig) GetComponentLevel(component string) string {
	if level, ok := l.ComponentLevels[component]; ok {
		return level
	}
	return common.ToLowerWithTrim(l.DefaultLevel)
}

// GetDefaultLevel returns the default log level.
func (l *LoggingConfig) GetDefaultLevel() string {
	return common.ToLowerWithTrim(l.DefaultLevel)
}

// IsDevelopment returns whether development mode is enabled.
func (l *LoggingConfig) IsDevelopment() bool {
	return l.Development
}

// MetricsConfig configures Prometheus metrics exposition.
type MetricsConfig struct {
	// Enabled controls whether metrics collection and HTTP endpoint are active
	Enabled bool `yaml:"enabled" json:"enabled" toml:"enabled"`

	// ListenAddress is the address to bind the metrics HTTP server to
	// Format: "host:port" or ":port"
	ListenAddress string `yaml:"listen_address" json:"listen_address" toml:"listen_address"`

	// Path is the HTTP path where metrics are exposed
	Path string `yaml:"path" json:"path" toml:"path"`
}

// ApplyDefaults sets default values for optional metrics configuration fields.
func (m *MetricsConfig) ApplyDefaults() {
	if m.ListenAddress == "" {
		m.ListenAddress = ":9090"
	}
	if m.Path == "" {
		m.Path = "/metrics"
	}
	// Enabled defaults to false (zero value)
}

// Validate checks if the metrics configuration is valid.
func (m *MetricsConfig) Validate() error {
	if m.Enabled {
		if m.ListenAddress == "" {
			return fmt.Errorf("listen_address is required when metrics are enabled")
		}
		if m.Path == "" {
			return fmt.Errorf("path is required when metrics are enabled")
		}
		if m.Path[0] != '/' {
			return fmt.Errorf("path must start with '/'")
		}
	}
	return nil
}

// APIConfig configures the read-only query API server.
type APIConfig struct {
	// Enabled controls whether the API server is started
	Enabled bool `yaml:"enabled" json:"enabled" toml:"enabled"`

	// ListenAddress is the address to bind the API server to
	ListenAddress string `yaml:"listen_address" json:"listen_address" toml:"listen_address"`

	// ReadTimeout is the maximum duration for reading a request
	ReadTimeout common.Duration `yaml:"read_timeout" json:"read_timeout" toml:"read_timeout"`

	// WriteTimeout is the maximum duration for writing a response
	WriteTimeout common.Duration `yaml:"write_timeout" json:"write_timeout" toml:"write_timeout"`

	// IdleTimeout is the maximum time to wait for the next request
	IdleTimeout common.Duration `yaml:"idle_timeout" json:"idle_timeout" toml:"idle_timeout"`

	// CORS contains CORS configuration
	CORS CORSConfig `yaml:"cors" json:"cors" toml:"cors"`
}

// ApplyDefaults sets default values for optional API configuration fields.
func (a *APIConfig) ApplyDefaults() {
	if a.ListenAddress == "" {
		a.ListenAddress = ":8080"
	}
	if a.ReadTimeout.Duration == 0 {
		a.ReadTimeout = common.NewDuration(10 * time.Second)
	}
	if a.WriteTimeout.Duration == 0 {
		a.WriteTimeout = common.NewDuration(30 * time.Second)
	}
	if a.IdleTimeout.Duration == 0 {
		a.IdleTimeout = common.NewDuration(60 * time.Second)
	}
}

// CORSConfig configures cross-origin resource sharing for the API server.
type CORSConfig struct {
	Enabled        bool     `yaml:"enabled" json:"enabled" toml:"enabled"`
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins" toml:"allowed_origins"`
}

// ApplyDefaults sets default values for optional configuration fields.
func (c *Config) ApplyDefaults() {
	c.Chain.ApplyDefaults()
	c.DB.ApplyDefaults()
	c.Sync.ApplyDefaults()
	c.Cache.ApplyDefaults()

	if c.API != nil {
		c.API.ApplyDefaults()
	}
	if c.Logging != nil {
		c.Logging.ApplyDefaults()
	}
	if c.Metrics != nil {
		c.Metrics.ApplyDefaults()
	}
	if c.Maintenance != nil {
		c.Maintenance.ApplyDefaults()
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Chain.RPCURL == "" {
		return fmt.Errorf("chain.rpc_url is required")
	}

	if c.Chain.MasterAddress == "" {
		return fmt.Errorf("chain.master_address is required")
	}

	if !strings.HasPrefix(c.Chain.MasterAddress, "0x") {
		return fmt.Errorf("chain.master_address must be a 0x-prefixed address")
	}

	if c.DB.Path == "" {
		return fmt.Errorf("db.path is required")
	}

	if c.DB.JournalMode != "" && c.DB.JournalMode != "WAL" &&
		c.DB.JournalMode != "DELETE" && c.DB.JournalMode != "TRUNCATE" &&
		c.DB.JournalMode != "PERSIST" && c.DB.JournalMode != "MEMORY" {
		return fmt.Errorf("db.journal_mode must be one of: WAL, DELETE, TRUNCATE, PERSIST, MEMORY")
	}

	if c.DB.Synchronous != "" && c.DB.Synchronous != "FULL" &&
		c.DB.Synchronous != "NORMAL" && c.DB.Synchronous != "OFF" {
		return fmt.Errorf("db.synchronous must be one of: FULL, NORMAL, OFF")
	}

	if c.Sync.BatchCap < 0 {
		return fmt.Errorf("sync.batch_cap must not be negative")
	}

	langKeys := make(map[string]bool)
	for i, lang := range c.Cache.Languages {
		if lang.Key == "" {
			return fmt.Errorf("cache.languages[%d]: key is required", i)
		}
		if lang.Name == "" {
			return fmt.Errorf("cache.languages[%d] (%s): name is required", i, lang.Key)
		}
		if langKeys[lang.Key] {
			return fmt.Errorf("cache.languages[%d]: duplicate language key '%s'", i, lang.Key)
		}
		langKeys[lang.Key] = true
	}

	if c.Logging != nil {
		if err := c.Logging.Validate(); err != nil {
			return err
		}
	}

	if c.Metrics != nil {
		if err := c.Metrics.Validate(); err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
	}

	if c.Maintenance != nil {
		if err := c.Maintenance.Validate(); err != nil {
			return err
		}
	}

	return nil
}
