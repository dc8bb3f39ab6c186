package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dework-labs/marketsync/internal/cache"
	"github.com/dework-labs/marketsync/internal/common"
	"github.com/dework-labs/marketsync/internal/config"
	"github.com/dework-labs/marketsync/internal/db"
	"github.com/dework-labs/marketsync/internal/discovery"
	"github.com/dework-labs/marketsync/internal/logger"
	"github.com/dework-labs/marketsync/internal/metrics"
	"github.com/dework-labs/marketsync/internal/migrations"
	"github.com/dework-labs/marketsync/internal/remote"
	"github.com/dework-labs/marketsync/internal/scheduler"
	"github.com/dework-labs/marketsync/internal/store"
	"github.com/dework-labs/marketsync/internal/tasks"
	"github.com/dework-labs/marketsync/pkg/api"
	pkgconfig "github.com/dework-labs/marketsync/pkg/config"
)

const version = "1.0.0"

var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "marketsync",
	Short: "marketsync - Marketplace state indexer",
	Long: `marketsync mirrors the on-chain state of a decentralized marketplace
into a local store and serves it through a read-only API. Entities are kept
fresh by a durable sync queue with retry backoff; readers are served from an
atomically published in-memory snapshot.`,
	Version: version,
	RunE:    runIndexer,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration utilities",
}

var configSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the configuration JSON schema",
	Long:  `Print a JSON schema describing the configuration file format.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reflector := new(jsonschema.Reflector)
		schema := reflector.Reflect(&pkgconfig.Config{})

		data, err := json.MarshalIndent(schema, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal schema: %w", err)
		}

		fmt.Println(string(data))
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to configuration file")
	configCmd.AddCommand(configSchemaCmd)
	rootCmd.AddCommand(configCmd)
}

func runIndexer(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nShutting down gracefully...")
		cancel()
	}()

	var logCfg logger.ComponentConfig
	if cfg.Logging != nil {
		logCfg = cfg.Logging
	}

	log := logger.NewComponentLoggerFromConfig("main", logCfg)

	// Metrics server
	var metricsServer *metrics.Server
	if cfg.Metrics != nil && cfg.Metrics.Enabled {
		metricsServer = metrics.NewServer(cfg.Metrics)
		if err := metricsServer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
		defer func() {
			if err := metricsServer.Stop(ctx); err != nil {
				log.Warnf("Failed to stop metrics server: %v", err)
			}
		}()
		log.Infof("Metrics server started on %s%s", cfg.Metrics.ListenAddress, cfg.Metrics.Path)
	}

	// Database
	log.Info("Running database migrations...")
	if err := migrations.RunMigrations(cfg.DB.Path); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	database, err := db.NewSQLiteDBFromConfig(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer database.Close()

	st := store.New(database, logger.NewComponentLoggerFromConfig(common.ComponentStore, logCfg))

	// The persisted state must agree with the configured chain. A
	// mismatch means the database belongs to a different deployment.
	if _, err := st.EnsureState(ctx, cfg.Chain.MasterAddress, cfg.Chain.Mainnet); err != nil {
		return fmt.Errorf("failed to verify indexer state: %w", err)
	}

	// Remote chain access
	client := remote.NewClient(cfg.Chain.RPCURL, logger.NewComponentLoggerFromConfig(common.ComponentRemote, logCfg))
	defer client.Close()

	reader, err := remote.NewReader(client, cfg.Chain.MasterAddress)
	if err != nil {
		return fmt.Errorf("failed to create contract reader: %w", err)
	}

	// Cache engine and scheduler
	holder := cache.NewHolder()
	engine := cache.New(cfg.Cache, st, holder, logger.GetDefaultLogger())

	refresher := scheduler.NewStoreRefresher(st, reader, logger.GetDefaultLogger())
	sched := scheduler.New(cfg.Sync, st, client, refresher.Funcs(), engine.Trigger, logger.GetDefaultLogger())

	// Periodic tasks
	taskList := []tasks.Task{
		sched,
		discovery.New(st, client, reader, cfg.Sync.DiscoveryInterval.Duration, logger.GetDefaultLogger()),
		discovery.NewResync(st, store.EntityTypeAdmin, cfg.Sync.Resync.Admins.Duration, logger.GetDefaultLogger()),
		discovery.NewResync(st, store.EntityTypeUser, cfg.Sync.Resync.Users.Duration, logger.GetDefaultLogger()),
		discovery.NewResync(st, store.EntityTypeOrder, cfg.Sync.Resync.Orders.Duration, logger.GetDefaultLogger()),
		discovery.NewHeadTracker(st, client, cfg.Chain.HeadInterval.Duration, logger.GetDefaultLogger()),
	}

	if cfg.Maintenance != nil && cfg.Maintenance.Enabled {
		taskList = append(taskList, db.NewMaintenanceTask(
			cfg.DB.Path,
			database,
			*cfg.Maintenance,
			logger.NewComponentLoggerFromConfig(common.ComponentMaintenance, logCfg),
		))
	}

	log.Info("Starting marketsync...")

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return engine.Run(gctx)
	})

	for _, task := range taskList {
		task := task
		g.Go(func() error {
			return tasks.Run(gctx, task, logger.GetDefaultLogger())
		})
	}

	if cfg.API != nil && cfg.API.Enabled {
		apiServer := api.NewServer(cfg.API, holder, st, logger.NewComponentLoggerFromConfig(common.ComponentAPI, logCfg))
		g.Go(func() error {
			return apiServer.Start(gctx)
		})
	}

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("indexer failed: %w", err)
	}

	log.Info("marketsync stopped successfully")
	return nil
}
