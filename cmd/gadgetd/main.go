// gadgetd serves the gadget inventory REST API.
//
// It wires the SQLite store, the lifecycle service and the self-destruct
// confirmation broker behind an authenticated HTTP API, and optionally
// mirrors lifecycle events to MQTT and InfluxDB.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	_ "github.com/nerrad567/gadget-registry/migrations"

	"github.com/nerrad567/gadget-registry/internal/api"
	"github.com/nerrad567/gadget-registry/internal/audit"
	"github.com/nerrad567/gadget-registry/internal/confirm"
	"github.com/nerrad567/gadget-registry/internal/gadget"
	"github.com/nerrad567/gadget-registry/internal/infrastructure/config"
	"github.com/nerrad567/gadget-registry/internal/infrastructure/database"
	"github.com/nerrad567/gadget-registry/internal/infrastructure/influxdb"
	"github.com/nerrad567/gadget-registry/internal/infrastructure/logging"
	"github.com/nerrad567/gadget-registry/internal/infrastructure/mqtt"
)

// Version information, set at build time via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const (
	// defaultConfigPath is used when GADGETD_CONFIG is unset.
	defaultConfigPath = "configs/config.yaml"

	// inventoryInterval is how often per-status counts are written to InfluxDB.
	inventoryInterval = time.Minute
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run wires every component and blocks until ctx is cancelled or a
// background task fails.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting gadgetd",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded",
		"path", configPath,
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database ready", "path", cfg.Database.Path)

	hub := api.NewHub(cfg.WebSocket, log)
	publishers := gadget.MultiPublisher{hub}

	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		mqttClient.SetLogger(log)
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		publishers = append(publishers, mqtt.NewEventPublisher(mqttClient))
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
	} else {
		log.Info("MQTT disabled")
	}

	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		publishers = append(publishers, influxClient)
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	broker := confirm.New(
		confirm.WithTTL(cfg.GetConfirmationTTL()),
		confirm.WithLogger(log),
	)

	svc := gadget.NewService(gadget.ServiceDeps{
		Repo:      gadget.NewSQLiteRepository(db.DB),
		History:   gadget.NewSQLiteHistoryRepository(db.DB),
		Broker:    broker,
		Publisher: publishers,
		Logger:    log,
	})

	deps := api.Deps{
		Config:   cfg.API,
		WS:       cfg.WebSocket,
		Security: cfg.Security,
		Logger:   log,
		Gadgets:  svc,
		Audit:    audit.NewSQLiteRepository(db.DB),
		DB:       db.DB,
		Hub:      hub,
		Version:  version,
	}
	if mqttClient != nil {
		deps.MQTT = mqttClient
	}
	server, err := api.New(deps)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return broker.Run(gctx, cfg.GetSweepInterval())
	})
	g.Go(func() error {
		return server.Wait(gctx)
	})
	if influxClient != nil {
		g.Go(func() error {
			return recordInventory(gctx, svc, influxClient, inventoryInterval)
		})
	}

	log.Info("gadgetd ready",
		"address", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port),
		"confirmation_ttl", cfg.GetConfirmationTTL(),
	)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	log.Info("gadgetd stopped")
	return nil
}

// getConfigPath returns GADGETD_CONFIG if set, otherwise the default path.
func getConfigPath() string {
	if path := os.Getenv("GADGETD_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies the enabled backends. Nil clients are skipped.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}

// inventoryRecorder receives periodic per-status snapshots.
type inventoryRecorder interface {
	RecordInventory(counts map[gadget.Status]int, at time.Time)
}

// recordInventory writes a status snapshot every interval until ctx ends.
// Read failures are skipped; the next tick tries again.
func recordInventory(ctx context.Context, svc *gadget.Service, rec inventoryRecorder, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			counts, _, err := svc.Stats(ctx)
			if err != nil {
				continue
			}
			rec.RecordInventory(counts, now.UTC())
		}
	}
}
