// Package main runs the swap escrow service: the settlement engine
// behind an HTTP JSON API, a WebSocket settlement event feed, an
// optional ClickHouse audit trail, an optional Kafka event sink, and
// Prometheus metrics.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"swapchain/internal/api"
	"swapchain/internal/assets"
	bankmem "swapchain/internal/assets/memory"
	"swapchain/internal/config"
	"swapchain/internal/domain"
	"swapchain/internal/escrow"
	"swapchain/internal/events"
	"swapchain/internal/observability"
	"swapchain/internal/settlement"
	"swapchain/internal/storage"
	chstore "swapchain/internal/storage/clickhouse"
	"swapchain/internal/storage/memory"
	"swapchain/internal/storage/migrations"
	pgstore "swapchain/internal/storage/postgres"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Flags override env
	listenAddr := flag.String("listen-addr", cfg.ListenAddr, "HTTP API listen address")
	metricsAddr := flag.String("metrics-addr", cfg.MetricsAddr, "Prometheus metrics listen address")
	owner := flag.String("owner", cfg.Owner, "Administrative owner address")
	useMemory := flag.Bool("use-memory", cfg.UseMemory, "Use in-memory storage instead of PostgreSQL")
	postgresDSN := flag.String("postgres-dsn", cfg.PostgresDSN, "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", cfg.ClickhouseDSN, "ClickHouse connection string (enables audit trail)")
	flag.Parse()

	cfg.ListenAddr = *listenAddr
	cfg.MetricsAddr = *metricsAddr
	cfg.Owner = *owner
	cfg.UseMemory = *useMemory
	cfg.PostgresDSN = *postgresDSN
	cfg.ClickhouseDSN = *clickhouseDSN

	if err := cfg.Validate(); err != nil {
		logger.Fatalf("Invalid config: %v", err)
	}

	ownerID, err := domain.ParseIdentity(cfg.Owner)
	if err != nil {
		logger.Fatalf("Invalid owner address: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics("swapchain")

	// Order store
	orderStore, cleanupOrders, err := createOrderStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to create order store: %v", err)
	}
	defer cleanupOrders()

	// Escrow ledger, rebuilt from the durable Open orders
	ledger := escrow.NewLedger()
	openOrders, err := orderStore.GetByStatus(ctx, domain.StatusOpen)
	if err != nil {
		logger.Fatalf("Failed to load open orders: %v", err)
	}
	if err := ledger.Rebuild(openOrders); err != nil {
		logger.Fatalf("Failed to rebuild escrow ledger: %v", err)
	}
	metrics.OpenOrders.Set(float64(len(openOrders)))
	for asset, held := range ledger.Holdings() {
		metrics.EscrowHoldings.WithLabelValues(string(asset)).Set(float64(held))
	}
	logger.Printf("Escrow rebuilt: %d open orders across %d assets", len(openOrders), len(ledger.Holdings()))

	// Event sinks
	hub := api.NewHub(logger)
	hub.SetClientGauge(func(n int) { metrics.WSClients.Set(float64(n)) })
	defer hub.Close()
	sinks := []settlement.EventSink{hub}

	if cfg.ClickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
		if err != nil {
			logger.Fatalf("Failed to run clickhouse migrations: %v", err)
		}
		defer conn.Close()

		audit := events.NewAuditSink(chstore.NewSettlementEventStore(conn), events.AuditSinkConfig{
			Logger: logger,
			OnDrop: func() { metrics.EventsDropped.WithLabelValues("audit").Inc() },
		})
		defer audit.Close()
		sinks = append(sinks, audit)
		logger.Printf("Audit trail enabled (ClickHouse)")
	}

	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink, err := events.NewKafkaSink(events.KafkaSinkConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
			Logger:  logger,
			OnDrop:  func() { metrics.EventsDropped.WithLabelValues("kafka").Inc() },
		})
		if err != nil {
			logger.Fatalf("Failed to create kafka sink: %v", err)
		}
		defer kafkaSink.Close()
		sinks = append(sinks, kafkaSink)
		logger.Printf("Kafka sink enabled: topic %s", cfg.KafkaTopic)
	}

	// The bundled asset ledger is the in-memory bank; a production
	// deployment injects an adapter for its actual asset backend here.
	bank := bankmem.NewBank()
	var assetLedger assets.Ledger = bank

	engine, err := settlement.NewEngine(settlement.Options{
		Orders:  orderStore,
		Escrow:  ledger,
		Assets:  assetLedger,
		Owner:   ownerID,
		Metrics: metrics,
		Logger:  logger,
		Sinks:   sinks,
	})
	if err != nil {
		logger.Fatalf("Failed to create engine: %v", err)
	}

	// Metrics server
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{Addr: cfg.MetricsAddr, Handler: metricsMux}
	go func() {
		logger.Printf("Metrics listening on %s", cfg.MetricsAddr)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("Metrics server error: %v", err)
		}
	}()

	// API server
	apiServer := api.NewServer(engine, hub, metrics, logger)
	if cfg.UseMemory {
		// Local development convenience: balances start empty, so the
		// in-memory bank exposes a faucet.
		apiServer.RegisterFaucet(bank)
		logger.Printf("Faucet enabled (in-memory bank)")
	}
	srv := &http.Server{Addr: cfg.ListenAddr, Handler: apiServer.Handler()}
	go func() {
		logger.Printf("API listening on %s (owner %s)", cfg.ListenAddr, ownerID)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("API server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Printf("Received signal %v, shutting down", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("API shutdown: %v", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("Metrics shutdown: %v", err)
	}
}

// createOrderStore builds the configured order store and returns a
// cleanup function.
func createOrderStore(ctx context.Context, cfg *config.Config, logger *log.Logger) (storage.OrderStore, func(), error) {
	if cfg.UseMemory {
		logger.Printf("Using in-memory order store")
		return memory.NewOrderStore(), func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, nil, err
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, err
	}

	logger.Printf("Using PostgreSQL order store")
	return pgstore.NewOrderStore(pool), pool.Close, nil
}
