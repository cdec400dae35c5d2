package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"carepool/internal/audit"
	"carepool/internal/ledger/handler"
	"carepool/internal/ledger/ports"
	"carepool/internal/ledger/service"
	"carepool/internal/ledger/statscache"
	memstore "carepool/internal/ledger/store/memory"
	pgstore "carepool/internal/ledger/store/postgres"
	"carepool/internal/platform/config"
	"carepool/internal/platform/httpserver"
	"carepool/internal/platform/logger"
	"carepool/internal/platform/metrics"
	"carepool/internal/platform/middleware"
	"carepool/internal/platform/postgres"
	platformredis "carepool/internal/platform/redis"
	"carepool/internal/treasury"
	"carepool/pkg/clock"
	id "carepool/pkg/domain"
)

const requestTimeout = 30 * time.Second

// main wires dependencies and runs the server. Business logic lives in
// internal/ledger/service; everything here is assembly.
func main() {
	if err := run(); err != nil {
		logger.New().Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()
	clk := clock.NewWall(cfg.ClockEpoch, cfg.TickInterval)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Store: postgres when a DSN is configured, in-memory otherwise.
	var (
		store ports.Store
		tx    ports.LedgerTx
	)
	if cfg.PostgresDSN != "" {
		db, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		store = pgstore.New(db)
		tx = pgstore.NewTx(db)
		log.Info("using postgres store")
	} else {
		mem := memstore.New()
		store = mem
		tx = memstore.NewTx(mem)
		log.Info("using in-memory store")
	}

	// The in-memory treasury stands in for an external funds service. Dev
	// balances can be seeded via CAREPOOL_DEV_ACCOUNTS=acct=amount,...
	bank := treasury.NewMemory()
	seedDevAccounts(bank, os.Getenv("CAREPOOL_DEV_ACCOUNTS"), log)

	// Audit: Kafka sink behind a channel worker when brokers are configured,
	// in-memory sink otherwise.
	var (
		publisher *audit.Publisher
		worker    *audit.Worker
	)
	if len(cfg.KafkaSeeds) > 0 {
		kafkaStore, err := audit.NewKafkaStore(cfg.KafkaSeeds, cfg.KafkaTopic)
		if err != nil {
			return err
		}
		defer kafkaStore.Close()
		inbox := make(chan audit.Event, 256)
		worker = audit.NewWorker(kafkaStore, inbox)
		publisher = audit.NewPublisher(audit.NewChannelStore(inbox))
		log.Info("audit events sink to kafka", "topic", cfg.KafkaTopic)
	} else {
		publisher = audit.NewPublisher(audit.NewMemoryStore())
	}

	opts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(m),
		service.WithAuditPublisher(publisher),
	}

	if cfg.RedisURL != "" {
		rdb, err := platformredis.New(cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()
		opts = append(opts, service.WithStatsCache(statscache.New(rdb.Client, cfg.StatsCacheTTL, log)))
		log.Info("platform stats cached in redis", "ttl", cfg.StatsCacheTTL)
	}

	svc, err := service.New(store, tx, bank, clk, cfg.Owner, cfg.TreasuryAccount, opts...)
	if err != nil {
		return err
	}

	validator := middleware.NewHMACValidator(cfg.JWTSigningKey)
	h := handler.New(svc, log)

	r := chi.NewRouter()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Latency(m))
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(gr chi.Router) {
		gr.Use(middleware.RequireAuth(validator, log))
		h.Register(gr)
	})

	srv := httpserver.New(cfg.Addr, r)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting carepool server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if worker != nil {
		g.Go(func() error {
			if err := worker.Run(ctx); !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// seedDevAccounts parses acct=amount pairs and deposits each into the bank.
func seedDevAccounts(bank *treasury.Memory, raw string, log *slog.Logger) {
	if raw == "" {
		return
	}
	for _, pair := range strings.Split(raw, ",") {
		name, amountRaw, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			log.Warn("malformed dev account entry", "entry", pair)
			continue
		}
		amount, err := strconv.ParseUint(amountRaw, 10, 64)
		if err != nil {
			log.Warn("malformed dev account amount", "entry", pair, "error", err)
			continue
		}
		bank.Deposit(id.AccountID(name), amount)
	}
}
