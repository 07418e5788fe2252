package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"caplock/internal/audit"
	"caplock/internal/denylist"
	govmetrics "caplock/internal/governance/metrics"
	"caplock/internal/jwtauth"
	ledgermetrics "caplock/internal/ledger/metrics"
	ledgerstore "caplock/internal/ledger/store"
	"caplock/internal/platform/config"
	httpmetrics "caplock/internal/platform/metrics"
	"caplock/internal/platform/httpserver"
	"caplock/internal/platform/logger"
	platformredis "caplock/internal/platform/redis"
	rolesstore "caplock/internal/roles/store"
	"caplock/internal/system"
	httptransport "caplock/internal/transport/http"
	dErrors "caplock/pkg/domain-errors"
	"caplock/pkg/domain"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal services.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	primary, err := domain.ParseAddress(cfg.PrimaryAdmin)
	if err != nil {
		log.Error("invalid PRIMARY_ADMIN", "error", err)
		os.Exit(1)
	}
	minting, err := domain.ParseAddress(cfg.MintingAdmin)
	if err != nil {
		log.Error("invalid MINTING_ADMIN", "error", err)
		os.Exit(1)
	}
	authority, err := domain.ParseAddress(cfg.AuthorityAddr)
	if err != nil {
		log.Error("invalid GOVERNANCE_AUTHORITY", "error", err)
		os.Exit(1)
	}

	var initialLogic domain.Address
	if cfg.InitialLogic != "" {
		initialLogic, err = domain.ParseAddress(cfg.InitialLogic)
		if err != nil {
			log.Error("invalid LOGIC_POINTER", "error", err)
			os.Exit(1)
		}
	}

	sysCfg := system.Config{
		PrimaryAdmin:  primary,
		MintingAdmin:  minting,
		AuthorityAddr: authority,
		InitialLogic:  initialLogic,
		Delay:         cfg.TimelockDelay,
		Logger:        log,
		LedgerMetrics: ledgermetrics.New(),
		GovMetrics:    govmetrics.New(),
	}

	if cfg.PostgresDSN != "" {
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			log.Error("postgres open failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		sysCfg.RolesStore = rolesstore.NewPostgres(db)
		sysCfg.LedgerStore = ledgerstore.NewPostgres(db)
	}

	if cfg.RedisURL != "" {
		redisClient, err := platformredis.New(cfg.RedisURL)
		if err != nil {
			log.Error("redis connect failed", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		sysCfg.Denylist = denylist.NewRedisStore(redisClient.Client)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	group, ctx := errgroup.WithContext(ctx)

	// Audit events flow through an inbox so slow sinks stay off the request
	// path. Without Kafka configured they land in memory.
	inbox := make(chan audit.Event, 1024)
	sysCfg.Audit = audit.NewChannelPublisher(inbox)

	var sink audit.Publisher = audit.NewStorePublisher(audit.NewInMemoryStore())
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink, err := audit.NewKafkaPublisher(cfg.KafkaBrokers, cfg.AuditTopic, log)
		if err != nil {
			log.Error("kafka connect failed", "error", err)
			os.Exit(1)
		}
		defer kafkaSink.Close()
		sink = kafkaSink
	}
	worker := audit.NewWorker(sink, inbox)
	group.Go(func() error {
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	sys := system.New(sysCfg)
	if err := sys.Initialize(ctx); err != nil {
		// An already-initialized durable store is fine on restart.
		if !dErrors.HasCode(err, dErrors.CodeInvalidState) {
			log.Error("initialization failed", "error", err)
			os.Exit(1)
		}
		log.Info("state already initialized, resuming")
	}

	jwtService := jwtauth.NewService(cfg.JWTSigningKey, "caplock", "caplock-api")
	handler := httptransport.NewHandler(sys, log)
	router := httptransport.NewRouter(handler, jwtService, httpmetrics.New())
	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting caplock", "addr", cfg.Addr, "timelock_delay", cfg.TimelockDelay.String())

	group.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("shutdown failed", "error", err)
		os.Exit(1)
	}
}
