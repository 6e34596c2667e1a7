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

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"heirloom/internal/access"
	"heirloom/internal/audit"
	"heirloom/internal/jwtauth"
	"heirloom/internal/keystore"
	"heirloom/internal/platform/config"
	"heirloom/internal/platform/httpserver"
	"heirloom/internal/platform/kafka"
	"heirloom/internal/platform/logger"
	"heirloom/internal/platform/metrics"
	platformredis "heirloom/internal/platform/redis"
	"heirloom/internal/release"
	httptransport "heirloom/internal/transport/http"
	"heirloom/internal/vault"
	"heirloom/pkg/platform/tx"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal service packages. Postgres, Redis, and
// Kafka are each optional: absent configuration falls back to in-memory
// stores, no cache, and no audit mirror.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		auditStore   audit.Store
		releaseStore release.Store
		keyStore     keystore.Store
		vaultStore   vault.Store
		txRunner     tx.Runner = tx.Passthrough{}
	)
	if cfg.DatabaseDSN != "" {
		db, err := sql.Open("postgres", cfg.DatabaseDSN)
		if err != nil {
			log.Error("open database", "error", err.Error())
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Error("ping database", "error", err.Error())
			os.Exit(1)
		}
		auditStore = audit.NewPostgresStore(db)
		releaseStore = release.NewPostgresStore(db)
		keyStore = keystore.NewPostgresStore(db)
		vaultStore = vault.NewPostgresStore(db)
		txRunner = tx.NewSQLRunner(db)
	} else {
		log.Warn("no database configured, using in-memory stores")
		auditStore = audit.NewInMemoryStore()
		releaseStore = release.NewInMemoryStore()
		keyStore = keystore.NewInMemoryStore()
		vaultStore = vault.NewInMemoryStore()
	}

	recorderOpts := []audit.Option{audit.WithLogger(log)}

	var mirrorWorker *audit.MirrorWorker
	if len(cfg.KafkaBrokers) > 0 {
		if err := kafka.EnsureTopic(ctx, cfg.KafkaBrokers, cfg.AuditTopic, 3); err != nil {
			log.Error("ensure audit topic", "error", err.Error())
			os.Exit(1)
		}
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, cfg.AuditTopic)
		if err != nil {
			log.Error("create kafka producer", "error", err.Error())
			os.Exit(1)
		}
		defer producer.Close()

		mirror := make(chan *audit.Entry, 256)
		recorderOpts = append(recorderOpts, audit.WithMirror(mirror))
		mirrorWorker = audit.NewMirrorWorker(producer, mirror, log)
	}
	recorder := audit.NewRecorder(auditStore, recorderOpts...)

	releaseOpts := []release.ServiceOption{}
	redisClient, err := platformredis.New(cfg.Redis())
	if err != nil {
		log.Error("connect redis", "error", err.Error())
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		releaseOpts = append(releaseOpts, release.WithActiveCache(
			release.NewRedisActiveCache(redisClient.Client, log)))
	}

	keyService := keystore.NewService(keyStore, recorder)
	releaseService := release.NewService(releaseStore, recorder, releaseOpts...)
	vaultService := vault.NewService(vaultStore, keyService, recorder, vault.WithTxRunner(txRunner))
	engine := access.NewEngine(releaseService, keyService, recorder, access.WithMetrics(m))

	jwtService := jwtauth.NewService(cfg.JWTSigningKey, "heirloom")
	handler := httptransport.NewHandler(log, m, vaultService, releaseService, keyService, engine, recorder)
	router := httptransport.NewRouter(handler, log, m, jwtService)
	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting heirloom", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if mirrorWorker != nil {
		g.Go(func() error {
			if err := mirrorWorker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited", "error", err.Error())
		os.Exit(1)
	}
}
