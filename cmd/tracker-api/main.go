package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radieske/betslip-tracker/internal/shared/cache"
	"github.com/radieske/betslip-tracker/internal/shared/config"
	"github.com/radieske/betslip-tracker/internal/shared/db"
	"github.com/radieske/betslip-tracker/internal/shared/kafka"
	"github.com/radieske/betslip-tracker/internal/shared/logger"
	"github.com/radieske/betslip-tracker/internal/shared/metrics"
	"github.com/radieske/betslip-tracker/internal/tracker/audit"
	httpapi "github.com/radieske/betslip-tracker/internal/tracker/http"
	"github.com/radieske/betslip-tracker/internal/tracker/pubsub"
	"github.com/radieske/betslip-tracker/internal/tracker/service"
	"github.com/radieske/betslip-tracker/internal/tracker/store"
	"github.com/radieske/betslip-tracker/internal/tracker/ws"
)

const serviceName = "tracker-api"

// trackerStore é o store do service com ping e backups
type trackerStore interface {
	service.Store
	httpapi.BackupLister
	Ping(ctx context.Context) error
}

func main() {
	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = serviceName
	}

	// inicia logger
	log, err := logger.New(serviceName, cfg.Env)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := runMigrate(cfg, log, os.Args[2:]); err != nil {
			log.Fatal("migrate failed", zap.Error(err))
		}
		return
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid config", zap.Error(err))
	}
	log.Info("starting service", zap.String("service", serviceName), zap.String("env", cfg.Env), zap.String("store", cfg.Store))

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// store: Postgres com migrations aplicadas no boot, ou memória
	var st trackerStore
	if cfg.Store == "memory" {
		st = store.NewMemory()
		log.Warn("using in-memory store, data is lost on restart")
	} else {
		pg, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Fatal("failed to connect postgres", zap.Error(err))
		}
		defer pg.Close()
		if err := store.MigrateUp(pg); err != nil {
			log.Fatal("apply migrations", zap.Error(err))
		}
		st = store.NewPostgres(pg)
		log.Info("postgres connected")
	}

	m := metrics.NewTracker(prometheus.DefaultRegisterer)

	// hub websocket dos viewers
	hub := ws.NewHub(log, allowOrigin(cfg.CORSOrigins))
	hub.OnClients = func(n int) { m.WSClients.Set(float64(n)) }
	go hub.Run(ctx)

	// com Redis, toda instância assina o canal e repassa ao seu hub
	var pub service.Publisher
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient, err = cache.ConnectRedis(ctx, cfg.RedisAddr)
		if err != nil {
			log.Fatal("failed to connect redis", zap.Error(err))
		}
		defer redisClient.Close()
		pubsub.StartRedisSubscriber(ctx, log, redisClient, cfg.RedisPubSubChannel, hub)
		pub = pubsub.NewRedisBroadcaster(redisClient, cfg.RedisPubSubChannel)
		log.Info("redis connected", zap.String("channel", cfg.RedisPubSubChannel))
	} else {
		pub = pubsub.NewHubPublisher(hub)
	}

	opts := service.Options{
		DefaultRate: cfg.DefaultRate,
		Hooks: service.Hooks{
			OnMutation:     func(op string) { m.Mutations.WithLabelValues(op).Inc() },
			OnPersistError: func() { m.PersistErrors.Inc() },
			OnBroadcast:    func() { m.Broadcasts.Inc() },
		},
	}

	// auditoria Kafka é opcional
	if brokers := kafka.SplitBrokers(cfg.KafkaBrokers); len(brokers) > 0 {
		if cfg.Env == "local" || cfg.Env == "dev" {
			tctx, tcancel := context.WithTimeout(ctx, 10*time.Second)
			if err := kafka.EnsureTopic(tctx, brokers, cfg.TopicBetMutations, log); err != nil {
				log.Warn("ensure kafka topic failed", zap.String("topic", cfg.TopicBetMutations), zap.Error(err))
			}
			tcancel()
		}
		auditor := audit.NewKafkaAuditor(kafka.NewWriter(brokers, cfg.TopicBetMutations), cfg.TopicBetMutations, log)
		defer auditor.Close()
		opts.Auditor = auditor
		log.Info("kafka audit enabled", zap.String("topic", cfg.TopicBetMutations))
	}

	svc := service.New(log, st, pub, opts)
	if err := svc.Init(ctx); err != nil {
		log.Fatal("init tracker", zap.Error(err))
	}

	api := httpapi.New(log, svc, httpapi.Options{
		AdminPassword: cfg.AdminPassword,
		CORSOrigins:   cfg.CORSOrigins,
		StaticDir:     cfg.StaticDir,
		WS:            http.HandlerFunc(hub.HandleWS),
		Backups:       st,
	})

	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, log, func(ctx context.Context) error {
		if err := st.Ping(ctx); err != nil {
			return fmt.Errorf("store: %w", err)
		}
		if redisClient != nil {
			if err := redisClient.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("redis: %w", err)
			}
		}
		return nil
	})

	apiSrv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("api listening", zap.String("addr", apiSrv.Addr))
		serverErrors <- apiSrv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("api server failed", zap.Error(err))
		}
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := apiSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("api graceful shutdown failed", zap.Error(err))
	}
	_ = metricsSrv.Shutdown(shutdownCtx)
	log.Info("shutdown complete")
}

// allowOrigin aplica a mesma lista de origens do CORS ao upgrade websocket
func allowOrigin(origins []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(origins, "*") || slices.Contains(origins, origin)
	}
}

// runMigrate implementa "tracker-api migrate up|down [n]|status"
func runMigrate(cfg config.Config, log *zap.Logger, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: tracker-api migrate up|down [steps]|status")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pg, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		return err
	}
	defer pg.Close()

	switch args[0] {
	case "up":
		if err := store.MigrateUp(pg); err != nil {
			return err
		}
	case "down":
		steps := 1
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n <= 0 {
				return fmt.Errorf("invalid steps %q", args[1])
			}
			steps = n
		}
		if err := store.MigrateDown(pg, steps); err != nil {
			return err
		}
	case "status":
	default:
		return fmt.Errorf("unknown migrate command %q", args[0])
	}
	return logStatus(pg, log)
}

func logStatus(pg *sql.DB, log *zap.Logger) error {
	version, dirty, err := store.MigrateStatus(pg)
	if err != nil {
		return err
	}
	log.Info("migration status", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}
