package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/hackgods/appointment-booking/internal/api"
	"github.com/hackgods/appointment-booking/internal/audit"
	"github.com/hackgods/appointment-booking/internal/config"
	"github.com/hackgods/appointment-booking/internal/db"
	redisclient "github.com/hackgods/appointment-booking/internal/redis"
	"github.com/hackgods/appointment-booking/internal/session"
)

var version = "dev"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("api-server starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	log.Printf("running in env=%s http_port=%s services=%d session_idle_ttl=%s cors_origins=%d trusted_proxies=%d",
		cfg.Env, cfg.HTTPPort, len(cfg.Services), cfg.SessionIdleTTL, len(cfg.CORSAllowedOrigins), len(cfg.TrustedProxies))

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		pgPool *pgxpool.Pool
		events audit.Sink = audit.LogSink{}
	)
	if cfg.PostgresDSN != "" {
		pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
		pgPool, err = db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
		if err != nil {
			cancelPg()
			log.Fatalf("postgres connection error: %v", err)
		}
		sink := audit.NewPgSink(pgPool)
		err = sink.EnsureSchema(pgCtx)
		cancelPg()
		if err != nil {
			log.Fatalf("postgres schema error: %v", err)
		}
		defer pgPool.Close()
		events = sink
		log.Println("connected to Postgres, booking events go to booking_events")
	} else {
		log.Println("POSTGRES_DSN not set, booking events go to the log")
	}

	var (
		rdb    *redis.Client
		locker = session.NewLocalLocker()
	)
	redisOpts := redisclient.Options{Addr: cfg.RedisAddr, Username: cfg.RedisUsername, Password: cfg.RedisPassword}
	if redisOpts.Enabled() {
		rdb, err = redisclient.NewRedisClient(rootCtx, redisOpts)
		if err != nil {
			log.Fatalf("redis connection error: %v", err)
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Printf("error closing redis: %v", err)
			}
		}()
		locker = redisclient.NewRedisSessionLocker(rdb, cfg.LockTTL, cfg.LockWait)
		log.Println("connected to Redis, using shared session locks")
	}

	svc := session.NewService(session.NewRegistry(), locker, events)
	limiter := api.NewRateLimiter(cfg.SubmitRatePerSec, cfg.SubmitBurst, cfg.TrustedProxies...)

	router := api.NewRouter(api.RouterConfig{
		Service:        svc,
		Services:       cfg.Services,
		Limiter:        limiter,
		PgPool:         pgPool,
		Redis:          rdb,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		SecureCookies:  cfg.Env == "prod",
		Env:            cfg.Env,
		Version:        version,
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	go runSweeper(rootCtx, svc, limiter, cfg.SweepInterval, cfg.SessionIdleTTL)

	go func() {
		log.Printf("listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	<-rootCtx.Done()
	log.Println("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown error: %v", err)
	}
}

// runSweeper ends idle sessions, discarding their ledgers, until ctx is done.
func runSweeper(ctx context.Context, svc *session.Service, limiter *api.RateLimiter, interval, idleTTL time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("stopping session sweeper")
			return
		case <-ticker.C:
			sweepOnce(ctx, svc, limiter, idleTTL)
		}
	}
}

func sweepOnce(ctx context.Context, svc *session.Service, limiter *api.RateLimiter, idleTTL time.Duration) {
	runCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	start := time.Now()
	expired := svc.ExpireIdleSessions(runCtx, start, idleTTL)
	pruned := limiter.Prune(start, idleTTL)
	if expired > 0 || pruned > 0 {
		log.Printf("sweep complete in %s expired_sessions=%d pruned_clients=%d active_sessions=%d",
			time.Since(start), expired, pruned, svc.ActiveSessions())
	}
}
