package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	cataloghandler "beatstore/internal/catalog/handler"
	catalogstore "beatstore/internal/catalog/store"
	"beatstore/internal/jwttoken"
	"beatstore/internal/platform/config"
	"beatstore/internal/platform/httpserver"
	"beatstore/internal/platform/logger"
	"beatstore/internal/platform/metrics"
	"beatstore/internal/platform/postgres"
	"beatstore/internal/platform/redis"
	ratelimitmetrics "beatstore/internal/ratelimit/metrics"
	ratelimit "beatstore/internal/ratelimit/middleware"
	ratelimitmodels "beatstore/internal/ratelimit/models"
	"beatstore/internal/ratelimit/store/bucket"
	savedhandler "beatstore/internal/saved/handler"
	savedservice "beatstore/internal/saved/service"
	savedstore "beatstore/internal/saved/store"
	httptransport "beatstore/internal/transport/http"
)

// main wires the storefront API: catalog lookups and the authenticated
// saved-items list. Without DATABASE_URL it runs on in-memory stores seeded
// with demo products.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	m := metrics.New()
	var health []httptransport.HealthCheck

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		if err := postgres.Migrate(ctx, db); err != nil {
			return err
		}
		health = append(health, httptransport.HealthCheck{Name: "postgres", Check: db.PingContext})
	}

	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		health = append(health, httptransport.HealthCheck{Name: "redis", Check: redisClient.Health})
	}

	products, saved := buildStores(ctx, db, log)
	var catalog savedservice.Catalog = products
	if redisClient != nil {
		cached, err := catalogstore.NewCached(products, redisClient.Client, cfg.CatalogCacheTTL, log)
		if err != nil {
			return err
		}
		catalog = cached
	}

	svc, err := savedservice.New(saved, catalog,
		savedservice.WithLogger(log),
		savedservice.WithMetrics(m),
	)
	if err != nil {
		return err
	}

	var limiter ratelimit.Limiter = bucket.NewInMemoryBucketStore()
	if redisClient != nil {
		limiter, err = bucket.NewRedisBucketStore(redisClient.Client)
		if err != nil {
			return err
		}
	}
	writeLimit := ratelimit.New(limiter, log,
		ratelimit.WithDisabled(cfg.RateLimit.Disabled),
		ratelimit.WithMetrics(ratelimitmetrics.New(m.Registerer())),
	).PerUser(ratelimitmodels.Policy{
		Name:   "saved-writes",
		Limit:  cfg.RateLimit.SavedWrites,
		Window: cfg.RateLimit.Window,
	})

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience)
	router := httptransport.NewRouter(httptransport.Dependencies{
		Logger:  log,
		Metrics: m,
		Handlers: []httptransport.RouteRegistrar{
			cataloghandler.New(catalog, log),
			savedhandler.New(svc, log, jwttoken.NewJWTServiceAdapter(jwtService), savedhandler.WithWriteLimit(writeLimit)),
		},
		Health: health,
	})

	srv := httpserver.New(cfg.Addr, router)
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting beatstore api", "addr", cfg.Addr, "postgres", db != nil, "redis", redisClient != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func buildStores(ctx context.Context, db *sql.DB, log *slog.Logger) (catalogstore.Backend, savedservice.Store) {
	if db != nil {
		return catalogstore.NewPostgres(db), savedstore.NewPostgres(db)
	}
	products := catalogstore.NewInMemory()
	for _, p := range demoCatalog() {
		if err := products.Upsert(ctx, p); err != nil {
			log.Warn("failed to seed demo product", "product", p.Key().String(), "error", err)
		}
	}
	log.Warn("DATABASE_URL not set, using in-memory stores with demo catalog")
	return products, savedstore.NewInMemory()
}
