package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/radieske/matka-risk-platform/internal/risk-service/archive"
	riskcache "github.com/radieske/matka-risk-platform/internal/risk-service/cache"
	httpapi "github.com/radieske/matka-risk-platform/internal/risk-service/http"
	"github.com/radieske/matka-risk-platform/internal/risk-service/repo"
	"github.com/radieske/matka-risk-platform/internal/risk-service/ws"
	"github.com/radieske/matka-risk-platform/internal/shared/cache"
	"github.com/radieske/matka-risk-platform/internal/shared/config"
	"github.com/radieske/matka-risk-platform/internal/shared/db"
	"github.com/radieske/matka-risk-platform/internal/shared/logger"
	"github.com/radieske/matka-risk-platform/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pg, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()
	if cfg.Env == "local" || cfg.Env == "dev" {
		if err := db.Migrate(ctx, pg); err != nil {
			log.Fatal("migrate", zap.Error(err))
		}
	}

	redisClient, err := cache.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	boardLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "jantri_board_build_seconds",
		Help:    "latência de montagem das grades",
		Buckets: prometheus.DefBuckets,
	}, []string{"view"})
	wsClients := prometheus.NewGauge(prometheus.GaugeOpts{Name: "jantri_ws_clients", Help: "dashboards conectados"})
	prometheus.MustRegister(boardLatency, wsClients)

	hub := ws.NewHub(log, func(r *http.Request) bool { return true })
	hub.OnClients = func(n int) { wsClients.Set(float64(n)) }
	ws.StartRedisSubscriber(ctx, log, redisClient, cfg.RedisPubSubChannel, hub)

	readRepo := &repo.ReadRepo{DB: pg}
	api := &httpapi.API{
		Log:             log,
		Bets:            readRepo,
		Odds:            readRepo,
		Cache:           riskcache.New(redisClient),
		WS:              hub.HandleWS,
		Defaults:        cfg.DefaultThresholds,
		FixedMultiplier: cfg.FixedMultiplier,
		ThresholdTTL:    cfg.ThresholdTTL,
		OddsTTL:         cfg.OddsCacheTTL,
		ObserveBoard: func(view string, d time.Duration) {
			boardLatency.WithLabelValues(view).Observe(d.Seconds())
		},
	}

	checks := map[string]metrics.HealthFunc{
		"postgres": pg.PingContext,
		"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
	}
	if cfg.ArchiveEnabled() {
		arch, err := archive.New(ctx, archive.Config{
			Endpoint:       cfg.S3Endpoint,
			Region:         cfg.S3Region,
			Bucket:         cfg.S3Bucket,
			AccessKey:      cfg.S3AccessKey,
			SecretKey:      cfg.S3SecretKey,
			ForcePathStyle: cfg.S3ForcePathStyle,
		})
		if err != nil {
			log.Fatal("archive init", zap.Error(err))
		}
		api.Archive = arch
		log.Info("snapshot archive enabled", zap.String("bucket", cfg.S3Bucket))
	}

	apiSrv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	metricsSrv := metrics.NewServer(cfg.MetricsPort, checks)

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range []*http.Server{apiSrv, metricsSrv} {
		srv := srv
		g.Go(func() error {
			log.Info("listening", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("%s: %w", srv.Addr, err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		sctx, scancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer scancel()
		_ = apiSrv.Shutdown(sctx)
		_ = metricsSrv.Shutdown(sctx)
		return nil
	})

	log.Info("risk-service started", zap.String("http", apiSrv.Addr), zap.String("metrics", metricsSrv.Addr))
	if err := g.Wait(); err != nil {
		log.Fatal("risk-service stopped with error", zap.Error(err))
	}
	log.Info("risk-service stopped")
}
