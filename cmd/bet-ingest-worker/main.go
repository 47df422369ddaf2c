package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/matka-risk-platform/internal/bet-ingest/consumer"
	"github.com/radieske/matka-risk-platform/internal/bet-ingest/pubsub"
	"github.com/radieske/matka-risk-platform/internal/bet-ingest/repository"
	"github.com/radieske/matka-risk-platform/internal/shared/cache"
	"github.com/radieske/matka-risk-platform/internal/shared/config"
	"github.com/radieske/matka-risk-platform/internal/shared/db"
	"github.com/radieske/matka-risk-platform/internal/shared/kafka"
	"github.com/radieske/matka-risk-platform/internal/shared/logger"
	"github.com/radieske/matka-risk-platform/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
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

	brokers := cfg.Brokers()
	reader := kafka.NewReader(brokers, "bet-ingest", cfg.TopicBetPlaced, cfg.TopicBetSettled)
	defer reader.Close()

	placedDLQ := kafka.NewWriter(brokers, cfg.TopicBetPlacedDLQ)
	defer placedDLQ.Close()
	settledDLQ := kafka.NewWriter(brokers, cfg.TopicBetSettledDLQ)
	defer settledDLQ.Close()

	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "bet_ingest_messages_consumed_total", Help: "mensagens consumidas"})
	persist := prometheus.NewCounter(prometheus.CounterOpts{Name: "bet_ingest_db_writes_total", Help: "apostas gravadas ou liquidadas"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "bet_ingest_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, persist, errorsBy)

	proc := &consumer.Processor{
		Log:          log,
		Reader:       reader,
		Store:        repository.NewPostgresRepo(pg),
		Broadcaster:  pubsub.NewRedisBroadcaster(redisClient, cfg.RedisPubSubChannel),
		TopicPlaced:  cfg.TopicBetPlaced,
		TopicSettled: cfg.TopicBetSettled,
		DeadLetters: map[string]consumer.MessageWriter{
			cfg.TopicBetPlaced:  placedDLQ,
			cfg.TopicBetSettled: settledDLQ,
		},
		OnConsumed: func() { consumed.Inc() },
		OnPersist:  func() { persist.Inc() },
		OnError:    func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	msrv := metrics.StartMetricsServer(log, cfg.MetricsPort, map[string]metrics.HealthFunc{
		"postgres": pg.PingContext,
		"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
	})
	defer func() {
		sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer scancel()
		_ = msrv.Shutdown(sctx)
	}()

	log.Info("bet-ingest started",
		zap.Strings("topics", []string{cfg.TopicBetPlaced, cfg.TopicBetSettled}),
		zap.String("channel", cfg.RedisPubSubChannel),
	)
	if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("processor stopped with error", zap.Error(err))
	}
	log.Info("bet-ingest stopped")
}
