package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/matka-risk-platform/internal/shared/config"
	"github.com/radieske/matka-risk-platform/internal/shared/kafka"
	"github.com/radieske/matka-risk-platform/internal/shared/logger"
	"github.com/radieske/matka-risk-platform/internal/shared/metrics"
)

var published = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "bet_simulator_messages_published_total",
	Help: "mensagens publicadas por tópico",
}, []string{"topic"})

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	prometheus.MustRegister(published)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	brokers := cfg.Brokers()
	placed := kafka.NewWriter(brokers, cfg.TopicBetPlaced)
	defer placed.Close()
	settled := kafka.NewWriter(brokers, cfg.TopicBetSettled)
	defer settled.Close()

	msrv := metrics.StartMetricsServer(log, cfg.MetricsPort, nil)
	defer msrv.Close()

	gen := newGenerator(time.Now().UnixNano(), cfg.SimMarkets)
	ticker := time.NewTicker(cfg.SimInterval)
	defer ticker.Stop()

	log.Info("bet simulator running",
		zap.Strings("markets", cfg.SimMarkets),
		zap.Duration("interval", cfg.SimInterval),
	)
	for {
		select {
		case <-ctx.Done():
			log.Info("bet simulator stopped")
			return
		case now := <-ticker.C:
			bet := gen.nextBet(now)
			if err := kafka.WriteJSON(ctx, placed, bet.BetID, bet); err != nil {
				log.Warn("publish bet failed", zap.Error(err))
			} else {
				published.WithLabelValues(cfg.TopicBetPlaced).Inc()
			}
			if s, ok := gen.maybeSettle(now); ok {
				if err := kafka.WriteJSON(ctx, settled, s.BetID, s); err != nil {
					log.Warn("publish settlement failed", zap.Error(err))
				} else {
					published.WithLabelValues(cfg.TopicBetSettled).Inc()
				}
			}
		}
	}
}
