package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/matka-risk-platform/internal/bet-ingest/repository"
	"github.com/radieske/matka-risk-platform/pkg/contracts/events"
)

// MessageReader é o pedaço do *kafka.Reader usado aqui: o commit é explícito
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

type Store interface {
	UpsertBet(ctx context.Context, e events.BetPlaced) error
	SettleBet(ctx context.Context, e events.BetSettled) (repository.Settlement, error)
}

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type Broadcaster interface {
	Publish(ctx context.Context, u events.JantriUpdate) error
}

// errSkip marca mensagens descartadas sem retry (payload inválido, tópico desconhecido)
var errSkip = errors.New("skip message")

const (
	defaultMaxAttempts = 5
	defaultBackoff     = 500 * time.Millisecond
)

// Processor consome apostas e liquidações do Kafka, persiste no Postgres e
// avisa os dashboards pelo Redis Pub/Sub
type Processor struct {
	Log          *zap.Logger
	Reader       MessageReader
	Store        Store
	Broadcaster  Broadcaster
	TopicPlaced  string
	TopicSettled string

	// DLQ por tópico de origem; nil => mensagem descartada só é logada
	DeadLetters map[string]MessageWriter

	MaxAttempts int           // tentativas no Store antes da DLQ; 0 => 5
	Backoff     time.Duration // espera entre tentativas, dobra a cada uma; 0 => 500ms

	OnConsumed func()       // métricas (counter++)
	OnPersist  func()       // métricas
	OnError    func(string) // métricas por fase
	Now        func() time.Time
}

// Run consome até o contexto ser cancelado. O offset só é commitado depois
// que a mensagem foi gravada ou foi para a DLQ.
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := p.Reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // encerra se o contexto for cancelado
			}
			p.Log.Warn("kafka fetch failed", zap.Error(err))
			p.fail("read")
			if err := p.sleep(ctx, p.backoff()); err != nil {
				return err
			}
			continue
		}
		if p.OnConsumed != nil {
			p.OnConsumed()
		}
		if err := p.process(ctx, m); err != nil {
			return err // só erro de contexto chega aqui; sem commit, a mensagem volta
		}
		if err := p.Reader.CommitMessages(ctx, m); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.Log.Warn("kafka commit failed", zap.String("topic", m.Topic), zap.Int64("offset", m.Offset), zap.Error(err))
			p.fail("commit")
		}
	}
}

// process tenta o Handle com backoff; esgotadas as tentativas (ou payload
// inválido) a mensagem vai para a DLQ.
func (p *Processor) process(ctx context.Context, m kafka.Message) error {
	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	wait := p.backoff()
	for attempt := 1; ; attempt++ {
		err := p.Handle(ctx, m)
		if err == nil {
			return nil
		}
		if errors.Is(err, errSkip) {
			return p.deadLetter(ctx, m, err)
		}
		if attempt >= maxAttempts {
			p.Log.Error("bet message gave up after retries",
				zap.String("topic", m.Topic),
				zap.ByteString("key", m.Key),
				zap.Int("attempts", attempt),
				zap.Error(err),
			)
			return p.deadLetter(ctx, m, err)
		}
		p.Log.Warn("bet message failed, retrying",
			zap.String("topic", m.Topic),
			zap.ByteString("key", m.Key),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if err := p.sleep(ctx, wait); err != nil {
			return err
		}
		wait *= 2
	}
}

// Handle processa uma mensagem; erro de broadcast não desfaz a persistência
func (p *Processor) Handle(ctx context.Context, m kafka.Message) error {
	var upd events.JantriUpdate
	switch m.Topic {
	case p.TopicPlaced:
		var ev events.BetPlaced
		if err := json.Unmarshal(m.Value, &ev); err != nil || ev.BetID == "" {
			p.Log.Warn("invalid bet_placed", zap.Error(err))
			p.fail("decode")
			return errSkip
		}
		ev.GameMode = strings.ToLower(strings.TrimSpace(ev.GameMode))
		if err := p.Store.UpsertBet(ctx, ev); err != nil {
			p.fail("db_upsert")
			return fmt.Errorf("upsert bet %s: %w", ev.BetID, err)
		}
		upd = events.JantriUpdate{MarketID: ev.MarketID, BetID: ev.BetID, Kind: events.UpdatePlaced}
	case p.TopicSettled:
		var ev events.BetSettled
		if err := json.Unmarshal(m.Value, &ev); err != nil || ev.BetID == "" {
			p.Log.Warn("invalid bet_settled", zap.Error(err))
			p.fail("decode")
			return errSkip
		}
		s, err := p.Store.SettleBet(ctx, ev)
		if err != nil {
			p.fail("db_settle")
			return fmt.Errorf("settle bet %s: %w", ev.BetID, err)
		}
		if p.OnPersist != nil {
			p.OnPersist()
		}
		if !s.Placed {
			// a aposta chega depois pelo outro tópico e já entra liquidada
			p.Log.Info("settlement stored ahead of its bet", zap.String("bet_id", ev.BetID))
			return nil
		}
		upd = events.JantriUpdate{MarketID: s.MarketID, BetID: ev.BetID, Kind: events.UpdateSettled}
		return p.broadcast(ctx, upd)
	default:
		p.Log.Warn("unexpected topic", zap.String("topic", m.Topic))
		p.fail("topic")
		return errSkip
	}

	if p.OnPersist != nil {
		p.OnPersist()
	}
	return p.broadcast(ctx, upd)
}

func (p *Processor) broadcast(ctx context.Context, upd events.JantriUpdate) error {
	upd.Ts = p.now()
	bctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	if err := p.Broadcaster.Publish(bctx, upd); err != nil {
		p.Log.Warn("jantri broadcast failed", zap.String("market_id", upd.MarketID), zap.Error(err))
		p.fail("broadcast")
	}
	return nil
}

// deadLetter insiste até a DLQ aceitar: sem isso o commit perderia a mensagem
func (p *Processor) deadLetter(ctx context.Context, m kafka.Message, cause error) error {
	w := p.DeadLetters[m.Topic]
	if w == nil {
		p.Log.Warn("message dropped, no dlq for topic", zap.String("topic", m.Topic), zap.Error(cause))
		return nil
	}
	headers := append([]kafka.Header{}, m.Headers...)
	headers = append(headers,
		kafka.Header{Key: "source_topic", Value: []byte(m.Topic)},
		kafka.Header{Key: "error", Value: []byte(cause.Error())},
	)
	dlq := kafka.Message{Key: m.Key, Value: m.Value, Headers: headers}
	wait := p.backoff()
	for {
		err := w.WriteMessages(ctx, dlq)
		if err == nil {
			return nil
		}
		p.Log.Warn("dlq write failed", zap.String("topic", m.Topic), zap.Error(err))
		p.fail("dlq")
		if err := p.sleep(ctx, wait); err != nil {
			return err
		}
		if wait < 30*time.Second {
			wait *= 2
		}
	}
}

func (p *Processor) backoff() time.Duration {
	if p.Backoff > 0 {
		return p.Backoff
	}
	return defaultBackoff
}

func (p *Processor) sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (p *Processor) fail(stage string) {
	if p.OnError != nil {
		p.OnError(stage)
	}
}

func (p *Processor) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now().UTC()
}
