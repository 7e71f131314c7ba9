// Package service publishes domain events to RabbitMQ.  Publication is best
// effort: failures are logged and returned, and callers on the request path
// ignore them.
package service

import (
    "context"
    "encoding/json"
    "fmt"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"

    "github.com/iliyamo/event-space-recommender/internal/config"
    q "github.com/iliyamo/event-space-recommender/internal/queue"
)

// EventPublisher is implemented by AMQPPublisher and NopPublisher.
type EventPublisher interface {
    PublishCatalogReloaded(ctx context.Context, ev q.CatalogReloadedEvent) error
    PublishRecommendationIssued(ctx context.Context, ev q.RecommendationIssuedEvent) error
}

// NopPublisher drops every event.  It is used when EVENTS_ENABLED is false.
type NopPublisher struct{}

func (NopPublisher) PublishCatalogReloaded(context.Context, q.CatalogReloadedEvent) error { return nil }

func (NopPublisher) PublishRecommendationIssued(context.Context, q.RecommendationIssuedEvent) error {
    return nil
}

// AMQPPublisher sends events to the configured queue on the default exchange.
// Each publish dials its own connection; event volume is a few per request at
// most.
type AMQPPublisher struct {
    url   string
    queue string
    log   *zap.Logger
    now   func() time.Time
}

// NewPublisher returns an AMQPPublisher for cfg, or a NopPublisher when
// events are disabled.
func NewPublisher(cfg config.QueueConfig, log *zap.Logger) EventPublisher {
    if !cfg.Enabled || cfg.URL == "" {
        return NopPublisher{}
    }
    if log == nil {
        log = zap.NewNop()
    }
    return &AMQPPublisher{url: cfg.URL, queue: cfg.Queue, log: log.Named("publisher"), now: time.Now}
}

func (p *AMQPPublisher) PublishCatalogReloaded(ctx context.Context, ev q.CatalogReloadedEvent) error {
    return p.publish(ctx, q.TypeCatalogReloaded, ev)
}

func (p *AMQPPublisher) PublishRecommendationIssued(ctx context.Context, ev q.RecommendationIssuedEvent) error {
    return p.publish(ctx, q.TypeRecommendationIssued, ev)
}

func (p *AMQPPublisher) publish(ctx context.Context, typ string, payload any) error {
    env, err := q.NewEnvelope(typ, payload, p.now())
    if err != nil {
        return err
    }
    body, err := json.Marshal(env)
    if err != nil {
        return fmt.Errorf("marshal envelope: %w", err)
    }

    conn, err := amqp.Dial(p.url)
    if err != nil {
        p.log.Warn("dial failed", zap.String("type", typ), zap.Error(err))
        return fmt.Errorf("dial broker: %w", err)
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        p.log.Warn("channel open failed", zap.Error(err))
        return fmt.Errorf("open channel: %w", err)
    }
    defer func() { _ = ch.Close() }()

    // durable so events survive broker restarts
    if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
        p.log.Warn("queue declare failed", zap.String("queue", p.queue), zap.Error(err))
        return fmt.Errorf("declare queue: %w", err)
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    env.OccurredAt,
        Type:         typ,
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
        p.log.Warn("publish failed", zap.String("type", typ), zap.Error(err))
        return fmt.Errorf("publish %s: %w", typ, err)
    }
    p.log.Debug("event published", zap.String("type", typ))
    return nil
}

// Go publishes in the background with its own timeout so the request that
// produced the event never waits on the broker.
func Go(log *zap.Logger, fn func(ctx context.Context) error) {
    go func() {
        ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
        defer cancel()
        if err := fn(ctx); err != nil && log != nil {
            log.Debug("event not published", zap.Error(err))
        }
    }()
}
