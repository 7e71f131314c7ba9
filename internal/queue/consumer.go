package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "strings"
    "sync"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"

    "github.com/iliyamo/event-space-recommender/internal/config"
)

// AuditFile is the name of the file the consumer appends to inside its
// audit directory.
const AuditFile = "events.log"

// Consumer reads the events queue and appends one line per event to
// <dir>/events.log.
type Consumer struct {
    cfg config.QueueConfig
    dir string
    log *zap.Logger

    mu sync.Mutex // serialises appends
}

func NewConsumer(cfg config.QueueConfig, dir string, log *zap.Logger) *Consumer {
    if log == nil {
        log = zap.NewNop()
    }
    if dir == "" {
        dir = "logs"
    }
    return &Consumer{cfg: cfg, dir: dir, log: log.Named("event-consumer")}
}

// Run connects to the broker, declares the queue (durable) and consumes
// until ctx is cancelled.  Lost connections are retried with exponential
// backoff capped at 30s.  Malformed messages are rejected without requeue.
func (c *Consumer) Run(ctx context.Context) error {
    backoff := time.Second
    for {
        conn, err := amqp.Dial(c.cfg.URL)
        if err != nil {
            c.log.Warn("dial broker failed", zap.Error(err), zap.Duration("retry_in", backoff))
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second

        err = c.consumeLoop(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        c.log.Warn("consume loop ended, reconnecting", zap.Error(err))
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        c.log.Warn("set QoS failed", zap.Error(err))
    }
    if _, err := ch.QueueDeclare(c.cfg.Queue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.Consume(c.cfg.Queue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }
    c.log.Info("consuming", zap.String("queue", c.cfg.Queue))

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-msgs:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            if err := c.handleMessage(d.Body); err != nil {
                c.log.Error("handle message failed", zap.Error(err))
                _ = d.Nack(false, false)
                continue
            }
            _ = d.Ack(false)
        }
    }
}

func (c *Consumer) handleMessage(body []byte) error {
    var env Envelope
    if err := json.Unmarshal(body, &env); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    line, err := formatEvent(env)
    if err != nil {
        return err
    }

    c.mu.Lock()
    defer c.mu.Unlock()
    if err := os.MkdirAll(c.dir, 0o755); err != nil {
        return fmt.Errorf("mkdir %s: %w", c.dir, err)
    }
    f, err := os.OpenFile(filepath.Join(c.dir, AuditFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open audit file: %w", err)
    }
    defer f.Close()
    if _, err := f.WriteString(line); err != nil {
        return fmt.Errorf("write audit file: %w", err)
    }
    return nil
}

func formatEvent(env Envelope) (string, error) {
    at := env.OccurredAt.UTC().Format(time.RFC3339)
    switch env.Type {
    case TypeCatalogReloaded:
        var ev CatalogReloadedEvent
        if err := json.Unmarshal(env.Payload, &ev); err != nil {
            return "", fmt.Errorf("unmarshal %s: %w", env.Type, err)
        }
        return fmt.Sprintf("[%s] Catalog reloaded | version=%s | previous=%s | rooms=%d | issues=%d | source=%s | by=%q\n",
            at, ev.Version, orDash(ev.PreviousVersion), ev.RoomCount, ev.IssueCount, ev.Source, ev.Subject), nil
    case TypeRecommendationIssued:
        var ev RecommendationIssuedEvent
        if err := json.Unmarshal(env.Payload, &ev); err != nil {
            return "", fmt.Errorf("unmarshal %s: %w", env.Type, err)
        }
        return fmt.Sprintf("[%s] Recommendation issued | catalog=%s | attendees=%d | style=%s | relaxed=%t | rooms=[%s] | origin=%s\n",
            at, ev.CatalogVersion, ev.AttendeeCount, ev.Style, ev.StyleRelaxed, strings.Join(ev.RoomIDs, ","), ev.Origin), nil
    default:
        return "", fmt.Errorf("unknown event type %q", env.Type)
    }
}

func orDash(s string) string {
    if s == "" {
        return "-"
    }
    return s
}
