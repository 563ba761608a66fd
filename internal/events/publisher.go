// Package events publishes domain events (cart, order, comment changes) to
// kafka. Publishing is best-effort: callers log failures and carry on.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"example.com/storefront/internal/logx"
)

const (
	CartItemAdded    = "cart.item_added"
	OrderPlaced      = "order.placed"
	OrderPaid        = "order.paid"
	CommentModerated = "comment.moderated"
)

var ErrClosed = errors.New("events: publisher closed")

type Event struct {
	Type       string    `json:"type"`
	Key        string    `json:"key"`
	Payload    any       `json:"payload"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

type Config struct {
	Brokers      []string      `envconfig:"KAFKA_BROKERS"`
	Topic        string        `envconfig:"KAFKA_TOPIC" default:"storefront.events"`
	WriteTimeout time.Duration `envconfig:"KAFKA_WRITE_TIMEOUT" default:"5s"`
}

// New returns a kafka publisher, or a no-op one when no brokers are set.
func New(cfg Config) Publisher {
	if len(cfg.Brokers) == 0 {
		return Nop{}
	}
	return NewKafkaPublisher(cfg)
}

type KafkaPublisher struct {
	writer *kafka.Writer
	closed atomic.Bool
}

func NewKafkaPublisher(cfg Config) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: cfg.WriteTimeout,
		MaxAttempts:  3,
		Transport: &kafka.Transport{
			Dial: func(ctx context.Context, network, address string) (net.Conn, error) {
				dialer := &kafka.Dialer{Timeout: 10 * time.Second, DualStack: true, KeepAlive: 30 * time.Second}
				return dialer.DialContext(ctx, network, address)
			},
		},
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logx.Error().Msgf("kafka writer: "+msg, args...)
		}),
	}
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev Event) error {
	if p.closed.Load() {
		return ErrClosed
	}
	msg, err := toMessage(ev)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *KafkaPublisher) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	return p.writer.Close()
}

// toMessage keys by entity so events for one cart or comment stay ordered
// within a partition.
func toMessage(ev Event) (kafka.Message, error) {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	value, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(ev.Key),
		Value: value,
		Time:  ev.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(ev.Type)},
		},
	}, nil
}

type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
