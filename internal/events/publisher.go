// Package events publishes a record of every recommendation served.
package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/segmentio/kafka-go"

	"github.com/Lixing-Zhang/restaurant-recommender/internal/metrics"
)

// RecommendationServed describes one answered recommendation request
type RecommendationServed struct {
	RequestID     string    `json:"request_id"`
	Strategy      string    `json:"strategy"`
	Cuisine       string    `json:"cuisine,omitempty"`
	RestaurantIDs []int64   `json:"restaurant_ids"`
	ServedAt      time.Time `json:"served_at"`
}

// Publisher delivers recommendation events
type Publisher interface {
	Publish(ctx context.Context, event RecommendationServed) error
	Close() error
}

// KafkaWriter is the subset of kafka.Writer used by KafkaPublisher.
// This allows for mocking in unit tests.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Queue defaults
const (
	DefaultBufferSize   = 256
	DefaultWriteTimeout = 2 * time.Second
)

var (
	// ErrPublisherClosed is returned by Publish after Close
	ErrPublisherClosed = errors.New("event publisher closed")
	// ErrQueueFull is returned when the event is dropped because the queue is full
	ErrQueueFull = errors.New("event queue full")
)

// KafkaPublisher queues events and writes them as JSON messages keyed by
// request id from a background goroutine. Publish never waits on the broker.
type KafkaPublisher struct {
	writer       KafkaWriter
	logger       *slog.Logger
	writeTimeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan kafka.Message
	done   chan struct{}
}

// NewKafkaPublisher creates a publisher writing to topic on brokers
func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
	return NewKafkaPublisherWithWriter(writer, DefaultBufferSize, DefaultWriteTimeout, logger)
}

// NewKafkaPublisherWithWriter creates a publisher over any KafkaWriter.
// Non-positive sizes and timeouts fall back to the defaults.
func NewKafkaPublisherWithWriter(writer KafkaWriter, bufferSize int, writeTimeout time.Duration, logger *slog.Logger) *KafkaPublisher {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	if writeTimeout <= 0 {
		writeTimeout = DefaultWriteTimeout
	}

	p := &KafkaPublisher{
		writer:       writer,
		logger:       logger,
		writeTimeout: writeTimeout,
		queue:        make(chan kafka.Message, bufferSize),
		done:         make(chan struct{}),
	}
	go p.run()
	return p
}

// Publish encodes the event and queues it for delivery.
// A full queue drops the event and returns ErrQueueFull.
func (p *KafkaPublisher) Publish(ctx context.Context, event RecommendationServed) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(event)
	if err != nil {
		metrics.EventsPublished.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to encode event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.RequestID),
		Value: payload,
		Time:  event.ServedAt,
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}

	select {
	case p.queue <- msg:
		return nil
	default:
		metrics.EventsPublished.WithLabelValues("dropped").Inc()
		return ErrQueueFull
	}
}

func (p *KafkaPublisher) run() {
	defer close(p.done)

	for msg := range p.queue {
		ctx, cancel := context.WithTimeout(context.Background(), p.writeTimeout)
		err := p.writer.WriteMessages(ctx, msg)
		cancel()

		if err != nil {
			metrics.EventsPublished.WithLabelValues("error").Inc()
			p.logger.Warn("failed to publish recommendation event",
				"request_id", string(msg.Key),
				"error", err,
			)
			continue
		}

		metrics.EventsPublished.WithLabelValues("success").Inc()
		p.logger.Debug("recommendation event published", "request_id", string(msg.Key))
	}
}

// Close stops accepting events, drains the queue and closes the writer
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	<-p.done
	return p.writer.Close()
}

// NopPublisher discards events
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, RecommendationServed) error { return nil }

func (NopPublisher) Close() error { return nil }
