package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"

	"github.com/Lixing-Zhang/restaurant-recommender/internal/metrics"
)

// mockWriter records written messages instead of talking to a broker
type mockWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
	closed   bool
}

func (m *mockWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msgs...)
	return nil
}

func (m *mockWriter) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// blockingWriter holds every write until its context expires or release is closed
type blockingWriter struct {
	release chan struct{}
}

func (b *blockingWriter) WriteMessages(ctx context.Context, _ ...kafka.Message) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.release:
		return nil
	}
}

func (b *blockingWriter) Close() error { return nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestKafkaPublisher_Publish(t *testing.T) {
	writer := &mockWriter{}
	publisher := NewKafkaPublisherWithWriter(writer, 4, time.Second, testLogger())
	before := testutil.ToFloat64(metrics.EventsPublished.WithLabelValues("success"))

	event := RecommendationServed{
		RequestID:     "req-1",
		Strategy:      "rating",
		Cuisine:       "Italian",
		RestaurantIDs: []int64{2, 1},
		ServedAt:      time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}

	if err := publisher.Publish(context.Background(), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Close drains the queue
	if err := publisher.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(writer.messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(writer.messages))
	}
	msg := writer.messages[0]
	if string(msg.Key) != "req-1" {
		t.Errorf("expected key req-1, got %q", msg.Key)
	}

	var decoded RecommendationServed
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("failed to decode message: %v", err)
	}
	if decoded.Strategy != "rating" || len(decoded.RestaurantIDs) != 2 || decoded.RestaurantIDs[0] != 2 {
		t.Errorf("unexpected payload %+v", decoded)
	}

	if got := testutil.ToFloat64(metrics.EventsPublished.WithLabelValues("success")); got != before+1 {
		t.Errorf("expected success counter to grow by 1, got %v -> %v", before, got)
	}
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	writer := &mockWriter{err: errors.New("broker unavailable")}
	publisher := NewKafkaPublisherWithWriter(writer, 4, time.Second, testLogger())
	before := testutil.ToFloat64(metrics.EventsPublished.WithLabelValues("error"))

	if err := publisher.Publish(context.Background(), RecommendationServed{RequestID: "req-2"}); err != nil {
		t.Fatalf("expected write failures to stay off the caller, got %v", err)
	}
	if err := publisher.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := testutil.ToFloat64(metrics.EventsPublished.WithLabelValues("error")); got != before+1 {
		t.Errorf("expected error counter to grow by 1, got %v -> %v", before, got)
	}
}

func TestKafkaPublisher_DoesNotWaitForBroker(t *testing.T) {
	writer := &blockingWriter{release: make(chan struct{})}
	publisher := NewKafkaPublisherWithWriter(writer, 4, time.Minute, testLogger())

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := publisher.Publish(context.Background(), RecommendationServed{RequestID: "req"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("expected Publish to return immediately, took %v", elapsed)
	}

	close(writer.release)
	if err := publisher.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestKafkaPublisher_QueueFull(t *testing.T) {
	writer := &blockingWriter{release: make(chan struct{})}
	publisher := NewKafkaPublisherWithWriter(writer, 1, time.Minute, testLogger())
	before := testutil.ToFloat64(metrics.EventsPublished.WithLabelValues("dropped"))

	// One event may sit in the writer and one in the queue; the rest are dropped.
	var full int
	for i := 0; i < 5; i++ {
		if err := publisher.Publish(context.Background(), RecommendationServed{RequestID: "req"}); errors.Is(err, ErrQueueFull) {
			full++
		}
	}
	if full < 3 {
		t.Errorf("expected at least 3 dropped events, got %d", full)
	}
	if got := testutil.ToFloat64(metrics.EventsPublished.WithLabelValues("dropped")); got != before+float64(full) {
		t.Errorf("expected dropped counter to grow by %d, got %v -> %v", full, before, got)
	}

	close(writer.release)
	if err := publisher.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestKafkaPublisher_Close(t *testing.T) {
	writer := &mockWriter{}
	publisher := NewKafkaPublisherWithWriter(writer, 0, 0, testLogger())

	if err := publisher.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !writer.closed {
		t.Error("expected writer to be closed")
	}
	if err := publisher.Close(); err != nil {
		t.Errorf("expected second Close to be a no-op, got %v", err)
	}
	if err := publisher.Publish(context.Background(), RecommendationServed{}); !errors.Is(err, ErrPublisherClosed) {
		t.Errorf("expected ErrPublisherClosed, got %v", err)
	}
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	if err := p.Publish(context.Background(), RecommendationServed{}); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}
