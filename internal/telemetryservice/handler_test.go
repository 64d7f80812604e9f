package telemetryservice

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fennwick/pressroom/internal/common"
)

type fakeProducer struct {
	mu       sync.Mutex
	messages [][]byte
	err      error
}

func (p *fakeProducer) Publish(ctx context.Context, msg []byte, key common.BindingKey, exchange common.Exchange) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, msg)
	return nil
}

func (p *fakeProducer) published() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([][]byte, len(p.messages))
	copy(out, p.messages)
	return out
}

type fakeConsumer struct {
	deliveries chan amqp.Delivery
}

func (c *fakeConsumer) Consume(key common.BindingKey, exchange common.Exchange, queue common.Queue) (<-chan amqp.Delivery, error) {
	return c.deliveries, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func TestEmitPublishesEvent(t *testing.T) {
	producer := &fakeProducer{}
	s := NewTelemetryService(producer, "blog.example.com", true, testLogger())

	errMsg := "boom"
	s.Emit(context.Background(), Event{
		EventType:      "blog_post_created",
		Slug:           "hello-world",
		ResponseTimeMS: 12.5,
		StoreTimeMS:    3.25,
		Error:          &errMsg,
	})

	msgs := producer.published()
	require.Len(t, msgs, 1)

	var e Event
	require.NoError(t, json.Unmarshal(msgs[0], &e))
	assert.Equal(t, "blog_post_created", e.EventType)
	assert.Equal(t, "blog.example.com", e.Domain)
	assert.Equal(t, "hello-world", e.Slug)
	assert.Equal(t, 12.5, e.ResponseTimeMS)
	assert.NotEmpty(t, e.Timestamp)
	require.NotNil(t, e.Error)
	assert.Equal(t, "boom", *e.Error)
}

func TestEmitDisabledIsNoop(t *testing.T) {
	producer := &fakeProducer{}
	s := NewTelemetryService(producer, "blog.example.com", false, testLogger())

	s.Emit(context.Background(), Event{EventType: "blog_post_created"})

	assert.Empty(t, producer.published())
}

func TestEmitSwallowsPublishFailure(t *testing.T) {
	producer := &fakeProducer{err: assert.AnError}
	s := NewTelemetryService(producer, "blog.example.com", true, testLogger())

	// must not panic or surface the error
	s.Emit(context.Background(), Event{EventType: "blog_post_deleted"})
}

func TestForwarderPostsEachEventOnce(t *testing.T) {
	var mu sync.Mutex
	var received []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		received = append(received, string(body))
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	consumer := &fakeConsumer{deliveries: make(chan amqp.Delivery, 2)}
	consumer.deliveries <- amqp.Delivery{Body: []byte(`{"eventType":"blog_post_created"}`)}
	consumer.deliveries <- amqp.Delivery{Body: []byte(`{"eventType":"blog_post_deleted"}`)}

	f := NewForwarder(consumer, srv.URL, testLogger())
	f.Run()
	defer f.Close()

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 2
	}, 5*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, received[0], "blog_post_created")
	assert.Contains(t, received[1], "blog_post_deleted")
}

// TestTelemetryRoundTrip runs the whole pipeline against a real broker: Emit
// publishes to the telemetry exchange, the forwarder consumes the bound queue
// and posts each event to the endpoint.
func TestTelemetryRoundTrip(t *testing.T) {
	uri := common.TestRabbitMQ(t)

	mb, err := common.NewMessageBroker(uri)
	require.NoError(t, err)
	t.Cleanup(func() {
		mb.Close()
	})

	require.NoError(t, common.SetupTelemetryExchange(mb))

	var mu sync.Mutex
	var received []Event

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var e Event
		require.NoError(t, json.NewDecoder(r.Body).Decode(&e))
		mu.Lock()
		received = append(received, e)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	f := NewForwarder(mb, srv.URL, testLogger())
	f.Run()
	defer f.Close()

	s := NewTelemetryService(mb, "blog.example.com", true, testLogger())
	s.Emit(context.Background(), Event{EventType: "blog_post_created", Slug: "round-trip"})
	s.Emit(context.Background(), Event{EventType: "blog_post_deleted", Slug: "round-trip"})

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 2
	}, 10*time.Second, 50*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "blog_post_created", received[0].EventType)
	assert.Equal(t, "blog_post_deleted", received[1].EventType)
	for _, e := range received {
		assert.Equal(t, "blog.example.com", e.Domain)
		assert.Equal(t, "round-trip", e.Slug)
		assert.NotEmpty(t, e.Timestamp)
	}
}

func TestForwarderWithoutEndpointDrains(t *testing.T) {
	consumer := &fakeConsumer{deliveries: make(chan amqp.Delivery, 1)}
	consumer.deliveries <- amqp.Delivery{Body: []byte(`{"eventType":"blog_post_created"}`)}

	f := NewForwarder(consumer, "", testLogger())
	f.Run()
	defer f.Close()

	// the queue drains without an endpoint configured
	assert.Eventually(t, func() bool {
		return len(consumer.deliveries) == 0
	}, 2*time.Second, 10*time.Millisecond)
}
