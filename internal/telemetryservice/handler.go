package telemetryservice

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/fennwick/pressroom/internal/common"
)

// NewTelemetryService returns a sink that publishes events to the telemetry
// exchange. domain identifies the reporting deployment on every event. When
// enabled is false Emit is a no-op.
func NewTelemetryService(mb common.MessageProducer, domain string, enabled bool, logger TelemetryLogger) *TelemetryService {
	return &TelemetryService{
		producer: mb,
		domain:   domain,
		enabled:  enabled,
		logger:   logger,
	}
}

// Emit publishes the event. Failures are swallowed and logged: telemetry must
// never fail the operation that produced it.
func (s *TelemetryService) Emit(ctx context.Context, e Event) {
	if !s.enabled {
		return
	}

	e.Timestamp = time.Now().UTC().Format(time.RFC3339)
	e.Domain = s.domain

	msg, err := json.Marshal(e)
	if err != nil {
		s.logger.Warn("could not marshal telemetry event", slog.String("error", err.Error()))
		return
	}

	err = s.producer.Publish(ctx, msg, common.TelemetryEventKey, common.TelemetryExchange)
	if err != nil {
		s.logger.Warn("could not publish telemetry event", slog.String("event_type", e.EventType), slog.String("error", err.Error()))
	}
}

// NewForwarder returns a consumer that drains the telemetry queue and posts
// each event to the configured endpoint.
func NewForwarder(mb common.MessageConsumer, endpoint string, logger TelemetryLogger) *Forwarder {
	ctx, cancel := context.WithCancel(context.Background())
	return &Forwarder{
		mb:       mb,
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Run consumes the telemetry queue and forwards every event to the endpoint.
// Each event is attempted exactly once; delivery failures are logged and the
// message acknowledged regardless, so a dead endpoint cannot back up the queue.
func (f *Forwarder) Run() {
	msgs, err := f.mb.Consume(common.TelemetryEventKey, common.TelemetryExchange, common.TelemetryQueue)
	if err != nil {
		f.logger.Error("could not consume telemetry queue", slog.String("error", err.Error()))
		return
	}

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}

				if f.endpoint == "" {
					f.logger.Warn("telemetry endpoint not configured, event not sent", slog.String("body", string(msg.Body)))
					msg.Ack(false)
					continue
				}

				if err := f.post(msg.Body); err != nil {
					f.logger.Error("could not forward telemetry event", slog.String("error", err.Error()))
				}
				msg.Ack(false)

			case <-f.ctx.Done():
				f.logger.Info("stopping telemetry forwarder due to context cancellation")
				return
			}
		}
	}()
}

func (f *Forwarder) post(body []byte) error {
	req, err := http.NewRequestWithContext(f.ctx, http.MethodPost, f.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		f.logger.Error("telemetry server rejected event", slog.Int("status", res.StatusCode), slog.String("response", string(detail)))
	}

	return nil
}

func (f *Forwarder) Close() {
	f.cancel()
}
