package telemetryservice

import (
	"context"
	"net/http"

	"github.com/fennwick/pressroom/internal/common"
)

// Event is the wire shape of a single telemetry report. Error is nil on
// success, otherwise the message of whatever failed during the operation.
type Event struct {
	EventType      string  `json:"eventType"`
	Timestamp      string  `json:"timestamp"`
	Domain         string  `json:"domain"`
	Slug           string  `json:"slug,omitempty"`
	ResponseTimeMS float64 `json:"responseTime"`
	StoreTimeMS    float64 `json:"storeTime"`
	Error          *string `json:"error"`
}

// Sink accepts telemetry events. Implementations must never return an error to
// the caller: emission is best effort and failures are logged only.
type Sink interface {
	Emit(ctx context.Context, e Event)
}

type TelemetryService struct {
	producer common.MessageProducer
	domain   string
	enabled  bool
	logger   TelemetryLogger
}

type TelemetryLogger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	Info(msg string, args ...any)
}

type Forwarder struct {
	mb       common.MessageConsumer
	endpoint string
	client   *http.Client
	logger   TelemetryLogger
	ctx      context.Context
	cancel   context.CancelFunc
}
