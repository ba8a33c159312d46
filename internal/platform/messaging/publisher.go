package messaging

import (
	"context"
	"log/slog"
	"sync"
	"unicode/utf8"

	eventsv1 "postcard/contracts/gen/events/v1"
	"postcard/internal/platform/metrics"
)

// PublishInput is one (topic, type, payload) tuple. Key defaults to the
// minted event id; producers override it with a business id when they need
// per-entity ordering on partitioned brokers.
type PublishInput struct {
	Topic         string
	EventType     string
	Payload       map[string]any
	Key           string
	CorrelationID string
}

// Publisher wraps the broker client with the degraded-mode contract: a
// publish failure is logged and swallowed, never surfaced to the caller's
// business transaction. Construct one at boot and Close it on shutdown; no
// package-level singleton.
type Publisher struct {
	dialer  Dialer
	metrics metrics.Sink
	logger  *slog.Logger

	mu   sync.Mutex
	conn Conn
}

func NewPublisher(dialer Dialer, sink metrics.Sink, logger *slog.Logger) *Publisher {
	if sink == nil {
		sink = metrics.NewNoopSink()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		dialer:  dialer,
		metrics: sink,
		logger:  logger,
	}
}

// Publish builds an envelope for in.EventType and sends it. The envelope is
// returned in every case so callers can log or test against it; transport
// failures degrade to a WARN log. One attempt only — retry discipline lives
// in the consumer, not here.
func (p *Publisher) Publish(ctx context.Context, in PublishInput) eventsv1.Envelope {
	event := eventsv1.New(in.EventType, in.Payload, in.CorrelationID)
	key := in.Key
	if key == "" {
		key = event.EventID
	}

	conn, err := p.connection(ctx)
	if err != nil {
		p.logger.Warn("broker unavailable, event logged locally",
			"event", "publish_degraded",
			"module", "internal/platform/messaging",
			"layer", "platform",
			"topic", in.Topic,
			"event_type", event.EventType,
			"event_id", event.EventID,
			"error", err.Error(),
		)
		p.metrics.PublishDegraded(in.Topic)
		return event
	}

	value, err := event.Marshal()
	if err != nil {
		// Envelope payloads are plain JSON maps; this only fires on
		// non-serializable payload values injected by a caller bug.
		p.logger.Warn("event marshal failed, event logged locally",
			"event", "publish_marshal_failed",
			"module", "internal/platform/messaging",
			"layer", "platform",
			"topic", in.Topic,
			"event_type", event.EventType,
			"event_id", event.EventID,
			"error", err.Error(),
		)
		p.metrics.PublishDegraded(in.Topic)
		return event
	}

	if err := conn.Send(ctx, in.Topic, key, value); err != nil {
		p.dropConnection()
		p.logger.Warn("broker send failed, event logged locally",
			"event", "publish_send_failed",
			"module", "internal/platform/messaging",
			"layer", "platform",
			"topic", in.Topic,
			"event_type", event.EventType,
			"event_id", event.EventID,
			"error", err.Error(),
		)
		p.metrics.PublishDegraded(in.Topic)
		return event
	}

	p.logger.Info("event published",
		"event", "event_published",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"topic", in.Topic,
		"event_type", event.EventType,
		"event_id", event.EventID,
		"key", key,
	)
	p.metrics.EventPublished(in.Topic)
	return event
}

// PublishToDeadLetter wraps a failed raw message, untouched, in a
// dlq.message_failed envelope on the dead-letter topic. If the broker
// itself is down the message is lost; that is the one terminal failure
// mode here and it is logged at ERROR for external alerting.
func (p *Publisher) PublishToDeadLetter(ctx context.Context, originalTopic string, raw []byte, cause error, retryCount int) {
	errText := ""
	if cause != nil {
		errText = cause.Error()
	}
	event := eventsv1.New(eventsv1.DLQMessageFailed, map[string]any{
		"original_topic": originalTopic,
		"raw_value":      sanitizeRaw(raw),
		"error":          errText,
		"retry_count":    retryCount,
	}, "")

	conn, err := p.connection(ctx)
	if err != nil {
		p.logMessageLost(originalTopic, errText, err)
		return
	}
	value, err := event.Marshal()
	if err != nil {
		p.logMessageLost(originalTopic, errText, err)
		return
	}
	if err := conn.Send(ctx, eventsv1.TopicDLQEvents, event.EventID, value); err != nil {
		p.dropConnection()
		p.logMessageLost(originalTopic, errText, err)
		return
	}

	p.logger.Warn("message sent to dead-letter topic",
		"event", "message_dead_lettered",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"original_topic", originalTopic,
		"retry_count", retryCount,
		"error", errText,
	)
	p.metrics.DeadLettered(originalTopic)
}

// Close releases the cached connection. Safe to call more than once.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.conn = nil
	return err
}

func (p *Publisher) connection(ctx context.Context) (Conn, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn != nil {
		return p.conn, nil
	}
	conn, err := p.dialer.Dial(ctx)
	if err != nil {
		return nil, err
	}
	p.conn = conn
	return conn, nil
}

func (p *Publisher) dropConnection() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

func (p *Publisher) logMessageLost(originalTopic string, cause string, err error) {
	p.logger.Error("cannot publish to dead-letter topic, message lost",
		"event", "dlq_message_lost",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"original_topic", originalTopic,
		"cause", cause,
		"error", err.Error(),
	)
	p.metrics.MessageLost(originalTopic)
}

// sanitizeRaw keeps the DLQ payload JSON-safe: invalid UTF-8 bytes are
// replaced rather than dropped so the original message stays inspectable.
func sanitizeRaw(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}
	return string([]rune(string(raw)))
}
