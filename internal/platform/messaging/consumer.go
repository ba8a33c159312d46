package messaging

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	eventsv1 "postcard/contracts/gen/events/v1"
	"postcard/internal/platform/metrics"
)

// DefaultMaxRetries bounds per-message dispatch attempts.
const DefaultMaxRetries = 3

// DefaultBackoffBase is the first retry delay; each further delay doubles.
const DefaultBackoffBase = time.Second

// Handler processes one decoded envelope. A nil return acknowledges the
// event; an error triggers the retry/DLQ discipline.
type Handler func(ctx context.Context, event eventsv1.Envelope) error

// Subscriber registers a topic consumer channel.
type Subscriber interface {
	Subscribe(topic string, group string) (<-chan Message, error)
}

// DeadLetterer forwards an exhausted raw message to the dead-letter topic.
type DeadLetterer interface {
	PublishToDeadLetter(ctx context.Context, originalTopic string, raw []byte, cause error, retryCount int)
}

// Loop is the idempotent consumer loop: deserialize, dedup, dispatch with
// bounded exponential backoff, dead-letter on exhaustion. One Loop runs per
// process per subscribed topic. A single message's failure never halts the
// loop itself.
type Loop struct {
	Subscriber  Subscriber
	Handlers    map[string]Handler
	Dedup       *Dedup
	DeadLetters DeadLetterer
	MaxRetries  int
	BackoffBase time.Duration
	// Sleep is swapped in tests to observe backoff growth.
	Sleep   func(time.Duration)
	Metrics metrics.Sink
	Logger  *slog.Logger
}

// Run subscribes to topic and processes messages until ctx is cancelled or
// the bus shuts down. Cancellation stops pulling new messages; the message
// in flight finishes its retry sequence.
func (l *Loop) Run(ctx context.Context, topic string, group string) error {
	logger := l.logger()
	ch, err := l.Subscriber.Subscribe(topic, group)
	if err != nil {
		return err
	}

	logger.Info("consumer loop started",
		"event", "consumer_started",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"topic", topic,
		"consumer_group", group,
	)

	for {
		select {
		case <-ctx.Done():
			logger.Info("consumer loop stopping",
				"event", "consumer_stopped",
				"module", "internal/platform/messaging",
				"layer", "platform",
				"topic", topic,
			)
			return nil
		case msg, ok := <-ch:
			if !ok {
				logger.Info("consumer channel closed",
					"event", "consumer_channel_closed",
					"module", "internal/platform/messaging",
					"layer", "platform",
					"topic", topic,
				)
				return nil
			}
			l.Process(ctx, msg)
		}
	}
}

// Process runs the per-message state machine:
// received → deduped-skip | dispatched → success | retrying → exhausted-to-DLQ.
// A deserialization failure consumes a retry attempt like any handler error,
// since it may be transient corruption.
func (l *Loop) Process(ctx context.Context, msg Message) {
	logger := l.logger()
	maxRetries := l.maxRetries()
	delays := l.newBackoff()

	var envelope *eventsv1.Envelope
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		if envelope == nil {
			parsed, err := eventsv1.Unmarshal(msg.Value)
			if err != nil {
				lastErr = err
				logger.Warn("message decode failed",
					"event", "consumer_decode_failed",
					"module", "internal/platform/messaging",
					"layer", "platform",
					"topic", msg.Topic,
					"attempt", attempt,
					"max_retries", maxRetries,
					"error", err.Error(),
				)
				l.waitBeforeRetry(msg.Topic, attempt, maxRetries, delays)
				continue
			}
			envelope = &parsed

			if l.Dedup != nil && l.Dedup.Seen(parsed.EventID) {
				logger.Debug("duplicate event skipped",
					"event", "consumer_duplicate_skipped",
					"module", "internal/platform/messaging",
					"layer", "platform",
					"topic", msg.Topic,
					"event_id", parsed.EventID,
					"event_type", parsed.EventType,
				)
				l.metrics().DuplicateSkipped(msg.Topic)
				return
			}
		}

		handler, known := l.Handlers[envelope.EventType]
		if !known {
			// Forward compatibility: event types this consumer does not
			// understand are handled-by-ignoring, not errors.
			logger.Debug("ignoring unknown event type",
				"event", "consumer_unknown_event_type",
				"module", "internal/platform/messaging",
				"layer", "platform",
				"topic", msg.Topic,
				"event_id", envelope.EventID,
				"event_type", envelope.EventType,
			)
			l.metrics().UnknownEventType(msg.Topic)
			return
		}

		if err := handler(ctx, *envelope); err != nil {
			lastErr = err
			logger.Warn("handler failed",
				"event", "consumer_handler_failed",
				"module", "internal/platform/messaging",
				"layer", "platform",
				"topic", msg.Topic,
				"event_id", envelope.EventID,
				"event_type", envelope.EventType,
				"attempt", attempt,
				"max_retries", maxRetries,
				"error", err.Error(),
			)
			l.waitBeforeRetry(msg.Topic, attempt, maxRetries, delays)
			continue
		}

		if l.Dedup != nil {
			l.Dedup.Mark(envelope.EventID)
		}
		logger.Info("event processed",
			"event", "consumer_event_processed",
			"module", "internal/platform/messaging",
			"layer", "platform",
			"topic", msg.Topic,
			"event_id", envelope.EventID,
			"event_type", envelope.EventType,
			"attempt", attempt,
		)
		l.metrics().EventConsumed(msg.Topic)
		return
	}

	logger.Error("retries exhausted, forwarding to dead-letter topic",
		"event", "consumer_retries_exhausted",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"topic", msg.Topic,
		"max_retries", maxRetries,
		"error", errText(lastErr),
	)
	if l.DeadLetters != nil {
		l.DeadLetters.PublishToDeadLetter(ctx, msg.Topic, msg.Value, lastErr, maxRetries)
	}
}

// waitBeforeRetry sleeps base * 2^(attempt-1) before the next attempt.
// Sleeps are deliberate blocking waits, not ctx-aborted: a shutdown signal
// lets the in-flight retry sequence finish or exhaust into the DLQ.
func (l *Loop) waitBeforeRetry(topic string, attempt int, maxRetries int, delays backoff.BackOff) {
	if attempt >= maxRetries {
		return
	}
	l.metrics().RetryAttempt(topic)
	sleep := l.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	sleep(delays.NextBackOff())
}

func (l *Loop) newBackoff() backoff.BackOff {
	base := l.BackoffBase
	if base <= 0 {
		base = DefaultBackoffBase
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = base
	b.RandomizationFactor = 0
	b.Multiplier = 2
	b.MaxInterval = 24 * time.Hour
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

func (l *Loop) maxRetries() int {
	if l.MaxRetries <= 0 {
		return DefaultMaxRetries
	}
	return l.MaxRetries
}

func (l *Loop) metrics() metrics.Sink {
	if l.Metrics != nil {
		return l.Metrics
	}
	return metrics.NewNoopSink()
}

func (l *Loop) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
