package metrics

// Sink receives orchestration-core counters. All methods are fire-and-forget
// and must never block or propagate errors into the messaging path.
type Sink interface {
	// Publisher side.
	EventPublished(topic string)
	PublishDegraded(topic string)

	// Consumer side.
	EventConsumed(topic string)
	DuplicateSkipped(topic string)
	UnknownEventType(topic string)
	RetryAttempt(topic string)
	DeadLettered(topic string)

	// MessageLost is the one terminal failure mode of the core (DLQ publish
	// itself failed); alerting hangs off this counter.
	MessageLost(topic string)
}

// NoopSink is used when metrics are disabled to avoid nil checks.
type NoopSink struct{}

func NewNoopSink() *NoopSink { return &NoopSink{} }

func (n *NoopSink) EventPublished(string)   {}
func (n *NoopSink) PublishDegraded(string)  {}
func (n *NoopSink) EventConsumed(string)    {}
func (n *NoopSink) DuplicateSkipped(string) {}
func (n *NoopSink) UnknownEventType(string) {}
func (n *NoopSink) RetryAttempt(string)     {}
func (n *NoopSink) DeadLettered(string)     {}
func (n *NoopSink) MessageLost(string)      {}

var _ Sink = (*NoopSink)(nil)
