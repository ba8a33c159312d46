package messaging

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// ErrBusUnavailable is returned by Dial/Send once the bus is shut down.
// The publisher contains it; it never reaches business callers.
var ErrBusUnavailable = errors.New("event bus unavailable")

// Message is the raw unit moved between producers and consumers. Value is
// the serialized envelope; consumers own deserialization so poisoned bytes
// can still be forwarded to the DLQ untouched.
type Message struct {
	Topic string
	Key   string
	Value []byte
}

// Conn is a live broker connection.
type Conn interface {
	Send(ctx context.Context, topic string, key string, value []byte) error
	Close() error
}

// Dialer lazily establishes broker connections.
type Dialer interface {
	Dial(ctx context.Context) (Conn, error)
}

// Bus is the event bus adapter shared by publisher and consumer loop.
// Current implementation is in-process publish/subscribe while runtime
// wiring is finalized for external brokers; Shutdown models the broker
// becoming unreachable.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]chan Message
	closed      bool
	logger      *slog.Logger
}

func NewBus(_ []string, logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		subscribers: make(map[string][]chan Message),
		logger:      logger,
	}
}

// Dial hands out a connection bound to this bus. It fails once the bus is
// shut down, which is how callers observe an unreachable broker.
func (b *Bus) Dial(_ context.Context) (Conn, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, ErrBusUnavailable
	}
	return &busConn{bus: b}, nil
}

// Subscribe registers a consumer channel for topic. The channel is closed
// on Shutdown so consumer loops drain and exit.
func (b *Bus) Subscribe(topic string, _ string) (<-chan Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrBusUnavailable
	}
	ch := make(chan Message, 128)
	b.subscribers[topic] = append(b.subscribers[topic], ch)
	return ch, nil
}

// Shutdown closes the bus: subscriber channels are closed and later dials
// or sends fail with ErrBusUnavailable.
func (b *Bus) Shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, subs := range b.subscribers {
		for _, ch := range subs {
			close(ch)
		}
	}
	b.subscribers = make(map[string][]chan Message)
}

func (b *Bus) deliver(msg Message) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBusUnavailable
	}
	for _, ch := range b.subscribers[msg.Topic] {
		select {
		case ch <- msg:
		default:
			b.logger.Warn("dropping message for slow subscriber",
				"event", "bus_deliver_drop",
				"module", "internal/platform/messaging",
				"layer", "platform",
				"topic", msg.Topic,
				"key", msg.Key,
			)
		}
	}
	return nil
}

type busConn struct {
	bus *Bus
}

func (c *busConn) Send(_ context.Context, topic string, key string, value []byte) error {
	return c.bus.deliver(Message{Topic: topic, Key: key, Value: value})
}

func (c *busConn) Close() error { return nil }
