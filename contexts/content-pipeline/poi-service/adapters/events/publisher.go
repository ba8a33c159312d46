package events

import (
	"context"

	"postcard/contexts/content-pipeline/poi-service/ports"
	contractsv1 "postcard/contracts/gen/events/v1"
	"postcard/internal/platform/messaging"
)

// Publisher binds the POI service to the poi events topic. Delivery is
// degraded-mode: the underlying broker publisher never errors.
type Publisher struct {
	Broker *messaging.Publisher
	Topic  string
}

func NewPublisher(broker *messaging.Publisher) Publisher {
	return Publisher{
		Broker: broker,
		Topic:  contractsv1.TopicPOIEvents,
	}
}

func (p Publisher) Publish(ctx context.Context, eventType string, key string, payload map[string]any) {
	p.Broker.Publish(ctx, messaging.PublishInput{
		Topic:     p.Topic,
		EventType: eventType,
		Key:       key,
		Payload:   payload,
	})
}

var _ ports.EventPublisher = Publisher{}
