// FILE: internal/service/publisher_service.go
package service

import (
	"context"

	"hybrid-rag-be/internal/pkg/logger"
	"hybrid-rag-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IPublisherService interface {
	Publish(ctx context.Context, payload []byte) error
}

type publisherService struct {
	topicName string
	pubSub    *gochannel.GoChannel
}

func NewPublisherService(topicName string, pubSub *gochannel.GoChannel) IPublisherService {
	return &publisherService{
		topicName: topicName,
		pubSub:    pubSub,
	}
}

func (ps *publisherService) Publish(ctx context.Context, payload []byte) error {
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	return ps.pubSub.Publish(ps.topicName, msg)
}

// publishEvent marshals and publishes a lifecycle event. Event delivery is
// best-effort: failures are logged, never propagated to the caller's flow.
func publishEvent(ctx context.Context, publisher IPublisherService, log logger.ILogger, event events.Event) {
	if publisher == nil {
		return
	}
	payload, err := events.Marshal(event)
	if err != nil {
		return
	}
	if err := publisher.Publish(ctx, payload); err != nil && log != nil {
		log.Warn("EVENTS", "Failed to publish event", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
	}
}
