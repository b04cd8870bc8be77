// FILE: internal/service/consumer_service.go
package service

import (
	"context"
	"encoding/json"
	"log"

	"hybrid-rag-be/internal/dto"
	"hybrid-rag-be/internal/websocket"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	hub       *websocket.Hub
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	hub *websocket.Hub,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		hub:       hub,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(msg *message.Message) {
	var event dto.ChatEventMessage
	err := json.Unmarshal(msg.Payload, &event)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal event: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	// Session-scoped events go to that session's viewers; everything else
	// (pipeline lifecycle) is broadcast.
	if sessionID, ok := event.Data["session_id"].(string); ok && sessionID != "" {
		log.Printf("[INFO] Forwarding %s event to session %s", event.Type, sessionID)
		cs.hub.Send(sessionID, msg.Payload)
	} else {
		log.Printf("[INFO] Broadcasting %s event", event.Type)
		cs.hub.Broadcast(msg.Payload)
	}

	msg.Ack()
}
