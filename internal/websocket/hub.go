package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"hybrid-rag-be/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// Hub routes chat lifecycle events to the live viewers of each session.
// Payloads arrive pre-serialized from the event consumer and are forwarded
// verbatim.
type Hub struct {
	// Registered clients map: SessionID -> List of Clients (multi-tab)
	clients map[string][]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Lock for safe map access
	mu sync.RWMutex

	// Redis connection for cross-instance fan-out (nil when not clustered)
	rdb *redis.Client

	// Dedicated Logger
	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	// Start Redis Subscriber if Redis is available
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.SessionID] = append(h.clients[client.SessionID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"session_id": client.SessionID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.SessionID]; ok {
				for i, c := range clients {
					if c == client {
						// Remove from slice
						h.clients[client.SessionID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.SessionID]) == 0 {
					delete(h.clients, client.SessionID)
					h.logger.Info("Hub", "Session has no viewers left", map[string]interface{}{"session_id": client.SessionID})
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast forwards a payload to ALL connected clients, whatever session
// they watch. Used for session-independent events (pipeline lifecycle).
func (h *Hub) Broadcast(payload []byte) {
	// 1. Send to all local clients
	h.mu.RLock()
	for _, clients := range h.clients {
		for _, client := range clients {
			select {
			case client.Send <- payload:
			default:
				close(client.Send)
				h.unregister <- client
			}
		}
	}
	h.mu.RUnlock()

	// 2. Publish to Redis for other instances ("*" targets everyone)
	if h.rdb != nil {
		envelope, _ := json.Marshal(map[string]interface{}{
			"target_session_id": "*",
			"message":           json.RawMessage(payload),
		})
		h.rdb.Publish(context.Background(), "cluster_events", envelope)
	}
}

// Send forwards a payload to every viewer of one session.
func (h *Hub) Send(sessionID string, payload []byte) {
	// 1. Check locally
	h.mu.RLock()
	clients, localFound := h.clients[sessionID]
	h.mu.RUnlock()

	if localFound {
		for _, client := range clients {
			select {
			case client.Send <- payload:
			default:
				h.logger.Warn("Hub", "Client Send buffer full, dropping message", map[string]interface{}{"session_id": sessionID})
				close(client.Send)
				h.unregister <- client
			}
		}
	}

	// 2. Publish to Redis so instances holding other tabs of this session
	// deliver too
	if h.rdb != nil {
		envelope, _ := json.Marshal(map[string]interface{}{
			"target_session_id": sessionID,
			"message":           json.RawMessage(payload),
		})
		h.rdb.Publish(context.Background(), "cluster_events", envelope)
	}
}

// CountViewers reports how many local clients watch a session.
func (h *Hub) CountViewers(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionID])
}

func (h *Hub) subscribeToRedis() {
	// All instances subscribe to one channel carrying
	// {target_session_id, message}; each delivers to the sessions it holds
	// locally. "*" means broadcast.
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, "cluster_events")
	defer pubsub.Close()

	ch := pubsub.Channel()

	for msg := range ch {
		var envelope struct {
			TargetSessionID string          `json:"target_session_id"`
			Message         json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &envelope); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}

		if envelope.TargetSessionID == "*" {
			h.mu.RLock()
			for _, clients := range h.clients {
				for _, client := range clients {
					select {
					case client.Send <- envelope.Message:
					default:
						close(client.Send)
						h.unregister <- client
					}
				}
			}
			h.mu.RUnlock()
			continue
		}

		h.mu.RLock()
		clients, ok := h.clients[envelope.TargetSessionID]
		h.mu.RUnlock()

		if ok {
			for _, client := range clients {
				select {
				case client.Send <- envelope.Message:
				default:
					close(client.Send)
					h.unregister <- client
				}
			}
		}
	}
}
