package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"

	"knowledge-copilot-be/internal/dto"
	"knowledge-copilot-be/internal/pkg/logger"
)

const redisFeedChannel = "audit_feed_events"

// Hub fans audit feed events out to attached compliance watchers. Access is
// enforced at the route before a connection ever reaches the hub, so every
// registered client is allowed to see every event. Redis bridges events
// across instances when more than one replica runs.
type Hub struct {
	// Registered watchers map: RequesterID -> List of Clients (multi-tab)
	clients map[string][]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Lock for safe map access
	mu sync.RWMutex

	// Redis connection for cross-instance fan-out
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
			h.clients[client.RequesterID] = append(h.clients[client.RequesterID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Watcher attached to audit feed", map[string]interface{}{"requester_id": client.RequesterID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.RequesterID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.RequesterID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.RequesterID]) == 0 {
					delete(h.clients, client.RequesterID)
					h.logger.Info("Hub", "Watcher detached from audit feed", map[string]interface{}{"requester_id": client.RequesterID})
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast pushes one audit feed event to every attached watcher, locally
// and via Redis to other instances.
func (h *Hub) Broadcast(event dto.AuditFeedEvent) {
	data, _ := json.Marshal(map[string]interface{}{
		"type": "audit_record",
		"data": event,
	})

	h.sendToLocal(data)

	if h.rdb != nil {
		h.rdb.Publish(context.Background(), redisFeedChannel, data)
	}
}

func (h *Hub) sendToLocal(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, clients := range h.clients {
		for _, client := range clients {
			select {
			case client.Send <- data:
			default:
				// Slow watcher: drop the connection rather than block the feed.
				close(client.Send)
				go func(c *Client) { h.unregister <- c }(client)
			}
		}
	}
}

func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, redisFeedChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		if !json.Valid([]byte(msg.Payload)) {
			log.Printf("Redis feed msg invalid JSON, dropping")
			continue
		}
		h.sendToLocal([]byte(msg.Payload))
	}
}
