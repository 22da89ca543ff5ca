// internal/websocket/hub.go
package websocket

import (
	"context"
	"fmt"
	"sync"

	wstypes "crm-service/internal/domain/websocket"
	"crm-service/internal/pkg/jwt"

	"go.uber.org/zap"
)

// TokenVerifier validates the token a dashboard connects with.
type TokenVerifier interface {
	Verify(token string) (*jwt.Claims, error)
}

// Hub fans customer events out to every connected dashboard.
type Hub struct {
	// Registered clients by user ID
	clients map[string]map[*Client]bool
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	broadcast  chan *wstypes.WSMessage

	// closed once Run returns so pumps never block on a stopped hub
	done chan struct{}

	verifier TokenVerifier
	logger   *zap.Logger
}

func NewHub(verifier TokenVerifier, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *wstypes.WSMessage, 256),
		done:       make(chan struct{}),
		verifier:   verifier,
		logger:     logger,
	}
}

// AuthenticateClient validates the JWT and returns the identity to attach to the connection.
func (h *Hub) AuthenticateClient(token string) (*ClientAuth, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	claims, err := h.verifier.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	return &ClientAuth{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   claims.Role,
	}, nil
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

// Attach hands a connected client to the hub. It reports false once the hub
// has stopped.
func (h *Hub) Attach(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Broadcast queues msg for every connected client. It never blocks the caller;
// when the queue is full the event is dropped.
func (h *Hub) Broadcast(msg *wstypes.WSMessage) {
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("websocket broadcast queue full, dropping event",
			zap.String("type", string(msg.Type)),
		)
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	if h.clients[client.userID] == nil {
		h.clients[client.userID] = make(map[*Client]bool)
	}
	h.clients[client.userID][client] = true
	total := h.totalClients()
	h.mu.Unlock()

	h.logger.Info("websocket client connected",
		zap.String("user_id", client.userID),
		zap.Int("total", total),
	)

	client.SendMessage(wstypes.NewMessage(wstypes.EventTypeConnected, map[string]interface{}{
		"user_id": client.userID,
		"role":    client.role,
	}))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[client.userID]
	if !ok {
		return
	}
	if _, exists := clients[client]; !exists {
		return
	}

	delete(clients, client)
	client.Close()
	if len(clients) == 0 {
		delete(h.clients, client.userID)
	}

	h.logger.Info("websocket client disconnected",
		zap.String("user_id", client.userID),
		zap.Int("total", h.totalClients()),
	)
}

func (h *Hub) deliver(msg *wstypes.WSMessage) {
	data, err := msg.ToJSON()
	if err != nil {
		h.logger.Error("failed to marshal websocket message", zap.Error(err))
		return
	}

	var slow []*Client
	h.mu.RLock()
	for _, clients := range h.clients {
		for client := range clients {
			if !client.enqueue(data) {
				slow = append(slow, client)
			}
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		h.logger.Warn("websocket client too slow, disconnecting", zap.String("user_id", client.userID))
		h.unregisterClient(client)
	}
}

func (h *Hub) TotalClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.totalClients()
}

func (h *Hub) totalClients() int {
	total := 0
	for _, clients := range h.clients {
		total += len(clients)
	}
	return total
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.clients {
		for client := range clients {
			client.Close()
		}
	}
	h.clients = make(map[string]map[*Client]bool)
}
