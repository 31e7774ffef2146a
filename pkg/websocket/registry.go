package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Registry maps a participant token to its single live connection.
// Delivery through Notify is best-effort, at-most-once: there is no
// queue and no retry, a player who is offline simply misses the event.
type Registry struct {
	clients map[string]*Client
	mu      sync.Mutex
	logger  *slog.Logger
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		clients: make(map[string]*Client),
		logger:  logger,
	}
}

// Register binds token to client. The last handshake wins: a prior
// registration for the same token is closed and replaced.
func (r *Registry) Register(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, exists := r.clients[c.Token]; exists {
		r.logger.Info("superseding previous connection", "token", c.Token)
		close(prev.Send)
		if prev.Conn != nil {
			prev.Conn.Close()
		}
	}

	r.clients[c.Token] = c
	r.logger.Info("client registered", "token", c.Token)
}

// Remove drops the registration for token. Removing an already-removed
// token is a no-op.
func (r *Registry) Remove(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.clients[c.Token]
	if !exists {
		r.logger.Warn("remove: token not registered", "token", c.Token)
		return
	}
	// A superseded client's teardown must not evict its replacement.
	if current != c {
		return
	}

	delete(r.clients, c.Token)
	close(c.Send)
	r.logger.Info("client removed", "token", c.Token)
}

// Notify sends an event frame to the connection registered for token.
// Failures (unknown token, full send buffer) are logged and swallowed.
func (r *Registry) Notify(token string, eventType string, data any) {
	frame, err := json.Marshal(struct {
		Type string `json:"type"`
		Data any    `json:"data"`
	}{Type: eventType, Data: data})
	if err != nil {
		r.logger.Error("notify: failed to marshal event", "type", eventType, "error", err)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	client, exists := r.clients[token]
	if !exists {
		r.logger.Warn("notify: no connection for token", "token", token, "type", eventType)
		return
	}

	select {
	case client.Send <- frame:
	default:
		r.logger.Warn("notify: send buffer full, dropping event", "token", token, "type", eventType)
	}
}
