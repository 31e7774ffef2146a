package ws

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	wsPkg "github.com/toohak/trivia-backend/pkg/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// HandshakeResolver turns the raw first message of a connection into
// the token to trust. Returning an error rejects the connection.
type HandshakeResolver func(ctx context.Context, payload string) (string, error)

type Handler struct {
	registry *wsPkg.Registry
	resolve  HandshakeResolver
	logger   *slog.Logger
}

func NewHandler(registry *wsPkg.Registry, resolve HandshakeResolver, logger *slog.Logger) *Handler {
	return &Handler{
		registry: registry,
		resolve:  resolve,
		logger:   logger,
	}
}

// ServeWS upgrades the connection, waits for exactly one handshake
// message and registers the connection under the resolved token. Each
// connection waits on its own goroutine, so a slow handshake never
// blocks other connections.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("upgrade failed", "error", err)
		return
	}

	go h.handshake(conn)
}

func (h *Handler) handshake(conn *websocket.Conn) {
	_, payload, err := conn.ReadMessage()
	if err != nil {
		h.logger.Warn("handshake read failed", "error", err)
		conn.Close()
		return
	}

	token, err := h.resolve(context.Background(), string(payload))
	if err != nil {
		h.logger.Warn("handshake rejected", "error", err)
		conn.Close()
		return
	}

	client := wsPkg.NewClient(token, conn)
	h.registry.Register(client)

	go h.read(client)
	go h.write(client)
}

// read discards inbound frames; its job is detecting disconnects and
// reclaiming the registration.
func (h *Handler) read(c *wsPkg.Client) {
	defer func() {
		h.registry.Remove(c)
		c.Conn.Close()
	}()
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			h.logger.Info("connection closed", "token", c.Token, "error", err)
			return
		}
	}
}

func (h *Handler) write(c *wsPkg.Client) {
	defer c.Conn.Close()

	for msg := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.logger.Warn("write failed", "token", c.Token, "error", err)
			return
		}
	}
}
