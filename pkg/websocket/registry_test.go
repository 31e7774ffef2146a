package websocket

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func testRegistry() *Registry {
	return NewRegistry(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testClient(token string) *Client {
	return &Client{Token: token, Send: make(chan []byte, 16)}
}

func TestNotifyDeliversEnvelope(t *testing.T) {
	registry := testRegistry()
	client := testClient("p1")
	registry.Register(client)

	registry.Notify("p1", "QUESTION_SENT", map[string]any{"question": "2+2?"})

	select {
	case frame := <-client.Send:
		var envelope struct {
			Type string         `json:"type"`
			Data map[string]any `json:"data"`
		}
		require.NoError(t, json.Unmarshal(frame, &envelope))
		require.Equal(t, "QUESTION_SENT", envelope.Type)
		require.Equal(t, "2+2?", envelope.Data["question"])
	default:
		t.Fatal("expected a frame on the send channel")
	}
}

func TestNotifyUnknownTokenIsSwallowed(t *testing.T) {
	registry := testRegistry()
	// Must not panic or block; delivery is best-effort.
	registry.Notify("nobody", "GAME_OVER", nil)
}

func TestNotifyFullBufferDropsEvent(t *testing.T) {
	registry := testRegistry()
	client := &Client{Token: "p1", Send: make(chan []byte)}
	registry.Register(client)

	// Unbuffered channel with no reader: the send must not block.
	registry.Notify("p1", "ROUND_FINISHED", nil)
}

func TestRegisterSupersedesPreviousConnection(t *testing.T) {
	registry := testRegistry()
	first := testClient("p1")
	second := testClient("p1")

	registry.Register(first)
	registry.Register(second)

	// The first client's channel is closed by the supersede.
	_, open := <-first.Send
	require.False(t, open)

	registry.Notify("p1", "PLAYER_JOINED", nil)
	require.Len(t, second.Send, 1)
}

func TestRemoveIsIdempotent(t *testing.T) {
	registry := testRegistry()
	client := testClient("p1")
	registry.Register(client)

	registry.Remove(client)
	registry.Remove(client)

	registry.Notify("p1", "GAME_OVER", nil)
	_, open := <-client.Send
	require.False(t, open)
}

func TestSupersededTeardownDoesNotEvictReplacement(t *testing.T) {
	registry := testRegistry()
	first := testClient("p1")
	second := testClient("p1")

	registry.Register(first)
	registry.Register(second)

	// The stale connection's read pump shutting down must not remove
	// the replacement's registration.
	registry.Remove(first)

	registry.Notify("p1", "QUESTION_SENT", nil)
	require.Len(t, second.Send, 1)
}
