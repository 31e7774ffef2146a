package websocket

import (
	"github.com/gorilla/websocket"
)

type Client struct {
	Token string
	Conn  *websocket.Conn
	Send  chan []byte
}

func NewClient(token string, conn *websocket.Conn) *Client {
	return &Client{
		Token: token,
		Conn:  conn,
		Send:  make(chan []byte, 16),
	}
}
