package service

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsHandshakeTimeout = 10 * time.Second
	wsWriteWait        = 10 * time.Second
)

// WebSocketClient is a documentation-service client over a websocket
// connection. Request serialization is the caller's responsibility; the
// client additionally guards the connection with a mutex because gorilla
// connections support only one concurrent reader and writer.
type WebSocketClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// DialWebSocket connects to a documentation service at the given ws:// or
// wss:// URL. A non-empty token is sent as a bearer Authorization header.
func DialWebSocket(serviceURL, token string) (*WebSocketClient, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: wsHandshakeTimeout,
	}

	var header http.Header
	if token != "" {
		header = http.Header{}
		header.Set("Authorization", "Bearer "+token)
	}

	conn, _, err := dialer.Dial(serviceURL, header)
	if err != nil {
		return nil, fmt.Errorf("connecting to documentation service at %s: %w", serviceURL, err)
	}

	return &WebSocketClient{conn: conn}, nil
}

// Request writes the message and reads replies until one carries the
// message's correlation identifier. Unrelated service pushes are skipped.
func (c *WebSocketClient) Request(msg Message) (Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
		return Message{}, fmt.Errorf("setting write deadline: %w", err)
	}
	if err := c.conn.WriteJSON(msg); err != nil {
		return Message{}, fmt.Errorf("writing service message: %w", err)
	}

	for {
		var reply Message
		if err := c.conn.ReadJSON(&reply); err != nil {
			return Message{}, fmt.Errorf("reading service reply: %w", err)
		}
		if reply.Identifier == msg.Identifier {
			return reply, nil
		}
	}
}

// Close closes the underlying connection
func (c *WebSocketClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.Close()
}
