package ws

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ignatzorin/freelance-nexus/internal/goroutine"
	"github.com/ignatzorin/freelance-nexus/internal/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Client одно WebSocket подключение, подписанное на одну тему.
type Client struct {
	id    uuid.UUID
	conn  *websocket.Conn
	hub   *Hub
	topic string
	send  chan []byte

	sendOnce  sync.Once
	closeOnce sync.Once
}

// NewClient создаёт нового клиента.
func NewClient(conn *websocket.Conn, hub *Hub, topic string) *Client {
	return &Client{
		id:    uuid.New(),
		conn:  conn,
		hub:   hub,
		topic: topic,
		send:  make(chan []byte, 16),
	}
}

func (c *Client) ID() uuid.UUID { return c.id }

// Run обслуживает соединение до его закрытия или отмены ctx.
func (c *Client) Run(ctx context.Context) {
	done := make(chan struct{})
	defer close(done)

	goroutine.Go("ws-write", c.writePump)
	goroutine.Go("ws-cancel", func() {
		select {
		case <-ctx.Done():
			c.Close()
		case <-done:
		}
	})
	c.readPump()
}

// Close отписывает клиента и закрывает соединение.
// Канал send закрывает только хаб, из своего цикла.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	})
}

func (c *Client) closeSend() {
	c.sendOnce.Do(func() { close(c.send) })
}

func (c *Client) readPump() {
	defer c.Close()

	c.conn.SetReadLimit(4 * 1024)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// клиент только получает сообщения, входящие отбрасываются
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.WithComponent("ws").WithError(err).WithField("client_id", c.id).Debug("соединение оборвано")
			}
			return
		}
	}
}

// writePump единственный писатель в соединение: состояния из send и ping.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		var err error
		select {
		case message, ok := <-c.send:
			if !ok {
				_ = c.write(websocket.CloseMessage, []byte{})
				return
			}
			err = c.write(websocket.TextMessage, message)
		case <-ticker.C:
			err = c.write(websocket.PingMessage, nil)
		}
		if err != nil {
			return
		}
	}
}

func (c *Client) write(messageType int, data []byte) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(messageType, data)
}
