package ws

import (
	"context"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/zipzag-catalog/internal/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

// Client одно WebSocket подключение администратора.
type Client struct {
	conn      *websocket.Conn
	hub       *Hub
	adminID   uuid.UUID
	send      chan []byte
	closeOnce sync.Once
}

// NewClient создаёт нового клиента.
func NewClient(conn *websocket.Conn, hub *Hub, adminID uuid.UUID) *Client {
	return &Client{
		conn:    conn,
		hub:     hub,
		adminID: adminID,
		send:    make(chan []byte, 16),
	}
}

// Run обслуживает соединение до его закрытия.
func (c *Client) Run(ctx context.Context) {
	go c.writePumpSafe()
	c.readPump(ctx)
}

// Close отключает клиента от хаба и закрывает соединение.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	})
}

func (c *Client) logPanic(where string, r any) {
	logger.Log.WithFields(logrus.Fields{
		"admin_id": c.adminID,
		"panic":    r,
		"stack":    string(debug.Stack()),
	}).Error("ws: panic в " + where)
}

func (c *Client) writePumpSafe() {
	defer func() {
		if r := recover(); r != nil {
			c.logPanic("writePump", r)
			c.Close()
		}
	}()
	c.writePump()
}

func (c *Client) readPump(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			c.logPanic("readPump", r)
		}
		c.Close()
	}()

	// клиент только слушает, входящие сообщения нужны для pong и закрытия
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if ctx.Err() != nil {
			return
		}
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Log.WithError(err).WithField("admin_id", c.adminID).Debug("ws: соединение оборвано")
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
