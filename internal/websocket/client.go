package websocket

import (
	"time"

	"github.com/gorilla/websocket"
)

// Conn is the part of *websocket.Conn a Client drives.
type Conn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	Close() error
}

// Client is one push connection of an authenticated user. Every queued
// message on Send goes out as its own text frame.
type Client struct {
	ID     string
	UserID string
	Send   chan []byte

	conn    Conn
	manager *Manager
}

func NewClient(id, userID string, conn Conn, manager *Manager) *Client {
	return &Client{
		ID:      id,
		UserID:  userID,
		Send:    make(chan []byte, 256),
		conn:    conn,
		manager: manager,
	}
}

// ReadPump keeps the read deadline alive and answers application pings until
// the peer goes away.
func (c *Client) ReadPump() {
	defer func() {
		c.manager.unregister(c)
		c.conn.Close()
	}()

	if c.manager.maxMessageSize > 0 {
		c.conn.SetReadLimit(c.manager.maxMessageSize)
	}
	c.extendReadDeadline()
	c.conn.SetPongHandler(func(string) error {
		c.extendReadDeadline()
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.manager.logger.Debug().Err(err).Str("client_id", c.ID).Msg("websocket read failed")
			}
			return
		}

		if reply := c.respond(raw); reply != nil {
			c.manager.SendToClient(c.ID, reply)
		}
	}
}

func (c *Client) respond(raw []byte) *Message {
	msg, err := ParseInbound(raw)
	if err != nil {
		c.manager.logger.Debug().Err(err).Str("client_id", c.ID).Msg("rejected inbound message")
		reply, _ := NewMessage(TypeError, &ErrorPayload{Error: err.Error()})
		return reply
	}

	switch msg.Type {
	case TypePing:
		c.extendReadDeadline()
		reply, _ := NewMessage(TypePong, nil)
		return reply
	}
	return nil
}

func (c *Client) extendReadDeadline() {
	if c.manager.pongWait > 0 {
		c.conn.SetReadDeadline(time.Now().Add(c.manager.pongWait))
	}
}

// WritePump drains Send onto the wire and pings the peer every pingPeriod.
// A closed Send ends the connection with a normal close frame.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.manager.pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.Send:
			c.conn.SetWriteDeadline(time.Now().Add(c.manager.writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.manager.logger.Debug().Err(err).Str("client_id", c.ID).Msg("websocket write failed")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.manager.writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
