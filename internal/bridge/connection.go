package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 8192
)

var ErrConnectionClosed = errors.New("connection closed")

// Connection is one websocket client, usually a chat platform adapter.
type Connection struct {
	conn    *websocket.Conn
	server  *Server
	send    chan *Message
	clock   quartz.Clock
	logger  *log.Logger
	adapter string

	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.Mutex
	closed    bool
	closeOnce sync.Once
}

func newConnection(conn *websocket.Conn, s *Server) *Connection {
	ctx, cancel := context.WithCancel(s.ctx)
	return &Connection{
		conn:   conn,
		server: s,
		send:   make(chan *Message, 256),
		clock:  s.clock,
		logger: s.logger.WithPrefix("conn"),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (c *Connection) start() {
	go c.writePump()
	go c.readPump()
}

func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()
		err = c.conn.Close()
	})
	return err
}

// Send queues msg. A client that cannot keep up is disconnected.
func (c *Connection) Send(msg *Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrConnectionClosed
	}
	select {
	case c.send <- msg:
		return nil
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		go c.Close()
		return ErrConnectionClosed
	}
}

func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}
		c.handleMessage(&msg)
	}
}

func (c *Connection) writePump() {
	ticker := c.clock.NewTicker(pingPeriod, "bridge", "ping")
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.ctx.Done():
			return
		}
	}
}

func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type)

	switch msg.Type {
	case TypeCommand:
		var data CommandData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError(msg.RequestID, "invalid_message", "Failed to parse command data")
			return
		}
		if data.User == "" || data.Text == "" {
			c.sendError(msg.RequestID, "invalid_command", "user and text are required")
			return
		}
		c.handleCommand(msg.RequestID, data)
	default:
		c.sendError(msg.RequestID, "unknown_message_type", "Unknown message type: "+string(msg.Type))
	}
}

func (c *Connection) handleCommand(requestID string, data CommandData) {
	reply := c.server.handler.Handle(c.ctx, data.User, data.Text)
	if reply.Session != "" {
		c.server.route(reply.Session, c, data.Channel)
	}
	msg, err := NewMessage(TypeReply, ReplyData{
		User:    data.User,
		Channel: data.Channel,
		Text:    reply.Text,
		Session: reply.Session,
	}, c.clock.Now())
	if err != nil {
		c.logger.Error("Failed to create reply message", "error", err)
		return
	}
	msg.RequestID = requestID
	_ = c.Send(msg)
}

func (c *Connection) sendError(requestID, code, message string) {
	msg, err := NewMessage(TypeError, ErrorData{Code: code, Message: message}, c.clock.Now())
	if err != nil {
		c.logger.Error("Failed to create error message", "error", err)
		return
	}
	msg.RequestID = requestID
	_ = c.Send(msg)
}
