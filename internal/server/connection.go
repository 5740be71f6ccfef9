package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/lox/blackjack/internal/table"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096
)

// ErrConnectionClosed is returned when sending on a closed connection
var ErrConnectionClosed = errors.New("connection closed")

// Connection is one WebSocket client bound to a session. Requests are
// handled in arrival order on the read goroutine.
type Connection struct {
	conn    *websocket.Conn
	session string
	service *table.Service
	server  *Server
	send    chan *Message
	logger  *log.Logger

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

func newConnection(parent context.Context, conn *websocket.Conn, session string, srv *Server) *Connection {
	ctx, cancel := context.WithCancel(parent)
	return &Connection{
		conn:    conn,
		session: session,
		service: srv.service,
		server:  srv,
		send:    make(chan *Message, 64),
		logger:  srv.logger.WithPrefix("conn").With("session", session),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Session returns the session the connection plays
func (c *Connection) Session() string {
	return c.session
}

// Start runs the read and write pumps
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Done is closed once the connection shuts down
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Close stops both pumps and closes the socket
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		err = c.conn.Close()
	})
	return err
}

// SendMessage queues a message, closing the connection if the client has
// stopped reading.
func (c *Connection) SendMessage(msg *Message) error {
	select {
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
	}
	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("WebSocket read error", "error", err)
			}
			return
		}
		c.handleMessage(&msg)
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				c.logger.Debug("Failed to write message", "error", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.ctx.Done():
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}

func (c *Connection) handleMessage(msg *Message) {
	if msg.Type != MessageTypeAction {
		c.sendError(msg.RequestID, "invalid_message", "unsupported message type "+string(msg.Type))
		return
	}

	var req table.Request
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		c.sendError(msg.RequestID, "invalid_message", "failed to parse action")
		return
	}
	c.logger.Debug("Received action", "action", req.Action, "request", msg.RequestID)

	resp := c.service.Handle(c.ctx, c.session, req)
	out, err := NewMessage(MessageTypeResponse, resp, c.server.clock.Now())
	if err != nil {
		c.logger.Error("Failed to encode response", "error", err)
		return
	}
	out.RequestID = msg.RequestID
	_ = c.SendMessage(out)
}

func (c *Connection) sendError(requestID, code, message string) {
	out, err := NewMessage(MessageTypeError, ErrorData{Code: code, Message: message}, c.server.clock.Now())
	if err != nil {
		return
	}
	out.RequestID = requestID
	_ = c.SendMessage(out)
}
