// Package websocket broadcasts pipeline events to connected observers.
package websocket

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/voxproc/voxd/pkg/logger"
)

// Envelope wraps every broadcast message.
type Envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Server is a broadcast hub for websocket clients.
type Server struct {
	upgrader websocket.Upgrader
	logger   *logger.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

type client struct {
	conn *websocket.Conn
	send chan Envelope
}

// clientBuffer bounds per-client queued messages; slow clients are dropped
// rather than allowed to stall the hub.
const clientBuffer = 64

// NewServer creates a websocket server.
func NewServer(log *logger.Logger) *Server {
	return &Server{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The observer API is local tooling; origin checks are the
			// HTTP layer's CORS concern.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger:  log.Named("websocket"),
		clients: make(map[*client]struct{}),
	}
}

// HandleWS upgrades the request and registers the client until it
// disconnects.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Websocket upgrade failed", logger.Error(err))
		return
	}

	c := &client{
		conn: conn,
		send: make(chan Envelope, clientBuffer),
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		conn.Close()
		return
	}
	s.clients[c] = struct{}{}
	count := len(s.clients)
	s.mu.Unlock()
	s.logger.Debug("Websocket client connected", logger.Int("clients", count))

	go s.writePump(c)
	s.readPump(c)
}

// readPump discards inbound frames and detects disconnects.
func (s *Server) readPump(c *client) {
	defer s.removeClient(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) writePump(c *client) {
	for env := range c.send {
		if err := c.conn.WriteJSON(env); err != nil {
			s.removeClient(c)
			return
		}
	}
}

func (s *Server) removeClient(c *client) {
	s.mu.Lock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
	}
	s.mu.Unlock()
	c.conn.Close()
}

// Broadcast sends an envelope to every connected client. Clients whose
// buffers are full are dropped.
func (s *Server) Broadcast(msgType string, data any) {
	env := Envelope{Type: msgType, Data: data}

	s.mu.Lock()
	var stale []*client
	for c := range s.clients {
		select {
		case c.send <- env:
		default:
			stale = append(stale, c)
		}
	}
	for _, c := range stale {
		delete(s.clients, c)
		close(c.send)
	}
	s.mu.Unlock()

	for _, c := range stale {
		c.conn.Close()
		s.logger.Debug("Dropped slow websocket client")
	}
}

// Close disconnects all clients and rejects new ones.
func (s *Server) Close() {
	s.mu.Lock()
	s.closed = true
	for c := range s.clients {
		delete(s.clients, c)
		close(c.send)
		c.conn.Close()
	}
	s.mu.Unlock()
}
