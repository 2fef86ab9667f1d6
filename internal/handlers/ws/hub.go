// Package ws serves the realtime websocket channel at /ws
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dabidoe/character-foundry/internal/errors"
	"github.com/dabidoe/character-foundry/internal/orchestrators/dice"
	"github.com/dabidoe/character-foundry/internal/orchestrators/portrait"
	"github.com/dabidoe/character-foundry/internal/pkg/clock"
	"github.com/dabidoe/character-foundry/internal/pkg/idgen"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBuffer     = 32
)

// Config holds dependencies for the hub
type Config struct {
	Dice      dice.Service
	Portraits portrait.Service

	// AllowedOrigins are checked against the Origin header; "*" allows any.
	// Requests without an Origin header are always accepted.
	AllowedOrigins []string
	IDGenerator    idgen.Generator
	Clock          clock.Clock
}

// Validate ensures all required dependencies are present
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Dice == nil {
		vb.RequiredField("Dice")
	}
	if c.Portraits == nil {
		vb.RequiredField("Portraits")
	}

	return vb.Build()
}

// Hub accepts websocket connections and dispatches their messages. Each
// connection has one reader (the serving goroutine) and one writer.
type Hub struct {
	upgrader  websocket.Upgrader
	dice      dice.Service
	portraits portrait.Service
	idGen     idgen.Generator
	clock     clock.Clock

	mu      sync.Mutex
	clients map[string]*client
	closed  bool
}

// NewHub creates a hub with the given configuration
func NewHub(cfg *Config) (*Hub, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	idGen := cfg.IDGenerator
	if idGen == nil {
		idGen = idgen.NewPrefixed("client")
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}

	origins := slices.Clone(cfg.AllowedOrigins)
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || slices.Contains(origins, "*") || slices.Contains(origins, origin)
			},
		},
		dice:      cfg.Dice,
		portraits: cfg.Portraits,
		idGen:     idGen,
		clock:     clk,
		clients:   make(map[string]*client),
	}, nil
}

// Count returns the number of connected clients
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and refuses new ones
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.conn.Close()
	}
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c.id] = c
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	delete(h.clients, c.id)
	h.mu.Unlock()
}

// ServeHTTP upgrades the request and runs the connection until it closes
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error
		slog.WarnContext(r.Context(), "WebSocket upgrade failed", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	c := &client{
		id:     h.idGen.Generate(),
		conn:   conn,
		send:   make(chan any, sendBuffer),
		ctx:    ctx,
		cancel: cancel,
	}
	if !h.register(c) {
		cancel()
		conn.Close()
		return
	}

	slog.InfoContext(ctx, "WebSocket client connected", "client_id", c.id)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		c.writeLoop()
	}()

	c.enqueue(welcomeMessage{
		Type:     TypeConnection,
		Status:   "connected",
		ClientID: c.id,
		Message:  "Connected to Character Foundry server",
	})

	h.readLoop(c)

	cancel()
	c.workers.Wait()
	close(c.send)
	<-writerDone
	h.unregister(c)

	slog.InfoContext(ctx, "WebSocket client disconnected", "client_id", c.id)
}

func (h *Hub) readLoop(c *client) {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.WarnContext(c.ctx, "WebSocket read failed", "client_id", c.id, "error", err)
			}
			return
		}

		var msg inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			c.enqueue(errorMessage{Type: TypeError, Message: "Failed to process message"})
			continue
		}

		h.dispatch(c, &msg)
	}
}

type client struct {
	id      string
	conn    *websocket.Conn
	send    chan any
	ctx     context.Context
	cancel  context.CancelFunc
	workers sync.WaitGroup
}

// enqueue drops the message when the client is too slow to keep up
func (c *client) enqueue(msg any) {
	select {
	case c.send <- msg:
	case <-c.ctx.Done():
	default:
		slog.WarnContext(c.ctx, "WebSocket send buffer full, dropping message", "client_id", c.id)
	}
}

// writeLoop owns every write to the connection and closes it on exit
func (c *client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, open := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !open {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				slog.WarnContext(c.ctx, "WebSocket write failed", "client_id", c.id, "error", err)
				c.cancel()
				c.drain()
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.cancel()
				c.drain()
				return
			}
		}
	}
}

// drain discards queued messages until the reader side closes the channel
func (c *client) drain() {
	c.conn.Close()
	for range c.send {
	}
}
