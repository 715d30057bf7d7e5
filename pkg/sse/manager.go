package sse

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/gin-gonic/gin"
)

// client is a single SSE connection for a user
type client struct {
	userID string
	send   chan []byte
}

// Manager fans events out to connected clients, grouped by user
type Manager struct {
	mu         sync.RWMutex
	clients    map[*client]struct{}
	register   chan *client
	unregister chan *client
}

func NewManager() *Manager {
	return &Manager{
		clients:    make(map[*client]struct{}),
		register:   make(chan *client),
		unregister: make(chan *client),
	}
}

// Run processes register/unregister events. Call in a goroutine.
func (m *Manager) Run() {
	for {
		select {
		case c := <-m.register:
			m.mu.Lock()
			m.clients[c] = struct{}{}
			m.mu.Unlock()
		case c := <-m.unregister:
			m.mu.Lock()
			if _, ok := m.clients[c]; ok {
				delete(m.clients, c)
				close(c.send)
			}
			m.mu.Unlock()
		}
	}
}

// SendToUser pushes a named event to all of a user's connections
func (m *Manager) SendToUser(userID, event string, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		log.Printf("[SSE] Failed to marshal event %s: %v", event, err)
		return
	}
	frame := []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event, payload))

	m.mu.RLock()
	defer m.mu.RUnlock()
	for c := range m.clients {
		if c.userID != userID {
			continue
		}
		select {
		case c.send <- frame:
		default:
			// Slow consumer, drop the event rather than block the sender
		}
	}
}

// ServeHTTP upgrades the request to an SSE stream for the given user
func (m *Manager) ServeHTTP(c *gin.Context, userID string) {
	cl := &client{
		userID: userID,
		send:   make(chan []byte, 16),
	}
	m.register <- cl
	defer func() { m.unregister <- cl }()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Flush()

	for {
		select {
		case frame, ok := <-cl.send:
			if !ok {
				return
			}
			if _, err := c.Writer.Write(frame); err != nil {
				return
			}
			c.Writer.Flush()
		case <-c.Request.Context().Done():
			return
		}
	}
}
