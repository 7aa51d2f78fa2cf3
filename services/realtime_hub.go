package services

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsWriteWait  = 10 * time.Second
	wsSendBuffer = 16
)

// WSClient is one websocket subscriber. Messages are queued on send and
// written by the client's own goroutine.
type WSClient struct {
	Conn *websocket.Conn
	mu   sync.Mutex
	send chan []byte
}

func (c *WSClient) write(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.Conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return c.Conn.WriteMessage(messageType, data)
}

// Ping sends a websocket ping, serialized with queued messages.
func (c *WSClient) Ping() error {
	return c.write(websocket.PingMessage, nil)
}

// RealtimeHub fans completed scans out to connected websocket clients.
// Broadcast never waits on a client: one whose queue is full is dropped.
type RealtimeHub struct {
	mu      sync.RWMutex
	clients map[*WSClient]struct{}
}

func NewRealtimeHub() *RealtimeHub {
	return &RealtimeHub{clients: make(map[*WSClient]struct{})}
}

func (h *RealtimeHub) Register(c *WSClient) {
	c.send = make(chan []byte, wsSendBuffer)
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	go h.writePump(c)
}

func (h *RealtimeHub) writePump(c *WSClient) {
	for msg := range c.send {
		if err := c.write(websocket.TextMessage, msg); err != nil {
			h.Unregister(c)
			return
		}
	}
}

func (h *RealtimeHub) Unregister(c *WSClient) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	if ok {
		_ = c.Conn.Close()
	}
}

func (h *RealtimeHub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast queues payload as JSON for every client.
func (h *RealtimeHub) Broadcast(payload any) {
	msg, err := json.Marshal(payload)
	if err != nil {
		log.Printf("realtime: cannot encode payload: %v", err)
		return
	}

	h.mu.RLock()
	var slow []*WSClient
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		log.Printf("realtime: dropping client %s, send queue full", c.Conn.RemoteAddr())
		h.Unregister(c)
	}
}
