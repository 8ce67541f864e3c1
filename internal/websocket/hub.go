package websocket

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/carauction/carauction-backend/pkg/logger"
)

const (
	sendBufferSize      = 64
	broadcastBufferSize = 1024
)

// ErrHubStopped is returned by Broadcast after Stop.
var ErrHubStopped = errors.New("feed hub stopped")

// Client is one subscriber of the live post feed. CustomerID is zero for
// anonymous viewers.
type Client struct {
	Hub        *Hub
	Conn       *Conn
	CustomerID uint
	Send       chan []byte
}

// NewClient wires a connection to the hub with a bounded send buffer.
func NewClient(hub *Hub, conn *Conn, customerID uint) *Client {
	return &Client{
		Hub:        hub,
		Conn:       conn,
		CustomerID: customerID,
		Send:       make(chan []byte, sendBufferSize),
	}
}

// Hub fans post events out to every connected feed client.
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	quit       chan struct{}
	stopOnce   sync.Once

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan []byte, broadcastBufferSize),
		quit:       make(chan struct{}),
	}
}

// Run processes registrations and broadcasts until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			logger.Info("Feed client registered", map[string]interface{}{
				"customer_id": client.CustomerID,
				"clients":     total,
			})

		case client := <-h.unregister:
			h.remove(client)

		case message := <-h.broadcast:
			h.mu.RLock()
			var slow []*Client
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					slow = append(slow, client)
				}
			}
			h.mu.RUnlock()

			for _, client := range slow {
				logger.Warn("Feed client send buffer full, disconnecting", map[string]interface{}{
					"customer_id": client.CustomerID,
				})
				h.remove(client)
			}

		case <-h.quit:
			h.mu.Lock()
			for client := range h.clients {
				close(client.Send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			logger.Info("Feed hub stopped")
			return
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.Send)
	logger.Info("Feed client unregistered", map[string]interface{}{
		"customer_id": client.CustomerID,
		"clients":     len(h.clients),
	})
}

// Broadcast marshals message and queues it for every client. A full queue
// drops the message.
func (h *Hub) Broadcast(message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		logger.Error("Failed to marshal feed message", err)
		return err
	}

	select {
	case <-h.quit:
		return ErrHubStopped
	default:
	}

	select {
	case h.broadcast <- data:
	default:
		logger.Warn("Feed broadcast channel full, message dropped")
	}
	return nil
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stop closes every client and ends Run.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.quit) })
}
