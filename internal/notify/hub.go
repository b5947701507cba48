// Package notify fans notification events out to connected transport
// clients over websockets. The chat bot (or anything else that forwards
// messages to subscriber groups) attaches here; this service only emits
// the events, it never formats or routes chat messages itself.
package notify

import (
	"encoding/json"
	"log"

	"github.com/duoshoumiao/bilibilisearch/internal/models"
)

// envelope is the wire form of one notification event.
type envelope struct {
	Type string `json:"type"`
	models.Notification
}

// Hub maintains the set of active clients and broadcasts events to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run processes client registrations and broadcasts. Call it once, in
// its own goroutine, before serving connections.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow client; drop it rather than stall the hub.
					delete(h.clients, client)
					close(client.send)
				}
			}
		}
	}
}

// Publish broadcasts one new-video notification. Losing the event when
// no transport is connected is acceptable: delivery guarantees live in
// the persisted watch state, not here.
func (h *Hub) Publish(n models.Notification) {
	data, err := json.Marshal(envelope{Type: "new_video", Notification: n})
	if err != nil {
		log.Printf("Failed to encode notification for group %s: %v", n.GroupID, err)
		return
	}
	h.broadcast <- data
}
