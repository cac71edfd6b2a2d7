// Package websocket serves the live journal event stream to dashboard
// clients over a WebSocket connection, as an alternative to the SSE
// endpoint for frontends that prefer a bidirectional transport.
package websocket

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

// Hub fans the broker's event feed out to connected WebSocket clients
type Hub struct {
	feed       chan []byte
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	upgrader   websocket.Upgrader
}

// NewHub creates a hub reading from the given event feed (a channel
// registered with the realtime broker)
func NewHub(feed chan []byte) *Hub {
	return &Hub{
		feed:       feed,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Dashboards are served from a separate origin in development
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Run starts the hub loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			log.Printf("WS Client connected. Total: %d", len(h.clients))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				log.Printf("WS Client disconnected. Total: %d", len(h.clients))
			}

		case msg, ok := <-h.feed:
			if !ok {
				return
			}
			for client := range h.clients {
				select {
				case client.send <- msg:
				default:
					// Slow client; drop it rather than block the feed
					delete(h.clients, client)
					close(client.send)
				}
			}
		}
	}
}

// ServeHTTP upgrades the request and attaches the client to the hub
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("⚠️  WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 64),
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}
