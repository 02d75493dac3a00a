package websocket

import (
	"github.com/gofiber/websocket/v2"
)

// ServeWs attaches a verified compliance watcher to the audit feed.
func ServeWs(hub *Hub, c *websocket.Conn, requesterID string) {
	client := &Client{Hub: hub, Conn: c, RequesterID: requesterID, Send: make(chan []byte, 256)}
	client.Hub.register <- client

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.writePump()
	client.readPump() // Run readPump in current goroutine (handler)
}
