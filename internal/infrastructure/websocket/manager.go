package websocket

import (
	"context"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Client represents one open room connection.
type Client struct {
	UserID string
	RoomID string
	Conn   *websocket.Conn
	Send   chan []byte
}

// Manager tracks active room connections and fans room payloads out to them.
type Manager struct {
	rooms      map[string]map[string]*Client
	Register   chan *Client
	Unregister chan *Client
	mutex      sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		rooms:      make(map[string]map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Start runs the manager's main loop in a goroutine.
func (m *Manager) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case client := <-m.Register:
				m.mutex.Lock()
				if m.rooms[client.RoomID] == nil {
					m.rooms[client.RoomID] = make(map[string]*Client)
				}
				m.rooms[client.RoomID][client.UserID] = client
				m.mutex.Unlock()
				log.Printf("Client registered: %s in room %s", client.UserID, client.RoomID)

			case client := <-m.Unregister:
				m.mutex.Lock()
				if room, ok := m.rooms[client.RoomID]; ok {
					if _, ok := room[client.UserID]; ok {
						delete(room, client.UserID)
						close(client.Send)
					}
					if len(room) == 0 {
						delete(m.rooms, client.RoomID)
					}
				}
				m.mutex.Unlock()
				log.Printf("Client unregistered: %s from room %s", client.UserID, client.RoomID)

			case <-ctx.Done():
				return
			}
		}
	}()
}

// BroadcastToRoom sends a payload to every client connected to the room.
// Clients that cannot keep up are dropped.
func (m *Manager) BroadcastToRoom(roomID string, payload []byte) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for userID, client := range m.rooms[roomID] {
		select {
		case client.Send <- payload:
		default:
			close(client.Send)
			delete(m.rooms[roomID], userID)
		}
	}
}

// RoomCount returns the number of connected clients for a room.
func (m *Manager) RoomCount(roomID string) int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.rooms[roomID])
}

// ReadPump reads inbound frames from the connection and hands them to
// onMessage until the peer goes away.
func (c *Client) ReadPump(m *Manager, onMessage func([]byte)) {
	defer func() {
		m.Unregister <- c
		c.Conn.Close()
	}()

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error: %v", err)
			}
			break
		}

		if onMessage != nil {
			onMessage(message)
		}
	}
}

// WritePump sends queued payloads to the connection.
func (c *Client) WritePump() {
	defer c.Conn.Close()

	for {
		message, ok := <-c.Send
		if !ok {
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}

		err := c.Conn.WriteMessage(websocket.TextMessage, message)
		if err != nil {
			log.Printf("error: %v", err)
			return
		}
	}
}
