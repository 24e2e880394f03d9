package ws

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/playmatatu/pinball/internal/game"
	"github.com/vmihailenco/msgpack/v5"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // Origins are checked by middleware.WebSocketCORSCheck
	},
}

// outbound is one queued websocket frame.
type outbound struct {
	binary bool
	data   []byte
}

// Client represents a connected WebSocket client
type Client struct {
	conn     *websocket.Conn
	hub      *Hub
	id       string
	tableID  string
	operator bool
	msgpack  bool
	send     chan outbound
}

// Hub maintains the set of active clients, grouped by table.
type Hub struct {
	clients    map[string]*Client            // clientID -> Client
	tableRooms map[string]map[string]*Client // tableID -> clientID -> Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		tableRooms: make(map[string]map[string]*Client),
	}
}

// Message types
type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type snapshotMessage struct {
	Type string        `json:"type"`
	Data game.Snapshot `json:"data"`
}

// encodeMsgpack encodes v with msgpack, reusing the json field names.
func encodeMsgpack(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// snapshotFrames encodes a snapshot once per wire format.
func snapshotFrames(snap game.Snapshot) (text, binary []byte, err error) {
	msg := snapshotMessage{Type: "snapshot", Data: snap}
	if text, err = json.Marshal(msg); err != nil {
		return nil, nil, err
	}
	if binary, err = encodeMsgpack(msg); err != nil {
		return nil, nil, err
	}
	return text, binary, nil
}

// BroadcastSnapshot sends a frame to every client watching tableID.
func (h *Hub) BroadcastSnapshot(tableID string, snap game.Snapshot) {
	h.mu.RLock()
	room, exists := h.tableRooms[tableID]
	if !exists || len(room) == 0 {
		h.mu.RUnlock()
		return
	}
	h.mu.RUnlock()

	text, binary, err := snapshotFrames(snap)
	if err != nil {
		log.Printf("[WS] Error encoding snapshot for table %s: %v", tableID, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.tableRooms[tableID] {
		frame := outbound{data: text}
		if client.msgpack {
			frame = outbound{binary: true, data: binary}
		}
		select {
		case client.send <- frame:
		default:
			// Slow reader; it will catch up on the next frame.
		}
	}
}

// BroadcastToTable sends a JSON message to all clients of a table.
func (h *Hub) BroadcastToTable(tableID string, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("[WS] Error marshaling message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if room, exists := h.tableRooms[tableID]; exists {
		for _, client := range room {
			select {
			case client.send <- outbound{data: data}:
			default:
				log.Printf("[WS] Send buffer full for client %s on table %s, dropping message", client.id, tableID)
			}
		}
	}
}

// sendTo queues a JSON message for one client if it is still registered.
func (h *Hub) sendTo(c *Client, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("[WS] Error marshaling message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if cur, ok := h.clients[c.id]; !ok || cur != c {
		return
	}
	select {
	case c.send <- outbound{data: data}:
	default:
		log.Printf("[WS] sendTo dropped message for client %s (buffer full)", c.id)
	}
}

// RoomSize returns how many clients watch a table.
func (h *Hub) RoomSize(tableID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.tableRooms[tableID])
}

// closeRoom disconnects every client of a table.
func (h *Hub) closeRoom(tableID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, client := range h.tableRooms[tableID] {
		delete(h.clients, id)
		close(client.send)
	}
	delete(h.tableRooms, tableID)
}

// add registers a client in its table room.
func (h *Hub) add(client *Client) {
	h.mu.Lock()
	h.clients[client.id] = client
	if _, exists := h.tableRooms[client.tableID]; !exists {
		h.tableRooms[client.tableID] = make(map[string]*Client)
	}
	h.tableRooms[client.tableID][client.id] = client
	size := len(h.tableRooms[client.tableID])
	h.mu.Unlock()
	log.Printf("[WS] Client %s joined table %s (operator=%v room_size=%d)", client.id, client.tableID, client.operator, size)
}

// remove unregisters a client and closes its send channel, unless the room
// was already closed.
func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if cur, ok := h.clients[client.id]; !ok || cur != client {
		return
	}
	delete(h.clients, client.id)
	if room, exists := h.tableRooms[client.tableID]; exists {
		delete(room, client.id)
		if len(room) == 0 {
			delete(h.tableRooms, client.tableID)
		}
	}
	close(client.send)
	log.Printf("[WS] Client %s left table %s", client.id, client.tableID)
}

// writePump writes messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// Hub closed the channel: table closed or client unregistered.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			kind := websocket.TextMessage
			if message.binary {
				kind = websocket.BinaryMessage
			}
			if err := c.conn.WriteMessage(kind, message.data); err != nil {
				log.Printf("[WS] Write error for client %s: %v", c.id, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[WS] Ping error for client %s: %v", c.id, err)
				return
			}
		}
	}
}

// sendError sends an error message to the client
func (c *Client) sendError(message string) {
	c.hub.sendTo(c, map[string]interface{}{
		"type":    "error",
		"message": message,
	})
}
