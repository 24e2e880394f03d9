package ws

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/playmatatu/pinball/internal/auth"
	"github.com/playmatatu/pinball/internal/game"
)

// FlipperData is the payload of a "flipper" message.
type FlipperData struct {
	Side    string `json:"side"`
	Pressed bool   `json:"pressed"`
}

// GameHub is the single hub for all tables.
var GameHub *Hub

func init() {
	GameHub = NewHub()
}

// HandleWebSocket streams a table's snapshots. A valid operator token for
// the table also allows sending input; without one the client spectates.
func HandleWebSocket(m *game.TableManager, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tableID := c.Param("id")
		t, err := m.GetTable(tableID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "table not found"})
			return
		}

		operator := false
		if token := c.Query("token"); token != "" {
			if err := auth.Authorize(jwtSecret, token, tableID); err != nil {
				c.JSON(http.StatusForbidden, gin.H{"error": "invalid operator token"})
				return
			}
			operator = true
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[WS] Upgrade error: %v", err)
			return
		}

		client := &Client{
			conn:     conn,
			hub:      GameHub,
			id:       uuid.NewString(),
			tableID:  tableID,
			operator: operator,
			msgpack:  c.Query("enc") == "msgpack",
			send:     make(chan outbound, 64),
		}

		// First frame goes out before any broadcast.
		if text, binary, err := snapshotFrames(t.Snapshot()); err == nil {
			if client.msgpack {
				client.send <- outbound{binary: true, data: binary}
			} else {
				client.send <- outbound{data: text}
			}
		}

		GameHub.add(client)

		go client.writePump()
		go client.readPump(m)
	}
}

// readPump reads operator input until the connection drops.
func (c *Client) readPump(m *game.TableManager) {
	defer func() {
		c.hub.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] Unexpected close for client %s: %v", c.id, err)
			}
			break
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.sendError("Invalid message")
			continue
		}

		c.handleMessage(m, msg)
	}
}

// handleMessage processes one client message.
func (c *Client) handleMessage(m *game.TableManager, msg WSMessage) {
	if msg.Type == "get_state" {
		t, err := m.GetTable(c.tableID)
		if err != nil {
			c.sendError("Table not found")
			return
		}
		c.hub.sendTo(c, snapshotMessage{Type: "snapshot", Data: t.Snapshot()})
		return
	}

	kind, pressed, err := c.inputFor(msg)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	if !c.operator {
		c.sendError("Spectators cannot send input")
		return
	}
	if err := m.Input(c.tableID, kind, pressed); err != nil {
		c.sendError(err.Error())
	}
}

// inputFor maps a message onto a table input.
func (c *Client) inputFor(msg WSMessage) (game.InputKind, bool, error) {
	switch msg.Type {
	case "flipper":
		var data FlipperData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return "", false, errors.New("Invalid flipper data")
		}
		switch data.Side {
		case "left":
			return game.InputLeftFlipper, data.Pressed, nil
		case "right":
			return game.InputRightFlipper, data.Pressed, nil
		}
		return "", false, errors.New("Flipper side must be left or right")
	case "launch":
		return game.InputLaunch, true, nil
	case "restart":
		return game.InputRestart, true, nil
	}
	return "", false, errors.New("Unknown message type")
}
