package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/playmatatu/pinball/internal/auth"
	"github.com/playmatatu/pinball/internal/game"
	"github.com/vmihailenco/msgpack/v5"
)

const testSecret = "test-secret"

type envelope struct {
	Type    string          `json:"type"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T) (*game.TableManager, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	m := game.NewTableManager(game.ManagerOptions{
		Tick:            time.Hour,
		CheckpointEvery: time.Hour,
		Events:          GameHub,
	})
	router := gin.New()
	router.GET("/tables/:id/ws", HandleWebSocket(m, testSecret))
	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		m.CloseAll()
		srv.Close()
	})
	return m, srv
}

func dial(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", path, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil reads JSON messages until one has the wanted type.
func readUntil(t *testing.T, conn *websocket.Conn, want string) envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var env envelope
		if err := conn.ReadJSON(&env); err != nil {
			t.Fatalf("waiting for %s: %v", want, err)
		}
		if env.Type == want {
			return env
		}
	}
}

func TestOperatorControlsTable(t *testing.T) {
	m, srv := newTestServer(t)
	tbl, _ := m.CreateTable(nil)
	token, _, _ := auth.IssueOperatorToken(testSecret, tbl.ID, time.Hour)

	conn := dial(t, srv, "/tables/"+tbl.ID+"/ws?token="+token)
	first := readUntil(t, conn, "snapshot")
	var snap game.Snapshot
	if err := json.Unmarshal(first.Data, &snap); err != nil {
		t.Fatal(err)
	}
	if snap.State != "START" || snap.Overlay == nil {
		t.Errorf("initial snapshot state=%s overlay=%v", snap.State, snap.Overlay)
	}

	conn.WriteJSON(map[string]interface{}{"type": "restart"})
	readUntil(t, conn, game.EventGameStarted)

	conn.WriteJSON(map[string]interface{}{"type": "flipper", "data": map[string]interface{}{"side": "left", "pressed": true}})
	conn.WriteJSON(map[string]interface{}{"type": "get_state"})
	env := readUntil(t, conn, "snapshot")
	if err := json.Unmarshal(env.Data, &snap); err != nil {
		t.Fatal(err)
	}
	if snap.State != "PLAYING" {
		t.Errorf("state after restart = %s", snap.State)
	}
	if _, inputs, _ := tbl.History(); len(inputs) != 2 {
		t.Errorf("recorded inputs = %+v", inputs)
	}

	conn.WriteJSON(map[string]interface{}{"type": "flipper", "data": map[string]interface{}{"side": "middle"}})
	if env := readUntil(t, conn, "error"); env.Message == "" {
		t.Error("expected an error message for a bad flipper side")
	}
}

func TestSpectatorCannotSendInput(t *testing.T) {
	m, srv := newTestServer(t)
	tbl, _ := m.CreateTable(nil)

	conn := dial(t, srv, "/tables/"+tbl.ID+"/ws")
	readUntil(t, conn, "snapshot")
	conn.WriteJSON(map[string]interface{}{"type": "launch"})
	env := readUntil(t, conn, "error")
	if env.Message != "Spectators cannot send input" {
		t.Errorf("error = %q", env.Message)
	}
	if _, inputs, _ := tbl.History(); len(inputs) != 0 {
		t.Errorf("spectator input was recorded: %+v", inputs)
	}
}

func TestRejectsBadTokenAndUnknownTable(t *testing.T) {
	m, srv := newTestServer(t)
	tbl, _ := m.CreateTable(nil)
	other, _, _ := auth.IssueOperatorToken(testSecret, "someone-else", time.Hour)
	base := "ws" + strings.TrimPrefix(srv.URL, "http")

	if _, resp, err := websocket.DefaultDialer.Dial(base+"/tables/"+tbl.ID+"/ws?token="+other, nil); err == nil || resp.StatusCode != 403 {
		t.Errorf("foreign token: err=%v", err)
	}
	if _, resp, err := websocket.DefaultDialer.Dial(base+"/tables/nope/ws", nil); err == nil || resp.StatusCode != 404 {
		t.Errorf("unknown table: err=%v", err)
	}
}

func TestMsgpackSnapshots(t *testing.T) {
	m, srv := newTestServer(t)
	tbl, _ := m.CreateTable(nil)

	conn := dial(t, srv, "/tables/"+tbl.ID+"/ws?enc=msgpack")
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	kind, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	if kind != websocket.BinaryMessage {
		t.Fatalf("message kind = %d, want binary", kind)
	}
	var msg map[string]interface{}
	if err := msgpack.Unmarshal(data, &msg); err != nil {
		t.Fatal(err)
	}
	if msg["type"] != "snapshot" {
		t.Errorf("type = %v", msg["type"])
	}
	body, _ := msg["data"].(map[string]interface{})
	if body["state"] != "START" {
		t.Errorf("snapshot state = %v", body["state"])
	}
}

func TestTableCloseDisconnectsRoom(t *testing.T) {
	m, srv := newTestServer(t)
	tbl, _ := m.CreateTable(nil)

	conn := dial(t, srv, "/tables/"+tbl.ID+"/ws")
	readUntil(t, conn, "snapshot")
	if err := m.CloseTable(tbl.ID); err != nil {
		t.Fatal(err)
	}
	readUntil(t, conn, game.EventTableClosed)

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected the connection to close")
	}
	if GameHub.RoomSize(tbl.ID) != 0 {
		t.Error("room should be empty after close")
	}
}

func TestBroadcastSnapshotSkipsEmptyRoom(t *testing.T) {
	h := NewHub()
	h.BroadcastSnapshot("nobody", game.NewSession(game.DefaultLayout(), 1).Snapshot())
	if h.RoomSize("nobody") != 0 {
		t.Error("broadcast must not create rooms")
	}
}
