package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nexussync/internal/collab"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

var testDirectory = collab.StaticDirectory{
	"user1": {ID: "user1", Name: "John Smith"},
	"user2": {ID: "user2", Name: "Emily Johnson"},
}

func setupWsServer(t *testing.T, userID string) (*httptest.Server, *collab.Coordinator) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	coordinator := collab.NewCoordinator(testDirectory["user1"], testDirectory, collab.NewLoopback(), nil, zerolog.Nop())
	t.Cleanup(coordinator.Close)
	handler := NewHandler(coordinator, zerolog.Nop())

	router := gin.New()
	router.GET("/ws", func(c *gin.Context) {
		c.Set("user_id", userID)
		handler.HandleConnection(c)
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, coordinator
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	assert.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readPush(t *testing.T, conn *websocket.Conn) pushMessage {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg pushMessage
	_, raw, err := conn.ReadMessage()
	assert.NoError(t, err)
	assert.NoError(t, json.Unmarshal(raw, &msg))
	return msg
}

func TestHandleConnection_RejectsMissingUser(t *testing.T) {
	server, _ := setupWsServer(t, "")

	resp, err := http.Get(server.URL + "/ws")
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestClient_LocalIntentAppliesAndPushes(t *testing.T) {
	server, coordinator := setupWsServer(t, "user1")
	conn := dial(t, server)

	err := conn.WriteJSON(intentMessage{
		Type:       "view_record",
		RecordID:   "42",
		RecordType: "customer",
	})
	assert.NoError(t, err)

	msg := readPush(t, conn)
	assert.Equal(t, collab.EventUserPresence, msg.Type)
	assert.Equal(t, "42", msg.RecordID)
	assert.Equal(t, "user1", msg.Presence.User.ID)
	assert.Equal(t, collab.ActionViewing, msg.Presence.Action)

	assert.Eventually(t, func() bool {
		return len(coordinator.ActiveUsers("42")) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestClient_RemoteUserEditEntersLedger(t *testing.T) {
	server, coordinator := setupWsServer(t, "user2")
	conn := dial(t, server)

	err := conn.WriteJSON(intentMessage{
		Type:      "update_field",
		RecordID:  "42",
		FieldName: "industry",
		Value:     "Technology Services",
	})
	assert.NoError(t, err)

	msg := readPush(t, conn)
	assert.Equal(t, collab.EventEditUpdate, msg.Type)
	assert.Equal(t, "industry", msg.Edit.FieldName)
	assert.Equal(t, "Emily Johnson", msg.Edit.User.Name)

	assert.Eventually(t, func() bool {
		edit, ok := coordinator.Edits("42")["industry"]
		return ok && edit.Value == "Technology Services"
	}, time.Second, 10*time.Millisecond)
}

func TestClient_DisconnectClearsPresence(t *testing.T) {
	server, coordinator := setupWsServer(t, "user2")
	conn := dial(t, server)

	assert.NoError(t, conn.WriteJSON(intentMessage{Type: "view_record", RecordID: "42"}))
	assert.Eventually(t, func() bool {
		return len(coordinator.ActiveUsers("42")) == 1
	}, time.Second, 10*time.Millisecond)

	conn.Close()

	assert.Eventually(t, func() bool {
		return len(coordinator.ActiveUsers("42")) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestClient_FollowOnlyForLocalUser(t *testing.T) {
	server, coordinator := setupWsServer(t, "user2")
	conn := dial(t, server)

	assert.NoError(t, conn.WriteJSON(intentMessage{Type: "follow", RecordID: "42"}))
	// Give the read pump a beat; a remote peer cannot mutate the local
	// user's followed set.
	time.Sleep(100 * time.Millisecond)
	assert.False(t, coordinator.IsFollowed("42"))
}
