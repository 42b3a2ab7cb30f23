package ws

import (
	"encoding/json"
	"sync"
	"time"

	"nexussync/internal/collab"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

// intentMessage is what a connected dashboard sends.
type intentMessage struct {
	Type       string `json:"type"` // view_record, update_field, follow, unfollow
	RecordID   string `json:"recordId"`
	RecordType string `json:"recordType,omitempty"`
	FieldName  string `json:"fieldName,omitempty"`
	Value      any    `json:"value,omitempty"`
	Complete   bool   `json:"complete,omitempty"`
}

// pushMessage is what the server fans out to connected dashboards.
type pushMessage struct {
	Type     string                `json:"type"` // edit_update, user_presence
	RecordID string                `json:"recordId"`
	Edit     *collab.FieldEdit     `json:"edit,omitempty"`
	Presence *collab.PresenceEntry `json:"presence,omitempty"`
}

// Client pumps one websocket connection: inbound intents into the
// coordinator, coordinator events back out to the peer.
type Client struct {
	conn        *websocket.Conn
	coordinator *collab.Coordinator
	userID      string
	send        chan []byte
	subs        []collab.Subscription
	viewed      map[string]bool
	log         zerolog.Logger

	mu     sync.Mutex
	closed bool
}

func NewClient(conn *websocket.Conn, coordinator *collab.Coordinator, userID string, log zerolog.Logger) *Client {
	return &Client{
		conn:        conn,
		coordinator: coordinator,
		userID:      userID,
		send:        make(chan []byte, 256),
		viewed:      make(map[string]bool),
		log:         log.With().Str("component", "ws-client").Str("user_id", userID).Logger(),
	}
}

// Run attaches the client to the coordinator and starts both pumps.
func (c *Client) Run() {
	c.subs = append(c.subs,
		c.coordinator.OnEdit(c.pushEdit),
		c.coordinator.OnPresence(c.pushPresence),
	)
	go c.writePump()
	go c.readPump()
}

func (c *Client) pushEdit(recordID string, edit collab.FieldEdit) {
	c.enqueue(pushMessage{Type: collab.EventEditUpdate, RecordID: recordID, Edit: &edit})
}

func (c *Client) pushPresence(recordID string, entry collab.PresenceEntry) {
	c.enqueue(pushMessage{Type: collab.EventUserPresence, RecordID: recordID, Presence: &entry})
}

func (c *Client) enqueue(msg pushMessage) {
	b, err := json.Marshal(msg)
	if err != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- b:
	default:
		c.log.Warn().Msg("send buffer full, dropping push")
	}
}

func (c *Client) readPump() {
	defer c.teardown()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn().Err(err).Msg("websocket read error")
			}
			return
		}

		var intent intentMessage
		if err := json.Unmarshal(message, &intent); err != nil {
			c.log.Debug().Err(err).Msg("dropping undecodable intent")
			continue
		}
		c.dispatch(intent)
	}
}

// dispatch routes an intent through the coordinator. A peer acting as the
// coordinator's own user takes the local intent path; any other user's
// intents enter the same way channel events do.
func (c *Client) dispatch(intent intentMessage) {
	if intent.RecordID == "" {
		return
	}
	local := c.userID == c.coordinator.CurrentUser().ID

	switch intent.Type {
	case "view_record":
		c.viewed[intent.RecordID] = true
		if local {
			c.coordinator.ViewRecord(intent.RecordID, intent.RecordType)
		} else {
			c.coordinator.ApplyPresenceEvent(collab.PresenceEvent{
				RecordID: intent.RecordID,
				UserID:   c.userID,
				Action:   collab.ActionViewing,
			})
		}
	case "update_field":
		c.viewed[intent.RecordID] = true
		if local {
			c.coordinator.UpdateField(intent.RecordID, intent.FieldName, intent.Value, intent.Complete)
		} else {
			c.coordinator.ApplyEditEvent(collab.EditEvent{
				RecordID:  intent.RecordID,
				UserID:    c.userID,
				FieldName: intent.FieldName,
				Value:     intent.Value,
			})
		}
	case "follow":
		if local {
			c.coordinator.Follow(intent.RecordID)
		}
	case "unfollow":
		if local {
			c.coordinator.Unfollow(intent.RecordID)
		}
	default:
		c.log.Debug().Str("type", intent.Type).Msg("unknown intent type")
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.log.Warn().Err(err).Msg("failed to write message")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// teardown detaches the client and clears its presence on every record it
// touched, the explicit-leave counterpart to the TTL sweep.
func (c *Client) teardown() {
	for _, s := range c.subs {
		s.Close()
	}
	for recordID := range c.viewed {
		c.coordinator.RemovePresence(recordID, c.userID)
	}
	c.mu.Lock()
	c.closed = true
	close(c.send)
	c.mu.Unlock()
	c.log.Debug().Msg("client disconnected")
}
