package collab

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// EditListener observes every edit applied to the ledger, local or remote.
type EditListener func(recordID string, edit FieldEdit)

// PresenceListener observes every presence change applied to the registry.
type PresenceListener func(recordID string, entry PresenceEntry)

// Coordinator owns the presence registry and edit ledger and is their only
// writer. UI-facing components read snapshots and send intents (ViewRecord,
// UpdateField); inbound channel events flow through the same writes, so
// consumers never distinguish local from remote origin except by user ID.
type Coordinator struct {
	mu sync.Mutex

	self      Profile
	directory Directory
	channel   Channel

	presence *PresenceRegistry
	ledger   *EditLedger
	feed     *NotificationFeed
	followed map[string]bool

	editListeners     map[int]EditListener
	presenceListeners map[int]PresenceListener
	nextListenerID    int

	subs []Subscription
	log  zerolog.Logger
}

// NewCoordinator wires a coordinator for the given local identity. The
// channel may be (and stay) disconnected; every operation still succeeds
// against local state. A nil toaster falls back to logging.
func NewCoordinator(self Profile, directory Directory, channel Channel, toaster Toaster, log zerolog.Logger) *Coordinator {
	log = log.With().Str("component", "collab").Logger()
	if toaster == nil {
		toaster = LogToaster{Log: log}
	}

	c := &Coordinator{
		self:              self,
		directory:         directory,
		channel:           channel,
		presence:          NewPresenceRegistry(),
		ledger:            NewEditLedger(),
		feed:              NewNotificationFeed(toaster),
		followed:          make(map[string]bool),
		editListeners:     make(map[int]EditListener),
		presenceListeners: make(map[int]PresenceListener),
		log:               log,
	}

	c.subs = append(c.subs,
		channel.On(EventUserPresence, c.handlePresencePayload),
		channel.On(EventEditUpdate, c.handleEditPayload),
	)

	return c
}

// CurrentUser returns the local identity this coordinator acts as.
func (c *Coordinator) CurrentUser() Profile {
	return c.self
}

// Status reports the transport state. It is informational only and gates
// nothing: local intents succeed regardless.
func (c *Coordinator) Status() ConnStatus {
	return c.channel.Status()
}

// ViewRecord registers the current user as viewing a record. Idempotent and
// safe to call on every mount of a detail view.
func (c *Coordinator) ViewRecord(recordID, recordType string) {
	if recordID == "" {
		return
	}
	c.applyPresence(recordID, c.self, ActionViewing)
	c.log.Debug().Str("record_id", recordID).Str("record_type", recordType).Msg("viewing record")
	c.emit(EventUserPresence, PresenceEvent{RecordID: recordID, UserID: c.self.ID, Action: ActionViewing})
}

// UpdateField records the current user's edit intent for a field. The local
// ledger write happens unconditionally; the matching channel emit is
// best-effort and its failure is never surfaced to the caller.
func (c *Coordinator) UpdateField(recordID, fieldName string, value any, complete bool) {
	if recordID == "" || fieldName == "" {
		return
	}

	action := ActionEditing
	if complete {
		action = ActionViewing
	}
	edit := FieldEdit{
		UserID:    c.self.ID,
		User:      c.self,
		FieldName: fieldName,
		Value:     value,
		Timestamp: time.Now(),
		Complete:  complete,
	}
	c.applyEdit(recordID, edit, action)
	c.emit(EventEditUpdate, EditEvent{RecordID: recordID, UserID: c.self.ID, FieldName: fieldName, Value: value})
	c.emit(EventUserPresence, PresenceEvent{RecordID: recordID, UserID: c.self.ID, Action: action})
}

// ApplyPresenceEvent applies an inbound presence event from another user.
// Malformed events are dropped; unknown users get a placeholder profile.
func (c *Coordinator) ApplyPresenceEvent(ev PresenceEvent) {
	if ev.RecordID == "" || ev.UserID == "" || !ev.Action.Valid() {
		c.log.Debug().Str("record_id", ev.RecordID).Str("user_id", ev.UserID).Msg("dropping malformed presence event")
		return
	}
	if ev.UserID == c.self.ID {
		// Local intents are applied before they are emitted; the transport
		// echo carries nothing new.
		return
	}
	c.applyPresence(ev.RecordID, c.resolve(ev.UserID), ev.Action)
}

// ApplyEditEvent applies an inbound edit event from another user through the
// same ledger write local edits use.
func (c *Coordinator) ApplyEditEvent(ev EditEvent) {
	if ev.RecordID == "" || ev.UserID == "" || ev.FieldName == "" {
		c.log.Debug().Str("record_id", ev.RecordID).Str("user_id", ev.UserID).Msg("dropping malformed edit event")
		return
	}
	if ev.UserID == c.self.ID {
		return
	}
	user := c.resolve(ev.UserID)
	edit := FieldEdit{
		UserID:    ev.UserID,
		User:      user,
		FieldName: ev.FieldName,
		Value:     ev.Value,
		Timestamp: time.Now(),
	}
	c.applyEdit(ev.RecordID, edit, ActionEditing)
}

// SimulateRemoteEdit injects an edit as if it arrived from the channel.
// Demo and test hook, kept from the reference behavior so the collaboration
// flow can be exercised without a live transport.
func (c *Coordinator) SimulateRemoteEdit(userID, recordID, fieldName string, value any) {
	c.ApplyEditEvent(EditEvent{RecordID: recordID, UserID: userID, FieldName: fieldName, Value: value})
}

// Follow opts the current user into notifications for a record.
func (c *Coordinator) Follow(recordID string) {
	c.mu.Lock()
	c.followed[recordID] = true
	c.mu.Unlock()
}

// Unfollow removes a record from the followed set.
func (c *Coordinator) Unfollow(recordID string) {
	c.mu.Lock()
	delete(c.followed, recordID)
	c.mu.Unlock()
}

func (c *Coordinator) IsFollowed(recordID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.followed[recordID]
}

// Followed lists the records the current user follows.
func (c *Coordinator) Followed() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.followed))
	for id := range c.followed {
		out = append(out, id)
	}
	return out
}

// ActiveUsers snapshots who currently has a record open.
func (c *Coordinator) ActiveUsers(recordID string) map[string]PresenceEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.presence.Get(recordID)
}

// Edits snapshots the latest known edit per field of a record.
func (c *Coordinator) Edits(recordID string) map[string]FieldEdit {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ledger.Get(recordID)
}

// Notifications snapshots the activity feed, newest first.
func (c *Coordinator) Notifications() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.feed.List()
}

// OnEdit registers a listener for every applied edit. Listeners run outside
// the coordinator lock and may call back into it.
func (c *Coordinator) OnEdit(fn EditListener) Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextListenerID
	c.nextListenerID++
	c.editListeners[id] = fn
	return &listenerSub{co: c, id: id, edit: true}
}

// OnPresence registers a listener for every applied presence change.
func (c *Coordinator) OnPresence(fn PresenceListener) Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextListenerID
	c.nextListenerID++
	c.presenceListeners[id] = fn
	return &listenerSub{co: c, id: id}
}

// RemovePresence drops a user's presence on a record, e.g. when their
// websocket session closes.
func (c *Coordinator) RemovePresence(recordID, userID string) {
	c.mu.Lock()
	c.presence.Remove(recordID, userID)
	c.mu.Unlock()
}

// SweepPresence expires entries idle longer than ttl.
func (c *Coordinator) SweepPresence(ttl time.Duration) int {
	c.mu.Lock()
	removed := c.presence.Sweep(ttl, time.Now())
	c.mu.Unlock()
	if removed > 0 {
		c.log.Debug().Int("removed", removed).Msg("swept stale presence entries")
	}
	return removed
}

// Close detaches the coordinator from its channel.
func (c *Coordinator) Close() {
	for _, s := range c.subs {
		s.Close()
	}
}

func (c *Coordinator) applyPresence(recordID string, user Profile, action Action) {
	c.mu.Lock()
	c.presence.Set(recordID, user, action, time.Now())
	entry := c.presence.Get(recordID)[user.ID]
	listeners := make([]PresenceListener, 0, len(c.presenceListeners))
	for _, fn := range c.presenceListeners {
		listeners = append(listeners, fn)
	}
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(recordID, entry)
	}
}

// applyEdit is the single write path for local, inbound and simulated edits.
// Editing implies viewing, so every edit refreshes presence too.
func (c *Coordinator) applyEdit(recordID string, edit FieldEdit, action Action) {
	c.mu.Lock()
	c.ledger.Record(recordID, edit)
	c.presence.Set(recordID, edit.User, action, time.Now())
	if edit.UserID != c.self.ID && c.followed[recordID] {
		c.feed.Push(Notification{
			UserID:    edit.UserID,
			User:      edit.User,
			RecordID:  recordID,
			Action:    "edited",
			FieldName: edit.FieldName,
			Timestamp: edit.Timestamp,
		})
	}
	listeners := make([]EditListener, 0, len(c.editListeners))
	for _, fn := range c.editListeners {
		listeners = append(listeners, fn)
	}
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(recordID, edit)
	}
}

// emit sends best-effort: transport failures are logged and swallowed since
// local state is authoritative for the acting client either way.
func (c *Coordinator) emit(event string, payload any) {
	if err := c.channel.Emit(event, payload); err != nil {
		c.log.Warn().Err(err).Str("event", event).Msg("channel emit failed")
	}
}

func (c *Coordinator) resolve(userID string) Profile {
	if c.directory != nil {
		if p, ok := c.directory.Lookup(userID); ok {
			return p
		}
	}
	return PlaceholderProfile(userID)
}

func (c *Coordinator) handlePresencePayload(payload []byte) {
	var ev PresenceEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		c.log.Debug().Err(err).Msg("dropping undecodable presence payload")
		return
	}
	c.ApplyPresenceEvent(ev)
}

func (c *Coordinator) handleEditPayload(payload []byte) {
	var ev EditEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		c.log.Debug().Err(err).Msg("dropping undecodable edit payload")
		return
	}
	c.ApplyEditEvent(ev)
}

type listenerSub struct {
	co   *Coordinator
	id   int
	edit bool
	once sync.Once
}

func (s *listenerSub) Close() {
	s.once.Do(func() {
		s.co.mu.Lock()
		if s.edit {
			delete(s.co.editListeners, s.id)
		} else {
			delete(s.co.presenceListeners, s.id)
		}
		s.co.mu.Unlock()
	})
}
