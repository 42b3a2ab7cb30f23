package collab

import (
	"encoding/json"
	"sync"
)

// Event names carried over the collaboration channel.
const (
	EventUserPresence = "user_presence"
	EventEditUpdate   = "edit_update"
)

// ConnStatus reports the state of the underlying transport.
type ConnStatus string

const (
	StatusDisconnected ConnStatus = "disconnected"
	StatusConnecting   ConnStatus = "connecting"
	StatusConnected    ConnStatus = "connected"
)

// HandlerFunc receives the raw JSON payload of a channel event.
type HandlerFunc func(payload []byte)

// Subscription detaches a previously registered handler or listener.
type Subscription interface {
	Close()
}

// Channel is the bidirectional event transport the coordinator depends on.
// Implementations may never leave StatusDisconnected; every coordinator
// operation still succeeds against local state in that case.
type Channel interface {
	Emit(event string, payload any) error
	On(event string, h HandlerFunc) Subscription
	Status() ConnStatus
}

// PresenceEvent is the wire payload of a user_presence event.
type PresenceEvent struct {
	RecordID string `json:"recordId"`
	UserID   string `json:"userId"`
	Action   Action `json:"action"`
}

// EditEvent is the wire payload of an edit_update event.
type EditEvent struct {
	RecordID  string `json:"recordId"`
	UserID    string `json:"userId"`
	FieldName string `json:"fieldName"`
	Value     any    `json:"value"`
}

// Loopback is an in-process Channel: emitted events are delivered
// synchronously to every local subscriber. It backs tests and the degraded
// mode where no real transport is configured.
type Loopback struct {
	mu       sync.Mutex
	handlers map[string]map[int]HandlerFunc
	nextID   int
	status   ConnStatus
}

func NewLoopback() *Loopback {
	return &Loopback{
		handlers: make(map[string]map[int]HandlerFunc),
		status:   StatusDisconnected,
	}
}

func (l *Loopback) Emit(event string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	l.mu.Lock()
	hs := make([]HandlerFunc, 0, len(l.handlers[event]))
	for _, h := range l.handlers[event] {
		hs = append(hs, h)
	}
	l.mu.Unlock()

	for _, h := range hs {
		h(b)
	}
	return nil
}

func (l *Loopback) On(event string, h HandlerFunc) Subscription {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.handlers[event] == nil {
		l.handlers[event] = make(map[int]HandlerFunc)
	}
	id := l.nextID
	l.nextID++
	l.handlers[event][id] = h

	return &loopbackSub{ch: l, event: event, id: id}
}

func (l *Loopback) Status() ConnStatus {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status
}

// SetStatus flips the reported connection state. The loopback has no real
// transport, so status is purely informational.
func (l *Loopback) SetStatus(s ConnStatus) {
	l.mu.Lock()
	l.status = s
	l.mu.Unlock()
}

type loopbackSub struct {
	ch    *Loopback
	event string
	id    int
	once  sync.Once
}

func (s *loopbackSub) Close() {
	s.once.Do(func() {
		s.ch.mu.Lock()
		delete(s.ch.handlers[s.event], s.id)
		s.ch.mu.Unlock()
	})
}
