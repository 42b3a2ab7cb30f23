package collab

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// feedLimit caps the activity feed at the most recent entries.
const feedLimit = 20

// Notification is one entry in the activity feed.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	User      Profile   `json:"user"`
	RecordID  string    `json:"recordId"`
	Action    string    `json:"action"`
	FieldName string    `json:"fieldName"`
	Timestamp time.Time `json:"timestamp"`
}

// Toaster surfaces a transient, human-meaningful message to the user.
type Toaster interface {
	Toast(message string)
}

// LogToaster writes toasts to the structured log; the default when no UI
// toast sink is wired in.
type LogToaster struct {
	Log zerolog.Logger
}

func (t LogToaster) Toast(message string) {
	t.Log.Info().Str("toast", message).Msg("notification")
}

// NotificationFeed is a newest-first, capped activity feed. Repeated edits
// each produce a separate entry; there is no deduplication.
type NotificationFeed struct {
	entries []Notification
	toaster Toaster
}

func NewNotificationFeed(toaster Toaster) *NotificationFeed {
	return &NotificationFeed{toaster: toaster}
}

// Push prepends a notification, trims the feed to its cap and surfaces a
// toast. Locking is the owning Coordinator's job.
func (f *NotificationFeed) Push(n Notification) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	f.entries = append([]Notification{n}, f.entries...)
	if len(f.entries) > feedLimit {
		f.entries = f.entries[:feedLimit]
	}
	if f.toaster != nil {
		f.toaster.Toast(fmt.Sprintf("%s edited %s of record #%s", n.User.Name, n.FieldName, n.RecordID))
	}
}

// List returns a copy of the feed, newest first.
func (f *NotificationFeed) List() []Notification {
	out := make([]Notification, len(f.entries))
	copy(out, f.entries)
	return out
}
