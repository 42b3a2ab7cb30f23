package collab

import "time"

// Action tags what a user is doing with a record.
type Action string

const (
	ActionViewing Action = "viewing"
	ActionEditing Action = "editing"
)

func (a Action) Valid() bool {
	return a == ActionViewing || a == ActionEditing
}

// Profile is the display metadata of a collaboration actor.
type Profile struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Avatar string `json:"avatar"`
	Color  string `json:"color"`
}

// PlaceholderProfile stands in for actors missing from the user directory,
// so presence and edit tracking degrade gracefully instead of rejecting
// events from unknown users.
func PlaceholderProfile(id string) Profile {
	return Profile{
		ID:     id,
		Name:   "Unknown User",
		Avatar: "👤",
		Color:  "#64748b",
	}
}

// Directory resolves user IDs to display profiles.
type Directory interface {
	Lookup(id string) (Profile, bool)
}

// StaticDirectory is a fixed in-memory Directory.
type StaticDirectory map[string]Profile

func (d StaticDirectory) Lookup(id string) (Profile, bool) {
	p, ok := d[id]
	return p, ok
}

// PresenceEntry records that a user has a record open.
type PresenceEntry struct {
	User       Profile   `json:"user"`
	Action     Action    `json:"action"`
	LastActive time.Time `json:"lastActive"`
}

// PresenceRegistry holds at most one PresenceEntry per (record, user) pair.
// It is owned and locked by the Coordinator and is not safe for concurrent
// use on its own.
type PresenceRegistry struct {
	records map[string]map[string]PresenceEntry
}

func NewPresenceRegistry() *PresenceRegistry {
	return &PresenceRegistry{records: make(map[string]map[string]PresenceEntry)}
}

// Set inserts or overwrites the entry for (recordID, user). Idempotent.
func (r *PresenceRegistry) Set(recordID string, user Profile, action Action, now time.Time) {
	entries := r.records[recordID]
	if entries == nil {
		entries = make(map[string]PresenceEntry)
		r.records[recordID] = entries
	}
	entries[user.ID] = PresenceEntry{
		User:       user,
		Action:     action,
		LastActive: now,
	}
}

// Get returns a copy of the entries for a record, empty when unknown.
func (r *PresenceRegistry) Get(recordID string) map[string]PresenceEntry {
	out := make(map[string]PresenceEntry, len(r.records[recordID]))
	for id, e := range r.records[recordID] {
		out[id] = e
	}
	return out
}

// Remove drops a single user's entry, e.g. when their session disconnects.
func (r *PresenceRegistry) Remove(recordID, userID string) {
	entries := r.records[recordID]
	delete(entries, userID)
	if len(entries) == 0 {
		delete(r.records, recordID)
	}
}

// Sweep drops entries whose LastActive is older than ttl and reports how
// many were removed. The wire contract has no explicit leave event, so
// expiry is how abandoned sessions eventually disappear.
func (r *PresenceRegistry) Sweep(ttl time.Duration, now time.Time) int {
	removed := 0
	for recordID, entries := range r.records {
		for userID, e := range entries {
			if now.Sub(e.LastActive) > ttl {
				delete(entries, userID)
				removed++
			}
		}
		if len(entries) == 0 {
			delete(r.records, recordID)
		}
	}
	return removed
}
