package collab

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPresenceRegistry_SetOverwrites(t *testing.T) {
	r := NewPresenceRegistry()
	now := time.Now()
	user := Profile{ID: "user1", Name: "John Smith"}

	r.Set("42", user, ActionViewing, now)
	r.Set("42", user, ActionEditing, now.Add(time.Second))

	entries := r.Get("42")
	assert.Len(t, entries, 1)
	assert.Equal(t, ActionEditing, entries["user1"].Action)
	assert.Equal(t, now.Add(time.Second), entries["user1"].LastActive)
}

func TestPresenceRegistry_GetReturnsCopy(t *testing.T) {
	r := NewPresenceRegistry()
	r.Set("42", Profile{ID: "user1"}, ActionViewing, time.Now())

	entries := r.Get("42")
	delete(entries, "user1")

	assert.Len(t, r.Get("42"), 1)
}

func TestPresenceRegistry_RemoveDropsEmptyRecords(t *testing.T) {
	r := NewPresenceRegistry()
	r.Set("42", Profile{ID: "user1"}, ActionViewing, time.Now())
	r.Remove("42", "user1")

	assert.Empty(t, r.Get("42"))
	assert.Equal(t, 0, r.Sweep(0, time.Now()))
}

func TestPresenceRegistry_SweepByAge(t *testing.T) {
	r := NewPresenceRegistry()
	now := time.Now()
	r.Set("42", Profile{ID: "user1"}, ActionViewing, now.Add(-15*time.Minute))
	r.Set("42", Profile{ID: "user2"}, ActionViewing, now.Add(-time.Minute))
	r.Set("43", Profile{ID: "user3"}, ActionEditing, now.Add(-20*time.Minute))

	removed := r.Sweep(10*time.Minute, now)

	assert.Equal(t, 2, removed)
	assert.Len(t, r.Get("42"), 1)
	assert.Contains(t, r.Get("42"), "user2")
	assert.Empty(t, r.Get("43"))
}

func TestEditLedger_RecordAndCopy(t *testing.T) {
	l := NewEditLedger()
	l.Record("42", FieldEdit{UserID: "user1", FieldName: "name", Value: "Acme"})
	l.Record("42", FieldEdit{UserID: "user2", FieldName: "name", Value: "Acme Corp"})
	l.Record("42", FieldEdit{UserID: "user1", FieldName: "status", Value: "active"})

	edits := l.Get("42")
	assert.Len(t, edits, 2)
	assert.Equal(t, "Acme Corp", edits["name"].Value)
	assert.Equal(t, "user2", edits["name"].UserID)

	delete(edits, "name")
	assert.Len(t, l.Get("42"), 2)
}

func TestAction_Valid(t *testing.T) {
	assert.True(t, ActionViewing.Valid())
	assert.True(t, ActionEditing.Valid())
	assert.False(t, Action("dancing").Valid())
	assert.False(t, Action("").Valid())
}

func TestPlaceholderProfile(t *testing.T) {
	p := PlaceholderProfile("ghost")
	assert.Equal(t, "ghost", p.ID)
	assert.Equal(t, "Unknown User", p.Name)
	assert.Equal(t, "👤", p.Avatar)
	assert.Equal(t, "#64748b", p.Color)
}
