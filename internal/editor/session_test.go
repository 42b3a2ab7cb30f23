package editor

import (
	"sync"
	"testing"
	"time"

	"nexussync/internal/collab"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type fieldUpdate struct {
	RecordID  string
	FieldName string
	Value     any
	Complete  bool
}

// spyCoordinator wraps the real coordinator and records every write the
// session hands it, so tests can count debounced flushes.
type spyCoordinator struct {
	*collab.Coordinator

	mu      sync.Mutex
	updates []fieldUpdate
	views   int
}

func (s *spyCoordinator) UpdateField(recordID, fieldName string, value any, complete bool) {
	s.mu.Lock()
	s.updates = append(s.updates, fieldUpdate{recordID, fieldName, value, complete})
	s.mu.Unlock()
	s.Coordinator.UpdateField(recordID, fieldName, value, complete)
}

func (s *spyCoordinator) ViewRecord(recordID, recordType string) {
	s.mu.Lock()
	s.views++
	s.mu.Unlock()
	s.Coordinator.ViewRecord(recordID, recordType)
}

func (s *spyCoordinator) Updates() []fieldUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]fieldUpdate, len(s.updates))
	copy(out, s.updates)
	return out
}

var testDirectory = collab.StaticDirectory{
	"user1": {ID: "user1", Name: "John Smith"},
	"user2": {ID: "user2", Name: "Emily Johnson"},
}

func newTestSession(t *testing.T, cfg Config, base map[string]string) (*Session, *spyCoordinator) {
	t.Helper()
	co := collab.NewCoordinator(testDirectory["user1"], testDirectory, collab.NewLoopback(), nil, zerolog.Nop())
	t.Cleanup(co.Close)
	spy := &spyCoordinator{Coordinator: co}
	s := NewSession(spy, "42", "customer", base, cfg)
	t.Cleanup(s.Close)
	return s, spy
}

func TestSession_DebounceCollapsesRapidChanges(t *testing.T) {
	s, spy := newTestSession(t, Config{Debounce: 30 * time.Millisecond}, map[string]string{"name": ""})

	s.HandleFieldChange("name", "A")
	s.HandleFieldChange("name", "Ac")
	s.HandleFieldChange("name", "Acm")
	s.HandleFieldChange("name", "Acme")
	s.HandleFieldChange("name", "Acme Corp")

	// Pending value echoes immediately, before any flush.
	assert.Equal(t, "Acme Corp", s.DisplayValue("name"))
	assert.Empty(t, spy.Updates())

	time.Sleep(120 * time.Millisecond)

	updates := spy.Updates()
	assert.Len(t, updates, 1)
	assert.Equal(t, fieldUpdate{"42", "name", "Acme Corp", false}, updates[0])
	assert.Equal(t, "Acme Corp", s.DisplayValue("name"))
}

func TestSession_DebouncePerField(t *testing.T) {
	s, spy := newTestSession(t, Config{Debounce: 30 * time.Millisecond}, nil)

	s.HandleFieldChange("name", "Acme")
	s.HandleFieldChange("status", "active")

	time.Sleep(120 * time.Millisecond)

	updates := spy.Updates()
	assert.Len(t, updates, 2)
	fields := []string{updates[0].FieldName, updates[1].FieldName}
	assert.ElementsMatch(t, []string{"name", "status"}, fields)
}

func TestSession_SubmitFlushesPendingComplete(t *testing.T) {
	s, spy := newTestSession(t, Config{Debounce: time.Hour}, map[string]string{"name": "Old"})

	s.HandleFieldChange("name", "Acme Corp")
	s.HandleFieldChange("status", "active")
	s.Submit()

	updates := spy.Updates()
	assert.Len(t, updates, 2)
	for _, u := range updates {
		assert.True(t, u.Complete)
	}

	// Presence reverts to viewing: once on open, once on submit.
	spy.mu.Lock()
	views := spy.views
	spy.mu.Unlock()
	assert.Equal(t, 2, views)

	// Nothing pending survives, so a later timer fire has nothing to flush.
	assert.Equal(t, "Acme Corp", s.DisplayValue("name"))
}

func TestSession_SubmitCompletesDebouncedFields(t *testing.T) {
	s, spy := newTestSession(t, Config{Debounce: 30 * time.Millisecond}, map[string]string{"name": "Old"})

	s.HandleFieldChange("name", "Acme Corp")
	time.Sleep(120 * time.Millisecond)

	// The debounce already carried the value out as an in-progress edit.
	updates := spy.Updates()
	assert.Len(t, updates, 1)
	assert.Equal(t, fieldUpdate{"42", "name", "Acme Corp", false}, updates[0])

	// Submit still owes the field its completing write, or every other
	// session keeps showing the editing banner.
	s.Submit()
	updates = spy.Updates()
	assert.Len(t, updates, 2)
	assert.Equal(t, fieldUpdate{"42", "name", "Acme Corp", true}, updates[1])
}

func TestSession_SubmitCancelsInFlightTimer(t *testing.T) {
	s, spy := newTestSession(t, Config{Debounce: 30 * time.Millisecond}, nil)

	s.HandleFieldChange("name", "Acme")
	s.Submit()
	time.Sleep(120 * time.Millisecond)

	// Only the submit write lands; the superseded timer never fires a
	// second, in-progress one behind it.
	updates := spy.Updates()
	assert.Len(t, updates, 1)
	assert.Equal(t, fieldUpdate{"42", "name", "Acme", true}, updates[0])
}

func TestSession_DisplayValuePrefersPending(t *testing.T) {
	s, _ := newTestSession(t, Config{Debounce: time.Hour}, map[string]string{"name": "Acme"})

	assert.Equal(t, "Acme", s.DisplayValue("name"))
	s.HandleFieldChange("name", "Acme Corp")
	assert.Equal(t, "Acme Corp", s.DisplayValue("name"))
}

func TestSession_RemoteEditOverwritesAndHighlights(t *testing.T) {
	s, spy := newTestSession(t, Config{Debounce: time.Hour, HighlightTTL: 150 * time.Millisecond}, map[string]string{"industry": "Retail"})

	spy.SimulateRemoteEdit("user2", "42", "industry", "Technology Services")

	assert.Equal(t, "Technology Services", s.DisplayValue("industry"))
	assert.True(t, s.Highlighted("industry"))

	time.Sleep(300 * time.Millisecond)
	assert.False(t, s.Highlighted("industry"))
	assert.Equal(t, "Technology Services", s.DisplayValue("industry"))
}

func TestSession_NewRemoteEditResetsHighlight(t *testing.T) {
	s, spy := newTestSession(t, Config{Debounce: time.Hour, HighlightTTL: 200 * time.Millisecond}, nil)

	spy.SimulateRemoteEdit("user2", "42", "notes", "first")
	time.Sleep(120 * time.Millisecond)
	spy.SimulateRemoteEdit("user2", "42", "notes", "second")
	time.Sleep(120 * time.Millisecond)

	// The first marker's expiry has passed, but the second edit reset it.
	assert.True(t, s.Highlighted("notes"))

	time.Sleep(200 * time.Millisecond)
	assert.False(t, s.Highlighted("notes"))
}

func TestSession_RemoteEditIgnoredForOtherRecords(t *testing.T) {
	s, spy := newTestSession(t, Config{}, map[string]string{"name": "Acme"})

	spy.SimulateRemoteEdit("user2", "99", "name", "Other Corp")

	assert.Equal(t, "Acme", s.DisplayValue("name"))
	assert.False(t, s.Highlighted("name"))
}

func TestSession_OwnEditsNeverHighlight(t *testing.T) {
	s, _ := newTestSession(t, Config{Debounce: 20 * time.Millisecond}, nil)

	s.HandleFieldChange("name", "Acme")
	time.Sleep(100 * time.Millisecond)

	assert.False(t, s.Highlighted("name"))
	assert.Equal(t, "Acme", s.DisplayValue("name"))
}

func TestSession_EditedByOtherBanner(t *testing.T) {
	s, spy := newTestSession(t, Config{Debounce: time.Hour}, nil)

	_, active := s.EditedByOther("industry")
	assert.False(t, active)

	spy.SimulateRemoteEdit("user2", "42", "industry", "Technology")
	user, active := s.EditedByOther("industry")
	assert.True(t, active)
	assert.Equal(t, "Emily Johnson", user.Name)

	// The banner clears once the latest ledger entry is a completed edit.
	s.HandleFieldChange("industry", "Tech Services")
	s.Submit()
	_, active = s.EditedByOther("industry")
	assert.False(t, active)
}

func TestSession_ClosedDropsPending(t *testing.T) {
	s, spy := newTestSession(t, Config{Debounce: 30 * time.Millisecond}, nil)

	s.HandleFieldChange("name", "Acme")
	s.Close()
	time.Sleep(100 * time.Millisecond)

	assert.Empty(t, spy.Updates())
	s.HandleFieldChange("name", "ignored")
	assert.Equal(t, "", s.DisplayValue("name"))
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "", valueString(nil))
	assert.Equal(t, "Acme", valueString("Acme"))
	assert.Equal(t, "42", valueString(42))
	assert.Equal(t, "true", valueString(true))
}
