package editor

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"nexussync/internal/collab"
	"nexussync/internal/config"
)

const (
	defaultDebounce     = 500 * time.Millisecond
	defaultHighlightTTL = 2000 * time.Millisecond
)

// Coordinator is the slice of the collaboration coordinator a session needs.
type Coordinator interface {
	CurrentUser() collab.Profile
	ViewRecord(recordID, recordType string)
	UpdateField(recordID, fieldName string, value any, complete bool)
	Edits(recordID string) map[string]collab.FieldEdit
	OnEdit(fn collab.EditListener) collab.Subscription
}

// Config tunes session timing. Zero values fall back to the defaults the
// dashboard uses (500ms debounce, 2s highlight).
type Config struct {
	Debounce     time.Duration
	HighlightTTL time.Duration
}

// ConfigFromEnv builds a Config from the loaded application config.
func ConfigFromEnv() Config {
	return Config{
		Debounce:     config.AppConfig.CollabDebounce,
		HighlightTTL: config.AppConfig.CollabHighlight,
	}
}

// Session binds one open record editor to the coordinator. It keeps typed
// but unflushed values local for zero-latency echo, debounces the outbound
// write per field, merges other users' edits into the form and tracks the
// transient highlight shown when a field just changed under the user.
type Session struct {
	coordinator Coordinator
	self        collab.Profile
	recordID    string
	recordType  string

	debounce     time.Duration
	highlightTTL time.Duration

	mu         sync.Mutex
	form       map[string]string
	pending    map[string]string
	dirty      map[string]bool
	timers     map[string]*time.Timer
	gens       map[string]int
	highlights map[string]time.Time
	closed     bool

	sub collab.Subscription
}

// NewSession opens an editor session over the base record values and
// registers the current user's viewing presence.
func NewSession(coordinator Coordinator, recordID, recordType string, base map[string]string, cfg Config) *Session {
	if cfg.Debounce <= 0 {
		cfg.Debounce = defaultDebounce
	}
	if cfg.HighlightTTL <= 0 {
		cfg.HighlightTTL = defaultHighlightTTL
	}

	s := &Session{
		coordinator:  coordinator,
		self:         coordinator.CurrentUser(),
		recordID:     recordID,
		recordType:   recordType,
		debounce:     cfg.Debounce,
		highlightTTL: cfg.HighlightTTL,
		form:         make(map[string]string, len(base)),
		pending:      make(map[string]string),
		dirty:        make(map[string]bool),
		timers:       make(map[string]*time.Timer),
		gens:         make(map[string]int),
		highlights:   make(map[string]time.Time),
	}
	for k, v := range base {
		s.form[k] = v
	}

	coordinator.ViewRecord(recordID, recordType)
	s.sub = coordinator.OnEdit(s.applyRemote)
	return s
}

// HandleFieldChange records a keystroke: the pending value is visible
// immediately, and a single per-field timer carries the latest value to the
// coordinator once typing pauses. Rescheduling replaces any prior timer for
// the field, never stacks a second one.
func (s *Session) HandleFieldChange(fieldName, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.pending[fieldName] = value
	s.dirty[fieldName] = true
	s.gens[fieldName]++
	gen := s.gens[fieldName]
	if t := s.timers[fieldName]; t != nil {
		t.Stop()
	}
	s.timers[fieldName] = time.AfterFunc(s.debounce, func() {
		s.flushField(fieldName, gen)
	})
}

// Submit writes every field touched during the session once with
// complete=true and reverts the record presence to viewing. That includes
// fields whose debounce timer already fired; their in-progress ledger entry
// needs the completing write so other sessions drop the editing banner.
func (s *Session) Submit() {
	type flush struct {
		field string
		value string
	}

	s.mu.Lock()
	flushes := make([]flush, 0, len(s.dirty))
	for f := range s.dirty {
		v, ok := s.pending[f]
		if !ok {
			v = s.form[f]
		}
		delete(s.pending, f)
		s.form[f] = v
		if t := s.timers[f]; t != nil {
			t.Stop()
			delete(s.timers, f)
		}
		s.gens[f]++ // a timer already in flight must not write again
		delete(s.dirty, f)
		flushes = append(flushes, flush{field: f, value: v})
	}
	s.mu.Unlock()

	for _, fl := range flushes {
		s.coordinator.UpdateField(s.recordID, fl.field, fl.value, true)
	}
	s.coordinator.ViewRecord(s.recordID, s.recordType)
}

// Fields lists every field the session tracks, sorted for stable rendering.
func (s *Session) Fields() []string {
	s.mu.Lock()
	seen := make(map[string]bool, len(s.form)+len(s.pending))
	for f := range s.form {
		seen[f] = true
	}
	for f := range s.pending {
		seen[f] = true
	}
	s.mu.Unlock()

	out := make([]string, 0, len(seen))
	for f := range seen {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// DisplayValue resolves what the input should show: the locally pending
// value wins over the form value.
func (s *Session) DisplayValue(fieldName string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.pending[fieldName]; ok {
		return v
	}
	return s.form[fieldName]
}

// EditedByOther reports whether the field's latest ledger entry belongs to
// another user and is still in progress, along with that user's profile.
func (s *Session) EditedByOther(fieldName string) (collab.Profile, bool) {
	edit, ok := s.coordinator.Edits(s.recordID)[fieldName]
	if !ok || edit.UserID == s.self.ID || edit.Complete {
		return collab.Profile{}, false
	}
	return edit.User, true
}

// Highlighted reports whether a recent remote change marker is active for
// the field.
func (s *Session) Highlighted(fieldName string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.highlights[fieldName]
	return ok
}

// Close detaches the session from the coordinator and stops its timers.
// Pending values are dropped, matching an editor dismissed without saving.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for _, t := range s.timers {
		t.Stop()
	}
	s.timers = make(map[string]*time.Timer)
	s.sub.Close()
}

// flushField is the debounce timer callback: it moves the pending value into
// the form and hands it to the coordinator as an in-progress edit. The gen
// check discards fires that lost to a newer keystroke or to Submit, even
// when the race is between Stop and the lock. The coordinator call happens
// outside the session lock: its listeners fire synchronously and may call
// back in.
func (s *Session) flushField(fieldName string, gen int) {
	s.mu.Lock()
	if s.closed || gen != s.gens[fieldName] {
		s.mu.Unlock()
		return
	}
	value, ok := s.pending[fieldName]
	if !ok {
		s.mu.Unlock()
		return
	}
	delete(s.pending, fieldName)
	delete(s.timers, fieldName)
	s.form[fieldName] = value
	s.mu.Unlock()

	s.coordinator.UpdateField(s.recordID, fieldName, value, false)
}

// applyRemote reconciles a ledger change into the form: another user's edit
// with a different value overwrites the form value and raises a highlight
// marker that clears after the TTL. A newer remote edit resets the marker;
// an older marker's expiry never clears a newer one.
func (s *Session) applyRemote(recordID string, edit collab.FieldEdit) {
	if recordID != s.recordID || edit.UserID == s.self.ID {
		return
	}
	value := valueString(edit.Value)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.form[edit.FieldName] == value {
		return
	}

	s.form[edit.FieldName] = value
	setAt := time.Now()
	s.highlights[edit.FieldName] = setAt
	time.AfterFunc(s.highlightTTL, func() {
		s.mu.Lock()
		if at, ok := s.highlights[edit.FieldName]; ok && at.Equal(setAt) {
			delete(s.highlights, edit.FieldName)
		}
		s.mu.Unlock()
	})
}

func valueString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
