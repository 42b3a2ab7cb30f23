package collab

import "time"

// FieldEdit is the latest known edit of a single record field.
type FieldEdit struct {
	UserID    string    `json:"userId"`
	User      Profile   `json:"user"`
	FieldName string    `json:"fieldName"`
	Value     any       `json:"value"`
	Timestamp time.Time `json:"timestamp"`
	Complete  bool      `json:"complete"`
}

// EditLedger stores the most recent edit per (record, field). Writes are
// last-writer-wins by arrival order: no merge, no timestamp comparison.
// The design assumes a trusted, low-concurrency internal tool; ordering
// across sessions is the transport's problem. Like PresenceRegistry, the
// ledger is owned and locked by the Coordinator.
type EditLedger struct {
	records map[string]map[string]FieldEdit
}

func NewEditLedger() *EditLedger {
	return &EditLedger{records: make(map[string]map[string]FieldEdit)}
}

// Record unconditionally overwrites the stored edit for (recordID, field).
func (l *EditLedger) Record(recordID string, edit FieldEdit) {
	fields := l.records[recordID]
	if fields == nil {
		fields = make(map[string]FieldEdit)
		l.records[recordID] = fields
	}
	fields[edit.FieldName] = edit
}

// Get returns a copy of the field edits for a record, empty when unknown.
func (l *EditLedger) Get(recordID string) map[string]FieldEdit {
	out := make(map[string]FieldEdit, len(l.records[recordID]))
	for name, e := range l.records[recordID] {
		out[name] = e
	}
	return out
}
