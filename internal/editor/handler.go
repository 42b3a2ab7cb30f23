package editor

import (
	"context"
	"net/http"
	"strconv"
	"sync"

	"nexussync/internal/collab"
	"nexussync/internal/errors"
	"nexussync/internal/record"

	"github.com/gin-gonic/gin"
)

// Manager tracks the open editor sessions of the local user's dashboard,
// one per record.
type Manager struct {
	coordinator Coordinator
	records     record.Service

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(coordinator Coordinator, records record.Service) *Manager {
	return &Manager{
		coordinator: coordinator,
		records:     records,
		sessions:    make(map[string]*Session),
	}
}

// Open starts a session over the record's current values, replacing any
// session already open on that record.
func (m *Manager) Open(ctx context.Context, recordID, recordType string) (*Session, error) {
	base, err := m.baseValues(ctx, recordID, recordType)
	if err != nil {
		return nil, err
	}

	s := NewSession(m.coordinator, recordID, recordType, base, ConfigFromEnv())

	m.mu.Lock()
	if prev := m.sessions[recordID]; prev != nil {
		prev.Close()
	}
	m.sessions[recordID] = s
	m.mu.Unlock()
	return s, nil
}

// Get returns the open session for a record, if any.
func (m *Manager) Get(recordID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[recordID]
	return s, ok
}

// CloseSession closes and forgets the session for a record.
func (m *Manager) CloseSession(recordID string) {
	m.mu.Lock()
	s := m.sessions[recordID]
	delete(m.sessions, recordID)
	m.mu.Unlock()
	if s != nil {
		s.Close()
	}
}

// baseValues loads the editable fields of the record. Customers are the only
// record type with a detail editor on the dashboard; other types open empty.
func (m *Manager) baseValues(ctx context.Context, recordID, recordType string) (map[string]string, error) {
	if recordType != "customer" {
		return nil, nil
	}
	id, err := strconv.ParseUint(recordID, 10, 64)
	if err != nil {
		return nil, errors.BadRequest("Invalid record id", err)
	}
	customer, err := m.records.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		"name":     customer.Name,
		"industry": customer.Industry,
		"status":   customer.Status,
		"email":    customer.Email,
		"phone":    customer.Phone,
		"location": customer.Location,
		"website":  customer.Website,
		"notes":    customer.Notes,
	}, nil
}

// Handler exposes the editor sessions over HTTP for the local dashboard.
type Handler struct {
	manager *Manager
}

func NewHandler(manager *Manager) *Handler {
	return &Handler{manager: manager}
}

// FormOpen carries the record type of an open intent.
type FormOpen struct {
	RecordType string `json:"record_type"`
}

// Open opens (or reopens) an editor session on a record.
func (h *Handler) Open(c *gin.Context) {
	var form FormOpen
	_ = c.ShouldBindJSON(&form)
	if form.RecordType == "" {
		form.RecordType = "customer"
	}

	s, err := h.manager.Open(c.Request.Context(), c.Param("id"), form.RecordType)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fields": h.view(s)})
}

// FormChange carries one keystroke-level field change.
type FormChange struct {
	FieldName string `json:"field_name" binding:"required"`
	Value     string `json:"value"`
}

// Change records a field change; the write to the ledger is debounced.
func (h *Handler) Change(c *gin.Context) {
	s, ok := h.manager.Get(c.Param("id"))
	if !ok {
		errors.HandleError(c, errors.NotFound("No open editor session", nil))
		return
	}

	var form FormChange
	if err := c.ShouldBindJSON(&form); err != nil {
		errors.HandleError(c, errors.BadRequest("Invalid input", err))
		return
	}
	s.HandleFieldChange(form.FieldName, form.Value)
	c.JSON(http.StatusOK, gin.H{"value": s.DisplayValue(form.FieldName)})
}

// Submit flushes every pending field as a completed edit.
func (h *Handler) Submit(c *gin.Context) {
	s, ok := h.manager.Get(c.Param("id"))
	if !ok {
		errors.HandleError(c, errors.NotFound("No open editor session", nil))
		return
	}
	s.Submit()
	c.JSON(http.StatusOK, gin.H{"fields": h.view(s)})
}

// Show returns the current state of each tracked field.
func (h *Handler) Show(c *gin.Context) {
	s, ok := h.manager.Get(c.Param("id"))
	if !ok {
		errors.HandleError(c, errors.NotFound("No open editor session", nil))
		return
	}
	c.JSON(http.StatusOK, gin.H{"fields": h.view(s)})
}

// Close tears down the session; pending values are dropped.
func (h *Handler) Close(c *gin.Context) {
	h.manager.CloseSession(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"message": "Editor closed"})
}

// FieldState is the rendered state of one field in the editor.
type FieldState struct {
	Value       string          `json:"value"`
	Highlighted bool            `json:"highlighted"`
	EditedBy    *collab.Profile `json:"edited_by,omitempty"`
}

func (h *Handler) view(s *Session) map[string]FieldState {
	out := make(map[string]FieldState)
	for _, field := range s.Fields() {
		state := FieldState{
			Value:       s.DisplayValue(field),
			Highlighted: s.Highlighted(field),
		}
		if user, ok := s.EditedByOther(field); ok {
			state.EditedBy = &user
		}
		out[field] = state
	}
	return out
}
