package collab

import (
	"net/http"

	"nexussync/internal/errors"

	"github.com/gin-gonic/gin"
)

// Handler exposes coordinator snapshots and intents over HTTP.
type Handler struct {
	coordinator *Coordinator
}

func NewHandler(coordinator *Coordinator) *Handler {
	return &Handler{coordinator: coordinator}
}

// ShowPresence returns who currently has a record open.
func (h *Handler) ShowPresence(c *gin.Context) {
	recordID := c.Param("id")
	c.JSON(http.StatusOK, gin.H{
		"record_id":    recordID,
		"active_users": h.coordinator.ActiveUsers(recordID),
	})
}

// ShowEdits returns the latest known edit per field of a record.
func (h *Handler) ShowEdits(c *gin.Context) {
	recordID := c.Param("id")
	c.JSON(http.StatusOK, gin.H{
		"record_id": recordID,
		"edits":     h.coordinator.Edits(recordID),
	})
}

// FormViewRecord carries the record type tag of a view intent.
type FormViewRecord struct {
	RecordType string `json:"record_type"`
}

// ViewRecord registers the current user as viewing a record.
func (h *Handler) ViewRecord(c *gin.Context) {
	var form FormViewRecord
	_ = c.ShouldBindJSON(&form) // record type is optional metadata
	h.coordinator.ViewRecord(c.Param("id"), form.RecordType)
	c.JSON(http.StatusOK, gin.H{"message": "Presence registered"})
}

// FormUpdateField carries a field edit intent.
type FormUpdateField struct {
	FieldName string `json:"field_name" binding:"required"`
	Value     any    `json:"value"`
	Complete  bool   `json:"complete"`
}

// UpdateField records a field edit intent for the current user.
func (h *Handler) UpdateField(c *gin.Context) {
	var form FormUpdateField
	if err := c.ShouldBindJSON(&form); err != nil {
		errors.HandleError(c, errors.BadRequest("Invalid input", err))
		return
	}
	h.coordinator.UpdateField(c.Param("id"), form.FieldName, form.Value, form.Complete)
	c.JSON(http.StatusOK, gin.H{"edits": h.coordinator.Edits(c.Param("id"))})
}

// Follow opts into notifications for a record.
func (h *Handler) Follow(c *gin.Context) {
	h.coordinator.Follow(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"followed": h.coordinator.Followed()})
}

// Unfollow removes a record from the followed set.
func (h *Handler) Unfollow(c *gin.Context) {
	h.coordinator.Unfollow(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"followed": h.coordinator.Followed()})
}

// ListFollowed returns the records the current user follows.
func (h *Handler) ListFollowed(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"followed": h.coordinator.Followed()})
}

// ListNotifications returns the activity feed, newest first.
func (h *Handler) ListNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"notifications": h.coordinator.Notifications()})
}

// ShowStatus reports the channel connection state.
func (h *Handler) ShowStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       h.coordinator.Status(),
		"current_user": h.coordinator.CurrentUser(),
	})
}

// FormSimulateEdit carries a demo edit injection.
type FormSimulateEdit struct {
	UserID    string `json:"user_id" binding:"required"`
	RecordID  string `json:"record_id" binding:"required"`
	FieldName string `json:"field_name" binding:"required"`
	Value     any    `json:"value"`
}

// SimulateEdit injects a remote edit without a live transport. Demo only.
func (h *Handler) SimulateEdit(c *gin.Context) {
	var form FormSimulateEdit
	if err := c.ShouldBindJSON(&form); err != nil {
		errors.HandleError(c, errors.BadRequest("Invalid input", err))
		return
	}
	h.coordinator.SimulateRemoteEdit(form.UserID, form.RecordID, form.FieldName, form.Value)
	c.JSON(http.StatusOK, gin.H{"edits": h.coordinator.Edits(form.RecordID)})
}
