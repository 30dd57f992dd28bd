package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mhutchins/tasknest/internal/api/shared"
	"github.com/mhutchins/tasknest/internal/service"
	"github.com/mhutchins/tasknest/internal/store"
)

// ReminderHandler handles reminder-related HTTP requests
type ReminderHandler struct {
	reminders *service.ReminderService
	logger    *slog.Logger
}

// NewReminderHandler creates a new ReminderHandler
func NewReminderHandler(reminders *service.ReminderService, log *slog.Logger) *ReminderHandler {
	if reminders == nil {
		panic("reminder service cannot be nil for ReminderHandler")
	}
	if log == nil {
		log = slog.Default()
	}

	return &ReminderHandler{
		reminders: reminders,
		logger:    log.With(slog.String("component", "reminder_handler")),
	}
}

// List handles GET /reminders requests. Supports status (all, pending, sent,
// unread) and limit query parameters.
func (h *ReminderHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid query parameter: limit")
			return
		}
		limit = parsed
	}

	status := store.ReminderStatus(r.URL.Query().Get("status"))

	reminders, err := h.reminders.List(r.Context(), userID, status, limit)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ReminderListResponse{
		Reminders: reminders,
		Count:     len(reminders),
	})
}

// Due handles GET /reminders/due requests. Listing due reminders marks any
// still-unsent ones as sent, so a poller never double-notifies with the
// sweeper.
func (h *ReminderHandler) Due(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	due, err := h.reminders.Due(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ReminderListResponse{
		Reminders: due,
		Count:     len(due),
	})
}

// MarkRead handles POST /reminders/{id}/read requests.
func (h *ReminderHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.reminders.MarkRead(r.Context(), userID, id); err != nil {
		respondServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// MarkAllRead handles POST /reminders/read-all requests.
func (h *ReminderHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	count, err := h.reminders.MarkAllRead(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MarkAllReadResponse{MarkedRead: count})
}

// UnreadCount handles GET /reminders/unread-count requests.
func (h *ReminderHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	count, err := h.reminders.CountUnread(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, UnreadCountResponse{Unread: count})
}

// Delete handles DELETE /reminders/{id} requests.
func (h *ReminderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.reminders.Delete(r.Context(), userID, id); err != nil {
		respondServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
