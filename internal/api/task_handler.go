// Package api provides HTTP handlers for the API.
package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mhutchins/tasknest/internal/api/shared"
	"github.com/mhutchins/tasknest/internal/domain"
	"github.com/mhutchins/tasknest/internal/platform/logger"
	"github.com/mhutchins/tasknest/internal/service"
	"github.com/mhutchins/tasknest/internal/store"
)

// TaskHandler handles task-related HTTP requests
type TaskHandler struct {
	tasks  *service.TaskService
	logger *slog.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(tasks *service.TaskService, log *slog.Logger) *TaskHandler {
	if tasks == nil {
		panic("task service cannot be nil for TaskHandler")
	}
	if log == nil {
		log = slog.Default()
	}

	return &TaskHandler{
		tasks:  tasks,
		logger: log.With(slog.String("component", "task_handler")),
	}
}

// requireUserID extracts the authenticated user ID set by the auth
// middleware, writing a 401 if it is missing.
func requireUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return uuid.Nil, false
	}
	return userID, true
}

// pathID parses the {id} route parameter, writing a 400 on garbage.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid ID")
		return 0, false
	}
	return id, true
}

// respondServiceError translates a service failure into a sanitized response.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
}

// Create handles POST /tasks requests.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	task, err := h.tasks.Create(r.Context(), userID, service.CreateTaskInput{
		Title:              req.Title,
		Description:        req.Description,
		Priority:           domain.Priority(req.Priority),
		DueDate:            req.DueDate,
		ReminderMinutes:    req.ReminderMinutes,
		IsRecurring:        req.IsRecurring,
		RecurrencePattern:  domain.RecurrencePattern(req.RecurrencePattern),
		RecurrenceInterval: req.RecurrenceInterval,
		RecurrenceEndDate:  req.RecurrenceEndDate,
		TagIDs:             req.TagIDs,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, task)
}

// Get handles GET /tasks/{id} requests.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	task, err := h.tasks.Get(r.Context(), userID, id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// List handles GET /tasks requests. Filters arrive as query parameters:
// status, priority, tag_ids (comma separated), due_from, due_to (RFC 3339),
// search, sort_by, order.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	filter, sort, err := parseListQuery(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	tasks, err := h.tasks.List(r.Context(), userID, filter, sort)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TaskListResponse{
		Tasks: tasks,
		Count: len(tasks),
	})
}

// Update handles PATCH /tasks/{id} requests.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	input := service.UpdateTaskInput{
		Title:              req.Title,
		Description:        req.Description,
		DueDate:            req.DueDate,
		ClearDueDate:       req.ClearDueDate,
		ReminderMinutes:    req.ReminderMinutes,
		ClearReminder:      req.ClearReminder,
		IsRecurring:        req.IsRecurring,
		RecurrenceInterval: req.RecurrenceInterval,
		RecurrenceEndDate:  req.RecurrenceEndDate,
		ClearRecurrenceEnd: req.ClearRecurrenceEnd,
		TagIDs:             req.TagIDs,
	}
	if req.Priority != nil {
		p := domain.Priority(*req.Priority)
		input.Priority = &p
	}
	if req.RecurrencePattern != nil {
		rp := domain.RecurrencePattern(*req.RecurrencePattern)
		input.RecurrencePattern = &rp
	}

	task, err := h.tasks.Update(r.Context(), userID, id, input)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// ToggleComplete handles POST /tasks/{id}/complete requests. The endpoint
// takes no body; the server flips the stored completion state.
func (h *TaskHandler) ToggleComplete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	task, err := h.tasks.ToggleComplete(r.Context(), userID, id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	log := logger.FromContextOrDefault(r.Context(), h.logger)
	log.Debug("toggled task completion",
		slog.Int64("task_id", id),
		slog.Bool("completed", task.Completed))

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// Delete handles DELETE /tasks/{id} requests.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.tasks.Delete(r.Context(), userID, id); err != nil {
		respondServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Stats handles GET /tasks/stats requests.
func (h *TaskHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	stats, err := h.tasks.Stats(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}

// parseListQuery builds the store filter and sort from query parameters.
func parseListQuery(r *http.Request) (store.TaskFilter, store.TaskSort, error) {
	q := r.URL.Query()

	filter := store.TaskFilter{
		Status: store.TaskStatus(q.Get("status")),
		Search: q.Get("search"),
	}

	if raw := q.Get("priority"); raw != "" {
		p := domain.Priority(raw)
		filter.Priority = &p
	}

	if raw := q.Get("tag_ids"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil {
				return filter, store.TaskSort{}, errInvalidQuery("tag_ids")
			}
			filter.TagIDs = append(filter.TagIDs, id)
		}
	}

	for name, dst := range map[string]**time.Time{
		"due_from": &filter.DueFrom,
		"due_to":   &filter.DueTo,
	} {
		if raw := q.Get(name); raw != "" {
			ts, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				return filter, store.TaskSort{}, errInvalidQuery(name)
			}
			*dst = &ts
		}
	}

	sort := store.TaskSort{
		Field: store.SortField(q.Get("sort_by")),
		Order: store.SortOrder(q.Get("order")),
	}

	return filter, sort, nil
}

type queryError string

func errInvalidQuery(param string) error {
	return queryError("Invalid query parameter: " + param)
}

func (e queryError) Error() string { return string(e) }
