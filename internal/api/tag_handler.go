package api

import (
	"log/slog"
	"net/http"

	"github.com/mhutchins/tasknest/internal/api/shared"
	"github.com/mhutchins/tasknest/internal/service"
)

// TagHandler handles tag-related HTTP requests
type TagHandler struct {
	tags   *service.TagService
	logger *slog.Logger
}

// NewTagHandler creates a new TagHandler
func NewTagHandler(tags *service.TagService, log *slog.Logger) *TagHandler {
	if tags == nil {
		panic("tag service cannot be nil for TagHandler")
	}
	if log == nil {
		log = slog.Default()
	}

	return &TagHandler{
		tags:   tags,
		logger: log.With(slog.String("component", "tag_handler")),
	}
}

// Create handles POST /tags requests.
func (h *TagHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req CreateTagRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	tag, err := h.tags.Create(r.Context(), userID, req.Name, req.Color)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, tag)
}

// Get handles GET /tags/{id} requests.
func (h *TagHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	tag, err := h.tags.Get(r.Context(), userID, id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tag)
}

// List handles GET /tags requests.
func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	tags, err := h.tags.List(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TagListResponse{Tags: tags})
}

// Update handles PATCH /tags/{id} requests.
func (h *TagHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req UpdateTagRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	tag, err := h.tags.Update(r.Context(), userID, id, req.Name, req.Color)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tag)
}

// Delete handles DELETE /tags/{id} requests.
func (h *TagHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.tags.Delete(r.Context(), userID, id); err != nil {
		respondServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
