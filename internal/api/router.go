package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/mhutchins/tasknest/internal/api/middleware"
	"github.com/mhutchins/tasknest/internal/api/shared"
)

// RouterDeps bundles everything the router needs.
type RouterDeps struct {
	Auth      *AuthHandler
	Tasks     *TaskHandler
	Tags      *TagHandler
	Reminders *ReminderHandler
	AuthMW    *middleware.AuthMiddleware
}

// NewRouter assembles the full route tree. Everything under /api except the
// auth endpoints requires a valid bearer token.
func NewRouter(deps RouterDeps) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.TraceID)

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		shared.RespondWithJSON(w, req, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", deps.Auth.Register)
			r.Post("/login", deps.Auth.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(deps.AuthMW.Authenticate)

			r.Route("/tasks", func(r chi.Router) {
				r.Post("/", deps.Tasks.Create)
				r.Get("/", deps.Tasks.List)
				r.Get("/stats", deps.Tasks.Stats)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", deps.Tasks.Get)
					r.Patch("/", deps.Tasks.Update)
					r.Delete("/", deps.Tasks.Delete)
					r.Post("/complete", deps.Tasks.ToggleComplete)
				})
			})

			r.Route("/tags", func(r chi.Router) {
				r.Post("/", deps.Tags.Create)
				r.Get("/", deps.Tags.List)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", deps.Tags.Get)
					r.Patch("/", deps.Tags.Update)
					r.Delete("/", deps.Tags.Delete)
				})
			})

			r.Route("/reminders", func(r chi.Router) {
				r.Get("/", deps.Reminders.List)
				r.Get("/due", deps.Reminders.Due)
				r.Get("/unread-count", deps.Reminders.UnreadCount)
				r.Post("/read-all", deps.Reminders.MarkAllRead)
				r.Route("/{id}", func(r chi.Router) {
					r.Post("/read", deps.Reminders.MarkRead)
					r.Delete("/", deps.Reminders.Delete)
				})
			})
		})
	})

	return r
}
