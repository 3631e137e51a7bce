package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/jaminalder/ultimate-tic-tac-toe/internal/app"
)

// NewServer wires routes and returns an http.Handler.
func NewServer(s *app.Service, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(accessLog(log))
	s.SetRenderer(feedEntry)

	h := &handlers{
		svc:       s,
		tpl:       loadTemplates(),
		log:       log,
		heartbeat: s.Config().HeartbeatInterval,
	}
	r.Get("/", h.index)
	r.Post("/search", h.search)
	r.Get("/events", h.events)
	r.Get("/ws", h.ws)
	r.Route("/api", func(r chi.Router) {
		r.Get("/search", h.apiSearch)
		r.Post("/batch", h.apiBatch)
		r.Get("/reformat", h.apiReformat)
		r.Get("/show", h.apiShow)
	})
	return r
}
