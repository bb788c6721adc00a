package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/scalesmith/internal/scaleservice"
	"github.com/starford/scalesmith/internal/sse"
)

// NewRouter creates a chi router with all API routes mounted.
// auth, if non-nil, guards every route (see AuthMiddleware and JWTMiddleware).
// broker, if non-nil, receives change events and is mounted at GET /events
// behind the same auth.
func NewRouter(svc *scaleservice.Service, auth func(http.Handler) http.Handler, broker *sse.Broker) chi.Router {
	h := NewHandler(svc, broker)

	r := chi.NewRouter()
	if auth != nil {
		r.Use(auth)
	}

	// Scale families.
	r.Get("/scales", h.ListScales)
	r.Post("/scales/reset", h.ResetScales)
	r.Get("/scales/{name}", h.GetScale)
	r.Put("/scales/{name}", h.PutScale)
	r.Delete("/scales/{name}", h.DeleteScale)

	// Chords of a scale.
	r.Get("/scales/{name}/chart", h.Chart)
	r.Get("/scales/{name}/degrees/{degree}", h.Degree)
	r.Get("/scales/{name}/midi", h.MIDI)

	// Catalog, search and identification.
	r.Get("/chords", h.Catalog)
	r.Get("/search", h.Search)
	r.Post("/identify", h.Identify)

	if broker != nil {
		r.Get("/events", broker.ServeHTTP)
	}

	return r
}
