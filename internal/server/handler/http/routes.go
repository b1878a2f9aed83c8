package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/jabbercracky/jabbercracky-client/internal/middleware"
)

// NewRouter constructs the HTTP handler serving the game API.
//
// Routes:
//
//	GET  /api/game/hashlist       → game.ListHashLists
//	GET  /api/game/hashlist/{id}  → game.GetHashList
//	POST /api/game/submit/{id}    → game.Submit (multipart/form-data only)
//
// Every /api/game route requires a bearer token resolved by auth.
func NewRouter(
	game *GameHandler,
	auth middleware.Authenticator,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.WithRequestLogging(logger))

	r.Route("/api/game", func(r chi.Router) {
		r.Use(middleware.BearerAuth(auth))

		r.Get("/hashlist", game.ListHashLists)
		r.Get("/hashlist/{id}", game.GetHashList)
		r.With(chiMiddleware.AllowContentType("multipart/form-data")).
			Post("/submit/{id}", game.Submit)
	})

	return r
}
