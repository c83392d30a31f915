package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/DoyleJ11/boxy-commentary/internal/logging"
	"github.com/DoyleJ11/boxy-commentary/internal/ws"
)

func SetupRoutes(d Deps) http.Handler {
	d.Log = logging.OrNop(d.Log)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", Healthz)
	r.Get("/commentary", GetCommentary(d))
	r.Get("/ws", ws.Handler(d.Broadcaster, d.Log, d.Origins))

	// State publisher
	r.With(limitPublishes(d.Limiter)).Put("/state", PutState(d))
	r.Delete("/state", DeleteState(d))

	r.Route("/widget", func(r chi.Router) {
		r.Post("/start", StartWidget(d))
		r.Post("/stop", StopWidget(d))
	})
	return r
}
