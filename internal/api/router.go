package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Yuki33825/x-music-bar/internal/channel"
	"github.com/Yuki33825/x-music-bar/internal/config"
	"github.com/Yuki33825/x-music-bar/internal/relay"
)

func NewRouter(rel *relay.Relay, ch channel.Client, cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(RateLimitMiddleware(cfg.Server.RateLimitPerMinute))

	vector := NewVectorHandler(ch, rel, cfg)
	recipes := NewRecipeHandler(rel)
	stream := NewStreamHandler(rel, logger)
	admin := NewAdminHandler(rel)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/vector", vector.Write)
		r.Get("/vector", vector.Get)

		r.Get("/recipe", recipes.Compute)
		r.Get("/recipe/explain", recipes.Explain)
		r.Get("/ingredients", recipes.Ingredients)

		r.Get("/stream", stream.Stream)

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.Server.AdminToken))
			r.Get("/stats", admin.Stats)
			r.Get("/params", admin.Params)
			r.Put("/params", admin.UpdateParams)
		})
	})

	return r
}

func NewMetricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}
