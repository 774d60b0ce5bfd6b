package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"

	"copywriter/internal/middleware"
)

// PageHandler — HTML-форма.
type PageHandler interface {
	Form(w http.ResponseWriter, r *http.Request)
	Submit(w http.ResponseWriter, r *http.Request)
}

// APIHandler — JSON-вариант той же формы.
type APIHandler interface {
	Generate(w http.ResponseWriter, r *http.Request)
	Options(w http.ResponseWriter, r *http.Request)
}

type RouterDeps struct {
	Logger  *slog.Logger
	Pages   PageHandler
	API     APIHandler
	Metrics http.Handler
	// CORSOrigins включает CORS для /api. Пустой список — CORS выключен.
	CORSOrigins []string
}

// NewRouter собирает chi-роутер с общими middleware.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recover(deps.Logger))
	r.Use(middleware.Logging(deps.Logger))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	r.Get("/", deps.Pages.Form)
	r.Post("/generate", deps.Pages.Submit)

	r.Route("/api/v1", func(r chi.Router) {
		if len(deps.CORSOrigins) > 0 {
			r.Use(cors.New(cors.Options{
				AllowedOrigins: deps.CORSOrigins,
				AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
				AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
				ExposedHeaders: []string{"X-Request-ID"},
			}).Handler)
		}
		r.Post("/generate", deps.API.Generate)
		r.Get("/options", deps.API.Options)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteJSONError(w, http.StatusNotFound, "not_found", "route not found")
	})

	return r
}
