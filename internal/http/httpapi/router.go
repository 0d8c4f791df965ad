package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"imageprompt/internal/http/handlers"
	"imageprompt/internal/infra"
	"imageprompt/internal/middleware"
)

const (
	corsMethods = "POST, OPTIONS"
	corsHeaders = "Content-Type"
)

func NewRouter(app *handlers.App, cfg *infra.Config, logger infra.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if cfg.TrustProxyHeaders {
		r.Use(chimw.RealIP)
	}
	r.Use(
		middleware.Logger(logger),
		chimw.Recoverer,
		middleware.I18N(cfg.DefaultLocale),
	)

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/openapi.json", app.OpenAPIJSON)
	r.Get("/v1/docs", app.OpenAPIDocs)
	r.Get("/api/prompt-models", app.PromptModels)

	// Preflights are not counted against the upload rate limit.
	r.Group(func(r chi.Router) {
		r.Use(middleware.CORS(cfg.CORSAllowedOrigins, corsMethods, corsHeaders))
		r.Options("/api/image-to-prompt", app.Preflight)
		r.With(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute, app.RateLimited)).
			Post("/api/image-to-prompt", app.ImageToPrompt)
	})

	return r
}
