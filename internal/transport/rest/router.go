package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/heartmarshall/recobot/internal/transport/middleware"
)

type tokenValidator interface {
	ValidateAdminToken(token string) (string, error)
}

// RouterDeps are the handlers and policies mounted by NewRouter.
// Admin and Webhook are optional.
type RouterDeps struct {
	Health *HealthHandler

	Admin              *AdminHandler
	Tokens             tokenValidator
	RateLimiter        *middleware.RateLimiter
	RateLimitPerMinute int

	Webhook     http.Handler
	WebhookPath string

	Logger *slog.Logger
}

// NewRouter builds the HTTP routing tree.
func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.Recovery(d.Logger),
		middleware.Logger(d.Logger),
		middleware.Metrics,
	)

	r.Get("/health", d.Health.Health)
	r.Get("/health/live", d.Health.Live)
	r.Get("/health/ready", d.Health.Ready)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	if d.Webhook != nil {
		r.Method(http.MethodPost, d.WebhookPath, d.Webhook)
	}

	if d.Admin != nil {
		r.Route("/admin", func(r chi.Router) {
			r.Use(
				d.RateLimiter.Limit(d.RateLimitPerMinute),
				middleware.Auth(d.Tokens, d.Logger),
			)
			r.Post("/posts", d.Admin.RegisterPost)
			r.Post("/posts/ingest", d.Admin.IngestPost)
			r.Get("/posts/{messageID}", d.Admin.GetPost)
			r.Head("/posts/{messageID}", d.Admin.HeadPost)
			r.Get("/stats", d.Admin.Stats)
			r.Get("/recommendation/{category}", d.Admin.Recommend)
		})
	}

	return r
}
