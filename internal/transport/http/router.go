// Package http assembles the application router.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vowline/internal/access"
	clienthandler "vowline/internal/client/handler"
	identityhandler "vowline/internal/identity/handler"
	integrationshandler "vowline/internal/integrations/handler"
	notehandler "vowline/internal/note/handler"
	notificationhandler "vowline/internal/notification/handler"
	"vowline/internal/platform/metrics"
	"vowline/internal/platform/middleware"
	taskhandler "vowline/internal/task/handler"
	tenanthandler "vowline/internal/tenant/handler"
)

// Deps carries everything the router mounts.
type Deps struct {
	Logger       *slog.Logger
	Metrics      *metrics.Metrics
	Resolver     middleware.SessionResolver
	Identity     *identityhandler.Handler
	Tenant       *tenanthandler.Handler
	Client       *clienthandler.Handler
	Task         *taskhandler.Handler
	Note         *notehandler.Handler
	Notification *notificationhandler.Handler
	Integrations *integrationshandler.Handler
	LogoDir      string
	Timeout      time.Duration
}

// New builds the router: platform middleware, public auth routes, the
// authenticated /api surface, and the SUPERADMIN /api/admin subtree.
func New(deps Deps) http.Handler {
	if deps.Timeout <= 0 {
		deps.Timeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Timeout(deps.Timeout))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Latency)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	if deps.LogoDir != "" {
		fs := http.StripPrefix("/static/logos/", http.FileServer(http.Dir(deps.LogoDir)))
		r.Get("/static/logos/*", fs.ServeHTTP)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)

		deps.Identity.RegisterPublic(r)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(deps.Resolver, deps.Logger))

			deps.Identity.Register(r)
			deps.Tenant.Register(r)
			deps.Client.Register(r)
			deps.Task.Register(r)
			deps.Note.Register(r)
			deps.Notification.Register(r)
			deps.Integrations.Register(r)

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireRole(access.RoleSuperadmin))
				deps.Tenant.RegisterAdmin(r)
				deps.Identity.RegisterAdmin(r)
			})
		})
	})

	return r
}
