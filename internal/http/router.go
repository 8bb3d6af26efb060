package httpserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"gitea.jw6.us/james/campusdesk/internal/auth"
	"gitea.jw6.us/james/campusdesk/internal/config"
	"gitea.jw6.us/james/campusdesk/internal/http/csrf"
	"gitea.jw6.us/james/campusdesk/internal/http/ratelimit"
	"gitea.jw6.us/james/campusdesk/internal/metrics"
	"gitea.jw6.us/james/campusdesk/internal/ui"
)

// NewRouter wires all HTTP routes of the console.
func NewRouter(cfg *config.Config, authService *auth.Service, uiHandler *ui.Handler) http.Handler {
	r := chi.NewRouter()

	// Login: 5 requests per second, burst of 10
	loginRateLimiter := ratelimit.NewIPRateLimiter(rate.Limit(5), 10, 10*time.Minute, cfg.TrustedProxies)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if cfg.MaxUploadBytes > 0 {
		r.Use(middleware.RequestSize(cfg.MaxUploadBytes))
	}
	r.Use(overrideMethod)
	r.Use(metrics.Middleware())

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Nothing local to check; the backend is probed per request.
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if cfg.PrometheusEnabled {
		r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			metrics.Handler().ServeHTTP(w, r)
		})
	}

	r.Group(func(r chi.Router) {
		r.Use(loginRateLimiter.Middleware())
		r.Use(csrf.Middleware(cfg))
		r.Get(auth.LoginPath, uiHandler.LoginPage)
		r.Post(auth.LoginPath, uiHandler.Login)
	})

	r.With(authService.RequireSession, csrf.Middleware(cfg)).Post("/logout", uiHandler.Logout)

	r.Group(func(r chi.Router) {
		r.Use(authService.RequireSession)
		r.Use(csrf.Middleware(cfg))

		r.Get("/", uiHandler.Root)
		r.Get("/panel", uiHandler.Panel)
		r.Post("/panel/forms/{view}", uiHandler.SubmitForm)
		r.Post("/panel/gallery/media", uiHandler.SwitchMedia)

		r.Delete("/panel/events/{id}", uiHandler.DeleteEvent)
		r.Post("/panel/events/{id}/delete", uiHandler.DeleteEvent) // HTML form fallback
		r.Get("/panel/events.ics", uiHandler.EventsICS)

		r.Get("/panel/leads", uiHandler.Leads)
		r.Get("/panel/leads/search", uiHandler.SearchLeads)
		r.Get("/panel/leads/export", uiHandler.ExportCSV)
		r.Get("/panel/leads/export.vcf", uiHandler.ExportVCF)

		r.Get("/upload", uiHandler.UploadPage)
		r.Post("/upload", uiHandler.UploadResults)
	})

	r.NotFound(uiHandler.NotFound)

	return r
}

// overrideMethod lets plain HTML forms issue DELETE through a _method field.
// Multipart bodies are left alone so uploads are parsed once, by the handler.
func overrideMethod(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			method := strings.TrimSpace(r.URL.Query().Get("_method"))
			if method == "" && strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
				method = strings.TrimSpace(r.PostFormValue("_method"))
			}
			switch strings.ToUpper(method) {
			case http.MethodPut, http.MethodDelete:
				r.Method = strings.ToUpper(method)
			}
		}
		next.ServeHTTP(w, r)
	})
}
