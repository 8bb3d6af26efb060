package ui

import (
	"html/template"
	"net/http"
	"time"

	"gitea.jw6.us/james/campusdesk/internal/auth"
	"gitea.jw6.us/james/campusdesk/internal/config"
	"gitea.jw6.us/james/campusdesk/internal/forms"
	"gitea.jw6.us/james/campusdesk/internal/panel"
	"gitea.jw6.us/james/campusdesk/internal/submit"
	"gitea.jw6.us/james/campusdesk/internal/workspace"
)

// Handler serves server-rendered HTML pages.
type Handler struct {
	cfg         *config.Config
	authService *auth.Service
	submitter   *submit.Submitter
	drafts      *workspace.Registry[*forms.Draft]
	panels      *workspace.Registry[*panel.Panel]
	templates   map[string]*template.Template
	location    *time.Location
	now         func() time.Time
}

// NewHandler wires the page handlers. Per-session drafts and panel state are
// dropped when the session logs out.
func NewHandler(cfg *config.Config, authService *auth.Service, backend panel.Backend, submitter *submit.Submitter) *Handler {
	loc := cfg.DisplayLocation
	if loc == nil {
		loc = time.Local
	}
	h := &Handler{
		cfg:         cfg,
		authService: authService,
		submitter:   submitter,
		drafts: workspace.NewRegistry(cfg.DraftTTL, func(_, _ string) *forms.Draft {
			return forms.NewDraft()
		}),
		panels: workspace.NewRegistry(cfg.DraftTTL, func(_, _ string) *panel.Panel {
			return panel.New(backend)
		}),
		templates: templates,
		location:  loc,
		now:       time.Now,
	}
	authService.OnLogout(func(sessionID string) {
		h.drafts.Drop(sessionID)
		h.panels.Drop(sessionID)
	})
	return h
}

// Root sends the browser to the dashboard; the session guard takes it to
// the login page when needed.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/panel", http.StatusFound)
}

// NotFound renders the catch-all page.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.renderStatus(w, r, http.StatusNotFound, "notfound.html", h.withFlash(r, map[string]any{
		"Title": "Page Not Found",
	}))
}

// panelFor returns the dashboard state of the request's session.
func (h *Handler) panelFor(r *http.Request) *panel.Panel {
	return h.panels.Get(sessionID(r), "panel")
}

// draftFor returns the staged draft of one form for the request's session.
func (h *Handler) draftFor(r *http.Request, view string) *forms.Draft {
	return h.drafts.Get(sessionID(r), view)
}

func sessionID(r *http.Request) string {
	if sess, ok := auth.SessionFromContext(r.Context()); ok {
		return sess.ID
	}
	return ""
}
