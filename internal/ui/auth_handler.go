package ui

import (
	"net/http"

	"gitea.jw6.us/james/campusdesk/internal/auth"
	"gitea.jw6.us/james/campusdesk/internal/http/errors"
)

const loginFailedNotice = "Invalid username or password"

// LoginPage renders the login form. Signed-in browsers go straight to the panel.
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if h.authService.IsAuthenticated(r) {
		http.Redirect(w, r, "/panel", http.StatusFound)
		return
	}
	h.render(w, r, "login.html", h.withFlash(r, map[string]any{
		"Title":     "Admin Login",
		"LoginName": r.URL.Query().Get("username"),
	}))
}

// Login exchanges the submitted credentials for a backend token. Every
// failure shows the same notice.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.redirect(w, r, auth.LoginPath, map[string]string{"error": loginFailedNotice})
		return
	}
	username := r.FormValue("username")

	if _, err := h.authService.Login(r.Context(), w, username, r.FormValue("password")); err != nil {
		errors.LogWarn(r, "login failed", err)
		h.redirect(w, r, auth.LoginPath, map[string]string{
			"error":    loginFailedNotice,
			"username": username,
		})
		return
	}

	errors.LogInfo(r, "login succeeded for "+username)
	http.Redirect(w, r, "/panel", http.StatusFound)
}

// Logout ends the session and forgets its drafts and cached lists.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authService.ClearSession(w, r)
	h.redirect(w, r, auth.LoginPath, map[string]string{"status": "Logged out"})
}
