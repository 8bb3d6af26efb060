package ui

import (
	"net/http"

	"gitea.jw6.us/james/campusdesk/internal/submit"
)

// uploadView keeps the standalone page's staged sheet apart from the
// dashboard's results form.
const uploadView = "upload"

// UploadPage renders the standalone result spreadsheet upload.
func (h *Handler) UploadPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "upload.html", h.withFlash(r, map[string]any{
		"Title": "Upload Results",
		"Tab":   uploadView,
		"Form":  stateOf(h.draftFor(r, uploadView)),
	}))
}

// UploadResults sends the staged spreadsheet and reports how many results
// the backend replaced.
func (h *Handler) UploadResults(w http.ResponseWriter, r *http.Request) {
	h.submitForm(w, r, uploadView, submit.KindResults, "/upload")
}
