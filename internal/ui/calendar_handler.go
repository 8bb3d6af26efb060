package ui

import (
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"gitea.jw6.us/james/campusdesk/internal/http/errors"
	"gitea.jw6.us/james/campusdesk/internal/submit"
	"gitea.jw6.us/james/campusdesk/internal/ui/utils"
)

// DeleteEvent removes a calendar event. The event list reloads afterwards
// whether or not the delete succeeded.
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	rawID := chi.URLParam(r, "id")
	id, err := url.PathUnescape(rawID)
	if err != nil || id == "" {
		id = rawID
	}
	if id == "" {
		errors.BadRequestError(w, r, nil, "invalid event id")
		return
	}

	out := h.submitter.DeleteEvent(r.Context(), id, h.panelFor(r))
	h.report(w, r, out, string(submit.KindEvent), "/panel#events")
}

// EventsICS serves the cached events as an iCalendar feed.
func (h *Handler) EventsICS(w http.ResponseWriter, r *http.Request) {
	p := h.panelFor(r)
	if err := p.Mount(r.Context()); err != nil {
		errors.LogWarn(r, "failed to load events", err)
	}

	events := p.Events()
	// DTSTAMP changes on every request, so the tag covers the events only.
	etag := `"` + utils.GenerateETag(utils.BuildCalendar(events, time.Time{})) + `"`
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="events.ics"`)
	w.Header().Set("ETag", etag)
	if _, err := w.Write([]byte(utils.BuildCalendar(events, h.now()))); err != nil {
		errors.LogError(r, "failed to write calendar", err)
	}
}
