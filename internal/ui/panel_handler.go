package ui

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"gitea.jw6.us/james/campusdesk/internal/forms"
	"gitea.jw6.us/james/campusdesk/internal/http/errors"
	"gitea.jw6.us/james/campusdesk/internal/panel"
	"gitea.jw6.us/james/campusdesk/internal/submit"
	"gitea.jw6.us/james/campusdesk/internal/ui/utils"
)

// multipartMemory is how much of a multipart body is kept in memory before
// spilling to temporary files. The body size itself is capped by the router.
const multipartMemory = 8 << 20

// panelViews are the forms shown on the dashboard, in page order.
var panelViews = []submit.Kind{
	submit.KindAnnouncement,
	submit.KindGallery,
	submit.KindEvent,
	submit.KindGeneral,
	submit.KindDocument,
	submit.KindAcademic,
	submit.KindResultX,
	submit.KindResultXII,
	submit.KindStaff,
	submit.KindInfra,
	submit.KindResults,
}

// formState is what a form re-renders with: the staged values and the name of
// any staged file.
type formState struct {
	Values   map[string]string
	FileName string
	Media    string
}

func (f formState) Value(name string) string { return f.Values[name] }

func (f formState) Video() bool { return f.Media == string(forms.MediaVideo) }

func stateOf(d *forms.Draft) formState {
	snap := d.Snapshot()
	st := formState{Values: snap.Fields, Media: string(snap.Media)}
	if snap.File != nil {
		st.FileName = snap.File.Name
	}
	return st
}

type eventView struct {
	ID          string
	Title       string
	Description string
	Date        string
}

// Panel renders the dashboard tab. Events load on the first visit; a failed
// load keeps the previous list and is only logged.
func (h *Handler) Panel(w http.ResponseWriter, r *http.Request) {
	p := h.panelFor(r)
	if err := p.ActivateDashboard(r.Context()); err != nil {
		errors.LogWarn(r, "failed to load events", err)
	}

	states := make(map[string]formState, len(panelViews))
	for _, kind := range panelViews {
		states[string(kind)] = stateOf(h.draftFor(r, string(kind)))
	}

	var events []eventView
	for _, ev := range p.Events() {
		events = append(events, eventView{
			ID:          ev.ID,
			Title:       ev.Title,
			Description: ev.Description,
			Date:        utils.FormatEventDate(ev.Date, h.location),
		})
	}

	data := h.withFlash(r, map[string]any{
		"Title":  "Admin Panel",
		"Tab":    string(panel.TabDashboard),
		"Forms":  states,
		"Events": events,
	})
	h.render(w, r, "panel.html", data)
}

// SubmitForm stages the posted fields and file into the form's draft and
// submits it. The browser returns to the form either way; on failure the form
// re-renders from the retained draft.
func (h *Handler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	view := chi.URLParam(r, "view")
	kind, ok := submit.ParseKind(view)
	if !ok {
		h.NotFound(w, r)
		return
	}
	h.submitForm(w, r, view, kind, "/panel#form-"+view)
}

// SwitchMedia changes the gallery form between photo and video. A staged
// file never carries over to the other variant.
func (h *Handler) SwitchMedia(w http.ResponseWriter, r *http.Request) {
	view := string(submit.KindGallery)
	draft := h.draftFor(r, view)
	if err := h.stageFields(r, submit.KindGallery, draft); err != nil {
		errors.LogWarn(r, "failed to read gallery form", err)
	}
	if media := r.PostFormValue("media"); media != "" {
		draft.SetMedia(forms.ParseMediaType(media))
	}
	h.redirect(w, r, "/panel#form-"+view, map[string]string{"form": view})
}

func (h *Handler) submitForm(w http.ResponseWriter, r *http.Request, view string, kind submit.Kind, back string) {
	draft := h.draftFor(r, view)
	if err := h.stage(r, kind, draft); err != nil {
		errors.LogWarn(r, "failed to read form", err)
		h.redirect(w, r, back, map[string]string{"error": "Could not read the form", "form": view})
		return
	}

	out := h.submitter.Submit(r.Context(), kind, draft, h.panelFor(r))
	h.report(w, r, out, view, back)
}

// report logs an outcome and redirects with its notice.
func (h *Handler) report(w http.ResponseWriter, r *http.Request, out submit.Outcome, view, back string) {
	if out.Status == submit.StatusFailed {
		errors.LogWarn(r, fmt.Sprintf("%s submission failed", out.Kind), out.Err)
	}
	if out.RefreshErr != nil {
		errors.LogWarn(r, "failed to reload events", out.RefreshErr)
	}

	params := map[string]string{"form": view}
	if out.OK() {
		params["status"] = out.Message
	} else {
		params["error"] = out.Message
	}
	h.redirect(w, r, back, params)
}

// stage copies the posted fields and an uploaded "file" part into draft.
func (h *Handler) stage(r *http.Request, kind submit.Kind, draft *forms.Draft) error {
	if err := h.stageFields(r, kind, draft); err != nil {
		return err
	}
	return stageFile(r, draft)
}

// stageFields copies the posted values of kind's fields and the gallery media
// choice into draft. Fields absent from the post keep their staged value.
func (h *Handler) stageFields(r *http.Request, kind submit.Kind, draft *forms.Draft) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			return fmt.Errorf("parse multipart form: %w", err)
		}
	} else if err := r.ParseForm(); err != nil {
		return fmt.Errorf("parse form: %w", err)
	}

	if kind == submit.KindGallery {
		if media := r.PostFormValue("type"); media != "" {
			draft.SetMedia(forms.ParseMediaType(media))
		}
	}
	for _, name := range submit.Fields(kind) {
		if vals, ok := r.PostForm[name]; ok && len(vals) > 0 {
			draft.SetField(name, vals[0])
		}
	}
	return nil
}

// stageFile replaces the staged file with a newly chosen one. Without a new
// file the staged one is kept unless clear_file is set.
func stageFile(r *http.Request, draft *forms.Draft) error {
	if r.PostFormValue("clear_file") == "1" {
		draft.SetFile(nil)
	}
	if r.MultipartForm == nil {
		return nil
	}
	headers := r.MultipartForm.File["file"]
	if len(headers) == 0 || headers[0].Size == 0 {
		return nil
	}
	fh := headers[0]
	f, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("read upload: %w", err)
	}
	draft.SetFile(&forms.File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	})
	return nil
}
