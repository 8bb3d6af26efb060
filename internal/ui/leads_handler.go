package ui

import (
	"bytes"
	"net/http"

	"gitea.jw6.us/james/campusdesk/internal/api"
	"gitea.jw6.us/james/campusdesk/internal/http/errors"
	"gitea.jw6.us/james/campusdesk/internal/leads"
	"gitea.jw6.us/james/campusdesk/internal/panel"
	"gitea.jw6.us/james/campusdesk/internal/ui/utils"
)

const leadsFailedNotice = "Failed to load leads"

type leadRow struct {
	Number  int
	Name    string
	Phone   string
	Village string
	City    string
	Status  string
	Date    string
}

// Leads activates the leads tab, which re-fetches the list every time.
func (h *Handler) Leads(w http.ResponseWriter, r *http.Request) {
	p := h.panelFor(r)
	data := map[string]any{}
	if err := p.ActivateLeads(r.Context()); err != nil {
		errors.LogWarn(r, "failed to load leads", err)
		data["FlashError"] = leadsFailedNotice
	}
	if q, ok := r.URL.Query()["q"]; ok {
		p.Search(q[0])
	}
	h.renderLeads(w, r, p, data)
}

// SearchLeads filters the cached list without calling the backend.
func (h *Handler) SearchLeads(w http.ResponseWriter, r *http.Request) {
	p := h.panelFor(r)
	p.Search(r.URL.Query().Get("q"))
	h.renderLeads(w, r, p, map[string]any{})
}

func (h *Handler) renderLeads(w http.ResponseWriter, r *http.Request, p *panel.Panel, extra map[string]any) {
	filtered := p.FilteredLeads()
	rows := make([]leadRow, 0, len(filtered))
	for i, l := range filtered {
		rows = append(rows, leadRow{
			Number:  i + 1,
			Name:    l.Name,
			Phone:   l.Phone,
			Village: l.Village,
			City:    l.City,
			Status:  leads.Status(l),
			Date:    leads.FormatTime(l.CreatedAt, h.location),
		})
	}

	data := h.withFlash(r, map[string]any{
		"Title":  "Counseling Leads",
		"Tab":    string(panel.TabLeads),
		"Query":  p.Query(),
		"Leads":  rows,
		"Loaded": p.LeadsLoaded(),
	})
	for k, v := range extra {
		data[k] = v
	}
	h.render(w, r, "leads.html", data)
}

// ExportCSV downloads the currently filtered leads. It never calls the backend.
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	list := h.exportList(r)

	var buf bytes.Buffer
	if err := leads.WriteCSV(&buf, list, h.location); err != nil {
		errors.InternalError(w, r, err, "failed to build leads export")
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="counseling_leads.csv"`)
	if _, err := buf.WriteTo(w); err != nil {
		errors.LogError(r, "failed to write leads export", err)
	}
}

// ExportVCF downloads the currently filtered leads as vCards.
func (h *Handler) ExportVCF(w http.ResponseWriter, r *http.Request) {
	list := h.exportList(r)

	w.Header().Set("Content-Type", "text/vcard; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="counseling_leads.vcf"`)
	if _, err := w.Write([]byte(utils.BuildVCards(list))); err != nil {
		errors.LogError(r, "failed to write leads export", err)
	}
}

// exportList is the cached list under the current search. An explicit q
// parameter updates the search first.
func (h *Handler) exportList(r *http.Request) []api.Lead {
	p := h.panelFor(r)
	if q, ok := r.URL.Query()["q"]; ok {
		p.Search(q[0])
	}
	return p.FilteredLeads()
}
