package submit

import (
	"strings"

	"gitea.jw6.us/james/campusdesk/internal/api"
	"gitea.jw6.us/james/campusdesk/internal/forms"
)

// Kind names a resource the console can publish.
type Kind string

const (
	KindAnnouncement Kind = "announcement"
	KindGallery      Kind = "gallery"
	KindEvent        Kind = "event"
	KindGeneral      Kind = "general"
	KindDocument     Kind = "document"
	KindAcademic     Kind = "academic"
	KindResultX      Kind = "resultX"
	KindResultXII    Kind = "resultXII"
	KindStaff        Kind = "staff"
	KindInfra        Kind = "infra"
	KindResults      Kind = "results"
)

// Submission is one typed, bindable payload. Validation runs over the struct's
// `validate` tags; `form` names the draft field and `label` the user-facing name.
type Submission interface {
	Endpoint() string
	Payload() api.Body
}

type kindDef struct {
	fields  []string
	bind    func(forms.Snapshot) Submission
	success string
	failure string
}

var kinds = map[Kind]kindDef{
	KindAnnouncement: {
		fields:  []string{"title", "body"},
		bind:    bindAnnouncement,
		success: "Announcement added",
		failure: "Announcement upload failed",
	},
	KindGallery: {
		fields:  []string{"event", "category", "videoLink"},
		bind:    bindGallery,
		success: "Gallery uploaded successfully",
		failure: "Gallery upload failed",
	},
	KindEvent: {
		fields:  []string{"eventTitle", "eventDesc", "eventDate"},
		bind:    bindEvent,
		success: "Event added",
		failure: "Adding event failed",
	},
	KindGeneral: {
		fields:  []string{"info", "detail"},
		bind:    func(s forms.Snapshot) Submission { return bindInfoDetail(s, "/admin/disclosures/general") },
		success: "General info added",
		failure: "Adding general info failed",
	},
	KindDocument: {
		fields:  []string{"docName"},
		bind:    bindDocument,
		success: "PDF uploaded",
		failure: "PDF upload failed",
	},
	KindAcademic: {
		fields:  []string{"acTitle"},
		bind:    bindAcademic,
		success: "Academic added",
		failure: "Academic upload failed",
	},
	KindResultX: {
		fields:  resultFields,
		bind:    func(s forms.Snapshot) Submission { return bindResult(s, "/admin/disclosures/resultX") },
		success: "Result X added",
		failure: "Adding result X failed",
	},
	KindResultXII: {
		fields:  resultFields,
		bind:    func(s forms.Snapshot) Submission { return bindResult(s, "/admin/disclosures/resultXII") },
		success: "Result XII added",
		failure: "Adding result XII failed",
	},
	KindStaff: {
		fields:  []string{"info", "detail"},
		bind:    func(s forms.Snapshot) Submission { return bindInfoDetail(s, "/admin/disclosures/staff") },
		success: "Staff added",
		failure: "Adding staff failed",
	},
	KindInfra: {
		fields:  []string{"info", "detail"},
		bind:    func(s forms.Snapshot) Submission { return bindInfoDetail(s, "/admin/disclosures/infra") },
		success: "Infrastructure added",
		failure: "Adding infrastructure failed",
	},
	KindResults: {
		bind:    bindResultSheet,
		success: "%d results uploaded successfully",
		failure: "Upload failed. Check Excel format.",
	},
}

var resultFields = []string{"year", "registered", "passed", "percentage"}

// ParseKind resolves a form name to a Kind.
func ParseKind(s string) (Kind, bool) {
	k := Kind(s)
	_, ok := kinds[k]
	return k, ok
}

// Fields lists the draft fields a kind reads.
func Fields(k Kind) []string {
	return kinds[k].fields
}

func filePart(f *forms.File, field string) *api.FilePart {
	if f == nil {
		return nil
	}
	return &api.FilePart{Field: field, Name: f.Name, ContentType: f.ContentType, Data: f.Data}
}

type Announcement struct {
	Title      string `form:"title" label:"Title" validate:"required"`
	Body       string `form:"body" label:"Body" validate:"required"`
	Attachment *forms.File
}

func bindAnnouncement(s forms.Snapshot) Submission {
	return &Announcement{Title: s.Field("title"), Body: s.Field("body"), Attachment: s.File}
}

func (a *Announcement) Endpoint() string { return "/admin/announcements" }

func (a *Announcement) Payload() api.Body {
	return api.MultipartBody{
		Fields: []api.FormField{{Name: "title", Value: a.Title}, {Name: "body", Value: a.Body}},
		File:   filePart(a.Attachment, "attachments"),
	}
}

type GalleryPhoto struct {
	Event    string      `form:"event" label:"Event" validate:"required"`
	Category string      `form:"category" label:"Category" validate:"required"`
	Photo    *forms.File `form:"file" label:"Photo" validate:"required"`
}

type GalleryVideo struct {
	Event     string      `form:"event" label:"Event" validate:"required"`
	Category  string      `form:"category" label:"Category" validate:"required"`
	VideoLink string      `form:"videoLink" label:"YouTube link" validate:"required"`
	Thumbnail *forms.File `form:"file" label:"Thumbnail image" validate:"required"`
}

func bindGallery(s forms.Snapshot) Submission {
	if s.Media == forms.MediaVideo {
		return &GalleryVideo{
			Event:     s.Field("event"),
			Category:  s.Field("category"),
			VideoLink: s.Field("videoLink"),
			Thumbnail: s.File,
		}
	}
	return &GalleryPhoto{Event: s.Field("event"), Category: s.Field("category"), Photo: s.File}
}

func (g *GalleryPhoto) Endpoint() string { return "/admin/gallery" }

func (g *GalleryPhoto) Payload() api.Body {
	return api.MultipartBody{
		Fields: []api.FormField{
			{Name: "event", Value: g.Event},
			{Name: "category", Value: strings.ToLower(g.Category)},
			{Name: "type", Value: string(forms.MediaPhoto)},
		},
		File: filePart(g.Photo, "file"),
	}
}

func (g *GalleryVideo) Endpoint() string { return "/admin/gallery" }

func (g *GalleryVideo) Payload() api.Body {
	return api.MultipartBody{
		Fields: []api.FormField{
			{Name: "event", Value: g.Event},
			{Name: "category", Value: strings.ToLower(g.Category)},
			{Name: "type", Value: string(forms.MediaVideo)},
			{Name: "videoLink", Value: g.VideoLink},
		},
		File: filePart(g.Thumbnail, "file"),
	}
}

type CalendarEvent struct {
	Title       string `form:"eventTitle" label:"Event title" validate:"required"`
	Description string `form:"eventDesc" label:"Event description" validate:"required"`
	Date        string `form:"eventDate" label:"Event date" validate:"required"`
}

func bindEvent(s forms.Snapshot) Submission {
	return &CalendarEvent{Title: s.Field("eventTitle"), Description: s.Field("eventDesc"), Date: s.Field("eventDate")}
}

func (e *CalendarEvent) Endpoint() string { return "/admin/calendar" }

func (e *CalendarEvent) Payload() api.Body {
	return api.JSONBody{Value: api.NewEvent{Title: e.Title, Description: e.Description, Date: e.Date}}
}

// InfoDetail covers the general, staff and infrastructure disclosures.
type InfoDetail struct {
	Info     string `form:"info" label:"Info" validate:"required"`
	Detail   string `form:"detail" label:"Detail" validate:"required"`
	endpoint string
}

func bindInfoDetail(s forms.Snapshot, endpoint string) Submission {
	return &InfoDetail{Info: s.Field("info"), Detail: s.Field("detail"), endpoint: endpoint}
}

func (d *InfoDetail) Endpoint() string { return d.endpoint }

func (d *InfoDetail) Payload() api.Body {
	return api.JSONBody{Value: map[string]string{"info": d.Info, "detail": d.Detail}}
}

type Document struct {
	Name string      `form:"docName" label:"Document name" validate:"required"`
	PDF  *forms.File `form:"file" label:"PDF" validate:"required"`
}

func bindDocument(s forms.Snapshot) Submission {
	return &Document{Name: s.Field("docName"), PDF: s.File}
}

func (d *Document) Endpoint() string { return "/admin/disclosures/documents" }

func (d *Document) Payload() api.Body {
	return api.MultipartBody{
		Fields: []api.FormField{{Name: "name", Value: d.Name}},
		File:   filePart(d.PDF, "pdf"),
	}
}

type Academic struct {
	Title string      `form:"acTitle" label:"Academic title" validate:"required"`
	PDF   *forms.File `form:"file" label:"PDF" validate:"required"`
}

func bindAcademic(s forms.Snapshot) Submission {
	return &Academic{Title: s.Field("acTitle"), PDF: s.File}
}

func (a *Academic) Endpoint() string { return "/admin/disclosures/academic" }

func (a *Academic) Payload() api.Body {
	return api.MultipartBody{
		Fields: []api.FormField{{Name: "title", Value: a.Title}},
		File:   filePart(a.PDF, "pdf"),
	}
}

// BoardResult is a class X or XII result summary.
type BoardResult struct {
	Year       string `form:"year" label:"Year" validate:"required"`
	Registered string `form:"registered" label:"Registered" validate:"required"`
	Passed     string `form:"passed" label:"Passed" validate:"required"`
	Percentage string `form:"percentage" label:"Percentage" validate:"required"`
	endpoint   string
}

func bindResult(s forms.Snapshot, endpoint string) Submission {
	return &BoardResult{
		Year:       s.Field("year"),
		Registered: s.Field("registered"),
		Passed:     s.Field("passed"),
		Percentage: s.Field("percentage"),
		endpoint:   endpoint,
	}
}

func (r *BoardResult) Endpoint() string { return r.endpoint }

func (r *BoardResult) Payload() api.Body {
	return api.JSONBody{Value: map[string]string{
		"year":       r.Year,
		"registered": r.Registered,
		"passed":     r.Passed,
		"percentage": r.Percentage,
	}}
}

type ResultSheet struct {
	Sheet *forms.File `form:"file" label:"Excel file" validate:"required"`
}

func bindResultSheet(s forms.Snapshot) Submission {
	return &ResultSheet{Sheet: s.File}
}

func (r *ResultSheet) Endpoint() string { return "/admin/results/upload" }

func (r *ResultSheet) Payload() api.Body {
	return api.MultipartBody{File: filePart(r.Sheet, "file")}
}
