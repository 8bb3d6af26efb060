package submit

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitea.jw6.us/james/campusdesk/internal/api"
	"gitea.jw6.us/james/campusdesk/internal/forms"
)

// capturedRequest is what the fake backend saw for one call.
type capturedRequest struct {
	Method   string
	Path     string
	JSON     map[string]any
	Fields   map[string]string
	Files    map[string]string // field -> filename
	FileData map[string]string
}

type fakeBackend struct {
	mu       sync.Mutex
	requests []capturedRequest
	status   int
	body     string
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c := capturedRequest{Method: r.Method, Path: r.URL.Path}
	switch ct := r.Header.Get("Content-Type"); {
	case strings.HasPrefix(ct, "multipart/form-data"):
		if err := r.ParseMultipartForm(1 << 20); err == nil {
			c.Fields = map[string]string{}
			c.Files = map[string]string{}
			c.FileData = map[string]string{}
			for k, v := range r.MultipartForm.Value {
				c.Fields[k] = v[0]
			}
			for k, hs := range r.MultipartForm.File {
				c.Files[k] = hs[0].Filename
				if fh, err := hs[0].Open(); err == nil {
					data, _ := io.ReadAll(fh)
					c.FileData[k] = string(data)
					fh.Close()
				}
			}
		}
	case ct == "application/json":
		_ = json.NewDecoder(r.Body).Decode(&c.JSON)
	}

	f.mu.Lock()
	f.requests = append(f.requests, c)
	status, body := f.status, f.body
	f.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func (f *fakeBackend) calls() []capturedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]capturedRequest(nil), f.requests...)
}

func newSubmitter(t *testing.T, backend *fakeBackend) *Submitter {
	t.Helper()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)
	client, err := api.New(srv.URL, srv.Client(), nil)
	require.NoError(t, err)
	return New(client)
}

type countingLoader struct {
	calls int
	err   error
}

func (c *countingLoader) LoadEvents(context.Context) error {
	c.calls++
	return c.err
}

func draftWith(fields map[string]string, file *forms.File) *forms.Draft {
	d := forms.NewDraft()
	for k, v := range fields {
		d.SetField(k, v)
	}
	d.SetFile(file)
	return d
}

func TestMissingRequiredFieldsNeverCallBackend(t *testing.T) {
	photo := &forms.File{Name: "p.jpg", Data: []byte("img")}
	tests := []struct {
		name       string
		kind       Kind
		fields     map[string]string
		file       *forms.File
		media      forms.MediaType
		wantFields []string
	}{
		{name: "announcement without body", kind: KindAnnouncement, fields: map[string]string{"title": "T"}, wantFields: []string{"body"}},
		{name: "announcement empty", kind: KindAnnouncement, wantFields: []string{"title", "body"}},
		{name: "gallery photo without file", kind: KindGallery, fields: map[string]string{"event": "Sports", "category": "Junior"}, wantFields: []string{"file"}},
		{name: "gallery without category", kind: KindGallery, fields: map[string]string{"event": "Sports"}, file: photo, wantFields: []string{"category"}},
		{name: "gallery video without link", kind: KindGallery, media: forms.MediaVideo, fields: map[string]string{"event": "Sports", "category": "Junior"}, file: photo, wantFields: []string{"videoLink"}},
		{name: "gallery video without thumbnail", kind: KindGallery, media: forms.MediaVideo, fields: map[string]string{"event": "Sports", "category": "Junior", "videoLink": "http://y"}, wantFields: []string{"file"}},
		{name: "event without date", kind: KindEvent, fields: map[string]string{"eventTitle": "Day", "eventDesc": "D"}, wantFields: []string{"eventDate"}},
		{name: "general without detail", kind: KindGeneral, fields: map[string]string{"info": "i"}, wantFields: []string{"detail"}},
		{name: "document without pdf", kind: KindDocument, fields: map[string]string{"docName": "Fees"}, wantFields: []string{"file"}},
		{name: "document without name", kind: KindDocument, file: photo, wantFields: []string{"docName"}},
		{name: "academic without pdf", kind: KindAcademic, fields: map[string]string{"acTitle": "Calendar"}, wantFields: []string{"file"}},
		{name: "result X missing percentage", kind: KindResultX, fields: map[string]string{"year": "2024", "registered": "10", "passed": "9"}, wantFields: []string{"percentage"}},
		{name: "result XII empty", kind: KindResultXII, wantFields: resultFields},
		{name: "staff without info", kind: KindStaff, fields: map[string]string{"detail": "d"}, wantFields: []string{"info"}},
		{name: "infra empty", kind: KindInfra, wantFields: []string{"info", "detail"}},
		{name: "results without sheet", kind: KindResults, wantFields: []string{"file"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{}
			s := newSubmitter(t, backend)
			d := forms.NewDraft()
			if tt.media != "" {
				d.SetMedia(tt.media)
			}
			for k, v := range tt.fields {
				d.SetField(k, v)
			}
			d.SetFile(tt.file)
			before := d.Snapshot()

			out := s.Submit(context.Background(), tt.kind, d, nil)

			assert.Equal(t, StatusInvalid, out.Status)
			assert.ErrorIs(t, out.Err, ErrValidation)
			assert.NotEmpty(t, out.Message)
			for _, f := range tt.wantFields {
				assert.Contains(t, out.Fields, f)
			}
			assert.Len(t, out.Fields, len(tt.wantFields))
			assert.Empty(t, backend.calls(), "no request may be sent for an invalid draft")
			assert.Equal(t, before, d.Snapshot(), "draft must be preserved")
		})
	}
}

func TestValidationMessagesNameTheField(t *testing.T) {
	s := newSubmitter(t, &fakeBackend{})
	d := forms.NewDraft()
	d.SetMedia(forms.MediaVideo)
	d.SetField("event", "Sports")
	d.SetField("category", "Junior")

	out := s.Submit(context.Background(), KindGallery, d, nil)
	assert.Equal(t, "YouTube link required", out.Fields["videoLink"])
	assert.Equal(t, "Thumbnail image required", out.Fields["file"])
}

func TestAnnouncementWithoutAttachment(t *testing.T) {
	backend := &fakeBackend{body: `{"ok":true}`}
	s := newSubmitter(t, backend)
	d := draftWith(map[string]string{"title": "T", "body": "B"}, nil)

	out := s.Submit(context.Background(), KindAnnouncement, d, nil)

	require.True(t, out.OK(), out.Message)
	assert.Equal(t, "Announcement added", out.Message)
	calls := backend.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodPost, calls[0].Method)
	assert.Equal(t, "/admin/announcements", calls[0].Path)
	assert.Equal(t, map[string]string{"title": "T", "body": "B"}, calls[0].Fields)
	assert.NotContains(t, calls[0].Files, "attachments")
	assert.True(t, d.Empty(), "draft resets after success")
}

func TestAnnouncementWithAttachment(t *testing.T) {
	backend := &fakeBackend{}
	s := newSubmitter(t, backend)
	d := draftWith(map[string]string{"title": "T", "body": "B"}, &forms.File{Name: "notice.pdf", Data: []byte("%PDF")})

	out := s.Submit(context.Background(), KindAnnouncement, d, nil)
	require.True(t, out.OK())
	calls := backend.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "notice.pdf", calls[0].Files["attachments"])
	assert.Equal(t, "%PDF", calls[0].FileData["attachments"])
}

func TestGalleryVideoLowercasesCategory(t *testing.T) {
	backend := &fakeBackend{}
	s := newSubmitter(t, backend)
	d := forms.NewDraft()
	d.SetMedia(forms.MediaVideo)
	d.SetField("event", "Sports")
	d.SetField("category", "Junior")
	d.SetField("videoLink", "http://y")
	d.SetFile(&forms.File{Name: "thumb.jpg", ContentType: "image/jpeg", Data: []byte("jpg")})

	out := s.Submit(context.Background(), KindGallery, d, nil)

	require.True(t, out.OK(), out.Message)
	calls := backend.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "/admin/gallery", calls[0].Path)
	assert.Equal(t, map[string]string{
		"event":     "Sports",
		"category":  "junior",
		"type":      "video",
		"videoLink": "http://y",
	}, calls[0].Fields)
	assert.Equal(t, "thumb.jpg", calls[0].Files["file"])
	assert.Equal(t, forms.MediaPhoto, d.Media(), "media intent resets after success")
}

func TestGalleryPhotoOmitsVideoLink(t *testing.T) {
	backend := &fakeBackend{}
	s := newSubmitter(t, backend)
	d := draftWith(map[string]string{"event": "Annual Day", "category": "SENIOR", "videoLink": "stale"}, &forms.File{Name: "p.jpg"})

	out := s.Submit(context.Background(), KindGallery, d, nil)
	require.True(t, out.OK())
	calls := backend.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "photo", calls[0].Fields["type"])
	assert.Equal(t, "senior", calls[0].Fields["category"])
	assert.NotContains(t, calls[0].Fields, "videoLink")
}

func TestStructuredPayloadsCarryExactlyTheirFields(t *testing.T) {
	tests := []struct {
		name   string
		kind   Kind
		fields map[string]string
		path   string
		want   map[string]any
	}{
		{
			name:   "general info",
			kind:   KindGeneral,
			fields: map[string]string{"info": "Affiliation", "detail": "CBSE"},
			path:   "/admin/disclosures/general",
			want:   map[string]any{"info": "Affiliation", "detail": "CBSE"},
		},
		{
			name:   "staff",
			kind:   KindStaff,
			fields: map[string]string{"info": "Teachers", "detail": "40"},
			path:   "/admin/disclosures/staff",
			want:   map[string]any{"info": "Teachers", "detail": "40"},
		},
		{
			name:   "infra",
			kind:   KindInfra,
			fields: map[string]string{"info": "Labs", "detail": "3"},
			path:   "/admin/disclosures/infra",
			want:   map[string]any{"info": "Labs", "detail": "3"},
		},
		{
			name:   "result X",
			kind:   KindResultX,
			fields: map[string]string{"year": "2024", "registered": "120", "passed": "118", "percentage": "98.3"},
			path:   "/admin/disclosures/resultX",
			want:   map[string]any{"year": "2024", "registered": "120", "passed": "118", "percentage": "98.3"},
		},
		{
			name:   "result XII",
			kind:   KindResultXII,
			fields: map[string]string{"year": "2024", "registered": "80", "passed": "80", "percentage": "100"},
			path:   "/admin/disclosures/resultXII",
			want:   map[string]any{"year": "2024", "registered": "80", "passed": "80", "percentage": "100"},
		},
		{
			name:   "calendar event",
			kind:   KindEvent,
			fields: map[string]string{"eventTitle": "Sports Day", "eventDesc": "Field events", "eventDate": "2024-12-01"},
			path:   "/admin/calendar",
			want:   map[string]any{"title": "Sports Day", "description": "Field events", "date": "2024-12-01"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{body: `{}`}
			s := newSubmitter(t, backend)
			d := draftWith(tt.fields, nil)

			out := s.Submit(context.Background(), tt.kind, d, nil)

			require.True(t, out.OK(), out.Message)
			calls := backend.calls()
			require.Len(t, calls, 1)
			assert.Equal(t, tt.path, calls[0].Path)
			assert.Equal(t, tt.want, calls[0].JSON)
			assert.True(t, d.Empty())
		})
	}
}

func TestDocumentAndAcademicUseFixedFileField(t *testing.T) {
	backend := &fakeBackend{}
	s := newSubmitter(t, backend)

	out := s.Submit(context.Background(), KindDocument, draftWith(map[string]string{"docName": "Fee structure"}, &forms.File{Name: "fees.pdf"}), nil)
	require.True(t, out.OK())
	out = s.Submit(context.Background(), KindAcademic, draftWith(map[string]string{"acTitle": "Syllabus"}, &forms.File{Name: "syllabus.pdf"}), nil)
	require.True(t, out.OK())

	calls := backend.calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "/admin/disclosures/documents", calls[0].Path)
	assert.Equal(t, map[string]string{"name": "Fee structure"}, calls[0].Fields)
	assert.Equal(t, "fees.pdf", calls[0].Files["pdf"])
	assert.Equal(t, "/admin/disclosures/academic", calls[1].Path)
	assert.Equal(t, map[string]string{"title": "Syllabus"}, calls[1].Fields)
	assert.Equal(t, "syllabus.pdf", calls[1].Files["pdf"])
}

func TestFailurePreservesDraft(t *testing.T) {
	backend := &fakeBackend{status: http.StatusInternalServerError}
	s := newSubmitter(t, backend)
	file := &forms.File{Name: "p.jpg"}
	d := draftWith(map[string]string{"event": "Sports", "category": "Junior"}, file)
	loader := &countingLoader{}

	out := s.Submit(context.Background(), KindGallery, d, loader)

	assert.Equal(t, StatusFailed, out.Status)
	assert.Equal(t, "Gallery upload failed", out.Message)
	assert.ErrorIs(t, out.Err, api.ErrRequestFailed)
	assert.Equal(t, "Sports", d.Field("event"))
	assert.Same(t, file, d.File())
	assert.Zero(t, loader.calls)
}

func TestEventCreateRefreshesList(t *testing.T) {
	backend := &fakeBackend{body: `{"_id":"e1"}`}
	s := newSubmitter(t, backend)
	loader := &countingLoader{}

	out := s.Submit(context.Background(), KindEvent, draftWith(map[string]string{"eventTitle": "A", "eventDesc": "B", "eventDate": "2024-01-01"}, nil), loader)

	require.True(t, out.OK())
	assert.Equal(t, 1, loader.calls)
}

func TestNonEventSubmissionsDoNotRefresh(t *testing.T) {
	s := newSubmitter(t, &fakeBackend{})
	loader := &countingLoader{}
	out := s.Submit(context.Background(), KindGeneral, draftWith(map[string]string{"info": "a", "detail": "b"}, nil), loader)
	require.True(t, out.OK())
	assert.Zero(t, loader.calls)
}

func TestDeleteEventAlwaysRefreshesOnce(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusNotFound, http.StatusInternalServerError} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			backend := &fakeBackend{status: status}
			s := newSubmitter(t, backend)
			loader := &countingLoader{}

			out := s.DeleteEvent(context.Background(), "ev-1", loader)

			assert.Equal(t, 1, loader.calls)
			calls := backend.calls()
			require.Len(t, calls, 1)
			assert.Equal(t, http.MethodDelete, calls[0].Method)
			assert.Equal(t, "/admin/calendar/ev-1", calls[0].Path)
			assert.Equal(t, status == http.StatusOK, out.OK())
		})
	}
}

func TestDeleteEventReportsRefreshFailure(t *testing.T) {
	s := newSubmitter(t, &fakeBackend{})
	loader := &countingLoader{err: errors.New("down")}
	out := s.DeleteEvent(context.Background(), "ev-1", loader)
	assert.True(t, out.OK())
	assert.Error(t, out.RefreshErr)
}

func TestResultSheetReportsReplacedCount(t *testing.T) {
	backend := &fakeBackend{body: `{"replaced":17}`}
	s := newSubmitter(t, backend)
	d := draftWith(nil, &forms.File{Name: "results.xlsx", Data: []byte("xlsx")})

	out := s.Submit(context.Background(), KindResults, d, nil)

	require.True(t, out.OK(), out.Message)
	assert.Equal(t, 17, out.Replaced)
	assert.Equal(t, "17 results uploaded successfully", out.Message)
	calls := backend.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "/admin/results/upload", calls[0].Path)
	assert.Equal(t, "results.xlsx", calls[0].Files["file"])
	assert.Nil(t, d.File())
}

func TestResultSheetFailure(t *testing.T) {
	backend := &fakeBackend{status: http.StatusBadRequest}
	s := newSubmitter(t, backend)
	d := draftWith(nil, &forms.File{Name: "broken.xlsx"})

	out := s.Submit(context.Background(), KindResults, d, nil)
	assert.Equal(t, StatusFailed, out.Status)
	assert.Equal(t, "Upload failed. Check Excel format.", out.Message)
	assert.NotNil(t, d.File())
}

func TestUnknownKind(t *testing.T) {
	backend := &fakeBackend{}
	s := newSubmitter(t, backend)
	out := s.Submit(context.Background(), Kind("nope"), forms.NewDraft(), nil)
	assert.Equal(t, StatusInvalid, out.Status)
	assert.Empty(t, backend.calls())
}

func TestParseKindAndFields(t *testing.T) {
	k, ok := ParseKind("resultXII")
	require.True(t, ok)
	assert.Equal(t, KindResultXII, k)
	assert.Equal(t, resultFields, Fields(k))

	_, ok = ParseKind("bogus")
	assert.False(t, ok)
}
