// Package submit turns staged drafts into backend calls. Each submission runs
// validate, build payload, submit and react strictly in that order, and
// reports a typed Outcome instead of talking to the user directly.
package submit

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"gitea.jw6.us/james/campusdesk/internal/api"
	"gitea.jw6.us/james/campusdesk/internal/forms"
	"gitea.jw6.us/james/campusdesk/internal/metrics"
)

type Status int

const (
	StatusOK Status = iota
	StatusInvalid
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusInvalid:
		return "invalid"
	default:
		return "failed"
	}
}

// Outcome is the result of one submit or delete action.
type Outcome struct {
	Kind     Kind
	Status   Status
	Message  string
	Fields   map[string]string
	Replaced int
	// Err is the underlying failure, kept for logging only.
	Err error
	// RefreshErr is set when the dependent list could not be reloaded.
	RefreshErr error
}

func (o Outcome) OK() bool { return o.Status == StatusOK }

// Doer sends one backend request.
type Doer interface {
	Do(ctx context.Context, req api.Request) (*api.Response, error)
}

// EventLoader is the calendar list that must re-fetch after it changes.
type EventLoader interface {
	LoadEvents(ctx context.Context) error
}

// Submitter runs submissions against the backend.
type Submitter struct {
	client  Doer
	checker *checker
}

func New(client Doer) *Submitter {
	return &Submitter{client: client, checker: newChecker()}
}

// Submit validates the draft for kind and, when valid, sends it. On success
// the draft is reset and, for calendar events, events re-fetches. On any
// failure the draft is left untouched.
func (s *Submitter) Submit(ctx context.Context, kind Kind, draft *forms.Draft, events EventLoader) Outcome {
	def, ok := kinds[kind]
	if !ok {
		return s.finish(Outcome{Kind: kind, Status: StatusInvalid, Message: "Unknown form"})
	}

	sub := def.bind(draft.Snapshot())
	if err := s.checker.check(sub); err != nil {
		out := Outcome{Kind: kind, Status: StatusInvalid, Err: err, Fields: map[string]string{}}
		var msgs []string
		if verr, ok := err.(*ValidationError); ok {
			for _, fe := range verr.Fields {
				out.Fields[fe.Field] = fe.Message
				msgs = append(msgs, fe.Message)
			}
		}
		out.Message = strings.Join(msgs, ", ")
		return s.finish(out)
	}

	resp, err := s.client.Do(ctx, api.Request{
		Method:    http.MethodPost,
		Path:      sub.Endpoint(),
		Body:      sub.Payload(),
		Operation: "submit." + string(kind),
	})
	if err != nil {
		return s.finish(Outcome{Kind: kind, Status: StatusFailed, Message: def.failure, Err: err})
	}

	out := Outcome{Kind: kind, Status: StatusOK, Message: def.success}
	if kind == KindResults {
		var body struct {
			Replaced int `json:"replaced"`
		}
		if err := resp.Decode(&body); err != nil {
			return s.finish(Outcome{Kind: kind, Status: StatusFailed, Message: def.failure, Err: err})
		}
		out.Replaced = body.Replaced
		out.Message = fmt.Sprintf(def.success, body.Replaced)
	}

	draft.Reset()
	if kind == KindEvent && events != nil {
		out.RefreshErr = events.LoadEvents(ctx)
	}
	return s.finish(out)
}

// DeleteEvent removes a calendar event and then re-fetches the event list
// exactly once, whether or not the delete succeeded.
func (s *Submitter) DeleteEvent(ctx context.Context, id string, events EventLoader) Outcome {
	_, err := s.client.Do(ctx, api.Request{
		Method:    http.MethodDelete,
		Path:      "/admin/calendar/" + url.PathEscape(id),
		Operation: "calendar.delete",
	})

	out := Outcome{Kind: KindEvent, Status: StatusOK, Message: "Event deleted"}
	if err != nil {
		out = Outcome{Kind: KindEvent, Status: StatusFailed, Message: "Deleting event failed", Err: err}
	}
	if events != nil {
		out.RefreshErr = events.LoadEvents(ctx)
	}
	return s.finish(out)
}

func (s *Submitter) finish(out Outcome) Outcome {
	metrics.CountSubmission(string(out.Kind), out.Status.String())
	return out
}
