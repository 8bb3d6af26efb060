package utils

import (
	"strings"
	"testing"
	"time"

	"gitea.jw6.us/james/campusdesk/internal/api"
)

func TestGenerateETag(t *testing.T) {
	etag1 := GenerateETag("test content")
	etag2 := GenerateETag("test content")
	etag3 := GenerateETag("different content")

	if etag1 != etag2 {
		t.Error("Same content should generate same ETag")
	}
	if etag1 == etag3 {
		t.Error("Different content should generate different ETag")
	}
	if len(etag1) != 64 {
		t.Errorf("ETag should be 64 characters (SHA256 hex), got %d", len(etag1))
	}
}

func TestParseEventDate(t *testing.T) {
	tests := []struct {
		name       string
		value      string
		wantAllDay bool
		wantDate   string
		wantErr    bool
	}{
		{"bare date", "2024-12-01", true, "20241201", false},
		{"midnight timestamp", "2024-12-01T00:00:00.000Z", true, "20241201", false},
		{"timed", "2024-12-01T09:30:00Z", false, "20241201", false},
		{"garbage", "next tuesday", false, "", true},
		{"empty", "", false, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, allDay, err := ParseEventDate(tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseEventDate(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if allDay != tt.wantAllDay {
				t.Errorf("allDay = %v, want %v", allDay, tt.wantAllDay)
			}
			if d := got.UTC().Format("20060102"); d != tt.wantDate {
				t.Errorf("date = %s, want %s", d, tt.wantDate)
			}
		})
	}
}

func TestBuildCalendar(t *testing.T) {
	stamp := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	events := []api.Event{
		{ID: "e1", Title: "Sports Day", Description: "Track, field; relay", Date: "2024-12-01"},
		{ID: "e2", Title: "PTM", Date: "2024-12-05T10:00:00Z"},
		{ID: "e3", Title: "Broken", Date: "soon"},
	}

	ics := BuildCalendar(events, stamp)

	for _, want := range []string{
		"BEGIN:VCALENDAR\r\n",
		"VERSION:2.0\r\n",
		"UID:e1@campusdesk\r\n",
		"DTSTAMP:20240102T030405Z\r\n",
		"DTSTART;VALUE=DATE:20241201\r\n",
		"DTEND;VALUE=DATE:20241202\r\n",
		"SUMMARY:Sports Day\r\n",
		`DESCRIPTION:Track\, field\; relay` + "\r\n",
		"UID:e2@campusdesk\r\n",
		"DTSTART:20241205T100000Z\r\n",
		"END:VCALENDAR\r\n",
	} {
		if !strings.Contains(ics, want) {
			t.Errorf("calendar missing %q\n%s", want, ics)
		}
	}
	if strings.Contains(ics, "e3@campusdesk") {
		t.Error("event with unparseable date should be skipped")
	}
	if got := strings.Count(ics, "BEGIN:VEVENT"); got != 2 {
		t.Errorf("VEVENT count = %d, want 2", got)
	}
}

func TestBuildCalendarEmpty(t *testing.T) {
	ics := BuildCalendar(nil, time.Now())
	if strings.Contains(ics, "BEGIN:VEVENT") {
		t.Error("empty calendar should have no events")
	}
	if !strings.HasSuffix(ics, "END:VCALENDAR\r\n") {
		t.Error("calendar should be terminated")
	}
}

func TestBuildEventComponentStripsControlCharacters(t *testing.T) {
	lines, ok := BuildEventComponent(api.Event{ID: "x", Title: "Bad\x00Title", Date: "2024-01-01"}, time.Now())
	if !ok {
		t.Fatal("expected event to build")
	}
	for _, l := range lines {
		if strings.ContainsRune(l, 0) {
			t.Errorf("line %q contains NUL", l)
		}
	}
}

func TestEscapeICalValue(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"simple", "simple"},
		{"a,b", `a\,b`},
		{"a;b", `a\;b`},
		{`a\b`, `a\\b`},
		{"line1\r\nline2", `line1\nline2`},
	}
	for _, tt := range tests {
		if got := EscapeICalValue(tt.input); got != tt.want {
			t.Errorf("EscapeICalValue(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFoldLine(t *testing.T) {
	short := "SUMMARY:short"
	if got := FoldLine(short); got != short {
		t.Errorf("short line should not fold, got %q", got)
	}

	long := "DESCRIPTION:" + strings.Repeat("é", 60)
	folded := FoldLine(long)
	for i, part := range strings.Split(folded, "\r\n") {
		if len(part) > maxLineOctets {
			t.Errorf("part %d has %d octets", i, len(part))
		}
		if i > 0 && !strings.HasPrefix(part, " ") {
			t.Errorf("continuation %d should start with a space", i)
		}
	}
	if unfolded := strings.ReplaceAll(folded, "\r\n ", ""); unfolded != long {
		t.Error("unfolding should restore the original line")
	}
}

func TestFormatEventDate(t *testing.T) {
	if got := FormatEventDate("2024-12-01", time.UTC); got != "Dec 1, 2024" {
		t.Errorf("got %q", got)
	}
	if got := FormatEventDate("2024-12-01T15:04:00Z", time.UTC); got != "Dec 1, 2024 3:04 PM" {
		t.Errorf("got %q", got)
	}
	if got := FormatEventDate("whenever", time.UTC); got != "whenever" {
		t.Errorf("unparseable dates should render verbatim, got %q", got)
	}
}
