package utils

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"gitea.jw6.us/james/campusdesk/internal/api"
)

const prodID = "-//campusdesk//Events//EN"

// maxLineOctets is the iCalendar and vCard content line limit, excluding CRLF.
const maxLineOctets = 75

// GenerateETag creates an ETag from content.
func GenerateETag(content string) string {
	h := sha256.Sum256([]byte(content))
	return fmt.Sprintf("%x", h)
}

// EventUID is the stable calendar UID for a backend event.
func EventUID(id string) string {
	return id + "@campusdesk"
}

// BuildCalendar renders events as one VCALENDAR. Events whose date cannot be
// parsed are skipped. stamp fills DTSTAMP.
func BuildCalendar(events []api.Event, stamp time.Time) string {
	var sb strings.Builder
	writeLine(&sb, "BEGIN:VCALENDAR")
	writeLine(&sb, "VERSION:2.0")
	writeLine(&sb, "PRODID:"+prodID)
	writeLine(&sb, "CALSCALE:GREGORIAN")
	for _, ev := range events {
		lines, ok := BuildEventComponent(ev, stamp)
		if !ok {
			continue
		}
		writeLine(&sb, "BEGIN:VEVENT")
		for _, line := range lines {
			writeLine(&sb, line)
		}
		writeLine(&sb, "END:VEVENT")
	}
	writeLine(&sb, "END:VCALENDAR")
	return sb.String()
}

// BuildEventComponent returns the VEVENT property lines for ev.
func BuildEventComponent(ev api.Event, stamp time.Time) ([]string, bool) {
	start, allDay, err := ParseEventDate(ev.Date)
	if err != nil {
		return nil, false
	}

	lines := []string{
		"UID:" + EventUID(ev.ID),
		"DTSTAMP:" + stamp.UTC().Format("20060102T150405Z"),
	}
	if allDay {
		lines = append(lines,
			"DTSTART;VALUE=DATE:"+start.Format("20060102"),
			"DTEND;VALUE=DATE:"+start.AddDate(0, 0, 1).Format("20060102"),
		)
	} else {
		lines = append(lines, "DTSTART:"+start.UTC().Format("20060102T150405Z"))
	}
	lines = append(lines, "SUMMARY:"+EscapeICalValue(sanitizeICalText(ev.Title)))
	if desc := sanitizeICalText(ev.Description); desc != "" {
		lines = append(lines, "DESCRIPTION:"+EscapeICalValue(desc))
	}
	return lines, true
}

// ParseEventDate accepts a bare date from the event form or a full
// timestamp as stored by the backend. Midnight UTC timestamps are treated as
// all-day dates.
func ParseEventDate(value string) (time.Time, bool, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid event date %q: %w", value, err)
	}
	if t.UTC().Hour() == 0 && t.UTC().Minute() == 0 && t.UTC().Second() == 0 && t.Nanosecond() == 0 {
		u := t.UTC()
		return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC), true, nil
	}
	return t, false, nil
}

// FormatEventDate renders an event date for the dashboard list.
func FormatEventDate(value string, loc *time.Location) string {
	t, allDay, err := ParseEventDate(value)
	if err != nil {
		return value
	}
	if allDay {
		return t.Format("Jan 2, 2006")
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format("Jan 2, 2006 3:04 PM")
}

func sanitizeICalText(value string) string {
	value = strings.TrimSpace(value)
	value = strings.ReplaceAll(value, "\r\n", "\n")
	value = strings.ReplaceAll(value, "\r", "\n")
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, value)
}

// EscapeICalValue escapes TEXT values for iCalendar.
func EscapeICalValue(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}

// FoldLine splits a content line into CRLF-joined chunks of at most 75 octets,
// never breaking a UTF-8 sequence.
func FoldLine(line string) string {
	if len(line) <= maxLineOctets {
		return line
	}
	var sb strings.Builder
	limit := maxLineOctets
	for len(line) > limit {
		cut := limit
		for cut > 0 && !isRuneStart(line[cut]) {
			cut--
		}
		sb.WriteString(line[:cut])
		sb.WriteString("\r\n ")
		line = line[cut:]
		// continuation lines carry a leading space
		limit = maxLineOctets - 1
	}
	sb.WriteString(line)
	return sb.String()
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

func writeLine(sb *strings.Builder, line string) {
	sb.WriteString(FoldLine(line))
	sb.WriteString("\r\n")
}
