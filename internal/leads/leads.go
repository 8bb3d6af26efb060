// Package leads filters and exports the cached counseling lead list.
package leads

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"gitea.jw6.us/james/campusdesk/internal/api"
)

// DateLayout renders creation times the way the console table shows them.
const DateLayout = "1/2/2006, 3:04:05 PM"

// Header is the fixed first row of every export.
var Header = []string{"Name", "Phone", "Village", "City", "WhatsApp", "Date"}

// Matches reports whether q is a substring of the lead's name or city,
// ignoring case, or of its phone number as typed. A lead without a city
// never matches on city. The empty query matches every lead.
func Matches(l api.Lead, q string) bool {
	if q == "" {
		return true
	}
	lq := strings.ToLower(q)
	if strings.Contains(strings.ToLower(l.Name), lq) {
		return true
	}
	if strings.Contains(l.Phone, q) {
		return true
	}
	return l.City != "" && strings.Contains(strings.ToLower(l.City), lq)
}

// Filter returns the leads matching q in their original order.
func Filter(all []api.Lead, q string) []api.Lead {
	out := make([]api.Lead, 0, len(all))
	for _, l := range all {
		if Matches(l, q) {
			out = append(out, l)
		}
	}
	return out
}

// Status renders the WhatsApp flag.
func Status(l api.Lead) string {
	if l.WhatsAppSent {
		return "Sent"
	}
	return "Pending"
}

// FormatTime renders t in loc, or in time.Local when loc is nil. The zero
// time renders empty.
func FormatTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DateLayout)
}

// WriteCSV writes the header and one row per lead, in order.
func WriteCSV(w io.Writer, leads []api.Lead, loc *time.Location) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, l := range leads {
		row := []string{l.Name, l.Phone, l.Village, l.City, Status(l), FormatTime(l.CreatedAt, loc)}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write lead %s: %w", l.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
