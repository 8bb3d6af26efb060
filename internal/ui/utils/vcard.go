package utils

import (
	"strings"

	"gitea.jw6.us/james/campusdesk/internal/api"
	"gitea.jw6.us/james/campusdesk/internal/leads"
)

// BuildVCard constructs a vCard 3.0 for a counseling lead.
func BuildVCard(lead api.Lead) string {
	var sb strings.Builder
	writeLine(&sb, "BEGIN:VCARD")
	writeLine(&sb, "VERSION:3.0")
	if lead.ID != "" {
		writeLine(&sb, "UID:"+lead.ID)
	}
	name := strings.TrimSpace(lead.Name)
	writeLine(&sb, "FN:"+EscapeVCardValue(name))

	// N: Last;First;Middle;Prefix;Suffix
	first, last := splitName(name)
	writeLine(&sb, "N:"+EscapeVCardValue(last)+";"+EscapeVCardValue(first)+";;;")

	if phone := strings.TrimSpace(lead.Phone); phone != "" {
		writeLine(&sb, "TEL;TYPE=CELL:"+EscapeVCardValue(phone))
	}
	if lead.Village != "" || lead.City != "" {
		// ADR: PO;Extended;Street;Locality;Region;Postal;Country
		writeLine(&sb, "ADR;TYPE=HOME:;"+EscapeVCardValue(lead.Village)+";;"+EscapeVCardValue(lead.City)+";;;")
	}
	writeLine(&sb, "NOTE:"+EscapeVCardValue("Counseling lead, WhatsApp "+strings.ToLower(leads.Status(lead))))
	if !lead.CreatedAt.IsZero() {
		writeLine(&sb, "REV:"+lead.CreatedAt.UTC().Format("20060102T150405Z"))
	}
	writeLine(&sb, "END:VCARD")
	return sb.String()
}

// BuildVCards concatenates one vCard per lead.
func BuildVCards(list []api.Lead) string {
	var sb strings.Builder
	for _, l := range list {
		sb.WriteString(BuildVCard(l))
	}
	return sb.String()
}

// EscapeVCardValue escapes special characters for vCard format.
func EscapeVCardValue(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}

func splitName(name string) (first, last string) {
	i := strings.LastIndex(name, " ")
	if i < 0 {
		return name, ""
	}
	return strings.TrimSpace(name[:i]), strings.TrimSpace(name[i+1:])
}

