// Package calendar renders iCalendar (RFC 5545) invites for alternative
// activity slots, attached to deterioration alert emails so recipients can
// reschedule with one click.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"fairhour/internal/types"
)

// icsTimeLayout is the RFC 5545 UTC timestamp format.
const icsTimeLayout = "20060102T150405Z"

// ICSExporter implements types.CalendarExporter by emitting a minimal
// single-event VCALENDAR document. Timestamps are normalized to UTC so the
// invite is unambiguous regardless of the recipient's calendar client.
type ICSExporter struct {
	prodID string
}

// NewICSExporter creates an exporter. An empty prodID selects the default
// product identifier.
func NewICSExporter(prodID string) *ICSExporter {
	if prodID == "" {
		prodID = "-//fairhour//EN"
	}
	return &ICSExporter{prodID: prodID}
}

// Export renders the invite as an iCalendar document. Lines are CRLF
// terminated per RFC 5545; text values are escaped.
func (e *ICSExporter) Export(invite types.CalendarInvite) []byte {
	start := invite.Start.UTC()
	end := start.Add(invite.Duration)

	var b strings.Builder
	writeLine := func(line string) {
		b.WriteString(line)
		b.WriteString("\r\n")
	}

	writeLine("BEGIN:VCALENDAR")
	writeLine("VERSION:2.0")
	writeLine("PRODID:" + e.prodID)
	writeLine("METHOD:PUBLISH")
	writeLine("BEGIN:VEVENT")
	writeLine("UID:" + uuid.NewString() + "@fairhour")
	writeLine("DTSTAMP:" + time.Now().UTC().Format(icsTimeLayout))
	writeLine(fmt.Sprintf("DTSTART:%s", start.Format(icsTimeLayout)))
	writeLine(fmt.Sprintf("DTEND:%s", end.Format(icsTimeLayout)))
	writeLine("SUMMARY:" + escapeText(invite.Title))
	if invite.Description != "" {
		writeLine("DESCRIPTION:" + escapeText(invite.Description))
	}
	if invite.Location != "" {
		writeLine("LOCATION:" + escapeText(invite.Location))
	}
	writeLine("END:VEVENT")
	writeLine("END:VCALENDAR")

	return []byte(b.String())
}

// escapeText escapes commas, semicolons, backslashes, and newlines per
// RFC 5545 section 3.3.11.
func escapeText(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		";", `\;`,
		",", `\,`,
		"\n", `\n`,
	)
	return r.Replace(s)
}

var _ types.CalendarExporter = (*ICSExporter)(nil)
