package calendar

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TZID is the single civil timezone all events are published in. The parks
// are one region; per-venue timezones are deliberately not supported.
const TZID = "America/New_York"

// Links carries the provider outputs for one descriptor. All four encode
// the same wall-clock digits; none is derived through UTC.
type Links struct {
	Google  string
	Outlook string
	Yahoo   string
	ICS     string
}

// Render produces the add-to-calendar URLs and the ICS document for d.
func Render(d *EventDescriptor) Links {
	start := compact(d.StartYear, d.StartMonth, d.StartDay, d.StartHours, d.StartMinutes)
	end := compact(d.EndYear, d.EndMonth, d.EndDay, d.EndHours, d.EndMinutes)

	g := url.Values{}
	g.Set("action", "TEMPLATE")
	g.Set("text", d.Title)
	g.Set("dates", start+"/"+end)
	g.Set("details", d.Description)
	g.Set("location", d.Location)
	g.Set("ctz", TZID)

	o := url.Values{}
	o.Set("path", "/calendar/action/compose")
	o.Set("rru", "addevent")
	o.Set("subject", d.Title)
	o.Set("startdt", extended(d.StartYear, d.StartMonth, d.StartDay, d.StartHours, d.StartMinutes))
	o.Set("enddt", extended(d.EndYear, d.EndMonth, d.EndDay, d.EndHours, d.EndMinutes))
	o.Set("body", d.Description)
	o.Set("location", d.Location)
	o.Set("ctz", TZID)

	y := url.Values{}
	y.Set("v", "60")
	y.Set("title", d.Title)
	y.Set("st", start)
	y.Set("et", end)
	y.Set("desc", d.Description)
	y.Set("in_loc", d.Location)
	y.Set("ctz", TZID)

	return Links{
		Google:  "https://calendar.google.com/calendar/render?" + g.Encode(),
		Outlook: "https://outlook.live.com/calendar/0/deeplink/compose?" + o.Encode(),
		Yahoo:   "https://calendar.yahoo.com/?" + y.Encode(),
		ICS:     BuildICS(d),
	}
}

// BuildICS renders a VCALENDAR with an explicit VTIMEZONE so the event's
// DTSTART/DTEND can stay TZID-qualified local digits. Never the UTC 'Z'
// form: that would shift what the user sees depending on their client.
func BuildICS(d *EventDescriptor) string {
	start := compact(d.StartYear, d.StartMonth, d.StartDay, d.StartHours, d.StartMinutes)
	end := compact(d.EndYear, d.EndMonth, d.EndDay, d.EndHours, d.EndMinutes)

	var b bytes.Buffer
	b.WriteString("BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//EncoreLando//Concert Calendar//EN\r\n")
	b.WriteString("CALSCALE:GREGORIAN\r\nMETHOD:PUBLISH\r\n")
	b.WriteString(vtimezone)
	b.WriteString("BEGIN:VEVENT\r\n")
	b.WriteString("UID:" + uuid.NewString() + "@encorelando.com\r\n")
	b.WriteString("DTSTAMP:" + time.Now().UTC().Format("20060102T150405Z") + "\r\n")
	b.WriteString("DTSTART;TZID=" + TZID + ":" + start + "\r\n")
	b.WriteString("DTEND;TZID=" + TZID + ":" + end + "\r\n")
	b.WriteString("SUMMARY:" + escapeICS(d.Title) + "\r\n")
	if d.Description != "" {
		b.WriteString("DESCRIPTION:" + escapeICS(d.Description) + "\r\n")
	}
	if d.Location != "" {
		b.WriteString("LOCATION:" + escapeICS(d.Location) + "\r\n")
	}
	if d.URL != "" {
		b.WriteString("URL:" + escapeICS(d.URL) + "\r\n")
	}
	b.WriteString("END:VEVENT\r\n")
	b.WriteString("END:VCALENDAR\r\n")
	return b.String()
}

// Fixed Eastern US transition rules: DST starts the second Sunday of March,
// ends the first Sunday of November.
const vtimezone = "BEGIN:VTIMEZONE\r\n" +
	"TZID:" + TZID + "\r\n" +
	"X-LIC-LOCATION:" + TZID + "\r\n" +
	"BEGIN:DAYLIGHT\r\n" +
	"TZOFFSETFROM:-0500\r\n" +
	"TZOFFSETTO:-0400\r\n" +
	"TZNAME:EDT\r\n" +
	"DTSTART:19700308T020000\r\n" +
	"RRULE:FREQ=YEARLY;BYMONTH=3;BYDAY=2SU\r\n" +
	"END:DAYLIGHT\r\n" +
	"BEGIN:STANDARD\r\n" +
	"TZOFFSETFROM:-0400\r\n" +
	"TZOFFSETTO:-0500\r\n" +
	"TZNAME:EST\r\n" +
	"DTSTART:19701101T020000\r\n" +
	"RRULE:FREQ=YEARLY;BYMONTH=11;BYDAY=1SU\r\n" +
	"END:STANDARD\r\n" +
	"END:VTIMEZONE\r\n"

func compact(y, mo, da, h, mi int) string {
	return fmt.Sprintf("%04d%02d%02dT%02d%02d00", y, mo, da, h, mi)
}

func extended(y, mo, da, h, mi int) string {
	return fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:00", y, mo, da, h, mi)
}

func escapeICS(s string) string {
	repl := strings.NewReplacer("\\", "\\\\", ";", "\\;", ",", "\\,", "\n", "\\n", "\r", "")
	return repl.Replace(s)
}

// ICSFilename turns an event title into a safe download filename.
func ICSFilename(title string) string {
	ok := make([]rune, 0, len(title))
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			ok = append(ok, r)
		} else {
			ok = append(ok, '-')
		}
	}
	name := strings.Trim(string(ok), "-")
	for strings.Contains(name, "--") {
		name = strings.ReplaceAll(name, "--", "-")
	}
	if name == "" {
		name = "event"
	}
	return name + ".ics"
}
