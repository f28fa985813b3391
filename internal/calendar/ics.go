// Package calendar renders due-dated tasks as a minimal ICS document.
package calendar

import (
	"strings"
	"time"
	"unicode"
)

const (
	lineEnd      = "\n"
	dateStampFmt = "20060102"
)

// Event is one VEVENT block.
type Event struct {
	Summary string
	Start   time.Time
}

// Document is an immutable rendered calendar.
type Document struct {
	body   string
	events int
}

// Build renders events in the given order. Only the calendar date of Start
// is kept; it is always written as midnight UTC.
func Build(events []Event) Document {
	var b strings.Builder
	b.WriteString("BEGIN:VCALENDAR" + lineEnd)
	for _, ev := range events {
		b.WriteString("BEGIN:VEVENT" + lineEnd)
		b.WriteString("SUMMARY:" + EscapeText(ev.Summary) + lineEnd)
		b.WriteString("DTSTART:" + ev.Start.UTC().Format(dateStampFmt) + "T000000Z" + lineEnd)
		b.WriteString("END:VEVENT" + lineEnd)
	}
	b.WriteString("END:VCALENDAR" + lineEnd)
	return Document{body: b.String(), events: len(events)}
}

// EscapeText encodes s as an RFC 5545 TEXT value so it stays on one content
// line. Backslash, semicolon and comma are escaped, line breaks become \n and
// other control characters are dropped.
func EscapeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	s = strings.ReplaceAll(s, "\r\n", "\n")
	for _, r := range s {
		switch r {
		case '\\', ';', ',':
			b.WriteByte('\\')
			b.WriteRune(r)
		case '\n', '\r':
			b.WriteString(`\n`)
		default:
			if unicode.IsControl(r) {
				continue
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (d Document) String() string { return d.body }

func (d Document) Bytes() []byte { return []byte(d.body) }

func (d Document) EventCount() int { return d.events }

// Empty reports whether the document carries no events.
func (d Document) Empty() bool { return d.events == 0 }
