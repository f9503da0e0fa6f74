package ical

import (
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/unionhall/leavehub/modules/leave/domain/aggregates/request"
)

// CandidateRequest is one parsed calendar entry, immutable once parsed.
// OriginalRequestDate is reconstructed only for waitlisted entries, from the
// "denied req M/D" fragment plus the entry's creation year; it is best-effort
// and may be nil.
type CandidateRequest struct {
	FirstName           string
	LastName            string
	LeaveType           request.Type
	RequestDate         time.Time
	IsWaitlisted        bool
	OriginalRequestDate *time.Time
	CreatedAt           time.Time
}

// SkippedEntry records a calendar entry the parser could not turn into a
// candidate; surfaced to the admin as an audit warning, never as an error.
type SkippedEntry struct {
	Summary string
	Reason  string
}

type ParseResult struct {
	Candidates []*CandidateRequest
	Skipped    []SkippedEntry
}

type event struct {
	summary string
	dtstart time.Time
	created time.Time
}

// ParseCalendar parses a whole iCal export. Entries whose start date falls
// outside targetYear are silently dropped; entries with unparseable
// summaries are collected in Skipped. Nothing here fails the whole file.
func ParseCalendar(content string, targetYear int, log *logrus.Logger) *ParseResult {
	result := &ParseResult{
		Candidates: make([]*CandidateRequest, 0),
		Skipped:    make([]SkippedEntry, 0),
	}

	for _, ev := range parseEvents(content) {
		if ev.dtstart.IsZero() {
			result.Skipped = append(result.Skipped, SkippedEntry{
				Summary: ev.summary,
				Reason:  "missing or unparseable DTSTART",
			})
			continue
		}
		if targetYear != 0 && ev.dtstart.Year() != targetYear {
			if log != nil {
				log.Debugf("ical: dropping entry %q outside target year %d", ev.summary, targetYear)
			}
			continue
		}

		parsed := ParseSummary(ev.summary)
		if parsed == nil {
			if log != nil {
				log.Warnf("ical: no pattern matched summary %q, skipping", ev.summary)
			}
			result.Skipped = append(result.Skipped, SkippedEntry{
				Summary: ev.summary,
				Reason:  "no name pattern matched",
			})
			continue
		}

		candidate := &CandidateRequest{
			FirstName:    parsed.FirstName,
			LastName:     parsed.LastName,
			LeaveType:    parsed.LeaveType,
			RequestDate:  ev.dtstart,
			IsWaitlisted: parsed.IsWaitlisted,
			CreatedAt:    ev.created,
		}
		if parsed.IsWaitlisted && parsed.OriginalMonthDay != "" {
			candidate.OriginalRequestDate = reconstructOriginalDate(parsed.OriginalMonthDay, ev.created, ev.dtstart)
		}
		result.Candidates = append(result.Candidates, candidate)
	}

	return result
}

// parseEvents walks VEVENT blocks, unfolding continuation lines first.
// Property names are matched case-insensitively and parameters after ';'
// are ignored.
func parseEvents(content string) []event {
	lines := unfoldLines(content)
	events := make([]event, 0)

	var current *event
	for _, line := range lines {
		name, value := splitProperty(line)
		switch name {
		case "BEGIN":
			if strings.EqualFold(value, "VEVENT") {
				current = &event{}
			}
		case "END":
			if strings.EqualFold(value, "VEVENT") && current != nil {
				events = append(events, *current)
				current = nil
			}
		case "SUMMARY":
			if current != nil {
				current.summary = value
			}
		case "DTSTART":
			if current != nil {
				current.dtstart = parseICalDate(value)
			}
		case "CREATED":
			if current != nil {
				current.created = parseICalDate(value)
			}
		}
	}
	return events
}

func unfoldLines(content string) []string {
	raw := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if len(line) > 0 && (line[0] == ' ' || line[0] == '\t') && len(lines) > 0 {
			lines[len(lines)-1] += line[1:]
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func splitProperty(line string) (name, value string) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return "", ""
	}
	name = line[:idx]
	value = line[idx+1:]
	if paramIdx := strings.Index(name, ";"); paramIdx >= 0 {
		name = name[:paramIdx]
	}
	return strings.ToUpper(strings.TrimSpace(name)), strings.TrimSpace(value)
}

var icalDateLayouts = []string{
	"20060102T150405Z",
	"20060102T150405",
	"20060102",
}

func parseICalDate(value string) time.Time {
	for _, layout := range icalDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

// reconstructOriginalDate turns a "M/D" fragment into a date using the
// entry's creation year, falling back to the request date's year when the
// export carries no CREATED stamp.
func reconstructOriginalDate(monthDay string, created, dtstart time.Time) *time.Time {
	monthStr, dayStr, found := strings.Cut(monthDay, "/")
	if !found {
		return nil
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil || month < 1 || month > 12 {
		return nil
	}
	day, err := strconv.Atoi(dayStr)
	if err != nil || day < 1 || day > 31 {
		return nil
	}

	year := created.Year()
	if created.IsZero() {
		year = dtstart.Year()
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// Reject constructions that rolled over (e.g. 2/30).
	if int(t.Month()) != month || t.Day() != day {
		return nil
	}
	return &t
}
