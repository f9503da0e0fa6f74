package ical

import (
	"regexp"
	"strings"

	"github.com/unionhall/leavehub/modules/leave/domain/aggregates/request"
)

// ParsedSummary is the structured form of one calendar entry's SUMMARY line.
type ParsedSummary struct {
	FirstName    string
	LastName     string
	LeaveType    request.Type
	IsWaitlisted bool
	// OriginalMonthDay is the literal "M/D" fragment of a "denied req"
	// suffix, empty when the entry is not waitlisted.
	OriginalMonthDay string
}

var (
	dashRunRe  = regexp.MustCompile(`-+`)
	dashPadRe  = regexp.MustCompile(`\s*-\s*`)
	deniedRe   = regexp.MustCompile(`(?i)\bdenied\s+req\.?\s+(\d{1,2}/\d{1,2})\s*$`)
	typeWordRe = regexp.MustCompile(`(?i)\b(PLD|SDV)\b`)

	// The name grammars, tried in fixed precedence order. First hit wins;
	// there is no scoring between patterns.
	singleTokenRe = regexp.MustCompile(`(?i)^([A-Za-z][A-Za-z'.]*)(?: - | )(PLD|SDV)$`)
	commaRe       = regexp.MustCompile(`(?i)^([^,]+?)\s*,\s*([A-Za-z'. ]+?)(?: - | )(PLD|SDV)$`)
	twoTokenRe    = regexp.MustCompile(`(?i)^([A-Za-z'.]+) ([A-Za-z'.]+)(?: - | )(PLD|SDV)$`)
	initialRe     = regexp.MustCompile(`(?i)^([A-Za-z])\. ([A-Za-z'.]+)(?: - | )(PLD|SDV)$`)
	initialTokRe  = regexp.MustCompile(`^[A-Za-z]\.?$`)
)

// ParseSummary extracts the member name, leave type and waitlist marker from
// one SUMMARY line. It returns nil when no known pattern applies; the caller
// logs and skips such entries. A single bare name token is always a last
// name; the legacy calendars predominantly used last-name-only entries.
func ParseSummary(raw string) *ParsedSummary {
	s := normalizeSummary(raw)
	if s == "" {
		return nil
	}

	out := &ParsedSummary{}
	if m := deniedRe.FindStringSubmatch(s); m != nil {
		out.IsWaitlisted = true
		out.OriginalMonthDay = m[1]
		s = strings.TrimSpace(s[:len(s)-len(m[0])])
		s = strings.TrimRight(s, "- ")
		s = strings.TrimSpace(s)
	}

	if !typeWordRe.MatchString(s) {
		return nil
	}

	// 1. Bare token plus leave type: "FORD - SDV", "FORD SDV".
	if m := singleTokenRe.FindStringSubmatch(s); m != nil {
		out.LastName = m[1]
		out.LeaveType = canonicalType(m[2])
		return out
	}

	// 2. "Last, First PLD". The comma makes the split unambiguous.
	if m := commaRe.FindStringSubmatch(s); m != nil {
		out.LastName = strings.TrimSpace(m[1])
		out.FirstName = strings.TrimSpace(m[2])
		out.LeaveType = canonicalType(m[3])
		return out
	}

	// 3. "First Last PLD", two plain tokens. An initial-dot first token
	// falls through to pattern 4.
	if m := twoTokenRe.FindStringSubmatch(s); m != nil && !initialTokRe.MatchString(m[1]) {
		out.FirstName = m[1]
		out.LastName = m[2]
		out.LeaveType = canonicalType(m[3])
		return out
	}

	// 4. "J. Smith PLD".
	if m := initialRe.FindStringSubmatch(s); m != nil {
		out.FirstName = m[1]
		out.LastName = m[2]
		out.LeaveType = canonicalType(m[3])
		return out
	}

	// 5. Generic token scan: locate the leave type anywhere and apply the
	// same heuristics to whatever surrounds it.
	return parseFallback(s, out)
}

func parseFallback(s string, out *ParsedSummary) *ParsedSummary {
	loc := typeWordRe.FindStringIndex(s)
	if loc == nil {
		return nil
	}
	out.LeaveType = canonicalType(s[loc[0]:loc[1]])
	remainder := strings.TrimSpace(s[:loc[0]] + " " + s[loc[1]:])
	remainder = strings.Trim(remainder, "- ")
	if remainder == "" {
		return nil
	}

	if before, after, found := strings.Cut(remainder, ","); found {
		out.LastName = strings.TrimSpace(strings.Trim(before, "- "))
		firstTokens := nameTokens(after)
		if len(firstTokens) > 0 {
			out.FirstName = firstTokens[0]
		}
		if out.LastName == "" {
			return nil
		}
		return out
	}

	tokens := nameTokens(remainder)
	switch {
	case len(tokens) == 0:
		return nil
	case len(tokens) == 1:
		out.LastName = tokens[0]
	case initialTokRe.MatchString(tokens[0]):
		out.FirstName = strings.TrimSuffix(tokens[0], ".")
		out.LastName = strings.Join(tokens[1:], " ")
	case len(tokens) == 2:
		out.FirstName = tokens[0]
		out.LastName = tokens[1]
	default:
		out.FirstName = tokens[0]
		out.LastName = strings.Join(tokens[1:], " ")
	}
	return out
}

// normalizeSummary collapses runs of dashes and whitespace so inconsistent
// legacy formatting ("FORD--SDV", "Ford  -SDV") all reads "FORD - SDV".
func normalizeSummary(raw string) string {
	s := dashRunRe.ReplaceAllString(raw, "-")
	s = strings.Join(strings.Fields(s), " ")
	s = dashPadRe.ReplaceAllString(s, " - ")
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "-")
	return strings.TrimSpace(s)
}

func nameTokens(s string) []string {
	fields := strings.Fields(s)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, "-, ")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

func canonicalType(s string) request.Type {
	if strings.EqualFold(s, string(request.TypeSDV)) {
		return request.TypeSDV
	}
	return request.TypePLD
}
