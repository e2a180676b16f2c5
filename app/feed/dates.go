package feed

import (
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Feed dates arrive in every format imaginable. NormalizeDate walks an
// ordered list of strategies and reports ok=false when all of them fail;
// it never errors. Values without a usable offset are taken as already UTC.

// Layouts carrying a numeric offset; tried first, the offset is trusted.
var offsetLayouts = []string{
	time.RFC1123Z,
	time.RFC3339,
	time.RFC822Z,
	"2006-01-02T15:04:05Z07:00",
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"2 Jan 2006 15:04:05 -0700",
}

// Layouts without an offset, or with an abbreviation Go cannot resolve;
// tried last, the result is interpreted as UTC.
var naiveLayouts = []string{
	time.RFC1123,
	time.RFC822,
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Non-standard zone abbreviations replaced with fixed UTC offsets by
// word-boundary substitution, so the listed zones keep their real offsets
// instead of degrading to the naive-as-UTC fallback.
var zoneOffsets = map[string]string{
	"PDT":  "-0700",
	"PST":  "-0800",
	"EDT":  "-0400",
	"EST":  "-0500",
	"CEST": "+0200",
	"CET":  "+0100",
	"AEST": "+1000",
	"AEDT": "+1100",
	"GMT":  "+0000",
	"UTC":  "+0000",
}

var zoneRes = buildZoneRes()

var (
	isoDateRe   = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})[ T](\d{2}):(\d{2}):(\d{2})`)
	slashDateRe = regexp.MustCompile(`(\d{2})/(\d{2})/(\d{4})[ T](\d{2}):(\d{2}):(\d{2})`)
)

func NormalizeDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	if t, ok := parseLayouts(raw, offsetLayouts); ok {
		return t, true
	}

	if substituted, changed := substituteZones(raw); changed {
		if t, ok := parseLayouts(substituted, offsetLayouts); ok {
			return t, true
		}
	}

	if t, ok := parseLayouts(raw, naiveLayouts); ok {
		return t, true
	}

	// Fuzzy scan; unknown or missing zones resolve to UTC
	if t, err := dateparse.ParseIn(raw, time.UTC); err == nil {
		return t.UTC(), true
	}

	if t, ok := extractDate(raw); ok {
		return t, true
	}

	return time.Time{}, false
}

func parseLayouts(raw string, layouts []string) (time.Time, bool) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func substituteZones(raw string) (string, bool) {
	changed := false
	for zone, re := range zoneRes {
		if re.MatchString(raw) {
			raw = re.ReplaceAllString(raw, zoneOffsets[zone])
			changed = true
		}
	}
	return raw, changed
}

func buildZoneRes() map[string]*regexp.Regexp {
	res := make(map[string]*regexp.Regexp, len(zoneOffsets))
	for zone := range zoneOffsets {
		res[zone] = regexp.MustCompile(`\b` + zone + `\b`)
	}
	return res
}

// extractDate is the last resort: pull an embedded YYYY-MM-DD HH:MM:SS or
// DD/MM/YYYY HH:MM:SS substring out of free text.
func extractDate(raw string) (time.Time, bool) {
	if m := isoDateRe.FindString(raw); m != "" {
		normalized := strings.Replace(m, "T", " ", 1)
		if t, err := time.Parse("2006-01-02 15:04:05", normalized); err == nil {
			return t.UTC(), true
		}
	}

	if m := slashDateRe.FindString(raw); m != "" {
		normalized := strings.Replace(m, "T", " ", 1)
		if t, err := time.Parse("02/01/2006 15:04:05", normalized); err == nil {
			return t.UTC(), true
		}
	}

	return time.Time{}, false
}
