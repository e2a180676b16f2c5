package feed

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"html"
	"regexp"
	"sort"
	"strings"
	"time"
)

// Character budget for each member description inside a digest.
const digestDescriptionLimit = 200

var markupRe = regexp.MustCompile(`<[^>]*>`)

// NewDigestItem synthesizes one digest entry from a contiguous same-day run
// of failed items, given in descending pub date order (oldest last).
//
// The GUID is content-addressed: identical membership reproduces the same
// GUID on every run, any membership change produces a different one.
// Midnight UTC as the pub date keeps digests sorted after same-day full
// items.
func NewDigestItem(day time.Time, members []Item) DigestItem {
	day = startOfDay(day)

	var b strings.Builder
	for _, member := range members {
		b.WriteString(fmt.Sprintf(`<a href="%s">%s</a>`,
			html.EscapeString(member.Link),
			html.EscapeString(member.Title)))
		b.WriteString(truncateDescription(member.Description, digestDescriptionLimit))
	}

	return DigestItem{
		GUID:        digestGUID(day, members),
		Title:       fmt.Sprintf("Daily Digest for %s", day.Format("2 January 2006")),
		Description: b.String(),
		PublishedAt: day,
		Items:       members,
	}
}

func digestGUID(day time.Time, members []Item) string {
	guids := make([]string, 0, len(members))
	for _, member := range members {
		guids = append(guids, member.GUID)
	}
	sort.Strings(guids)

	hash := sha256.Sum256([]byte(strings.Join(guids, "|")))
	return fmt.Sprintf("daily-digest-%s-%s", day.Format("2006-01-02"), hex.EncodeToString(hash[:])[:12])
}

// truncateDescription strips markup before truncating so a cut never lands
// mid-tag.
func truncateDescription(description string, limit int) string {
	stripped := markupRe.ReplaceAllString(description, " ")
	stripped = strings.Join(strings.Fields(stripped), " ")

	runes := []rune(stripped)
	if len(runes) <= limit {
		return stripped
	}
	return string(runes[:limit]) + "..."
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
