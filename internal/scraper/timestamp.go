// SPDX-License-Identifier: AGPL-3.0-only
package scraper

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

var relativeTimeRe = regexp.MustCompile(`^(\d+)\s*(s|m|h|d)$`)

// Layouts seen on hover tooltips and permalink titles.
var titleLayouts = []string{
	"3:04 PM · Jan 2, 2006",
	"15:04 · Jan 2, 2006",
	"Jan 2, 2006",
}

var textLayouts = []string{
	"Jan 2, 2006",
	"2 Jan 2006",
}

// ResolveTimestamp normalizes whatever time metadata the fragment
// carries into RFC 3339. It never fails; a fragment with no usable
// time data resolves to the empty string.
func ResolveTimestamp(f Fragment) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(f.HTML))
	if err != nil {
		return ""
	}
	return resolveTimestampAt(doc, time.Now())
}

// resolveTimestampAtDoc is the parsed-document entry point used by the
// pipeline, which already holds a goquery document for the fragment.
func resolveTimestampAtDoc(doc *goquery.Document) string {
	return resolveTimestampAt(doc, time.Now())
}

func resolveTimestampAt(doc *goquery.Document, now time.Time) string {
	if ts := machineTimestamp(doc); ts != "" {
		return ts
	}
	if ts := titleTimestamp(doc); ts != "" {
		return ts
	}
	return visibleTimestamp(doc, now)
}

func machineTimestamp(doc *goquery.Document) string {
	out := ""
	doc.Find("time[datetime]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		raw, _ := s.Attr("datetime")
		t, err := time.Parse(time.RFC3339, strings.TrimSpace(raw))
		if err != nil {
			return true
		}
		out = t.UTC().Format(time.RFC3339)
		return false
	})
	return out
}

func titleTimestamp(doc *goquery.Document) string {
	out := ""
	doc.Find("time[title], a[title]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		raw, _ := s.Attr("title")
		if t, ok := parseClockDate(raw); ok {
			out = t.UTC().Format(time.RFC3339)
			return false
		}
		return true
	})
	return out
}

func visibleTimestamp(doc *goquery.Document, now time.Time) string {
	out := ""
	doc.Find("time, span").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := normalizeClockText(s.Text())
		if text == "" {
			return true
		}
		if m := relativeTimeRe.FindStringSubmatch(text); m != nil {
			n, _ := strconv.Atoi(m[1])
			var unit time.Duration
			switch m[2] {
			case "s":
				unit = time.Second
			case "m":
				unit = time.Minute
			case "h":
				unit = time.Hour
			case "d":
				unit = 24 * time.Hour
			}
			out = now.Add(-time.Duration(n) * unit).UTC().Format(time.RFC3339)
			return false
		}
		for _, layout := range textLayouts {
			if t, err := time.Parse(layout, text); err == nil {
				out = t.UTC().Format(time.RFC3339)
				return false
			}
		}
		// Month and day without a year, e.g. "Jun 5".
		if t, err := time.Parse("Jan 2", text); err == nil {
			out = t.AddDate(now.Year(), 0, 0).UTC().Format(time.RFC3339)
			return false
		}
		return true
	})
	return out
}

func parseClockDate(raw string) (time.Time, bool) {
	text := normalizeClockText(raw)
	if text == "" {
		return time.Time{}, false
	}
	for _, layout := range titleLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// normalizeClockText strips the narrow no-break spaces the web client
// inserts between clock digits and the AM/PM marker.
func normalizeClockText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.ReplaceAll(s, " ", " ")
	return collapseWhitespace(s)
}
