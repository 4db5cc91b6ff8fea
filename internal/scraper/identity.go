// SPDX-License-Identifier: AGPL-3.0-only
package scraper

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

var statusLinkRe = regexp.MustCompile(`/status/(\d+)`)

// Identify assigns a fragment its stable identity. Strategies are tried
// in order of resilience against DOM reflow: status permalink, then
// author plus timestamp, then a content hash, then a structural
// fingerprint for items carrying neither text nor time metadata.
func Identify(f Fragment) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(f.HTML))
	if err != nil {
		return structuralFingerprint(f)
	}
	if id := permalinkIdentity(doc); id != "" {
		return id
	}
	if id := authorTimeIdentity(doc); id != "" {
		return id
	}
	if id := contentHashIdentity(doc); id != "" {
		return id
	}
	return structuralFingerprint(f)
}

// ContentHash hashes the author and the whitespace-collapsed text of a
// fragment. Two distinct reposts of identical text without timestamps
// collide here; the dedup index silently merges them.
func ContentHash(f Fragment) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(f.HTML))
	if err != nil {
		return ""
	}
	return contentHashOf(doc)
}

func permalinkIdentity(doc *goquery.Document) string {
	out := ""
	doc.Find(`a[href*="/status/"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		if m := statusLinkRe.FindStringSubmatch(href); m != nil {
			out = m[1]
			return false
		}
		return true
	})
	return out
}

func authorTimeIdentity(doc *goquery.Document) string {
	author := authorOf(doc)
	if author == "" {
		return ""
	}
	raw := ""
	doc.Find("time[datetime]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		raw, _ = s.Attr("datetime")
		return false
	})
	if raw == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return author + "_" + t.UTC().Format("20060102T150405")
}

func contentHashIdentity(doc *goquery.Document) string {
	h := contentHashOf(doc)
	if h == "" {
		return ""
	}
	return "h_" + h
}

func contentHashOf(doc *goquery.Document) string {
	text := itemText(doc)
	if text == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(authorOf(doc) + "|" + text))
	return hex.EncodeToString(sum[:])[:16]
}

// structuralFingerprint is the last resort for media-only items: the
// fragment's ordinal position plus a digest of its tag skeleton.
func structuralFingerprint(f Fragment) string {
	skeleton := tagSkeleton(f.HTML)
	sum := sha256.Sum256([]byte(skeleton))
	return fmt.Sprintf("f_%d_%s", f.Position, hex.EncodeToString(sum[:])[:8])
}

var tagRe = regexp.MustCompile(`<([a-zA-Z][a-zA-Z0-9-]*)`)

func tagSkeleton(rawHTML string) string {
	tags := tagRe.FindAllStringSubmatch(rawHTML, -1)
	var b strings.Builder
	for _, m := range tags {
		b.WriteString(strings.ToLower(m[1]))
		b.WriteByte('>')
	}
	return b.String()
}

// authorOf finds the first profile link in the fragment, skipping
// permalink and hashtag style hrefs.
func authorOf(doc *goquery.Document) string {
	out := ""
	doc.Find(`a[href^="/"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		handle := strings.TrimPrefix(href, "/")
		if handle == "" || strings.Contains(handle, "/") || strings.HasPrefix(handle, "search?") {
			return true
		}
		out = handle
		return false
	})
	return out
}

// itemText prefers the dedicated text container and falls back to the
// full visible text of the fragment.
func itemText(doc *goquery.Document) string {
	if sel := doc.Find(`div[data-testid="tweetText"]`); sel.Length() > 0 {
		return collapseWhitespace(sel.First().Text())
	}
	htmlStr, err := doc.Html()
	if err != nil {
		return ""
	}
	return stripHTMLToText(htmlStr)
}
