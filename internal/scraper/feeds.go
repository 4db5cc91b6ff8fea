// SPDX-License-Identifier: AGPL-3.0-only
package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// feedSpec binds a feed kind to its page path, the selector the view
// tags items with, and the kind-specific parsing of one fragment.
type feedSpec struct {
	path         string
	itemSelector string
	screenshots  bool
	match        func(doc *goquery.Document) bool
	parse        func(doc *goquery.Document, item *ExtractedItem)
}

const (
	timelineItemSelector = `article[data-testid="tweet"]`
	userCellSelector     = `button[data-testid="UserCell"]`
)

// FeedPath is the profile-relative path a kind's view navigates to.
// Tweets and retweets both walk the main timeline; retweets are the
// items carrying a repost social context.
func FeedPath(kind FeedKind) string {
	return specFor(kind).path
}

// ItemSelector is the per-kind selector the view uses to tag and
// collect fragments.
func ItemSelector(kind FeedKind) string {
	return specFor(kind).itemSelector
}

func specFor(kind FeedKind) feedSpec {
	switch kind {
	case KindTweets:
		return feedSpec{
			path:         "/%s",
			itemSelector: timelineItemSelector,
			screenshots:  true,
			match:        func(doc *goquery.Document) bool { return !isRepost(doc) },
			parse:        parseTimelineItem,
		}
	case KindRetweets:
		return feedSpec{
			path:         "/%s",
			itemSelector: timelineItemSelector,
			screenshots:  true,
			match:        isRepost,
			parse:        parseTimelineItem,
		}
	case KindFollowers:
		return feedSpec{
			path:         "/%s/followers",
			itemSelector: userCellSelector,
			match:        func(*goquery.Document) bool { return true },
			parse:        parseUserCell,
		}
	case KindFollowing:
		return feedSpec{
			path:         "/%s/following",
			itemSelector: userCellSelector,
			match:        func(*goquery.Document) bool { return true },
			parse:        parseUserCell,
		}
	}
	return feedSpec{path: "/%s", itemSelector: timelineItemSelector, match: func(*goquery.Document) bool { return false }}
}

func isRepost(doc *goquery.Document) bool {
	ctxText := doc.Find(`span[data-testid="socialContext"]`).Text()
	ctxText = strings.ToLower(ctxText)
	return strings.Contains(ctxText, "reposted") || strings.Contains(ctxText, "retweeted")
}

func parseTimelineItem(doc *goquery.Document, item *ExtractedItem) {
	item.Author = authorOf(doc)
	texts := doc.Find(`div[data-testid="tweetText"]`)
	if texts.Length() > 0 {
		item.Content = collapseWhitespace(texts.First().Text())
	} else {
		item.Content = itemText(doc)
	}
	// A second text container inside a timeline article is the quoted
	// tweet's body.
	if texts.Length() > 1 {
		item.Quoted = collapseWhitespace(texts.Eq(1).Text())
	}
}

func parseUserCell(doc *goquery.Document, item *ExtractedItem) {
	item.Author = authorOf(doc)

	// The cell stacks display name, @handle, follow state and bio; the
	// last text block that is neither the handle nor a button label is
	// the bio.
	doc.Find(`div[dir="auto"]`).Each(func(_ int, s *goquery.Selection) {
		text := collapseWhitespace(s.Text())
		if text == "" || strings.HasPrefix(text, "@") {
			return
		}
		if strings.EqualFold(text, "follow") || strings.EqualFold(text, "following") {
			return
		}
		if item.Content == "" {
			item.Content = text
			return
		}
		item.AuthorBio = text
	})
}
