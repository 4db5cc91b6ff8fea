package scraper

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tweetFragment(statusID int64, author, text string, pos int) Fragment {
	html := fmt.Sprintf(
		`<article data-testid="tweet">`+
			`<div data-testid="User-Name"><a href="/%s"><span>%s</span></a></div>`+
			`<a href="/%s/status/%d"><time datetime="2024-06-01T12:00:00.000Z">Jun 1</time></a>`+
			`<div data-testid="tweetText">%s</div>`+
			`</article>`,
		author, author, author, statusID, text)
	return Fragment{Selector: fmt.Sprintf(`article[data-bw-id="%d"]`, pos), HTML: html, Position: pos}
}

func TestIdentifyPermalinkWins(t *testing.T) {
	f := tweetFragment(1784312345678901234, "alice", "morning all", 0)
	assert.Equal(t, "1784312345678901234", Identify(f))
}

func TestIdentifyAuthorTimestampFallback(t *testing.T) {
	f := Fragment{
		HTML: `<article data-testid="tweet">` +
			`<a href="/bob"><span>Bob</span></a>` +
			`<time datetime="2024-06-01T12:30:00.000Z">Jun 1</time>` +
			`<div data-testid="tweetText">no permalink here</div>` +
			`</article>`,
	}
	assert.Equal(t, "bob_20240601T123000", Identify(f))
}

func TestIdentifyContentHashFallback(t *testing.T) {
	f := Fragment{
		HTML: `<article data-testid="tweet">` +
			`<a href="/carol"><span>Carol</span></a>` +
			`<div data-testid="tweetText">  spaced    out   text </div>` +
			`</article>`,
	}
	id := Identify(f)
	require.True(t, len(id) > 2)
	assert.Equal(t, "h_", id[:2])

	// Whitespace differences must not change the hash.
	g := Fragment{
		HTML: `<article data-testid="tweet">` +
			`<a href="/carol"><span>Carol</span></a>` +
			`<div data-testid="tweetText">spaced out text</div>` +
			`</article>`,
	}
	assert.Equal(t, id, Identify(g))
}

func TestIdentifyStructuralFingerprintLastResort(t *testing.T) {
	f := Fragment{
		HTML:     `<article data-testid="tweet"><div><img src="x.jpg"></div></article>`,
		Position: 7,
	}
	id := Identify(f)
	assert.Contains(t, id, "f_7_")
}

func TestIdentifyIdempotent(t *testing.T) {
	frags := []Fragment{
		tweetFragment(99, "alice", "hello", 0),
		{HTML: `<article><a href="/bob"></a><time datetime="2024-06-01T12:00:00Z"></time></article>`},
		{HTML: `<article><a href="/x"></a><div data-testid="tweetText">t</div></article>`},
		{HTML: `<article><img></article>`, Position: 3},
	}
	for _, f := range frags {
		assert.Equal(t, Identify(f), Identify(f))
	}
}

func TestIdentifySurvivesVirtualizationRerender(t *testing.T) {
	// The same logical post observed in two scroll passes under
	// different physical nodes must resolve to the same identity.
	first := tweetFragment(555, "alice", "same post", 2)
	second := tweetFragment(555, "alice", "same post", 14)
	second.Selector = `article[data-bw-id="99"]`
	assert.Equal(t, Identify(first), Identify(second))
}

func TestContentHashEmptyForTextlessFragment(t *testing.T) {
	f := Fragment{HTML: `<article><img src="pic.jpg"></article>`}
	assert.Equal(t, "", ContentHash(f))
}

func TestAuthorOfSkipsNestedAndSearchLinks(t *testing.T) {
	f := Fragment{
		HTML: `<article>` +
			`<a href="/search?q=x">search</a>` +
			`<a href="/dave/photo">nested</a>` +
			`<a href="/dave">Dave</a>` +
			`<time datetime="2024-06-01T12:00:00Z">Jun 1</time>` +
			`</article>`,
	}
	assert.Equal(t, "dave_20240601T120000", Identify(f))
}
