package scraper

import (
	"context"
	"fmt"
	"time"
)

// growingFeed simulates an infinite-scroll feed of total logical items
// revealed perPass at a time. Fragments keep their tagged selector once
// assigned, like real nodes that survive in the DOM.
type growingFeed struct {
	total    int
	perPass  int
	revealed int

	makeHTML func(i int) string

	scrollCalls     int
	scrollErr       error
	fragErr         error
	fragCalls       int
	fragErrAfter    int
	captureErr      error
	captureErrTimes int
	capturePNG      []byte
	captureCalls    int
	waits           []time.Duration
	closed          bool
}

func newGrowingFeed(total, perPass int, makeHTML func(i int) string) *growingFeed {
	revealed := perPass
	if revealed > total {
		revealed = total
	}
	return &growingFeed{total: total, perPass: perPass, revealed: revealed, makeHTML: makeHTML}
}

func (g *growingFeed) Scroll(ctx context.Context) error {
	g.scrollCalls++
	if g.scrollErr != nil {
		return g.scrollErr
	}
	g.revealed += g.perPass
	if g.revealed > g.total {
		g.revealed = g.total
	}
	return nil
}

func (g *growingFeed) Metrics(ctx context.Context) (FeedMetrics, error) {
	return FeedMetrics{Height: int64(g.revealed) * 120, Count: g.revealed}, nil
}

func (g *growingFeed) Fragments(ctx context.Context) ([]Fragment, error) {
	g.fragCalls++
	if g.fragErr != nil && (g.fragErrAfter == 0 || g.fragCalls > g.fragErrAfter) {
		return nil, g.fragErr
	}
	frags := make([]Fragment, 0, g.revealed)
	for i := 0; i < g.revealed; i++ {
		frags = append(frags, Fragment{
			Selector: fmt.Sprintf(`article[data-bw-id="%d"]`, i+1),
			HTML:     g.makeHTML(i),
			Position: i,
		})
	}
	return frags, nil
}

func (g *growingFeed) Capture(ctx context.Context, f Fragment, timeout time.Duration) ([]byte, error) {
	g.captureCalls++
	if g.captureErr != nil && (g.captureErrTimes == 0 || g.captureCalls <= g.captureErrTimes) {
		return nil, g.captureErr
	}
	return g.capturePNG, nil
}

func (g *growingFeed) Wait(ctx context.Context, d time.Duration) error {
	g.waits = append(g.waits, d)
	return nil
}

func (g *growingFeed) Close() { g.closed = true }

// scriptedFeed plays back fixed fragment and metrics sequences, holding
// the last entry once the script runs out. It models virtualization:
// consecutive passes may surface the same logical item under a brand
// new node.
type scriptedFeed struct {
	passes  [][]Fragment
	metrics []FeedMetrics
	fi, mi  int
}

func (s *scriptedFeed) Scroll(ctx context.Context) error { return nil }

func (s *scriptedFeed) Metrics(ctx context.Context) (FeedMetrics, error) {
	i := s.mi
	if i >= len(s.metrics) {
		i = len(s.metrics) - 1
	}
	s.mi++
	return s.metrics[i], nil
}

func (s *scriptedFeed) Fragments(ctx context.Context) ([]Fragment, error) {
	i := s.fi
	if i >= len(s.passes) {
		i = len(s.passes) - 1
	}
	s.fi++
	return s.passes[i], nil
}

func (s *scriptedFeed) Capture(ctx context.Context, f Fragment, timeout time.Duration) ([]byte, error) {
	return nil, fmt.Errorf("capture not scripted")
}

func (s *scriptedFeed) Wait(ctx context.Context, d time.Duration) error { return nil }

func (s *scriptedFeed) Close() {}

func tweetFeedHTML(i int) string {
	return tweetFragment(int64(1000+i), "alice", fmt.Sprintf("tweet number %d", i), i).HTML
}

func repostFeedHTML(i int) string {
	return fmt.Sprintf(
		`<article data-testid="tweet">`+
			`<span data-testid="socialContext">Alice reposted</span>`+
			`<div data-testid="User-Name"><a href="/bob"><span>Bob</span></a></div>`+
			`<a href="/bob/status/%d"><time datetime="2024-06-01T12:00:00.000Z">Jun 1</time></a>`+
			`<div data-testid="tweetText">original post %d</div>`+
			`</article>`,
		2000+i, i)
}

func userCellHTML(i int) string {
	return fmt.Sprintf(
		`<button data-testid="UserCell">`+
			`<a href="/user%d"><span>User %d</span></a>`+
			`<div dir="auto">User %d</div>`+
			`<div dir="auto">@user%d</div>`+
			`<div dir="auto">bio of user %d</div>`+
			`</button>`,
		i, i, i, i, i)
}
