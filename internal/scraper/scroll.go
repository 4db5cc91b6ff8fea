// SPDX-License-Identifier: AGPL-3.0-only
package scraper

import (
	"context"
	"log"
	"time"
)

// A pass counts as stable when neither feed height nor visible item
// count moved; three in a row signal end-of-feed or a load stall.
const maxStablePasses = 3

// Extra render time granted per consecutive stable pass before giving
// up on the feed.
const stallPauseStep = 500 * time.Millisecond

type ScrollState struct {
	LastHeight   int64
	LastCount    int
	StablePasses int
	Started      time.Time
	Collected    int
}

func NewScrollState() *ScrollState {
	return &ScrollState{Started: time.Now()}
}

func (s *ScrollState) Elapsed() time.Duration {
	return time.Since(s.Started)
}

type scrollController struct {
	view   FeedView
	pause  time.Duration
	budget time.Duration
	limit  int
}

// Advance checks the stop conditions, then performs one scroll pass:
// scroll, pause for the virtualized content to render, re-measure.
// It returns false with the stop reason once the feed is exhausted,
// bounded out, or broken; a scroll failure is reported as a reason
// rather than propagated so the pipeline can keep its partial result.
func (c *scrollController) Advance(ctx context.Context, st *ScrollState) (bool, string, error) {
	switch {
	case st.Collected >= c.limit:
		return false, ReasonLimit, nil
	case c.budget > 0 && st.Elapsed() >= c.budget:
		return false, ReasonBudget, nil
	case st.StablePasses >= maxStablePasses:
		return false, ReasonStall, nil
	}

	if err := c.view.Scroll(ctx); err != nil {
		log.Printf("Scroll: pass failed: %v", err)
		return false, ReasonError, err
	}

	if err := c.view.Wait(ctx, c.pauseFor(st)); err != nil {
		return false, ReasonError, err
	}

	m, err := c.view.Metrics(ctx)
	if err != nil {
		log.Printf("Scroll: measuring feed failed: %v", err)
		return false, ReasonError, err
	}

	if m.Height == st.LastHeight && m.Count == st.LastCount {
		st.StablePasses++
	} else {
		st.StablePasses = 0
	}
	st.LastHeight = m.Height
	st.LastCount = m.Count

	return true, "", nil
}

// pauseFor adapts the render pause: base speed while the feed grows,
// progressively longer once passes start coming back unchanged.
func (c *scrollController) pauseFor(st *ScrollState) time.Duration {
	return c.pause + time.Duration(st.StablePasses)*stallPauseStep
}
