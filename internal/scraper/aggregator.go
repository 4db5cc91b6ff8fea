// SPDX-License-Identifier: AGPL-3.0-only
package scraper

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

var allKinds = []FeedKind{KindTweets, KindRetweets, KindFollowers, KindFollowing}

// ExtractProfile reads the profile header, then runs one pipeline per
// feed kind, each on its own isolated view. A degraded feed is reported
// in place; only a dead session aborts the whole request.
func ExtractProfile(ctx context.Context, opener ViewOpener, handle string, limits Limits, screenshotsDir string) (*AggregateResult, error) {
	profile, err := opener.Profile(ctx, handle)
	if err != nil {
		return nil, fmt.Errorf("%w: reading profile %s: %v", ErrSessionUnavailable, handle, err)
	}

	results := make(map[FeedKind]FeedResult, len(allKinds))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, kind := range allKinds {
		wg.Add(1)
		go func(kind FeedKind) {
			defer wg.Done()
			r := runFeed(ctx, opener, handle, kind, limits, screenshotsDir)
			mu.Lock()
			results[kind] = r
			mu.Unlock()
		}(kind)
	}
	wg.Wait()

	return &AggregateResult{
		Profile:   profile,
		Tweets:    results[KindTweets],
		Retweets:  results[KindRetweets],
		Followers: results[KindFollowers],
		Following: results[KindFollowing],
		ScrapedAt: time.Now().UTC(),
	}, nil
}

func runFeed(ctx context.Context, opener ViewOpener, handle string, kind FeedKind, limits Limits, screenshotsDir string) FeedResult {
	if limits.limitFor(kind) <= 0 {
		return FeedResult{Kind: kind, Items: []ExtractedItem{}, Complete: true, StopReason: ReasonLimit}
	}

	view, err := opener.OpenFeed(ctx, handle, kind)
	if err != nil {
		log.Printf("Aggregator: opening %s feed for %s failed: %v", kind, handle, err)
		return FeedResult{Kind: kind, Items: []ExtractedItem{}, StopReason: ReasonError, Err: err.Error()}
	}
	defer view.Close()

	var shots *Capturer
	if limits.EnableScreenshots && screenshotsDir != "" {
		shots = NewCapturer(screenshotsDir, handle, limits.ScreenshotTimeout)
	}

	return NewPipeline(kind, view, limits, shots).Run(ctx)
}
