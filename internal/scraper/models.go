// SPDX-License-Identifier: AGPL-3.0-only
package scraper

import (
	"context"
	"errors"
	"time"
)

type FeedKind string

const (
	KindTweets    FeedKind = "tweets"
	KindRetweets  FeedKind = "retweets"
	KindFollowers FeedKind = "followers"
	KindFollowing FeedKind = "following"
)

// Stop reasons reported per feed in the final result.
const (
	ReasonLimit  = "limit reached"
	ReasonStall  = "stall detected"
	ReasonBudget = "time budget exceeded"
	ReasonError  = "feed error"
)

// ErrSessionUnavailable marks the shared browser session as unusable.
// It is the only error class that aborts a whole profile request.
var ErrSessionUnavailable = errors.New("browser session unavailable")

// Limits carries the per-request tunables threaded down from the config
// into each feed pipeline.
type Limits struct {
	MaxTweets         int
	MaxRetweets       int
	MaxFollowers      int
	MaxFollowing      int
	EnableScreenshots bool
	ScrollPause       time.Duration
	ScreenshotTimeout time.Duration
	FeedTimeBudget    time.Duration
}

func (l Limits) limitFor(kind FeedKind) int {
	switch kind {
	case KindTweets:
		return l.MaxTweets
	case KindRetweets:
		return l.MaxRetweets
	case KindFollowers:
		return l.MaxFollowers
	case KindFollowing:
		return l.MaxFollowing
	}
	return 0
}

type ExtractedItem struct {
	ID         string   `json:"id"`
	Kind       FeedKind `json:"kind"`
	Author     string   `json:"author,omitempty"`
	AuthorBio  string   `json:"author_bio,omitempty"`
	Content    string   `json:"content,omitempty"`
	Quoted     string   `json:"quoted_content,omitempty"`
	Timestamp  string   `json:"timestamp,omitempty"`
	Screenshot string   `json:"screenshot,omitempty"`
}

type FeedResult struct {
	Kind       FeedKind        `json:"kind"`
	Items      []ExtractedItem `json:"items"`
	Complete   bool            `json:"complete"`
	StopReason string          `json:"stop_reason"`
	Err        string          `json:"error,omitempty"`
}

type ProfileSummary struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Bio         string `json:"bio"`
	Followers   int    `json:"followers"`
	Following   int    `json:"following"`
	Posts       int    `json:"posts"`
}

type AggregateResult struct {
	Profile   ProfileSummary `json:"user_profile"`
	Tweets    FeedResult     `json:"tweets"`
	Retweets  FeedResult     `json:"retweets"`
	Followers FeedResult     `json:"followers"`
	Following FeedResult     `json:"following"`
	ScrapedAt time.Time      `json:"scraped_at"`
}

// Fragment is a short-lived handle to one item node surfaced during a
// scroll pass. The outerHTML snapshot is resolved immediately; the
// selector stays valid only while the tagged node survives in the DOM.
type Fragment struct {
	Selector string `json:"selector"`
	HTML     string `json:"html"`
	Position int    `json:"position"`
}

type FeedMetrics struct {
	Height int64 `json:"height"`
	Count  int   `json:"count"`
}

// FeedView is the page surface a pipeline drives. The browser package
// implements it on a dedicated tab; tests implement it in memory.
type FeedView interface {
	Scroll(ctx context.Context) error
	Metrics(ctx context.Context) (FeedMetrics, error)
	Fragments(ctx context.Context) ([]Fragment, error)
	Capture(ctx context.Context, f Fragment, timeout time.Duration) ([]byte, error)
	Wait(ctx context.Context, d time.Duration) error
	Close()
}

// ViewOpener hands out isolated feed views bound to one profile. Feed
// views from the same opener must never share scroll state.
type ViewOpener interface {
	OpenFeed(ctx context.Context, handle string, kind FeedKind) (FeedView, error)
	Profile(ctx context.Context, handle string) (ProfileSummary, error)
}
