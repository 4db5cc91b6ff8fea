package worker

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/fluffyriot/birdseye/internal/config"
	"github.com/fluffyriot/birdseye/internal/scraper"
)

// ErrBusy is returned when a scrape is requested while another one
// holds the browser.
var ErrBusy = errors.New("a scrape is already in progress")

// Worker serializes scrapes over the shared browser session and keeps
// the latest result per handle. An optional ticker re-scrapes the
// configured watchlist.
type Worker struct {
	Opener   scraper.ViewOpener
	Config   *config.AppConfig
	Ticker   *time.Ticker
	StopChan chan bool
	mu       sync.Mutex
	running  bool
	active   bool
	cache    map[string]*scraper.AggregateResult
}

func NewWorker(opener scraper.ViewOpener, cfg *config.AppConfig) *Worker {
	return &Worker{
		Opener:   opener,
		Config:   cfg,
		StopChan: make(chan bool),
		cache:    make(map[string]*scraper.AggregateResult),
	}
}

func (w *Worker) Start(interval time.Duration) {
	w.mu.Lock()
	if w.active {
		w.mu.Unlock()
		log.Println("Worker: Scheduler already active, use Restart to change interval")
		return
	}
	w.active = true
	w.mu.Unlock()

	w.Ticker = time.NewTicker(interval)
	go func() {
		defer func() {
			w.mu.Lock()
			w.active = false
			w.mu.Unlock()
		}()
		for {
			select {
			case <-w.Ticker.C:
				w.ScrapeAll()
			case <-w.StopChan:
				w.Ticker.Stop()
				return
			}
		}
	}()
	log.Printf("Background worker started with interval: %v", interval)
}

func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.active {
		w.mu.Unlock()
		log.Println("Worker: Scheduler not active")
		return
	}
	w.mu.Unlock()

	w.StopChan <- true
	log.Println("Background worker stopped")
}

func (w *Worker) Restart(interval time.Duration) {
	w.mu.Lock()
	isActive := w.active
	w.mu.Unlock()

	if isActive {
		w.Stop()
		time.Sleep(100 * time.Millisecond)
	}
	w.Start(interval)
}

func (w *Worker) IsActive() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.active
}

// ScrapeAll refreshes every watched handle in turn.
func (w *Worker) ScrapeAll() {
	for _, handle := range w.Config.Watchlist {
		if _, err := w.Scrape(context.Background(), handle); err != nil {
			log.Printf("Worker: watchlist scrape of %s failed: %v", handle, err)
		}
	}
}

// Scrape runs one full profile extraction. The browser is the single
// serialized resource: a second concurrent call gets ErrBusy instead of
// queueing.
func (w *Worker) Scrape(ctx context.Context, handle string) (*scraper.AggregateResult, error) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil, ErrBusy
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	result, err := scraper.ExtractProfile(ctx, w.Opener, handle, w.limits(), w.Config.ScreenshotsDir)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	w.cache[handle] = result
	w.mu.Unlock()
	return result, nil
}

// Cached returns the last collected result for a handle, if any.
func (w *Worker) Cached(handle string) (*scraper.AggregateResult, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	r, ok := w.cache[handle]
	return r, ok
}

func (w *Worker) limits() scraper.Limits {
	return scraper.Limits{
		MaxTweets:         w.Config.MaxTweets,
		MaxRetweets:       w.Config.MaxRetweets,
		MaxFollowers:      w.Config.MaxFollowers,
		MaxFollowing:      w.Config.MaxFollowing,
		EnableScreenshots: w.Config.EnableScreenshots,
		ScrollPause:       w.Config.ScrollPause,
		ScreenshotTimeout: w.Config.ScreenshotTimeout,
		FeedTimeBudget:    w.Config.FeedTimeBudget,
	}
}
