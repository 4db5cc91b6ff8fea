// SPDX-License-Identifier: AGPL-3.0-only
package browser

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/fluffyriot/birdseye/internal/scraper"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

const profileBaseURL = "https://x.com"

type Config struct {
	Headless   bool
	UserAgent  string
	CookiesDir string
	NavTimeout time.Duration
}

// Session owns the shared exec allocator. Every feed pipeline gets its
// own tab from it, so scroll state and DOM queries never race between
// pipelines.
type Session struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	cfg         Config
}

func NewSession(ctx context.Context, cfg Config) *Session {
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.NavTimeout <= 0 {
		cfg.NavTimeout = 30 * time.Second
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(cfg.UserAgent),
		chromedp.WindowSize(1920, 1080),
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("enable-automation", false),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("no-default-browser-check", true),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	return &Session{allocCtx: allocCtx, allocCancel: allocCancel, cfg: cfg}
}

func (s *Session) Close() {
	s.allocCancel()
}

// newTab opens an isolated browsing context, spoofs the webdriver
// flag and injects any saved cookies for the handle.
func (s *Session) newTab(handle string) (context.Context, context.CancelFunc, error) {
	tab, cancel := chromedp.NewContext(s.allocCtx)

	actions := []chromedp.Action{
		chromedp.ActionFunc(func(ctx context.Context) error {
			var res []byte
			return chromedp.Evaluate(`Object.defineProperty(navigator, 'webdriver', {get: () => undefined})`, &res).Do(ctx)
		}),
	}

	cookies, err := LoadCookies(s.cfg.CookiesDir, handle)
	if err == nil && len(cookies) > 0 {
		actions = append(actions, chromedp.ActionFunc(func(ctx context.Context) error {
			for _, cookie := range cookies {
				err := network.SetCookie(cookie.Name, cookie.Value).
					WithDomain(cookie.Domain).
					WithPath(cookie.Path).
					WithSecure(cookie.Secure).
					WithHTTPOnly(cookie.HTTPOnly).
					WithSameSite(cookie.SameSite).
					Do(ctx)
				if err != nil {
					return err
				}
			}
			return nil
		}))
	}

	if err := chromedp.Run(tab, actions...); err != nil {
		cancel()
		return nil, nil, fmt.Errorf("preparing tab: %w", err)
	}
	return tab, cancel, nil
}

// navigate loads a profile page and fails on the login wall. A redirect
// to the login flow means the whole session is unusable, not just this
// feed.
func (s *Session) navigate(tab context.Context, url string) error {
	navCtx, cancel := context.WithTimeout(tab, s.cfg.NavTimeout)
	defer cancel()

	var currentURL string
	err := chromedp.Run(navCtx,
		chromedp.Navigate(url),
		chromedp.Sleep(3*time.Second),
		chromedp.Location(&currentURL),
	)
	if err != nil {
		return fmt.Errorf("%w: navigating to %s: %v", scraper.ErrSessionUnavailable, url, err)
	}

	if strings.Contains(currentURL, "/login") || strings.Contains(currentURL, "/i/flow") {
		return fmt.Errorf("%w: redirected to login page", scraper.ErrSessionUnavailable)
	}
	return nil
}

// OpenFeed navigates a fresh tab to the kind's feed view for the
// handle.
func (s *Session) OpenFeed(ctx context.Context, handle string, kind scraper.FeedKind) (scraper.FeedView, error) {
	safe, err := SanitizeHandle(handle)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tab, cancel, err := s.newTab(safe)
	if err != nil {
		return nil, err
	}

	url := profileBaseURL + fmt.Sprintf(scraper.FeedPath(kind), safe)
	if err := s.navigate(tab, url); err != nil {
		cancel()
		return nil, err
	}

	log.Printf("Browser: opened %s feed for %s", kind, safe)
	return &feedView{tab: tab, cancel: cancel, itemSelector: scraper.ItemSelector(kind)}, nil
}

type profileHeader struct {
	DisplayName string `json:"display_name"`
	Bio         string `json:"bio"`
	Followers   string `json:"followers"`
	Following   string `json:"following"`
	HeaderText  string `json:"header_text"`
}

var postCountRe = regexp.MustCompile(`([\d.,]+[KM]?)\s+posts`)

// Profile reads the profile header. This is the first page load of a
// request; failure here is fatal for all feed pipelines.
func (s *Session) Profile(ctx context.Context, handle string) (scraper.ProfileSummary, error) {
	safe, err := SanitizeHandle(handle)
	if err != nil {
		return scraper.ProfileSummary{}, err
	}
	if err := ctx.Err(); err != nil {
		return scraper.ProfileSummary{}, err
	}

	tab, cancel, err := s.newTab(safe)
	if err != nil {
		return scraper.ProfileSummary{}, err
	}
	defer cancel()

	if err := s.navigate(tab, profileBaseURL+"/"+safe); err != nil {
		return scraper.ProfileSummary{}, err
	}

	var header profileHeader
	err = chromedp.Run(tab,
		chromedp.Evaluate(`
			(function() {
				const q = (sel) => {
					const el = document.querySelector(sel);
					return el ? el.innerText : "";
				};
				const stat = (suffix) => {
					const el = document.querySelector('a[href$="' + suffix + '"] span');
					return el ? el.innerText : "";
				};
				const head = document.querySelector('div[data-testid="primaryColumn"] h2');
				return {
					display_name: q('div[data-testid="UserName"] span'),
					bio: q('div[data-testid="UserDescription"]'),
					followers: stat('/verified_followers') || stat('/followers'),
					following: stat('/following'),
					header_text: head && head.parentElement ? head.parentElement.innerText : ""
				};
			})()
		`, &header),
	)
	if err != nil {
		return scraper.ProfileSummary{}, fmt.Errorf("%w: reading profile header: %v", scraper.ErrSessionUnavailable, err)
	}

	posts := 0
	if m := postCountRe.FindStringSubmatch(header.HeaderText); m != nil {
		posts = parseCount(m[1])
	}

	return scraper.ProfileSummary{
		Username:    safe,
		DisplayName: strings.TrimSpace(header.DisplayName),
		Bio:         strings.TrimSpace(header.Bio),
		Followers:   parseCount(header.Followers),
		Following:   parseCount(header.Following),
		Posts:       posts,
	}, nil
}

func parseCount(s string) int {
	s = strings.ToUpper(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	multi := 1.0
	if strings.HasSuffix(s, "K") {
		multi = 1000.0
		s = strings.TrimSuffix(s, "K")
	} else if strings.HasSuffix(s, "M") {
		multi = 1000000.0
		s = strings.TrimSuffix(s, "M")
	}

	val, _ := strconv.ParseFloat(s, 64)
	return int(val * multi)
}
