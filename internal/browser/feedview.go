// SPDX-License-Identifier: AGPL-3.0-only
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/fluffyriot/birdseye/internal/scraper"
)

// feedView drives one feed tab. Each item node is tagged with a
// monotonically increasing data attribute the first time it is seen, so
// a fragment's selector stays valid for the screenshot step even after
// further scrolling.
type feedView struct {
	tab          context.Context
	cancel       context.CancelFunc
	itemSelector string
}

func (v *feedView) Scroll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	js := fmt.Sprintf(`
		(function() {
			const nodes = document.querySelectorAll(%q);
			if (nodes.length > 0) {
				nodes[nodes.length - 1].scrollIntoView({behavior: "smooth", block: "end"});
			} else {
				window.scrollTo(0, document.scrollingElement.scrollHeight);
			}
		})()
	`, v.itemSelector)
	return chromedp.Run(v.tab, chromedp.Evaluate(js, nil))
}

func (v *feedView) Metrics(ctx context.Context) (scraper.FeedMetrics, error) {
	var m scraper.FeedMetrics
	if err := ctx.Err(); err != nil {
		return m, err
	}
	js := fmt.Sprintf(`
		({
			height: document.scrollingElement.scrollHeight,
			count: document.querySelectorAll(%q).length
		})
	`, v.itemSelector)
	err := chromedp.Run(v.tab, chromedp.Evaluate(js, &m))
	return m, err
}

func (v *feedView) Fragments(ctx context.Context) ([]scraper.Fragment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	js := fmt.Sprintf(`
		(function() {
			if (!window.__bwSeq) { window.__bwSeq = 0; }
			const sel = %q;
			const out = [];
			document.querySelectorAll(sel).forEach((el, i) => {
				if (!el.dataset.bwId) {
					window.__bwSeq += 1;
					el.dataset.bwId = String(window.__bwSeq);
				}
				out.push({
					selector: sel + '[data-bw-id="' + el.dataset.bwId + '"]',
					html: el.outerHTML,
					position: i
				});
			});
			return out;
		})()
	`, v.itemSelector)

	var frags []scraper.Fragment
	if err := chromedp.Run(v.tab, chromedp.Evaluate(js, &frags)); err != nil {
		return nil, err
	}
	return frags, nil
}

// Capture scrolls the fragment into the viewport, verifies it renders
// with a non-zero box, and shoots the element.
func (v *feedView) Capture(ctx context.Context, f scraper.Fragment, timeout time.Duration) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	capCtx, cancel := context.WithTimeout(v.tab, timeout)
	defer cancel()

	var box struct {
		W float64 `json:"w"`
		H float64 `json:"h"`
	}
	boxJS := fmt.Sprintf(`
		(function() {
			const el = document.querySelector(%q);
			if (!el) { return {w: 0, h: 0}; }
			const r = el.getBoundingClientRect();
			return {w: r.width, h: r.height};
		})()
	`, f.Selector)

	err := chromedp.Run(capCtx,
		chromedp.ScrollIntoView(f.Selector, chromedp.ByQuery),
		chromedp.Evaluate(boxJS, &box),
	)
	if err != nil {
		return nil, err
	}
	if box.W == 0 || box.H == 0 {
		return nil, fmt.Errorf("fragment %s reports a zero-size box", f.Selector)
	}

	var buf []byte
	if err := chromedp.Run(capCtx, chromedp.Screenshot(f.Selector, &buf, chromedp.NodeVisible, chromedp.ByQuery)); err != nil {
		return nil, err
	}
	if len(buf) == 0 {
		return nil, fmt.Errorf("empty screenshot for %s", f.Selector)
	}
	return buf, nil
}

func (v *feedView) Wait(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return chromedp.Run(v.tab, chromedp.Sleep(d))
}

func (v *feedView) Close() {
	v.cancel()
}
