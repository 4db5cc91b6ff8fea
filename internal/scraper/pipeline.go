// SPDX-License-Identifier: AGPL-3.0-only
package scraper

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Grace period granted to the view between the last pass and teardown.
const drainGrace = 500 * time.Millisecond

type pipelineState int

const (
	stateInit pipelineState = iota
	stateScrolling
	stateExtracting
	stateDraining
	stateDone
)

// Pipeline runs one feed kind end to end: reveal, identify, dedup,
// timestamp, capture, append. It owns its view, its dedup index and its
// result list exclusively.
type Pipeline struct {
	kind    FeedKind
	view    FeedView
	spec    feedSpec
	ctrl    *scrollController
	shots   *Capturer
	index   *DedupIndex
	visited map[string]struct{}
	items   []ExtractedItem
	state   pipelineState
}

// NewPipeline wires a pipeline for one feed kind. shots may be nil when
// screenshots are disabled; it is ignored for feeds that never carry
// them.
func NewPipeline(kind FeedKind, view FeedView, limits Limits, shots *Capturer) *Pipeline {
	spec := specFor(kind)
	if !spec.screenshots {
		shots = nil
	}
	return &Pipeline{
		kind: kind,
		view: view,
		spec: spec,
		ctrl: &scrollController{
			view:   view,
			pause:  limits.ScrollPause,
			budget: limits.FeedTimeBudget,
			limit:  limits.limitFor(kind),
		},
		shots:   shots,
		index:   NewDedupIndex(),
		visited: make(map[string]struct{}),
		state:   stateInit,
	}
}

// Run drives the state machine to Done and returns the feed's result.
// Only view-level faults degrade the result; per-item resolution
// failures are absorbed along the way.
func (p *Pipeline) Run(ctx context.Context) FeedResult {
	res := FeedResult{Kind: p.kind, Items: []ExtractedItem{}}

	if p.ctrl.limit <= 0 {
		p.state = stateDone
		res.Complete = true
		res.StopReason = ReasonLimit
		return res
	}

	st := NewScrollState()
	reason := ""
	var fault error

	for p.state != stateDraining {
		p.state = stateExtracting
		if err := p.extractPass(ctx); err != nil {
			reason, fault = ReasonError, err
			p.state = stateDraining
			break
		}
		st.Collected = len(p.items)

		p.state = stateScrolling
		cont, r, err := p.ctrl.Advance(ctx, st)
		if !cont {
			reason, fault = r, err
			p.state = stateDraining
		}
	}

	p.drain(ctx)
	p.state = stateDone

	res.Items = p.items
	res.StopReason = reason
	res.Complete = reason == ReasonLimit || reason == ReasonStall || reason == ReasonBudget
	if fault != nil {
		res.Err = fault.Error()
	}
	log.Printf("Pipeline: %s finished with %d items (%s)", p.kind, len(res.Items), reason)
	return res
}

// extractPass processes every fragment in the current view that was not
// already visited this feed view. The visited set guards same-node
// re-reads across passes; the dedup index guards virtualization
// re-renders of the same logical item under a fresh node.
func (p *Pipeline) extractPass(ctx context.Context) error {
	frags, err := p.view.Fragments(ctx)
	if err != nil {
		return err
	}

	for _, f := range frags {
		if _, seen := p.visited[f.Selector]; seen {
			continue
		}
		p.visited[f.Selector] = struct{}{}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(f.HTML))
		if err != nil {
			log.Printf("Pipeline: %s: unparseable fragment at %d skipped: %v", p.kind, f.Position, err)
			continue
		}
		if !p.spec.match(doc) {
			continue
		}

		identity := Identify(f)
		if !p.index.Admit(identity, ContentHash(f)) {
			continue
		}

		item := ExtractedItem{ID: identity, Kind: p.kind}
		p.spec.parse(doc, &item)
		item.Timestamp = resolveTimestampAtDoc(doc)

		if p.shots != nil {
			item.Screenshot = p.shots.Capture(ctx, p.view, p.kind, f, identity)
		}

		p.items = append(p.items, item)
		if len(p.items) >= p.ctrl.limit {
			break
		}
	}
	return nil
}

// drain gives the view a short grace period to settle before the tab is
// torn down, so the last artifact write is not cut off mid-flight.
func (p *Pipeline) drain(ctx context.Context) {
	_ = p.view.Wait(ctx, drainGrace)
}
