// Package navigation decides which menu section is active. The choice is a
// pure function of visibility observations; scrolling is delegated to a
// Scroller supplied by the caller.
package navigation

import (
	"context"
	"math"
	"sync"
	"time"
)

// DefaultCooldown suppresses observations after a programmatic scroll so the
// scroll animation does not move the active section back and forth.
const DefaultCooldown = 800 * time.Millisecond

const ratioEpsilon = 1e-9

// Observation reports how much of a section is inside the viewport.
type Observation struct {
	SectionID string
	// VisibleRatio is in [0, 1].
	VisibleRatio float64
	// Top is the section's offset from the viewport top, in pixels.
	Top float64
}

// MostVisible picks the section with the highest visible ratio. Ties go to
// the section closest to the viewport top, then to the earlier observation.
// It returns false when nothing is visible.
func MostVisible(observations []Observation) (string, bool) {
	best := -1
	for i, o := range observations {
		if o.VisibleRatio <= 0 {
			continue
		}
		if best < 0 {
			best = i
			continue
		}
		b := observations[best]
		switch {
		case o.VisibleRatio > b.VisibleRatio+ratioEpsilon:
			best = i
		case math.Abs(o.VisibleRatio-b.VisibleRatio) <= ratioEpsilon && math.Abs(o.Top) < math.Abs(b.Top):
			best = i
		}
	}
	if best < 0 {
		return "", false
	}
	return observations[best].SectionID, true
}

// Scroller moves the view to a section.
type Scroller interface {
	ScrollTo(ctx context.Context, sectionID string) error
}

// Tracker holds the active section.
type Tracker struct {
	scroller Scroller
	cooldown time.Duration

	mu          sync.Mutex
	active      string
	suppressTil time.Time
}

func NewTracker(scroller Scroller, cooldown time.Duration) *Tracker {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Tracker{scroller: scroller, cooldown: cooldown}
}

func (t *Tracker) Active() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// Observe updates the active section from visibility data. It returns the
// active section and whether it changed. Observations during the cooldown
// are ignored.
func (t *Tracker) Observe(observations []Observation, now time.Time) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if now.Before(t.suppressTil) {
		return t.active, false
	}
	id, ok := MostVisible(observations)
	if !ok || id == t.active {
		return t.active, false
	}
	t.active = id
	return id, true
}

// ScrollTo activates sectionID, starts the cooldown, and asks the scroller to
// move. The section stays active even if the scroller fails.
func (t *Tracker) ScrollTo(ctx context.Context, sectionID string, now time.Time) error {
	t.mu.Lock()
	t.active = sectionID
	t.suppressTil = now.Add(t.cooldown)
	t.mu.Unlock()

	if t.scroller == nil {
		return nil
	}
	return t.scroller.ScrollTo(ctx, sectionID)
}
