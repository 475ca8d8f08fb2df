// Package triage turns a continuous drag signal into discrete triage
// decisions and applies them to the queue. The decision itself is a pure
// function of (offset, thresholds); the engine wraps it with the store and
// cache mutations a decision entails.
package triage

import (
	"context"
	"fmt"

	"photosweep/internal/classify"
	"photosweep/internal/store"
	"photosweep/pkg/models"
)

// Transition is the discrete outcome of a completed gesture.
type Transition int

const (
	TransitionNone Transition = iota // gesture still in progress
	TransitionCancel
	TransitionAdvance
	TransitionDelete
)

func (t Transition) String() string {
	switch t {
	case TransitionCancel:
		return "cancel"
	case TransitionAdvance:
		return "advance"
	case TransitionDelete:
		return "delete"
	default:
		return "none"
	}
}

// Thresholds are the signed offsets at which an ended gesture commits.
// Both boundaries are inclusive.
type Thresholds struct {
	Delete  float64 // gesture commits a delete at or below this
	Advance float64 // gesture commits an advance at or beyond this
}

// DefaultThresholds matches one comfortable swipe in either direction.
func DefaultThresholds() Thresholds {
	return Thresholds{Delete: -100, Advance: 100}
}

// Decide maps a final drag offset to its transition.
func (t Thresholds) Decide(offset float64) Transition {
	switch {
	case offset <= t.Delete:
		return TransitionDelete
	case offset >= t.Advance:
		return TransitionAdvance
	default:
		return TransitionCancel
	}
}

// Phase distinguishes in-progress gesture samples from the terminal one.
type Phase int

const (
	PhaseChanged Phase = iota
	PhaseEnded
)

// GestureEvent is one sample of the drag signal.
type GestureEvent struct {
	Phase     Phase
	Magnitude float64
}

// Outcome reports what a gesture did. Lookup is non-nil when the
// transition issued a classification for the asset now current; the owner
// loop is responsible for draining it and committing the completion.
type Outcome struct {
	Transition     Transition
	Removed        *models.Asset
	Current        *models.Asset
	QueueExhausted bool
	Lookup         <-chan classify.Completion
}

// Engine drives the triage state machine. All methods must be called from
// the owner event loop; the engine assumes exclusive access to the store
// and cache it was built with.
type Engine struct {
	store      *store.Store
	cache      *classify.Cache
	thresholds Thresholds
	offset     float64
}

func NewEngine(s *store.Store, c *classify.Cache, t Thresholds) *Engine {
	return &Engine{store: s, cache: c, thresholds: t}
}

// Offset is the current drag offset; zero whenever no gesture is active.
func (e *Engine) Offset() float64 { return e.offset }

func (e *Engine) Thresholds() Thresholds { return e.thresholds }

// Handle consumes one gesture sample. Changed samples only move the
// offset; an ended sample commits exactly one transition and resets the
// offset to zero.
func (e *Engine) Handle(ctx context.Context, ev GestureEvent) Outcome {
	if ev.Phase == PhaseChanged {
		e.offset = ev.Magnitude
		return Outcome{Transition: TransitionNone}
	}

	offset := ev.Magnitude
	e.offset = 0

	if e.store.Len() == 0 {
		// Nothing to act on; an ended gesture over the empty state just
		// re-surfaces it.
		return Outcome{Transition: TransitionCancel, QueueExhausted: true}
	}

	switch e.thresholds.Decide(offset) {
	case TransitionDelete:
		return e.delete(ctx)
	case TransitionAdvance:
		return e.advance(ctx)
	default:
		return Outcome{Transition: TransitionCancel}
	}
}

func (e *Engine) delete(ctx context.Context) Outcome {
	removed, err := e.store.Remove(e.store.CurrentIndex())
	if err != nil {
		// The cursor invariant guarantees a valid index here.
		panic(fmt.Sprintf("triage: remove current: %v", err))
	}
	out := Outcome{Transition: TransitionDelete, Removed: &removed}
	cur, ok := e.store.Current()
	if !ok {
		out.QueueExhausted = true
		return out
	}
	out.Current = &cur
	out.Lookup = e.cache.Request(ctx, cur)
	return out
}

func (e *Engine) advance(ctx context.Context) Outcome {
	if err := e.store.Advance(); err != nil {
		panic(fmt.Sprintf("triage: advance: %v", err))
	}
	cur, _ := e.store.Current()
	return Outcome{
		Transition: TransitionAdvance,
		Current:    &cur,
		Lookup:     e.cache.Request(ctx, cur),
	}
}
