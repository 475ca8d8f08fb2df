// Package store holds the ordered triage queue and its cursor. It is the
// single source of truth for which assets are under review; the triage
// engine and the import merger are its only writers, and every mutating
// method must be called from the owner event loop.
package store

import (
	"errors"
	"fmt"

	"photosweep/pkg/models"
)

var (
	// ErrEmptyQueue is returned by Advance when the queue is empty.
	// Callers are expected to check Len first; hitting this is a bug.
	ErrEmptyQueue = errors.New("store: empty queue")

	// ErrIndexOutOfRange is returned by Remove for an invalid position.
	ErrIndexOutOfRange = errors.New("store: index out of range")
)

// Store is an ordered sequence of assets plus a cursor into it.
//
// Invariant: 0 <= current < len(assets) whenever the sequence is non-empty;
// current == 0 when it is empty.
type Store struct {
	assets  []models.Asset
	current int
	ids     map[string]struct{}
}

func New() *Store {
	return &Store{ids: make(map[string]struct{})}
}

// Load replaces the queue and resets the cursor. It does not trigger
// classification; that is the caller's responsibility.
func (s *Store) Load(assets []models.Asset) {
	s.assets = append(s.assets[:0:0], assets...)
	s.current = 0
	s.ids = make(map[string]struct{}, len(assets))
	for _, a := range assets {
		s.ids[a.ID] = struct{}{}
	}
}

// Append adds assets to the end of the queue, preserving their relative
// order. It does not deduplicate; layering that on top is the merger's job.
func (s *Store) Append(assets []models.Asset) {
	for _, a := range assets {
		s.assets = append(s.assets, a)
		s.ids[a.ID] = struct{}{}
	}
}

// Remove deletes the asset at index i and returns it. The cursor is clamped
// so it stays inside the shrunk queue, or resets to 0 when the queue empties.
func (s *Store) Remove(i int) (models.Asset, error) {
	if i < 0 || i >= len(s.assets) {
		return models.Asset{}, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, len(s.assets))
	}
	removed := s.assets[i]
	s.assets = append(s.assets[:i], s.assets[i+1:]...)
	delete(s.ids, removed.ID)
	if len(s.assets) == 0 {
		s.current = 0
	} else if s.current >= len(s.assets) {
		s.current = len(s.assets) - 1
	}
	return removed, nil
}

// Advance moves the cursor forward, wrapping at the end of the queue.
func (s *Store) Advance() error {
	if len(s.assets) == 0 {
		return ErrEmptyQueue
	}
	s.current = (s.current + 1) % len(s.assets)
	return nil
}

// Current returns the asset under the cursor, or false if the queue is empty.
func (s *Store) Current() (models.Asset, bool) {
	if len(s.assets) == 0 {
		return models.Asset{}, false
	}
	return s.assets[s.current], true
}

func (s *Store) CurrentIndex() int { return s.current }

func (s *Store) Len() int { return len(s.assets) }

// Contains reports whether an asset with the given id is already queued.
func (s *Store) Contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Assets returns a copy of the queue in order.
func (s *Store) Assets() []models.Asset {
	return append([]models.Asset(nil), s.assets...)
}
