package classify

import (
	"context"

	"photosweep/pkg/models"
)

// State is the lifecycle of a cached lookup.
type State int

const (
	StatePending State = iota
	StateResolved
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateResolved:
		return "resolved"
	case StateFailed:
		return "failed"
	default:
		return "pending"
	}
}

// Entry is the cached classification state for one asset.
type Entry struct {
	State      State
	Label      string
	Confidence float64
	token      uint64
}

// Completion is the outcome of one asynchronous lookup. The owner loop
// receives it from the channel returned by Request and hands it to Commit.
type Completion struct {
	AssetID    string
	Token      uint64
	Label      string
	Confidence float64
	Err        error
}

// Cache memoizes classifier results per asset and guards against
// out-of-order completions with a monotonically increasing token: a
// completion is applied only while its token is still the latest issued
// for that asset. Superseding a request is the only cancellation
// mechanism; a stale completion is silently discarded.
//
// All methods must be called from the owner event loop. The classifier
// itself runs on a worker goroutine, but its result only becomes
// observable through Commit.
type Cache struct {
	classifier Classifier
	entries    map[string]Entry
	latest     map[string]uint64
	next       uint64
}

func NewCache(c Classifier) *Cache {
	return &Cache{
		classifier: c,
		entries:    make(map[string]Entry),
		latest:     make(map[string]uint64),
	}
}

// Request asks for a classification of asset. When a pending or resolved
// entry already exists the cached state stands and Request returns nil;
// re-displaying an asset never re-runs inference. Otherwise a new token is
// issued, the entry moves to pending, and the classifier is invoked on a
// worker goroutine; the returned channel delivers exactly one Completion.
func (c *Cache) Request(ctx context.Context, asset models.Asset) <-chan Completion {
	if e, ok := c.entries[asset.ID]; ok && e.State != StateFailed && e.token == c.latest[asset.ID] {
		return nil
	}

	c.next++
	token := c.next
	c.latest[asset.ID] = token
	c.entries[asset.ID] = Entry{State: StatePending, token: token}

	done := make(chan Completion, 1)
	go func() {
		res, err := c.classifier.Classify(ctx, asset)
		done <- Completion{
			AssetID:    asset.ID,
			Token:      token,
			Label:      res.Label,
			Confidence: res.Confidence,
			Err:        err,
		}
	}()
	return done
}

// Commit applies a completion to the cache. It reports false when the
// completion's token has been superseded by a newer request for the same
// asset, in which case the cache is left untouched.
func (c *Cache) Commit(done Completion) bool {
	if c.latest[done.AssetID] != done.Token {
		return false
	}
	e := Entry{token: done.Token}
	if done.Err != nil {
		e.State = StateFailed
	} else {
		e.State = StateResolved
		e.Label = done.Label
		e.Confidence = done.Confidence
	}
	c.entries[done.AssetID] = e
	return true
}

// Peek returns the cached state for an asset without issuing a request.
func (c *Cache) Peek(id string) (Entry, bool) {
	e, ok := c.entries[id]
	return e, ok
}
