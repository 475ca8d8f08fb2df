// Package classify labels assets and memoizes the results behind a
// token-guarded cache so late-arriving lookups can never clobber the
// label of the asset currently on screen.
package classify

import (
	"context"
	"errors"

	"photosweep/pkg/models"
)

// ErrClassificationFailed wraps any classifier error surfaced through the
// cache. It is terminal for that lookup; a fresh Request issues a new
// attempt with a new token.
var ErrClassificationFailed = errors.New("classify: classification failed")

// Result is one classifier verdict.
type Result struct {
	Label      string
	Confidence float64 // in [0,1]
}

// Classifier labels a single asset. Implementations may block; they are
// always invoked on a worker goroutine, one call per cache request.
type Classifier interface {
	Classify(ctx context.Context, asset models.Asset) (Result, error)
}

// Func adapts a plain function to the Classifier interface.
type Func func(ctx context.Context, asset models.Asset) (Result, error)

func (f Func) Classify(ctx context.Context, asset models.Asset) (Result, error) {
	return f(ctx, asset)
}
