package dashboard

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// PollOptions tunes PollUntilComplete. Delay doubles after every attempt up
// to MaxDelay, with 0-50% jitter added to avoid synchronized polling.
type PollOptions struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

func (o *PollOptions) applyDefaults() {
	if o.MaxAttempts == 0 {
		o.MaxAttempts = 10
	}
	if o.BaseDelay == 0 {
		o.BaseDelay = 5 * time.Second
	}
	if o.MaxDelay == 0 {
		o.MaxDelay = 60 * time.Second
	}
}

// PollUntilComplete loads the dashboard repeatedly until the scan reports
// COMPLETED or attempts run out. The last successfully rendered view is
// returned even when the scan never completes, so callers can still show
// partial results.
func (l *Loader) PollUntilComplete(ctx context.Context, scanID string, opts PollOptions) (*View, error) {
	opts.applyDefaults()

	var last *View
	delay := opts.BaseDelay
	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		view, err := l.Load(ctx, scanID)
		if err == nil {
			last = view
			if view.Summary.StatusTier == TierSuccess {
				return view, nil
			}
		}

		if attempt == opts.MaxAttempts {
			break
		}

		jitter := time.Duration(rand.Int63n(int64(delay/2) + 1))
		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case <-time.After(delay + jitter):
		}

		delay *= 2
		if delay > opts.MaxDelay {
			delay = opts.MaxDelay
		}
	}

	if last != nil {
		return last, nil
	}
	return nil, fmt.Errorf("scan %s did not become renderable after %d attempts", scanID, opts.MaxAttempts)
}
