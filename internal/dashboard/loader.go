package dashboard

import (
	"context"
	"log/slog"
	"sync"

	"github.com/seclens/seclens/internal/notify"
)

// Phase is the loader's per-invocation view state.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseLoading  Phase = "loading"
	PhaseRendered Phase = "rendered"
	PhaseFailed   Phase = "failed"
)

// Fetcher retrieves the aggregate snapshot for a scan id.
type Fetcher interface {
	FetchDashboard(ctx context.Context, scanID string) (*Snapshot, error)
}

// State is the loader's published view state.
type State struct {
	Phase  Phase
	ScanID string
	View   *View
	Err    error
}

// Loader drives the dashboard fetch state machine. Loads are not
// cancellable once dispatched; instead each Load takes a generation number
// and only the latest generation may publish its result, so overlapping
// loads resolve last-writer-wins without a stale response clobbering a
// newer one.
type Loader struct {
	fetcher  Fetcher
	notifier notify.Notifier
	logger   *slog.Logger

	mu    sync.Mutex
	gen   uint64
	state State
}

func NewLoader(fetcher Fetcher, notifier notify.Notifier, logger *slog.Logger) *Loader {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		fetcher:  fetcher,
		notifier: notifier,
		logger:   logger.With("component", "dashboard_loader"),
		state:    State{Phase: PhaseIdle},
	}
}

// State returns the most recently published view state.
func (l *Loader) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Load fetches and classifies the snapshot for scanID. The returned view
// and error always reflect this invocation; the shared state is only
// updated when no newer load has started in the meantime.
func (l *Loader) Load(ctx context.Context, scanID string) (*View, error) {
	l.mu.Lock()
	l.gen++
	gen := l.gen
	// entering Loading clears the previously rendered view and failure
	l.state = State{Phase: PhaseLoading, ScanID: scanID}
	l.mu.Unlock()

	snap, err := l.fetcher.FetchDashboard(ctx, scanID)
	if err != nil {
		l.publish(gen, State{Phase: PhaseFailed, ScanID: scanID, Err: err})
		l.notifier.Notify(notify.LevelError,
			"Failed to load dashboard: "+err.Error()+". Make sure the scan ID is correct and the scan has started.")
		return nil, err
	}

	view := BuildView(snap)
	l.publish(gen, State{Phase: PhaseRendered, ScanID: scanID, View: &view})
	l.notifier.Notify(notify.LevelSuccess,
		"Dashboard loaded. Re-load the scan ID to see progress; results update only on repeated loads.")
	return &view, nil
}

func (l *Loader) publish(gen uint64, next State) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		l.logger.Debug("dropping stale dashboard load", "scan_id", next.ScanID)
		return
	}
	l.state = next
}
