// Package scan submits new scan requests to the orchestrator and schedules
// the first dashboard fetch once the scan had a chance to produce results.
package scan

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/seclens/seclens/internal/dashboard"
	"github.com/seclens/seclens/internal/notify"
	"github.com/seclens/seclens/internal/upstream"
)

// Starter is the orchestrator call the controller drives.
type Starter interface {
	StartScan(ctx context.Context, domainName string) (upstream.ScanHandle, error)
}

type Controller struct {
	starter  Starter
	loader   *dashboard.Loader
	notifier notify.Notifier
	logger   *slog.Logger

	// delay before the deferred follow-up fetch; the orchestrator works
	// asynchronously and needs a moment to produce a renderable snapshot
	delay time.Duration
}

func NewController(starter Starter, loader *dashboard.Loader, notifier notify.Notifier, delay time.Duration, logger *slog.Logger) *Controller {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if delay == 0 {
		delay = 5 * time.Second
	}
	return &Controller{
		starter:  starter,
		loader:   loader,
		notifier: notifier,
		logger:   logger.With("component", "scan"),
		delay:    delay,
	}
}

// Start submits the scan. Without a session the starter fails before any
// network call. On success one deferred dashboard load is scheduled; it is
// a best-effort convenience and its outcome is notified, never returned,
// since the scan may still be in a non-terminal state when it fires.
func (c *Controller) Start(ctx context.Context, domainName string) (upstream.ScanHandle, error) {
	handle, err := c.starter.StartScan(ctx, domainName)
	if err != nil {
		c.notifier.Notify(notify.LevelError, "Failed to start scan: "+err.Error())
		return upstream.ScanHandle{}, err
	}

	c.notifier.Notify(notify.LevelSuccess, fmt.Sprintf(
		"Scan for %s started. Scan ID: %s. The dashboard will be available shortly.",
		handle.DomainName, handle.ID))

	if c.loader != nil {
		time.AfterFunc(c.delay, func() {
			loadCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if _, err := c.loader.Load(loadCtx, handle.ID); err != nil {
				c.logger.Warn("deferred dashboard load failed", "scan_id", handle.ID, "error", err)
			}
		})
	}

	return handle, nil
}
