// Package notify is the one-banner notification surface: every outcome of a
// user action is reported as a single transient message that replaces any
// prior one.
package notify

import "log/slog"

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
)

type Notifier interface {
	Notify(level Level, message string)
}

// ConsoleNotifier reports banners as log lines; the CLI uses it.
type ConsoleNotifier struct {
	logger *slog.Logger
}

func NewConsoleNotifier(logger *slog.Logger) *ConsoleNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConsoleNotifier{logger: logger}
}

func (c *ConsoleNotifier) Notify(level Level, message string) {
	switch level {
	case LevelError:
		c.logger.Error(message)
	case LevelWarning:
		c.logger.Warn(message)
	default:
		c.logger.Info(message)
	}
}

// Discard drops all notifications. Useful in tests and for headless flows.
type Discard struct{}

func (Discard) Notify(Level, string) {}
