package upstream

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/seclens/seclens/internal/notify"
	"github.com/seclens/seclens/internal/session"
)

// Authenticator is the auth flow controller: the only component permitted
// to populate the session store with new credentials.
type Authenticator struct {
	client   *Client
	sessions session.Store
	notifier notify.Notifier
	logger   *slog.Logger
}

func NewAuthenticator(client *Client, sessions session.Store, notifier notify.Notifier, logger *slog.Logger) *Authenticator {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Authenticator{
		client:   client,
		sessions: sessions,
		notifier: notifier,
		logger:   logger.With("component", "auth"),
	}
}

// Login exchanges credentials and commits the token/username pair to the
// session store under id. On failure the store is left untouched.
func (a *Authenticator) Login(ctx context.Context, id, username, password string) error {
	sess, err := a.client.Login(ctx, username, password)
	if err != nil {
		a.notifier.Notify(notify.LevelError, "Login failed: "+err.Error())
		return err
	}

	if err := a.sessions.Set(ctx, id, sess); err != nil {
		a.notifier.Notify(notify.LevelError, "Login failed: could not persist session")
		return fmt.Errorf("persisting session: %w", err)
	}

	a.logger.Info("user logged in", "username", username)
	a.notifier.Notify(notify.LevelSuccess, "Login successful. Welcome, "+username+".")
	return nil
}

// Logout clears the session unconditionally. Safe to call with no active
// session.
func (a *Authenticator) Logout(ctx context.Context, id string) error {
	if err := a.sessions.Clear(ctx, id); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	a.notifier.Notify(notify.LevelInfo, "Logged out.")
	return nil
}
