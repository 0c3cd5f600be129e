// Package session owns the authenticated identity persisted across page
// loads. No other package reads or writes the underlying storage directly.
package session

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is the authenticated identity: a bearer token and the username it
// was issued to. The two fields are always stored and cleared as a pair.
type Session struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// Active reports whether the session holds a complete credential pair.
func (s Session) Active() bool {
	return s.Token != "" && s.Username != ""
}

// Store persists sessions keyed by an opaque identifier (the web console's
// cookie value; the CLI uses a single fixed key). Get never fails on a
// missing entry: it returns the zero Session.
type Store interface {
	Get(ctx context.Context, id string) (Session, error)
	Set(ctx context.Context, id string, sess Session) error
	Clear(ctx context.Context, id string) error
}

// Source yields the session bound to one caller. It is what the request
// client consults before every authenticated call.
type Source interface {
	Current(ctx context.Context) (Session, error)
}

type boundSource struct {
	store Store
	id    string
}

func (b boundSource) Current(ctx context.Context) (Session, error) {
	return b.store.Get(ctx, b.id)
}

// Bind fixes a store entry as a Source, typically per web request.
func Bind(store Store, id string) Source {
	return boundSource{store: store, id: id}
}

// TokenExpired inspects the token's exp claim without verifying the
// signature; verification is the upstream services' job. Opaque non-JWT
// tokens are never reported as expired.
func TokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
