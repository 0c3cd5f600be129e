package web

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/seclens/seclens/internal/notify"
)

const flashCookie = "seclens_flash"

// flash is the single transient banner shown on the next rendered page.
// Setting a new one replaces any pending banner; the template dismisses it
// client-side after 7 seconds.
type flash struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

func (s *Server) setFlash(w http.ResponseWriter, f flash) {
	data, err := json.Marshal(f)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(data),
		Path:     "/",
		HttpOnly: true,
		MaxAge:   60,
	})
}

// popFlash reads and clears the pending banner.
func (s *Server) popFlash(w http.ResponseWriter, r *http.Request) *flash {
	cookie, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	data, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	var f flash
	if err := json.Unmarshal(data, &f); err != nil {
		return nil
	}
	return &f
}

// flashNotifier adapts the response-bound flash cookie to the Notifier
// interface so the auth and scan controllers surface outcomes the same way
// on every delivery surface.
type flashNotifier struct {
	server *Server
	w      http.ResponseWriter
}

func (f flashNotifier) Notify(level notify.Level, message string) {
	f.server.setFlash(f.w, flash{Level: string(level), Message: message})
}
