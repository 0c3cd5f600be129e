package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/seclens/seclens/internal/dashboard"
	"github.com/seclens/seclens/internal/reports"
	"github.com/seclens/seclens/internal/scan"
	"github.com/seclens/seclens/internal/session"
	"github.com/seclens/seclens/internal/upstream"
)

type loginData struct {
	Banner *flash
}

type dashboardData struct {
	Banner   *flash
	Username string
	ScanID   string
	Pending  bool
	View     *dashboard.View
}

func (s *Server) loginPage(w http.ResponseWriter, r *http.Request) {
	if sid := sessionID(r); sid != "" {
		sess, err := s.sessions.Get(r.Context(), sid)
		if err == nil && sess.Active() {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
	}
	s.render(w, "login.html", loginData{Banner: s.popFlash(w, r)})
}

// ensureSID returns the request's session cookie value, issuing a fresh one
// when the browser has none yet.
func (s *Server) ensureSID(w http.ResponseWriter, r *http.Request) string {
	if sid := sessionID(r); sid != "" {
		return sid
	}
	sid := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sid
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.setFlash(w, flash{Level: "error", Message: "Invalid login form."})
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	sid := s.ensureSID(w, r)
	auth := upstream.NewAuthenticator(s.client, s.sessions, flashNotifier{server: s, w: w}, s.logger)

	err := auth.Login(r.Context(), sid, r.PostForm.Get("username"), r.PostForm.Get("password"))
	if err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	auth := upstream.NewAuthenticator(s.client, s.sessions, flashNotifier{server: s, w: w}, s.logger)
	if sid := sessionID(r); sid != "" {
		if err := auth.Logout(r.Context(), sid); err != nil {
			s.logger.Error("logout failed", "error", err)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) dashboardPage(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	sess, err := s.sessions.Get(r.Context(), sid)
	if err != nil || !sess.Active() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	data := dashboardData{
		Banner:   s.popFlash(w, r),
		Username: sess.Username,
		ScanID:   r.URL.Query().Get("scan_id"),
		Pending:  r.URL.Query().Get("pending") == "1",
	}

	// the pending page shows a spinner and re-requests the dashboard
	// after the post-initiation grace delay
	if data.ScanID != "" && !data.Pending {
		client := s.client.WithSource(session.Bind(s.sessions, sid))
		snap, err := client.FetchDashboard(r.Context(), data.ScanID)
		if err != nil {
			if errors.Is(err, upstream.ErrNoSession) {
				http.Redirect(w, r, "/", http.StatusSeeOther)
				return
			}
			// the dashboard area stays cleared; only the banner reports
			// what happened
			data.Banner = &flash{
				Level:   "error",
				Message: "Failed to load dashboard: " + err.Error() + ". Make sure the scan ID is correct and the scan has started.",
			}
		} else {
			view := dashboard.BuildView(snap)
			data.View = &view
			data.Banner = &flash{
				Level:   "success",
				Message: "Dashboard loaded. Re-load the scan ID to see progress; results update only on repeated loads.",
			}
		}
	}

	s.render(w, "dashboard.html", data)
}

func (s *Server) handleStartScan(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.setFlash(w, flash{Level: "error", Message: "Invalid scan form."})
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	sid := sessionID(r)
	client := s.client.WithSource(session.Bind(s.sessions, sid))
	ctrl := scan.NewController(client, nil, flashNotifier{server: s, w: w}, s.cfg.Scan.RefreshDelay, s.logger)

	handle, err := ctrl.Start(r.Context(), r.PostForm.Get("domain_name"))
	if err != nil {
		if errors.Is(err, upstream.ErrNoSession) {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/dashboard?scan_id=%s&pending=1", handle.ID), http.StatusSeeOther)
}

func (s *Server) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	scanID := chi.URLParam(r, "scanID")
	sid := sessionID(r)

	client := s.client.WithSource(session.Bind(s.sessions, sid))
	snap, err := client.FetchDashboard(r.Context(), scanID)
	if err != nil {
		if errors.Is(err, upstream.ErrNoSession) {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		s.setFlash(w, flash{Level: "error", Message: "Failed to export report: " + err.Error()})
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	view := dashboard.BuildView(snap)
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=scan-%s.pdf", scanID))
	if err := reports.WritePDF(w, &view); err != nil {
		s.logger.Error("pdf export failed", "scan_id", scanID, "error", err)
	}
}
