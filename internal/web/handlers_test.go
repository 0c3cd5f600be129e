package web

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/seclens/seclens/internal/config"
	"github.com/seclens/seclens/internal/session"
)

// fakeUpstream bundles the three platform services behind one mux.
func fakeUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		if r.PostForm.Get("username") != "alice" || r.PostForm.Get("password") != "secret" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"detail": "bad credentials"}`))
			return
		}
		w.Write([]byte(`{"access_token": "tok123"}`))
	})

	mux.HandleFunc("/scans", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok123" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail": "unauthorized"}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": "scan-42", "domain_name": "example.com"}`))
	})

	mux.HandleFunc("/dashboards/", func(w http.ResponseWriter, r *http.Request) {
		switch strings.TrimPrefix(r.URL.Path, "/dashboards/") {
		case "abc-123":
			w.Write([]byte(`{
				"scan_id": "abc-123",
				"domain_name": "example.com",
				"status": "COMPLETED",
				"requested_at": "2026-03-14T09:30:00Z",
				"total_risk_score": 6.5,
				"assets": [
					{"id": "a1", "value": "www.example.com", "asset_type": "hostname",
					 "sca_score": 9.0,
					 "risks": [{"cve_id": "CVE-2024-1234", "cvss_score": 9.8, "risk_score": 8.0}]},
					{"id": "a2", "value": "203.0.113.7", "asset_type": "ip", "sca_score": 3.0, "risks": []}
				]
			}`))
		case "empty-1":
			w.Write([]byte(`{"scan_id": "empty-1", "domain_name": "example.org", "status": "PENDING",
				"requested_at": "2026-03-14T09:30:00Z", "assets": []}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"detail": "scan not found"}`))
		}
	})

	return httptest.NewServer(mux)
}

type console struct {
	ts     *httptest.Server
	store  *session.MemoryStore
	client *http.Client
	direct *http.Client // does not follow redirects
}

func newTestConsole(t *testing.T) *console {
	t.Helper()

	upstreamSrv := fakeUpstream(t)
	t.Cleanup(upstreamSrv.Close)

	cfg := &config.Config{}
	cfg.Upstream.AuthBaseURL = upstreamSrv.URL + "/auth"
	cfg.Upstream.ScansBaseURL = upstreamSrv.URL + "/scans"
	cfg.Upstream.DashboardsBaseURL = upstreamSrv.URL + "/dashboards"
	cfg.Upstream.RequestTimeout = 5 * time.Second
	cfg.Scan.RefreshDelay = time.Millisecond

	store := session.NewMemoryStore()
	srv, err := NewServer(cfg, store)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}

	return &console{
		ts:     ts,
		store:  store,
		client: &http.Client{Jar: jar},
		direct: &http.Client{Jar: jar, CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}},
	}
}

func (c *console) login(t *testing.T) {
	t.Helper()
	resp, err := c.client.PostForm(c.ts.URL+"/login", url.Values{
		"username": {"alice"},
		"password": {"secret"},
	})
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestConsole_LoginFlow(t *testing.T) {
	c := newTestConsole(t)

	resp, err := c.direct.PostForm(c.ts.URL+"/login", url.Values{
		"username": {"alice"},
		"password": {"secret"},
	})
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("login status = %d, want 303", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/dashboard" {
		t.Errorf("login redirect = %q, want /dashboard", loc)
	}

	// the dashboard now renders with the username and the success banner
	resp, err = c.client.Get(c.ts.URL + "/dashboard")
	if err != nil {
		t.Fatal(err)
	}
	page := body(t, resp)
	if !strings.Contains(page, "Welcome, alice") {
		t.Error("dashboard missing username")
	}
	if !strings.Contains(page, "Login successful") {
		t.Error("dashboard missing login success banner")
	}
}

func TestConsole_LoginRejected(t *testing.T) {
	c := newTestConsole(t)

	resp, err := c.direct.PostForm(c.ts.URL+"/login", url.Values{
		"username": {"alice"},
		"password": {"wrong"},
	})
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if loc := resp.Header.Get("Location"); loc != "/" {
		t.Errorf("rejected login redirect = %q, want /", loc)
	}

	resp, err = c.client.Get(c.ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	page := body(t, resp)
	if !strings.Contains(page, "bad credentials") {
		t.Error("login page should show the upstream detail message")
	}

	// no session was committed
	resp, err = c.direct.Get(c.ts.URL + "/dashboard")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Errorf("protected view without session must redirect, got %d", resp.StatusCode)
	}
}

func TestConsole_ProtectedRedirect(t *testing.T) {
	c := newTestConsole(t)

	resp, err := c.direct.Get(c.ts.URL + "/dashboard")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/" {
		t.Errorf("expected 303 to /, got %d to %q", resp.StatusCode, resp.Header.Get("Location"))
	}
}

func TestConsole_DashboardRendering(t *testing.T) {
	c := newTestConsole(t)
	c.login(t)

	resp, err := c.client.Get(c.ts.URL + "/dashboard?scan_id=abc-123")
	if err != nil {
		t.Fatal(err)
	}
	page := body(t, resp)

	for _, want := range []string{
		"Scan Overview: example.com",
		"abc-123",
		"tier-success",
		"6.50",
		"www.example.com",
		"tier-critical\">9.00",
		"203.0.113.7",
		"tier-elevated\">3.00",
		"CVE-2024-1234",
		"https://nvd.nist.gov/vuln/detail/CVE-2024-1234",
		"No risks found for this asset.",
		"Mar 14, 2026 09:30:00 UTC",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}

	// assets appear in snapshot order
	if strings.Index(page, "www.example.com") > strings.Index(page, "203.0.113.7") {
		t.Error("asset order not preserved in rendered page")
	}
}

func TestConsole_DashboardEmptyState(t *testing.T) {
	c := newTestConsole(t)
	c.login(t)

	resp, err := c.client.Get(c.ts.URL + "/dashboard?scan_id=empty-1")
	if err != nil {
		t.Fatal(err)
	}
	page := body(t, resp)
	if !strings.Contains(page, "No assets have been discovered for this scan yet.") {
		t.Error("missing empty-assets placeholder")
	}
	if strings.Contains(page, "<details>") {
		t.Error("empty snapshot should not render asset entries")
	}
}

func TestConsole_DashboardFetchRejected(t *testing.T) {
	c := newTestConsole(t)
	c.login(t)

	resp, err := c.client.Get(c.ts.URL + "/dashboard?scan_id=missing")
	if err != nil {
		t.Fatal(err)
	}
	page := body(t, resp)
	if !strings.Contains(page, "scan not found") {
		t.Error("error banner should carry the upstream detail")
	}
	if strings.Contains(page, "Scan Overview:") {
		t.Error("failed load must leave the dashboard area cleared")
	}
}

func TestConsole_StartScan(t *testing.T) {
	c := newTestConsole(t)
	c.login(t)

	resp, err := c.direct.PostForm(c.ts.URL+"/scans", url.Values{
		"domain_name": {"example.com"},
	})
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	loc := resp.Header.Get("Location")
	if loc != "/dashboard?scan_id=scan-42&pending=1" {
		t.Fatalf("scan redirect = %q", loc)
	}

	resp, err = c.client.Get(c.ts.URL + loc)
	if err != nil {
		t.Fatal(err)
	}
	page := body(t, resp)
	if !strings.Contains(page, `http-equiv="refresh" content="5;url=/dashboard?scan_id=scan-42"`) {
		t.Error("pending page missing the deferred re-fetch")
	}
	if !strings.Contains(page, "Scan for example.com started") || !strings.Contains(page, "scan-42") {
		t.Error("banner should name the domain and scan id")
	}
}

func TestConsole_Logout(t *testing.T) {
	c := newTestConsole(t)
	c.login(t)

	resp, err := c.direct.Post(c.ts.URL+"/logout", "application/x-www-form-urlencoded", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.Header.Get("Location") != "/" {
		t.Errorf("logout should redirect to login view, got %q", resp.Header.Get("Location"))
	}

	// session gone: protected view redirects again
	resp, err = c.direct.Get(c.ts.URL + "/dashboard")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Errorf("expected redirect after logout, got %d", resp.StatusCode)
	}
}

func TestConsole_ExportPDF(t *testing.T) {
	c := newTestConsole(t)
	c.login(t)

	resp, err := c.client.Get(c.ts.URL + "/dashboard/abc-123/pdf")
	if err != nil {
		t.Fatal(err)
	}
	data := body(t, resp)
	if ct := resp.Header.Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q, want application/pdf", ct)
	}
	if !strings.HasPrefix(data, "%PDF") {
		t.Error("response is not a PDF document")
	}
}

func TestConsole_SessionSurvivesAcrossRequests(t *testing.T) {
	c := newTestConsole(t)
	c.login(t)

	// the store holds the committed pair under the issued cookie
	var found bool
	u, _ := url.Parse(c.ts.URL)
	for _, cookie := range c.client.Jar.Cookies(u) {
		if cookie.Name == sessionCookie {
			sess, err := c.store.Get(context.Background(), cookie.Value)
			if err != nil {
				t.Fatal(err)
			}
			if sess.Token == "tok123" && sess.Username == "alice" {
				found = true
			}
		}
	}
	if !found {
		t.Error("session store does not hold the committed credential pair")
	}
}
