// Package upstream talks to the three platform services the console
// consumes: the auth service, the scan orchestrator and the dashboard read
// model. All authenticated calls pass through AuthHeaders; no other code
// attaches credentials.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/seclens/seclens/internal/dashboard"
	"github.com/seclens/seclens/internal/session"
)

type Config struct {
	AuthBaseURL       string
	ScansBaseURL      string
	DashboardsBaseURL string
	RequestTimeout    time.Duration
}

type Client struct {
	cfg    Config
	httpc  *http.Client
	source session.Source
	logger *slog.Logger
}

func NewClient(cfg Config, source session.Source, logger *slog.Logger) *Client {
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 15 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		httpc:  &http.Client{Timeout: cfg.RequestTimeout},
		source: source,
		logger: logger.With("component", "upstream"),
	}
}

// WithSource returns a copy of the client bound to a different session
// source. The web console binds per request; the transport is shared.
func (c *Client) WithSource(source session.Source) *Client {
	clone := *c
	clone.source = source
	return &clone
}

// ScanHandle is the orchestrator's acknowledgement of a scan request. It is
// held only long enough to schedule the follow-up dashboard fetch.
type ScanHandle struct {
	ID         string `json:"id"`
	DomainName string `json:"domain_name"`
}

// AuthHeaders is the single authorization gate for every authenticated
// call. It fails with ErrNoSession before any network traffic when the
// store has no credential pair or the token is already expired.
func (c *Client) AuthHeaders(ctx context.Context) (http.Header, error) {
	sess, err := c.source.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading session: %w", err)
	}
	if !sess.Active() {
		return nil, ErrNoSession
	}
	if session.TokenExpired(sess.Token) {
		return nil, fmt.Errorf("session expired: %w", ErrNoSession)
	}

	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+sess.Token)
	headers.Set("Content-Type", "application/json")
	return headers, nil
}

// Login exchanges credentials for a session. The auth service takes a
// form-encoded body, unlike the JSON used everywhere else; that is its
// contract, not ours to change.
func (c *Client) Login(ctx context.Context, username, password string) (session.Session, error) {
	form := url.Values{
		"username": {username},
		"password": {password},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.AuthBaseURL+"/login", strings.NewReader(form.Encode()))
	if err != nil {
		return session.Session{}, fmt.Errorf("building login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return session.Session{}, wrapTransportErr("login", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return session.Session{}, fmt.Errorf("reading login response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return session.Session{}, &RejectedError{
			Op:     "login",
			Status: resp.StatusCode,
			Detail: errorDetail(body, "login failed"),
		}
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return session.Session{}, fmt.Errorf("decoding login response: %w", err)
	}
	if payload.AccessToken == "" {
		return session.Session{}, fmt.Errorf("auth service returned no access token")
	}

	return session.Session{Token: payload.AccessToken, Username: username}, nil
}

// StartScan submits a scan request for domainName. Without a session it
// fails immediately and issues no network call.
func (c *Client) StartScan(ctx context.Context, domainName string) (ScanHandle, error) {
	headers, err := c.AuthHeaders(ctx)
	if err != nil {
		return ScanHandle{}, err
	}

	reqBody, err := json.Marshal(map[string]string{"domain_name": domainName})
	if err != nil {
		return ScanHandle{}, fmt.Errorf("encoding scan request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.ScansBaseURL, bytes.NewReader(reqBody))
	if err != nil {
		return ScanHandle{}, fmt.Errorf("building scan request: %w", err)
	}
	req.Header = headers

	resp, err := c.httpc.Do(req)
	if err != nil {
		return ScanHandle{}, wrapTransportErr("scan", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ScanHandle{}, fmt.Errorf("reading scan response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ScanHandle{}, &RejectedError{
			Op:     "scan",
			Status: resp.StatusCode,
			Detail: errorDetail(body, "failed to start scan"),
		}
	}

	var handle ScanHandle
	if err := json.Unmarshal(body, &handle); err != nil {
		return ScanHandle{}, fmt.Errorf("decoding scan response: %w", err)
	}

	c.logger.Info("scan started", "domain", handle.DomainName, "scan_id", handle.ID)
	return handle, nil
}

// FetchDashboard retrieves the aggregate snapshot for one scan. Each call
// is a one-shot poll; there is no push path for progress.
func (c *Client) FetchDashboard(ctx context.Context, scanID string) (*dashboard.Snapshot, error) {
	headers, err := c.AuthHeaders(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.cfg.DashboardsBaseURL+"/"+url.PathEscape(scanID), nil)
	if err != nil {
		return nil, fmt.Errorf("building dashboard request: %w", err)
	}
	req.Header = headers

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, wrapTransportErr("dashboard", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading dashboard response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &RejectedError{
			Op:     "dashboard",
			Status: resp.StatusCode,
			Detail: errorDetail(body, "failed to load dashboard data"),
		}
	}

	var snap dashboard.Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, fmt.Errorf("decoding dashboard snapshot: %w", err)
	}
	return &snap, nil
}
