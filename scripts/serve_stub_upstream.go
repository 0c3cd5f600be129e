// Standalone stub of the upstream auth, scan and dashboard services for
// local development. Run it, point config.yaml's upstream URLs at it and
// the console works without any real backend:
//
//	go run scripts/serve_stub_upstream.go -addr :8000
//
// Credentials are demo/demo. Started scans flip to COMPLETED after a
// short delay so the pending page and -wait polling can be exercised.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type stubScan struct {
	ID          string
	DomainName  string
	RequestedAt time.Time
	CompletesAt time.Time
}

type stub struct {
	mu    sync.Mutex
	scans map[string]*stubScan
	delay time.Duration
}

func (s *stub) detail(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"detail": msg})
}

func (s *stub) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.detail(w, http.StatusBadRequest, "malformed form body")
		return
	}
	if r.PostFormValue("username") != "demo" || r.PostFormValue("password") != "demo" {
		s.detail(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"access_token": "stub-token-" + uuid.NewString()})
}

func (s *stub) requireToken(w http.ResponseWriter, r *http.Request) bool {
	if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
		s.detail(w, http.StatusUnauthorized, "Not authenticated")
		return false
	}
	return true
}

func (s *stub) startScan(w http.ResponseWriter, r *http.Request) {
	if !s.requireToken(w, r) {
		return
	}
	var req struct {
		DomainName string `json:"domain_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DomainName == "" {
		s.detail(w, http.StatusUnprocessableEntity, "domain_name is required")
		return
	}
	sc := &stubScan{
		ID:          uuid.NewString(),
		DomainName:  req.DomainName,
		RequestedAt: time.Now().UTC(),
		CompletesAt: time.Now().Add(s.delay),
	}
	s.mu.Lock()
	s.scans[sc.ID] = sc
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"id": sc.ID, "domain_name": sc.DomainName})
}

func (s *stub) dashboard(w http.ResponseWriter, r *http.Request) {
	if !s.requireToken(w, r) {
		return
	}
	scanID := r.PathValue("scanID")
	s.mu.Lock()
	sc := s.scans[scanID]
	s.mu.Unlock()
	if sc == nil {
		s.detail(w, http.StatusNotFound, "Scan not found")
		return
	}

	status := "IN_PROGRESS"
	var assets []map[string]any
	var total *float64
	if time.Now().After(sc.CompletesAt) {
		status = "COMPLETED"
		assets, total = fakeFindings(sc.DomainName)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"scan_id":          sc.ID,
		"domain_name":      sc.DomainName,
		"status":           status,
		"requested_at":     sc.RequestedAt,
		"total_risk_score": total,
		"assets":           assets,
	})
}

func fakeFindings(domain string) ([]map[string]any, *float64) {
	score := func(lo, hi float64) float64 { return lo + rand.Float64()*(hi-lo) }
	cves := []string{"CVE-2024-6387", "CVE-2023-44487", "CVE-2022-0778", "CVE-2021-44228"}

	var assets []map[string]any
	for i, host := range []string{"www." + domain, "mail." + domain, "api." + domain} {
		sca := score(1, 10)
		var risks []map[string]any
		for j := 0; j <= i; j++ {
			risks = append(risks, map[string]any{
				"cve_id":     cves[rand.Intn(len(cves))],
				"cvss_score": score(3, 10),
				"risk_score": score(1, 9),
			})
		}
		assets = append(assets, map[string]any{
			"id":         uuid.NewString(),
			"value":      host,
			"asset_type": "SUBDOMAIN",
			"sca_score":  sca,
			"sca_c":      score(1, 10),
			"sca_i":      score(1, 10),
			"sca_d":      score(1, 10),
			"risks":      risks,
		})
	}
	total := score(2, 9)
	return assets, &total
}

func main() {
	addr := flag.String("addr", ":8000", "listen address")
	delay := flag.Duration("delay", 15*time.Second, "time before a started scan reports COMPLETED")
	flag.Parse()

	s := &stub{scans: make(map[string]*stubScan), delay: *delay}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", s.login)
	mux.HandleFunc("POST /api/v1/scans", s.startScan)
	mux.HandleFunc("GET /api/v1/dashboards/{scanID}", s.dashboard)

	fmt.Printf("Stub upstream listening on %s (credentials demo/demo)\n", *addr)
	if err := http.ListenAndServe(*addr, mux); err != nil {
		fmt.Fprintf(os.Stderr, "serve: %v\n", err)
		os.Exit(1)
	}
}
