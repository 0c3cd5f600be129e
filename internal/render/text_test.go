package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/seclens/seclens/internal/dashboard"
)

func f(v float64) *float64 { return &v }

func TestWriteText(t *testing.T) {
	view := dashboard.BuildView(&dashboard.Snapshot{
		ScanID:         "abc-123",
		DomainName:     "example.com",
		Status:         "COMPLETED",
		RequestedAt:    time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		TotalRiskScore: f(5),
		Assets: []dashboard.Asset{
			{
				ID: "a1", Value: "www.example.com", AssetType: "hostname", SCAScore: f(9.0),
				Risks: []dashboard.Risk{{CVEID: "CVE-2024-1234", CVSSScore: 9.8, RiskScore: 8.0}},
			},
			{ID: "a2", Value: "203.0.113.7", AssetType: "ip", SCAScore: f(3.0)},
		},
	})

	var buf bytes.Buffer
	WriteText(&buf, &view)
	out := buf.String()

	for _, want := range []string{
		"example.com",
		"abc-123",
		"COMPLETED [SUCCESS]",
		"Aggregate Risk Score: 5.00",
		"www.example.com (hostname)  SCA: 9.00 [CRITICAL]",
		"203.0.113.7 (ip)  SCA: 3.00 [ELEVATED]",
		"CVE-2024-1234  CVSS: 9.8  Risk (NR): 8.00 [CRITICAL]",
		"https://nvd.nist.gov/vuln/detail/CVE-2024-1234",
		"No risks found for this asset.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}

	// assets render in input order
	if strings.Index(out, "www.example.com") > strings.Index(out, "203.0.113.7") {
		t.Error("asset order not preserved")
	}
}

func TestWriteText_NoAssets(t *testing.T) {
	view := dashboard.BuildView(&dashboard.Snapshot{
		ScanID:     "empty-1",
		DomainName: "example.org",
		Status:     "PENDING",
	})

	var buf bytes.Buffer
	WriteText(&buf, &view)

	if !strings.Contains(buf.String(), "No assets have been discovered for this scan yet.") {
		t.Errorf("missing empty-state placeholder:\n%s", buf.String())
	}
	if strings.Contains(buf.String(), "Asset ID") {
		t.Error("empty snapshot should not render asset entries")
	}
}
