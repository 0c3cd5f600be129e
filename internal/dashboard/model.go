// Package dashboard consumes the read model's aggregate scan snapshot and
// turns it into a severity-classified hierarchical view.
package dashboard

import "time"

// Snapshot is the aggregate read model for one scan as served by the
// dashboard service. It is immutable once received; every poll yields a
// fresh snapshot that fully replaces the previous rendered view.
type Snapshot struct {
	ScanID         string    `json:"scan_id"`
	DomainName     string    `json:"domain_name"`
	Status         string    `json:"status"`
	RequestedAt    time.Time `json:"requested_at"`
	TotalRiskScore *float64  `json:"total_risk_score"`
	Assets         []Asset   `json:"assets"`
}

// Asset is one discovered asset with its composite security-assessment
// scores. Optional scores are nil when the scan has not produced them yet.
type Asset struct {
	ID        string   `json:"id"`
	Value     string   `json:"value"`
	AssetType string   `json:"asset_type"`
	SCAScore  *float64 `json:"sca_score"`
	SCAConf   *float64 `json:"sca_c"`
	SCAInteg  *float64 `json:"sca_i"`
	SCAAvail  *float64 `json:"sca_d"`
	Risks     []Risk   `json:"risks"`
}

// Risk is a single vulnerability finding on an asset.
type Risk struct {
	CVEID     string  `json:"cve_id"`
	CVSSScore float64 `json:"cvss_score"`
	RiskScore float64 `json:"risk_score"`
}

// StatusCompleted is the only status value the console interprets; the
// enum is otherwise server-defined and open-ended.
const StatusCompleted = "COMPLETED"
