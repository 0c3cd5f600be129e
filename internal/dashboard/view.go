package dashboard

import "fmt"

// NotAvailable is the marker rendered in place of a score the scan has not
// produced yet.
const NotAvailable = "N/A"

// nvdBaseURL is the public vulnerability database each finding links to.
const nvdBaseURL = "https://nvd.nist.gov/vuln/detail/"

// requestedAtLayout keeps the summary timestamp deterministic across hosts.
const requestedAtLayout = "Jan 2, 2006 15:04:05 MST"

// View is the typed view model produced from a Snapshot. All numeric fields
// are pre-formatted to fixed precision so every rendering surface (HTML,
// terminal, PDF) shows identical values.
type View struct {
	Summary Summary
	Assets  []AssetView
}

type Summary struct {
	DomainName     string
	ScanID         string
	Status         string
	StatusTier     Tier
	RequestedAt    string
	TotalRiskScore string
	AssetCount     int
}

type AssetView struct {
	ID        string
	Value     string
	AssetType string
	SCAScore  string
	SCATier   Tier
	SCAConf   string
	SCAInteg  string
	SCAAvail  string
	RiskCount int
	Risks     []RiskView
}

type RiskView struct {
	CVEID     string
	CVEURL    string
	CVSSScore string
	RiskScore string
	Tier      Tier
}

// BuildView is a pure transformation: no I/O, deterministic for a given
// snapshot, and the snapshot itself is never mutated. Asset and risk order
// is preserved verbatim.
func BuildView(snap *Snapshot) View {
	view := View{
		Summary: Summary{
			DomainName:     snap.DomainName,
			ScanID:         snap.ScanID,
			Status:         snap.Status,
			StatusTier:     StatusTier(snap.Status),
			RequestedAt:    snap.RequestedAt.Format(requestedAtLayout),
			TotalRiskScore: FormatScore(snap.TotalRiskScore),
			AssetCount:     len(snap.Assets),
		},
	}

	for _, asset := range snap.Assets {
		av := AssetView{
			ID:        asset.ID,
			Value:     asset.Value,
			AssetType: asset.AssetType,
			SCAScore:  FormatScore(asset.SCAScore),
			SCATier:   AssetTier(asset.SCAScore),
			SCAConf:   FormatScore(asset.SCAConf),
			SCAInteg:  FormatScore(asset.SCAInteg),
			SCAAvail:  FormatScore(asset.SCAAvail),
			RiskCount: len(asset.Risks),
		}
		for _, risk := range asset.Risks {
			av.Risks = append(av.Risks, RiskView{
				CVEID:     risk.CVEID,
				CVEURL:    nvdBaseURL + risk.CVEID,
				CVSSScore: fmt.Sprintf("%.1f", risk.CVSSScore),
				RiskScore: fmt.Sprintf("%.2f", risk.RiskScore),
				Tier:      RiskTier(risk.RiskScore),
			})
		}
		view.Assets = append(view.Assets, av)
	}

	return view
}

// FormatScore renders an optional 0..10 score with two decimals, or the
// not-available marker when absent.
func FormatScore(score *float64) string {
	if score == nil {
		return NotAvailable
	}
	return fmt.Sprintf("%.2f", *score)
}
