// Package render writes a dashboard view as indented text for terminals.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/seclens/seclens/internal/dashboard"
)

func tierLabel(tier dashboard.Tier) string {
	return "[" + strings.ToUpper(string(tier)) + "]"
}

// WriteText prints the hierarchical scan view: summary first, then each
// asset in order with its sub-scores and risks.
func WriteText(w io.Writer, view *dashboard.View) {
	sum := view.Summary
	fmt.Fprintf(w, "Scan Overview: %s\n", sum.DomainName)
	fmt.Fprintf(w, "  Scan ID:              %s\n", sum.ScanID)
	fmt.Fprintf(w, "  Status:               %s %s\n", sum.Status, tierLabel(sum.StatusTier))
	fmt.Fprintf(w, "  Requested:            %s\n", sum.RequestedAt)
	fmt.Fprintf(w, "  Aggregate Risk Score: %s\n", sum.TotalRiskScore)
	fmt.Fprintf(w, "\nDiscovered Assets (%d)\n", sum.AssetCount)

	if len(view.Assets) == 0 {
		fmt.Fprintln(w, "  No assets have been discovered for this scan yet.")
		return
	}

	for _, asset := range view.Assets {
		fmt.Fprintf(w, "\n  %s (%s)  SCA: %s %s\n", asset.Value, asset.AssetType, asset.SCAScore, tierLabel(asset.SCATier))
		fmt.Fprintf(w, "    Asset ID: %s\n", asset.ID)
		fmt.Fprintf(w, "    CIA: C:%s I:%s A:%s\n", asset.SCAConf, asset.SCAInteg, asset.SCAAvail)
		fmt.Fprintf(w, "    Risks (%d)\n", asset.RiskCount)

		if len(asset.Risks) == 0 {
			fmt.Fprintln(w, "      No risks found for this asset.")
			continue
		}
		for _, risk := range asset.Risks {
			fmt.Fprintf(w, "      %s  CVSS: %s  Risk (NR): %s %s\n",
				risk.CVEID, risk.CVSSScore, risk.RiskScore, tierLabel(risk.Tier))
			fmt.Fprintf(w, "        %s\n", risk.CVEURL)
		}
	}
}
