package dashboard

// Tier is a severity classification attached to assets, risks and the
// overall scan status.
type Tier string

const (
	TierCritical     Tier = "critical"
	TierHigh         Tier = "high"
	TierElevated     Tier = "elevated"
	TierLow          Tier = "low"
	TierUnclassified Tier = "unclassified"

	TierSuccess    Tier = "success"
	TierInProgress Tier = "in-progress"
)

// AssetTier classifies an asset's composite score. Lower bounds are
// inclusive and evaluated top-down, first match wins.
func AssetTier(score *float64) Tier {
	switch {
	case score == nil:
		return TierUnclassified
	case *score >= 8:
		return TierCritical
	case *score >= 5:
		return TierHigh
	case *score > 0:
		return TierElevated
	default:
		return TierUnclassified
	}
}

// RiskTier classifies a finding's normalized risk score.
func RiskTier(score float64) Tier {
	switch {
	case score >= 7:
		return TierCritical
	case score >= 4:
		return TierHigh
	default:
		return TierLow
	}
}

// StatusTier maps the server-defined scan status onto the two states the
// console distinguishes: done, or still converging.
func StatusTier(status string) Tier {
	if status == StatusCompleted {
		return TierSuccess
	}
	return TierInProgress
}
