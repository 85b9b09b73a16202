package service

// Tier is the coarse availability class of a facility.
type Tier string

const (
	TierHigh     Tier = "high"
	TierModerate Tier = "moderate"
	TierLimited  Tier = "limited"
)

// Bed thresholds, inclusive lower bounds.
const (
	highAvailabilityBeds     = 12
	moderateAvailabilityBeds = 6
)

// Classify returns the tier for a free bed count.
// Rules:
//   - high: available >= 12
//   - moderate: 6 <= available < 12
//   - limited: available < 6
//
// Negative counts are rejected at catalog load and never reach here.
func Classify(available int) Tier {
	switch {
	case available >= highAvailabilityBeds:
		return TierHigh
	case available >= moderateAvailabilityBeds:
		return TierModerate
	default:
		return TierLimited
	}
}

// Label is the legend text for the tier.
func (t Tier) Label() string {
	switch t {
	case TierHigh:
		return "High availability"
	case TierModerate:
		return "Moderate"
	default:
		return "Limited"
	}
}

// Color is the marker color for the tier.
func (t Tier) Color() string {
	switch t {
	case TierHigh:
		return "#10b981"
	case TierModerate:
		return "#f59e0b"
	default:
		return "#ef4444"
	}
}

// Tiers lists every tier in legend order.
func Tiers() []Tier {
	return []Tier{TierHigh, TierModerate, TierLimited}
}
