package domain

import "slices"

// GeoTargeting describes where a campaign is delivered. Only country level
// targeting is supported; audience refinement is left to the platform's
// automated expansion.
type GeoTargeting struct {
	Countries []string `json:"countries"`
}

// DefaultGeo is applied when a spec carries no geo targeting.
var DefaultGeo = GeoTargeting{Countries: []string{"SG"}}

// IncludesSingapore reports whether the regulated Singapore market is among
// the targeted countries, which obliges the ad group to carry universal-ads
// regulatory fields.
func (g GeoTargeting) IncludesSingapore() bool {
	return slices.Contains(g.Countries, "SG") || slices.Contains(g.Countries, "Singapore")
}
