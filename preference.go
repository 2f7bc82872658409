package shaderoute

import (
	"math"
	"sort"
	"strings"
)

const (
	// DefaultDetourLimit is used when request carries no detour budget
	DefaultDetourLimit = 0.2
)

// Preference holds personal routing preferences
type Preference struct {
	CoolingWeight   float64 `json:"cooling_weight"`
	DetourLimit     float64 `json:"detour_limit"`
	AvoidTunnel     bool    `json:"avoid_tunnel"`
	AvoidFootbridge bool    `json:"avoid_footbridge"`
	AvoidIndoor     bool    `json:"avoid_indoor"`
}

// Validate checks that weights are in [0, 1]
func (pref *Preference) Validate() error {
	if math.IsNaN(pref.CoolingWeight) || pref.CoolingWeight < 0 || pref.CoolingWeight > 1 {
		return invalidInputf("cooling weight %f is out of [0, 1]", pref.CoolingWeight)
	}
	if math.IsNaN(pref.DetourLimit) || pref.DetourLimit < 0 || pref.DetourLimit > 1 {
		return invalidInputf("detour limit %f is out of [0, 1]", pref.DetourLimit)
	}
	return nil
}

// avoidancePenalty sums opt-in avoidance weights for facilities present on the link
func (pref *Preference) avoidancePenalty(link *NetworkLink) float64 {
	penalty := 0.0
	if pref.AvoidTunnel && link.tunnel {
		penalty += 0.6
	}
	if pref.AvoidFootbridge && link.footbridge {
		penalty += 0.4
	}
	if pref.AvoidIndoor && link.indoor {
		penalty += 0.5
	}
	return penalty
}

var personas = map[string]Preference{
	"custom":  {CoolingWeight: 0.5, DetourLimit: 0.2, AvoidIndoor: true},
	"2030":    {CoolingWeight: 0.5, DetourLimit: 0.2, AvoidIndoor: true},
	"elderly": {CoolingWeight: 0.8, DetourLimit: 0.4, AvoidFootbridge: true, AvoidTunnel: true, AvoidIndoor: true},
	"office":  {CoolingWeight: 0.7, DetourLimit: 0.15, AvoidTunnel: true},
	"health":  {CoolingWeight: 1.0, DetourLimit: 0.5, AvoidFootbridge: true, AvoidTunnel: true},
}

// PersonaPreference returns preset preference for persona name
func PersonaPreference(name string) (Preference, error) {
	pref, ok := personas[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Preference{}, invalidInputf("unknown persona '%s'", name)
	}
	return pref, nil
}

// PersonaNames returns sorted names of persona presets
func PersonaNames() []string {
	names := make([]string, 0, len(personas))
	for name := range personas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
