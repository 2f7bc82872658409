package shaderoute

import (
	"strings"
)

// Profile is a named cost function used to rank paths
type Profile uint16

const (
	PROFILE_SHORTEST = Profile(iota + 1)
	PROFILE_MAIN
	PROFILE_COOLING
	PROFILE_PERSONAL
)

const profilesNum = 4

// Profiles lists every profile in presentation order
var Profiles = []Profile{PROFILE_SHORTEST, PROFILE_MAIN, PROFILE_COOLING, PROFILE_PERSONAL}

func (iotaIdx Profile) String() string {
	return [...]string{"shortest", "main", "cooling", "personal"}[iotaIdx-1]
}

// Valid reports whether profile is one of the known profiles
func (iotaIdx Profile) Valid() bool {
	return iotaIdx >= PROFILE_SHORTEST && iotaIdx <= PROFILE_PERSONAL
}

// ParseProfile returns profile for its textual name
func ParseProfile(s string) (Profile, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, p := range Profiles {
		if p.String() == name {
			return p, nil
		}
	}
	return 0, invalidInputf("unknown profile '%s'", s)
}

// Costs holds request-scoped cost of a link for every profile
type Costs [profilesNum]float64

// Get returns cost for given profile
func (c Costs) Get(p Profile) float64 {
	return c[p-1]
}

func (c *Costs) set(p Profile, v float64) {
	c[p-1] = v
}
