package shaderoute

import (
	"github.com/pkg/errors"
)

const (
	heatWeight = 2.0

	tunnelPenalty            = 0.4
	crosswalkPenalty         = 0.2
	footbridgePenalty        = 0.3
	footbridgeCoolingPenalty = 1.0

	// Links at least this long without obstructions count as main road
	mainMinLength    = 100.0
	mainMinorFactor  = 1.5
	mainNormalFactor = 1.0
)

// facilityPenalty returns facility surcharge of link for the profile
func facilityPenalty(link *NetworkLink, p Profile) float64 {
	penalty := 0.0
	if link.tunnel {
		penalty += tunnelPenalty
	}
	if link.crosswalk {
		penalty += crosswalkPenalty
	}
	if link.footbridge {
		if p == PROFILE_COOLING {
			penalty += footbridgeCoolingPenalty
		} else {
			penalty += footbridgePenalty
		}
	}
	return penalty
}

func mainFactor(link *NetworkLink) float64 {
	if link.lengthMeters >= mainMinLength && !link.tunnel && !link.footbridge && !link.indoor {
		return mainNormalFactor
	}
	return mainMinorFactor
}

// Annotate selects shadow ratios and computes per-profile costs of every link.
//
// Network must be a request-scoped clone. Personal costs are computed only when pref is not nil.
func Annotate(net *Network, cond Condition, pref *Preference) error {
	if net.frozen {
		return errors.Wrap(ErrInvalidInput, "Can't annotate shared base network, clone it first")
	}
	if err := cond.Validate(); err != nil {
		return errors.Wrap(err, "Can't annotate network")
	}
	if pref != nil {
		if err := pref.Validate(); err != nil {
			return errors.Wrap(err, "Can't annotate network")
		}
	}
	rain := rainPenalty(cond.RainMM)
	for i := range net.links {
		link := &net.links[i]
		if cond.RainMM > 0 {
			link.shadowRatio = 0.0
		} else {
			link.shadowRatio = link.shadowByHour[cond.TimeSlot-FirstTimeSlot]
		}
		length := link.lengthMeters
		heat := (1 - link.shadowRatio) * heatWeight
		_, fatigue := indoorPenalty(link)

		costs := Costs{}
		costs.set(PROFILE_SHORTEST, length*(1+rain+facilityPenalty(link, PROFILE_SHORTEST)))
		costs.set(PROFILE_MAIN, length*mainFactor(link)*(1+rain+facilityPenalty(link, PROFILE_MAIN)))
		costs.set(PROFILE_COOLING, length*(1+heat+fatigue+rain+facilityPenalty(link, PROFILE_COOLING)))
		if pref != nil {
			cw := pref.CoolingWeight
			costs.set(PROFILE_PERSONAL, length*(1+heat*cw+(1-cw)+rain+pref.avoidancePenalty(link)))
		}
		link.costs = costs
	}
	net.timeSlot = cond.TimeSlot
	net.rainMM = cond.RainMM
	net.personal = pref != nil
	net.annotated = true
	return nil
}
