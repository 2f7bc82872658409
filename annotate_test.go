package shaderoute

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

func TestAnnotateParallel(t *testing.T) {
	base := parallelNetwork(t)
	pref := &Preference{CoolingWeight: 0.5, DetourLimit: 0.2}
	net := annotated(t, base, hotNoon, pref)
	assert.True(t, net.Annotated())
	assert.True(t, net.HasPersonalCosts())

	sunny, _ := net.LinkByID("sunny")
	shady, _ := net.LinkByID("shady")

	assert.InDelta(t, 100, sunny.Cost(PROFILE_SHORTEST), eps)
	assert.InDelta(t, 100, sunny.Cost(PROFILE_MAIN), eps)
	assert.InDelta(t, 300, sunny.Cost(PROFILE_COOLING), eps)
	assert.InDelta(t, 250, sunny.Cost(PROFILE_PERSONAL), eps)

	assert.InDelta(t, 120, shady.Cost(PROFILE_SHORTEST), eps)
	assert.InDelta(t, 120, shady.Cost(PROFILE_MAIN), eps)
	assert.InDelta(t, 120, shady.Cost(PROFILE_COOLING), eps)
	assert.InDelta(t, 180, shady.Cost(PROFILE_PERSONAL), eps)
}

func TestAnnotateRainDropsShade(t *testing.T) {
	net := annotated(t, parallelNetwork(t), Condition{TimeSlot: 12, RainMM: 5, Temperature: 28, Humidity: 90}, nil)
	assert.False(t, net.HasPersonalCosts())

	sunny, _ := net.LinkByID("sunny")
	shady, _ := net.LinkByID("shady")
	assert.Equal(t, 0.0, shady.ShadowRatio())
	assert.InDelta(t, 160, sunny.Cost(PROFILE_SHORTEST), eps)
	assert.InDelta(t, 360, sunny.Cost(PROFILE_COOLING), eps)
	assert.InDelta(t, 432, shady.Cost(PROFILE_COOLING), eps)
	assert.Equal(t, 0.0, sunny.Cost(PROFILE_PERSONAL))
}

func TestAnnotateFacilities(t *testing.T) {
	segments := []SegmentRecord{
		segment(1, 2, "bridge", 50, orb.Point{0, 0}, orb.Point{50, 0}),
		segment(2, 3, "station", 80, orb.Point{50, 0}, orb.Point{130, 0}),
		segment(3, 4, "tunnel", 100, orb.Point{130, 0}, orb.Point{230, 0}),
		segment(4, 5, "zebra", 20, orb.Point{230, 0}, orb.Point{250, 0}),
	}
	segments[0].Footbridge = true
	segments[1].Indoor = true
	segments[2].Tunnel = true
	segments[3].Crosswalk = true
	base, err := BuildNetwork(segments, nil)
	require.NoError(t, err)
	pref := &Preference{CoolingWeight: 0.5, DetourLimit: 0.2, AvoidIndoor: true, AvoidTunnel: true, AvoidFootbridge: true}
	net := annotated(t, base, hotNoon, pref)

	bridge, _ := net.LinkByID("bridge")
	assert.InDelta(t, 65, bridge.Cost(PROFILE_SHORTEST), eps)
	assert.InDelta(t, 97.5, bridge.Cost(PROFILE_MAIN), eps)
	// Footbridge surcharge under cooling profile replaces the regular one and stacks with heat exposure
	assert.InDelta(t, 200, bridge.Cost(PROFILE_COOLING), eps)
	assert.InDelta(t, 50*(1+1+0.5+0.4), bridge.Cost(PROFILE_PERSONAL), eps)

	station, _ := net.LinkByID("station")
	assert.Equal(t, INDOOR_STATION, station.IndoorType())
	assert.InDelta(t, 80, station.Cost(PROFILE_SHORTEST), eps)
	assert.InDelta(t, 120, station.Cost(PROFILE_MAIN), eps)
	assert.InDelta(t, 128, station.Cost(PROFILE_COOLING), eps)
	assert.InDelta(t, 160, station.Cost(PROFILE_PERSONAL), eps)

	tunnel, _ := net.LinkByID("tunnel")
	assert.InDelta(t, 140, tunnel.Cost(PROFILE_SHORTEST), eps)
	assert.InDelta(t, 210, tunnel.Cost(PROFILE_MAIN), eps)
	assert.InDelta(t, 140, tunnel.Cost(PROFILE_COOLING), eps)
	assert.InDelta(t, 100*(1+0.5+0.6), tunnel.Cost(PROFILE_PERSONAL), eps)

	zebra, _ := net.LinkByID("zebra")
	assert.InDelta(t, 24, zebra.Cost(PROFILE_SHORTEST), eps)
	assert.InDelta(t, 36, zebra.Cost(PROFILE_MAIN), eps)
	assert.InDelta(t, 64, zebra.Cost(PROFILE_COOLING), eps)
}

func TestAnnotateCostNeverBelowLength(t *testing.T) {
	conditions := []Condition{
		hotNoon,
		{TimeSlot: 8, Temperature: 25, Humidity: 40},
		{TimeSlot: 17, RainMM: 1.5, Temperature: 30, Humidity: 80},
		{TimeSlot: 19, RainMM: 6, Temperature: 28, Humidity: 95},
	}
	for _, cw := range []float64{0, 0.3, 1} {
		for _, cond := range conditions {
			net := annotated(t, gridNetwork(t), cond, &Preference{CoolingWeight: cw, DetourLimit: 0.2})
			for i := 0; i < net.LinksNum(); i++ {
				link := net.Link(i)
				for _, p := range Profiles {
					assert.GreaterOrEqual(t, link.Cost(p), link.Length(), "link %s profile %s", link.ID, p)
				}
			}
		}
	}
}

func TestAnnotateInvalid(t *testing.T) {
	base := gridNetwork(t)
	cases := map[string]struct {
		cond Condition
		pref *Preference
	}{
		"early slot":     {cond: Condition{TimeSlot: 7, Temperature: 30, Humidity: 50}},
		"late slot":      {cond: Condition{TimeSlot: 20, Temperature: 30, Humidity: 50}},
		"negative rain":  {cond: Condition{TimeSlot: 12, RainMM: -1, Temperature: 30, Humidity: 50}},
		"humidity":       {cond: Condition{TimeSlot: 12, Temperature: 30, Humidity: 101}},
		"cooling weight": {cond: hotNoon, pref: &Preference{CoolingWeight: 1.1, DetourLimit: 0.2}},
		"detour limit":   {cond: hotNoon, pref: &Preference{CoolingWeight: 0.5, DetourLimit: -0.1}},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			err := Annotate(base.Clone(), c.cond, c.pref)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}
