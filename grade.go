package shaderoute

import (
	"math"

	"github.com/pkg/errors"
)

// Grade is a letter grade of a route
type Grade uint16

const (
	GRADE_A = Grade(iota + 1)
	GRADE_B
	GRADE_C
	GRADE_D
)

func (iotaIdx Grade) String() string {
	return [...]string{"A", "B", "C", "D"}[iotaIdx-1]
}

// MarshalText makes grade a plain letter in JSON
func (iotaIdx Grade) MarshalText() ([]byte, error) {
	return []byte(iotaIdx.String()), nil
}

// step is a single breakpoint of a step function
type step struct {
	bound float64
	score float64
}

const fallbackScore = 30

var (
	// Lower is better: first bound the value doesn't exceed wins
	coolingSteps = []step{{-2.0, 100}, {-1.0, 80}, {-0.5, 60}}
	detourSteps  = []step{{0.10, 100}, {0.14, 80}, {0.20, 60}}
	timeSteps    = []step{{0.05, 100}, {0.10, 80}, {0.20, 60}}
	// Higher is better: first bound the value reaches wins
	shadowSteps = []step{{0.20, 100}, {0.10, 80}, {0.05, 60}}
)

func scoreAtMost(value float64, steps []step) float64 {
	for _, s := range steps {
		if value <= s.bound {
			return s.score
		}
	}
	return fallbackScore
}

func scoreAtLeast(value float64, steps []step) float64 {
	for _, s := range steps {
		if value >= s.bound {
			return s.score
		}
	}
	return fallbackScore
}

// Scores holds per-criterion scores of a route
type Scores struct {
	Cooling float64 `json:"cooling"`
	Shadow  float64 `json:"shadow"`
	Detour  float64 `json:"detour"`
	Time    float64 `json:"time"`
}

// Weights holds per-criterion weights of a profile. They sum up to 1
type Weights Scores

// GradeResult is a weighted score of a route and its letter grade
type GradeResult struct {
	Scores Scores  `json:"scores"`
	Score  float64 `json:"score"`
	Grade  Grade   `json:"grade"`
}

// ScoreKPI maps KPI values to per-criterion scores
func ScoreKPI(kpi KPIResult) Scores {
	return Scores{
		Cooling: scoreAtMost(kpi.Temperature.Diff, coolingSteps),
		Shadow:  scoreAtLeast(kpi.Shadow.Gain, shadowSteps),
		Detour:  scoreAtMost(kpi.Length.DetourRatio, detourSteps),
		Time:    scoreAtMost(kpi.Time.TimeRatio, timeSteps),
	}
}

// ProfileWeights returns criterion weights of the profile. Personal profile requires preference
func ProfileWeights(p Profile, pref *Preference) (Weights, error) {
	switch p {
	case PROFILE_COOLING:
		return Weights{Cooling: 0.35, Shadow: 0.30, Detour: 0.20, Time: 0.15}, nil
	case PROFILE_SHORTEST:
		return Weights{Cooling: 0.15, Shadow: 0.10, Detour: 0.35, Time: 0.40}, nil
	case PROFILE_MAIN:
		return Weights{Cooling: 0.20, Shadow: 0.15, Detour: 0.25, Time: 0.25}, nil
	case PROFILE_PERSONAL:
		if pref == nil {
			return Weights{}, errors.Wrap(ErrInvalidInput, "personal profile requires preference")
		}
		if err := pref.Validate(); err != nil {
			return Weights{}, err
		}
		cw := pref.CoolingWeight
		return Weights{
			Cooling: 0.15 + 0.4*cw,
			Shadow:  0.15 + 0.3*cw,
			Detour:  0.35 * (1 - cw),
			Time:    0.35 * (1 - cw),
		}, nil
	default:
		return Weights{}, invalidInputf("unknown profile %d", p)
	}
}

func gradeOf(total float64) Grade {
	switch {
	case total >= 85:
		return GRADE_A
	case total >= 70:
		return GRADE_B
	case total >= 55:
		return GRADE_C
	default:
		return GRADE_D
	}
}

// GradeRoute scores KPI with weights of the profile
func GradeRoute(kpi KPIResult, p Profile, pref *Preference) (GradeResult, error) {
	weights, err := ProfileWeights(p, pref)
	if err != nil {
		return GradeResult{}, errors.Wrap(err, "Can't grade route")
	}
	scores := ScoreKPI(kpi)
	total := scores.Cooling*weights.Cooling +
		scores.Shadow*weights.Shadow +
		scores.Detour*weights.Detour +
		scores.Time*weights.Time
	return GradeResult{
		Scores: scores,
		Score:  math.Round(total*10) / 10,
		Grade:  gradeOf(total),
	}, nil
}
