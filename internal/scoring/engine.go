// Package scoring implements the rule-based Social Utility Score. The
// constants are the parameters under audit and must not be tuned.
package scoring

import (
	"math"

	"OptiLiveAudit/internal/domain"
)

const (
	MinScore  = 0
	MaxScore  = 1000
	BaseScore = 500

	incomeDivisor  = 250.0
	maxIncomeBonus = 200.0

	singleParentPenalty = -50
	disabilityPenalty   = -50
)

var employmentDelta = map[domain.Employment]float64{
	domain.EmploymentEmployed:   150,
	domain.EmploymentRetired:    50,
	domain.EmploymentStudent:    20,
	domain.EmploymentUnemployed: -100,
}

var criminalRecordDelta = map[domain.CriminalRecord]float64{
	domain.CriminalRecordMajor: -300,
	domain.CriminalRecordMinor: -100,
	domain.CriminalRecordNone:  0,
}

var debtHistoryDelta = map[domain.DebtHistory]float64{
	domain.DebtHistoryHigh: -150,
	domain.DebtHistoryLow:  -50,
	domain.DebtHistoryNone: 0,
}

var housingDelta = map[domain.HousingStatus]float64{
	domain.HousingAtRisk:      -150,
	domain.HousingOvercrowded: -50,
	domain.HousingStable:      0,
}

// Breakdown lists every additive term of a score before clamping.
type Breakdown struct {
	Base           float64
	Employment     float64
	IncomeBonus    float64
	CriminalRecord float64
	DebtHistory    float64
	SingleParent   float64
	Disability     float64
	HousingStatus  float64
}

// Sum adds all terms.
func (b Breakdown) Sum() float64 {
	return b.Base + b.Employment + b.IncomeBonus + b.CriminalRecord +
		b.DebtHistory + b.SingleParent + b.Disability + b.HousingStatus
}

// Contributions computes each term for r. Values outside an enumeration
// contribute 0; use ScoreRecord to reject them instead.
func Contributions(r domain.CitizenRecord) Breakdown {
	b := Breakdown{
		Base:           BaseScore,
		Employment:     employmentDelta[r.Employment],
		IncomeBonus:    math.Min(maxIncomeBonus, float64(r.Income)/incomeDivisor),
		CriminalRecord: criminalRecordDelta[r.CriminalRecord],
		DebtHistory:    debtHistoryDelta[r.DebtHistory],
		HousingStatus:  housingDelta[r.HousingStatus],
	}
	if r.SingleParent {
		b.SingleParent = singleParentPenalty
	}
	if r.Disability {
		b.Disability = disabilityPenalty
	}
	return b
}

// Score returns the Social Utility Score of r, clamped to [MinScore, MaxScore].
func Score(r domain.CitizenRecord) int {
	sum := Contributions(r).Sum()
	return int(math.Floor(math.Max(MinScore, math.Min(MaxScore, sum))))
}

// ScoreRecord validates r and attaches its score.
func ScoreRecord(r domain.CitizenRecord) (domain.ScoredRecord, error) {
	if err := r.Validate(); err != nil {
		return domain.ScoredRecord{}, err
	}
	return domain.ScoredRecord{CitizenRecord: r, SocialUtilityScore: Score(r)}, nil
}
