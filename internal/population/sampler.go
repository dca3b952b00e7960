package population

import (
	"math"
	"math/rand/v2"

	"github.com/brianvoe/gofakeit/v7"
	"gonum.org/v1/gonum/stat/distuv"

	"OptiLiveAudit/internal/domain"
)

const (
	minAge = 18
	maxAge = 89

	// lowIncome gates debt and housing risk, singleParentIncome gates single parenthood.
	lowIncome          = 20000
	singleParentIncome = 30000

	migrantIncomeFactor    = 0.8
	disabilityIncomeFactor = 0.7

	nameStream = 0x6e616d6573
)

type incomeParams struct {
	mean, sd float64
}

var incomeByEmployment = map[domain.Employment]incomeParams{
	domain.EmploymentEmployed:   {mean: 50000, sd: 15000},
	domain.EmploymentRetired:    {mean: 25000, sd: 5000},
	domain.EmploymentUnemployed: {mean: 12000, sd: 3000},
	domain.EmploymentStudent:    {mean: 12000, sd: 3000},
}

// choice draws one of values with the paired weights.
type choice[T any] struct {
	values []T
	dist   distuv.Categorical
}

func newChoice[T any](src rand.Source, values []T, weights []float64) choice[T] {
	return choice[T]{values: values, dist: distuv.NewCategorical(weights, src)}
}

func (c choice[T]) draw() T {
	return c.values[int(c.dist.Rand())]
}

// sampler owns one RNG sub-stream and the distributions bound to it.
type sampler struct {
	src   rand.Source
	rng   *rand.Rand
	names *gofakeit.Faker

	gender choice[domain.Gender]
	origin choice[domain.Origin]

	employmentDisabled choice[domain.Employment]
	employmentNative   choice[domain.Employment]
	employmentMigrant  choice[domain.Employment]

	criminalNonEU choice[domain.CriminalRecord]
	criminalOther choice[domain.CriminalRecord]

	debtLowIncome  choice[domain.DebtHistory]
	debtHighIncome choice[domain.DebtHistory]

	housingExposed   choice[domain.HousingStatus]
	housingSheltered choice[domain.HousingStatus]
}

func newSampler(seed, block uint64) *sampler {
	src := rand.NewPCG(seed, block)
	employments := domain.Employments()
	criminal := domain.CriminalRecords()
	debt := domain.DebtHistories()
	housing := domain.HousingStatuses()

	return &sampler{
		src:   src,
		rng:   rand.New(src),
		names: gofakeit.New(nameSeed(seed, block)),

		gender: newChoice(src, domain.Genders(), []float64{0.49, 0.49, 0.02}),
		origin: newChoice(src, domain.Origins(), []float64{0.75, 0.10, 0.15}),

		employmentDisabled: newChoice(src, employments, []float64{0.30, 0.20, 0.05, 0.45}),
		employmentNative:   newChoice(src, employments, []float64{0.70, 0.05, 0.05, 0.20}),
		employmentMigrant:  newChoice(src, employments, []float64{0.50, 0.20, 0.10, 0.20}),

		criminalNonEU: newChoice(src, criminal, []float64{0.85, 0.10, 0.05}),
		criminalOther: newChoice(src, criminal, []float64{0.95, 0.04, 0.01}),

		debtLowIncome:  newChoice(src, debt, []float64{0.4, 0.4, 0.2}),
		debtHighIncome: newChoice(src, debt, []float64{0.8, 0.15, 0.05}),

		housingExposed:   newChoice(src, housing, []float64{0.4, 0.4, 0.2}),
		housingSheltered: newChoice(src, housing, []float64{0.9, 0.08, 0.02}),
	}
}

// nameSeed derives a non-zero seed for the name stream; gofakeit treats 0 as "random".
func nameSeed(seed, block uint64) uint64 {
	return rand.New(rand.NewPCG(seed^nameStream, block)).Uint64() | 1
}

func (s *sampler) citizen() domain.CitizenRecord {
	c := domain.CitizenRecord{Name: s.names.Name()}

	c.Gender = s.gender.draw()
	c.Age = minAge + s.rng.IntN(maxAge-minAge+1)
	c.Origin = s.origin.draw()
	c.Disability = s.bernoulli(0.10)

	c.Employment = s.employment(c)
	c.Income = s.income(c)

	if c.Origin == domain.OriginNonEUMigrant {
		c.CriminalRecord = s.criminalNonEU.draw()
	} else {
		c.CriminalRecord = s.criminalOther.draw()
	}

	if c.Income < lowIncome {
		c.DebtHistory = s.debtLowIncome.draw()
	} else {
		c.DebtHistory = s.debtHighIncome.draw()
	}

	if c.Income < singleParentIncome {
		c.SingleParent = s.bernoulli(0.30)
	} else {
		c.SingleParent = s.bernoulli(0.10)
	}

	if c.Income < lowIncome || c.Origin == domain.OriginNonEUMigrant {
		c.HousingStatus = s.housingExposed.draw()
	} else {
		c.HousingStatus = s.housingSheltered.draw()
	}

	return c
}

func (s *sampler) employment(c domain.CitizenRecord) domain.Employment {
	switch {
	case c.Disability:
		return s.employmentDisabled.draw()
	case c.Origin == domain.OriginNative:
		return s.employmentNative.draw()
	default:
		return s.employmentMigrant.draw()
	}
}

func (s *sampler) income(c domain.CitizenRecord) int {
	p := incomeByEmployment[c.Employment]
	income := distuv.Normal{Mu: p.mean, Sigma: p.sd, Src: s.src}.Rand()

	if c.Origin != domain.OriginNative {
		income *= migrantIncomeFactor
	}
	if c.Disability {
		income *= disabilityIncomeFactor
	}

	return int(math.Max(0, income))
}

func (s *sampler) bernoulli(p float64) bool {
	return distuv.Bernoulli{P: p, Src: s.src}.Rand() == 1
}
