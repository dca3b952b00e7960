package feature

import (
	"strconv"

	"OptiLiveAudit/internal/domain"
)

// Names of the sensitive features known to the default registry.
const (
	Gender         = "Gender"
	Origin         = "Origin"
	Employment     = "Employment"
	CriminalRecord = "CriminalRecord"
	DebtHistory    = "DebtHistory"
	SingleParent   = "SingleParent"
	Disability     = "Disability"
	HousingStatus  = "HousingStatus"
	AgeBand        = "AgeBand"
)

// DefaultAudit lists the features audited when the caller does not choose.
var DefaultAudit = []string{Gender, Origin, Employment, SingleParent, Disability, HousingStatus}

// Feature extracts the group value of one sensitive attribute.
type Feature interface {
	Name() string
	Value(r domain.CitizenRecord) string
}

// Func adapts a plain function to the Feature interface.
type Func struct {
	name    string
	extract func(domain.CitizenRecord) string
}

// NewFunc names an extractor.
func NewFunc(name string, extract func(domain.CitizenRecord) string) Func {
	return Func{name: name, extract: extract}
}

func (f Func) Name() string                        { return f.name }
func (f Func) Value(r domain.CitizenRecord) string { return f.extract(r) }

// Registry keeps a mapping from feature names to their extractors.
type Registry struct {
	features map[string]Feature
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{features: map[string]Feature{}}
}

// NewDefaultRegistry returns a registry with every CitizenRecord attribute
// that can partition a population.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewFunc(Gender, func(c domain.CitizenRecord) string { return string(c.Gender) }))
	r.Register(NewFunc(Origin, func(c domain.CitizenRecord) string { return string(c.Origin) }))
	r.Register(NewFunc(Employment, func(c domain.CitizenRecord) string { return string(c.Employment) }))
	r.Register(NewFunc(CriminalRecord, func(c domain.CitizenRecord) string { return string(c.CriminalRecord) }))
	r.Register(NewFunc(DebtHistory, func(c domain.CitizenRecord) string { return string(c.DebtHistory) }))
	r.Register(NewFunc(SingleParent, func(c domain.CitizenRecord) string { return strconv.FormatBool(c.SingleParent) }))
	r.Register(NewFunc(Disability, func(c domain.CitizenRecord) string { return strconv.FormatBool(c.Disability) }))
	r.Register(NewFunc(HousingStatus, func(c domain.CitizenRecord) string { return string(c.HousingStatus) }))
	r.Register(NewFunc(AgeBand, ageBand))
	return r
}

// Register adds or replaces a feature.
func (r *Registry) Register(f Feature) {
	if r.features == nil {
		r.features = map[string]Feature{}
	}
	r.features[f.Name()] = f
}

// Resolve returns a feature by name or an ErrInvalidArgument error if it is absent.
func (r *Registry) Resolve(name string) (Feature, error) {
	if f, ok := r.features[name]; ok {
		return f, nil
	}
	return nil, domain.Invalidf("sensitive feature %q is not registered", name)
}

// ResolveAll resolves names in order. A name may appear only once.
func (r *Registry) ResolveAll(names []string) ([]Feature, error) {
	out := make([]Feature, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			return nil, domain.Invalidf("sensitive feature %q listed more than once", name)
		}
		seen[name] = true
		f, err := r.Resolve(name)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func ageBand(c domain.CitizenRecord) string {
	switch {
	case c.Age < 30:
		return "18-29"
	case c.Age < 45:
		return "30-44"
	case c.Age < 65:
		return "45-64"
	default:
		return "65+"
	}
}
