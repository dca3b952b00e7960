package domain

// Gender enumerates self-reported gender.
type Gender string

const (
	GenderMale      Gender = "Male"
	GenderFemale    Gender = "Female"
	GenderNonBinary Gender = "Non-Binary"
)

// Origin enumerates migration background.
type Origin string

const (
	OriginNative       Origin = "Native"
	OriginEUMigrant    Origin = "EU-Migrant"
	OriginNonEUMigrant Origin = "Non-EU-Migrant"
)

// Employment enumerates labour-market status.
type Employment string

const (
	EmploymentEmployed   Employment = "Employed"
	EmploymentUnemployed Employment = "Unemployed"
	EmploymentStudent    Employment = "Student"
	EmploymentRetired    Employment = "Retired"
)

// CriminalRecord enumerates recorded offences by severity.
type CriminalRecord string

const (
	CriminalRecordNone  CriminalRecord = "None"
	CriminalRecordMinor CriminalRecord = "Minor"
	CriminalRecordMajor CriminalRecord = "Major"
)

// DebtHistory enumerates outstanding debt levels.
type DebtHistory string

const (
	DebtHistoryNone DebtHistory = "None"
	DebtHistoryLow  DebtHistory = "Low"
	DebtHistoryHigh DebtHistory = "High"
)

// HousingStatus enumerates the current housing situation.
type HousingStatus string

const (
	HousingStable      HousingStatus = "Stable"
	HousingOvercrowded HousingStatus = "Overcrowded"
	HousingAtRisk      HousingStatus = "AtRisk"
)

var (
	genders         = []Gender{GenderMale, GenderFemale, GenderNonBinary}
	origins         = []Origin{OriginNative, OriginEUMigrant, OriginNonEUMigrant}
	employments     = []Employment{EmploymentEmployed, EmploymentUnemployed, EmploymentStudent, EmploymentRetired}
	criminalRecords = []CriminalRecord{CriminalRecordNone, CriminalRecordMinor, CriminalRecordMajor}
	debtHistories   = []DebtHistory{DebtHistoryNone, DebtHistoryLow, DebtHistoryHigh}
	housingStatuses = []HousingStatus{HousingStable, HousingOvercrowded, HousingAtRisk}
)

// Genders returns every gender in canonical order.
func Genders() []Gender { return append([]Gender(nil), genders...) }

// Origins returns every origin in canonical order.
func Origins() []Origin { return append([]Origin(nil), origins...) }

// Employments returns every employment status in canonical order.
func Employments() []Employment { return append([]Employment(nil), employments...) }

// CriminalRecords returns every criminal record level in canonical order.
func CriminalRecords() []CriminalRecord { return append([]CriminalRecord(nil), criminalRecords...) }

// DebtHistories returns every debt level in canonical order.
func DebtHistories() []DebtHistory { return append([]DebtHistory(nil), debtHistories...) }

// HousingStatuses returns every housing status in canonical order.
func HousingStatuses() []HousingStatus { return append([]HousingStatus(nil), housingStatuses...) }

func (g Gender) Valid() bool         { return contains(genders, g) }
func (o Origin) Valid() bool         { return contains(origins, o) }
func (e Employment) Valid() bool     { return contains(employments, e) }
func (c CriminalRecord) Valid() bool { return contains(criminalRecords, c) }
func (d DebtHistory) Valid() bool    { return contains(debtHistories, d) }
func (h HousingStatus) Valid() bool  { return contains(housingStatuses, h) }

// ParseGender converts a label into a Gender.
func ParseGender(s string) (Gender, error) { return parseEnum("gender", genders, s) }

// ParseOrigin converts a label into an Origin.
func ParseOrigin(s string) (Origin, error) { return parseEnum("origin", origins, s) }

// ParseEmployment converts a label into an Employment status.
func ParseEmployment(s string) (Employment, error) { return parseEnum("employment", employments, s) }

// ParseCriminalRecord converts a label into a CriminalRecord level.
func ParseCriminalRecord(s string) (CriminalRecord, error) {
	return parseEnum("criminal record", criminalRecords, s)
}

// ParseDebtHistory converts a label into a DebtHistory level.
func ParseDebtHistory(s string) (DebtHistory, error) {
	return parseEnum("debt history", debtHistories, s)
}

// ParseHousingStatus converts a label into a HousingStatus.
func ParseHousingStatus(s string) (HousingStatus, error) {
	return parseEnum("housing status", housingStatuses, s)
}

// CitizenRecord is one synthetic individual produced by the population generator.
type CitizenRecord struct {
	Name           string         `json:"name"`
	Age            int            `json:"age"`
	Gender         Gender         `json:"gender"`
	Origin         Origin         `json:"origin"`
	Employment     Employment     `json:"employment"`
	Income         int            `json:"income"`
	CriminalRecord CriminalRecord `json:"criminalRecord"`
	DebtHistory    DebtHistory    `json:"debtHistory"`
	SingleParent   bool           `json:"singleParent"`
	Disability     bool           `json:"disability"`
	HousingStatus  HousingStatus  `json:"housingStatus"`
}

// Validate reports the first categorical field holding a value outside its enumeration.
func (c CitizenRecord) Validate() error {
	switch {
	case !c.Gender.Valid():
		return unrecognized("gender", string(c.Gender))
	case !c.Origin.Valid():
		return unrecognized("origin", string(c.Origin))
	case !c.Employment.Valid():
		return unrecognized("employment", string(c.Employment))
	case !c.CriminalRecord.Valid():
		return unrecognized("criminal record", string(c.CriminalRecord))
	case !c.DebtHistory.Valid():
		return unrecognized("debt history", string(c.DebtHistory))
	case !c.HousingStatus.Valid():
		return unrecognized("housing status", string(c.HousingStatus))
	case c.Income < 0:
		return Invalidf("income must be non-negative, got %d", c.Income)
	}
	return nil
}

// ScoredRecord pairs a citizen with the Social Utility Score assigned to them.
type ScoredRecord struct {
	CitizenRecord
	SocialUtilityScore int `json:"socialUtilityScore"`
}

func contains[T comparable](values []T, v T) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func parseEnum[T ~string](field string, values []T, s string) (T, error) {
	for _, v := range values {
		if string(v) == s {
			return v, nil
		}
	}
	var zero T
	return zero, unrecognized(field, s)
}
