package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategories(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		parse func(string) (string, error)
		valid []string
		field string
	}{
		{name: "gender", field: "gender", valid: []string{"Male", "Female", "Non-Binary"},
			parse: func(s string) (string, error) { v, err := ParseGender(s); return string(v), err }},
		{name: "origin", field: "origin", valid: []string{"Native", "EU-Migrant", "Non-EU-Migrant"},
			parse: func(s string) (string, error) { v, err := ParseOrigin(s); return string(v), err }},
		{name: "employment", field: "employment", valid: []string{"Employed", "Unemployed", "Student", "Retired"},
			parse: func(s string) (string, error) { v, err := ParseEmployment(s); return string(v), err }},
		{name: "criminal record", field: "criminal record", valid: []string{"None", "Minor", "Major"},
			parse: func(s string) (string, error) { v, err := ParseCriminalRecord(s); return string(v), err }},
		{name: "debt history", field: "debt history", valid: []string{"None", "Low", "High"},
			parse: func(s string) (string, error) { v, err := ParseDebtHistory(s); return string(v), err }},
		{name: "housing status", field: "housing status", valid: []string{"Stable", "Overcrowded", "AtRisk"},
			parse: func(s string) (string, error) { v, err := ParseHousingStatus(s); return string(v), err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			for _, label := range tt.valid {
				got, err := tt.parse(label)
				require.NoError(t, err)
				assert.Equal(t, label, got)
			}

			_, err := tt.parse("unknown")
			assert.ErrorIs(t, err, ErrUnrecognizedCategory)
			assert.ErrorContains(t, err, tt.field)
		})
	}
}

func TestValidateReportsFirstBadField(t *testing.T) {
	t.Parallel()

	c := CitizenRecord{
		Gender:         GenderMale,
		Origin:         OriginNative,
		Employment:     EmploymentEmployed,
		CriminalRecord: CriminalRecordNone,
		DebtHistory:    DebtHistoryNone,
		HousingStatus:  HousingStable,
	}
	require.NoError(t, c.Validate())

	c.DebtHistory = "Huge"
	c.HousingStatus = "Tent"
	err := c.Validate()
	assert.ErrorIs(t, err, ErrUnrecognizedCategory)
	assert.ErrorContains(t, err, `debt history "Huge"`)

	c.DebtHistory, c.HousingStatus = DebtHistoryLow, HousingAtRisk
	c.Income = -1
	assert.ErrorIs(t, c.Validate(), ErrInvalidArgument)
}
