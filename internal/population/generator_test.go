package population

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"OptiLiveAudit/internal/domain"
)

func TestGenerateIsDeterministic(t *testing.T) {
	t.Parallel()

	gen := NewGenerator()
	first, err := gen.Generate(1200, 42)
	require.NoError(t, err)
	second, err := gen.Generate(1200, 42)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGenerateIndependentOfWorkerCount(t *testing.T) {
	t.Parallel()

	serial, err := NewGenerator(WithWorkers(1), WithBlockSize(64)).Generate(1000, 7)
	require.NoError(t, err)
	parallel, err := NewGenerator(WithWorkers(8), WithBlockSize(64)).Generate(1000, 7)
	require.NoError(t, err)

	assert.Equal(t, serial, parallel)
}

func TestGenerateDifferentSeedsDiffer(t *testing.T) {
	t.Parallel()

	gen := NewGenerator()
	a, err := gen.Generate(200, 1)
	require.NoError(t, err)
	b, err := gen.Generate(200, 2)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestGenerateRejectsInvalidCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		gen   *Generator
		count int
	}{
		{name: "zero", gen: NewGenerator(), count: 0},
		{name: "negative", gen: NewGenerator(), count: -5},
		{name: "above maximum", gen: NewGenerator(WithMaxPopulation(100)), count: 101},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := tt.gen.Generate(tt.count, 42)
			require.ErrorIs(t, err, domain.ErrInvalidArgument)
			assert.Nil(t, records)
		})
	}
}

func TestGenerateRespectsAttributeDomains(t *testing.T) {
	t.Parallel()

	records, err := NewGenerator().Generate(3000, 42)
	require.NoError(t, err)
	require.Len(t, records, 3000)

	for i, r := range records {
		require.NoError(t, r.Validate(), "record %d", i)
		require.GreaterOrEqual(t, r.Age, 18, "record %d", i)
		require.LessOrEqual(t, r.Age, 89, "record %d", i)
		require.GreaterOrEqual(t, r.Income, 0, "record %d", i)
		require.NotEmpty(t, r.Name, "record %d", i)
	}
}

func TestGenerateConditionalStructure(t *testing.T) {
	t.Parallel()

	records, err := NewGenerator().Generate(5000, 42)
	require.NoError(t, err)

	for i, r := range records {
		if r.Employment == domain.EmploymentUnemployed || r.Employment == domain.EmploymentStudent {
			assert.Less(t, r.Income, 40000, "record %d: welfare-level income far outside its distribution", i)
		}
	}

	var nonEU, nonEUWithRecord, others, othersWithRecord int
	var disabled, disabledRetired int
	for _, r := range records {
		if r.Origin == domain.OriginNonEUMigrant {
			nonEU++
			if r.CriminalRecord != domain.CriminalRecordNone {
				nonEUWithRecord++
			}
		} else {
			others++
			if r.CriminalRecord != domain.CriminalRecordNone {
				othersWithRecord++
			}
		}
		if r.Disability {
			disabled++
			if r.Employment == domain.EmploymentRetired {
				disabledRetired++
			}
		}
	}

	require.NotZero(t, nonEU)
	require.NotZero(t, others)
	require.NotZero(t, disabled)

	// Expected 15% vs 5% record rates and 45% retirement among disabled citizens.
	assert.Greater(t, float64(nonEUWithRecord)/float64(nonEU), float64(othersWithRecord)/float64(others))
	assert.InDelta(t, 0.45, float64(disabledRetired)/float64(disabled), 0.12)
}

func TestGenerateMarginals(t *testing.T) {
	t.Parallel()

	records, err := NewGenerator().Generate(5000, 99)
	require.NoError(t, err)

	counts := map[domain.Origin]int{}
	var disabled int
	for _, r := range records {
		counts[r.Origin]++
		if r.Disability {
			disabled++
		}
	}

	n := float64(len(records))
	assert.InDelta(t, 0.75, float64(counts[domain.OriginNative])/n, 0.04)
	assert.InDelta(t, 0.10, float64(counts[domain.OriginEUMigrant])/n, 0.03)
	assert.InDelta(t, 0.15, float64(counts[domain.OriginNonEUMigrant])/n, 0.03)
	assert.InDelta(t, 0.10, float64(disabled)/n, 0.03)
}
