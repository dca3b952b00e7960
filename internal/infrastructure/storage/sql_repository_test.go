package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"OptiLiveAudit/internal/domain"
	"OptiLiveAudit/internal/fairness"
	"OptiLiveAudit/internal/population"
	"OptiLiveAudit/internal/scoring"
)

func newSQLiteRepository(t *testing.T) *SQLRepository {
	t.Helper()

	ctx := context.Background()
	db, err := Open(ctx, DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := NewSQLRepository(db, DriverSQLite)
	require.NoError(t, repo.EnsureSchema(ctx))
	return repo
}

func sampleReport(t *testing.T, id string, size int) domain.AuditReport {
	t.Helper()

	citizens, err := population.NewGenerator().Generate(size, 7)
	require.NoError(t, err)
	scored, err := scoring.ScoreAll(citizens, 2)
	require.NoError(t, err)

	features := []string{"Origin", "Disability"}
	metrics, err := fairness.NewAggregator(nil).Aggregate(scored, features, fairness.DefaultThreshold)
	require.NoError(t, err)

	return domain.AuditReport{
		Run: domain.AuditRun{
			ID:         id,
			Seed:       1<<63 + 5,
			Population: size,
			Threshold:  fairness.DefaultThreshold,
			Features:   features,
			Status:     domain.RunCompleted,
			CreatedAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		},
		Citizens:    scored,
		Metrics:     metrics,
		Disparities: fairness.Disparities(metrics, fairness.DefaultDisparityTolerance),
	}
}

func TestSaveAndLoadReport(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newSQLiteRepository(t)
	// spans more than one insert batch
	report := sampleReport(t, "run-1", 1200)

	require.NoError(t, repo.SaveReport(ctx, report))

	run, err := repo.LoadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, report.Run.ID, run.ID)
	assert.Equal(t, report.Run.Seed, run.Seed)
	assert.Equal(t, report.Run.Population, run.Population)
	assert.Equal(t, report.Run.Threshold, run.Threshold)
	assert.Equal(t, report.Run.Features, run.Features)
	assert.Equal(t, domain.RunCompleted, run.Status)
	assert.True(t, report.Run.CreatedAt.Equal(run.CreatedAt))

	metrics, err := repo.LoadMetrics(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, metrics, len(report.Metrics))
	for i := range metrics {
		assert.Equal(t, report.Metrics[i].SensitiveFeature, metrics[i].SensitiveFeature)
		assert.Equal(t, report.Metrics[i].GroupValue, metrics[i].GroupValue)
		assert.Equal(t, report.Metrics[i].Count, metrics[i].Count)
		assert.InDelta(t, report.Metrics[i].SelectionRate, metrics[i].SelectionRate, 1e-12)
		assert.InDelta(t, report.Metrics[i].AverageRawScore, metrics[i].AverageRawScore, 1e-9)
		assert.InDelta(t, report.Metrics[i].OverallSelectionRate, metrics[i].OverallSelectionRate, 1e-12)
	}

	citizens, err := repo.LoadCitizens(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, report.Citizens, citizens)
}

func TestLoadUnknownRun(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newSQLiteRepository(t)

	_, err := repo.LoadRun(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = repo.LoadMetrics(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSaveReportRollsBackOnFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newSQLiteRepository(t)
	report := sampleReport(t, "dup", 50)

	require.NoError(t, repo.SaveReport(ctx, report))

	// second save collides on the primary key and must leave no partial rows
	report.Metrics = append(report.Metrics, report.Metrics[0])
	require.Error(t, repo.SaveReport(ctx, report))

	metrics, err := repo.LoadMetrics(ctx, "dup")
	require.NoError(t, err)
	assert.Len(t, metrics, len(report.Metrics)-1)
}

func TestPlaceholderFormatPerDriver(t *testing.T) {
	t.Parallel()

	pg := NewSQLRepository(nil, DriverPostgres)
	query, _, err := pg.builder.Select("id").From("audit_runs").Where("id = ?", "x").ToSql()
	require.NoError(t, err)
	assert.Contains(t, query, "$1")

	lite := NewSQLRepository(nil, DriverSQLite)
	query, _, err = lite.builder.Select("id").From("audit_runs").Where("id = ?", "x").ToSql()
	require.NoError(t, err)
	assert.Contains(t, query, "id = ?")
}

func TestLoadCitizensRejectsCorruptCategory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newSQLiteRepository(t)
	report := sampleReport(t, "corrupt", 20)
	require.NoError(t, repo.SaveReport(ctx, report))

	_, err := repo.db.ExecContext(ctx,
		`UPDATE audit_citizens SET housing_status = 'Houseboat' WHERE run_id = ? AND position = 3`, "corrupt")
	require.NoError(t, err)

	_, err = repo.LoadCitizens(ctx, "corrupt")
	require.ErrorIs(t, err, domain.ErrUnrecognizedCategory)
	assert.ErrorContains(t, err, "citizen 3")
	assert.ErrorContains(t, err, `"Houseboat"`)

	_, err = repo.LoadCitizens(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
