package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"OptiLiveAudit/internal/config"
	"OptiLiveAudit/internal/logging"
)

func testConfig() config.Config {
	var cfg config.Config
	cfg.Audit.Population = 120
	cfg.Audit.MaxPopulation = 500
	cfg.Audit.Seed = 42
	cfg.Audit.Threshold = 600
	cfg.Audit.Features = []string{"Origin", "Employment"}
	cfg.Audit.Workers = 2
	cfg.Database.MemoryRuns = 4
	return cfg
}

func TestRunOnceWithMemoryStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	a, err := New(ctx, testConfig(), logging.Discard())
	require.NoError(t, err)
	defer a.Close()

	report, err := a.RunOnce(ctx, a.Request())
	require.NoError(t, err)
	assert.Len(t, report.Citizens, 120)

	metrics, err := a.repo.LoadMetrics(ctx, report.Run.ID)
	require.NoError(t, err)
	assert.Equal(t, report.Metrics, metrics)
}

func TestRunOnceWithSQLiteStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cfg := testConfig()
	cfg.Database.Driver = "sqlite3"
	cfg.Database.DSN = ":memory:"

	a, err := New(ctx, cfg, logging.Discard())
	require.NoError(t, err)
	defer a.Close()

	report, err := a.RunOnce(ctx, a.Request())
	require.NoError(t, err)

	run, err := a.repo.LoadRun(ctx, report.Run.ID)
	require.NoError(t, err)
	assert.Equal(t, cfg.Audit.Features, run.Features)
}

func TestServeStopsWithContext(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.HTTP.Addr = "127.0.0.1:0"

	a, err := New(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, a.Serve(ctx))
}
