package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"OptiLiveAudit/internal/fairness"
	"OptiLiveAudit/internal/logging"
	"OptiLiveAudit/internal/population"
)

type immediateDriver struct {
	stopped bool
}

func (d *immediateDriver) Start(_ context.Context, job func(time.Time)) error {
	job(time.Now())
	job(time.Now())
	return nil
}

func (d *immediateDriver) Stop(context.Context) error {
	d.stopped = true
	return nil
}

func TestSchedulerRunsConfiguredAudit(t *testing.T) {
	t.Parallel()

	repo := &recordingRepository{}
	p := NewPipeline(PipelineDeps{
		Source:     population.NewGenerator(),
		Repository: repo,
		Logger:     logging.Discard(),
	})
	driver := &immediateDriver{}
	s := NewScheduler(driver, p, AuditRequest{Population: 30, Seed: 5, Threshold: fairness.DefaultThreshold})

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Stop(context.Background()))

	saved := repo.saved()
	require.Len(t, saved, 2)
	assert.Equal(t, 30, saved[0].Run.Population)
	assert.Equal(t, saved[0].Citizens, saved[1].Citizens)
	assert.True(t, driver.stopped)
}

func TestSchedulerWithoutDriverIsNoop(t *testing.T) {
	t.Parallel()

	s := NewScheduler(nil, nil, AuditRequest{})
	assert.NoError(t, s.Start(context.Background()))
	assert.NoError(t, s.Stop(context.Background()))
}
