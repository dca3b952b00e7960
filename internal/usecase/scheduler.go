package usecase

import (
	"context"
	"time"

	"OptiLiveAudit/internal/ports"
)

// Scheduler wires the interval driver with the audit pipeline.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
	request  AuditRequest
}

// NewScheduler returns a helper to start/stop recurring audits of req.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, req AuditRequest) *Scheduler {
	return &Scheduler{driver: driver, pipeline: pipeline, request: req}
}

// Start registers the pipeline with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	job := func(trigger time.Time) {
		// failures are logged and counted inside Run
		_, _ = s.pipeline.Run(ctx, s.request)
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
