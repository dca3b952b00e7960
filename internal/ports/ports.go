package ports

import (
	"context"
	"time"

	"OptiLiveAudit/internal/domain"
)

// PopulationSource synthesizes citizens for an audit run.
type PopulationSource interface {
	Generate(count int, seed uint64) ([]domain.CitizenRecord, error)
}

// FairnessAggregator turns scored citizens into per-group statistics.
type FairnessAggregator interface {
	Aggregate(scored []domain.ScoredRecord, features []string, threshold int) ([]domain.GroupMetric, error)
}

// AuditRepository persists completed audit reports.
type AuditRepository interface {
	SaveReport(ctx context.Context, report domain.AuditReport) error
	LoadRun(ctx context.Context, runID string) (domain.AuditRun, error)
	LoadMetrics(ctx context.Context, runID string) ([]domain.GroupMetric, error)
	LoadCitizens(ctx context.Context, runID string) ([]domain.ScoredRecord, error)
}

// Notifier streams disparity digests to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
