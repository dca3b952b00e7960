package storage

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"OptiLiveAudit/internal/domain"
	"OptiLiveAudit/internal/ports"
)

// DefaultMemoryRuns bounds how many reports the in-memory store keeps.
const DefaultMemoryRuns = 32

// MemoryRepository keeps the most recent reports in process memory.
// It backs the API when no database DSN is configured.
type MemoryRepository struct {
	reports *lru.Cache[string, domain.AuditReport]
}

var _ ports.AuditRepository = (*MemoryRepository)(nil)

// NewMemoryRepository retains up to size reports, evicting the least recently used.
func NewMemoryRepository(size int) (*MemoryRepository, error) {
	if size <= 0 {
		size = DefaultMemoryRuns
	}
	cache, err := lru.New[string, domain.AuditReport](size)
	if err != nil {
		return nil, fmt.Errorf("create report cache: %w", err)
	}
	return &MemoryRepository{reports: cache}, nil
}

// SaveReport stores a report under its run ID.
func (r *MemoryRepository) SaveReport(_ context.Context, report domain.AuditReport) error {
	if _, exists := r.reports.Peek(report.Run.ID); exists {
		return domain.Invalidf("audit run %s already stored", report.Run.ID)
	}
	r.reports.Add(report.Run.ID, report)
	return nil
}

// LoadRun returns the stored run header.
func (r *MemoryRepository) LoadRun(_ context.Context, runID string) (domain.AuditRun, error) {
	report, ok := r.reports.Get(runID)
	if !ok {
		return domain.AuditRun{}, domain.NotFoundf("audit run %s", runID)
	}
	return report.Run, nil
}

// LoadMetrics returns the stored group metrics.
func (r *MemoryRepository) LoadMetrics(_ context.Context, runID string) ([]domain.GroupMetric, error) {
	report, ok := r.reports.Get(runID)
	if !ok {
		return nil, domain.NotFoundf("audit run %s", runID)
	}
	return append([]domain.GroupMetric(nil), report.Metrics...), nil
}

// LoadCitizens returns the stored scored population.
func (r *MemoryRepository) LoadCitizens(_ context.Context, runID string) ([]domain.ScoredRecord, error) {
	report, ok := r.reports.Get(runID)
	if !ok {
		return nil, domain.NotFoundf("audit run %s", runID)
	}
	return append([]domain.ScoredRecord(nil), report.Citizens...), nil
}
