package scoring

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"OptiLiveAudit/internal/domain"
)

const scoreChunk = 1024

// ScoreAll scores records on up to workers goroutines and keeps input order.
// When several records are invalid the error names the lowest index.
func ScoreAll(records []domain.CitizenRecord, workers int) ([]domain.ScoredRecord, error) {
	if workers <= 0 {
		workers = 1
	}

	scored := make([]domain.ScoredRecord, len(records))
	chunks := (len(records) + scoreChunk - 1) / scoreChunk
	errs := make([]error, chunks)

	var eg errgroup.Group
	eg.SetLimit(workers)
	for chunk := 0; chunk < chunks; chunk++ {
		start := chunk * scoreChunk
		end := min(start+scoreChunk, len(records))
		eg.Go(func() error {
			for i := start; i < end; i++ {
				s, err := ScoreRecord(records[i])
				if err != nil {
					errs[chunk] = fmt.Errorf("score record %d: %w", i, err)
					return nil
				}
				scored[i] = s
			}
			return nil
		})
	}
	_ = eg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return scored, nil
}
