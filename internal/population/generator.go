// Package population synthesizes citizens whose attributes are drawn from
// deliberately correlated distributions. The draw order below is part of the
// scenario: each attribute is conditioned only on attributes drawn before it.
package population

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"OptiLiveAudit/internal/domain"
)

// DefaultBlockSize is the number of citizens drawn from one RNG sub-stream.
const DefaultBlockSize = 500

// Generator produces reproducible populations. Work is split into fixed-size
// blocks, each with its own stream derived from (seed, block index), so the
// output does not depend on the number of workers.
type Generator struct {
	workers       int
	blockSize     int
	maxPopulation int
}

// Option customises a Generator.
type Option func(*Generator)

// WithWorkers bounds the number of blocks generated concurrently.
func WithWorkers(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.workers = n
		}
	}
}

// WithBlockSize changes the sub-stream block size. Changing it changes the output.
func WithBlockSize(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.blockSize = n
		}
	}
}

// WithMaxPopulation rejects requests above n citizens; zero disables the cap.
func WithMaxPopulation(n int) Option {
	return func(g *Generator) {
		if n >= 0 {
			g.maxPopulation = n
		}
	}
}

// NewGenerator builds a generator with GOMAXPROCS workers and DefaultBlockSize.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		workers:   runtime.GOMAXPROCS(0),
		blockSize: DefaultBlockSize,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns count citizens. The same (count, seed) always yields the same records.
func (g *Generator) Generate(count int, seed uint64) ([]domain.CitizenRecord, error) {
	if count <= 0 {
		return nil, domain.Invalidf("population count must be positive, got %d", count)
	}
	if g.maxPopulation > 0 && count > g.maxPopulation {
		return nil, domain.Invalidf("population count %d exceeds maximum %d", count, g.maxPopulation)
	}

	records := make([]domain.CitizenRecord, count)
	blocks := (count + g.blockSize - 1) / g.blockSize

	var eg errgroup.Group
	eg.SetLimit(g.workers)
	for block := 0; block < blocks; block++ {
		start := block * g.blockSize
		end := min(start+g.blockSize, count)
		eg.Go(func() error {
			s := newSampler(seed, uint64(block))
			for i := start; i < end; i++ {
				records[i] = s.citizen()
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return records, nil
}
