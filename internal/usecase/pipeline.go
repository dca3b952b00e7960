package usecase

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"OptiLiveAudit/internal/domain"
	"OptiLiveAudit/internal/fairness"
	"OptiLiveAudit/internal/feature"
	"OptiLiveAudit/internal/metrics"
	"OptiLiveAudit/internal/ports"
	"OptiLiveAudit/internal/scoring"
)

var tracer = otel.Tracer("OptiLiveAudit/internal/usecase")

// AuditRequest selects what one pipeline run generates and audits.
// Threshold is taken as given; empty Features fall back to the default audit list.
type AuditRequest struct {
	Population int
	Seed       uint64
	Threshold  int
	Features   []string
}

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source     ports.PopulationSource
	Aggregator ports.FairnessAggregator
	Repository ports.AuditRepository
	Notifier   ports.Notifier
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
	Workers    int
	Tolerance  float64
	Clock      func() time.Time
}

// Pipeline implements the generate, score, aggregate workflow.
type Pipeline struct {
	source     ports.PopulationSource
	aggregator ports.FairnessAggregator
	repository ports.AuditRepository
	notifier   ports.Notifier
	metrics    *metrics.Metrics
	logger     *slog.Logger
	workers    int
	tolerance  float64
	clock      func() time.Time
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	p := &Pipeline{
		source:     deps.Source,
		aggregator: deps.Aggregator,
		repository: deps.Repository,
		notifier:   deps.Notifier,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		workers:    deps.Workers,
		tolerance:  deps.Tolerance,
		clock:      deps.Clock,
	}
	if p.aggregator == nil {
		p.aggregator = fairness.NewAggregator(nil)
	}
	if p.workers <= 0 {
		p.workers = 1
	}
	if p.tolerance <= 0 {
		p.tolerance = fairness.DefaultDisparityTolerance
	}
	if p.clock == nil {
		p.clock = time.Now
	}
	return p
}

// Run executes one audit. Either the full report is returned or an error;
// nothing is persisted or published for a failed run.
func (p *Pipeline) Run(ctx context.Context, req AuditRequest) (domain.AuditReport, error) {
	if p.source == nil {
		return domain.AuditReport{}, fmt.Errorf("population source is not configured")
	}
	if len(req.Features) == 0 {
		req.Features = feature.DefaultAudit
	}

	run := domain.AuditRun{
		ID:         uuid.NewString(),
		Seed:       req.Seed,
		Population: req.Population,
		Threshold:  req.Threshold,
		Features:   append([]string(nil), req.Features...),
		CreatedAt:  p.clock().UTC(),
	}

	ctx, span := tracer.Start(ctx, "audit.run", trace.WithAttributes(
		attribute.String("audit.run_id", run.ID),
		attribute.Int("audit.population", run.Population),
		attribute.Int("audit.threshold", run.Threshold),
		attribute.StringSlice("audit.features", run.Features),
	))
	defer span.End()

	report, err := p.run(ctx, run)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.metrics.IncrementRun("failed")
		p.log().Error("audit failed", "run_id", run.ID, "error", err)
		return domain.AuditReport{}, err
	}

	p.metrics.IncrementRun("completed")
	p.log().Info("audit completed",
		"run_id", run.ID,
		"population", run.Population,
		"seed", run.Seed,
		"groups", len(report.Metrics),
		"disparities_detected", len(report.DetectedDisparities()),
	)

	p.notify(ctx, report)
	return report, nil
}

func (p *Pipeline) run(ctx context.Context, run domain.AuditRun) (domain.AuditReport, error) {
	var (
		citizens []domain.CitizenRecord
		scored   []domain.ScoredRecord
		groups   []domain.GroupMetric
	)

	if err := fairness.ValidateThreshold(run.Threshold); err != nil {
		return domain.AuditReport{}, err
	}

	err := p.stage(ctx, "generate", func() (err error) {
		citizens, err = p.source.Generate(run.Population, run.Seed)
		return err
	})
	if err != nil {
		return domain.AuditReport{}, fmt.Errorf("generate population: %w", err)
	}
	p.metrics.AddCitizens(len(citizens))
	run.Status = domain.RunGenerated

	err = p.stage(ctx, "score", func() (err error) {
		scored, err = scoring.ScoreAll(citizens, p.workers)
		return err
	})
	if err != nil {
		return domain.AuditReport{}, fmt.Errorf("score population: %w", err)
	}
	run.Status = domain.RunScored

	err = p.stage(ctx, "aggregate", func() (err error) {
		groups, err = p.aggregator.Aggregate(scored, run.Features, run.Threshold)
		return err
	})
	if err != nil {
		return domain.AuditReport{}, fmt.Errorf("aggregate metrics: %w", err)
	}
	run.Status = domain.RunAggregated

	report := domain.AuditReport{
		Run:         run,
		Citizens:    scored,
		Metrics:     groups,
		Disparities: fairness.Disparities(groups, p.tolerance),
	}
	report.Run.Status = domain.RunCompleted

	if p.repository != nil {
		err = p.stage(ctx, "persist", func() error {
			return p.repository.SaveReport(ctx, report)
		})
		if err != nil {
			return domain.AuditReport{}, fmt.Errorf("persist report %s: %w", run.ID, err)
		}
	}

	p.publishMetrics(report)
	return report, nil
}

// notify is best effort: the report is already computed and stored.
func (p *Pipeline) notify(ctx context.Context, report domain.AuditReport) {
	if p.notifier == nil || len(report.DetectedDisparities()) == 0 {
		return
	}

	err := p.stage(ctx, "notify", func() error {
		return p.notifier.PublishDigest(ctx, buildDigestMessage(report))
	})
	if err != nil {
		p.log().Warn("publish digest failed", "run_id", report.Run.ID, "error", err)
	}
}

func (p *Pipeline) stage(ctx context.Context, name string, fn func() error) error {
	_, span := tracer.Start(ctx, "audit."+name)
	defer span.End()

	start := time.Now()
	err := fn()
	p.metrics.ObserveStage(name, time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	p.log().Debug("stage finished", "stage", name, "duration", time.Since(start), "error", err)
	return err
}

func (p *Pipeline) publishMetrics(report domain.AuditReport) {
	if p.metrics == nil {
		return
	}
	for _, c := range report.Citizens {
		p.metrics.ObserveScore(c.SocialUtilityScore)
	}
	for _, m := range report.Metrics {
		p.metrics.SetSelectionRate(m.SensitiveFeature, m.GroupValue, m.SelectionRate)
	}
	for _, d := range report.Disparities {
		p.metrics.SetDisparity(d.SensitiveFeature, d.Gap)
	}
}

func (p *Pipeline) log() *slog.Logger {
	if p.logger == nil {
		return slog.Default()
	}
	return p.logger
}

// buildDigestMessage renders a Telegram HTML digest of the detected disparities.
func buildDigestMessage(report domain.AuditReport) string {
	detected := report.DetectedDisparities()
	if len(detected) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<b>OptiLive audit %s</b>\n", html.EscapeString(report.Run.ID))
	fmt.Fprintf(&b, "Population %d, seed %d, threshold %d\n",
		report.Run.Population, report.Run.Seed, report.Run.Threshold)
	if len(report.Metrics) > 0 {
		fmt.Fprintf(&b, "Overall selection rate: %.1f%%\n", report.Metrics[0].OverallSelectionRate*100)
	}

	for _, d := range detected {
		fmt.Fprintf(&b, "\n<b>%s</b>: selection gap %.1f%%, <code>%s</code> disadvantaged (best: <code>%s</code>)",
			html.EscapeString(d.SensitiveFeature),
			d.Gap*100,
			html.EscapeString(d.DisadvantagedGroup),
			html.EscapeString(d.AdvantagedGroup))
	}

	return b.String()
}
