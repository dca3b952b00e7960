package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"OptiLiveAudit/internal/domain"
	"OptiLiveAudit/internal/ports"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"

	// insertBatch keeps multi-row inserts below the bind parameter limits of both drivers.
	insertBatch = 500
)

// SQLRepository persists audit reports into Postgres or SQLite.
type SQLRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.AuditRepository = (*SQLRepository)(nil)

// Open connects to driver/dsn and verifies the connection.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// each sqlite connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return db, nil
}

// NewSQLRepository wires a sql.DB opened with driver.
func NewSQLRepository(db *sql.DB, driver string) *SQLRepository {
	placeholder := sq.PlaceholderFormat(sq.Dollar)
	if driver == DriverSQLite {
		placeholder = sq.Question
	}
	return &SQLRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(placeholder),
	}
}

// SaveReport stores the run, its citizens and its group metrics in one transaction.
func (r *SQLRepository) SaveReport(ctx context.Context, report domain.AuditReport) (err error) {
	if r.db == nil {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	run := report.Run
	err = r.exec(ctx, tx, r.builder.Insert("audit_runs").
		Columns("id", "seed", "population", "threshold", "features", "status", "created_at").
		Values(run.ID, strconv.FormatUint(run.Seed, 10), run.Population, run.Threshold,
			strings.Join(run.Features, ","), string(run.Status), run.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for start := 0; start < len(report.Citizens); start += insertBatch {
		end := min(start+insertBatch, len(report.Citizens))
		q := r.builder.Insert("audit_citizens").Columns(
			"run_id", "position", "name", "age", "gender", "origin", "employment", "income",
			"criminal_record", "debt_history", "single_parent", "disability", "housing_status", "score")
		for i, c := range report.Citizens[start:end] {
			q = q.Values(run.ID, start+i, c.Name, c.Age, string(c.Gender), string(c.Origin),
				string(c.Employment), c.Income, string(c.CriminalRecord), string(c.DebtHistory),
				c.SingleParent, c.Disability, string(c.HousingStatus), c.SocialUtilityScore)
		}
		if err = r.exec(ctx, tx, q); err != nil {
			return fmt.Errorf("insert citizens %d-%d: %w", start, end, err)
		}
	}

	for start := 0; start < len(report.Metrics); start += insertBatch {
		end := min(start+insertBatch, len(report.Metrics))
		q := r.builder.Insert("audit_group_metrics").Columns(
			"run_id", "position", "sensitive_feature", "group_value", "group_size",
			"selection_rate", "average_raw_score", "overall_selection_rate", "overall_average_raw_score")
		for i, m := range report.Metrics[start:end] {
			q = q.Values(run.ID, start+i, m.SensitiveFeature, m.GroupValue, m.Count,
				m.SelectionRate, m.AverageRawScore, m.OverallSelectionRate, m.OverallAverageRawScore)
		}
		if err = r.exec(ctx, tx, q); err != nil {
			return fmt.Errorf("insert metrics: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// LoadRun fetches the run header.
func (r *SQLRepository) LoadRun(ctx context.Context, runID string) (domain.AuditRun, error) {
	query, args, err := r.builder.
		Select("id", "seed", "population", "threshold", "features", "status", "created_at").
		From("audit_runs").
		Where(sq.Eq{"id": runID}).
		ToSql()
	if err != nil {
		return domain.AuditRun{}, fmt.Errorf("build query: %w", err)
	}

	var (
		run      domain.AuditRun
		seed     string
		features string
		status   string
	)
	err = r.db.QueryRowContext(ctx, query, args...).Scan(
		&run.ID, &seed, &run.Population, &run.Threshold, &features, &status, &run.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.AuditRun{}, domain.NotFoundf("audit run %s", runID)
	}
	if err != nil {
		return domain.AuditRun{}, fmt.Errorf("query run: %w", err)
	}

	if run.Seed, err = strconv.ParseUint(seed, 10, 64); err != nil {
		return domain.AuditRun{}, fmt.Errorf("parse seed %q: %w", seed, err)
	}
	if features != "" {
		run.Features = strings.Split(features, ",")
	}
	run.Status = domain.RunStatus(status)
	run.CreatedAt = run.CreatedAt.UTC()

	return run, nil
}

// LoadMetrics returns the group metrics of a run in their original order.
func (r *SQLRepository) LoadMetrics(ctx context.Context, runID string) ([]domain.GroupMetric, error) {
	if _, err := r.LoadRun(ctx, runID); err != nil {
		return nil, err
	}

	query, args, err := r.builder.
		Select("sensitive_feature", "group_value", "group_size", "selection_rate",
			"average_raw_score", "overall_selection_rate", "overall_average_raw_score").
		From("audit_group_metrics").
		Where(sq.Eq{"run_id": runID}).
		OrderBy("position").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query metrics: %w", err)
	}

	var result []domain.GroupMetric
	for rows.Next() {
		var m domain.GroupMetric
		if err := rows.Scan(&m.SensitiveFeature, &m.GroupValue, &m.Count, &m.SelectionRate,
			&m.AverageRawScore, &m.OverallSelectionRate, &m.OverallAverageRawScore); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan metric: %w", err)
		}
		result = append(result, m)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return result, nil
}

// LoadCitizens returns the scored population of a run in generation order.
// Stored categories outside their enumeration fail with ErrUnrecognizedCategory.
func (r *SQLRepository) LoadCitizens(ctx context.Context, runID string) ([]domain.ScoredRecord, error) {
	if _, err := r.LoadRun(ctx, runID); err != nil {
		return nil, err
	}

	query, args, err := r.builder.
		Select("name", "age", "gender", "origin", "employment", "income", "criminal_record",
			"debt_history", "single_parent", "disability", "housing_status", "score").
		From("audit_citizens").
		Where(sq.Eq{"run_id": runID}).
		OrderBy("position").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query citizens: %w", err)
	}
	defer rows.Close()

	var result []domain.ScoredRecord
	for rows.Next() {
		var c domain.ScoredRecord
		var gender, origin, employment, criminal, debt, housing string
		if err := rows.Scan(&c.Name, &c.Age, &gender, &origin, &employment, &c.Income, &criminal,
			&debt, &c.SingleParent, &c.Disability, &housing, &c.SocialUtilityScore); err != nil {
			return nil, fmt.Errorf("scan citizen: %w", err)
		}
		if err := parseCategories(&c.CitizenRecord, gender, origin, employment, criminal, debt, housing); err != nil {
			return nil, fmt.Errorf("citizen %d of run %s: %w", len(result), runID, err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return result, nil
}

func parseCategories(c *domain.CitizenRecord, gender, origin, employment, criminal, debt, housing string) error {
	var err error
	if c.Gender, err = domain.ParseGender(gender); err != nil {
		return err
	}
	if c.Origin, err = domain.ParseOrigin(origin); err != nil {
		return err
	}
	if c.Employment, err = domain.ParseEmployment(employment); err != nil {
		return err
	}
	if c.CriminalRecord, err = domain.ParseCriminalRecord(criminal); err != nil {
		return err
	}
	if c.DebtHistory, err = domain.ParseDebtHistory(debt); err != nil {
		return err
	}
	c.HousingStatus, err = domain.ParseHousingStatus(housing)
	return err
}

func (r *SQLRepository) exec(ctx context.Context, tx *sql.Tx, stmt sq.Sqlizer) error {
	query, args, err := stmt.ToSql()
	if err != nil {
		return fmt.Errorf("build statement: %w", err)
	}
	_, err = tx.ExecContext(ctx, query, args...)
	return err
}
