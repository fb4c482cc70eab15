package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"schedule-compiler/core/database"
	"schedule-compiler/modules/planner/entity"
)

// RunRepositoryInterface persists run reports.
type RunRepositoryInterface interface {
	Save(ctx context.Context, report *entity.RunReport) error
	GetBySingletonID(ctx context.Context, singletonID string) (*entity.RunReport, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) error
}

type RunRepository struct {
	DB database.IDatabase
}

func NewRunRepository(db database.IDatabase) RunRepositoryInterface {
	return &RunRepository{DB: db}
}

const upsertRunQuery = `
	INSERT INTO planner_runs (singleton_id, host_id, file_key, is_replan, status, event_parts, timeslots, users, report, created_at)
	VALUES (:singleton_id, :host_id, :file_key, :is_replan, :status, :event_parts, :timeslots, :users, :report, :created_at)
	ON CONFLICT (singleton_id) DO UPDATE SET
		status = EXCLUDED.status,
		report = EXCLUDED.report
`

type runRow struct {
	entity.RunReport
	Report []byte `db:"report"`
}

func (r *RunRepository) Save(ctx context.Context, report *entity.RunReport) error {
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now().UTC()
	}
	raw, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode run report: %w", err)
	}
	if _, err := r.DB.NamedExecContext(ctx, upsertRunQuery, runRow{RunReport: *report, Report: raw}); err != nil {
		return fmt.Errorf("save run %s: %w", report.SingletonID, err)
	}
	return nil
}

const getRunQuery = `SELECT report FROM planner_runs WHERE singleton_id = $1`

func (r *RunRepository) GetBySingletonID(ctx context.Context, singletonID string) (*entity.RunReport, error) {
	var raw []byte
	if err := r.DB.GetContext(ctx, &raw, getRunQuery, singletonID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("run %s: %w", singletonID, ErrNotFound)
		}
		return nil, fmt.Errorf("get run %s: %w", singletonID, err)
	}

	var report entity.RunReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, fmt.Errorf("decode run %s: %w", singletonID, err)
	}
	return &report, nil
}

const deleteOldRunsQuery = `DELETE FROM planner_runs WHERE created_at < $1`

func (r *RunRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) error {
	if err := r.DB.ExecContext(ctx, deleteOldRunsQuery, cutoff); err != nil {
		return fmt.Errorf("prune runs before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	return nil
}
