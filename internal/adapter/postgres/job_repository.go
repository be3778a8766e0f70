package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/juliatong/AI-bee-Meta/internal/core/domain"
)

// JobRepository implements port.JobRepository on the scheduled_jobs table
// using pgxpool. It is the scheduler's own durable store, independent of
// the record store.
type JobRepository struct {
	pool *pgxpool.Pool
}

// NewJobRepository returns a new repository instance.
func NewJobRepository(pool *pgxpool.Pool) *JobRepository {
	return &JobRepository{pool: pool}
}

// Insert persists a new job row.
func (r *JobRepository) Insert(ctx context.Context, job domain.ScheduledJob) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO scheduled_jobs
    (id, campaign_id, meta_campaign_id, activate_at, status, created_at, executed_at, error)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		job.ID, job.CampaignID, job.RemoteCampaignID, job.ActivateAt.UTC(),
		string(job.Status), job.CreatedAt.UTC(), job.ExecutedAt, nullable(job.Error))
	if err != nil {
		return &domain.StorageError{Op: "insert job " + job.ID, Err: err}
	}
	return nil
}

// Job returns one job by id, or nil when absent.
func (r *JobRepository) Job(ctx context.Context, jobID string) (*domain.ScheduledJob, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, campaign_id, meta_campaign_id, activate_at, status, created_at, executed_at, error
FROM scheduled_jobs WHERE id = $1`, jobID)
	job, err := scanJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &domain.StorageError{Op: "load job " + jobID, Err: err}
	}
	return job, nil
}

// Pending returns every job still awaiting execution, oldest activation
// first. Called once at scheduler startup to re-arm timers.
func (r *JobRepository) Pending(ctx context.Context) ([]domain.ScheduledJob, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, campaign_id, meta_campaign_id, activate_at, status, created_at, executed_at, error
FROM scheduled_jobs WHERE status = 'PENDING' ORDER BY activate_at`)
	if err != nil {
		return nil, &domain.StorageError{Op: "list pending jobs", Err: err}
	}
	jobs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ScheduledJob, error) {
		job, err := scanJob(row)
		if err != nil {
			return domain.ScheduledJob{}, err
		}
		return *job, nil
	})
	if err != nil {
		return nil, &domain.StorageError{Op: "list pending jobs", Err: err}
	}
	return jobs, nil
}

// Finish moves a PENDING row to a terminal status. The WHERE guard makes
// the transition happen at most once even with racing writers.
func (r *JobRepository) Finish(ctx context.Context, jobID string, status domain.JobStatus, at time.Time, errMsg string) (bool, error) {
	if !status.Terminal() {
		return false, &domain.StorageError{Op: "finish job " + jobID, Err: errors.New("non-terminal status " + string(status))}
	}
	tag, err := r.pool.Exec(ctx, `UPDATE scheduled_jobs
SET status = $2, executed_at = $3, error = $4
WHERE id = $1 AND status = 'PENDING'`,
		jobID, string(status), at.UTC(), nullable(errMsg))
	if err != nil {
		return false, &domain.StorageError{Op: "finish job " + jobID, Err: err}
	}
	return tag.RowsAffected() == 1, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*domain.ScheduledJob, error) {
	var (
		job        domain.ScheduledJob
		status     string
		executedAt *time.Time
		errMsg     *string
	)
	err := row.Scan(&job.ID, &job.CampaignID, &job.RemoteCampaignID, &job.ActivateAt,
		&status, &job.CreatedAt, &executedAt, &errMsg)
	if err != nil {
		return nil, err
	}
	job.Status, err = domain.ParseJobStatus(status)
	if err != nil {
		return nil, err
	}
	job.ExecutedAt = executedAt
	if errMsg != nil {
		job.Error = *errMsg
	}
	return &job, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
