// Package jobinfra provides job.Repository implementations: Postgres for
// production and an in-memory store for tests and local development.
package jobinfra

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Abraxas-365/trainforge/pkg/job"
	"github.com/Abraxas-365/trainforge/pkg/kernel"
)

// PostgresJobRepository implements job.Repository on Postgres. Conditional
// status updates are a single UPDATE with a status = ANY(expected) predicate,
// which is what makes every lifecycle transition a compare-and-set.
type PostgresJobRepository struct {
	db *sqlx.DB
}

// NewPostgresJobRepository creates the repository.
func NewPostgresJobRepository(db *sqlx.DB) job.Repository {
	return &PostgresJobRepository{db: db}
}

// Create inserts a new record. The id must be unique; a duplicate insert is
// a persistence error, never an upsert.
func (r *PostgresJobRepository) Create(ctx context.Context, j *job.Job) error {
	query := `
		INSERT INTO jobs (
			id, owner_id, target_name, resource_locator, parameters,
			status, delivery_message_id, retry_from, retry_count, error_log,
			created_at, updated_at, completed_at, failed_at
		) VALUES (
			:id, :owner_id, :target_name, :resource_locator, :parameters,
			:status, :delivery_message_id, :retry_from, :retry_count, :error_log,
			:created_at, :updated_at, :completed_at, :failed_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, toPersistence(j))
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation
			return job.ErrPersistence(err).WithDetail("reason", "job id already exists")
		}
		return job.ErrPersistence(err).WithDetail("job_id", j.ID)
	}
	return nil
}

// Get fetches a record by id with no ownership scoping.
func (r *PostgresJobRepository) Get(ctx context.Context, id string) (*job.Job, error) {
	var row jobPersistence
	err := r.db.GetContext(ctx, &row, `SELECT * FROM jobs WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, job.ErrNotFound()
		}
		return nil, job.ErrPersistence(err)
	}
	return toDomain(row), nil
}

// GetOwned fetches a record scoped to its owner. A record owned by someone
// else is indistinguishable from a missing one.
func (r *PostgresJobRepository) GetOwned(ctx context.Context, id string, owner kernel.UserID) (*job.Job, error) {
	var row jobPersistence
	err := r.db.GetContext(ctx, &row,
		`SELECT * FROM jobs WHERE id = $1 AND owner_id = $2`, id, owner.String())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, job.ErrNotFound()
		}
		return nil, job.ErrPersistence(err)
	}
	return toDomain(row), nil
}

// List returns the owner's records, newest first.
func (r *PostgresJobRepository) List(ctx context.Context, owner kernel.UserID, limit int) ([]*job.Job, error) {
	var rows []jobPersistence
	err := r.db.SelectContext(ctx, &rows,
		`SELECT * FROM jobs WHERE owner_id = $1 ORDER BY created_at DESC LIMIT $2`,
		owner.String(), limit)
	if err != nil {
		return nil, job.ErrPersistence(err)
	}
	return toDomainSlice(rows), nil
}

// GetByMessageID resolves a delivery message id back to its record.
func (r *PostgresJobRepository) GetByMessageID(ctx context.Context, messageID string) (*job.Job, error) {
	var row jobPersistence
	err := r.db.GetContext(ctx, &row,
		`SELECT * FROM jobs WHERE delivery_message_id = $1`, messageID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, job.ErrNotFound()
		}
		return nil, job.ErrPersistence(err)
	}
	return toDomain(row), nil
}

// ListRetriesOf returns the jobs derived from id, newest first.
func (r *PostgresJobRepository) ListRetriesOf(ctx context.Context, id string) ([]*job.Job, error) {
	var rows []jobPersistence
	err := r.db.SelectContext(ctx, &rows,
		`SELECT * FROM jobs WHERE retry_from = $1 ORDER BY created_at DESC`, id)
	if err != nil {
		return nil, job.ErrPersistence(err)
	}
	return toDomainSlice(rows), nil
}

// UpdateStatus applies the partial update only when the record's current
// status is in expected. error_log, completed_at and failed_at keep their
// existing values once set, so the first terminal write always wins.
func (r *PostgresJobRepository) UpdateStatus(ctx context.Context, id string, update job.StatusUpdate, expected []job.Status) (bool, error) {
	query := `
		UPDATE jobs SET
			status = $2,
			delivery_message_id = COALESCE($3, delivery_message_id),
			completed_at = COALESCE(completed_at, $4),
			failed_at = COALESCE(failed_at, $5),
			error_log = COALESCE(error_log, $6),
			updated_at = $7
		WHERE id = $1 AND status = ANY($8)`

	expectedStrs := make([]string, len(expected))
	for i, s := range expected {
		expectedStrs[i] = string(s)
	}

	result, err := r.db.ExecContext(ctx, query,
		id,
		string(update.Status),
		update.DeliveryMessageID,
		update.CompletedAt,
		update.FailedAt,
		update.ErrorLog,
		update.UpdatedAt,
		pq.Array(expectedStrs),
	)
	if err != nil {
		return false, job.ErrPersistence(err).WithDetail("job_id", id)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, job.ErrPersistence(err)
	}
	if affected > 0 {
		return true, nil
	}

	// No row matched: either the guard lost or the record does not exist.
	var exists bool
	if err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM jobs WHERE id = $1)`, id); err != nil {
		return false, job.ErrPersistence(err)
	}
	if !exists {
		return false, job.ErrNotFound()
	}
	return false, nil
}

// --- persistence mapping ---

// paramsJSON stores the opaque parameters map as JSONB.
type paramsJSON map[string]interface{}

func (p paramsJSON) Value() (driver.Value, error) {
	if p == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(p)
}

func (p *paramsJSON) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	case nil:
		*p = nil
		return nil
	}
	return fmt.Errorf("unsupported parameters column type %T", src)
}

type jobPersistence struct {
	ID                string     `db:"id"`
	OwnerID           string     `db:"owner_id"`
	TargetName        string     `db:"target_name"`
	ResourceLocator   string     `db:"resource_locator"`
	Parameters        paramsJSON `db:"parameters"`
	Status            string     `db:"status"`
	DeliveryMessageID *string    `db:"delivery_message_id"`
	RetryFrom         *string    `db:"retry_from"`
	RetryCount        int        `db:"retry_count"`
	ErrorLog          *string    `db:"error_log"`
	CreatedAt         time.Time  `db:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at"`
	CompletedAt       *time.Time `db:"completed_at"`
	FailedAt          *time.Time `db:"failed_at"`
}

func toPersistence(j *job.Job) jobPersistence {
	return jobPersistence{
		ID:                j.ID,
		OwnerID:           j.OwnerID.String(),
		TargetName:        j.TargetName,
		ResourceLocator:   j.ResourceLocator,
		Parameters:        paramsJSON(j.Parameters),
		Status:            string(j.Status),
		DeliveryMessageID: j.DeliveryMessageID,
		RetryFrom:         j.RetryFrom,
		RetryCount:        j.RetryCount,
		ErrorLog:          j.ErrorLog,
		CreatedAt:         j.CreatedAt,
		UpdatedAt:         j.UpdatedAt,
		CompletedAt:       j.CompletedAt,
		FailedAt:          j.FailedAt,
	}
}

func toDomain(row jobPersistence) *job.Job {
	return &job.Job{
		ID:                row.ID,
		OwnerID:           kernel.NewUserID(row.OwnerID),
		TargetName:        row.TargetName,
		ResourceLocator:   row.ResourceLocator,
		Parameters:        map[string]interface{}(row.Parameters),
		Status:            job.Status(row.Status),
		DeliveryMessageID: row.DeliveryMessageID,
		RetryFrom:         row.RetryFrom,
		RetryCount:        row.RetryCount,
		ErrorLog:          row.ErrorLog,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
		CompletedAt:       row.CompletedAt,
		FailedAt:          row.FailedAt,
	}
}

func toDomainSlice(rows []jobPersistence) []*job.Job {
	out := make([]*job.Job, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomain(row))
	}
	return out
}
