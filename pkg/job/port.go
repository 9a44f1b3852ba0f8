package job

import (
	"context"
	"time"

	"github.com/Abraxas-365/trainforge/pkg/kernel"
)

// StatusUpdate is the partial mutation applied by one lifecycle transition.
// Pointer fields are only written when non-nil; UpdatedAt is always written.
type StatusUpdate struct {
	Status            Status
	DeliveryMessageID *string
	CompletedAt       *time.Time
	FailedAt          *time.Time
	ErrorLog          *string
	UpdatedAt         time.Time
}

// Repository is the durable job record store. Implementations must make
// UpdateStatus a conditional write: the mutation applies only when the
// record's current status is one of expected, and the store reports whether
// a row matched. That compare-and-set is the sole concurrency primitive the
// lifecycle engine relies on.
type Repository interface {
	Create(ctx context.Context, j *Job) error

	// Get fetches a record without ownership scoping. Internal use only
	// (worker, correlation lookups).
	Get(ctx context.Context, id string) (*Job, error)

	// GetOwned fetches a record scoped to its owner. Returns ErrNotFound
	// for records owned by anyone else.
	GetOwned(ctx context.Context, id string, owner kernel.UserID) (*Job, error)

	// List returns the owner's records, newest first.
	List(ctx context.Context, owner kernel.UserID, limit int) ([]*Job, error)

	// GetByMessageID resolves a delivery message id back to its record.
	GetByMessageID(ctx context.Context, messageID string) (*Job, error)

	// ListRetriesOf returns the jobs whose retry_from references id,
	// newest first.
	ListRetriesOf(ctx context.Context, id string) ([]*Job, error)

	// UpdateStatus conditionally applies update when the record's current
	// status is in expected. Returns false with a nil error when the record
	// exists but no expected status matched, and ErrNotFound when there is
	// no record with the given id.
	UpdateStatus(ctx context.Context, id string, update StatusUpdate, expected []Status) (bool, error)
}
