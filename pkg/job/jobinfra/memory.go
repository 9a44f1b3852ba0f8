package jobinfra

import (
	"context"
	"sort"
	"sync"

	"github.com/Abraxas-365/trainforge/pkg/job"
	"github.com/Abraxas-365/trainforge/pkg/kernel"
)

// MemoryJobRepository implements job.Repository in process memory, with the
// same conditional-update semantics as the Postgres store. Used by tests and
// the local development wiring.
type MemoryJobRepository struct {
	mu   sync.RWMutex
	jobs map[string]*job.Job
}

// NewMemoryJobRepository creates an empty in-memory store.
func NewMemoryJobRepository() *MemoryJobRepository {
	return &MemoryJobRepository{jobs: make(map[string]*job.Job)}
}

func (r *MemoryJobRepository) Create(ctx context.Context, j *job.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.jobs[j.ID]; exists {
		return job.ErrPersistence(nil).WithDetail("reason", "job id already exists")
	}
	r.jobs[j.ID] = clone(j)
	return nil
}

func (r *MemoryJobRepository) Get(ctx context.Context, id string) (*job.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	j, ok := r.jobs[id]
	if !ok {
		return nil, job.ErrNotFound()
	}
	return clone(j), nil
}

func (r *MemoryJobRepository) GetOwned(ctx context.Context, id string, owner kernel.UserID) (*job.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	j, ok := r.jobs[id]
	if !ok || j.OwnerID != owner {
		return nil, job.ErrNotFound()
	}
	return clone(j), nil
}

func (r *MemoryJobRepository) List(ctx context.Context, owner kernel.UserID, limit int) ([]*job.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*job.Job
	for _, j := range r.jobs {
		if j.OwnerID == owner {
			out = append(out, clone(j))
		}
	}
	sortNewestFirst(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryJobRepository) GetByMessageID(ctx context.Context, messageID string) (*job.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, j := range r.jobs {
		if j.DeliveryMessageID != nil && *j.DeliveryMessageID == messageID {
			return clone(j), nil
		}
	}
	return nil, job.ErrNotFound()
}

func (r *MemoryJobRepository) ListRetriesOf(ctx context.Context, id string) ([]*job.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*job.Job
	for _, j := range r.jobs {
		if j.RetryFrom != nil && *j.RetryFrom == id {
			out = append(out, clone(j))
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *MemoryJobRepository) UpdateStatus(ctx context.Context, id string, update job.StatusUpdate, expected []job.Status) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.jobs[id]
	if !ok {
		return false, job.ErrNotFound()
	}

	matched := false
	for _, s := range expected {
		if j.Status == s {
			matched = true
			break
		}
	}
	if !matched {
		return false, nil
	}

	j.Status = update.Status
	if update.DeliveryMessageID != nil {
		j.DeliveryMessageID = update.DeliveryMessageID
	}
	if update.CompletedAt != nil && j.CompletedAt == nil {
		j.CompletedAt = update.CompletedAt
	}
	if update.FailedAt != nil && j.FailedAt == nil {
		j.FailedAt = update.FailedAt
	}
	// First failure wins: an existing error log is never replaced.
	if update.ErrorLog != nil && j.ErrorLog == nil {
		j.ErrorLog = update.ErrorLog
	}
	j.UpdatedAt = update.UpdatedAt
	return true, nil
}

func sortNewestFirst(jobs []*job.Job) {
	sort.Slice(jobs, func(i, k int) bool {
		return jobs[i].CreatedAt.After(jobs[k].CreatedAt)
	})
}

func clone(j *job.Job) *job.Job {
	c := *j
	if j.Parameters != nil {
		c.Parameters = make(map[string]interface{}, len(j.Parameters))
		for k, v := range j.Parameters {
			c.Parameters[k] = v
		}
	}
	return &c
}
