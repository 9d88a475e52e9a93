package queue

import (
	"context"
	"errors"
	"sort"
	"sync"
)

var (
	ErrNotFound    = errors.New("job not found")
	ErrDuplicateID = errors.New("duplicate job id")
)

// Store is keyed persistence for job records. Update applies its mutator
// under the store's write lock (or transaction), so concurrent updates to
// the same id never interleave a read-modify-write.
type Store interface {
	Create(ctx context.Context, job *Job) error
	Get(ctx context.Context, id string) (*Job, error)
	// List returns all jobs, newest first.
	List(ctx context.Context) ([]*Job, error)
	Update(ctx context.Context, id string, mutate func(*Job) error) error
	Delete(ctx context.Context, id string) error
}

// MemoryStore keeps jobs in a map. Records are lost on restart; the sqlite
// store is the durable alternative behind the same contract.
type MemoryStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	// seq preserves insertion order so List can break created-at ties.
	seq map[string]int64
	n   int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs: make(map[string]*Job),
		seq:  make(map[string]int64),
	}
}

func (s *MemoryStore) Create(ctx context.Context, job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.ID]; ok {
		return ErrDuplicateID
	}
	s.n++
	s.jobs[job.ID] = job.Clone()
	s.seq[job.ID] = s.n
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return job.Clone(), nil
}

func (s *MemoryStore) List(ctx context.Context) ([]*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		out = append(out, job.Clone())
	}
	sort.Slice(out, func(i, k int) bool {
		if !out[i].CreatedAt.Equal(out[k].CreatedAt) {
			return out[i].CreatedAt.After(out[k].CreatedAt)
		}
		return s.seq[out[i].ID] > s.seq[out[k].ID]
	})
	return out, nil
}

func (s *MemoryStore) Update(ctx context.Context, id string, mutate func(*Job) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return ErrNotFound
	}
	next := job.Clone()
	if err := mutate(next); err != nil {
		return err
	}
	next.ID = id
	s.jobs[id] = next
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[id]; !ok {
		return ErrNotFound
	}
	delete(s.jobs, id)
	delete(s.seq, id)
	return nil
}

var _ Store = (*MemoryStore)(nil)
