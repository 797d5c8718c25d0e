// Package memory is an in-memory job source, seeded from a JSON file for
// local development and constructed directly in tests.
package memory

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"clientledger/internal/core"
	"clientledger/internal/feed"
)

type Store struct {
	mu   sync.Mutex
	jobs map[string][]core.Job
}

var _ feed.JobSource = (*Store)(nil)

func New(jobs map[string][]core.Job) *Store {
	if jobs == nil {
		jobs = make(map[string][]core.Job)
	}
	return &Store{jobs: jobs}
}

// NewFromFiles seeds the store from <base>/seed_jobs.json, a JSON object
// mapping user IDs to job arrays in the feed wire format. A missing or
// unreadable seed yields an empty store; the engine's empty-state
// outputs cover that.
func NewFromFiles(base string) *Store {
	s := New(nil)
	path := filepath.Join(base, "seed_jobs.json")
	f, err := os.Open(path)
	if err != nil {
		return s
	}
	defer f.Close()

	seed, err := feed.DecodeUserJobs(f)
	if err != nil {
		return s
	}
	s.jobs = seed
	return s
}

// Replace swaps the whole job collection for a user in one step.
func (s *Store) Replace(userID string, jobs []core.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[userID] = append([]core.Job(nil), jobs...)
}

// ListJobs implements feed.JobSource. The returned slice is a copy.
func (s *Store) ListJobs(_ context.Context, userID string) ([]core.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Job(nil), s.jobs[userID]...), nil
}
