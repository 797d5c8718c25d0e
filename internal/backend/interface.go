// Package backend selects and constructs the job source the report
// service reads from.
package backend

import (
	"context"

	"clientledger/internal/config"
	"clientledger/internal/feed"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result contains the job source and optional cleanup function
type Result struct {
	Source  feed.JobSource
	Cleanup CleanupFunc
}

// Factory creates job sources based on configuration
type Factory interface {
	CreateSource(ctx context.Context, cfg *config.Config) (*Result, error)
}

// Type represents the kind of job source backing the service
type Type string

const (
	MemoryBackend Type = "memory"
	SQLiteBackend Type = "sqlite"
	APIBackend    Type = "api"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case MemoryBackend, SQLiteBackend, APIBackend:
		return true
	default:
		return false
	}
}
