package backend

import (
	"context"

	"monexel/internal/services"
	"monexel/internal/session"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// BackendResult is the session store plus the optional event publisher.
type BackendResult struct {
	Store     session.Store
	Publisher services.Publisher
	Cleanup   CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Event publishing, optional for every backend type
	AMQPURL        string
	AMQPExchange   string
	AMQPRoutingKey string
}

// BackendType selects where session state lives.
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
