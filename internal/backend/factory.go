package backend

import (
	"context"
	"errors"
	"fmt"

	"monexel/internal/amqp"
	"monexel/internal/log"
	"monexel/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var result *BackendResult
	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.DebugContext(ctx, "Initialized SQLite session store", "db_path", config.SQLiteDBPath)
		result = &BackendResult{Store: repo, Cleanup: repo.Close}
	case MemoryBackend:
		repo := storage.NewMemoryRepository()
		f.logger.DebugContext(ctx, "Initialized memory session store")
		result = &BackendResult{Store: repo, Cleanup: repo.Close}
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	if config.AMQPURL != "" {
		client := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPRoutingKey, f.logger)
		result.Publisher = client
		storeCleanup := result.Cleanup
		result.Cleanup = func() error {
			return errors.Join(client.Close(), storeCleanup())
		}
		f.logger.DebugContext(ctx, "Mutation events enabled",
			"exchange", config.AMQPExchange,
			"routing_key", config.AMQPRoutingKey)
	}

	return result, nil
}
