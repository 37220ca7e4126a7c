package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"wedplan/internal/amqp"
	"wedplan/internal/storage"
	"wedplan/internal/storage/kvdb"
	"wedplan/internal/storage/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend opens the configured store and, when AMQP is configured, the
// event publisher. A broker that cannot be reached only disables events.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	store, err := f.openStore(config)
	if err != nil {
		return nil, err
	}
	if err := store.Ping(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("ping %s store: %w", config.Type, err)
	}

	result := &BackendResult{Store: store, Cleanup: store.Close}

	if config.EventsEnabled() {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		} else {
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
			result.Publisher = client
			result.Cleanup = func() error {
				return errors.Join(client.Close(), store.Close())
			}
		}
	}

	f.logger.Info("Initialized backend",
		"type", config.Type.String(),
		"events_enabled", result.Publisher != nil)
	return result, nil
}

func (f *DefaultFactory) openStore(config Config) (storage.Store, error) {
	switch config.Type {
	case KVDBBackend:
		s, err := kvdb.Open(config.KVDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open kvdb store: %w", err)
		}
		f.logger.Info("Opened kvdb store", "path", config.KVDBPath)
		return s, nil
	case SQLiteBackend:
		s, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.Info("Opened SQLite store", "db_path", config.SQLiteDBPath)
		return s, nil
	case MemoryBackend:
		f.logger.Info("Using in-memory store, data is lost on restart")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}
