package backend

import (
	"context"

	"wedplan/internal/services"
	"wedplan/internal/storage"
)

// CleanupFunc releases the resources opened by a factory.
type CleanupFunc func() error

// BackendResult contains the opened store, the optional event publisher and
// the cleanup that closes both.
type BackendResult struct {
	Store     storage.Store
	Publisher services.Publisher
	Cleanup   CleanupFunc
}

// Services wires the use cases on top of a backend.
type Services struct {
	Accounts  *services.AccountService
	Guests    *services.GuestService
	Budget    *services.BudgetService
	Tasks     *services.TaskService
	Dashboard *services.DashboardService
}

func (r *BackendResult) Services() Services {
	return Services{
		Accounts:  services.NewAccountService(r.Store, r.Publisher),
		Guests:    services.NewGuestService(r.Store, r.Publisher),
		Budget:    services.NewBudgetService(r.Store, r.Publisher),
		Tasks:     services.NewTaskService(r.Store, r.Publisher),
		Dashboard: services.NewDashboardService(r.Store),
	}
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	KVDBPath     string
	SQLiteDBPath string

	// Events are disabled when AMQPURL is empty.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend
type BackendType string

const (
	KVDBBackend   BackendType = "kvdb"
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case KVDBBackend, SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
