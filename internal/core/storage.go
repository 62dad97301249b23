package core

import (
	"fmt"

	"github.com/nalarbp/patomove/internal/infra/persistence/memory"
	"github.com/nalarbp/patomove/internal/infra/persistence/postgres"
	"github.com/nalarbp/patomove/internal/infra/persistence/sqlite"
	"github.com/nalarbp/patomove/pkg/domain"
)

// StorageDriver identifies a concrete persistent storage implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

// StorageOptions configures backend selection.
type StorageOptions struct {
	Driver      StorageDriver
	SQLitePath  string
	PostgresDSN string
}

// OpenPersistentStore selects and opens a storage backend. Defaults to
// sqlite when the driver is unset. The returned closer is a no-op for the
// memory backend.
func OpenPersistentStore(engine *domain.RulesEngine, opts StorageOptions) (domain.PersistentStore, func() error, error) {
	driver := opts.Driver
	if driver == "" {
		driver = StorageSQLite
	}
	switch driver {
	case StorageMemory:
		return memory.NewStore(engine), func() error { return nil }, nil
	case StorageSQLite:
		store, err := sqlite.NewStore(opts.SQLitePath, engine)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case StoragePostgres:
		store, err := postgres.NewStore(opts.PostgresDSN, engine)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
