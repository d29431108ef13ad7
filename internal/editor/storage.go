package editor

import (
	"fmt"
	"os"

	"mapcore/internal/infra/persistence/memory"
	"mapcore/internal/infra/persistence/postgres"
	"mapcore/internal/infra/persistence/sqlite"
	"mapcore/pkg/domain"
)

// StorageDriver identifies a concrete canonical-store implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

// OpenPersistentStore selects a canonical-store backend using environment
// variables. Defaults to sqlite when unset.
//
//	MAPCORE_STORAGE_DRIVER: memory|sqlite|postgres (default sqlite)
//	MAPCORE_SQLITE_PATH: path to sqlite file (default ./mapcore.db)
//	MAPCORE_POSTGRES_DSN: postgres DSN when driver=postgres
func OpenPersistentStore(engine *domain.RulesEngine) (domain.PersistentStore, error) {
	driver := os.Getenv("MAPCORE_STORAGE_DRIVER")
	if driver == "" {
		driver = string(StorageSQLite)
	}
	switch StorageDriver(driver) {
	case StorageMemory:
		return memory.NewStore(engine), nil
	case StorageSQLite:
		return sqlite.NewStore(os.Getenv("MAPCORE_SQLITE_PATH"), engine)
	case StoragePostgres:
		return postgres.NewStore(os.Getenv("MAPCORE_POSTGRES_DSN"), engine)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
