// Package storage implements the persistent client store that keeps the
// session token and the remember-me flag between runs.
package storage

import (
	"fmt"

	"github.com/wabisaby/cloudplatform-dashboard/internal/config"
)

// Store is a small persistent string key/value store.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
	Close() error
}

// Open returns the store selected by the configuration.
func Open(cfg *config.Config) (Store, error) {
	switch cfg.Storage.Driver {
	case config.StorageINI:
		return OpenINI(cfg.StorePath())
	case config.StorageSQLite:
		return OpenSQLite(cfg.StorePath())
	case config.StorageMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
