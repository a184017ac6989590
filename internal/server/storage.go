package server

import (
	"fmt"
	"io"
	"strings"

	"smartkanban/internal/config"
	"smartkanban/internal/storage"
	"smartkanban/internal/storage/postgres"
	"smartkanban/internal/storage/sqlite"
)

// Snapshot names used by the database drivers.
const (
	dataDocument = "data"
	authDocument = "auth"
)

func driverName(cfg *config.Config) string {
	driver := strings.ToLower(strings.TrimSpace(cfg.StorageDriver))
	if driver == "" {
		return "file"
	}
	return driver
}

// openDocuments returns the data and account documents for the configured
// driver, plus whatever must be closed on shutdown.
func openDocuments(cfg *config.Config) (data, accounts storage.Document, closer io.Closer, err error) {
	switch driverName(cfg) {
	case "file":
		return storage.NewFile(cfg.DataFile), storage.NewFile(cfg.AuthFile), nil, nil
	case "memory":
		return storage.NewMemory(), storage.NewMemory(), nil, nil
	case "postgres":
		db, err := postgres.Open(cfg.PostgresDSN())
		if err != nil {
			return nil, nil, nil, err
		}
		return db.Document(dataDocument), db.Document(authDocument), db, nil
	case "sqlite":
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		return db.Document(dataDocument), db.Document(authDocument), db, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
