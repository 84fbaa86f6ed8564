// Package repomanager vends the entity store repositories for the configured
// backend and owns the backend's lifecycle.
package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/filevault/internal/server/repositories/files"
	"github.com/dmitrijs2005/filevault/internal/server/repositories/folders"
	"github.com/dmitrijs2005/filevault/internal/server/repositories/users"
)

type RepositoryManager interface {
	Users() users.Repository
	Files() files.Repository
	Folders() folders.Repository
	// RunMigrations brings the schema up to date.
	RunMigrations(ctx context.Context) error
	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
	Close() error
}

// Options select and locate the backend.
type Options struct {
	Type       string // postgres or badger
	DSN        string
	BadgerPath string
}

// New opens the backend named by opts.Type.
func New(ctx context.Context, opts Options) (RepositoryManager, error) {
	switch opts.Type {
	case "postgres":
		return OpenPostgres(ctx, opts.DSN)
	case "badger":
		return OpenBadger(opts.BadgerPath)
	default:
		return nil, fmt.Errorf("unknown database type: %q", opts.Type)
	}
}
