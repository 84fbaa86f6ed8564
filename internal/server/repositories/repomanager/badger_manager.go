package repomanager

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/dmitrijs2005/filevault/internal/dbx"
	"github.com/dmitrijs2005/filevault/internal/server/repositories/files"
	"github.com/dmitrijs2005/filevault/internal/server/repositories/folders"
	"github.com/dmitrijs2005/filevault/internal/server/repositories/users"
)

var errBadgerClosed = errors.New("badger: database closed")

// BadgerRepositoryManager vends repositories over an embedded Badger
// database. It needs no migrations.
type BadgerRepositoryManager struct {
	db      *badger.DB
	users   *users.BadgerRepository
	files   *files.BadgerRepository
	folders *folders.BadgerRepository
}

func NewBadgerRepositoryManager(db *badger.DB) *BadgerRepositoryManager {
	return &BadgerRepositoryManager{
		db:      db,
		users:   users.NewBadgerRepository(db),
		files:   files.NewBadgerRepository(db),
		folders: folders.NewBadgerRepository(db),
	}
}

// OpenBadger opens the database at path; an empty path keeps everything in
// memory.
func OpenBadger(path string) (*BadgerRepositoryManager, error) {
	db, err := dbx.OpenBadger(path)
	if err != nil {
		return nil, err
	}
	return NewBadgerRepositoryManager(db), nil
}

func (m *BadgerRepositoryManager) Users() users.Repository     { return m.users }
func (m *BadgerRepositoryManager) Files() files.Repository     { return m.files }
func (m *BadgerRepositoryManager) Folders() folders.Repository { return m.folders }

func (m *BadgerRepositoryManager) RunMigrations(ctx context.Context) error { return nil }

func (m *BadgerRepositoryManager) Ping(ctx context.Context) error {
	if m.db.IsClosed() {
		return errBadgerClosed
	}
	return nil
}

func (m *BadgerRepositoryManager) Close() error {
	return m.db.Close()
}
