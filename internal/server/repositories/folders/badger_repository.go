package folders

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dmitrijs2005/filevault/internal/common"
	"github.com/dmitrijs2005/filevault/internal/dbx"
	"github.com/dmitrijs2005/filevault/internal/server/models"
	"github.com/google/uuid"
)

const (
	docPrefix  = "folders"
	ownerIndex = "folders_by_owner"
)

type BadgerRepository struct {
	db  *badger.DB
	now func() time.Time
}

func NewBadgerRepository(db *badger.DB) *BadgerRepository {
	return &BadgerRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (r *BadgerRepository) Create(ctx context.Context, folder *models.Folder) (*models.Folder, error) {
	f := *folder
	f.ID = uuid.NewString()
	f.CreatedAt = r.now()
	f.UpdatedAt = f.CreatedAt
	if f.SharedWith == nil {
		f.SharedWith = []string{}
	}

	err := r.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(dbx.Key(ownerIndex, f.OwnerID, f.ID), nil); err != nil {
			return err
		}
		return dbx.SetJSON(txn, dbx.Key(docPrefix, f.ID), &f)
	})
	if err != nil {
		return nil, err
	}

	*folder = f
	return folder, nil
}

func (r *BadgerRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	f := &models.Folder{}
	err := r.db.View(func(txn *badger.Txn) error {
		return dbx.GetJSON(txn, dbx.Key(docPrefix, id), f)
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (r *BadgerRepository) ListByOwner(ctx context.Context, ownerID string, parentFolderID *string) ([]*models.Folder, error) {
	out := []*models.Folder{}
	err := r.db.View(func(txn *badger.Txn) error {
		for _, id := range dbx.KeySuffixes(txn, dbx.Prefix(ownerIndex, ownerID)) {
			f := &models.Folder{}
			err := dbx.GetJSON(txn, dbx.Key(docPrefix, id), f)
			if errors.Is(err, common.ErrorNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			if sameParent(f.ParentFolderID, parentFolderID) {
				out = append(out, f)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(out, func(a, b *models.Folder) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out, nil
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (r *BadgerRepository) Update(ctx context.Context, id string, upd models.FolderUpdate) (*models.Folder, error) {
	f := &models.Folder{}
	err := r.db.Update(func(txn *badger.Txn) error {
		if err := dbx.GetJSON(txn, dbx.Key(docPrefix, id), f); err != nil {
			return err
		}
		upd.Apply(f)
		f.UpdatedAt = r.now()
		return dbx.SetJSON(txn, dbx.Key(docPrefix, id), f)
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (r *BadgerRepository) Delete(ctx context.Context, id string) (bool, error) {
	err := r.db.Update(func(txn *badger.Txn) error {
		f := &models.Folder{}
		if err := dbx.GetJSON(txn, dbx.Key(docPrefix, id), f); err != nil {
			return err
		}
		if err := txn.Delete(dbx.Key(ownerIndex, f.OwnerID, f.ID)); err != nil {
			return err
		}
		return txn.Delete(dbx.Key(docPrefix, id))
	})
	if errors.Is(err, common.ErrorNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
