package files

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
	docPrefix   = "files"
	ownerIndex  = "files_by_owner"
	sharedIndex = "files_by_recipient"
	linkIndex   = "files_by_link"
)

// BadgerRepository stores files as JSON documents. Owner, recipient and
// public link index keys are kept in step with the document inside the same
// transaction.
type BadgerRepository struct {
	db  *badger.DB
	now func() time.Time
}

func NewBadgerRepository(db *badger.DB) *BadgerRepository {
	return &BadgerRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (r *BadgerRepository) Create(ctx context.Context, file *models.File) (*models.File, error) {
	f := *file
	f.ID = uuid.NewString()
	f.CreatedAt = r.now()
	f.UpdatedAt = f.CreatedAt
	if f.SharedWith == nil {
		f.SharedWith = []string{}
	}

	err := r.db.Update(func(txn *badger.Txn) error {
		return r.put(txn, nil, &f)
	})
	if err != nil {
		return nil, err
	}

	*file = f
	return file, nil
}

func (r *BadgerRepository) GetByID(ctx context.Context, id string) (*models.File, error) {
	var f *models.File
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		f, err = get(txn, id)
		return err
	})
	return f, err
}

func (r *BadgerRepository) ListByOwner(ctx context.Context, ownerID string, parentFolderID *string) ([]*models.File, error) {
	return r.listIndex(dbx.Prefix(ownerIndex, ownerID), func(f *models.File) bool {
		if parentFolderID == nil {
			return f.ParentFolderID == nil
		}
		return f.ParentFolderID != nil && *f.ParentFolderID == *parentFolderID
	})
}

func (r *BadgerRepository) ListSharedWith(ctx context.Context, userID string) ([]*models.File, error) {
	return r.listIndex(dbx.Prefix(sharedIndex, userID), nil)
}

func (r *BadgerRepository) ListPublicByLink(ctx context.Context, link string) ([]*models.File, error) {
	return r.listIndex(dbx.Prefix(linkIndex, link), func(f *models.File) bool { return f.IsPublic })
}

func (r *BadgerRepository) Update(ctx context.Context, id string, upd models.FileUpdate) (*models.File, error) {
	var updated *models.File
	err := r.db.Update(func(txn *badger.Txn) error {
		old, err := get(txn, id)
		if err != nil {
			return err
		}
		f := *old
		upd.Apply(&f)
		f.UpdatedAt = r.now()
		if err := r.put(txn, old, &f); err != nil {
			return err
		}
		updated = &f
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *BadgerRepository) Delete(ctx context.Context, id string) (bool, error) {
	err := r.db.Update(func(txn *badger.Txn) error {
		f, err := get(txn, id)
		if err != nil {
			return err
		}
		for _, k := range indexKeys(f) {
			if err := txn.Delete(k); err != nil {
				return err
			}
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

func get(txn *badger.Txn, id string) (*models.File, error) {
	f := &models.File{}
	if err := dbx.GetJSON(txn, dbx.Key(docPrefix, id), f); err != nil {
		return nil, err
	}
	return f, nil
}

// put writes f and moves its index keys from old's (nil for a new file).
func (r *BadgerRepository) put(txn *badger.Txn, old, f *models.File) error {
	if old != nil {
		for _, k := range indexKeys(old) {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
	}
	for _, k := range indexKeys(f) {
		if err := txn.Set(k, nil); err != nil {
			return err
		}
	}
	return dbx.SetJSON(txn, dbx.Key(docPrefix, f.ID), f)
}

func indexKeys(f *models.File) [][]byte {
	keys := [][]byte{dbx.Key(ownerIndex, f.OwnerID, f.ID)}
	for _, u := range f.SharedWith {
		keys = append(keys, dbx.Key(sharedIndex, u, f.ID))
	}
	if f.PublicLink != nil {
		keys = append(keys, dbx.Key(linkIndex, *f.PublicLink, f.ID))
	}
	return keys
}

func (r *BadgerRepository) listIndex(prefix []byte, keep func(*models.File) bool) ([]*models.File, error) {
	out := []*models.File{}
	err := r.db.View(func(txn *badger.Txn) error {
		for _, id := range dbx.KeySuffixes(txn, prefix) {
			f, err := get(txn, id)
			if errors.Is(err, common.ErrorNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			if keep == nil || keep(f) {
				out = append(out, f)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(out, func(a, b *models.File) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out, nil
}
