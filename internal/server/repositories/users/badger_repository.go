package users

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dmitrijs2005/filevault/internal/common"
	"github.com/dmitrijs2005/filevault/internal/dbx"
	"github.com/dmitrijs2005/filevault/internal/server/models"
	"github.com/google/uuid"
)

const (
	docPrefix     = "users"
	emailIndex    = "users_by_email"
	usernameIndex = "users_by_username"
)

// BadgerRepository stores users as JSON documents with unique email and
// username index keys written in the same transaction.
type BadgerRepository struct {
	db *badger.DB
}

func NewBadgerRepository(db *badger.DB) *BadgerRepository {
	return &BadgerRepository{db: db}
}

func (r *BadgerRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	u := *user
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt

	err := r.db.Update(func(txn *badger.Txn) error {
		if taken, err := dbx.Exists(txn, dbx.Key(emailIndex, u.Email)); err != nil {
			return err
		} else if taken {
			return common.ErrDuplicateEmail
		}
		if taken, err := dbx.Exists(txn, dbx.Key(usernameIndex, u.UserName)); err != nil {
			return err
		} else if taken {
			return common.ErrDuplicateUsername
		}

		if err := dbx.SetJSON(txn, dbx.Key(docPrefix, u.ID), &u); err != nil {
			return err
		}
		if err := txn.Set(dbx.Key(emailIndex, u.Email), []byte(u.ID)); err != nil {
			return err
		}
		return txn.Set(dbx.Key(usernameIndex, u.UserName), []byte(u.ID))
	})
	if err != nil {
		return nil, err
	}

	*user = u
	return user, nil
}

func (r *BadgerRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	user := &models.User{}
	err := r.db.View(func(txn *badger.Txn) error {
		return dbx.GetJSON(txn, dbx.Key(docPrefix, id), user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *BadgerRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getByIndex(emailIndex, email)
}

func (r *BadgerRepository) GetByUserName(ctx context.Context, username string) (*models.User, error) {
	return r.getByIndex(usernameIndex, username)
}

func (r *BadgerRepository) getByIndex(index, value string) (*models.User, error) {
	user := &models.User{}
	err := r.db.View(func(txn *badger.Txn) error {
		id, err := dbx.GetString(txn, dbx.Key(index, value))
		if err != nil {
			return err
		}
		return dbx.GetJSON(txn, dbx.Key(docPrefix, id), user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}
