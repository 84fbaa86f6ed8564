// Package users persists User records. Lookups of absent users return
// common.ErrorNotFound.
package users

import (
	"context"

	"github.com/dmitrijs2005/filevault/internal/server/models"
)

type Repository interface {
	// Create stores user and fills in its ID and timestamps. Email and
	// username collisions yield common.ErrDuplicateEmail and
	// common.ErrDuplicateUsername.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUserName(ctx context.Context, username string) (*models.User, error)
}
