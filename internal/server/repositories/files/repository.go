// Package files persists File metadata records.
package files

import (
	"context"

	"github.com/dmitrijs2005/filevault/internal/server/models"
)

type Repository interface {
	// Create stores file and fills in its ID and timestamps.
	Create(ctx context.Context, file *models.File) (*models.File, error)
	// GetByID returns common.ErrorNotFound for absent ids.
	GetByID(ctx context.Context, id string) (*models.File, error)
	// ListByOwner lists the owner's files directly inside parentFolderID,
	// or at the root when parentFolderID is nil.
	ListByOwner(ctx context.Context, ownerID string, parentFolderID *string) ([]*models.File, error)
	// ListSharedWith lists files whose recipient set contains userID.
	ListSharedWith(ctx context.Context, userID string) ([]*models.File, error)
	// ListPublicByLink lists public files carrying link, oldest first.
	// Expiry is not evaluated here.
	ListPublicByLink(ctx context.Context, link string) ([]*models.File, error)
	// Update applies upd in one write, bumps UpdatedAt and returns the
	// updated record, or common.ErrorNotFound.
	Update(ctx context.Context, id string, upd models.FileUpdate) (*models.File, error)
	// Delete removes the record and reports whether it existed.
	Delete(ctx context.Context, id string) (bool, error)
}
