// Package folders persists Folder records.
package folders

import (
	"context"

	"github.com/dmitrijs2005/filevault/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, folder *models.Folder) (*models.Folder, error)
	// GetByID returns common.ErrorNotFound for absent ids.
	GetByID(ctx context.Context, id string) (*models.Folder, error)
	// ListByOwner lists the owner's folders directly inside parentFolderID,
	// or at the root when parentFolderID is nil.
	ListByOwner(ctx context.Context, ownerID string, parentFolderID *string) ([]*models.Folder, error)
	Update(ctx context.Context, id string, upd models.FolderUpdate) (*models.Folder, error)
	Delete(ctx context.Context, id string) (bool, error)
}
