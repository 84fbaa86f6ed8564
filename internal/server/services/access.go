package services

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/dmitrijs2005/filevault/internal/common"
	"github.com/dmitrijs2005/filevault/internal/server/models"
	"github.com/dmitrijs2005/filevault/internal/server/repositories/repomanager"
)

// optionalID maps the empty string to the root (nil) parent.
func optionalID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

// ownedFolder loads folderID and checks that ownerID owns it. Absent and
// foreign folders both yield common.ErrNoAccess.
func ownedFolder(ctx context.Context, m repomanager.RepositoryManager, folderID, ownerID string) (*models.Folder, error) {
	folder, err := m.Folders().GetByID(ctx, folderID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrNoAccess
		}
		return nil, fmt.Errorf("error loading folder: %w", err)
	}
	if !folder.IsOwnedBy(ownerID) {
		return nil, common.ErrNoAccess
	}
	return folder, nil
}

// withRecipient returns a copy of recipients with id appended.
func withRecipient(recipients []string, id string) []string {
	return append(slices.Clone(recipients), id)
}
