package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/filevault/internal/common"
	"github.com/dmitrijs2005/filevault/internal/logging"
	"github.com/dmitrijs2005/filevault/internal/server/models"
	"github.com/dmitrijs2005/filevault/internal/server/repositories/repomanager"
)

// DefaultMaxFolderDepth bounds recursive folder deletion.
const DefaultMaxFolderDepth = 64

type FolderService struct {
	repomanager repomanager.RepositoryManager
	files       *FileService
	logger      logging.Logger
	maxDepth    int
}

// NewFolderService builds the folder orchestrator. Files inside deleted
// folders are removed through files; maxDepth <= 0 selects
// DefaultMaxFolderDepth.
func NewFolderService(m repomanager.RepositoryManager, files *FileService, logger logging.Logger, maxDepth int) *FolderService {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxFolderDepth
	}
	return &FolderService{
		repomanager: m,
		files:       files,
		logger:      logger.With("module", "folder_service"),
		maxDepth:    maxDepth,
	}
}

// Create stores a folder. A non-empty parentFolderID must name a folder
// owned by ownerID, otherwise common.ErrNoAccess is returned.
func (s *FolderService) Create(ctx context.Context, name, ownerID, parentFolderID string) (*models.Folder, error) {
	if parentFolderID != "" {
		if _, err := ownedFolder(ctx, s.repomanager, parentFolderID, ownerID); err != nil {
			return nil, err
		}
	}

	folder, err := s.repomanager.Folders().Create(ctx, &models.Folder{
		Name:           name,
		OwnerID:        ownerID,
		ParentFolderID: optionalID(parentFolderID),
		SharedWith:     []string{},
	})
	if err != nil {
		return nil, fmt.Errorf("error creating folder: %w", err)
	}
	return folder, nil
}

func (s *FolderService) ListByOwner(ctx context.Context, ownerID, parentFolderID string) ([]*models.Folder, error) {
	list, err := s.repomanager.Folders().ListByOwner(ctx, ownerID, optionalID(parentFolderID))
	if err != nil {
		return nil, fmt.Errorf("error listing folders: %w", err)
	}
	return list, nil
}

// Delete removes the folder with every file and subfolder beneath it, depth
// first, the folder itself last. It reports false when the folder is absent
// or foreign, or when some file inside could not be removed. Nothing is
// rolled back: whatever was removed before a failure stays removed.
func (s *FolderService) Delete(ctx context.Context, folderID, ownerID string) (bool, error) {
	folder, err := ownedFolder(ctx, s.repomanager, folderID, ownerID)
	if err != nil {
		if errors.Is(err, common.ErrNoAccess) {
			s.logger.Debug(ctx, "owner check failed", "folder_id", folderID, "user_id", ownerID)
			return false, nil
		}
		return false, err
	}

	ok, err := s.deleteTree(ctx, folder, ownerID, map[string]struct{}{}, 1)
	if err != nil {
		s.logger.Error(ctx, "folder delete failed", "folder_id", folderID, "error", err)
		return false, err
	}
	if ok {
		s.logger.Info(ctx, "folder deleted", "folder_id", folderID)
	}
	return ok, nil
}

func (s *FolderService) deleteTree(ctx context.Context, folder *models.Folder, ownerID string, visited map[string]struct{}, depth int) (bool, error) {
	if depth > s.maxDepth {
		return false, common.ErrFolderTooDeep
	}
	if _, seen := visited[folder.ID]; seen {
		return false, common.ErrFolderCycle
	}
	visited[folder.ID] = struct{}{}

	parent := &folder.ID

	files, err := s.repomanager.Files().ListByOwner(ctx, ownerID, parent)
	if err != nil {
		return false, fmt.Errorf("error listing files: %w", err)
	}
	for _, f := range files {
		ok, err := s.files.Delete(ctx, f.ID, ownerID)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}

	children, err := s.repomanager.Folders().ListByOwner(ctx, ownerID, parent)
	if err != nil {
		return false, fmt.Errorf("error listing folders: %w", err)
	}
	for _, child := range children {
		ok, err := s.deleteTree(ctx, child, ownerID, visited, depth+1)
		if err != nil || !ok {
			return false, err
		}
	}

	deleted, err := s.repomanager.Folders().Delete(ctx, folder.ID)
	if err != nil {
		return false, fmt.Errorf("error deleting folder record: %w", err)
	}
	return deleted, nil
}

// Share adds recipientID to the folder's recipient set. Access is not
// inherited by the folder's contents.
func (s *FolderService) Share(ctx context.Context, folderID, ownerID, recipientID string) (*models.Folder, error) {
	folder, err := ownedFolder(ctx, s.repomanager, folderID, ownerID)
	if err != nil {
		return nil, err
	}
	if folder.IsSharedWith(recipientID) {
		return folder, nil
	}

	updated, err := s.repomanager.Folders().Update(ctx, folderID, models.FolderUpdate{
		SharedWith: withRecipient(folder.SharedWith, recipientID),
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrNoAccess
		}
		return nil, fmt.Errorf("error sharing folder: %w", err)
	}
	return updated, nil
}
