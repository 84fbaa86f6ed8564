package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/filevault/internal/common"
	"github.com/dmitrijs2005/filevault/internal/logging"
	"github.com/dmitrijs2005/filevault/internal/server/models"
	"github.com/dmitrijs2005/filevault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/filevault/internal/server/storage"
	"github.com/google/uuid"
)

type FileService struct {
	repomanager repomanager.RepositoryManager
	blobs       storage.Store
	logger      logging.Logger
	now         func() time.Time
}

type FileServiceOption func(*FileService)

// WithClock replaces time.Now, which drives public link expiry.
func WithClock(now func() time.Time) FileServiceOption {
	return func(s *FileService) { s.now = now }
}

func NewFileService(m repomanager.RepositoryManager, blobs storage.Store, logger logging.Logger, opts ...FileServiceOption) *FileService {
	s := &FileService{
		repomanager: m,
		blobs:       blobs,
		logger:      logger.With("module", "file_service"),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StorageName prefixes the declared filename with a random token so that
// uploads of the same name never collide in the blob store.
func StorageName(filename string) string {
	safe := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', 0:
			return '_'
		}
		return r
	}, filename)
	if safe == "" || safe == "." || safe == ".." {
		safe = "file"
	}
	return strings.ReplaceAll(uuid.NewString(), "-", "") + "_" + truncateName(safe, maxStorageSuffix)
}

// maxStorageSuffix keeps storage names within the common 255-byte file name
// limit after the 33-byte random prefix.
const maxStorageSuffix = 222

// truncateName cuts name to at most max bytes on a rune boundary, keeping a
// short extension intact.
func truncateName(name string, max int) string {
	if len(name) <= max {
		return name
	}
	ext := path.Ext(name)
	if len(ext) > max/4 {
		ext = ""
	}
	base := name[:len(name)-len(ext)]
	n := max - len(ext)
	for n > 0 && !utf8.RuneStart(base[n]) {
		n--
	}
	return base[:n] + ext
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// Upload writes the blob, then the metadata record, so a record never points
// at a missing blob. A non-empty parentFolderID must name a folder owned by
// ownerID.
func (s *FileService) Upload(ctx context.Context, r io.Reader, filename, contentType, ownerID, parentFolderID string) (*models.File, error) {
	if parentFolderID != "" {
		if _, err := ownedFolder(ctx, s.repomanager, parentFolderID, ownerID); err != nil {
			return nil, err
		}
	}

	counter := &countingReader{r: r}
	name, err := s.blobs.Save(ctx, StorageName(filename), counter)
	if err != nil {
		return nil, fmt.Errorf("error saving blob: %w", err)
	}

	file, err := s.repomanager.Files().Create(ctx, &models.File{
		StorageName:      name,
		OriginalFilename: filename,
		ContentType:      contentType,
		Size:             counter.n,
		OwnerID:          ownerID,
		ParentFolderID:   optionalID(parentFolderID),
		SharedWith:       []string{},
	})
	if err != nil {
		if _, derr := s.blobs.Delete(ctx, name); derr != nil {
			s.logger.Error(ctx, "failed to remove orphaned blob", "storage_name", name, "error", derr)
		}
		return nil, fmt.Errorf("error creating file record: %w", err)
	}

	s.logger.Info(ctx, "file uploaded", "file_id", file.ID, "owner_id", ownerID, "size", file.Size)
	return file, nil
}

// readable loads a file the user may read: its owner, a recipient, or
// anyone once it is public.
func (s *FileService) readable(ctx context.Context, fileID, userID string) (*models.File, error) {
	file, err := s.repomanager.Files().GetByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrNoAccess
		}
		return nil, fmt.Errorf("error loading file: %w", err)
	}
	if !file.CanBeReadBy(userID) {
		s.logger.Debug(ctx, "read denied", "file_id", fileID, "user_id", userID)
		return nil, common.ErrNoAccess
	}
	return file, nil
}

// owned loads a file owned by userID.
func (s *FileService) owned(ctx context.Context, fileID, userID string) (*models.File, error) {
	file, err := s.repomanager.Files().GetByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrNoAccess
		}
		return nil, fmt.Errorf("error loading file: %w", err)
	}
	if !file.IsOwnedBy(userID) {
		s.logger.Debug(ctx, "owner check failed", "file_id", fileID, "user_id", userID)
		return nil, common.ErrNoAccess
	}
	return file, nil
}

func (s *FileService) open(ctx context.Context, file *models.File, missing error) (*models.Download, error) {
	content, err := s.blobs.Get(ctx, file.StorageName)
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			s.logger.Warn(ctx, "blob missing", "file_id", file.ID, "storage_name", file.StorageName)
			return nil, missing
		}
		return nil, fmt.Errorf("error opening blob: %w", err)
	}
	return &models.Download{
		Content:     content,
		Filename:    file.OriginalFilename,
		ContentType: file.ContentType,
		Size:        file.Size,
	}, nil
}

// Download authorizes the user before touching the blob store. Absence,
// denial and a missing blob all yield common.ErrNoAccess.
func (s *FileService) Download(ctx context.Context, fileID, userID string) (*models.Download, error) {
	file, err := s.readable(ctx, fileID, userID)
	if err != nil {
		return nil, err
	}
	return s.open(ctx, file, common.ErrNoAccess)
}

// Get returns the metadata of a file under the same rule as Download.
func (s *FileService) Get(ctx context.Context, fileID, userID string) (*models.File, error) {
	return s.readable(ctx, fileID, userID)
}

// ListByOwner lists the owner's files in folderID, or at the root when
// folderID is empty.
func (s *FileService) ListByOwner(ctx context.Context, ownerID, folderID string) ([]*models.File, error) {
	list, err := s.repomanager.Files().ListByOwner(ctx, ownerID, optionalID(folderID))
	if err != nil {
		return nil, fmt.Errorf("error listing files: %w", err)
	}
	return list, nil
}

func (s *FileService) ListSharedWith(ctx context.Context, userID string) ([]*models.File, error) {
	list, err := s.repomanager.Files().ListSharedWith(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing shared files: %w", err)
	}
	return list, nil
}

// Delete removes the blob and then the record. It reports false when the
// file is absent, foreign, or its blob could not be removed; in the last
// case the record is kept.
func (s *FileService) Delete(ctx context.Context, fileID, userID string) (bool, error) {
	file, err := s.owned(ctx, fileID, userID)
	if err != nil {
		if errors.Is(err, common.ErrNoAccess) {
			return false, nil
		}
		return false, err
	}

	removed, err := s.blobs.Delete(ctx, file.StorageName)
	if err != nil {
		s.logger.Error(ctx, "blob delete failed", "file_id", fileID, "error", err)
		return false, fmt.Errorf("error deleting blob: %w", err)
	}
	if !removed {
		s.logger.Warn(ctx, "blob already absent, keeping record", "file_id", fileID, "storage_name", file.StorageName)
		return false, nil
	}

	deleted, err := s.repomanager.Files().Delete(ctx, fileID)
	if err != nil {
		return false, fmt.Errorf("error deleting file record: %w", err)
	}
	if deleted {
		s.logger.Info(ctx, "file deleted", "file_id", fileID)
	}
	return deleted, nil
}

// Share adds recipientID to the file's recipient set. Sharing with a
// present recipient returns the file without writing.
func (s *FileService) Share(ctx context.Context, fileID, ownerID, recipientID string) (*models.File, error) {
	file, err := s.owned(ctx, fileID, ownerID)
	if err != nil {
		return nil, err
	}
	if file.IsSharedWith(recipientID) {
		return file, nil
	}

	updated, err := s.repomanager.Files().Update(ctx, fileID, models.FileUpdate{
		SharedWith: withRecipient(file.SharedWith, recipientID),
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrNoAccess
		}
		return nil, fmt.Errorf("error sharing file: %w", err)
	}
	return updated, nil
}

// CreatePublicLink publishes the file under a fresh random link. A nil
// expiresInDays creates a link that never expires. The flag, link and expiry
// are written in one update.
func (s *FileService) CreatePublicLink(ctx context.Context, fileID, ownerID string, expiresInDays *int) (*models.PublicLink, error) {
	if _, err := s.owned(ctx, fileID, ownerID); err != nil {
		return nil, err
	}

	key, err := common.MakeRandHexString(common.PublicLinkKeySize)
	if err != nil {
		return nil, fmt.Errorf("error generating link: %w", err)
	}
	link := common.PublicLink(key)

	var expiresAt *time.Time
	if expiresInDays != nil {
		t := s.now().UTC().AddDate(0, 0, *expiresInDays)
		expiresAt = &t
	}

	_, err = s.repomanager.Files().Update(ctx, fileID, models.FileUpdate{
		PublicLink: &models.PublicLinkUpdate{Link: link, ExpiresAt: expiresAt},
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrNoAccess
		}
		return nil, fmt.Errorf("error publishing file: %w", err)
	}

	s.logger.Info(ctx, "public link created", "file_id", fileID)
	return &models.PublicLink{Link: link, ExpiresAt: expiresAt}, nil
}

// ResolvePublicLink returns the first public file carrying link whose expiry
// has not passed. Expired links are skipped, never unpublished.
func (s *FileService) ResolvePublicLink(ctx context.Context, link string) (*models.File, error) {
	candidates, err := s.repomanager.Files().ListPublicByLink(ctx, link)
	if err != nil {
		return nil, fmt.Errorf("error resolving link: %w", err)
	}

	now := s.now()
	for _, f := range candidates {
		if f.PublicLinkActiveAt(now) {
			return f, nil
		}
	}
	return nil, common.ErrorNotFound
}

// OpenPublic resolves the link key and opens the blob behind it.
func (s *FileService) OpenPublic(ctx context.Context, key string) (*models.Download, error) {
	file, err := s.ResolvePublicLink(ctx, common.PublicLink(key))
	if err != nil {
		return nil, err
	}
	return s.open(ctx, file, common.ErrorNotFound)
}
