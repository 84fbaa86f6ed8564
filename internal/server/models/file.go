package models

import (
	"io"
	"slices"
	"time"
)

// File is the metadata record of one stored blob.
type File struct {
	ID string `json:"id"`
	// StorageName is the unique blob store name; it never changes.
	StorageName      string     `json:"storage_name"`
	OriginalFilename string     `json:"original_filename"`
	ContentType      string     `json:"content_type"`
	Size             int64      `json:"size"`
	OwnerID          string     `json:"owner_id"`
	ParentFolderID   *string    `json:"parent_folder_id,omitempty"`
	SharedWith       []string   `json:"shared_with"`
	IsPublic         bool       `json:"is_public"`
	PublicLink       *string    `json:"public_link,omitempty"`
	PublicLinkExpiry *time.Time `json:"public_link_expiry,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (f *File) IsOwnedBy(userID string) bool {
	return f.OwnerID == userID
}

func (f *File) IsSharedWith(userID string) bool {
	return slices.Contains(f.SharedWith, userID)
}

// CanBeReadBy reports whether userID may fetch the file: the owner, any
// recipient, or anyone at all once the file is public.
func (f *File) CanBeReadBy(userID string) bool {
	return f.IsOwnedBy(userID) || f.IsSharedWith(userID) || f.IsPublic
}

// PublicLinkActiveAt reports whether the public link resolves at t.
// A link without expiry never expires.
func (f *File) PublicLinkActiveAt(t time.Time) bool {
	if !f.IsPublic || f.PublicLink == nil {
		return false
	}
	return f.PublicLinkExpiry == nil || f.PublicLinkExpiry.After(t)
}

// FileUpdate is a partial update applied to a File in a single store call.
// Nil fields are left untouched.
type FileUpdate struct {
	SharedWith []string
	PublicLink *PublicLinkUpdate
}

// PublicLinkUpdate publishes a file: is_public, the link and its expiry are
// written together.
type PublicLinkUpdate struct {
	Link      string
	ExpiresAt *time.Time
}

// Apply writes u onto f, leaving UpdatedAt to the caller.
func (u FileUpdate) Apply(f *File) {
	if u.SharedWith != nil {
		f.SharedWith = slices.Clone(u.SharedWith)
	}
	if u.PublicLink != nil {
		link := u.PublicLink.Link
		f.IsPublic = true
		f.PublicLink = &link
		f.PublicLinkExpiry = u.PublicLink.ExpiresAt
	}
}

// PublicLink is the outcome of publishing a file.
type PublicLink struct {
	Link      string
	ExpiresAt *time.Time
}

// Download is an open blob stream plus the metadata needed to serve it.
// The caller must close Content.
type Download struct {
	Content     io.ReadCloser
	Filename    string
	ContentType string
	Size        int64
}
