package models

import (
	"slices"
	"time"
)

// Folder groups files and subfolders of one owner. A nil ParentFolderID
// places the folder at the owner's root.
type Folder struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	OwnerID        string    `json:"owner_id"`
	ParentFolderID *string   `json:"parent_folder_id,omitempty"`
	SharedWith     []string  `json:"shared_with"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (f *Folder) IsOwnedBy(userID string) bool {
	return f.OwnerID == userID
}

func (f *Folder) IsSharedWith(userID string) bool {
	return slices.Contains(f.SharedWith, userID)
}

// FolderUpdate is a partial update of a Folder. Nil fields are left untouched.
type FolderUpdate struct {
	SharedWith []string
}

func (u FolderUpdate) Apply(f *Folder) {
	if u.SharedWith != nil {
		f.SharedWith = slices.Clone(u.SharedWith)
	}
}
