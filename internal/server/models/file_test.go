package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestFile_CanBeReadBy(t *testing.T) {
	f := &File{OwnerID: "owner", SharedWith: []string{"friend"}}

	assert.True(t, f.CanBeReadBy("owner"))
	assert.True(t, f.CanBeReadBy("friend"))
	assert.False(t, f.CanBeReadBy("stranger"))

	f.IsPublic = true
	assert.True(t, f.CanBeReadBy("stranger"))
}

func TestFile_PublicLinkActiveAt(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	expiry := now.Add(time.Hour)

	f := &File{}
	assert.False(t, f.PublicLinkActiveAt(now), "unpublished")

	f.IsPublic = true
	f.PublicLink = strPtr("/api/files/public/abc")
	assert.True(t, f.PublicLinkActiveAt(now), "no expiry")

	f.PublicLinkExpiry = &expiry
	assert.True(t, f.PublicLinkActiveAt(now))
	assert.False(t, f.PublicLinkActiveAt(expiry), "expiry instant is already expired")
	assert.False(t, f.PublicLinkActiveAt(expiry.Add(time.Second)))
}

func TestFileUpdate_Apply(t *testing.T) {
	expiry := time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC)
	f := &File{SharedWith: []string{"a"}}

	FileUpdate{}.Apply(f)
	assert.Equal(t, []string{"a"}, f.SharedWith)
	assert.False(t, f.IsPublic)

	shared := []string{"a", "b"}
	FileUpdate{SharedWith: shared}.Apply(f)
	shared[0] = "mutated"
	assert.Equal(t, []string{"a", "b"}, f.SharedWith)

	FileUpdate{PublicLink: &PublicLinkUpdate{Link: "/l", ExpiresAt: &expiry}}.Apply(f)
	assert.True(t, f.IsPublic)
	assert.Equal(t, "/l", *f.PublicLink)
	assert.Equal(t, expiry, *f.PublicLinkExpiry)
}

func TestFolder_Sharing(t *testing.T) {
	f := &Folder{OwnerID: "o"}
	assert.True(t, f.IsOwnedBy("o"))
	assert.False(t, f.IsSharedWith("x"))

	FolderUpdate{SharedWith: []string{"x"}}.Apply(f)
	assert.True(t, f.IsSharedWith("x"))
}
