package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/filevault/internal/logging"
	"github.com/dmitrijs2005/filevault/internal/server/models"
	"github.com/dmitrijs2005/filevault/internal/server/repositories/files"
	"github.com/dmitrijs2005/filevault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/filevault/internal/server/storage"
	"github.com/stretchr/testify/require"
)

var errStore = errors.New("store unavailable")

func newRepos(t *testing.T) *repomanager.BadgerRepositoryManager {
	t.Helper()
	m, err := repomanager.OpenBadger("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

// memStore is an in-memory blob store with failure injection.
type memStore struct {
	mu        sync.Mutex
	blobs     map[string][]byte
	saveErr   error
	getErr    error
	deleteErr error
	deletes   []string
}

func newMemStore() *memStore { return &memStore{blobs: map[string][]byte{}} }

func (m *memStore) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[name] = data
	return name, nil
}

func (m *memStore) Get(ctx context.Context, name string) (io.ReadCloser, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.blobs[name]
	if !ok {
		return nil, storage.ErrBlobNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memStore) Delete(ctx context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes = append(m.deletes, name)
	if m.deleteErr != nil {
		return false, m.deleteErr
	}
	if _, ok := m.blobs[name]; !ok {
		return false, nil
	}
	delete(m.blobs, name)
	return true, nil
}

func (m *memStore) has(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.blobs[name]
	return ok
}

func (m *memStore) remove(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, name)
}

// brokenFiles fails selected file repository calls.
type brokenFiles struct {
	files.Repository
	createErr error
	updateErr error
	updates   int
}

func (b *brokenFiles) Create(ctx context.Context, f *models.File) (*models.File, error) {
	if b.createErr != nil {
		return nil, b.createErr
	}
	return b.Repository.Create(ctx, f)
}

func (b *brokenFiles) Update(ctx context.Context, id string, upd models.FileUpdate) (*models.File, error) {
	b.updates++
	if b.updateErr != nil {
		return nil, b.updateErr
	}
	return b.Repository.Update(ctx, id, upd)
}

type brokenManager struct {
	repomanager.RepositoryManager
	files *brokenFiles
}

func (b *brokenManager) Files() files.Repository { return b.files }

// testClock is a settable clock.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

type fixture struct {
	repos   *repomanager.BadgerRepositoryManager
	blobs   *memStore
	clock   *testClock
	files   *FileService
	folders *FolderService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos := newRepos(t)
	blobs := newMemStore()
	clock := &testClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	fs := NewFileService(repos, blobs, logging.Nop(), WithClock(clock.Now))
	return &fixture{
		repos:   repos,
		blobs:   blobs,
		clock:   clock,
		files:   fs,
		folders: NewFolderService(repos, fs, logging.Nop(), 0),
	}
}

func (f *fixture) upload(t *testing.T, owner, folder, name, content string) *models.File {
	t.Helper()
	file, err := f.files.Upload(context.Background(), bytes.NewBufferString(content), name, "text/plain", owner, folder)
	require.NoError(t, err)
	return file
}

func (f *fixture) mkdir(t *testing.T, owner, parent, name string) *models.Folder {
	t.Helper()
	folder, err := f.folders.Create(context.Background(), name, owner, parent)
	require.NoError(t, err)
	return folder
}
