package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/filevault/internal/common"
	"github.com/dmitrijs2005/filevault/internal/logging"
	"github.com/dmitrijs2005/filevault/internal/server/auth"
	"github.com/dmitrijs2005/filevault/internal/server/models"
	"github.com/dmitrijs2005/filevault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/filevault/internal/server/repositories/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// plainHasher keeps tests fast; bcrypt is covered in the auth package.
type plainHasher struct{ err error }

func (h plainHasher) Hash(p string) (string, error) {
	if h.err != nil {
		return "", h.err
	}
	return "hashed:" + p, nil
}

func (h plainHasher) Verify(p, hash string) bool { return hash == "hashed:"+p }

type fakeTokens struct {
	issued   map[string]string
	issueErr error
}

func (f *fakeTokens) Issue(userID, username string) (string, error) {
	if f.issueErr != nil {
		return "", f.issueErr
	}
	tok := "tok-" + userID
	f.issued[tok] = userID
	return tok, nil
}

func (f *fakeTokens) Verify(token string) (string, error) {
	id, ok := f.issued[token]
	if !ok {
		return "", common.ErrInvalidToken
	}
	return id, nil
}

func newUserService(t *testing.T) (*UserService, *fakeTokens) {
	t.Helper()
	tokens := &fakeTokens{issued: map[string]string{}}
	return NewUserService(newRepos(t), plainHasher{}, tokens, logging.Nop()), tokens
}

func TestUserService_RegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	s, _ := newUserService(t)

	u, err := s.Register(ctx, "alice", "alice@example.com", "pw")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "hashed:pw", u.PasswordHash)

	token, err := s.Authenticate(ctx, "alice@example.com", "pw")
	require.NoError(t, err)

	got, err := s.ResolveToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "alice", got.UserName)
}

func TestUserService_RegisterDuplicates(t *testing.T) {
	ctx := context.Background()
	s, _ := newUserService(t)

	_, err := s.Register(ctx, "alice", "alice@example.com", "pw")
	require.NoError(t, err)

	_, err = s.Register(ctx, "alice2", "alice@example.com", "pw")
	assert.ErrorIs(t, err, common.ErrDuplicateEmail)

	_, err = s.Register(ctx, "alice", "other@example.com", "pw")
	assert.ErrorIs(t, err, common.ErrDuplicateUsername)

	// both collide: email is checked first
	_, err = s.Register(ctx, "alice", "alice@example.com", "pw")
	assert.ErrorIs(t, err, common.ErrDuplicateEmail)
}

func TestUserService_RegisterHashError(t *testing.T) {
	tokens := &fakeTokens{issued: map[string]string{}}
	s := NewUserService(newRepos(t), plainHasher{err: errors.New("rng")}, tokens, logging.Nop())

	_, err := s.Register(context.Background(), "a", "a@example.com", "pw")
	assert.ErrorContains(t, err, "rng")
}

func TestUserService_AuthenticateFailures(t *testing.T) {
	ctx := context.Background()
	s, tokens := newUserService(t)
	_, err := s.Register(ctx, "alice", "alice@example.com", "pw")
	require.NoError(t, err)

	_, err = s.Authenticate(ctx, "nobody@example.com", "pw")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	_, err = s.Authenticate(ctx, "alice@example.com", "wrong")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	tokens.issueErr = errors.New("sign")
	_, err = s.Authenticate(ctx, "alice@example.com", "pw")
	assert.ErrorContains(t, err, "sign")
	assert.NotErrorIs(t, err, common.ErrorUnauthorized)
}

func TestUserService_ResolveTokenFailures(t *testing.T) {
	ctx := context.Background()
	s, tokens := newUserService(t)

	_, err := s.ResolveToken(ctx, "garbage")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	tokens.issued["empty-sub"] = ""
	_, err = s.ResolveToken(ctx, "empty-sub")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	tokens.issued["ghost"] = "00000000-0000-0000-0000-000000000000"
	_, err = s.ResolveToken(ctx, "ghost")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestUserService_EmailByUserName(t *testing.T) {
	ctx := context.Background()
	s, _ := newUserService(t)
	_, err := s.Register(ctx, "alice", "alice@example.com", "pw")
	require.NoError(t, err)

	email, err := s.EmailByUserName(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", email)

	_, err = s.EmailByUserName(ctx, "bob")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestUserService_WithRealCredentials(t *testing.T) {
	ctx := context.Background()
	s := NewUserService(newRepos(t), auth.NewPasswordHasher(), auth.NewTokenManager("test-secret-key"), logging.Nop())

	u, err := s.Register(ctx, "bob", "bob@example.com", "s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", u.PasswordHash)

	token, err := s.Authenticate(ctx, "bob@example.com", "s3cret")
	require.NoError(t, err)

	got, err := s.ResolveToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = s.ResolveToken(ctx, token+"x")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

type failingUsers struct {
	users.Repository
}

func (failingUsers) GetByEmail(context.Context, string) (*models.User, error) {
	return nil, errStore
}

type failingUsersManager struct {
	repomanager.RepositoryManager
}

func (failingUsersManager) Users() users.Repository { return failingUsers{} }

func TestUserService_StoreFailure(t *testing.T) {
	ctx := context.Background()
	m := failingUsersManager{newRepos(t)}
	s := NewUserService(m, plainHasher{}, &fakeTokens{issued: map[string]string{}}, logging.Nop())

	_, err := s.Register(ctx, "a", "a@example.com", "pw")
	assert.ErrorIs(t, err, errStore)

	_, err = s.Authenticate(ctx, "a@example.com", "pw")
	assert.ErrorIs(t, err, errStore)
	assert.NotErrorIs(t, err, common.ErrorUnauthorized)
}
