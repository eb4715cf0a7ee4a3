package auth

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/harrylevesque/clientdir/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(DefaultSeed(), WithCost(bcrypt.MinCost))
	require.NoError(t, err)
	return s
}

func TestLogin(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	u, err := s.Login("admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, models.PublicUser{
		ID:       1,
		Username: "admin",
		Name:     "Administrador",
		Email:    "admin@exemplo.com",
	}, u)

	_, err = s.Login("admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.Login("nobody", "admin123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegister(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	u, err := s.Register(models.Registration{
		Username: "maria",
		Password: "s3cret",
		Name:     "Maria Silva",
		Email:    "maria@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, u.ID)
	assert.Equal(t, "maria", u.Username)

	logged, err := s.Login("maria", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, u, logged)

	found, err := s.UserByUsername("maria")
	require.NoError(t, err)
	assert.Equal(t, u, found)

	byID, err := s.UserByID(2)
	require.NoError(t, err)
	assert.Equal(t, u, byID)
}

func TestRegisterDuplicateLeavesStoreUnchanged(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	before := s.Len()

	_, err := s.Register(models.Registration{Username: "admin", Password: "other", Name: "Impostor", Email: "x@y.z"})
	require.ErrorIs(t, err, ErrUserExists)

	assert.Equal(t, before, s.Len())
	_, err = s.Login("admin", "other")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	u, err := s.Login("admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, "Administrador", u.Name)
}

func TestRegisterConcurrentSameUsername(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	var wg sync.WaitGroup
	errs := make([]error, 6)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.Register(models.Registration{Username: "race", Password: "p", Name: "R", Email: "r@x.io"})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, ErrUserExists)
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 2, s.Len())
}

func TestNewStoreRejectsDuplicateSeed(t *testing.T) {
	t.Parallel()

	seed := append(DefaultSeed(), SeedUser{Username: "admin", Password: "x"})
	_, err := NewStore(seed, WithCost(bcrypt.MinCost))
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestUserLookupsMissing(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	_, err := s.UserByUsername("ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = s.UserByID(99)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestLoadSeed(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "users.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`users:
  - username: admin
    password: admin123
    name: Administrador
    email: admin@exemplo.com
  - id: 10
    username: joao
    password: pw
    name: João
    email: joao@example.com
`), 0600))

	seed, err := LoadSeed(path)
	require.NoError(t, err)
	require.Len(t, seed, 2)
	assert.Equal(t, 10, seed[1].ID)

	s, err := NewStore(seed, WithCost(bcrypt.MinCost))
	require.NoError(t, err)

	admin, err := s.UserByUsername("admin")
	require.NoError(t, err)
	assert.Equal(t, 1, admin.ID)

	u, err := s.Register(models.Registration{Username: "ana", Password: "pw", Name: "Ana", Email: "ana@example.com"})
	require.NoError(t, err)
	assert.Equal(t, 11, u.ID)
}

func TestLoadSeedErrors(t *testing.T) {
	t.Parallel()

	_, err := LoadSeed(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("users:\n  - username: nopass\n"), 0600))
	_, err = LoadSeed(path)
	assert.ErrorContains(t, err, "needs a username and password")
}
