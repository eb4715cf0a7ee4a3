// Package auth keeps the in-memory account list and the bearer sessions
// issued on login.
package auth

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/harrylevesque/clientdir/internal/models"
)

var (
	// ErrInvalidCredentials is returned when the username or password is wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserExists is returned when registering a taken username.
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
)

// Store is the account list. It is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	users []models.User
	cost  int
}

type Option func(*Store)

// WithCost sets the bcrypt cost used for new password hashes.
func WithCost(cost int) Option {
	return func(s *Store) { s.cost = cost }
}

// NewStore creates a store holding seed. Seed passwords are hashed on the
// way in; usernames must be unique.
func NewStore(seed []SeedUser, opts ...Option) (*Store, error) {
	s := &Store{cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(s)
	}

	for _, su := range seed {
		if _, ok := s.find(su.Username); ok {
			return nil, fmt.Errorf("seed user %q: %w", su.Username, ErrUserExists)
		}
		hash, err := HashPassword(su.Password, s.cost)
		if err != nil {
			return nil, fmt.Errorf("hash seed user %q: %w", su.Username, err)
		}
		id := su.ID
		if id == 0 {
			id = s.nextID()
		}
		for _, u := range s.users {
			if u.ID == id {
				return nil, fmt.Errorf("seed user %q: duplicate id %d", su.Username, id)
			}
		}
		s.users = append(s.users, models.User{
			ID:           id,
			Username:     su.Username,
			PasswordHash: hash,
			Name:         su.Name,
			Email:        su.Email,
		})
	}
	return s, nil
}

// Login returns the account matching username and password.
func (s *Store) Login(username, password string) (models.PublicUser, error) {
	s.mu.RLock()
	u, ok := s.find(username)
	s.mu.RUnlock()
	if !ok || !CheckPasswordHash(password, u.PasswordHash) {
		return models.PublicUser{}, ErrInvalidCredentials
	}
	return u.Public(), nil
}

// Register adds a new account under the next sequential id. A taken
// username fails with ErrUserExists and leaves the store untouched.
func (s *Store) Register(r models.Registration) (models.PublicUser, error) {
	if s.exists(r.Username) {
		return models.PublicUser{}, ErrUserExists
	}
	hash, err := HashPassword(r.Password, s.cost)
	if err != nil {
		return models.PublicUser{}, fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// checked again: another registration may have won while hashing
	if _, ok := s.find(r.Username); ok {
		return models.PublicUser{}, ErrUserExists
	}
	u := models.User{
		ID:           s.nextID(),
		Username:     r.Username,
		PasswordHash: hash,
		Name:         r.Name,
		Email:        r.Email,
	}
	s.users = append(s.users, u)
	return u.Public(), nil
}

func (s *Store) UserByUsername(username string) (models.PublicUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.find(username)
	if !ok {
		return models.PublicUser{}, ErrUserNotFound
	}
	return u.Public(), nil
}

func (s *Store) UserByID(id int) (models.PublicUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.ID == id {
			return u.Public(), nil
		}
	}
	return models.PublicUser{}, ErrUserNotFound
}

// Len returns the number of accounts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

func (s *Store) exists(username string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.find(username)
	return ok
}

// find does a linear search by username. Callers hold s.mu.
func (s *Store) find(username string) (models.User, bool) {
	for _, u := range s.users {
		if u.Username == username {
			return u, true
		}
	}
	return models.User{}, false
}

// nextID is one past the highest id. Callers hold s.mu.
func (s *Store) nextID() int {
	max := 0
	for _, u := range s.users {
		if u.ID > max {
			max = u.ID
		}
	}
	return max + 1
}
