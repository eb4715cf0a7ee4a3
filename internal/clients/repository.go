// Package clients keeps the in-memory client directory. Records are loaded
// lazily from the users backend, created locally with geocoded addresses and
// mirrored back on a best-effort basis.
package clients

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/harrylevesque/clientdir/internal/metrics"
	"github.com/harrylevesque/clientdir/internal/models"
	"github.com/harrylevesque/clientdir/internal/remote"
)

// Backend is the users resource the directory is loaded from.
type Backend interface {
	ListUsers(ctx context.Context) ([]remote.User, error)
	GetUser(ctx context.Context, id int) (*remote.User, error)
	CreateUser(ctx context.Context, u remote.User) (*remote.User, error)
	UpdateUser(ctx context.Context, id int, u remote.User) (*remote.User, error)
	DeleteUser(ctx context.Context, id int) error
}

// Geocoder resolves a postal code to coordinates and never fails.
type Geocoder interface {
	Resolve(ctx context.Context, cep string) models.Geo
}

// Repository is the client cache. It is safe for concurrent use.
type Repository struct {
	backend  Backend
	geocoder Geocoder
	log      logrus.FieldLogger

	// loadMu serializes backend loads so concurrent first readers share one fetch.
	loadMu sync.Mutex

	mu      sync.Mutex
	loaded  bool
	clients []models.Client
	nextID  int
}

type Option func(*Repository)

func WithLogger(l logrus.FieldLogger) Option {
	return func(r *Repository) { r.log = l }
}

// WithClients starts the repository with a loaded cache holding seed.
func WithClients(seed []models.Client) Option {
	return func(r *Repository) {
		r.clients = append([]models.Client(nil), seed...)
		r.loaded = true
		for _, c := range seed {
			if c.ID >= r.nextID {
				r.nextID = c.ID + 1
			}
		}
	}
}

func NewRepository(backend Backend, geocoder Geocoder, opts ...Option) *Repository {
	r := &Repository{
		backend:  backend,
		geocoder: geocoder,
		log:      logrus.StandardLogger(),
		nextID:   1,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Clients returns a copy of the directory, loading it from the backend
// whenever the cache is empty. Backend failures are returned as-is and
// nothing is cached.
func (r *Repository) Clients(ctx context.Context) ([]models.Client, error) {
	if list, ok := r.cached(); ok {
		metrics.RecordCacheLookup(true)
		return list, nil
	}

	r.loadMu.Lock()
	defer r.loadMu.Unlock()
	if list, ok := r.cached(); ok {
		metrics.RecordCacheLookup(true)
		return list, nil
	}

	metrics.RecordCacheLookup(false)
	users, err := r.backend.ListUsers(ctx)
	if err != nil {
		r.log.WithError(err).Error("error fetching clients")
		return nil, fmt.Errorf("fetch clients: %w", err)
	}

	fetched := make([]models.Client, 0, len(users))
	for _, u := range users {
		fetched = append(fetched, u.ToClient())
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.merge(fetched)
	r.loaded = len(fetched) > 0
	return r.snapshot(), nil
}

func (r *Repository) cached() ([]models.Client, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.loaded || len(r.clients) == 0 {
		return nil, false
	}
	return r.snapshot(), true
}

// merge installs fetched as the cache. Clients created before the first load
// are kept; those whose id collides with a fetched record get a fresh id.
// Callers hold r.mu.
func (r *Repository) merge(fetched []models.Client) {
	local := r.clients
	taken := make(map[int]bool, len(fetched))
	maxID := 0
	for _, c := range fetched {
		taken[c.ID] = true
		if c.ID > maxID {
			maxID = c.ID
		}
	}
	for _, c := range local {
		if !taken[c.ID] && c.ID > maxID {
			maxID = c.ID
		}
	}
	if maxID+1 > r.nextID {
		r.nextID = maxID + 1
	}

	merged := fetched
	for _, c := range local {
		if taken[c.ID] {
			old := c.ID
			c.ID = r.nextID
			r.nextID++
			r.log.WithFields(logrus.Fields{"old_id": old, "new_id": c.ID}).Info("renumbered locally created client")
		}
		taken[c.ID] = true
		merged = append(merged, c)
	}
	r.clients = merged
}

// snapshot copies the cache. Callers hold r.mu.
func (r *Repository) snapshot() []models.Client {
	out := make([]models.Client, len(r.clients))
	copy(out, r.clients)
	return out
}

// CreateClient geocodes the zip code of in, stores the new client under the
// next local id and mirrors it to the backend. A failed mirror is logged and
// does not fail the call.
func (r *Repository) CreateClient(ctx context.Context, in models.ClientInput) (models.Client, error) {
	if err := ctx.Err(); err != nil {
		return models.Client{}, err
	}

	geo := r.geocoder.Resolve(ctx, in.Address.Zipcode)

	r.mu.Lock()
	c := models.Client{
		ID:    r.nextID,
		Name:  in.Name,
		Email: in.Email,
		Phone: in.Phone,
		Address: models.Address{
			Street:  in.Address.Street,
			City:    in.Address.City,
			Zipcode: in.Address.Zipcode,
			Geo:     geo,
		},
	}
	r.nextID++
	r.clients = append(r.clients, c)
	r.mu.Unlock()

	mirror := remote.FromClient(c)
	mirror.ID = 0
	if _, err := r.backend.CreateUser(ctx, mirror); err != nil {
		metrics.RecordMirrorFailure()
		r.log.WithError(err).WithField("client_id", c.ID).Warn("backend rejected client, kept locally")
	}
	return c, nil
}

// ClientByID always reads from the backend, bypassing the cache.
func (r *Repository) ClientByID(ctx context.Context, id int) (models.Client, error) {
	u, err := r.backend.GetUser(ctx, id)
	if err != nil {
		r.log.WithError(err).WithField("client_id", id).Error("error fetching client")
		return models.Client{}, fmt.Errorf("fetch client %d: %w", id, err)
	}
	return u.ToClient(), nil
}

// UpdateClient writes c to the backend and refreshes the cached copy.
func (r *Repository) UpdateClient(ctx context.Context, c models.Client) (models.Client, error) {
	u, err := r.backend.UpdateUser(ctx, c.ID, remote.FromClient(c))
	if err != nil {
		r.log.WithError(err).WithField("client_id", c.ID).Error("error updating client")
		return models.Client{}, fmt.Errorf("update client %d: %w", c.ID, err)
	}
	updated := u.ToClient()
	if updated.ID == 0 {
		updated.ID = c.ID
	}

	r.mu.Lock()
	for i := range r.clients {
		if r.clients[i].ID == updated.ID {
			r.clients[i] = updated
			break
		}
	}
	r.mu.Unlock()
	return updated, nil
}

// DeleteClient removes the client from the backend, then from the cache.
func (r *Repository) DeleteClient(ctx context.Context, id int) error {
	if err := r.backend.DeleteUser(ctx, id); err != nil {
		r.log.WithError(err).WithField("client_id", id).Error("error deleting client")
		return fmt.Errorf("delete client %d: %w", id, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.clients {
		if r.clients[i].ID == id {
			r.clients = append(r.clients[:i], r.clients[i+1:]...)
			break
		}
	}
	return nil
}

// Search filters the directory by a case-insensitive name match or a
// verbatim phone substring. An empty query returns every client.
func (r *Repository) Search(ctx context.Context, query string) ([]models.Client, error) {
	list, err := r.Clients(ctx)
	if err != nil {
		return nil, err
	}
	if query == "" {
		return list, nil
	}

	q := strings.ToLower(query)
	out := make([]models.Client, 0, len(list))
	for _, c := range list {
		if strings.Contains(strings.ToLower(c.Name), q) || strings.Contains(c.Phone, query) {
			out = append(out, c)
		}
	}
	return out, nil
}
