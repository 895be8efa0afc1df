package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/Apurer/supplychain-tracker/internal/domains/users/domain"
	"github.com/Apurer/supplychain-tracker/internal/domains/users/ports"
	"github.com/Apurer/supplychain-tracker/internal/shared/identity"
)

var _ ports.Repository = (*Repository)(nil)

// Repository keeps users in memory for demos/tests.
type Repository struct {
	mu         sync.RWMutex
	users      map[string]domain.User
	byUsername map[string]string
}

func NewRepository() *Repository {
	return &Repository{
		users:      map[string]domain.User{},
		byUsername: map[string]string{},
	}
}

// Create inserts user; username and email are unique.
func (r *Repository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, errors.New("cannot save nil user")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; ok {
		return nil, ports.ErrDuplicate
	}
	if _, ok := r.byUsername[strings.ToLower(user.Username)]; ok {
		return nil, ports.ErrDuplicate
	}
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return nil, ports.ErrDuplicate
		}
	}
	r.users[user.ID] = *user
	r.byUsername[strings.ToLower(user.Username)] = user.ID
	copied := *user
	return &copied, nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return &user, nil
}

func (r *Repository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	id, ok := r.byUsername[strings.ToLower(strings.TrimSpace(username))]
	r.mu.RUnlock()
	if !ok {
		return nil, ports.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// List returns all users ordered by username.
func (r *Repository) List(_ context.Context) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		user := u
		list = append(list, &user)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Username < list[j].Username })
	return list, nil
}

// Update replaces a stored user; username and email are not re-indexed.
func (r *Repository) Update(_ context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, errors.New("cannot save nil user")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return nil, ports.ErrNotFound
	}
	r.users[user.ID] = *user
	copied := *user
	return &copied, nil
}

func (r *Repository) CountByRole(_ context.Context, role identity.Role) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, u := range r.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}
