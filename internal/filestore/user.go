package filestore

import (
	"context"
	"strings"

	"github.com/adventureworks/storefront/internal/domain/identity"
)

var _ identity.Repository = (*UserRepository)(nil)

// UserRepository implements identity.Repository over a flat-file collection.
type UserRepository struct {
	c *collection[identity.User]
}

// Create persists a new user. The duplicate-email check runs under the same
// exclusive lock as the append, so two concurrent registrations with the
// same email cannot both succeed.
func (r *UserRepository) Create(ctx context.Context, u *identity.User) error {
	return r.c.update(func(items []identity.User) ([]identity.User, error) {
		for _, existing := range items {
			if strings.EqualFold(existing.Email, u.Email) {
				return nil, identity.ErrEmailTaken
			}
		}
		next := make([]identity.User, len(items), len(items)+1)
		copy(next, items)
		return append(next, *u), nil
	})
}

// GetByEmail looks a user up by email, case-insensitively.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*identity.User, error) {
	for _, u := range r.c.snapshot() {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, identity.ErrNotFound
}

// GetByID returns the user with the given id.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*identity.User, error) {
	for _, u := range r.c.snapshot() {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, identity.ErrNotFound
}
