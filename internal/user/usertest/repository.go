// Package usertest provides an in-memory user.Repository for handler and
// service tests, mirroring the query semantics of the real implementation.
package usertest

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hamzamohiuddin1/msaconnect/internal/user"
)

type Repository struct {
	mu     sync.Mutex
	nextID int
	users  map[int]*user.User
}

func NewRepository() *Repository {
	return &Repository{
		nextID: 1,
		users:  make(map[int]*user.User),
	}
}

// Count returns the number of stored users.
func (r *Repository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

func (r *Repository) Create(ctx context.Context, u *user.User) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == u.Email {
			return nil, errors.New("duplicate key value violates unique constraint")
		}
	}

	clone := *u
	clone.ID = r.nextID
	clone.CreatedAt = time.Now()
	clone.UpdatedAt = clone.CreatedAt
	r.nextID++
	r.users[clone.ID] = &clone

	copied := clone
	return &copied, nil
}

func (r *Repository) GetByID(ctx context.Context, id int) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, user.ErrNotFound
}

func (r *Repository) GetByConfirmationToken(ctx context.Context, token string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.EmailConfirmationToken == token && u.EmailConfirmationExpires.After(time.Now()) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, user.ErrNotFound
}

func (r *Repository) UpdateProfile(ctx context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[u.ID]
	if !ok {
		return user.ErrNotFound
	}
	stored.Name = u.Name
	stored.PhoneNumber = u.PhoneNumber
	stored.Major = u.Major
	stored.Year = u.Year
	stored.GenderPreference = u.GenderPreference
	stored.UpdatedAt = time.Now()
	return nil
}

func (r *Repository) UpdateClasses(ctx context.Context, id int, classes []user.Class) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	stored.Classes = append([]user.Class(nil), classes...)
	stored.UpdatedAt = time.Now()
	copied := *stored
	return &copied, nil
}

func (r *Repository) ConfirmEmail(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[id]
	if !ok {
		return user.ErrNotFound
	}
	stored.IsEmailConfirmed = true
	stored.EmailConfirmationToken = ""
	stored.EmailConfirmationExpires = time.Time{}
	stored.UpdatedAt = time.Now()
	return nil
}

func (r *Repository) FindClassmates(ctx context.Context, excludeID int, courseID string, gender string) ([]user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matches []user.User
	for _, u := range r.users {
		if u.ID == excludeID || !u.IsEmailConfirmed {
			continue
		}
		if gender != "" && u.Gender != gender {
			continue
		}
		if _, ok := u.ClassFor(courseID); !ok {
			continue
		}
		matches = append(matches, *u)
	}
	return matches, nil
}
