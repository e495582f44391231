// Package memory is a map-backed user store for tests and DB_DRIVER=memory.
// Predicates are evaluated in memory with the same NULL ordering rules the
// SQL stores use.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/chybatronik/goUserFilter/internal/models"
	"github.com/chybatronik/goUserFilter/internal/querydsl"
	apperrors "github.com/chybatronik/goUserFilter/pkg/errors"
)

// UserStore keeps users and companies in maps guarded by a RWMutex
type UserStore struct {
	mu            sync.RWMutex
	users         map[int64]models.User
	companies     map[int64]models.Company
	nextUserID    int64
	nextCompanyID int64
}

// NewUserStore returns an empty store
func NewUserStore() *UserStore {
	return &UserStore{
		users:     make(map[int64]models.User),
		companies: make(map[int64]models.Company),
	}
}

// Find returns the users matching p within window w
func (s *UserStore) Find(ctx context.Context, p querydsl.Predicate, w querydsl.Window) ([]models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return querydsl.Apply(s.snapshot(), p, w), nil
}

// Count returns the number of users matching p
func (s *UserStore) Count(ctx context.Context, p querydsl.Predicate) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return querydsl.Count(s.snapshot(), p), nil
}

// FindByID returns the user with id or ErrUserNotFound
func (s *UserStore) FindByID(ctx context.Context, id int64) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return models.User{}, apperrors.ErrUserNotFound
	}
	return s.withCompany(u), nil
}

// Create stores u under a new id. Usernames are unique.
func (s *UserStore) Create(ctx context.Context, u models.User) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkConstraints(u, 0); err != nil {
		return models.User{}, err
	}

	s.nextUserID++
	u.ID = s.nextUserID
	u.Company = nil
	s.users[u.ID] = u
	return s.withCompany(u), nil
}

// Update replaces the stored user with u.ID
func (s *UserStore) Update(ctx context.Context, u models.User) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[u.ID]; !ok {
		return models.User{}, apperrors.ErrUserNotFound
	}
	if err := s.checkConstraints(u, u.ID); err != nil {
		return models.User{}, err
	}

	u.Company = nil
	s.users[u.ID] = u
	return s.withCompany(u), nil
}

// Delete removes the user with id
func (s *UserStore) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return apperrors.ErrUserNotFound
	}
	delete(s.users, id)
	return nil
}

// CreateCompany stores a company under a new id
func (s *UserStore) CreateCompany(ctx context.Context, name string) (models.Company, error) {
	if err := ctx.Err(); err != nil {
		return models.Company{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.companies {
		if c.Name == name {
			return models.Company{}, fmt.Errorf("company %q already exists", name)
		}
	}

	s.nextCompanyID++
	c := models.Company{ID: s.nextCompanyID, Name: name}
	s.companies[c.ID] = c
	return c, nil
}

// Ping always succeeds
func (s *UserStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Len returns the number of stored users
func (s *UserStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// checkConstraints mirrors the SQL schema: unique username, existing company.
// self is the id of the user being updated, 0 on create.
func (s *UserStore) checkConstraints(u models.User, self int64) error {
	for id, other := range s.users {
		if id != self && strings.EqualFold(other.Username, u.Username) {
			return apperrors.ErrUserAlreadyExists
		}
	}
	if u.CompanyID != nil {
		if _, ok := s.companies[*u.CompanyID]; !ok {
			return apperrors.ErrCompanyNotFound
		}
	}
	return nil
}

// snapshot copies the users in id order with their companies attached; callers hold mu
func (s *UserStore) snapshot() []models.User {
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, s.withCompany(u))
	}
	slices.SortFunc(out, func(a, b models.User) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

func (s *UserStore) withCompany(u models.User) models.User {
	if u.CompanyID == nil {
		return u
	}
	if c, ok := s.companies[*u.CompanyID]; ok {
		u.Company = &c
	}
	return u
}
