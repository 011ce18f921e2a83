package repo

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"restaurant-waste/internal/auth/domain"
	"restaurant-waste/internal/shared/apperrors"
	shared "restaurant-waste/internal/shared/models"
)

// MemoryRepo is an in-process Repository used by tests.
type MemoryRepo struct {
	mu        sync.Mutex
	users     map[string]domain.User
	owners    map[string]domain.OwnerProfile
	employees map[string]domain.Employee
	// DriverProfiles maps a user id to a driver id for ProfileOf.
	DriverProfiles map[string]string
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		users:          map[string]domain.User{},
		owners:         map[string]domain.OwnerProfile{},
		employees:      map[string]domain.Employee{},
		DriverProfiles: map[string]string{},
	}
}

func (m *MemoryRepo) CreateUser(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if strings.EqualFold(existing.Username, u.Username) {
			return fmt.Errorf("%w: username is already taken", apperrors.ErrConflict)
		}
		if u.Email != "" && strings.EqualFold(existing.Email, u.Email) {
			return fmt.Errorf("%w: email is already registered", apperrors.ErrConflict)
		}
	}
	m.users[u.ID] = *u
	return nil
}

func (m *MemoryRepo) find(match func(domain.User) bool) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			cp := u
			return &cp, nil
		}
	}
	return nil, apperrors.NotFound("user")
}

func (m *MemoryRepo) UserByID(_ context.Context, id string) (*domain.User, error) {
	return m.find(func(u domain.User) bool { return u.ID == id })
}

func (m *MemoryRepo) UserByUsername(_ context.Context, username string) (*domain.User, error) {
	return m.find(func(u domain.User) bool { return strings.EqualFold(u.Username, username) })
}

func (m *MemoryRepo) UserByEmail(_ context.Context, email string) (*domain.User, error) {
	return m.find(func(u domain.User) bool { return u.Email != "" && strings.EqualFold(u.Email, email) })
}

func (m *MemoryRepo) AttachRole(_ context.Context, userID string, role shared.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return apperrors.NotFound("user")
	}
	if u.Role != shared.RoleUser {
		return apperrors.Conflict("user role", string(u.Role))
	}
	u.Role = role
	m.users[userID] = u
	return nil
}

// SetAdmin flags a user as administrator.
func (m *MemoryRepo) SetAdmin(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.users[userID]
	u.IsAdmin = true
	m.users[userID] = u
}

func (m *MemoryRepo) ProfileOf(_ context.Context, u *domain.User) (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch u.Role {
	case shared.RoleOwner:
		for _, o := range m.owners {
			if o.UserID == u.ID {
				return o.ID, "", nil
			}
		}
	case shared.RoleDriver:
		if id, ok := m.DriverProfiles[u.ID]; ok {
			return id, "", nil
		}
	case shared.RoleEmployee:
		for _, e := range m.employees {
			if e.UserID == u.ID {
				return e.ID, m.owners[e.OwnerID].UserID, nil
			}
		}
	default:
		return "", "", nil
	}
	return "", "", apperrors.NotFound(string(u.Role) + " profile")
}

func (m *MemoryRepo) InsertOwner(_ context.Context, o *domain.OwnerProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.owners[o.ID] = *o
	return nil
}

func (m *MemoryRepo) OwnerByUserID(_ context.Context, userID string) (*domain.OwnerProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.owners {
		if o.UserID == userID {
			cp := o
			return &cp, nil
		}
	}
	return nil, apperrors.NotFound("owner profile")
}

func (m *MemoryRepo) OwnerByID(_ context.Context, id string) (*domain.OwnerProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.owners[id]
	if !ok {
		return nil, apperrors.NotFound("owner profile")
	}
	return &o, nil
}

func (m *MemoryRepo) UpdateOwner(_ context.Context, o *domain.OwnerProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.owners[o.ID]; !ok {
		return apperrors.NotFound("owner profile")
	}
	m.owners[o.ID] = *o
	return nil
}

func (m *MemoryRepo) InsertEmployee(_ context.Context, e *domain.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.owners[e.OwnerID]; !ok {
		return apperrors.NotFound("owner")
	}
	m.employees[e.ID] = *e
	return nil
}

func (m *MemoryRepo) EmployeeByUserID(_ context.Context, userID string) (*domain.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.employees {
		if e.UserID == userID {
			cp := e
			return &cp, nil
		}
	}
	return nil, apperrors.NotFound("employee")
}

func (m *MemoryRepo) EmployeesByOwner(_ context.Context, ownerID string) ([]domain.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := []domain.Employee{}
	for _, e := range m.employees {
		if e.OwnerID == ownerID {
			list = append(list, e)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

func (m *MemoryRepo) UpdateEmployee(_ context.Context, e *domain.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.employees[e.ID]; !ok {
		return apperrors.NotFound("employee")
	}
	m.employees[e.ID] = *e
	return nil
}

// MemorySessions is an in-process SessionStore. Entries do not expire.
type MemorySessions struct {
	mu       sync.Mutex
	sessions map[string]string
}

func NewMemorySessions() *MemorySessions {
	return &MemorySessions{sessions: map[string]string{}}
}

func (s *MemorySessions) Save(_ context.Context, tokenID, userID string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[tokenID] = userID
	return nil
}

func (s *MemorySessions) Consume(_ context.Context, tokenID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.sessions[tokenID]
	if !ok {
		return "", fmt.Errorf("%w: session expired or revoked", apperrors.ErrUnauthorized)
	}
	delete(s.sessions, tokenID)
	return userID, nil
}

func (s *MemorySessions) Delete(_ context.Context, tokenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, tokenID)
	return nil
}
