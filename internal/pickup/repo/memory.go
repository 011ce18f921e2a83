package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	"restaurant-waste/internal/pickup/domain"
	"restaurant-waste/internal/shared/apperrors"
)

// MemoryRepo is an in-process Repository used by tests. Drivers are
// registered with AddDriver.
type MemoryRepo struct {
	mu        sync.Mutex
	pickups   map[string]domain.Pickup
	drivers   map[string]domain.DriverRef
	completed map[string]int
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		pickups:   map[string]domain.Pickup{},
		drivers:   map[string]domain.DriverRef{},
		completed: map[string]int{},
	}
}

func (m *MemoryRepo) AddDriver(d domain.DriverRef) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[d.ID] = d
}

// CompletedPickups returns the driver's completed counter.
func (m *MemoryRepo) CompletedPickups(driverID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.completed[driverID]
}

func (m *MemoryRepo) Create(_ context.Context, p *domain.Pickup) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pickups[p.ID] = *p
	return nil
}

func (m *MemoryRepo) Get(_ context.Context, id string) (*domain.Pickup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pickups[id]
	if !ok {
		return nil, apperrors.NotFound("pickup")
	}
	return &p, nil
}

func (m *MemoryRepo) filter(keep func(domain.Pickup) bool) []domain.Pickup {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := []domain.Pickup{}
	for _, p := range m.pickups {
		if keep(p) {
			list = append(list, p)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list
}

func (m *MemoryRepo) ListByRequester(_ context.Context, userID string) ([]domain.Pickup, error) {
	return m.filter(func(p domain.Pickup) bool { return p.RequesterID == userID }), nil
}

func (m *MemoryRepo) ListByDriver(_ context.Context, driverID string) ([]domain.Pickup, error) {
	return m.filter(func(p domain.Pickup) bool { return p.AssignedTo(driverID) }), nil
}

func (m *MemoryRepo) ListAvailable(context.Context) ([]domain.Pickup, error) {
	return m.filter(func(p domain.Pickup) bool { return p.Status == domain.StatusPending && p.DriverID == nil }), nil
}

func (m *MemoryRepo) UpdatePending(_ context.Context, p *domain.Pickup) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.pickups[p.ID]
	if !ok || current.Status != domain.StatusPending {
		return domain.ErrNotTransitioned
	}
	m.pickups[p.ID] = *p
	return nil
}

func (m *MemoryRepo) Assign(_ context.Context, id, driverID string, at time.Time) (*domain.Pickup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pickups[id]
	if !ok || p.DriverID != nil || p.Status != domain.StatusPending {
		return nil, domain.ErrNotTransitioned
	}
	p.DriverID = &driverID
	p.Status = domain.StatusAccepted
	p.UpdatedAt = at
	m.pickups[id] = p
	return &p, nil
}

func (m *MemoryRepo) Transition(_ context.Context, id string, from []domain.Status, to domain.Status, at time.Time) (*domain.Pickup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pickups[id]
	if !ok {
		return nil, domain.ErrNotTransitioned
	}
	allowed := false
	for _, s := range from {
		if p.Status == s {
			allowed = true
		}
	}
	if !allowed {
		return nil, domain.ErrNotTransitioned
	}

	p.Status = to
	p.UpdatedAt = at
	switch to {
	case domain.StatusInProgress:
		p.StartedAt = &at
	case domain.StatusCompleted:
		p.CompletedAt = &at
	case domain.StatusCancelled:
		p.CancelledAt = &at
	}
	m.pickups[id] = p
	return &p, nil
}

func (m *MemoryRepo) Driver(_ context.Context, driverID string) (*domain.DriverRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drivers[driverID]
	if !ok {
		return nil, apperrors.NotFound("driver")
	}
	return &d, nil
}

func (m *MemoryRepo) SetDriverStatus(_ context.Context, driverID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.drivers[driverID]
	d.Status = status
	m.drivers[driverID] = d
	return nil
}

func (m *MemoryRepo) CompleteDriverPickup(_ context.Context, driverID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.drivers[driverID]
	d.Status = "available"
	m.drivers[driverID] = d
	m.completed[driverID]++
	return nil
}
