package repo

import (
	"context"
	"sort"
	"sync"

	"restaurant-waste/internal/shared/apperrors"
	"restaurant-waste/internal/subscription/domain"
)

// MemoryRepo is an in-process Repository for tests.
type MemoryRepo struct {
	mu            sync.Mutex
	plans         map[string]domain.Plan
	subscriptions []domain.Subscription
	payments      []domain.Payment
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{plans: map[string]domain.Plan{}}
}

func (m *MemoryRepo) ActivePlans(context.Context) ([]domain.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := []domain.Plan{}
	for _, p := range m.plans {
		if p.IsActive {
			list = append(list, p)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Price < list[j].Price })
	return list, nil
}

func (m *MemoryRepo) Plan(_ context.Context, id string) (*domain.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.plans[id]
	if !ok {
		return nil, apperrors.NotFound("plan")
	}
	return &p, nil
}

func (m *MemoryRepo) CreatePlan(_ context.Context, p *domain.Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.plans {
		if existing.Name == p.Name {
			return apperrors.Duplicate("plan", string(p.Name))
		}
	}
	m.plans[p.ID] = *p
	return nil
}

func (m *MemoryRepo) InsertSubscription(_ context.Context, s *domain.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscriptions = append(m.subscriptions, *s)
	return nil
}

func (m *MemoryRepo) latest(userID string, keep func(domain.Subscription) bool) (*domain.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var found *domain.Subscription
	for i := range m.subscriptions {
		s := m.subscriptions[i]
		if s.UserID != userID || !keep(s) {
			continue
		}
		if found == nil || !s.StartDate.Before(found.StartDate) {
			found = &s
		}
	}
	if found == nil {
		return nil, apperrors.NotFound("subscription")
	}
	found.PlanName = m.plans[found.PlanID].Name.Display()
	return found, nil
}

func (m *MemoryRepo) LatestSubscription(_ context.Context, userID string) (*domain.Subscription, error) {
	return m.latest(userID, func(domain.Subscription) bool { return true })
}

func (m *MemoryRepo) LatestActive(_ context.Context, userID string) (*domain.Subscription, error) {
	return m.latest(userID, func(s domain.Subscription) bool { return s.Status == domain.StatusActive })
}

func (m *MemoryRepo) SetStatus(_ context.Context, id string, status domain.Status, autoRenew bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.subscriptions {
		if m.subscriptions[i].ID == id {
			m.subscriptions[i].Status = status
			m.subscriptions[i].AutoRenew = autoRenew
			return nil
		}
	}
	return apperrors.NotFound("subscription")
}

func (m *MemoryRepo) InsertPayment(_ context.Context, p *domain.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments = append(m.payments, *p)
	return nil
}

func (m *MemoryRepo) Payments(_ context.Context, userID string) ([]domain.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := []domain.Payment{}
	for i := len(m.payments) - 1; i >= 0; i-- {
		if m.payments[i].UserID == userID {
			list = append(list, m.payments[i])
		}
	}
	return list, nil
}
