package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	"restaurant-waste/internal/rewards/domain"
	"restaurant-waste/internal/shared/apperrors"
)

// MemoryRepo is an in-process Repository used by unit tests of the ledger
// and of the services that credit it.
type MemoryRepo struct {
	mu           sync.Mutex
	balances     map[string]*domain.Balance
	transactions []domain.Transaction
	vouchers     map[string]*domain.Voucher
	redemptions  []domain.Redemption

	// FailAddPoints makes every AddPoints call fail with this error.
	FailAddPoints error
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		balances: make(map[string]*domain.Balance),
		vouchers: make(map[string]*domain.Voucher),
	}
}

func (m *MemoryRepo) AddPoints(_ context.Context, userID string, delta int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailAddPoints != nil {
		return 0, m.FailAddPoints
	}

	b, ok := m.balances[userID]
	if !ok {
		b = &domain.Balance{UserID: userID}
		m.balances[userID] = b
	}
	b.Points = max(b.Points+delta, 0)
	b.UpdatedAt = time.Now()
	return b.Points, nil
}

func (m *MemoryRepo) InsertTransaction(_ context.Context, t *domain.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions = append(m.transactions, *t)
	return nil
}

func (m *MemoryRepo) Balance(_ context.Context, userID string) (*domain.Balance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.balances[userID]; ok {
		cp := *b
		return &cp, nil
	}
	return &domain.Balance{UserID: userID}, nil
}

func (m *MemoryRepo) LockBalance(ctx context.Context, userID string) (int, error) {
	b, err := m.Balance(ctx, userID)
	if err != nil {
		return 0, err
	}
	return b.Points, nil
}

func (m *MemoryRepo) Transactions(_ context.Context, userID string) ([]domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := []domain.Transaction{}
	for i := len(m.transactions) - 1; i >= 0; i-- {
		if m.transactions[i].UserID == userID {
			list = append(list, m.transactions[i])
		}
	}
	return list, nil
}

func (m *MemoryRepo) CreateVoucher(_ context.Context, v *domain.Voucher) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.vouchers {
		if existing.Code == v.Code {
			return apperrors.Duplicate("voucher code", v.Code)
		}
	}
	cp := *v
	m.vouchers[v.ID] = &cp
	return nil
}

func (m *MemoryRepo) ListActiveVouchers(_ context.Context, now time.Time) ([]domain.Voucher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := []domain.Voucher{}
	for _, v := range m.vouchers {
		if v.Valid(now) {
			list = append(list, *v)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].PointsRequired != list[j].PointsRequired {
			return list[i].PointsRequired < list[j].PointsRequired
		}
		return list[i].Code < list[j].Code
	})
	return list, nil
}

func (m *MemoryRepo) LockVoucher(_ context.Context, id string) (*domain.Voucher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vouchers[id]
	if !ok {
		return nil, apperrors.NotFound("voucher")
	}
	cp := *v
	return &cp, nil
}

func (m *MemoryRepo) LockVoucherByCode(_ context.Context, code string) (*domain.Voucher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.vouchers {
		if v.Code == code {
			cp := *v
			return &cp, nil
		}
	}
	return nil, apperrors.NotFound("voucher")
}

func (m *MemoryRepo) DeactivateVoucher(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vouchers[id]
	if !ok {
		return apperrors.NotFound("voucher")
	}
	v.IsActive = false
	return nil
}

func (m *MemoryRepo) InsertRedemption(_ context.Context, r *domain.Redemption) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.redemptions = append(m.redemptions, *r)
	return nil
}

func (m *MemoryRepo) Redemptions(_ context.Context, userID string) ([]domain.Redemption, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := []domain.Redemption{}
	for i := len(m.redemptions) - 1; i >= 0; i-- {
		if m.redemptions[i].UserID == userID {
			list = append(list, m.redemptions[i])
		}
	}
	return list, nil
}
