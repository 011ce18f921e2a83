package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	"restaurant-waste/internal/donation/domain"
	"restaurant-waste/internal/shared/apperrors"
)

// MemoryRepo is an in-process Repository for tests.
type MemoryRepo struct {
	mu             sync.Mutex
	drives         map[string]domain.Drive
	participations map[string]domain.Participation
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		drives:         map[string]domain.Drive{},
		participations: map[string]domain.Participation{},
	}
}

func (m *MemoryRepo) ListDrives(_ context.Context, today time.Time) ([]domain.Drive, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	today = domain.Day(today)
	list := []domain.Drive{}
	for _, d := range m.drives {
		if d.IsActive && !domain.Day(d.EndDate).Before(today) {
			list = append(list, d)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].StartDate.After(list[j].StartDate) })
	return list, nil
}

func (m *MemoryRepo) Drive(_ context.Context, id string) (*domain.Drive, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drives[id]
	if !ok {
		return nil, apperrors.NotFound("donation drive")
	}
	return &d, nil
}

func (m *MemoryRepo) CreateDrive(_ context.Context, d *domain.Drive) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drives[d.ID] = *d
	return nil
}

func (m *MemoryRepo) InsertParticipation(_ context.Context, p *domain.Participation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.drives[p.DriveID]; !ok {
		return apperrors.Validation("donation drive does not exist")
	}
	m.participations[p.ID] = *p
	return nil
}

// withDrive fills the drive fields. Callers hold mu.
func (m *MemoryRepo) withDrive(p domain.Participation) domain.Participation {
	d := m.drives[p.DriveID]
	p.DriveTitle, p.DriveDescription, p.DriveTargetItem = d.Title, d.Description, d.TargetItem
	return p
}

func (m *MemoryRepo) Participation(_ context.Context, id string) (*domain.Participation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.participations[id]
	if !ok {
		return nil, apperrors.NotFound("participation")
	}
	p = m.withDrive(p)
	return &p, nil
}

func (m *MemoryRepo) ParticipationsByUser(_ context.Context, userID string) ([]domain.Participation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := []domain.Participation{}
	for _, p := range m.participations {
		if p.UserID == userID {
			list = append(list, m.withDrive(p))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

func (m *MemoryRepo) CompleteParticipation(_ context.Context, id string, at time.Time) (*domain.Participation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.participations[id]
	if !ok || p.Status == domain.ParticipationCompleted {
		return nil, domain.ErrAlreadyCompleted
	}
	p.Status = domain.ParticipationCompleted
	p.CompletedAt = &at
	m.participations[id] = p
	p = m.withDrive(p)
	return &p, nil
}
