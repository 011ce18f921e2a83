package app

import (
	"context"
	"time"

	"restaurant-waste/internal/admin/repo"
	donation "restaurant-waste/internal/donation/domain"
	rewards "restaurant-waste/internal/rewards/domain"
	"restaurant-waste/internal/shared/util"
	subscription "restaurant-waste/internal/subscription/domain"
)

// Metrics is implemented by repo.AdminRepo.
type Metrics interface {
	GetSystemMetrics(ctx context.Context) (*repo.SystemMetrics, error)
	GetPickupDistribution(ctx context.Context) (repo.Distribution, error)
	GetDriverDistribution(ctx context.Context) (repo.Distribution, error)
	GetActivePickups(ctx context.Context, page, pageSize int) ([]repo.ActivePickup, int, error)
}

// Catalog groups the admin-only writes owned by other modules.
type Catalog struct {
	Vouchers interface {
		CreateVoucher(ctx context.Context, req rewards.CreateVoucherRequest) (*rewards.Voucher, error)
		DeactivateVoucher(ctx context.Context, id string) error
	}
	Drives interface {
		CreateDrive(ctx context.Context, req donation.CreateDriveRequest) (*donation.Drive, error)
	}
	Plans interface {
		CreatePlan(ctx context.Context, req subscription.CreatePlanRequest) (*subscription.Plan, error)
	}
}

type AdminService struct {
	repo    Metrics
	catalog Catalog
	logger  *util.Logger
	now     func() time.Time
}

func NewAdminService(repo Metrics, catalog Catalog, logger *util.Logger) *AdminService {
	return &AdminService{repo: repo, catalog: catalog, logger: logger, now: time.Now}
}

type OverviewResponse struct {
	Timestamp          string              `json:"timestamp"`
	Metrics            *repo.SystemMetrics `json:"metrics"`
	PickupDistribution repo.Distribution   `json:"pickup_distribution"`
	DriverDistribution repo.Distribution   `json:"driver_distribution"`
}

type ActivePickupsResponse struct {
	Pickups    []repo.ActivePickup `json:"pickups"`
	TotalCount int                 `json:"total_count"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"page_size"`
}

func (s *AdminService) GetSystemOverview(ctx context.Context) (*OverviewResponse, error) {
	metrics, err := s.repo.GetSystemMetrics(ctx)
	if err != nil {
		return nil, err
	}

	pickups, err := s.repo.GetPickupDistribution(ctx)
	if err != nil {
		return nil, err
	}

	drivers, err := s.repo.GetDriverDistribution(ctx)
	if err != nil {
		return nil, err
	}

	return &OverviewResponse{
		Timestamp:          s.now().UTC().Format(time.RFC3339),
		Metrics:            metrics,
		PickupDistribution: pickups,
		DriverDistribution: drivers,
	}, nil
}

func (s *AdminService) GetActivePickups(ctx context.Context, page, pageSize int) (*ActivePickupsResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	pickups, totalCount, err := s.repo.GetActivePickups(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}

	for i := range pickups {
		p := &pickups[i]
		if p.CurrentDriverLocation == nil {
			continue
		}
		d := util.Haversine(p.CurrentDriverLocation.Latitude, p.CurrentDriverLocation.Longitude, p.Latitude, p.Longitude)
		p.DistanceRemainingKm = &d
	}

	return &ActivePickupsResponse{
		Pickups:    pickups,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
	}, nil
}

func (s *AdminService) CreateVoucher(ctx context.Context, req rewards.CreateVoucherRequest) (*rewards.Voucher, error) {
	return s.catalog.Vouchers.CreateVoucher(ctx, req)
}

func (s *AdminService) DeactivateVoucher(ctx context.Context, id string) error {
	return s.catalog.Vouchers.DeactivateVoucher(ctx, id)
}

func (s *AdminService) CreateDrive(ctx context.Context, req donation.CreateDriveRequest) (*donation.Drive, error) {
	return s.catalog.Drives.CreateDrive(ctx, req)
}

func (s *AdminService) CreatePlan(ctx context.Context, req subscription.CreatePlanRequest) (*subscription.Plan, error) {
	return s.catalog.Plans.CreatePlan(ctx, req)
}
