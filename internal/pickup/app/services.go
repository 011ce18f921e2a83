package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	authdomain "restaurant-waste/internal/auth/domain"
	"restaurant-waste/internal/pickup/domain"
	rewards "restaurant-waste/internal/rewards/domain"
	"restaurant-waste/internal/shared/apperrors"
	"restaurant-waste/internal/shared/db"
	"restaurant-waste/internal/shared/models"
	"restaurant-waste/internal/shared/mq"
	"restaurant-waste/internal/shared/util"
	"restaurant-waste/internal/shared/validation"
)

// Ledger credits reward points. Implemented by the rewards Ledger.
type Ledger interface {
	AddPoints(ctx context.Context, userID string, amount int, description string, src rewards.Source) (int, error)
}

// Restaurants resolves the owner profile of a requester.
type Restaurants interface {
	OwnerProfile(ctx context.Context, userID string) (*authdomain.OwnerProfile, error)
}

// Drives checks that a donation drive can still take pickups.
type Drives interface {
	CheckOngoing(ctx context.Context, driveID string) error
}

type PickupService struct {
	repo        domain.Repository
	pub         domain.Publisher
	tx          db.Transactor
	ledger      Ledger
	restaurants Restaurants
	drives      Drives
	cfg         models.PickupConfig
	logger      *util.Logger
	now         func() time.Time
}

type Deps struct {
	Repo        domain.Repository
	Publisher   domain.Publisher
	Tx          db.Transactor
	Ledger      Ledger
	Restaurants Restaurants
	Drives      Drives
}

func NewPickupService(deps Deps, cfg models.PickupConfig, logger *util.Logger) *PickupService {
	return &PickupService{
		repo:        deps.Repo,
		pub:         deps.Publisher,
		tx:          deps.Tx,
		ledger:      deps.Ledger,
		restaurants: deps.Restaurants,
		drives:      deps.Drives,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
	}
}

// requesterSide reports whether the caller acts for the pickup's requester.
func requesterSide(id models.Identity, p *domain.Pickup) bool {
	return id.Role != models.RoleDriver && p.RequesterID == id.ActingUserID()
}

func (s *PickupService) CreatePickup(ctx context.Context, id models.Identity, req domain.CreateRequest) (*domain.Pickup, error) {
	instance := "PickupService.CreatePickup"
	start := time.Now()

	if id.Role == models.RoleDriver {
		return nil, apperrors.Forbidden("drivers cannot request pickups")
	}

	req.WasteType = strings.TrimSpace(req.WasteType)
	if err := validation.ValidateStringNotEmpty(req.WasteType, "waste_type"); err != nil {
		return nil, err
	}
	if err := validation.ValidatePositiveFloat(req.WeightKg, "weight_kg"); err != nil {
		return nil, err
	}

	lat, lng := s.cfg.DefaultLatitude, s.cfg.DefaultLongitude
	if req.Latitude != nil || req.Longitude != nil {
		if req.Latitude == nil || req.Longitude == nil {
			return nil, apperrors.Validation("latitude and longitude must be given together")
		}
		if err := validation.ValidateCoordinates(*req.Latitude, *req.Longitude); err != nil {
			return nil, err
		}
		lat, lng = *req.Latitude, *req.Longitude
	}

	now := s.now()
	scheduled, err := s.schedule(req.ScheduledAt, now)
	if err != nil {
		s.logger.Warn(instance, "rejected schedule", "scheduled_at", req.ScheduledAt)
		return nil, err
	}

	if req.DonationDriveID != nil && *req.DonationDriveID != "" {
		if err := s.drives.CheckOngoing(ctx, *req.DonationDriveID); err != nil {
			return nil, err
		}
	} else {
		req.DonationDriveID = nil
	}

	requester := id.ActingUserID()
	restaurant := strings.TrimSpace(req.RestaurantName)
	address := strings.TrimSpace(req.PickupAddress)
	if restaurant == "" || address == "" {
		if owner, err := s.restaurants.OwnerProfile(ctx, requester); err == nil {
			if restaurant == "" {
				restaurant = owner.RestaurantName
			}
			if address == "" {
				address = owner.Address
			}
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
	}
	if address == "" {
		address = s.cfg.DefaultAddress
	}

	p := &domain.Pickup{
		ID:              util.GenerateUUID(),
		RequesterID:     requester,
		CreatedBy:       id.UserID,
		RestaurantName:  restaurant,
		WasteType:       req.WasteType,
		WeightKg:        req.WeightKg,
		PickupAddress:   address,
		Latitude:        lat,
		Longitude:       lng,
		ScheduledAt:     scheduled,
		Status:          domain.StatusPending,
		DonationDriveID: req.DonationDriveID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		s.logger.Error(instance, "failed to create pickup", err)
		return nil, err
	}

	s.publish(ctx, p)
	s.logger.OK(instance, "pickup created", "pickup_id", p.ID, "requester_id", requester,
		"weight_kg", p.WeightKg, "duration_ms", time.Since(start).Milliseconds())
	return p, nil
}

func (s *PickupService) schedule(at *time.Time, now time.Time) (time.Time, error) {
	if at == nil || at.IsZero() {
		return now, nil
	}
	if !at.Before(now) {
		return *at, nil
	}
	if s.cfg.PastSchedule == models.PastScheduleClamp {
		return now, nil
	}
	return time.Time{}, apperrors.Validation("scheduled_at cannot be in the past")
}

func (s *PickupService) GetPickup(ctx context.Context, id models.Identity, pickupID string) (*domain.Pickup, error) {
	p, err := s.load(ctx, pickupID)
	if err != nil {
		return nil, err
	}
	if !visible(id, p) {
		return nil, apperrors.NotFound("pickup")
	}
	return p, nil
}

// load reads a pickup by an id taken from the request. Ids that are not
// UUIDs cannot exist.
func (s *PickupService) load(ctx context.Context, pickupID string) (*domain.Pickup, error) {
	if !validation.IsUUID(pickupID) {
		return nil, apperrors.NotFound("pickup")
	}
	return s.repo.Get(ctx, pickupID)
}

func visible(id models.Identity, p *domain.Pickup) bool {
	if id.Role == models.RoleDriver {
		return p.AssignedTo(id.ProfileID) || (p.Status == domain.StatusPending && p.DriverID == nil)
	}
	return p.RequesterID == id.ActingUserID()
}

func (s *PickupService) ListPickups(ctx context.Context, id models.Identity) ([]domain.Pickup, error) {
	if id.Role == models.RoleDriver {
		return s.repo.ListByDriver(ctx, id.ProfileID)
	}
	return s.repo.ListByRequester(ctx, id.ActingUserID())
}

func (s *PickupService) UpdatePickup(ctx context.Context, id models.Identity, pickupID string, req domain.UpdateRequest) (*domain.Pickup, error) {
	instance := "PickupService.UpdatePickup"

	p, err := s.GetPickup(ctx, id, pickupID)
	if err != nil {
		return nil, err
	}
	if !requesterSide(id, p) {
		return nil, apperrors.Forbidden("only the requester can edit a pickup")
	}
	if p.Status != domain.StatusPending {
		return nil, apperrors.InvalidState("pickup", string(p.Status))
	}

	if req.WasteType != nil {
		p.WasteType = strings.TrimSpace(*req.WasteType)
		if err := validation.ValidateStringNotEmpty(p.WasteType, "waste_type"); err != nil {
			return nil, err
		}
	}
	if req.WeightKg != nil {
		if err := validation.ValidatePositiveFloat(*req.WeightKg, "weight_kg"); err != nil {
			return nil, err
		}
		p.WeightKg = *req.WeightKg
	}
	if req.PickupAddress != nil {
		p.PickupAddress = strings.TrimSpace(*req.PickupAddress)
	}
	if req.Latitude != nil || req.Longitude != nil {
		if req.Latitude == nil || req.Longitude == nil {
			return nil, apperrors.Validation("latitude and longitude must be given together")
		}
		if err := validation.ValidateCoordinates(*req.Latitude, *req.Longitude); err != nil {
			return nil, err
		}
		p.Latitude, p.Longitude = *req.Latitude, *req.Longitude
	}
	now := s.now()
	if req.ScheduledAt != nil {
		if p.ScheduledAt, err = s.schedule(req.ScheduledAt, now); err != nil {
			return nil, err
		}
	}
	p.UpdatedAt = now

	if err := s.repo.UpdatePending(ctx, p); err != nil {
		return nil, s.stateError(ctx, pickupID, err)
	}
	s.logger.Info(instance, "pickup updated", "pickup_id", p.ID)
	return p, nil
}

// ListAvailable returns unassigned pending pickups, nearest first when the
// driver has a current location.
func (s *PickupService) ListAvailable(ctx context.Context, id models.Identity) ([]domain.Pickup, error) {
	if id.Role != models.RoleDriver {
		return nil, apperrors.Forbidden("only drivers can browse available pickups")
	}

	driver, err := s.repo.Driver(ctx, id.ProfileID)
	if err != nil {
		return nil, err
	}

	list, err := s.repo.ListAvailable(ctx)
	if err != nil {
		return nil, err
	}
	if driver.Latitude == nil || driver.Longitude == nil {
		return list, nil
	}

	for i := range list {
		d := util.Haversine(*driver.Latitude, *driver.Longitude, list[i].Latitude, list[i].Longitude)
		list[i].DistanceKm = &d
	}
	sort.SliceStable(list, func(i, j int) bool { return *list[i].DistanceKm < *list[j].DistanceKm })
	return list, nil
}

// stateError turns a failed conditional update into an error carrying the
// pickup's current status.
func (s *PickupService) stateError(ctx context.Context, pickupID string, err error) error {
	if !errors.Is(err, domain.ErrNotTransitioned) {
		return err
	}
	current, getErr := s.repo.Get(ctx, pickupID)
	if getErr != nil {
		return getErr
	}
	return apperrors.InvalidState("pickup", string(current.Status))
}

func (s *PickupService) publish(ctx context.Context, p *domain.Pickup) {
	if s.pub == nil {
		return
	}
	key := mq.PickupStatusRoutingKey(string(p.Status))
	if err := s.pub.PublishJSON(ctx, mq.PickupExchange, key, domain.NewStatusEvent(p, s.now())); err != nil {
		s.logger.Warn("PickupService.publish", fmt.Sprintf("failed to publish %s", key), "pickup_id", p.ID, "error", err.Error())
	}
}

// ActiveForDriver lists the driver's accepted and in-progress pickups.
func (s *PickupService) ActiveForDriver(ctx context.Context, driverID string) ([]domain.Pickup, error) {
	list, err := s.repo.ListByDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}
	active := list[:0]
	for _, p := range list {
		if p.Status == domain.StatusAccepted || p.Status == domain.StatusInProgress {
			active = append(active, p)
		}
	}
	return active, nil
}
