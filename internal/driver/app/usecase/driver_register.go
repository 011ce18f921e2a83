package usecase

import (
	"context"
	"strings"
	"time"

	"restaurant-waste/internal/driver/models"
	"restaurant-waste/internal/shared/apperrors"
	shared "restaurant-waste/internal/shared/models"
	"restaurant-waste/internal/shared/util"
	"restaurant-waste/internal/shared/validation"
)

// RegisterDriver creates a login and a driver profile in one transaction.
func (s *service) RegisterDriver(ctx context.Context, req models.RegisterRequest) (*models.Driver, error) {
	instance := "DriverService.RegisterDriver"
	start := time.Now()

	profile, err := normalizeProfile(req.Profile)
	if err != nil {
		s.logger.Warn(instance, "invalid driver data", "error", err.Error())
		return nil, err
	}

	var driver *models.Driver
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		userID, err := s.accounts.CreateAccount(ctx, req.NewAccount)
		if err != nil {
			return err
		}
		driver, err = s.attach(ctx, userID, profile)
		return err
	})
	if err != nil {
		s.logger.Warn(instance, "driver registration failed", "username", req.Username, "error", err.Error())
		return nil, err
	}

	s.logger.OK(instance, "driver registered", "driver_id", driver.ID, "user_id", driver.UserID,
		"duration_ms", time.Since(start).Milliseconds())
	return driver, nil
}

// CreateProfile turns an existing plain account into a driver.
func (s *service) CreateProfile(ctx context.Context, userID string, p models.Profile) (*models.Driver, error) {
	instance := "DriverService.CreateProfile"

	profile, err := normalizeProfile(p)
	if err != nil {
		return nil, err
	}

	var driver *models.Driver
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		driver, err = s.attach(ctx, userID, profile)
		return err
	})
	if err != nil {
		s.logger.Warn(instance, "driver profile not created", "user_id", userID, "error", err.Error())
		return nil, err
	}

	s.logger.OK(instance, "driver profile created", "driver_id", driver.ID, "user_id", userID)
	return driver, nil
}

func (s *service) attach(ctx context.Context, userID string, p models.Profile) (*models.Driver, error) {
	if p.LicenseNumber != "" {
		dup, err := s.repo.CheckLicenseNumberExists(ctx, p.LicenseNumber, "")
		if err != nil {
			return nil, err
		}
		if dup {
			return nil, apperrors.Validation("license_number is already registered")
		}
	}

	if err := s.accounts.AttachRole(ctx, userID, shared.RoleDriver); err != nil {
		return nil, err
	}

	now := s.now()
	d := &models.Driver{
		ID:            util.GenerateUUID(),
		UserID:        userID,
		FullName:      p.FullName,
		PhoneNumber:   p.PhoneNumber,
		LicenseNumber: p.LicenseNumber,
		VehicleType:   p.VehicleType,
		PlateNumber:   p.PlateNumber,
		IsActive:      true,
		DateHired:     time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		Status:        models.DriverAvailable,
		Rating:        5,
	}
	if err := s.repo.InsertDriver(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func normalizeProfile(p models.Profile) (models.Profile, error) {
	p.FullName = strings.TrimSpace(p.FullName)
	p.PhoneNumber = strings.TrimSpace(p.PhoneNumber)
	p.LicenseNumber = strings.ToUpper(strings.TrimSpace(p.LicenseNumber))
	p.VehicleType = strings.ToLower(strings.TrimSpace(p.VehicleType))
	p.PlateNumber = strings.ToUpper(strings.TrimSpace(p.PlateNumber))

	if err := validation.ValidateStringNotEmpty(p.FullName, "full_name"); err != nil {
		return p, err
	}
	if p.VehicleType == "" {
		p.VehicleType = models.DefaultVehicleType
	}
	return p, nil
}

func (s *service) ListDrivers(ctx context.Context) ([]models.Driver, error) {
	return s.repo.ListActive(ctx)
}

func (s *service) Me(ctx context.Context, userID string) (*models.Driver, error) {
	return s.repo.GetByUserID(ctx, userID)
}

func (s *service) UpdateMe(ctx context.Context, userID string, req models.UpdateRequest) (*models.Driver, error) {
	instance := "DriverService.UpdateMe"

	d, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		d.FullName = strings.TrimSpace(*req.FullName)
		if err := validation.ValidateStringNotEmpty(d.FullName, "full_name"); err != nil {
			return nil, err
		}
	}
	if req.PhoneNumber != nil {
		d.PhoneNumber = strings.TrimSpace(*req.PhoneNumber)
	}
	if req.VehicleType != nil {
		d.VehicleType = strings.ToLower(strings.TrimSpace(*req.VehicleType))
		if d.VehicleType == "" {
			d.VehicleType = models.DefaultVehicleType
		}
	}
	if req.PlateNumber != nil {
		d.PlateNumber = strings.ToUpper(strings.TrimSpace(*req.PlateNumber))
	}

	if err := s.repo.UpdateProfile(ctx, d); err != nil {
		s.logger.Error(instance, "failed to update driver", err, "driver_id", d.ID)
		return nil, err
	}
	s.logger.OK(instance, "driver profile updated", "driver_id", d.ID)
	return d, nil
}
