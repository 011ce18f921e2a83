package usecase

import (
	"context"
	"fmt"

	"restaurant-waste/internal/driver/models"
	"restaurant-waste/internal/shared/apperrors"
)

func (s *service) UpdateStatus(ctx context.Context, userID string, status models.DriverStatus) (*models.Driver, error) {
	instance := "DriverService.UpdateStatus"

	if !status.Valid() {
		return nil, apperrors.Validation("status must be one of available, on_pickup, inactive")
	}

	d, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, d.ID, status); err != nil {
		s.logger.Error(instance, "failed to update driver status", err, "driver_id", d.ID)
		return nil, err
	}

	s.logger.OK(instance, fmt.Sprintf("driver status %s -> %s", d.Status, status), "driver_id", d.ID)
	d.Status = status
	return d, nil
}
