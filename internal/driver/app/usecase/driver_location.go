package usecase

import (
	"context"

	"restaurant-waste/internal/driver/models"
	"restaurant-waste/internal/shared/util"
	"restaurant-waste/internal/shared/validation"
)

const maxLocationHistory = 100

// UpdateLocation stores a new current ping and retires the previous one in
// the same transaction.
func (s *service) UpdateLocation(ctx context.Context, userID string, lat, lng float64) (*models.Location, error) {
	instance := "DriverService.UpdateLocation"

	if err := validation.ValidateCoordinates(lat, lng); err != nil {
		return nil, err
	}

	d, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	loc := &models.Location{
		ID:         util.GenerateUUID(),
		DriverID:   d.ID,
		Latitude:   lat,
		Longitude:  lng,
		RecordedAt: s.now(),
		IsCurrent:  true,
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		return s.repo.UpdateCurrLocation(ctx, loc)
	})
	if err != nil {
		s.logger.Error(instance, "failed to store location", err, "driver_id", d.ID)
		return nil, err
	}

	event := models.LocationEvent{DriverID: d.ID, Latitude: lat, Longitude: lng, RecordedAt: loc.RecordedAt}
	if s.broker != nil {
		if err := s.broker.PublishLocation(ctx, event); err != nil {
			s.logger.Warn(instance, "failed to publish location update", "driver_id", d.ID, "error", err.Error())
		}
	}

	s.logger.Info(instance, "location updated", "driver_id", d.ID)
	return loc, nil
}

func (s *service) LocationHistory(ctx context.Context, userID string, limit int) ([]models.Location, error) {
	d, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > maxLocationHistory {
		limit = maxLocationHistory
	}
	return s.repo.Locations(ctx, d.ID, limit)
}
