package app

import (
	"context"
	"errors"
	"time"

	"restaurant-waste/internal/pickup/domain"
	rewards "restaurant-waste/internal/rewards/domain"
	"restaurant-waste/internal/shared/apperrors"
	"restaurant-waste/internal/shared/models"
)

// Driver statuses written by the pickup flow.
const (
	driverAvailable = "available"
	driverOnPickup  = "on_pickup"
	driverInactive  = "inactive"
)

// AcceptPickup assigns the calling driver. Assignment is a single
// conditional update, so of two racing drivers exactly one wins.
func (s *PickupService) AcceptPickup(ctx context.Context, id models.Identity, pickupID string) (*domain.Pickup, error) {
	instance := "PickupService.AcceptPickup"
	start := time.Now()

	if id.Role != models.RoleDriver {
		return nil, apperrors.Forbidden("only drivers can accept pickups")
	}
	driver, err := s.repo.Driver(ctx, id.ProfileID)
	if err != nil {
		return nil, err
	}
	if !driver.IsActive || driver.Status == driverInactive {
		return nil, apperrors.Forbidden("driver is inactive")
	}

	p, err := s.load(ctx, pickupID)
	if err != nil {
		return nil, err
	}
	if p.DriverID != nil {
		return nil, apperrors.Conflict("pickup", string(p.Status))
	}
	if p.Status != domain.StatusPending {
		return nil, apperrors.InvalidState("pickup", string(p.Status))
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		assigned, err := s.repo.Assign(ctx, pickupID, driver.ID, s.now())
		if err != nil {
			return err
		}
		p = assigned
		return s.repo.SetDriverStatus(ctx, driver.ID, driverOnPickup)
	})
	if errors.Is(err, domain.ErrNotTransitioned) {
		current, getErr := s.repo.Get(ctx, pickupID)
		if getErr != nil {
			return nil, getErr
		}
		s.logger.Warn(instance, "lost accept race", "pickup_id", pickupID, "driver_id", driver.ID)
		return nil, apperrors.Conflict("pickup", string(current.Status))
	}
	if err != nil {
		s.logger.Error(instance, "failed to accept pickup", err, "pickup_id", pickupID)
		return nil, err
	}

	s.publish(ctx, p)
	s.logger.OK(instance, "pickup accepted", "pickup_id", p.ID, "driver_id", driver.ID,
		"duration_ms", time.Since(start).Milliseconds())
	return p, nil
}

func (s *PickupService) StartPickup(ctx context.Context, id models.Identity, pickupID string) (*domain.Pickup, error) {
	instance := "PickupService.StartPickup"

	if id.Role != models.RoleDriver {
		return nil, apperrors.Forbidden("only drivers can start pickups")
	}
	p, err := s.load(ctx, pickupID)
	if err != nil {
		return nil, err
	}
	if !p.AssignedTo(id.ProfileID) {
		return nil, apperrors.Forbidden("pickup is not assigned to you")
	}
	if p.Status != domain.StatusAccepted {
		return nil, apperrors.InvalidState("pickup", string(p.Status))
	}

	p, err = s.repo.Transition(ctx, pickupID, []domain.Status{domain.StatusAccepted}, domain.StatusInProgress, s.now())
	if err != nil {
		return nil, s.stateError(ctx, pickupID, err)
	}

	s.publish(ctx, p)
	s.logger.OK(instance, "pickup started", "pickup_id", p.ID)
	return p, nil
}

// CompletePickup closes the pickup, credits the requester and frees the
// driver in one transaction.
func (s *PickupService) CompletePickup(ctx context.Context, id models.Identity, pickupID string) (*domain.Pickup, error) {
	instance := "PickupService.CompletePickup"
	start := time.Now()

	p, err := s.load(ctx, pickupID)
	if err != nil {
		return nil, err
	}
	if !requesterSide(id, p) && !(id.Role == models.RoleDriver && p.AssignedTo(id.ProfileID)) {
		return nil, apperrors.Forbidden("only the requester or the assigned driver can complete a pickup")
	}
	if p.Status != domain.StatusAccepted && p.Status != domain.StatusInProgress {
		return nil, apperrors.InvalidState("pickup", string(p.Status))
	}

	var completed *domain.Pickup
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		completed, err = s.repo.Transition(ctx, pickupID,
			[]domain.Status{domain.StatusAccepted, domain.StatusInProgress}, domain.StatusCompleted, s.now())
		if err != nil {
			return err
		}

		src := rewards.Source{Type: rewards.SourcePickup, ID: completed.ID}
		if _, err := s.ledger.AddPoints(ctx, completed.RequesterID, s.cfg.CompletionPoints, "Pickup completed", src); err != nil {
			return err
		}

		if completed.DriverID != nil {
			return s.repo.CompleteDriverPickup(ctx, *completed.DriverID)
		}
		return nil
	})
	if err != nil {
		s.logger.Warn(instance, "pickup not completed", "pickup_id", pickupID, "error", err.Error())
		return nil, s.stateError(ctx, pickupID, err)
	}

	s.publish(ctx, completed)
	s.logger.OK(instance, "pickup completed", "pickup_id", completed.ID, "requester_id", completed.RequesterID,
		"points", s.cfg.CompletionPoints, "duration_ms", time.Since(start).Milliseconds())
	return completed, nil
}

func (s *PickupService) CancelPickup(ctx context.Context, id models.Identity, pickupID string) (*domain.Pickup, error) {
	instance := "PickupService.CancelPickup"

	p, err := s.load(ctx, pickupID)
	if err != nil {
		return nil, err
	}
	if !requesterSide(id, p) {
		return nil, apperrors.Forbidden("only the requester can cancel a pickup")
	}
	if p.Status.Terminal() {
		return nil, apperrors.InvalidState("pickup", string(p.Status))
	}

	var cancelled *domain.Pickup
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		cancelled, err = s.repo.Transition(ctx, pickupID,
			[]domain.Status{domain.StatusPending, domain.StatusAccepted, domain.StatusInProgress}, domain.StatusCancelled, s.now())
		if err != nil {
			return err
		}
		if cancelled.DriverID != nil {
			return s.repo.SetDriverStatus(ctx, *cancelled.DriverID, driverAvailable)
		}
		return nil
	})
	if err != nil {
		return nil, s.stateError(ctx, pickupID, err)
	}

	s.publish(ctx, cancelled)
	s.logger.OK(instance, "pickup cancelled", "pickup_id", cancelled.ID)
	return cancelled, nil
}
