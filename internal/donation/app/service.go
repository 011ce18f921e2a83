package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"restaurant-waste/internal/donation/domain"
	rewards "restaurant-waste/internal/rewards/domain"
	"restaurant-waste/internal/shared/apperrors"
	"restaurant-waste/internal/shared/models"
	"restaurant-waste/internal/shared/util"
	"restaurant-waste/internal/shared/validation"
)

const dateLayout = "2006-01-02"

// Ledger credits reward points. Implemented by the rewards Ledger.
type Ledger interface {
	AddPoints(ctx context.Context, userID string, amount int, description string, src rewards.Source) (int, error)
}

type DonationService struct {
	repo   domain.Repository
	ledger Ledger
	cfg    models.DonationConfig
	logger *util.Logger
	now    func() time.Time
}

func NewDonationService(repo domain.Repository, ledger Ledger, cfg models.DonationConfig, logger *util.Logger) *DonationService {
	return &DonationService{repo: repo, ledger: ledger, cfg: cfg, logger: logger, now: time.Now}
}

func (s *DonationService) ListDrives(ctx context.Context) ([]domain.Drive, error) {
	today := s.now()
	list, err := s.repo.ListDrives(ctx, domain.Day(today))
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i].IsOngoing = list[i].Ongoing(today)
	}
	return list, nil
}

func (s *DonationService) GetDrive(ctx context.Context, id string) (*domain.Drive, error) {
	d, err := s.drive(ctx, id)
	if err != nil {
		return nil, err
	}
	d.IsOngoing = d.Ongoing(s.now())
	return d, nil
}

func (s *DonationService) drive(ctx context.Context, id string) (*domain.Drive, error) {
	if !validation.IsUUID(id) {
		return nil, apperrors.NotFound("donation drive")
	}
	return s.repo.Drive(ctx, id)
}

// CheckOngoing returns NotFound for an unknown drive and a validation error
// when the drive is inactive or outside its dates.
func (s *DonationService) CheckOngoing(ctx context.Context, driveID string) error {
	d, err := s.drive(ctx, driveID)
	if err != nil {
		return err
	}
	if !d.Ongoing(s.now()) {
		return apperrors.Validation("donation drive %q is not ongoing", d.Title)
	}
	return nil
}

func (s *DonationService) CreateDrive(ctx context.Context, req domain.CreateDriveRequest) (*domain.Drive, error) {
	instance := "DonationService.CreateDrive"

	title := strings.TrimSpace(req.Title)
	if err := validation.ValidateStringNotEmpty(title, "title"); err != nil {
		return nil, err
	}
	target := strings.TrimSpace(req.TargetItem)
	if err := validation.ValidateStringNotEmpty(target, "target_item"); err != nil {
		return nil, err
	}

	start := domain.Day(s.now())
	if req.StartDate != "" {
		parsed, err := time.Parse(dateLayout, req.StartDate)
		if err != nil {
			return nil, apperrors.Validation("start_date must be YYYY-MM-DD")
		}
		start = parsed
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return nil, apperrors.Validation("end_date must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return nil, apperrors.Validation("end_date cannot be before start_date")
	}

	d := &domain.Drive{
		ID:          util.GenerateUUID(),
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		TargetItem:  target,
		StartDate:   start,
		EndDate:     end,
		IsActive:    true,
		CreatedAt:   s.now(),
	}
	if err := s.repo.CreateDrive(ctx, d); err != nil {
		s.logger.Error(instance, "failed to create drive", err)
		return nil, err
	}
	d.IsOngoing = d.Ongoing(s.now())

	s.logger.OK(instance, "donation drive created", "drive_id", d.ID, "title", d.Title)
	return d, nil
}

func (s *DonationService) Participate(ctx context.Context, userID string, req domain.ParticipateRequest) (*domain.Participation, error) {
	instance := "DonationService.Participate"

	if err := validation.ValidateStringNotEmpty(req.DriveID, "drive"); err != nil {
		return nil, err
	}
	item := strings.TrimSpace(req.DonatedItem)
	if err := validation.ValidateStringNotEmpty(item, "donated_item"); err != nil {
		return nil, err
	}
	if err := validation.ValidatePositiveFloat(req.Quantity, "quantity"); err != nil {
		return nil, err
	}

	drive, err := s.drive(ctx, req.DriveID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.Validation("donation drive does not exist")
	}
	if err != nil {
		return nil, err
	}
	if !drive.Ongoing(s.now()) {
		return nil, apperrors.Validation("this donation drive is no longer active")
	}

	p := &domain.Participation{
		ID:               util.GenerateUUID(),
		UserID:           userID,
		DriveID:          drive.ID,
		DriveTitle:       drive.Title,
		DriveDescription: drive.Description,
		DriveTargetItem:  drive.TargetItem,
		DonatedItem:      item,
		Quantity:         req.Quantity,
		Remarks:          strings.TrimSpace(req.Remarks),
		Status:           domain.ParticipationPending,
		CreatedAt:        s.now(),
	}
	if err := s.repo.InsertParticipation(ctx, p); err != nil {
		s.logger.Error(instance, "failed to record participation", err, "drive_id", drive.ID)
		return nil, err
	}

	s.logger.OK(instance, "participation recorded", "participation_id", p.ID, "user_id", userID, "drive_id", drive.ID)
	return p, nil
}

func (s *DonationService) ListMine(ctx context.Context, userID string) ([]domain.Participation, error) {
	return s.repo.ParticipationsByUser(ctx, userID)
}

// MarkCompleted commits the completion first. The bonus is credited after
// and a ledger failure only gets logged.
func (s *DonationService) MarkCompleted(ctx context.Context, participationID string) (*domain.Participation, error) {
	instance := "DonationService.MarkCompleted"

	if !validation.IsUUID(participationID) {
		return nil, apperrors.NotFound("participation")
	}
	if _, err := s.repo.Participation(ctx, participationID); err != nil {
		return nil, err
	}

	p, err := s.repo.CompleteParticipation(ctx, participationID, s.now())
	if errors.Is(err, domain.ErrAlreadyCompleted) {
		return nil, apperrors.InvalidState("participation", string(domain.ParticipationCompleted))
	}
	if err != nil {
		s.logger.Error(instance, "failed to complete participation", err, "participation_id", participationID)
		return nil, err
	}

	description := fmt.Sprintf("Donation completed for %s", p.DriveTitle)
	src := rewards.Source{Type: rewards.SourceDonation, ID: p.ID}
	if _, err := s.ledger.AddPoints(ctx, p.UserID, s.cfg.CompletionPoints, description, src); err != nil {
		s.logger.Error(instance, "failed to award donation points", err, "participation_id", p.ID, "user_id", p.UserID)
	}

	s.logger.OK(instance, "participation completed", "participation_id", p.ID, "user_id", p.UserID)
	return p, nil
}
