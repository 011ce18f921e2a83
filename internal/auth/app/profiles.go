package app

import (
	"context"
	"strings"
	"time"

	"restaurant-waste/internal/auth/domain"
	"restaurant-waste/internal/shared/apperrors"
	"restaurant-waste/internal/shared/models"
	"restaurant-waste/internal/shared/util"
	"restaurant-waste/internal/shared/validation"
)

func validateOptionalCoordinates(lat, lng *float64) error {
	if lat == nil && lng == nil {
		return nil
	}
	if lat == nil || lng == nil {
		return apperrors.Validation("latitude and longitude must be given together")
	}
	return validation.ValidateCoordinates(*lat, *lng)
}

// RegisterOwner creates the login and the restaurant profile together.
func (s *AuthService) RegisterOwner(ctx context.Context, req domain.RegisterOwnerRequest) (*domain.OwnerProfile, error) {
	instance := "AuthService.RegisterOwner"
	start := time.Now()

	req.RestaurantName = strings.TrimSpace(req.RestaurantName)
	req.Address = strings.TrimSpace(req.Address)
	if err := validation.ValidateStringNotEmpty(req.RestaurantName, "restaurant_name"); err != nil {
		return nil, err
	}
	if err := validation.ValidateStringNotEmpty(req.Address, "address"); err != nil {
		return nil, err
	}
	if err := validateOptionalCoordinates(req.Latitude, req.Longitude); err != nil {
		return nil, err
	}

	var owner *domain.OwnerProfile
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		userID, err := s.CreateAccount(ctx, req.NewAccount)
		if err != nil {
			return err
		}
		if err := s.repo.AttachRole(ctx, userID, models.RoleOwner); err != nil {
			return err
		}
		owner = &domain.OwnerProfile{
			ID:             util.GenerateUUID(),
			UserID:         userID,
			RestaurantName: req.RestaurantName,
			Address:        req.Address,
			Latitude:       req.Latitude,
			Longitude:      req.Longitude,
			Status:         "active",
			CreatedAt:      s.now(),
		}
		return s.repo.InsertOwner(ctx, owner)
	})
	if err != nil {
		s.logger.Warn(instance, "owner registration failed", "username", req.Username, "error", err.Error())
		return nil, err
	}

	s.logger.OK(instance, "owner registered", "owner_id", owner.ID, "user_id", owner.UserID,
		"duration_ms", time.Since(start).Milliseconds())
	return owner, nil
}

func (s *AuthService) OwnerProfile(ctx context.Context, userID string) (*domain.OwnerProfile, error) {
	return s.repo.OwnerByUserID(ctx, userID)
}

func (s *AuthService) UpdateOwnerProfile(ctx context.Context, userID string, req domain.UpdateOwnerRequest) (*domain.OwnerProfile, error) {
	owner, err := s.repo.OwnerByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.RestaurantName != nil {
		owner.RestaurantName = strings.TrimSpace(*req.RestaurantName)
		if err := validation.ValidateStringNotEmpty(owner.RestaurantName, "restaurant_name"); err != nil {
			return nil, err
		}
	}
	if req.Address != nil {
		owner.Address = strings.TrimSpace(*req.Address)
		if err := validation.ValidateStringNotEmpty(owner.Address, "address"); err != nil {
			return nil, err
		}
	}
	if req.Latitude != nil || req.Longitude != nil {
		if err := validateOptionalCoordinates(req.Latitude, req.Longitude); err != nil {
			return nil, err
		}
		owner.Latitude, owner.Longitude = req.Latitude, req.Longitude
	}

	if err := s.repo.UpdateOwner(ctx, owner); err != nil {
		s.logger.Error("AuthService.UpdateOwnerProfile", "failed to update owner", err, "owner_id", owner.ID)
		return nil, err
	}
	return owner, nil
}

func (s *AuthService) Employees(ctx context.Context, ownerUserID string) ([]domain.Employee, error) {
	owner, err := s.repo.OwnerByUserID(ctx, ownerUserID)
	if err != nil {
		return nil, err
	}
	return s.repo.EmployeesByOwner(ctx, owner.ID)
}

// CreateEmployee is called by an owner and creates the employee's login too.
func (s *AuthService) CreateEmployee(ctx context.Context, ownerUserID string, req domain.CreateEmployeeRequest) (*domain.Employee, error) {
	owner, err := s.repo.OwnerByUserID(ctx, ownerUserID)
	if err != nil {
		return nil, err
	}
	return s.addEmployee(ctx, owner, req)
}

// RegisterEmployee is the public sign-up; the owner is named by id.
func (s *AuthService) RegisterEmployee(ctx context.Context, req domain.CreateEmployeeRequest) (*domain.Employee, error) {
	if err := validation.ValidateStringNotEmpty(req.OwnerID, "owner_id"); err != nil {
		return nil, err
	}
	if !validation.IsUUID(req.OwnerID) {
		return nil, apperrors.NotFound("owner")
	}
	owner, err := s.repo.OwnerByID(ctx, req.OwnerID)
	if err != nil {
		return nil, err
	}
	return s.addEmployee(ctx, owner, req)
}

func (s *AuthService) addEmployee(ctx context.Context, owner *domain.OwnerProfile, req domain.CreateEmployeeRequest) (*domain.Employee, error) {
	instance := "AuthService.addEmployee"

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = strings.TrimSpace(req.Username)
	}
	position := strings.TrimSpace(req.Position)
	if position == "" {
		position = domain.DefaultPosition
	}

	var emp *domain.Employee
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		userID, err := s.CreateAccount(ctx, req.NewAccount)
		if err != nil {
			return err
		}
		if err := s.repo.AttachRole(ctx, userID, models.RoleEmployee); err != nil {
			return err
		}
		emp = &domain.Employee{
			ID:             util.GenerateUUID(),
			UserID:         userID,
			OwnerID:        owner.ID,
			Name:           name,
			Email:          strings.ToLower(strings.TrimSpace(req.Email)),
			Position:       position,
			RestaurantName: owner.RestaurantName,
			Address:        owner.Address,
			Status:         "active",
			Latitude:       owner.Latitude,
			Longitude:      owner.Longitude,
			CreatedAt:      s.now(),
		}
		return s.repo.InsertEmployee(ctx, emp)
	})
	if err != nil {
		s.logger.Warn(instance, "employee not created", "owner_id", owner.ID, "error", err.Error())
		return nil, err
	}

	s.logger.OK(instance, "employee created", "employee_id", emp.ID, "owner_id", owner.ID)
	return emp, nil
}

func (s *AuthService) EmployeeProfile(ctx context.Context, userID string) (*domain.Employee, error) {
	return s.repo.EmployeeByUserID(ctx, userID)
}

func (s *AuthService) UpdateEmployeeProfile(ctx context.Context, userID string, req domain.UpdateEmployeeRequest) (*domain.Employee, error) {
	emp, err := s.repo.EmployeeByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		emp.Name = strings.TrimSpace(*req.Name)
		if err := validation.ValidateStringNotEmpty(emp.Name, "name"); err != nil {
			return nil, err
		}
	}
	if req.Email != nil {
		emp.Email = strings.ToLower(strings.TrimSpace(*req.Email))
		if emp.Email != "" {
			if err := validation.ValidateEmail(emp.Email); err != nil {
				return nil, err
			}
		}
	}
	if req.Position != nil {
		emp.Position = strings.TrimSpace(*req.Position)
		if emp.Position == "" {
			emp.Position = domain.DefaultPosition
		}
	}

	if err := s.repo.UpdateEmployee(ctx, emp); err != nil {
		return nil, err
	}
	return emp, nil
}
