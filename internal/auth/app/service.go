package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"restaurant-waste/internal/auth/domain"
	"restaurant-waste/internal/shared/apperrors"
	"restaurant-waste/internal/shared/db"
	"restaurant-waste/internal/shared/jwt"
	"restaurant-waste/internal/shared/models"
	"restaurant-waste/internal/shared/util"
	"restaurant-waste/internal/shared/validation"
)

const minPasswordLength = 6

var errInvalidCredentials = fmt.Errorf("%w: invalid credentials", apperrors.ErrUnauthorized)

// TokenIssuer is implemented by jwt.Manager.
type TokenIssuer interface {
	GenerateAccess(id models.Identity) (jwt.Token, error)
	GenerateRefresh(id models.Identity) (jwt.Token, error)
	ParseRefresh(token string) (*models.Claims, error)
	RefreshTTL() time.Duration
}

type AuthService struct {
	repo     domain.Repository
	sessions domain.SessionStore
	tokens   TokenIssuer
	tx       db.Transactor
	logger   *util.Logger
	now      func() time.Time
}

func NewAuthService(r domain.Repository, sessions domain.SessionStore, tokens TokenIssuer, tx db.Transactor, logger *util.Logger) *AuthService {
	return &AuthService{repo: r, sessions: sessions, tokens: tokens, tx: tx, logger: logger, now: time.Now}
}

// CreateAccount validates and stores a new login with role user.
func (s *AuthService) CreateAccount(ctx context.Context, in models.NewAccount) (string, error) {
	instance := "AuthService.CreateAccount"

	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if err := validation.ValidateStringNotEmpty(username, "username"); err != nil {
		return "", err
	}
	if email != "" {
		if err := validation.ValidateEmail(email); err != nil {
			return "", err
		}
	}
	if len(in.Password) < minPasswordLength {
		return "", apperrors.Validation("password must be at least %d characters", minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error(instance, "failed to hash password", err)
		return "", err
	}

	user := &domain.User{
		ID:           util.GenerateUUID(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
		CreatedAt:    s.now(),
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		s.logger.Warn(instance, "account not created", "username", username, "error", err.Error())
		return "", err
	}

	s.logger.Info(instance, "account created", "user_id", user.ID, "username", username)
	return user.ID, nil
}

func (s *AuthService) AttachRole(ctx context.Context, userID string, role models.Role) error {
	if !role.Valid() || role == models.RoleUser {
		return apperrors.Validation("cannot attach role %q", role)
	}
	return s.repo.AttachRole(ctx, userID, role)
}

func (s *AuthService) RegisterUser(ctx context.Context, in models.NewAccount) (*domain.User, error) {
	id, err := s.CreateAccount(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.repo.UserByID(ctx, id)
}

func (s *AuthService) Login(ctx context.Context, req domain.LoginRequest) (*domain.TokenPair, error) {
	instance := "AuthService.Login"
	start := time.Now()

	identifier := strings.TrimSpace(req.Username)
	if identifier == "" {
		identifier = strings.TrimSpace(req.Email)
	}
	if identifier == "" || req.Password == "" {
		return nil, apperrors.Validation("username and password are required")
	}

	var user *domain.User
	var err error
	if strings.Contains(identifier, "@") {
		user, err = s.repo.UserByEmail(ctx, identifier)
	} else {
		user, err = s.repo.UserByUsername(ctx, identifier)
	}
	if errors.Is(err, apperrors.ErrNotFound) {
		s.logger.Warn(instance, "login failed: unknown account", "identifier", identifier)
		return nil, errInvalidCredentials
	}
	if err != nil {
		s.logger.Error(instance, "failed to load user", err)
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		s.logger.Warn(instance, "login failed: wrong password", "user_id", user.ID)
		return nil, errInvalidCredentials
	}

	pair, err := s.issue(ctx, user)
	if err != nil {
		s.logger.Error(instance, "failed to issue tokens", err, "user_id", user.ID)
		return nil, err
	}

	s.logger.OK(instance, "user logged in", "user_id", user.ID, "role", string(user.Role),
		"duration_ms", time.Since(start).Milliseconds())
	return pair, nil
}

// Refresh rotates a refresh token. The presented token is revoked and a new
// pair carrying the user's current role is returned.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	instance := "AuthService.Refresh"

	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	userID, err := s.sessions.Consume(ctx, claims.ID)
	if err != nil {
		s.logger.Warn(instance, "refresh rejected", "jti", claims.ID, "error", err.Error())
		return nil, err
	}
	if userID != claims.Subject {
		return nil, fmt.Errorf("%w: session does not match token", apperrors.ErrUnauthorized)
	}

	user, err := s.repo.UserByID(ctx, userID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	pair, err := s.issue(ctx, user)
	if err != nil {
		s.logger.Error(instance, "failed to issue tokens", err, "user_id", user.ID)
		return nil, err
	}
	s.logger.Info(instance, "refresh token rotated", "user_id", user.ID)
	return pair, nil
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, claims.ID); err != nil {
		s.logger.Error("AuthService.Logout", "failed to delete session", err, "user_id", claims.Subject)
		return err
	}
	s.logger.Info("AuthService.Logout", "user logged out", "user_id", claims.Subject)
	return nil
}

func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.UserByID(ctx, userID)
}

func (s *AuthService) issue(ctx context.Context, user *domain.User) (*domain.TokenPair, error) {
	profileID, ownerUserID, err := s.repo.ProfileOf(ctx, user)
	if err != nil {
		return nil, err
	}

	id := models.Identity{
		UserID:      user.ID,
		Role:        user.Role,
		ProfileID:   profileID,
		OwnerUserID: ownerUserID,
		IsAdmin:     user.IsAdmin,
	}

	access, err := s.tokens.GenerateAccess(id)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.GenerateRefresh(id)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, refresh.ID, user.ID, s.tokens.RefreshTTL()); err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  access.Value,
		RefreshToken: refresh.Value,
		TokenType:    "Bearer",
		ExpiresAt:    access.ExpiresAt,
		Role:         user.Role,
		User:         user,
	}, nil
}
