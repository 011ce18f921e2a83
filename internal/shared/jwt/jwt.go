package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"restaurant-waste/internal/shared/apperrors"
	"restaurant-waste/internal/shared/models"
)

const issuer = "restaurant-waste"

type Manager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewManager(cfg models.JWTConfig) *Manager {
	return &Manager{
		secret:     []byte(cfg.Secret),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        time.Now,
	}
}

// Token is a signed token together with its id and expiry.
type Token struct {
	Value     string
	ID        string
	ExpiresAt time.Time
}

func (m *Manager) RefreshTTL() time.Duration { return m.refreshTTL }

func (m *Manager) GenerateAccess(id models.Identity) (Token, error) {
	return m.generate(id, models.TokenAccess, m.accessTTL)
}

func (m *Manager) GenerateRefresh(id models.Identity) (Token, error) {
	return m.generate(id, models.TokenRefresh, m.refreshTTL)
}

func (m *Manager) generate(id models.Identity, tokenType string, ttl time.Duration) (Token, error) {
	now := m.now()
	jti := uuid.NewString()
	expiresAt := now.Add(ttl)

	claims := &models.Claims{
		Role:        id.Role,
		ProfileID:   id.ProfileID,
		OwnerUserID: id.OwnerUserID,
		IsAdmin:     id.IsAdmin,
		TokenType:   tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			ID:        jti,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}
	return Token{Value: signed, ID: jti, ExpiresAt: expiresAt}, nil
}

func (m *Manager) ParseAccess(token string) (*models.Claims, error) {
	return m.parse(token, models.TokenAccess)
}

func (m *Manager) ParseRefresh(token string) (*models.Claims, error) {
	return m.parse(token, models.TokenRefresh)
}

func (m *Manager) parse(token, tokenType string) (*models.Claims, error) {
	claims := &models.Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: token expired", apperrors.ErrUnauthorized)
		}
		return nil, fmt.Errorf("%w: invalid token", apperrors.ErrUnauthorized)
	}
	if claims.TokenType != tokenType {
		return nil, fmt.Errorf("%w: expected %s token", apperrors.ErrUnauthorized, tokenType)
	}
	if claims.Subject == "" || !claims.Role.Valid() {
		return nil, fmt.Errorf("%w: malformed claims", apperrors.ErrUnauthorized)
	}
	return claims, nil
}
