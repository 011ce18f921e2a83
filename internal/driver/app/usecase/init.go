package usecase

import (
	"context"
	"time"

	"restaurant-waste/internal/driver/adapter/psql"
	"restaurant-waste/internal/driver/adapter/rmq"
	"restaurant-waste/internal/driver/models"
	"restaurant-waste/internal/shared/db"
	shared "restaurant-waste/internal/shared/models"
	"restaurant-waste/internal/shared/util"
)

// Accounts creates logins and fixes their role. Implemented by the auth service.
type Accounts interface {
	CreateAccount(ctx context.Context, in shared.NewAccount) (string, error)
	AttachRole(ctx context.Context, userID string, role shared.Role) error
}

type service struct {
	repo     psql.Repo
	broker   rmq.Broker
	accounts Accounts
	tx       db.Transactor
	logger   *util.Logger
	now      func() time.Time
}

type Service interface {
	RegisterDriver(ctx context.Context, req models.RegisterRequest) (*models.Driver, error)
	CreateProfile(ctx context.Context, userID string, p models.Profile) (*models.Driver, error)
	ListDrivers(ctx context.Context) ([]models.Driver, error)
	Me(ctx context.Context, userID string) (*models.Driver, error)
	UpdateMe(ctx context.Context, userID string, req models.UpdateRequest) (*models.Driver, error)
	UpdateStatus(ctx context.Context, userID string, status models.DriverStatus) (*models.Driver, error)
	UpdateLocation(ctx context.Context, userID string, lat, lng float64) (*models.Location, error)
	LocationHistory(ctx context.Context, userID string, limit int) ([]models.Location, error)
}

func NewService(repo psql.Repo, broker rmq.Broker, accounts Accounts, tx db.Transactor, logger *util.Logger) Service {
	return &service{repo: repo, broker: broker, accounts: accounts, tx: tx, logger: logger, now: time.Now}
}
