package psql

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"restaurant-waste/internal/driver/models"
)

type repo struct {
	db *pgxpool.Pool
}

type Repo interface {
	InsertDriver(ctx context.Context, d *models.Driver) error
	CheckLicenseNumberExists(ctx context.Context, license, exceptDriverID string) (bool, error)
	GetByUserID(ctx context.Context, userID string) (*models.Driver, error)
	GetByID(ctx context.Context, id string) (*models.Driver, error)
	ListActive(ctx context.Context) ([]models.Driver, error)
	UpdateProfile(ctx context.Context, d *models.Driver) error
	UpdateStatus(ctx context.Context, id string, status models.DriverStatus) error
	// UpdateCurrLocation clears the current ping and inserts a new one. Run
	// it inside a transaction.
	UpdateCurrLocation(ctx context.Context, loc *models.Location) error
	Locations(ctx context.Context, driverID string, limit int) ([]models.Location, error)
}

func NewRepo(db *pgxpool.Pool) Repo {
	return &repo{db: db}
}
