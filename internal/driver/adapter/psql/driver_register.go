package psql

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"restaurant-waste/internal/driver/models"
	"restaurant-waste/internal/shared/apperrors"
	"restaurant-waste/internal/shared/db"
)

const driverColumns = `
	d.id, d.user_id, d.full_name, d.phone_number, d.license_number, d.vehicle_type,
	d.plate_number, d.is_active, d.date_hired, d.status, d.total_completed_pickups, d.rating,
	l.id, l.latitude, l.longitude, l.recorded_at`

const driverFrom = `
	FROM drivers d
	LEFT JOIN driver_locations l ON l.driver_id = d.id AND l.is_current`

func scanDriver(row pgx.Row) (*models.Driver, error) {
	var d models.Driver
	var locID *string
	var lat, lng *float64
	var recorded *time.Time

	err := row.Scan(&d.ID, &d.UserID, &d.FullName, &d.PhoneNumber, &d.LicenseNumber, &d.VehicleType,
		&d.PlateNumber, &d.IsActive, &d.DateHired, &d.Status, &d.TotalCompletedPickups, &d.Rating,
		&locID, &lat, &lng, &recorded)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("driver")
	}
	if err != nil {
		return nil, err
	}

	if locID != nil && lat != nil && lng != nil && recorded != nil {
		d.CurrentLocation = &models.Location{
			ID:         *locID,
			DriverID:   d.ID,
			Latitude:   *lat,
			Longitude:  *lng,
			RecordedAt: *recorded,
			IsCurrent:  true,
		}
	}
	return &d, nil
}

func (r *repo) InsertDriver(ctx context.Context, d *models.Driver) error {
	query := `
		INSERT INTO drivers (id, user_id, full_name, phone_number, license_number, vehicle_type,
			plate_number, is_active, date_hired, status, total_completed_pickups, rating)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := db.Conn(ctx, r.db).Exec(ctx, query, d.ID, d.UserID, d.FullName, d.PhoneNumber,
		d.LicenseNumber, d.VehicleType, d.PlateNumber, d.IsActive, d.DateHired, d.Status,
		d.TotalCompletedPickups, d.Rating)
	if _, dup := db.IsUniqueViolation(err); dup {
		return apperrors.Duplicate("driver profile for user", d.UserID)
	}
	return err
}

func (r *repo) CheckLicenseNumberExists(ctx context.Context, license, exceptDriverID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM drivers WHERE license_number = $1 AND license_number <> '' AND id::text <> $2)`

	var exists bool
	err := db.Conn(ctx, r.db).QueryRow(ctx, query, license, exceptDriverID).Scan(&exists)
	return exists, err
}

func (r *repo) GetByUserID(ctx context.Context, userID string) (*models.Driver, error) {
	query := `SELECT ` + driverColumns + driverFrom + ` WHERE d.user_id = $1`
	return scanDriver(db.Conn(ctx, r.db).QueryRow(ctx, query, userID))
}

func (r *repo) GetByID(ctx context.Context, id string) (*models.Driver, error) {
	query := `SELECT ` + driverColumns + driverFrom + ` WHERE d.id = $1`
	return scanDriver(db.Conn(ctx, r.db).QueryRow(ctx, query, id))
}

func (r *repo) ListActive(ctx context.Context) ([]models.Driver, error) {
	query := `SELECT ` + driverColumns + driverFrom + ` WHERE d.is_active ORDER BY d.full_name`

	rows, err := db.Conn(ctx, r.db).Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []models.Driver{}
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *d)
	}
	return list, rows.Err()
}

func (r *repo) UpdateProfile(ctx context.Context, d *models.Driver) error {
	query := `
		UPDATE drivers
		SET full_name = $2, phone_number = $3, vehicle_type = $4, plate_number = $5
		WHERE id = $1`

	tag, err := db.Conn(ctx, r.db).Exec(ctx, query, d.ID, d.FullName, d.PhoneNumber, d.VehicleType, d.PlateNumber)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("driver")
	}
	return nil
}
