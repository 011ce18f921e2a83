package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"restaurant-waste/internal/pickup/domain"
	"restaurant-waste/internal/shared/apperrors"
	"restaurant-waste/internal/shared/db"
)

type PickupRepo struct {
	pool *pgxpool.Pool
}

func NewPickupRepo(pool *pgxpool.Pool) *PickupRepo {
	return &PickupRepo{pool: pool}
}

const pickupColumns = `
	id, requester_id, created_by, restaurant_name, waste_type, weight_kg::float8,
	pickup_address, latitude, longitude, scheduled_at, status, driver_id, donation_drive_id,
	created_at, updated_at, started_at, completed_at, cancelled_at`

func scanPickup(row pgx.Row) (*domain.Pickup, error) {
	p := &domain.Pickup{}
	err := row.Scan(
		&p.ID, &p.RequesterID, &p.CreatedBy, &p.RestaurantName, &p.WasteType, &p.WeightKg,
		&p.PickupAddress, &p.Latitude, &p.Longitude, &p.ScheduledAt, &p.Status, &p.DriverID, &p.DonationDriveID,
		&p.CreatedAt, &p.UpdatedAt, &p.StartedAt, &p.CompletedAt, &p.CancelledAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PickupRepo) list(ctx context.Context, query string, args ...any) ([]domain.Pickup, error) {
	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []domain.Pickup{}
	for rows.Next() {
		p, err := scanPickup(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *p)
	}
	return list, rows.Err()
}

func (r *PickupRepo) Create(ctx context.Context, p *domain.Pickup) error {
	query := `
		INSERT INTO pickups (
			id, requester_id, created_by, restaurant_name, waste_type, weight_kg,
			pickup_address, latitude, longitude, scheduled_at, status, donation_drive_id,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)`

	_, err := db.Conn(ctx, r.pool).Exec(ctx, query,
		p.ID, p.RequesterID, p.CreatedBy, p.RestaurantName, p.WasteType, p.WeightKg,
		p.PickupAddress, p.Latitude, p.Longitude, p.ScheduledAt, p.Status, p.DonationDriveID,
		p.CreatedAt,
	)
	if db.IsForeignKeyViolation(err) {
		return apperrors.NotFound("donation drive")
	}
	return err
}

func (r *PickupRepo) Get(ctx context.Context, id string) (*domain.Pickup, error) {
	query := `SELECT ` + pickupColumns + ` FROM pickups WHERE id = $1`

	p, err := scanPickup(db.Conn(ctx, r.pool).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("pickup")
	}
	return p, err
}

func (r *PickupRepo) ListByRequester(ctx context.Context, userID string) ([]domain.Pickup, error) {
	query := `SELECT ` + pickupColumns + ` FROM pickups WHERE requester_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

func (r *PickupRepo) ListByDriver(ctx context.Context, driverID string) ([]domain.Pickup, error) {
	query := `SELECT ` + pickupColumns + ` FROM pickups WHERE driver_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, driverID)
}

func (r *PickupRepo) ListAvailable(ctx context.Context) ([]domain.Pickup, error) {
	query := `
		SELECT ` + pickupColumns + `
		FROM pickups
		WHERE status = 'pending' AND driver_id IS NULL
		ORDER BY created_at DESC`
	return r.list(ctx, query)
}

func (r *PickupRepo) UpdatePending(ctx context.Context, p *domain.Pickup) error {
	query := `
		UPDATE pickups
		SET waste_type = $2, weight_kg = $3, pickup_address = $4, latitude = $5, longitude = $6,
		    scheduled_at = $7, updated_at = $8
		WHERE id = $1 AND status = 'pending'`

	tag, err := db.Conn(ctx, r.pool).Exec(ctx, query,
		p.ID, p.WasteType, p.WeightKg, p.PickupAddress, p.Latitude, p.Longitude, p.ScheduledAt, p.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotTransitioned
	}
	return nil
}

func (r *PickupRepo) Assign(ctx context.Context, id, driverID string, at time.Time) (*domain.Pickup, error) {
	query := `
		UPDATE pickups
		SET driver_id = $2, status = 'accepted', updated_at = $3
		WHERE id = $1 AND driver_id IS NULL AND status = 'pending'
		RETURNING ` + pickupColumns

	p, err := scanPickup(db.Conn(ctx, r.pool).QueryRow(ctx, query, id, driverID, at))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotTransitioned
	}
	return p, err
}

func (r *PickupRepo) Transition(ctx context.Context, id string, from []domain.Status, to domain.Status, at time.Time) (*domain.Pickup, error) {
	query := `
		UPDATE pickups
		SET status = $2,
		    updated_at = $3,
		    started_at = CASE WHEN $2 = 'in_progress' THEN $3 ELSE started_at END,
		    completed_at = CASE WHEN $2 = 'completed' THEN $3 ELSE completed_at END,
		    cancelled_at = CASE WHEN $2 = 'cancelled' THEN $3 ELSE cancelled_at END
		WHERE id = $1 AND status = ANY($4)
		RETURNING ` + pickupColumns

	states := make([]string, len(from))
	for i, s := range from {
		states[i] = string(s)
	}

	p, err := scanPickup(db.Conn(ctx, r.pool).QueryRow(ctx, query, id, string(to), at, states))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotTransitioned
	}
	return p, err
}

func (r *PickupRepo) Driver(ctx context.Context, driverID string) (*domain.DriverRef, error) {
	query := `
		SELECT d.id, d.user_id, d.is_active, d.status, l.latitude, l.longitude
		FROM drivers d
		LEFT JOIN driver_locations l ON l.driver_id = d.id AND l.is_current
		WHERE d.id = $1`

	d := &domain.DriverRef{}
	err := db.Conn(ctx, r.pool).QueryRow(ctx, query, driverID).
		Scan(&d.ID, &d.UserID, &d.IsActive, &d.Status, &d.Latitude, &d.Longitude)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("driver")
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *PickupRepo) SetDriverStatus(ctx context.Context, driverID, status string) error {
	_, err := db.Conn(ctx, r.pool).Exec(ctx, `UPDATE drivers SET status = $2 WHERE id = $1`, driverID, status)
	return err
}

func (r *PickupRepo) CompleteDriverPickup(ctx context.Context, driverID string) error {
	query := `
		UPDATE drivers
		SET total_completed_pickups = total_completed_pickups + 1, status = 'available'
		WHERE id = $1`

	_, err := db.Conn(ctx, r.pool).Exec(ctx, query, driverID)
	return err
}
