package repo

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type AdminRepo struct {
	db *pgxpool.Pool
}

func NewAdminRepo(db *pgxpool.Pool) *AdminRepo {
	return &AdminRepo{db: db}
}

type SystemMetrics struct {
	ActivePickups          int     `json:"active_pickups"`
	AvailableDrivers       int     `json:"available_drivers"`
	OnPickupDrivers        int     `json:"on_pickup_drivers"`
	PickupsToday           int     `json:"pickups_today"`
	CompletedToday         int     `json:"completed_today"`
	WeightCollectedTodayKg float64 `json:"weight_collected_today_kg"`
	PointsIssuedToday      int     `json:"points_issued_today"`
	ActiveSubscriptions    int     `json:"active_subscriptions"`
	CancellationRate       float64 `json:"cancellation_rate"`
}

// Distribution counts rows per status.
type Distribution map[string]int

type ActivePickup struct {
	PickupID              string     `json:"pickup_id"`
	Status                string     `json:"status"`
	RequesterID           string     `json:"requester_id"`
	RestaurantName        string     `json:"restaurant_name"`
	DriverID              *string    `json:"driver_id"`
	PickupAddress         string     `json:"pickup_address"`
	WasteType             string     `json:"waste_type"`
	WeightKg              float64    `json:"weight_kg"`
	Latitude              float64    `json:"latitude"`
	Longitude             float64    `json:"longitude"`
	StartedAt             *time.Time `json:"started_at"`
	CurrentDriverLocation *Location  `json:"current_driver_location"`
	DistanceRemainingKm   *float64   `json:"distance_remaining_km"`
}

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (r *AdminRepo) GetSystemMetrics(ctx context.Context) (*SystemMetrics, error) {
	metrics := &SystemMetrics{}

	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM pickups
		WHERE status IN ('accepted', 'in_progress')
	`).Scan(&metrics.ActivePickups)
	if err != nil {
		return nil, err
	}

	err = r.db.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status = 'available' AND is_active),
			COUNT(*) FILTER (WHERE status = 'on_pickup')
		FROM drivers
	`).Scan(&metrics.AvailableDrivers, &metrics.OnPickupDrivers)
	if err != nil {
		return nil, err
	}

	var cancelledToday int
	err = r.db.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'completed'),
			COUNT(*) FILTER (WHERE status = 'cancelled'),
			COALESCE(SUM(weight_kg) FILTER (WHERE status = 'completed'), 0)::float8
		FROM pickups
		WHERE created_at >= CURRENT_DATE
	`).Scan(&metrics.PickupsToday, &metrics.CompletedToday, &cancelledToday, &metrics.WeightCollectedTodayKg)
	if err != nil {
		return nil, err
	}
	if metrics.PickupsToday > 0 {
		metrics.CancellationRate = float64(cancelledToday) / float64(metrics.PickupsToday)
	}

	err = r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(points), 0) FROM reward_transactions
		WHERE points > 0 AND created_at >= CURRENT_DATE
	`).Scan(&metrics.PointsIssuedToday)
	if err != nil {
		return nil, err
	}

	err = r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM user_subscriptions
		WHERE status = 'active' AND end_date >= NOW()
	`).Scan(&metrics.ActiveSubscriptions)
	if err != nil {
		return nil, err
	}

	return metrics, nil
}

func (r *AdminRepo) distribution(ctx context.Context, query string) (Distribution, error) {
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	distribution := make(Distribution)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		distribution[status] = count
	}
	return distribution, rows.Err()
}

func (r *AdminRepo) GetPickupDistribution(ctx context.Context) (Distribution, error) {
	return r.distribution(ctx, `SELECT status, COUNT(*) FROM pickups GROUP BY status`)
}

func (r *AdminRepo) GetDriverDistribution(ctx context.Context) (Distribution, error) {
	return r.distribution(ctx, `SELECT status, COUNT(*) FROM drivers GROUP BY status`)
}

func (r *AdminRepo) GetActivePickups(ctx context.Context, page, pageSize int) ([]ActivePickup, int, error) {
	offset := (page - 1) * pageSize

	var totalCount int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM pickups
		WHERE status IN ('accepted', 'in_progress')
	`).Scan(&totalCount)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT
			p.id, p.status, p.requester_id, p.restaurant_name, p.driver_id,
			p.pickup_address, p.waste_type, p.weight_kg::float8, p.latitude, p.longitude,
			p.started_at, l.latitude, l.longitude
		FROM pickups p
		LEFT JOIN driver_locations l ON l.driver_id = p.driver_id AND l.is_current
		WHERE p.status IN ('accepted', 'in_progress')
		ORDER BY p.updated_at DESC
		LIMIT $1 OFFSET $2
	`, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	pickups := []ActivePickup{}
	for rows.Next() {
		var p ActivePickup
		var currentLat, currentLng *float64

		err := rows.Scan(
			&p.PickupID,
			&p.Status,
			&p.RequesterID,
			&p.RestaurantName,
			&p.DriverID,
			&p.PickupAddress,
			&p.WasteType,
			&p.WeightKg,
			&p.Latitude,
			&p.Longitude,
			&p.StartedAt,
			&currentLat,
			&currentLng,
		)
		if err != nil {
			return nil, 0, err
		}

		if currentLat != nil && currentLng != nil {
			p.CurrentDriverLocation = &Location{
				Latitude:  *currentLat,
				Longitude: *currentLng,
			}
		}
		pickups = append(pickups, p)
	}

	return pickups, totalCount, rows.Err()
}
