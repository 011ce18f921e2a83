package psql

import (
	"context"

	"restaurant-waste/internal/driver/models"
	"restaurant-waste/internal/shared/apperrors"
	"restaurant-waste/internal/shared/db"
)

func (r *repo) UpdateStatus(ctx context.Context, id string, status models.DriverStatus) error {
	tag, err := db.Conn(ctx, r.db).Exec(ctx, `UPDATE drivers SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("driver")
	}
	return nil
}

func (r *repo) UpdateCurrLocation(ctx context.Context, loc *models.Location) error {
	updatePrev := `UPDATE driver_locations SET is_current = FALSE WHERE driver_id = $1 AND is_current`
	insertCurr := `
		INSERT INTO driver_locations (id, driver_id, latitude, longitude, recorded_at, is_current)
		VALUES ($1, $2, $3, $4, $5, TRUE)`

	conn := db.Conn(ctx, r.db)

	if _, err := conn.Exec(ctx, updatePrev, loc.DriverID); err != nil {
		return err
	}

	_, err := conn.Exec(ctx, insertCurr, loc.ID, loc.DriverID, loc.Latitude, loc.Longitude, loc.RecordedAt)
	if _, dup := db.IsUniqueViolation(err); dup {
		// a concurrent ping won the partial unique index
		return apperrors.Duplicate("current location for driver", loc.DriverID)
	}
	return err
}

func (r *repo) Locations(ctx context.Context, driverID string, limit int) ([]models.Location, error) {
	query := `
		SELECT id, driver_id, latitude, longitude, recorded_at, is_current
		FROM driver_locations
		WHERE driver_id = $1
		ORDER BY recorded_at DESC
		LIMIT $2`

	rows, err := db.Conn(ctx, r.db).Query(ctx, query, driverID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []models.Location{}
	for rows.Next() {
		var l models.Location
		if err := rows.Scan(&l.ID, &l.DriverID, &l.Latitude, &l.Longitude, &l.RecordedAt, &l.IsCurrent); err != nil {
			return nil, err
		}
		list = append(list, l)
	}
	return list, rows.Err()
}
