package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"restaurant-waste/internal/donation/domain"
	"restaurant-waste/internal/shared/apperrors"
	"restaurant-waste/internal/shared/db"
)

type DonationRepo struct {
	pool *pgxpool.Pool
}

func NewDonationRepo(pool *pgxpool.Pool) *DonationRepo {
	return &DonationRepo{pool: pool}
}

const driveColumns = `id, title, description, target_item, start_date, end_date, is_active, created_at`

func scanDrive(row pgx.Row) (*domain.Drive, error) {
	var d domain.Drive
	err := row.Scan(&d.ID, &d.Title, &d.Description, &d.TargetItem, &d.StartDate, &d.EndDate, &d.IsActive, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("donation drive")
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DonationRepo) ListDrives(ctx context.Context, today time.Time) ([]domain.Drive, error) {
	query := `
		SELECT ` + driveColumns + `
		FROM donation_drives
		WHERE is_active AND end_date >= $1::date
		ORDER BY start_date DESC`

	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, today)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []domain.Drive{}
	for rows.Next() {
		d, err := scanDrive(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *d)
	}
	return list, rows.Err()
}

func (r *DonationRepo) Drive(ctx context.Context, id string) (*domain.Drive, error) {
	query := `SELECT ` + driveColumns + ` FROM donation_drives WHERE id = $1`
	return scanDrive(db.Conn(ctx, r.pool).QueryRow(ctx, query, id))
}

func (r *DonationRepo) CreateDrive(ctx context.Context, d *domain.Drive) error {
	query := `
		INSERT INTO donation_drives (` + driveColumns + `)
		VALUES ($1, $2, $3, $4, $5::date, $6::date, $7, $8)`

	_, err := db.Conn(ctx, r.pool).Exec(ctx, query,
		d.ID, d.Title, d.Description, d.TargetItem, d.StartDate, d.EndDate, d.IsActive, d.CreatedAt)
	return err
}

func (r *DonationRepo) InsertParticipation(ctx context.Context, p *domain.Participation) error {
	query := `
		INSERT INTO donation_participations
			(id, user_id, drive_id, donated_item, quantity, remarks, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := db.Conn(ctx, r.pool).Exec(ctx, query,
		p.ID, p.UserID, p.DriveID, p.DonatedItem, p.Quantity, p.Remarks, p.Status, p.CreatedAt)
	if db.IsForeignKeyViolation(err) {
		return apperrors.Validation("donation drive does not exist")
	}
	return err
}

const participationSelect = `
	SELECT p.id, p.user_id, p.drive_id, d.title, d.description, d.target_item,
		p.donated_item, p.quantity::float8, p.remarks, p.status, p.created_at, p.completed_at`

func scanParticipation(row pgx.Row) (*domain.Participation, error) {
	var p domain.Participation
	err := row.Scan(&p.ID, &p.UserID, &p.DriveID, &p.DriveTitle, &p.DriveDescription, &p.DriveTargetItem,
		&p.DonatedItem, &p.Quantity, &p.Remarks, &p.Status, &p.CreatedAt, &p.CompletedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *DonationRepo) Participation(ctx context.Context, id string) (*domain.Participation, error) {
	query := participationSelect + `
		FROM donation_participations p
		JOIN donation_drives d ON d.id = p.drive_id
		WHERE p.id = $1`

	p, err := scanParticipation(db.Conn(ctx, r.pool).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("participation")
	}
	return p, err
}

func (r *DonationRepo) ParticipationsByUser(ctx context.Context, userID string) ([]domain.Participation, error) {
	query := participationSelect + `
		FROM donation_participations p
		JOIN donation_drives d ON d.id = p.drive_id
		WHERE p.user_id = $1
		ORDER BY p.created_at DESC`

	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []domain.Participation{}
	for rows.Next() {
		p, err := scanParticipation(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *p)
	}
	return list, rows.Err()
}

func (r *DonationRepo) CompleteParticipation(ctx context.Context, id string, at time.Time) (*domain.Participation, error) {
	query := `
		WITH p AS (
			UPDATE donation_participations
			SET status = 'completed', completed_at = $2
			WHERE id = $1 AND status <> 'completed'
			RETURNING *
		)` + participationSelect + `
		FROM p
		JOIN donation_drives d ON d.id = p.drive_id`

	p, err := scanParticipation(db.Conn(ctx, r.pool).QueryRow(ctx, query, id, at))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAlreadyCompleted
	}
	return p, err
}
