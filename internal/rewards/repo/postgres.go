package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"restaurant-waste/internal/rewards/domain"
	"restaurant-waste/internal/shared/apperrors"
	"restaurant-waste/internal/shared/db"
)

type RewardsRepo struct {
	pool *pgxpool.Pool
}

func NewRewardsRepo(pool *pgxpool.Pool) *RewardsRepo {
	return &RewardsRepo{pool: pool}
}

func (r *RewardsRepo) AddPoints(ctx context.Context, userID string, delta int) (int, error) {
	query := `
		INSERT INTO reward_points (user_id, points, updated_at)
		VALUES ($1, GREATEST($2::int, 0), NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET points = GREATEST(reward_points.points + $2::int, 0), updated_at = NOW()
		RETURNING points`

	var points int
	if err := db.Conn(ctx, r.pool).QueryRow(ctx, query, userID, delta).Scan(&points); err != nil {
		return 0, err
	}
	return points, nil
}

func (r *RewardsRepo) InsertTransaction(ctx context.Context, t *domain.Transaction) error {
	query := `
		INSERT INTO reward_transactions (id, user_id, points, description, source_type, source_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := db.Conn(ctx, r.pool).Exec(ctx, query,
		t.ID, t.UserID, t.Points, t.Description, t.SourceType, t.SourceID, t.CreatedAt)
	return err
}

func (r *RewardsRepo) Balance(ctx context.Context, userID string) (*domain.Balance, error) {
	query := `SELECT points, updated_at FROM reward_points WHERE user_id = $1`

	b := &domain.Balance{UserID: userID}
	err := db.Conn(ctx, r.pool).QueryRow(ctx, query, userID).Scan(&b.Points, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return b, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *RewardsRepo) LockBalance(ctx context.Context, userID string) (int, error) {
	query := `SELECT points FROM reward_points WHERE user_id = $1 FOR UPDATE`

	var points int
	err := db.Conn(ctx, r.pool).QueryRow(ctx, query, userID).Scan(&points)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return points, err
}

func (r *RewardsRepo) Transactions(ctx context.Context, userID string) ([]domain.Transaction, error) {
	query := `
		SELECT id, user_id, points, description, source_type, source_id, created_at
		FROM reward_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []domain.Transaction{}
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Points, &t.Description, &t.SourceType, &t.SourceID, &t.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

const voucherColumns = `id, code, name, description, points_required, discount_amount, is_active, expires_at, created_at`

func scanVoucher(row pgx.Row) (*domain.Voucher, error) {
	var v domain.Voucher
	err := row.Scan(&v.ID, &v.Code, &v.Name, &v.Description, &v.PointsRequired,
		&v.DiscountAmount, &v.IsActive, &v.ExpiresAt, &v.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("voucher")
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *RewardsRepo) CreateVoucher(ctx context.Context, v *domain.Voucher) error {
	query := `
		INSERT INTO vouchers (` + voucherColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := db.Conn(ctx, r.pool).Exec(ctx, query, v.ID, v.Code, v.Name, v.Description,
		v.PointsRequired, v.DiscountAmount, v.IsActive, v.ExpiresAt, v.CreatedAt)
	if _, dup := db.IsUniqueViolation(err); dup {
		return apperrors.Duplicate("voucher code", v.Code)
	}
	return err
}

func (r *RewardsRepo) ListActiveVouchers(ctx context.Context, now time.Time) ([]domain.Voucher, error) {
	query := `
		SELECT ` + voucherColumns + `
		FROM vouchers
		WHERE is_active AND (expires_at IS NULL OR expires_at >= $1)
		ORDER BY points_required, code`

	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []domain.Voucher{}
	for rows.Next() {
		v, err := scanVoucher(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *v)
	}
	return list, rows.Err()
}

func (r *RewardsRepo) LockVoucher(ctx context.Context, id string) (*domain.Voucher, error) {
	query := `SELECT ` + voucherColumns + ` FROM vouchers WHERE id = $1 FOR UPDATE`
	return scanVoucher(db.Conn(ctx, r.pool).QueryRow(ctx, query, id))
}

func (r *RewardsRepo) LockVoucherByCode(ctx context.Context, code string) (*domain.Voucher, error) {
	query := `SELECT ` + voucherColumns + ` FROM vouchers WHERE code = $1 FOR UPDATE`
	return scanVoucher(db.Conn(ctx, r.pool).QueryRow(ctx, query, code))
}

func (r *RewardsRepo) DeactivateVoucher(ctx context.Context, id string) error {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, `UPDATE vouchers SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("voucher")
	}
	return nil
}

func (r *RewardsRepo) InsertRedemption(ctx context.Context, rd *domain.Redemption) error {
	query := `
		INSERT INTO reward_redemptions (id, user_id, voucher_id, item_name, points_spent, status, is_used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := db.Conn(ctx, r.pool).Exec(ctx, query, rd.ID, rd.UserID, rd.VoucherID, rd.ItemName,
		rd.PointsSpent, rd.Status, rd.IsUsed, rd.CreatedAt)
	return err
}

func (r *RewardsRepo) Redemptions(ctx context.Context, userID string) ([]domain.Redemption, error) {
	query := `
		SELECT id, user_id, voucher_id, item_name, points_spent, status, is_used, created_at
		FROM reward_redemptions
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []domain.Redemption{}
	for rows.Next() {
		var rd domain.Redemption
		if err := rows.Scan(&rd.ID, &rd.UserID, &rd.VoucherID, &rd.ItemName, &rd.PointsSpent,
			&rd.Status, &rd.IsUsed, &rd.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, rd)
	}
	return list, rows.Err()
}
