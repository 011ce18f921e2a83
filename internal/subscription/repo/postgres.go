package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"restaurant-waste/internal/shared/apperrors"
	"restaurant-waste/internal/shared/db"
	"restaurant-waste/internal/subscription/domain"
)

type SubscriptionRepo struct {
	pool *pgxpool.Pool
}

func NewSubscriptionRepo(pool *pgxpool.Pool) *SubscriptionRepo {
	return &SubscriptionRepo{pool: pool}
}

const planColumns = `id, name, description, price::float8, duration_days, is_active`

func scanPlan(row pgx.Row) (*domain.Plan, error) {
	var p domain.Plan
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.DurationDays, &p.IsActive); err != nil {
		return nil, err
	}
	p.DisplayName = p.Name.Display()
	return &p, nil
}

func (r *SubscriptionRepo) ActivePlans(ctx context.Context) ([]domain.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM subscription_plans WHERE is_active ORDER BY price`

	rows, err := db.Conn(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []domain.Plan{}
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *p)
	}
	return list, rows.Err()
}

func (r *SubscriptionRepo) Plan(ctx context.Context, id string) (*domain.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM subscription_plans WHERE id = $1`

	p, err := scanPlan(db.Conn(ctx, r.pool).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("plan")
	}
	return p, err
}

func (r *SubscriptionRepo) CreatePlan(ctx context.Context, p *domain.Plan) error {
	query := `
		INSERT INTO subscription_plans (id, name, description, price, duration_days, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := db.Conn(ctx, r.pool).Exec(ctx, query, p.ID, p.Name, p.Description, p.Price, p.DurationDays, p.IsActive)
	if _, dup := db.IsUniqueViolation(err); dup {
		return apperrors.Duplicate("plan", string(p.Name))
	}
	return err
}

func (r *SubscriptionRepo) InsertSubscription(ctx context.Context, s *domain.Subscription) error {
	query := `
		INSERT INTO user_subscriptions (id, user_id, plan_id, start_date, end_date, status, auto_renew)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := db.Conn(ctx, r.pool).Exec(ctx, query,
		s.ID, s.UserID, s.PlanID, s.StartDate, s.EndDate, s.Status, s.AutoRenew)
	return err
}

const subscriptionSelect = `
	SELECT s.id, s.user_id, s.plan_id, p.name, s.status, s.auto_renew, s.start_date, s.end_date
	FROM user_subscriptions s
	JOIN subscription_plans p ON p.id = s.plan_id`

func scanSubscription(row pgx.Row) (*domain.Subscription, error) {
	var (
		s    domain.Subscription
		name domain.PlanName
	)
	err := row.Scan(&s.ID, &s.UserID, &s.PlanID, &name, &s.Status, &s.AutoRenew, &s.StartDate, &s.EndDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("subscription")
	}
	if err != nil {
		return nil, err
	}
	s.PlanName = name.Display()
	return &s, nil
}

func (r *SubscriptionRepo) LatestSubscription(ctx context.Context, userID string) (*domain.Subscription, error) {
	query := subscriptionSelect + `
		WHERE s.user_id = $1
		ORDER BY s.start_date DESC
		LIMIT 1`
	return scanSubscription(db.Conn(ctx, r.pool).QueryRow(ctx, query, userID))
}

func (r *SubscriptionRepo) LatestActive(ctx context.Context, userID string) (*domain.Subscription, error) {
	query := subscriptionSelect + `
		WHERE s.user_id = $1 AND s.status = 'active'
		ORDER BY s.start_date DESC
		LIMIT 1
		FOR UPDATE OF s`
	return scanSubscription(db.Conn(ctx, r.pool).QueryRow(ctx, query, userID))
}

func (r *SubscriptionRepo) SetStatus(ctx context.Context, id string, status domain.Status, autoRenew bool) error {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx,
		`UPDATE user_subscriptions SET status = $2, auto_renew = $3 WHERE id = $1`, id, status, autoRenew)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("subscription")
	}
	return nil
}

func (r *SubscriptionRepo) InsertPayment(ctx context.Context, p *domain.Payment) error {
	query := `
		INSERT INTO subscription_payments
			(id, user_id, subscription_id, plan_name_snapshot, amount, discount_applied, voucher_code, method, status, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := db.Conn(ctx, r.pool).Exec(ctx, query, p.ID, p.UserID, p.SubscriptionID, p.PlanNameSnapshot,
		p.Amount, p.DiscountApplied, p.VoucherCode, p.Method, p.Status, p.PaidAt)
	return err
}

func (r *SubscriptionRepo) Payments(ctx context.Context, userID string) ([]domain.Payment, error) {
	query := `
		SELECT id, user_id, subscription_id, plan_name_snapshot, amount::float8, discount_applied::float8,
			voucher_code, method, status, paid_at
		FROM subscription_payments
		WHERE user_id = $1
		ORDER BY paid_at DESC`

	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []domain.Payment{}
	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(&p.ID, &p.UserID, &p.SubscriptionID, &p.PlanNameSnapshot, &p.Amount,
			&p.DiscountApplied, &p.VoucherCode, &p.Method, &p.Status, &p.PaidAt); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}
