package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"restaurant-waste/internal/auth/domain"
	"restaurant-waste/internal/shared/apperrors"
	"restaurant-waste/internal/shared/db"
	shared "restaurant-waste/internal/shared/models"
)

type AuthRepo struct {
	pool *pgxpool.Pool
}

func NewAuthRepo(pool *pgxpool.Pool) *AuthRepo {
	return &AuthRepo{pool: pool}
}

const userColumns = `id, username, COALESCE(email, ''), password_hash, role, is_admin, created_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	u := &domain.User{}
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.IsAdmin, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("user")
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *AuthRepo) CreateUser(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (id, username, email, password_hash, role, is_admin, created_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7)`

	_, err := db.Conn(ctx, r.pool).Exec(ctx, query,
		u.ID, u.Username, u.Email, u.PasswordHash, u.Role, u.IsAdmin, u.CreatedAt)
	if constraint, dup := db.IsUniqueViolation(err); dup {
		if constraint == "users_email_key" {
			return fmt.Errorf("%w: email is already registered", apperrors.ErrConflict)
		}
		return fmt.Errorf("%w: username is already taken", apperrors.ErrConflict)
	}
	return err
}

func (r *AuthRepo) UserByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(db.Conn(ctx, r.pool).QueryRow(ctx, query, id))
}

func (r *AuthRepo) UserByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(username) = LOWER($1)`
	return scanUser(db.Conn(ctx, r.pool).QueryRow(ctx, query, username))
}

func (r *AuthRepo) UserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	return scanUser(db.Conn(ctx, r.pool).QueryRow(ctx, query, email))
}

func (r *AuthRepo) AttachRole(ctx context.Context, userID string, role shared.Role) error {
	conn := db.Conn(ctx, r.pool)

	tag, err := conn.Exec(ctx, `UPDATE users SET role = $2 WHERE id = $1 AND role = 'user'`, userID, role)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var current string
	err = conn.QueryRow(ctx, `SELECT role FROM users WHERE id = $1`, userID).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NotFound("user")
	}
	if err != nil {
		return err
	}
	return apperrors.Conflict("user role", current)
}

func (r *AuthRepo) ProfileOf(ctx context.Context, u *domain.User) (string, string, error) {
	conn := db.Conn(ctx, r.pool)

	var profileID, ownerUserID string
	var err error
	switch u.Role {
	case shared.RoleOwner:
		err = conn.QueryRow(ctx, `SELECT id FROM owner_profiles WHERE user_id = $1`, u.ID).Scan(&profileID)
	case shared.RoleDriver:
		err = conn.QueryRow(ctx, `SELECT id FROM drivers WHERE user_id = $1`, u.ID).Scan(&profileID)
	case shared.RoleEmployee:
		err = conn.QueryRow(ctx, `
			SELECT e.id, o.user_id
			FROM employees e
			JOIN owner_profiles o ON o.id = e.owner_id
			WHERE e.user_id = $1`, u.ID).Scan(&profileID, &ownerUserID)
	default:
		return "", "", nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return "", "", apperrors.NotFound(string(u.Role) + " profile")
	}
	return profileID, ownerUserID, err
}

const ownerColumns = `id, user_id, restaurant_name, address, latitude, longitude, status, created_at`

func scanOwner(row pgx.Row) (*domain.OwnerProfile, error) {
	o := &domain.OwnerProfile{}
	err := row.Scan(&o.ID, &o.UserID, &o.RestaurantName, &o.Address, &o.Latitude, &o.Longitude, &o.Status, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("owner profile")
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *AuthRepo) InsertOwner(ctx context.Context, o *domain.OwnerProfile) error {
	query := `
		INSERT INTO owner_profiles (id, user_id, restaurant_name, address, latitude, longitude, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := db.Conn(ctx, r.pool).Exec(ctx, query,
		o.ID, o.UserID, o.RestaurantName, o.Address, o.Latitude, o.Longitude, o.Status, o.CreatedAt)
	if _, dup := db.IsUniqueViolation(err); dup {
		return apperrors.Duplicate("owner profile for user", o.UserID)
	}
	return err
}

func (r *AuthRepo) OwnerByUserID(ctx context.Context, userID string) (*domain.OwnerProfile, error) {
	query := `SELECT ` + ownerColumns + ` FROM owner_profiles WHERE user_id = $1`
	return scanOwner(db.Conn(ctx, r.pool).QueryRow(ctx, query, userID))
}

func (r *AuthRepo) OwnerByID(ctx context.Context, id string) (*domain.OwnerProfile, error) {
	query := `SELECT ` + ownerColumns + ` FROM owner_profiles WHERE id = $1`
	return scanOwner(db.Conn(ctx, r.pool).QueryRow(ctx, query, id))
}

func (r *AuthRepo) UpdateOwner(ctx context.Context, o *domain.OwnerProfile) error {
	query := `
		UPDATE owner_profiles
		SET restaurant_name = $2, address = $3, latitude = $4, longitude = $5
		WHERE id = $1`

	tag, err := db.Conn(ctx, r.pool).Exec(ctx, query, o.ID, o.RestaurantName, o.Address, o.Latitude, o.Longitude)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("owner profile")
	}
	return nil
}

const employeeColumns = `id, user_id, owner_id, name, email, position, restaurant_name, address, status, latitude, longitude, created_at`

func scanEmployee(row pgx.Row) (*domain.Employee, error) {
	e := &domain.Employee{}
	err := row.Scan(&e.ID, &e.UserID, &e.OwnerID, &e.Name, &e.Email, &e.Position,
		&e.RestaurantName, &e.Address, &e.Status, &e.Latitude, &e.Longitude, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("employee")
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *AuthRepo) InsertEmployee(ctx context.Context, e *domain.Employee) error {
	query := `
		INSERT INTO employees (id, user_id, owner_id, name, email, position, restaurant_name, address, status, latitude, longitude, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := db.Conn(ctx, r.pool).Exec(ctx, query,
		e.ID, e.UserID, e.OwnerID, e.Name, e.Email, e.Position,
		e.RestaurantName, e.Address, e.Status, e.Latitude, e.Longitude, e.CreatedAt)
	if _, dup := db.IsUniqueViolation(err); dup {
		return apperrors.Duplicate("employee profile for user", e.UserID)
	}
	if db.IsForeignKeyViolation(err) {
		return apperrors.NotFound("owner")
	}
	return err
}

func (r *AuthRepo) EmployeeByUserID(ctx context.Context, userID string) (*domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE user_id = $1`
	return scanEmployee(db.Conn(ctx, r.pool).QueryRow(ctx, query, userID))
}

func (r *AuthRepo) EmployeesByOwner(ctx context.Context, ownerID string) ([]domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE owner_id = $1 ORDER BY created_at DESC`

	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []domain.Employee{}
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *e)
	}
	return list, rows.Err()
}

func (r *AuthRepo) UpdateEmployee(ctx context.Context, e *domain.Employee) error {
	query := `UPDATE employees SET name = $2, email = $3, position = $4 WHERE id = $1`

	tag, err := db.Conn(ctx, r.pool).Exec(ctx, query, e.ID, e.Name, e.Email, e.Position)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("employee")
	}
	return nil
}
