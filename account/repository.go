package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound signals that the account does not exist.
	ErrNotFound = errors.New("account: not found")
	// ErrDuplicateEmail signals that the email is already registered.
	ErrDuplicateEmail = errors.New("account: email already exists")
)

// Repository handles data access for accounts.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (Account, error)
	GetByEmail(ctx context.Context, email string) (Account, error)
	GetByID(ctx context.Context, id int64) (Account, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error
	UpdateCredentials(ctx context.Context, id int64, passwordHash string, role Role) error
	ListSummaries(ctx context.Context, role Role) ([]Summary, error)
}

// CreateParams contains write parameters for creating accounts.
type CreateParams struct {
	Email        string
	PasswordHash string
	Role         Role
}

// PGRepository implements Repository backed by PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) Create(ctx context.Context, params CreateParams) (Account, error) {
	const insertSQL = `
		INSERT INTO accounts (email, password_hash, role, status)
		VALUES ($1, $2, $3, 'active')
		RETURNING id, email, password_hash, role, status, created_at
	`

	acc, err := scanAccount(r.pool.QueryRow(ctx, insertSQL, params.Email, params.PasswordHash, params.Role))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Account{}, ErrDuplicateEmail
		}
		return Account{}, fmt.Errorf("account: create: %w", err)
	}

	return acc, nil
}

func (r *PGRepository) GetByEmail(ctx context.Context, email string) (Account, error) {
	const selectSQL = `
		SELECT id, email, password_hash, role, status, created_at
		FROM accounts
		WHERE email = $1
	`

	acc, err := scanAccount(r.pool.QueryRow(ctx, selectSQL, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrNotFound
		}
		return Account{}, fmt.Errorf("account: get by email: %w", err)
	}

	return acc, nil
}

func (r *PGRepository) GetByID(ctx context.Context, id int64) (Account, error) {
	const selectSQL = `
		SELECT id, email, password_hash, role, status, created_at
		FROM accounts
		WHERE id = $1
	`

	acc, err := scanAccount(r.pool.QueryRow(ctx, selectSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrNotFound
		}
		return Account{}, fmt.Errorf("account: get by id: %w", err)
	}

	return acc, nil
}

func (r *PGRepository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	tag, err := r.pool.Exec(ctx, `UPDATE accounts SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("account: update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateCredentials resets the password hash and role; used by the startup
// admin seed so the configured administrator always works.
func (r *PGRepository) UpdateCredentials(ctx context.Context, id int64, passwordHash string, role Role) error {
	const updateSQL = `
		UPDATE accounts
		SET password_hash = $2, role = $3, status = 'active'
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, updateSQL, id, passwordHash, role)
	if err != nil {
		return fmt.Errorf("account: update credentials: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListSummaries returns accounts joined with their role's profile, newest
// first. Passing an empty role lists everything.
func (r *PGRepository) ListSummaries(ctx context.Context, role Role) ([]Summary, error) {
	query := `
		SELECT a.id, a.email, a.role, a.status,
		       COALESCE(lp.full_name, sp.full_name),
		       COALESCE(lp.phone, sp.phone),
		       sp.school,
		       lp.verified
		FROM accounts a
		LEFT JOIN landlord_profiles lp ON lp.account_id = a.id
		LEFT JOIN student_profiles sp ON sp.account_id = a.id
	`
	args := []any{}
	if role != "" {
		query += ` WHERE a.role = $1`
		args = append(args, role)
	}
	query += ` ORDER BY a.id DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("account: list summaries: %w", err)
	}
	defer rows.Close()

	summaries := []Summary{}
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.Email, &s.Role, &s.Status, &s.FullName, &s.Phone, &s.School, &s.Verified); err != nil {
			return nil, fmt.Errorf("account: scan summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("account: iterate summaries: %w", err)
	}

	return summaries, nil
}

func scanAccount(row pgx.Row) (Account, error) {
	var acc Account
	err := row.Scan(
		&acc.ID,
		&acc.Email,
		&acc.PasswordHash,
		&acc.Role,
		&acc.Status,
		&acc.CreatedAt,
	)
	if err != nil {
		return Account{}, err
	}
	return acc, nil
}
