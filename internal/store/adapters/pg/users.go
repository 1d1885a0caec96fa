package pg

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/gatekeeper/internal/store/core"
)

type userRepo struct{ pool *pgxpool.Pool }

func (r *userRepo) Create(ctx context.Context, u *core.User) (*core.User, error) {
	const query = `
		INSERT INTO app_user (id, first_name, last_name, email, password_hash, role, mfa_enabled, mfa_secret, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), NOW())
		RETURNING created_at
	`
	cp := *u
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	cp.Email = strings.ToLower(strings.TrimSpace(cp.Email))

	err := r.pool.QueryRow(ctx, query,
		cp.ID, cp.FirstName, cp.LastName, cp.Email, cp.PasswordHash,
		string(cp.Role), cp.MFAEnabled, cp.MFASecret,
	).Scan(&cp.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, core.ErrConflict
		}
		return nil, err
	}
	return &cp, nil
}

const userColumns = `
	id, first_name, last_name, email, password_hash, role,
	mfa_enabled, COALESCE(mfa_secret, ''), created_at
`

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*core.User, error) {
	query := `SELECT ` + userColumns + ` FROM app_user WHERE email = $1`
	return r.scanOne(ctx, query, strings.ToLower(strings.TrimSpace(email)))
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*core.User, error) {
	query := `SELECT ` + userColumns + ` FROM app_user WHERE id = $1`
	return r.scanOne(ctx, query, id)
}

func (r *userRepo) scanOne(ctx context.Context, query string, arg any) (*core.User, error) {
	var u core.User
	var role string
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &role,
		&u.MFAEnabled, &u.MFASecret, &u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.Role = core.Role(role)
	return &u, nil
}
