package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/gatekeeper/internal/store/core"
)

type userRepo struct{ s *Store }

func (r *userRepo) Create(ctx context.Context, u *core.User) (*core.User, error) {
	cp := *u
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	cp.Email = strings.ToLower(strings.TrimSpace(cp.Email))
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}

	var secret any
	if cp.MFASecret != "" {
		secret = cp.MFASecret
	}
	_, err := r.s.db.ExecContext(ctx, `
		INSERT INTO app_user (id, first_name, last_name, email, password_hash, role, mfa_enabled, mfa_secret, created_at)
		VALUES (?1, ?2, ?3, ?4, ?5, ?6, ?7, ?8, ?9);`,
		cp.ID, cp.FirstName, cp.LastName, cp.Email, cp.PasswordHash,
		string(cp.Role), cp.MFAEnabled, secret, cp.CreatedAt.Unix(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, core.ErrConflict
		}
		return nil, err
	}
	return &cp, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*core.User, error) {
	return r.scanOne(ctx, `WHERE email = ?1`, strings.ToLower(strings.TrimSpace(email)))
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*core.User, error) {
	return r.scanOne(ctx, `WHERE id = ?1`, id)
}

func (r *userRepo) scanOne(ctx context.Context, where string, arg any) (*core.User, error) {
	row := r.s.db.QueryRowContext(ctx, `
		SELECT id, first_name, last_name, email, password_hash, role,
		       mfa_enabled, COALESCE(mfa_secret, ''), created_at
		FROM app_user `+where+`;`, arg)

	var u core.User
	var role string
	var createdAt int64
	err := row.Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &role,
		&u.MFAEnabled, &u.MFASecret, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.Role = core.Role(role)
	u.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &u, nil
}
