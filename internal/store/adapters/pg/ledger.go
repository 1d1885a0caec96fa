package pg

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/gatekeeper/internal/store/core"
)

type tokenLedger struct{ pool *pgxpool.Pool }

const insertTokenSQL = `
	INSERT INTO issued_token (id, user_id, access_token, refresh_token, kind, expired, revoked, created_at)
	VALUES ($1, $2, $3, NULLIF($4, ''), $5, FALSE, FALSE, NOW())
	RETURNING created_at
`

const insertTokenNoReturnSQL = `
	INSERT INTO issued_token (id, user_id, access_token, refresh_token, kind, expired, revoked, created_at)
	VALUES ($1, $2, $3, NULLIF($4, ''), $5, FALSE, FALSE, NOW())
`

// Predicado "no totalmente retirado": toca toda fila que todavía podría
// presentarse, incluso las parcialmente marcadas.
const revokeAllSQL = `
	UPDATE issued_token
	SET expired = TRUE, revoked = TRUE
	WHERE user_id = $1 AND (expired = FALSE OR revoked = FALSE)
`

func (l *tokenLedger) Record(ctx context.Context, userID, accessToken, refreshToken, kind string) (*core.IssuedToken, error) {
	row := core.IssuedToken{
		ID:           uuid.NewString(),
		UserID:       userID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Kind:         kind,
	}
	err := l.pool.QueryRow(ctx, insertTokenSQL,
		row.ID, userID, accessToken, refreshToken, kind,
	).Scan(&row.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, core.ErrDuplicateToken
		}
		return nil, err
	}
	return &row, nil
}

func (l *tokenLedger) Rotate(ctx context.Context, userID, accessToken, refreshToken, kind string) (int, error) {
	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	// Serializa authenticate/refresh/logout concurrentes del MISMO principal;
	// principals distintos no se bloquean entre sí.
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, userID); err != nil {
		return 0, err
	}

	tag, err := tx.Exec(ctx, revokeAllSQL, userID)
	if err != nil {
		return 0, err
	}

	if _, err := tx.Exec(ctx, insertTokenNoReturnSQL,
		uuid.NewString(), userID, accessToken, refreshToken, kind); err != nil {
		if isUniqueViolation(err) {
			return 0, core.ErrDuplicateToken
		}
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (l *tokenLedger) RevokeAllActiveFor(ctx context.Context, userID string) (int, error) {
	tag, err := l.pool.Exec(ctx, revokeAllSQL, userID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (l *tokenLedger) RevokeByAccessToken(ctx context.Context, accessToken string) (bool, error) {
	const query = `
		UPDATE issued_token SET expired = TRUE, revoked = TRUE
		WHERE access_token = $1 AND (expired = FALSE OR revoked = FALSE)
	`
	// 0 filas afectadas = token desconocido o ya retirado = no-op silencioso.
	tag, err := l.pool.Exec(ctx, query, accessToken)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (l *tokenLedger) IsUsable(ctx context.Context, accessToken string) (bool, error) {
	const query = `SELECT revoked FROM issued_token WHERE access_token = $1`
	var revoked bool
	err := l.pool.QueryRow(ctx, query, accessToken).Scan(&revoked)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !revoked, nil
}

func (l *tokenLedger) GetByAccessToken(ctx context.Context, accessToken string) (*core.IssuedToken, error) {
	const query = `
		SELECT id, user_id, access_token, COALESCE(refresh_token, ''), kind, expired, revoked, created_at
		FROM issued_token WHERE access_token = $1
	`
	var row core.IssuedToken
	err := l.pool.QueryRow(ctx, query, accessToken).Scan(
		&row.ID, &row.UserID, &row.AccessToken, &row.RefreshToken,
		&row.Kind, &row.Expired, &row.Revoked, &row.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}
