package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/gatekeeper/internal/store/core"
)

type tokenLedger struct{ s *Store }

const revokeAllSQL = `
	UPDATE issued_token
	SET expired = 1, revoked = 1
	WHERE user_id = ?1 AND (expired = 0 OR revoked = 0);`

func insertToken(ctx context.Context, q interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
}, row *core.IssuedToken) error {
	var refresh any
	if row.RefreshToken != "" {
		refresh = row.RefreshToken
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO issued_token (id, user_id, access_token, refresh_token, kind, expired, revoked, created_at)
		VALUES (?1, ?2, ?3, ?4, ?5, 0, 0, ?6);`,
		row.ID, row.UserID, row.AccessToken, refresh, row.Kind, row.CreatedAt.Unix(),
	)
	if isUniqueViolation(err) {
		return core.ErrDuplicateToken
	}
	return err
}

func (l *tokenLedger) Record(ctx context.Context, userID, accessToken, refreshToken, kind string) (*core.IssuedToken, error) {
	row := &core.IssuedToken{
		ID:           uuid.NewString(),
		UserID:       userID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Kind:         kind,
		CreatedAt:    time.Now().UTC(),
	}
	if err := insertToken(ctx, l.s.db, row); err != nil {
		return nil, err
	}
	return row, nil
}

func (l *tokenLedger) Rotate(ctx context.Context, userID, accessToken, refreshToken, kind string) (int, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()

	tx, err := l.s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, revokeAllSQL, userID)
	if err != nil {
		return 0, err
	}
	revoked, _ := res.RowsAffected()

	row := &core.IssuedToken{
		ID:           uuid.NewString(),
		UserID:       userID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Kind:         kind,
		CreatedAt:    time.Now().UTC(),
	}
	if err := insertToken(ctx, tx, row); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return int(revoked), nil
}

func (l *tokenLedger) RevokeAllActiveFor(ctx context.Context, userID string) (int, error) {
	res, err := l.s.db.ExecContext(ctx, revokeAllSQL, userID)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (l *tokenLedger) RevokeByAccessToken(ctx context.Context, accessToken string) (bool, error) {
	res, err := l.s.db.ExecContext(ctx, `
		UPDATE issued_token SET expired = 1, revoked = 1
		WHERE access_token = ?1 AND (expired = 0 OR revoked = 0);`, accessToken)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (l *tokenLedger) IsUsable(ctx context.Context, accessToken string) (bool, error) {
	var revoked bool
	err := l.s.db.QueryRowContext(ctx, `
		SELECT revoked FROM issued_token WHERE access_token = ?1;`, accessToken,
	).Scan(&revoked)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !revoked, nil
}

func (l *tokenLedger) GetByAccessToken(ctx context.Context, accessToken string) (*core.IssuedToken, error) {
	var row core.IssuedToken
	var createdAt int64
	err := l.s.db.QueryRowContext(ctx, `
		SELECT id, user_id, access_token, COALESCE(refresh_token, ''), kind, expired, revoked, created_at
		FROM issued_token WHERE access_token = ?1;`, accessToken,
	).Scan(
		&row.ID, &row.UserID, &row.AccessToken, &row.RefreshToken,
		&row.Kind, &row.Expired, &row.Revoked, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	row.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &row, nil
}
