// Package memory implementa core.Store en memoria. Es el driver de
// desarrollo y el doble de tests; el mutex global serializa Rotate igual
// que el advisory lock por principal en postgres (más conservador, pero
// correcto).
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/gatekeeper/internal/store/core"
)

type Store struct {
	mu           sync.Mutex
	usersByID    map[string]core.User
	usersByEmail map[string]string // email -> id
	tokens       map[string]core.IssuedToken // access token -> row
	refreshSeen  map[string]struct{}
}

func New() *Store {
	return &Store{
		usersByID:    make(map[string]core.User),
		usersByEmail: make(map[string]string),
		tokens:       make(map[string]core.IssuedToken),
		refreshSeen:  make(map[string]struct{}),
	}
}

func (s *Store) Users() core.UserRepository { return (*userRepo)(s) }
func (s *Store) Tokens() core.TokenLedger   { return (*tokenLedger)(s) }

func (s *Store) Ping(ctx context.Context) error { return nil }
func (s *Store) Close() error                   { return nil }

// ─── UserRepository ───

type userRepo Store

func (r *userRepo) Create(ctx context.Context, u *core.User) (*core.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(u.Email))
	if _, exists := r.usersByEmail[email]; exists {
		return nil, core.ErrConflict
	}
	cp := *u
	cp.Email = email
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	r.usersByID[cp.ID] = cp
	r.usersByEmail[email] = cp.ID
	out := cp
	return &out, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*core.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.usersByEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, core.ErrNotFound
	}
	u := r.usersByID[id]
	return &u, nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*core.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.usersByID[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &u, nil
}

// ─── TokenLedger ───

type tokenLedger Store

func (l *tokenLedger) Record(ctx context.Context, userID, accessToken, refreshToken, kind string) (*core.IssuedToken, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.recordLocked(userID, accessToken, refreshToken, kind)
}

func (l *tokenLedger) recordLocked(userID, accessToken, refreshToken, kind string) (*core.IssuedToken, error) {
	if _, dup := l.tokens[accessToken]; dup {
		return nil, core.ErrDuplicateToken
	}
	if refreshToken != "" {
		if _, dup := l.refreshSeen[refreshToken]; dup {
			return nil, core.ErrDuplicateToken
		}
	}
	row := core.IssuedToken{
		ID:           uuid.NewString(),
		UserID:       userID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Kind:         kind,
		CreatedAt:    time.Now().UTC(),
	}
	l.tokens[accessToken] = row
	if refreshToken != "" {
		l.refreshSeen[refreshToken] = struct{}{}
	}
	out := row
	return &out, nil
}

func (l *tokenLedger) Rotate(ctx context.Context, userID, accessToken, refreshToken, kind string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	revoked := l.revokeAllLocked(userID)
	if _, err := l.recordLocked(userID, accessToken, refreshToken, kind); err != nil {
		return 0, err
	}
	return revoked, nil
}

func (l *tokenLedger) RevokeAllActiveFor(ctx context.Context, userID string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.revokeAllLocked(userID), nil
}

// revokeAllLocked aplica el predicado "no totalmente retirado":
// expired = false OR revoked = false.
func (l *tokenLedger) revokeAllLocked(userID string) int {
	n := 0
	for k, row := range l.tokens {
		if row.UserID != userID {
			continue
		}
		if row.Expired && row.Revoked {
			continue
		}
		row.Expired = true
		row.Revoked = true
		l.tokens[k] = row
		n++
	}
	return n
}

func (l *tokenLedger) RevokeByAccessToken(ctx context.Context, accessToken string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	row, ok := l.tokens[accessToken]
	if !ok {
		return false, nil // logout de un token desconocido no es un error
	}
	if row.Expired && row.Revoked {
		return false, nil // ya retirado, nada que tocar
	}
	row.Expired = true
	row.Revoked = true
	l.tokens[accessToken] = row
	return true, nil
}

func (l *tokenLedger) IsUsable(ctx context.Context, accessToken string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	row, ok := l.tokens[accessToken]
	if !ok {
		return false, nil
	}
	return !row.Revoked, nil
}

func (l *tokenLedger) GetByAccessToken(ctx context.Context, accessToken string) (*core.IssuedToken, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	row, ok := l.tokens[accessToken]
	if !ok {
		return nil, core.ErrNotFound
	}
	out := row
	return &out, nil
}
