package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/dropDatabas3/gatekeeper/internal/store/core"
)

func seedUser(t *testing.T, s *Store, email string) *core.User {
	t.Helper()
	u, err := s.Users().Create(context.Background(), &core.User{
		Email:        email,
		PasswordHash: "x",
		Role:         core.RoleUser,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func TestUsers_CreateAndLookup(t *testing.T) {
	s := New()
	ctx := context.Background()

	u := seedUser(t, s, "Ana@Example.com")

	// email se normaliza a minúsculas
	got, err := s.Users().GetByEmail(ctx, "ana@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("id mismatch: %s != %s", got.ID, u.ID)
	}

	if _, err := s.Users().GetByID(ctx, u.ID); err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if _, err := s.Users().GetByEmail(ctx, "nadie@example.com"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUsers_DuplicateEmail(t *testing.T) {
	s := New()
	seedUser(t, s, "ana@example.com")
	_, err := s.Users().Create(context.Background(), &core.User{Email: "ANA@example.com"})
	if !errors.Is(err, core.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

func TestLedger_RecordRejectsDuplicates(t *testing.T) {
	s := New()
	ctx := context.Background()
	u := seedUser(t, s, "ana@example.com")

	if _, err := s.Tokens().Record(ctx, u.ID, "acc-1", "ref-1", core.TokenKindBearer); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if _, err := s.Tokens().Record(ctx, u.ID, "acc-1", "ref-2", core.TokenKindBearer); !errors.Is(err, core.ErrDuplicateToken) {
		t.Fatalf("duplicate access: err = %v, want ErrDuplicateToken", err)
	}
	if _, err := s.Tokens().Record(ctx, u.ID, "acc-2", "ref-1", core.TokenKindBearer); !errors.Is(err, core.ErrDuplicateToken) {
		t.Fatalf("duplicate refresh: err = %v, want ErrDuplicateToken", err)
	}
	// refresh vacío (par access-only) no colisiona consigo mismo
	if _, err := s.Tokens().Record(ctx, u.ID, "acc-3", "", core.TokenKindBearer); err != nil {
		t.Fatalf("access-only record: %v", err)
	}
	if _, err := s.Tokens().Record(ctx, u.ID, "acc-4", "", core.TokenKindBearer); err != nil {
		t.Fatalf("second access-only record: %v", err)
	}
}

func TestLedger_RevokeAllPredicate(t *testing.T) {
	s := New()
	ctx := context.Background()
	u := seedUser(t, s, "ana@example.com")

	// tres filas: activa, semi-retirada (solo revoked), totalmente retirada
	_, _ = s.Tokens().Record(ctx, u.ID, "acc-live", "", core.TokenKindBearer)
	_, _ = s.Tokens().Record(ctx, u.ID, "acc-half", "", core.TokenKindBearer)
	_, _ = s.Tokens().Record(ctx, u.ID, "acc-dead", "", core.TokenKindBearer)

	half := s.tokens["acc-half"]
	half.Revoked = true
	s.tokens["acc-half"] = half

	dead := s.tokens["acc-dead"]
	dead.Revoked, dead.Expired = true, true
	s.tokens["acc-dead"] = dead

	// la fila semi-retirada también cuenta: el predicado es
	// expired = false OR revoked = false
	n, err := s.Tokens().RevokeAllActiveFor(ctx, u.ID)
	if err != nil {
		t.Fatalf("RevokeAllActiveFor: %v", err)
	}
	if n != 2 {
		t.Fatalf("revoked %d rows, want 2 (live + half-retired)", n)
	}

	for _, acc := range []string{"acc-live", "acc-half", "acc-dead"} {
		row, _ := s.Tokens().GetByAccessToken(ctx, acc)
		if !row.Expired || !row.Revoked {
			t.Errorf("%s: expired=%v revoked=%v, want both true", acc, row.Expired, row.Revoked)
		}
	}

	// segunda pasada: ya no queda nada que tocar
	n, _ = s.Tokens().RevokeAllActiveFor(ctx, u.ID)
	if n != 0 {
		t.Fatalf("second pass revoked %d rows, want 0", n)
	}
}

func TestLedger_IsUsable(t *testing.T) {
	s := New()
	ctx := context.Background()
	u := seedUser(t, s, "ana@example.com")

	_, _ = s.Tokens().Record(ctx, u.ID, "acc-1", "", core.TokenKindBearer)

	if ok, _ := s.Tokens().IsUsable(ctx, "acc-1"); !ok {
		t.Fatal("fresh token must be usable")
	}
	if ok, _ := s.Tokens().IsUsable(ctx, "unknown"); ok {
		t.Fatal("unknown token must not be usable")
	}

	revoked, _ := s.Tokens().RevokeByAccessToken(ctx, "acc-1")
	if !revoked {
		t.Fatal("revoking a live token must report an affected row")
	}
	if ok, _ := s.Tokens().IsUsable(ctx, "acc-1"); ok {
		t.Fatal("revoked token must not be usable")
	}

	// repetir la revocación no toca nada
	revoked, _ = s.Tokens().RevokeByAccessToken(ctx, "acc-1")
	if revoked {
		t.Fatal("re-revoking a retired token must be a no-op")
	}
}

func TestLedger_RevokeUnknownIsNoop(t *testing.T) {
	s := New()
	revoked, err := s.Tokens().RevokeByAccessToken(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("revoking unknown token must be a silent no-op, got %v", err)
	}
	if revoked {
		t.Fatal("unknown token must not count as revoked")
	}
}

func TestLedger_RotateLeavesSingleLivePair(t *testing.T) {
	s := New()
	ctx := context.Background()
	u := seedUser(t, s, "ana@example.com")

	_, _ = s.Tokens().Record(ctx, u.ID, "acc-old", "ref-old", core.TokenKindBearer)

	n, err := s.Tokens().Rotate(ctx, u.ID, "acc-new", "ref-new", core.TokenKindBearer)
	if err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	if n != 1 {
		t.Fatalf("revoked %d, want 1", n)
	}
	if ok, _ := s.Tokens().IsUsable(ctx, "acc-old"); ok {
		t.Fatal("old pair must be revoked after rotate")
	}
	if ok, _ := s.Tokens().IsUsable(ctx, "acc-new"); !ok {
		t.Fatal("new pair must be usable after rotate")
	}
}

func TestLedger_ConcurrentRotate(t *testing.T) {
	s := New()
	ctx := context.Background()
	u := seedUser(t, s, "ana@example.com")

	const n = 16
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			_, err := s.Tokens().Rotate(ctx, u.ID,
				fmt.Sprintf("acc-%d", i), fmt.Sprintf("ref-%d", i), core.TokenKindBearer)
			if err != nil {
				t.Errorf("Rotate %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	// gane quien gane, queda exactamente un par usable
	usable := 0
	for i := 0; i < n; i++ {
		if ok, _ := s.Tokens().IsUsable(ctx, fmt.Sprintf("acc-%d", i)); ok {
			usable++
		}
	}
	if usable != 1 {
		t.Fatalf("usable pairs after concurrent rotates = %d, want exactly 1", usable)
	}
}
