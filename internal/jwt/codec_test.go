package jwt_test

import (
	"encoding/base64"
	"errors"
	"testing"
	"time"

	jwtx "github.com/dropDatabas3/gatekeeper/internal/jwt"
)

func b64Key(seed byte) string {
	raw := make([]byte, 48)
	for i := range raw {
		raw[i] = seed + byte(i)
	}
	return base64.StdEncoding.EncodeToString(raw)
}

func newTestCodec(t *testing.T, accessTTL, refreshTTL time.Duration) *jwtx.Codec {
	t.Helper()
	c, err := jwtx.NewCodec(b64Key(1), "test", accessTTL, refreshTTL)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	return c
}

func TestNewCodec_RejectsBadSecrets(t *testing.T) {
	if _, err := jwtx.NewCodec("not-base64!!!", "test", time.Minute, time.Hour); err == nil {
		t.Fatal("expected error for non-base64 secret")
	}
	short := base64.StdEncoding.EncodeToString([]byte("too-short"))
	if _, err := jwtx.NewCodec(short, "test", time.Minute, time.Hour); err == nil {
		t.Fatal("expected error for short secret")
	}
}

func TestMintAndVerify_RoundTrip(t *testing.T) {
	c := newTestCodec(t, 15*time.Minute, time.Hour)

	token, err := c.MintAccess("user-1")
	if err != nil {
		t.Fatalf("MintAccess: %v", err)
	}

	claims, err := c.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Fatalf("subject = %q, want user-1", claims.Subject)
	}
	if claims.TokenID == "" {
		t.Fatal("expected non-empty jti")
	}
	exp := time.Until(claims.ExpiresAt)
	if exp < 14*time.Minute || exp > 16*time.Minute {
		t.Fatalf("unexpected expiry window: %v", exp)
	}
}

func TestMint_SameSecondDistinctTokens(t *testing.T) {
	c := newTestCodec(t, 15*time.Minute, time.Hour)

	// Dos mints seguidos caen en el mismo segundo (iat idéntico); el jti
	// tiene que diferenciarlos como strings.
	a, err := c.MintAccess("user-1")
	if err != nil {
		t.Fatalf("mint a: %v", err)
	}
	b, err := c.MintAccess("user-1")
	if err != nil {
		t.Fatalf("mint b: %v", err)
	}
	if a == b {
		t.Fatal("two tokens minted in the same second must differ")
	}
}

func TestVerify_WrongKey(t *testing.T) {
	mint := newTestCodec(t, time.Minute, time.Hour)
	other, err := jwtx.NewCodec(b64Key(100), "test", time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}

	token, _ := mint.MintAccess("user-1")
	if _, err := other.Verify(token); !errors.Is(err, jwtx.ErrUntrusted) {
		t.Fatalf("err = %v, want ErrUntrusted", err)
	}
}

func TestVerify_Expired(t *testing.T) {
	c := newTestCodec(t, -time.Minute, time.Hour)

	token, err := c.MintAccess("user-1")
	if err != nil {
		t.Fatalf("MintAccess: %v", err)
	}
	if _, err := c.Verify(token); !errors.Is(err, jwtx.ErrExpired) {
		t.Fatalf("err = %v, want ErrExpired", err)
	}
}

func TestVerify_Malformed(t *testing.T) {
	c := newTestCodec(t, time.Minute, time.Hour)
	for _, tok := range []string{"", "garbage", "a.b", "a.b.c.d"} {
		if _, err := c.Verify(tok); !errors.Is(err, jwtx.ErrMalformed) {
			t.Errorf("Verify(%q) = %v, want ErrMalformed", tok, err)
		}
	}
}

func TestExtractSubject_IgnoresExpiry(t *testing.T) {
	c := newTestCodec(t, -time.Minute, time.Hour)

	token, err := c.MintAccess("user-9")
	if err != nil {
		t.Fatalf("MintAccess: %v", err)
	}

	// Verify lo rechaza por vencido, pero el subject se extrae igual.
	if _, err := c.Verify(token); !errors.Is(err, jwtx.ErrExpired) {
		t.Fatalf("sanity: err = %v, want ErrExpired", err)
	}
	sub, err := c.ExtractSubject(token)
	if err != nil {
		t.Fatalf("ExtractSubject: %v", err)
	}
	if sub != "user-9" {
		t.Fatalf("subject = %q, want user-9", sub)
	}
}

func TestExtractSubject_StillChecksSignature(t *testing.T) {
	mint := newTestCodec(t, time.Minute, time.Hour)
	other, err := jwtx.NewCodec(b64Key(200), "test", time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}

	token, _ := mint.MintAccess("user-1")
	if _, err := other.ExtractSubject(token); !errors.Is(err, jwtx.ErrUntrusted) {
		t.Fatalf("err = %v, want ErrUntrusted", err)
	}
}
