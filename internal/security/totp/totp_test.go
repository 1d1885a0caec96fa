package totp

import (
	"strings"
	"testing"
	"time"
)

func TestGenerateSecret(t *testing.T) {
	a, err := GenerateSecret()
	if err != nil {
		t.Fatalf("GenerateSecret: %v", err)
	}
	b, err := GenerateSecret()
	if err != nil {
		t.Fatalf("GenerateSecret: %v", err)
	}
	if a == b {
		t.Fatal("two secrets should not collide")
	}
	if strings.Contains(a, "=") {
		t.Fatal("secret must be base32 without padding")
	}
	if _, err := decodeSecret(a); err != nil {
		t.Fatalf("secret not decodable: %v", err)
	}
}

func TestVerifyAt_CurrentStep(t *testing.T) {
	v := New("Gatekeeper", 4, 30*time.Second, 1)
	secret, _ := GenerateSecret()
	now := time.Unix(1_700_000_000, 0)

	code, err := v.GenerateCodeAt(secret, now)
	if err != nil {
		t.Fatalf("GenerateCodeAt: %v", err)
	}
	if len(code) != 4 {
		t.Fatalf("code %q, want 4 digits", code)
	}
	if !v.VerifyAt(secret, code, now) {
		t.Fatal("code for current step must verify")
	}
}

func TestVerifyAt_SkewTolerance(t *testing.T) {
	v := New("Gatekeeper", 4, 30*time.Second, 1)
	secret, _ := GenerateSecret()
	now := time.Unix(1_700_000_000, 0)

	prev, _ := v.GenerateCodeAt(secret, now.Add(-30*time.Second))
	next, _ := v.GenerateCodeAt(secret, now.Add(30*time.Second))
	far, _ := v.GenerateCodeAt(secret, now.Add(-90*time.Second))

	if !v.VerifyAt(secret, prev, now) {
		t.Error("code one step behind must verify with skew=1")
	}
	if !v.VerifyAt(secret, next, now) {
		t.Error("code one step ahead must verify with skew=1")
	}
	// tres pasos atrás queda fuera de la ventana (salvo colisión de 4
	// dígitos con algún paso tolerado; lo descartamos explícitamente)
	if far != prev {
		cur, _ := v.GenerateCodeAt(secret, now)
		if far != cur && far != next && v.VerifyAt(secret, far, now) {
			t.Error("code three steps behind must not verify")
		}
	}
}

func TestVerifyAt_WrongSecret(t *testing.T) {
	v := New("Gatekeeper", 4, 30*time.Second, 1)
	a, _ := GenerateSecret()
	b, _ := GenerateSecret()
	now := time.Unix(1_700_000_000, 0)

	code, _ := v.GenerateCodeAt(a, now)
	codeB, _ := v.GenerateCodeAt(b, now)
	if code != codeB && v.VerifyAt(b, code, now) {
		t.Fatal("code derived from another secret must not verify")
	}
}

func TestVerifyAt_RejectsWrongLengthAndGarbage(t *testing.T) {
	v := New("Gatekeeper", 4, 30*time.Second, 1)
	secret, _ := GenerateSecret()
	now := time.Unix(1_700_000_000, 0)

	if v.VerifyAt(secret, "12345", now) {
		t.Error("5-digit code must not verify against 4-digit config")
	}
	if v.VerifyAt(secret, "", now) {
		t.Error("empty code must not verify")
	}
	if v.VerifyAt("not-base32!!", "1234", now) {
		t.Error("undecodable secret must not verify")
	}
}

func TestProvisioningURI(t *testing.T) {
	v := New("Gatekeeper", 4, 30*time.Second, 1)
	secret, _ := GenerateSecret()

	uri := v.ProvisioningURI("ana@example.com", secret)
	if !strings.HasPrefix(uri, "otpauth://totp/") {
		t.Fatalf("uri = %q", uri)
	}
	for _, want := range []string{"secret=" + secret, "issuer=Gatekeeper", "digits=4", "period=30"} {
		if !strings.Contains(uri, want) {
			t.Errorf("uri missing %q: %s", want, uri)
		}
	}

	// fail-soft: secreto roto -> "" sin error
	if got := v.ProvisioningURI("ana@example.com", "????"); got != "" {
		t.Fatalf("expected empty uri for bad secret, got %q", got)
	}
}

func TestHOTP_ReferenceVector(t *testing.T) {
	// RFC 4226 apéndice D, K = "12345678901234567890", counter 0..2,
	// truncado a 6 dígitos.
	key := []byte("12345678901234567890")
	want := []string{"755224", "287082", "359152"}
	for i, w := range want {
		if got := hotp(key, int64(i), 6); got != w {
			t.Errorf("hotp(%d) = %s, want %s", i, got, w)
		}
	}
}
