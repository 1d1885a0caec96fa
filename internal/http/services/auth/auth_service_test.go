package auth_test

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	dto "github.com/dropDatabas3/gatekeeper/internal/http/dto/auth"
	svc "github.com/dropDatabas3/gatekeeper/internal/http/services/auth"
	jwtx "github.com/dropDatabas3/gatekeeper/internal/jwt"
	"github.com/dropDatabas3/gatekeeper/internal/metrics"
	"github.com/dropDatabas3/gatekeeper/internal/security/totp"
	"github.com/dropDatabas3/gatekeeper/internal/store/adapters/memory"
)

type fixture struct {
	store    *memory.Store
	codec    *jwtx.Codec
	mfa      *totp.Verifier
	services svc.Services
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	raw := make([]byte, 48)
	for i := range raw {
		raw[i] = byte(i + 7)
	}
	codec, err := jwtx.NewCodec(base64.StdEncoding.EncodeToString(raw), "test",
		15*time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	st := memory.New()
	mfa := totp.New("Gatekeeper", 4, 30*time.Second, 1)
	return &fixture{
		store:    st,
		codec:    codec,
		mfa:      mfa,
		services: svc.NewServices(svc.Deps{Store: st, Codec: codec, MFA: mfa}),
	}
}

func (f *fixture) register(t *testing.T, email string, mfaEnabled bool) *dto.AuthResponse {
	t.Helper()
	resp, err := f.services.Register.Register(context.Background(), dto.RegisterRequest{
		FirstName:  "Ana",
		LastName:   "Prueba",
		Email:      email,
		Password:   "s3creta!",
		MFAEnabled: mfaEnabled,
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return resp
}

func TestRegister_IssuesUsablePair(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp := f.register(t, "ana@example.com", false)
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("register must mint a full pair")
	}
	if resp.MFAEnabled || resp.ProvisioningURI != "" {
		t.Fatal("no MFA requested, response must not carry enrollment data")
	}

	// el par quedó registrado y es usable inmediatamente
	if ok, _ := f.store.Tokens().IsUsable(ctx, resp.AccessToken); !ok {
		t.Fatal("registered access token must be usable")
	}
	claims, err := f.codec.Verify(resp.AccessToken)
	if err != nil {
		t.Fatalf("minted token must verify: %v", err)
	}
	if claims.Subject != "ana@example.com" {
		t.Fatalf("subject = %q, want the login email", claims.Subject)
	}
	if _, err := f.store.Users().GetByEmail(ctx, claims.Subject); err != nil {
		t.Fatalf("token subject must map to the new principal: %v", err)
	}
}

func TestRegister_WithMFA(t *testing.T) {
	f := newFixture(t)

	resp := f.register(t, "ana@example.com", true)
	if !resp.MFAEnabled {
		t.Fatal("mfa_enabled must echo the request")
	}
	if resp.ProvisioningURI == "" {
		t.Fatal("MFA registration must return a provisioning URI")
	}
}

func TestRegister_Duplicate(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ana@example.com", false)

	_, err := f.services.Register.Register(context.Background(), dto.RegisterRequest{
		Email:    "ANA@example.com",
		Password: "otra",
	})
	if !errors.Is(err, svc.ErrDuplicateAccount) {
		t.Fatalf("err = %v, want ErrDuplicateAccount", err)
	}
}

func TestRegister_MissingFields(t *testing.T) {
	f := newFixture(t)
	for _, in := range []dto.RegisterRequest{
		{Password: "x"},
		{Email: "a@b.c"},
		{Email: "a@b.c", Password: "x", Role: "SUPREMO"},
	} {
		if _, err := f.services.Register.Register(context.Background(), in); !errors.Is(err, svc.ErrMissingFields) {
			t.Errorf("Register(%+v) err = %v, want ErrMissingFields", in, err)
		}
	}
}

func TestLogin_RotatesPreviousPair(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.register(t, "ana@example.com", false)

	second, err := f.services.Login.Login(ctx, dto.LoginRequest{Email: "ana@example.com", Password: "s3creta!"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	// el par del registro quedó revocado; el del login es el único vivo
	if ok, _ := f.store.Tokens().IsUsable(ctx, first.AccessToken); ok {
		t.Fatal("previous pair must be revoked by login")
	}
	if ok, _ := f.store.Tokens().IsUsable(ctx, second.AccessToken); !ok {
		t.Fatal("login pair must be usable")
	}

	third, err := f.services.Login.Login(ctx, dto.LoginRequest{Email: "ana@example.com", Password: "s3creta!"})
	if err != nil {
		t.Fatalf("second Login: %v", err)
	}
	if ok, _ := f.store.Tokens().IsUsable(ctx, second.AccessToken); ok {
		t.Fatal("each login must revoke the previous pair")
	}
	if ok, _ := f.store.Tokens().IsUsable(ctx, third.AccessToken); !ok {
		t.Fatal("latest pair must be usable")
	}
}

func TestLogin_CoarseErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "ana@example.com", false)

	// cuenta inexistente y password errado devuelven el MISMO error
	_, errUnknown := f.services.Login.Login(ctx, dto.LoginRequest{Email: "nadie@example.com", Password: "x"})
	_, errBadPass := f.services.Login.Login(ctx, dto.LoginRequest{Email: "ana@example.com", Password: "mal"})

	if !errors.Is(errUnknown, svc.ErrInvalidCredentials) {
		t.Fatalf("unknown account: err = %v, want ErrInvalidCredentials", errUnknown)
	}
	if !errors.Is(errBadPass, svc.ErrInvalidCredentials) {
		t.Fatalf("bad password: err = %v, want ErrInvalidCredentials", errBadPass)
	}
}

func TestRefresh_RotatesWithUsableToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.register(t, "ana@example.com", false)

	resp, err := f.services.Refresh.Refresh(ctx, "Bearer "+first.AccessToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if resp == nil || resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("refresh must mint a full pair")
	}
	if ok, _ := f.store.Tokens().IsUsable(ctx, first.AccessToken); ok {
		t.Fatal("presented token must be revoked by the rotation")
	}
	if ok, _ := f.store.Tokens().IsUsable(ctx, resp.AccessToken); !ok {
		t.Fatal("new pair must be usable")
	}
}

func TestRefresh_NonBearerHeaderIsNoop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.register(t, "ana@example.com", false)

	for _, header := range []string{"", "Token abc", "Basic dXNlcjpwYXNz", first.AccessToken} {
		resp, err := f.services.Refresh.Refresh(ctx, header)
		if err != nil || resp != nil {
			t.Errorf("Refresh(%q) = (%v, %v), want (nil, nil)", header, resp, err)
		}
	}
	// y no tocó nada del ledger
	if ok, _ := f.store.Tokens().IsUsable(ctx, first.AccessToken); !ok {
		t.Fatal("no-op refresh must not revoke anything")
	}
}

func TestRefresh_RevokedTokenFailsWithoutSideEffects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.register(t, "ana@example.com", false)

	// login revoca el par del registro
	second, err := f.services.Login.Login(ctx, dto.LoginRequest{Email: "ana@example.com", Password: "s3creta!"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	// presentar el token revocado: falla y NO revoca el par vigente
	_, err = f.services.Refresh.Refresh(ctx, "Bearer "+first.AccessToken)
	if !errors.Is(err, svc.ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
	if ok, _ := f.store.Tokens().IsUsable(ctx, second.AccessToken); !ok {
		t.Fatal("failed refresh must not revoke the live pair")
	}
}

func TestRefresh_UnknownPrincipal(t *testing.T) {
	f := newFixture(t)

	// token firmado por nosotros pero cuyo subject no existe
	orphan, err := f.codec.MintAccess("nadie@example.com")
	if err != nil {
		t.Fatalf("MintAccess: %v", err)
	}
	_, err = f.services.Refresh.Refresh(context.Background(), "Bearer "+orphan)
	if !errors.Is(err, svc.ErrPrincipalNotFound) {
		t.Fatalf("err = %v, want ErrPrincipalNotFound", err)
	}
}

func TestVerifyCode_HappyPath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "ana@example.com", true)

	user, err := f.store.Users().GetByEmail(ctx, "ana@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	code, err := f.mfa.GenerateCodeAt(user.MFASecret, time.Now())
	if err != nil {
		t.Fatalf("GenerateCodeAt: %v", err)
	}

	resp, err := f.services.Verify.VerifyCode(ctx, dto.VerifyRequest{Email: "ana@example.com", Code: code})
	if err != nil {
		t.Fatalf("VerifyCode: %v", err)
	}
	if resp.AccessToken == "" {
		t.Fatal("verify must mint an access token")
	}
	if resp.RefreshToken != "" {
		t.Fatal("verify mints access only, no refresh")
	}
	if ok, _ := f.store.Tokens().IsUsable(ctx, resp.AccessToken); !ok {
		t.Fatal("minted access token must be usable")
	}
}

func TestVerifyCode_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "ana@example.com", true)
	f.register(t, "sinmfa@example.com", false)

	if _, err := f.services.Verify.VerifyCode(ctx, dto.VerifyRequest{Email: "nadie@example.com", Code: "1234"}); !errors.Is(err, svc.ErrPrincipalNotFound) {
		t.Fatalf("unknown account: err = %v, want ErrPrincipalNotFound", err)
	}
	user, _ := f.store.Users().GetByEmail(ctx, "ana@example.com")
	bad := wrongCode(t, f.mfa, user.MFASecret)
	if _, err := f.services.Verify.VerifyCode(ctx, dto.VerifyRequest{Email: "ana@example.com", Code: bad}); !errors.Is(err, svc.ErrInvalidCode) {
		t.Fatalf("wrong code: err = %v, want ErrInvalidCode", err)
	}
	if _, err := f.services.Verify.VerifyCode(ctx, dto.VerifyRequest{Email: "sinmfa@example.com", Code: "1234"}); !errors.Is(err, svc.ErrInvalidCode) {
		t.Fatalf("account without MFA: err = %v, want ErrInvalidCode", err)
	}
}

// wrongCode busca un código de 4 dígitos que NO verifique contra el secreto
// ahora mismo, para que el test no dependa de la suerte.
func wrongCode(t *testing.T, v *totp.Verifier, secret string) string {
	t.Helper()
	now := time.Now()
	for i := 0; i < 10; i++ {
		candidate := fmt.Sprintf("%04d", i)
		if !v.VerifyAt(secret, candidate, now) {
			return candidate
		}
	}
	t.Fatal("could not find an invalid code")
	return ""
}

func TestLogout_RevokesPresentedToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.register(t, "ana@example.com", false)

	before := testutil.ToFloat64(metrics.TokensRevokedTotal)
	if err := f.services.Logout.Logout(ctx, "Bearer "+first.AccessToken); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if ok, _ := f.store.Tokens().IsUsable(ctx, first.AccessToken); ok {
		t.Fatal("logout must revoke the presented token")
	}
	if got := testutil.ToFloat64(metrics.TokensRevokedTotal); got != before+1 {
		t.Fatalf("revoked counter moved %v, want +1", got-before)
	}

	// el segundo logout es no-op: no vuelve a contar
	if err := f.services.Logout.Logout(ctx, "Bearer "+first.AccessToken); err != nil {
		t.Fatalf("second Logout: %v", err)
	}
	if got := testutil.ToFloat64(metrics.TokensRevokedTotal); got != before+1 {
		t.Fatalf("idempotent logout must not move the counter (got %v)", got-before)
	}
}

func TestLogout_UnknownOrMalformedIsNoop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	before := testutil.ToFloat64(metrics.TokensRevokedTotal)
	for _, header := range []string{"", "Token abc", "Bearer unknown-token"} {
		if err := f.services.Logout.Logout(ctx, header); err != nil {
			t.Errorf("Logout(%q) = %v, want nil", header, err)
		}
	}
	if got := testutil.ToFloat64(metrics.TokensRevokedTotal); got != before {
		t.Fatalf("no-op logouts must not count revocations (moved %v)", got-before)
	}
}
