// Package jwt implementa el codec de credenciales bearer: firma y
// verificación de tokens HS256 con claims sub/iat/exp.
package jwt

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"github.com/google/uuid"
)

// Errores del codec. La taxonomía es deliberadamente chica: el caller solo
// necesita distinguir "no se puede parsear", "firma ajena" y "vencido".
var (
	ErrMalformed = errors.New("token malformed")
	ErrUntrusted = errors.New("token signature untrusted")
	ErrExpired   = errors.New("token expired")
)

// Kind distingue access de refresh al persistir en el ledger.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Claims son las claims verificadas de un token. Efímeras: se derivan
// únicamente del payload firmado, nunca se persisten.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	TokenID   string
}

// Codec firma y verifica bearer tokens con una clave simétrica process-wide.
// La clave se carga una vez al arranque y es de solo lectura.
type Codec struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewCodec construye el codec. secretB64 es la clave HS256 en base64
// estándar, igual que en config.yaml.
func NewCodec(secretB64, issuer string, accessTTL, refreshTTL time.Duration) (*Codec, error) {
	key, err := base64.StdEncoding.DecodeString(secretB64)
	if err != nil {
		return nil, fmt.Errorf("jwt: secret is not valid base64: %w", err)
	}
	if len(key) < 32 {
		return nil, fmt.Errorf("jwt: secret too short (%d bytes, need >= 32)", len(key))
	}
	return &Codec{
		secret:     key,
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

// AccessTTL expone el TTL configurado para access tokens.
func (c *Codec) AccessTTL() time.Duration { return c.accessTTL }

// RefreshTTL expone el TTL configurado para refresh tokens.
func (c *Codec) RefreshTTL() time.Duration { return c.refreshTTL }

// MintAccess emite un access token de vida corta para el subject dado.
func (c *Codec) MintAccess(subject string) (string, error) {
	return c.mint(subject, c.accessTTL)
}

// MintRefresh emite un refresh token de vida larga para el subject dado.
func (c *Codec) MintRefresh(subject string) (string, error) {
	return c.mint(subject, c.refreshTTL)
}

// mint firma sub/iat/exp + jti. El jti (uuid) garantiza que dos tokens
// emitidos en el mismo segundo para el mismo subject nunca colisionen como
// strings; el ledger exige unicidad.
func (c *Codec) mint(subject string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := jwtv5.RegisteredClaims{
		Issuer:    c.issuer,
		Subject:   subject,
		IssuedAt:  jwtv5.NewNumericDate(now),
		ExpiresAt: jwtv5.NewNumericDate(now.Add(ttl)),
		ID:        uuid.NewString(),
	}
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	signed, err := tk.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("jwt: sign: %w", err)
	}
	return signed, nil
}

// Verify valida firma y expiración. Retorna ErrMalformed si el token no se
// puede decodificar, ErrUntrusted si la firma no corresponde a la clave del
// proceso y ErrExpired si exp ya pasó.
func (c *Codec) Verify(token string) (*Claims, error) {
	parsed, err := jwtv5.ParseWithClaims(token, &jwtv5.RegisteredClaims{}, c.keyfunc,
		jwtv5.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, mapParseError(err)
	}
	rc, ok := parsed.Claims.(*jwtv5.RegisteredClaims)
	if !ok || !parsed.Valid {
		return nil, ErrMalformed
	}
	return claimsFrom(rc), nil
}

// ExtractSubject devuelve el subject verificando la firma pero SIN exigir
// que el token esté vigente. Los callers de refresh necesitan el subject de
// un token que puede estar vencido; la vigencia se chequea aparte.
func (c *Codec) ExtractSubject(token string) (string, error) {
	parser := jwtv5.NewParser(
		jwtv5.WithValidMethods([]string{"HS256"}),
		jwtv5.WithoutClaimsValidation(),
	)
	parsed, err := parser.ParseWithClaims(token, &jwtv5.RegisteredClaims{}, c.keyfunc)
	if err != nil {
		return "", mapParseError(err)
	}
	rc, ok := parsed.Claims.(*jwtv5.RegisteredClaims)
	if !ok {
		return "", ErrMalformed
	}
	return rc.Subject, nil
}

func (c *Codec) keyfunc(t *jwtv5.Token) (any, error) {
	return c.secret, nil
}

func claimsFrom(rc *jwtv5.RegisteredClaims) *Claims {
	out := &Claims{Subject: rc.Subject, TokenID: rc.ID}
	if rc.IssuedAt != nil {
		out.IssuedAt = rc.IssuedAt.Time
	}
	if rc.ExpiresAt != nil {
		out.ExpiresAt = rc.ExpiresAt.Time
	}
	return out
}

// mapParseError traduce los sentinels de jwt/v5 a la taxonomía del codec.
func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwtv5.ErrTokenMalformed):
		return ErrMalformed
	case errors.Is(err, jwtv5.ErrTokenSignatureInvalid),
		errors.Is(err, jwtv5.ErrTokenUnverifiable):
		return ErrUntrusted
	case errors.Is(err, jwtv5.ErrTokenExpired),
		errors.Is(err, jwtv5.ErrTokenNotValidYet):
		return ErrExpired
	default:
		return ErrMalformed
	}
}
