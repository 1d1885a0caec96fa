// Package totp implementa el segundo factor: secretos compartidos y códigos
// TOTP (RFC 4226 / 6238). Es un verificador puro sobre (secret, code, time);
// no persiste nada.
package totp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base32"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/dropDatabas3/gatekeeper/internal/observability/logger"
)

// Parámetros por defecto del factor. Son los que entienden las apps
// authenticator estándar; los tests los pinnean junto con el reloj.
const (
	DefaultDigits = 4
	DefaultPeriod = 30 * time.Second
	DefaultSkew   = 1 // pasos de tolerancia hacia cada lado
)

// Verifier genera secretos de enrolamiento, arma el otpauth:// URI y
// verifica códigos contra el reloj del sistema.
type Verifier struct {
	Issuer string
	Digits int
	Period time.Duration
	Skew   int
}

// New construye un Verifier con los defaults donde falte configuración.
func New(issuer string, digits int, period time.Duration, skew int) *Verifier {
	if digits <= 0 {
		digits = DefaultDigits
	}
	if period <= 0 {
		period = DefaultPeriod
	}
	if skew < 0 {
		skew = DefaultSkew
	}
	return &Verifier{Issuer: issuer, Digits: digits, Period: period, Skew: skew}
}

// GenerateSecret retorna 20 bytes aleatorios en base32 sin padding (RFC 3548).
// Se genera una vez por principal al registrarse con MFA.
func GenerateSecret() (string, error) {
	raw := make([]byte, 20)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(raw), nil
}

// ProvisioningURI construye otpauth://totp/... para que una app authenticator
// derive los mismos códigos. Falla soft: ante un secret inutilizable loguea y
// retorna cadena vacía, nunca un error — el registro debe completarse igual.
func (v *Verifier) ProvisioningURI(accountName, secretB32 string) string {
	secretB32 = strings.TrimSpace(secretB32)
	if secretB32 == "" {
		logger.Named("totp").Warn("provisioning uri skipped: empty secret")
		return ""
	}
	if _, err := decodeSecret(secretB32); err != nil {
		logger.Named("totp").Warn("provisioning uri skipped: bad secret encoding",
			logger.Err(err))
		return ""
	}
	label := url.PathEscape(fmt.Sprintf("%s:%s", v.Issuer, accountName))
	q := url.Values{}
	q.Set("secret", secretB32)
	q.Set("issuer", v.Issuer)
	q.Set("algorithm", "SHA1")
	q.Set("digits", fmt.Sprintf("%d", v.Digits))
	q.Set("period", fmt.Sprintf("%d", int(v.Period.Seconds())))
	return fmt.Sprintf("otpauth://totp/%s?%s", label, q.Encode())
}

// IsValid verifica el código contra el secreto usando el reloj del sistema,
// tolerando ±Skew pasos de desfase.
func (v *Verifier) IsValid(secretB32, code string) bool {
	return v.VerifyAt(secretB32, code, time.Now())
}

// IsInvalid es la negación lógica de IsValid.
func (v *Verifier) IsInvalid(secretB32, code string) bool {
	return !v.IsValid(secretB32, code)
}

// VerifyAt verifica el código en un instante dado. Separado de IsValid para
// que los tests puedan fijar el reloj.
func (v *Verifier) VerifyAt(secretB32, code string, t time.Time) bool {
	code = strings.TrimSpace(code)
	if len(code) != v.Digits {
		return false
	}
	raw, err := decodeSecret(secretB32)
	if err != nil {
		return false
	}
	counter := t.Unix() / int64(v.Period.Seconds())
	for c := counter - int64(v.Skew); c <= counter+int64(v.Skew); c++ {
		if hotp(raw, c, v.Digits) == code {
			return true
		}
	}
	return false
}

// GenerateCodeAt deriva el código del paso que contiene t. Lo usan los tests
// y el CLI; la verificación real pasa por IsValid/VerifyAt.
func (v *Verifier) GenerateCodeAt(secretB32 string, t time.Time) (string, error) {
	raw, err := decodeSecret(secretB32)
	if err != nil {
		return "", err
	}
	return hotp(raw, t.Unix()/int64(v.Period.Seconds()), v.Digits), nil
}

func decodeSecret(secretB32 string) ([]byte, error) {
	return base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(
		strings.ToUpper(strings.TrimSpace(secretB32)))
}

// hotp calcula HOTP(K, C) con HMAC-SHA1 y truncado dinámico (RFC 4226).
func hotp(secretRaw []byte, counter int64, digits int) string {
	var msg [8]byte
	for i := 7; i >= 0; i-- {
		msg[i] = byte(counter & 0xff)
		counter >>= 8
	}
	m := hmac.New(sha1.New, secretRaw)
	_, _ = m.Write(msg[:])
	sum := m.Sum(nil)
	offset := int(sum[len(sum)-1] & 0x0f)
	bin := (int(sum[offset])&0x7f)<<24 | int(sum[offset+1])<<16 | int(sum[offset+2])<<8 | int(sum[offset+3])
	otp := bin % int(math.Pow10(digits))
	return fmt.Sprintf("%0*d", digits, otp)
}
