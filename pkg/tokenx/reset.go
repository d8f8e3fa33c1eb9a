// Package tokenx mints and verifies password-reset tokens. Tokens are
// stateless HMAC-signed claims carrying the account e-mail; validity is
// purely a function of signature and timestamp, nothing is persisted.
package tokenx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// audience namespaces reset tokens so they cannot be replayed against any
// other token-consuming surface sharing the secret.
const audience = "password-reset"

// DefaultTTL is how long a minted reset token stays redeemable.
const DefaultTTL = time.Hour

var (
	ErrTokenExpired = errors.New("tokenx: token expired")
	ErrTokenInvalid = errors.New("tokenx: token invalid")
)

// ResetIssuer mints and verifies password-reset tokens with a shared secret.
type ResetIssuer struct {
	Secret []byte
	Issuer string
	TTL    time.Duration

	// Now overrides the clock in tests. Nil means time.Now.
	Now func() time.Time
}

func (ri *ResetIssuer) now() time.Time {
	if ri.Now != nil {
		return ri.Now()
	}
	return time.Now()
}

func (ri *ResetIssuer) ttl() time.Duration {
	if ri.TTL > 0 {
		return ri.TTL
	}
	return DefaultTTL
}

// Mint returns a signed token embedding the given e-mail address, expiring
// after the issuer's TTL.
func (ri *ResetIssuer) Mint(email string) (string, error) {
	now := ri.now()
	claims := jwt.RegisteredClaims{
		Subject:   email,
		Issuer:    ri.Issuer,
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ri.ttl())),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ri.Secret)
}

// Verify checks signature, audience and expiry, returning the embedded
// e-mail. Expired tokens return ErrTokenExpired; anything else malformed or
// tampered returns ErrTokenInvalid.
func (ri *ResetIssuer) Verify(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(
		token,
		&jwt.RegisteredClaims{},
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrTokenInvalid
			}
			return ri.Secret, nil
		},
		jwt.WithAudience(audience),
		jwt.WithIssuer(ri.Issuer),
		jwt.WithTimeFunc(ri.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrTokenInvalid
	}
	return claims.Subject, nil
}
